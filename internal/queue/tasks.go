package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/brandscope/brandscope/pkg/tracing"
)

// handleDiscoverSitemap runs URL discovery and chains page fetching.
func (w *Worker) handleDiscoverSitemap(ctx context.Context, t *asynq.Task) error {
	var payload StepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %w", err)
	}

	ctx, span, done := w.beginStep(ctx, t.Type(), payload.RunID, payload.TraceID, payload.SpanID, payload.EnqueuedAt)
	defer span.End()

	err := w.engine.StepSitemap(ctx, payload.RunID)
	done(err)
	if err != nil {
		return w.stepError(ctx, t.Type(), payload.RunID, err)
	}
	w.businessMetrics.RunsStartedTotal.Inc()

	if _, err := w.queueClient.EnqueueFetchContent(ctx, payload.RunID); err != nil {
		// The step itself succeeded; the next task is re-enqueued on retry.
		return fmt.Errorf("chain %s: %w", TypeFetchContent, err)
	}
	return nil
}

// handleFetchContent fetches page content and chains category derivation.
func (w *Worker) handleFetchContent(ctx context.Context, t *asynq.Task) error {
	var payload StepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %w", err)
	}

	ctx, span, done := w.beginStep(ctx, t.Type(), payload.RunID, payload.TraceID, payload.SpanID, payload.EnqueuedAt)
	defer span.End()

	err := w.engine.StepContent(ctx, payload.RunID)
	done(err)
	if err != nil {
		return w.stepError(ctx, t.Type(), payload.RunID, err)
	}

	if _, err := w.queueClient.EnqueueDeriveCategories(ctx, payload.RunID); err != nil {
		return fmt.Errorf("chain %s: %w", TypeDeriveCategories, err)
	}
	return nil
}

// handleDeriveCategories derives categories and stops. The chain resumes
// when the user posts a category selection, which enqueues prompt
// generation.
func (w *Worker) handleDeriveCategories(ctx context.Context, t *asynq.Task) error {
	var payload StepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %w", err)
	}

	ctx, span, done := w.beginStep(ctx, t.Type(), payload.RunID, payload.TraceID, payload.SpanID, payload.EnqueuedAt)
	defer span.End()

	err := w.engine.StepCategories(ctx, payload.RunID)
	done(err)
	if err != nil {
		return w.stepError(ctx, t.Type(), payload.RunID, err)
	}

	w.logger.Info("categories derived, awaiting selection", "run_id", payload.RunID)
	return nil
}

// handleGeneratePrompts generates questions for the selected categories
// and chains prompt execution.
func (w *Worker) handleGeneratePrompts(ctx context.Context, t *asynq.Task) error {
	var payload GeneratePromptsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %w", err)
	}

	ctx, span, done := w.beginStep(ctx, t.Type(), payload.RunID, payload.TraceID, payload.SpanID, payload.EnqueuedAt)
	defer span.End()
	span.SetAttributes(attribute.Int("category_ids", len(payload.CategoryIDs)))

	err := w.engine.StepPrompts(ctx, payload.RunID, payload.CategoryIDs, payload.CompanyID)
	done(err)
	if err != nil {
		return w.stepError(ctx, t.Type(), payload.RunID, err)
	}

	if _, err := w.queueClient.EnqueueExecutePrompts(ctx, payload.RunID); err != nil {
		return fmt.Errorf("chain %s: %w", TypeExecutePrompts, err)
	}
	return nil
}

// handleExecutePrompts runs the prompt batch and completes the run.
func (w *Worker) handleExecutePrompts(ctx context.Context, t *asynq.Task) error {
	var payload StepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %w", err)
	}

	retryCount, _ := asynq.GetRetryCount(ctx)

	ctx, span, done := w.beginStep(ctx, t.Type(), payload.RunID, payload.TraceID, payload.SpanID, payload.EnqueuedAt)
	defer span.End()
	span.SetAttributes(attribute.Int("retry_count", retryCount))

	err := w.engine.StepExecution(ctx, payload.RunID)
	done(err)
	if err != nil {
		return w.stepError(ctx, t.Type(), payload.RunID, err)
	}

	w.businessMetrics.RunsFinishedTotal.WithLabelValues("completed").Inc()
	w.logger.Info("prompt execution completed", "run_id", payload.RunID, "retry_count", retryCount)
	return nil
}

// handleReanalyze recomputes analyses and aggregates from stored
// responses.
func (w *Worker) handleReanalyze(ctx context.Context, t *asynq.Task) error {
	var payload StepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %w", err)
	}

	ctx, span, done := w.beginStep(ctx, t.Type(), payload.RunID, payload.TraceID, payload.SpanID, payload.EnqueuedAt)
	defer span.End()

	err := w.engine.ReanalyzeRun(ctx, payload.RunID)
	done(err)
	if err != nil {
		return w.stepError(ctx, t.Type(), payload.RunID, err)
	}
	return nil
}

// beginStep resumes the enqueueing trace, opens a consumer span, records
// queue wait time and returns a completion callback that observes the
// step duration metric.
func (w *Worker) beginStep(ctx context.Context, taskType, runID, traceID, spanID string, enqueuedAt int64) (context.Context, trace.Span, func(error)) {
	var queueWait time.Duration
	if enqueuedAt > 0 {
		queueWait = time.Since(time.Unix(0, enqueuedAt))
	}
	w.businessMetrics.ObserveQueueWait(taskType, queueWait)

	w.logger.Info("processing workflow task",
		"task_type", taskType,
		"run_id", runID,
		"queue_wait_seconds", queueWait.Seconds(),
	)

	ctx = tracing.ResumeFromIDs(ctx, traceID, spanID)
	ctx, span := otel.Tracer("brandscope").Start(ctx, "asynq.task.process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("task.type", taskType),
			attribute.String("run_id", runID),
			attribute.Float64("queue.wait_time_seconds", queueWait.Seconds()),
			attribute.Int64("enqueued_at", enqueuedAt),
		),
	)

	start := time.Now()
	done := func(err error) {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
		}
		w.businessMetrics.ObserveStep(taskType, status, time.Since(start))
	}
	return ctx, span, done
}

// stepError classifies a step failure. Retriable provider errors go back
// to Asynq for another attempt; permanent errors mark the run failed and
// skip further retries.
func (w *Worker) stepError(ctx context.Context, taskType, runID string, err error) error {
	if isRetriableProviderError(err) {
		w.logger.Warn("retriable step error, will retry",
			"task_type", taskType,
			"run_id", runID,
			"error", err,
		)
		return err
	}

	w.logger.Error("permanent step error",
		"task_type", taskType,
		"run_id", runID,
		"error", err,
	)
	w.engine.Fail(ctx, runID, fmt.Errorf("%s: %w", taskType, err))
	w.businessMetrics.RunsFinishedTotal.WithLabelValues("failed").Inc()
	return fmt.Errorf("%s: %v: %w", taskType, err, asynq.SkipRetry)
}

// isRetriableProviderError determines if an error is retriable
// (connection/timeout/throttling) vs permanent (invalid input).
func isRetriableProviderError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	retriablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"service unavailable",
		"bad gateway",
		"gateway timeout",
		"too many requests",
		"rate limit",
		"context deadline exceeded",
		"context canceled",
		"i/o timeout",
		"no such host",
		"network is unreachable",
		"database is locked",
	}

	for _, pattern := range retriablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
