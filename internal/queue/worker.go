package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/brandscope/brandscope/internal/metrics"
	"github.com/brandscope/brandscope/internal/workflow"
)

// Worker wraps the Asynq server for processing workflow step tasks.
type Worker struct {
	server          *asynq.Server
	mux             *asynq.ServeMux
	engine          *workflow.Engine
	queueClient     *Client
	concurrency     int
	logger          *slog.Logger
	businessMetrics *metrics.BusinessMetrics
}

// WorkerConfig contains configuration for the queue worker.
type WorkerConfig struct {
	RedisAddr   string
	Concurrency int
}

// NewWorker creates a new queue worker.
func NewWorker(cfg WorkerConfig, engine *workflow.Engine, queueClient *Client, bm *metrics.BusinessMetrics, logger *slog.Logger) *Worker {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}

	serverCfg := asynq.Config{
		Concurrency: cfg.Concurrency,

		// Workflow steps outrank reanalysis. StrictPriority stays off so
		// reanalysis still progresses under load.
		Queues: map[string]int{
			QueueWorkflow: PriorityWorkflow,
			QueueAnalysis: PriorityAnalysis,
		},
		StrictPriority: false,

		RetryDelayFunc: retryDelay,

		ShutdownTimeout: 30 * time.Second,

		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)

			logger.Error("task processing error",
				"task_type", task.Type(),
				"error", err,
				"retry_count", retried,
				"max_retries", maxRetry,
			)

			// On the final attempt the run is marked failed so clients
			// stop polling a run that will never finish.
			if retried >= maxRetry {
				if runID := runIDFromPayload(task.Payload()); runID != "" {
					engine.Fail(ctx, runID, fmt.Errorf("%s: %w", task.Type(), err))
					bm.RunsFinishedTotal.WithLabelValues("failed").Inc()
				}
			}
		}),
	}

	w := &Worker{
		server:          asynq.NewServer(redisOpt, serverCfg),
		mux:             asynq.NewServeMux(),
		engine:          engine,
		queueClient:     queueClient,
		concurrency:     cfg.Concurrency,
		logger:          logger,
		businessMetrics: bm,
	}
	w.registerHandlers()
	return w
}

// registerHandlers registers all task handlers with the worker.
func (w *Worker) registerHandlers() {
	w.mux.HandleFunc(TypeDiscoverSitemap, w.handleDiscoverSitemap)
	w.mux.HandleFunc(TypeFetchContent, w.handleFetchContent)
	w.mux.HandleFunc(TypeDeriveCategories, w.handleDeriveCategories)
	w.mux.HandleFunc(TypeGeneratePrompts, w.handleGeneratePrompts)
	w.mux.HandleFunc(TypeExecutePrompts, w.handleExecutePrompts)
	w.mux.HandleFunc(TypeReanalyze, w.handleReanalyze)
}

// retryDelay backs off aggressively for provider-bound steps: prompt
// execution and generation sit behind rate-limited LLM APIs, so their
// retry window stretches to hours. Crawl steps retry on a short ladder.
func retryDelay(n int, err error, task *asynq.Task) time.Duration {
	switch task.Type() {
	case TypeGeneratePrompts, TypeExecutePrompts, TypeReanalyze:
		delays := []time.Duration{
			30 * time.Second,
			1 * time.Minute,
			5 * time.Minute,
			15 * time.Minute,
			1 * time.Hour,
		}
		if n < len(delays) {
			return delays[n]
		}
		return delays[len(delays)-1]
	}

	delays := []time.Duration{
		1 * time.Minute,
		5 * time.Minute,
		15 * time.Minute,
	}
	if n < len(delays) {
		return delays[n]
	}
	return delays[len(delays)-1]
}

// runIDFromPayload extracts the run ID shared by every payload shape.
func runIDFromPayload(payload []byte) string {
	var p struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return ""
	}
	return p.RunID
}

// Start starts the worker to begin processing tasks. Run blocks until
// Shutdown is called.
func (w *Worker) Start() error {
	w.logger.Info("starting asynq worker",
		"concurrency", w.concurrency,
		"queues", map[string]int{QueueWorkflow: PriorityWorkflow, QueueAnalysis: PriorityAnalysis},
	)

	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("asynq server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the worker.
func (w *Worker) Shutdown() {
	w.logger.Info("shutting down asynq worker")
	w.server.Shutdown()
}
