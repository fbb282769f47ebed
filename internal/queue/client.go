// Package queue drives workflow steps as asynq tasks. Each step is one
// task type; handlers chain the next step except category derivation,
// which halts until the caller selects categories through the API.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Task type constants
const (
	TypeDiscoverSitemap  = "workflow:discover"
	TypeFetchContent     = "workflow:fetch_content"
	TypeDeriveCategories = "workflow:derive_categories"
	TypeGeneratePrompts  = "workflow:generate_prompts"
	TypeExecutePrompts   = "workflow:execute_prompts"
	TypeReanalyze        = "analysis:reanalyze"
)

// Queue names with their worker priorities.
const (
	QueueWorkflow = "workflow"
	QueueAnalysis = "analysis"

	PriorityWorkflow = 6
	PriorityAnalysis = 3
)

// StepPayload is the payload shared by the single-argument step tasks.
type StepPayload struct {
	RunID      string `json:"run_id"`
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"` // Unix nanoseconds
}

// GeneratePromptsPayload carries the user's category selection into the
// prompt generation step.
type GeneratePromptsPayload struct {
	RunID       string   `json:"run_id"`
	CategoryIDs []string `json:"category_ids,omitempty"`
	CompanyID   string   `json:"company_id,omitempty"`
	TraceID     string   `json:"trace_id,omitempty"`
	SpanID      string   `json:"span_id,omitempty"`
	EnqueuedAt  int64    `json:"enqueued_at"`
}

// Client wraps the Asynq client for enqueueing step tasks.
type Client struct {
	client *asynq.Client
}

// ClientConfig contains configuration for the queue client.
type ClientConfig struct {
	RedisAddr string
}

// NewClient creates a new queue client.
func NewClient(cfg ClientConfig) *Client {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}
	return &Client{
		client: asynq.NewClient(redisOpt),
	}
}

// EnqueueDiscover enqueues sitemap discovery for a run.
func (c *Client) EnqueueDiscover(ctx context.Context, runID string) (string, error) {
	return c.enqueueStep(ctx, TypeDiscoverSitemap, runID, QueueWorkflow, 5*time.Minute)
}

// EnqueueFetchContent enqueues the page fetch step.
func (c *Client) EnqueueFetchContent(ctx context.Context, runID string) (string, error) {
	return c.enqueueStep(ctx, TypeFetchContent, runID, QueueWorkflow, 10*time.Minute)
}

// EnqueueDeriveCategories enqueues the category derivation step.
func (c *Client) EnqueueDeriveCategories(ctx context.Context, runID string) (string, error) {
	return c.enqueueStep(ctx, TypeDeriveCategories, runID, QueueWorkflow, 10*time.Minute)
}

// EnqueueExecutePrompts enqueues prompt execution. Responses arrive one
// by one from the search provider, so the timeout covers the whole batch.
func (c *Client) EnqueueExecutePrompts(ctx context.Context, runID string) (string, error) {
	return c.enqueueStep(ctx, TypeExecutePrompts, runID, QueueWorkflow, 30*time.Minute)
}

// EnqueueReanalyze enqueues recomputation of analyses from stored
// responses on the low-priority analysis queue.
func (c *Client) EnqueueReanalyze(ctx context.Context, runID string) (string, error) {
	return c.enqueueStep(ctx, TypeReanalyze, runID, QueueAnalysis, 10*time.Minute)
}

// EnqueueGeneratePrompts enqueues question generation for the selected
// categories.
func (c *Client) EnqueueGeneratePrompts(ctx context.Context, runID string, categoryIDs []string, companyID string) (string, error) {
	payload := GeneratePromptsPayload{
		RunID:       runID,
		CategoryIDs: categoryIDs,
		CompanyID:   companyID,
		EnqueuedAt:  time.Now().UnixNano(),
	}
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		spanCtx := span.SpanContext()
		payload.TraceID = spanCtx.TraceID().String()
		payload.SpanID = spanCtx.SpanID().String()
		span.AddEvent("task_enqueued", trace.WithAttributes(
			attribute.String("task.type", TypeGeneratePrompts),
			attribute.String("run_id", runID),
			attribute.Int("category_ids", len(categoryIDs)),
		))
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal task payload: %w", err)
	}

	task := asynq.NewTask(TypeGeneratePrompts, payloadBytes, asynq.TaskID(taskID(TypeGeneratePrompts, runID)))
	info, err := c.client.Enqueue(task, stepOptions(QueueWorkflow, 10*time.Minute)...)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", TypeGeneratePrompts, err)
	}
	return info.ID, nil
}

func (c *Client) enqueueStep(ctx context.Context, taskType, runID, queue string, timeout time.Duration) (string, error) {
	payload := StepPayload{
		RunID:      runID,
		EnqueuedAt: time.Now().UnixNano(), // Record enqueue time for queue wait metrics
	}
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		spanCtx := span.SpanContext()
		payload.TraceID = spanCtx.TraceID().String()
		payload.SpanID = spanCtx.SpanID().String()
		span.AddEvent("task_enqueued", trace.WithAttributes(
			attribute.String("task.type", taskType),
			attribute.String("run_id", runID),
			attribute.Int64("enqueued_at", payload.EnqueuedAt),
		))
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal task payload: %w", err)
	}

	task := asynq.NewTask(taskType, payloadBytes, asynq.TaskID(taskID(taskType, runID)))
	info, err := c.client.Enqueue(task, stepOptions(queue, timeout)...)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return info.ID, nil
}

// stepOptions returns the shared enqueue options. Task IDs make
// re-enqueueing a pending step a no-op, so resume is idempotent.
func stepOptions(queue string, timeout time.Duration) []asynq.Option {
	return []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(timeout),
		asynq.Queue(queue),
		asynq.Retention(7 * 24 * time.Hour),
	}
}

func taskID(taskType, runID string) string {
	return runID + ":" + taskType
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.client.Close()
}
