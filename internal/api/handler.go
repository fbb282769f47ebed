// Package api exposes the HTTP surface: run creation and status, category
// listing and selection, prompts, analysis results and the summary rollup.
// Run creation and category selection enqueue workflow tasks; everything
// else reads from the store.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/brandscope/brandscope/internal/models"
	"github.com/brandscope/brandscope/internal/store"
	"github.com/brandscope/brandscope/internal/workflow"
	"github.com/brandscope/brandscope/pkg/tracing"
)

// Enqueuer is the slice of the queue client the API needs.
type Enqueuer interface {
	EnqueueDiscover(ctx context.Context, runID string) (string, error)
	EnqueueGeneratePrompts(ctx context.Context, runID string, categoryIDs []string, companyID string) (string, error)
	EnqueueReanalyze(ctx context.Context, runID string) (string, error)
}

// Handler handles HTTP requests
type Handler struct {
	store  store.Store
	engine *workflow.Engine
	queue  Enqueuer
	mux    *http.ServeMux
}

// NewHandler creates a new API handler with CORS support and metrics
func NewHandler(s store.Store, engine *workflow.Engine, queue Enqueuer) http.Handler {
	h := &Handler{
		store:  s,
		engine: engine,
		queue:  queue,
		mux:    http.NewServeMux(),
	}

	h.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(h.mux)
}

// setupRoutes configures all API routes
func (h *Handler) setupRoutes() {
	h.mux.Handle("/metrics", promhttp.Handler()) // Prometheus metrics endpoint
	h.mux.HandleFunc("/api/runs", h.handleRuns)
	h.mux.HandleFunc("/api/runs/", h.handleRunOperations)
	h.mux.HandleFunc("/api/companies/", h.handleCompanyOperations)
	h.mux.HandleFunc("/health", h.handleHealth)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleRuns creates a run (POST) or lists recent runs (GET).
func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createRun(w, r)
	case http.MethodGet:
		h.listRuns(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// createRun validates the input, persists the run and enqueues sitemap
// discovery.
func (h *Handler) createRun(w http.ResponseWriter, r *http.Request) {
	var input models.RunInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	run, err := h.engine.StartRun(ctx, input)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tracing.SetSpanAttributes(ctx,
		attribute.String("run.id", run.ID),
		attribute.String("run.website", run.WebsiteURL))

	taskID, err := h.queue.EnqueueDiscover(ctx, run.ID)
	if err != nil {
		respondError(w, fmt.Sprintf("Failed to enqueue discovery: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"run_id":  run.ID,
		"task_id": taskID,
		"status":  run.Status,
		"step":    run.Step,
	}, http.StatusAccepted)
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, runs, http.StatusOK)
}

// handleRunOperations dispatches /api/runs/{id}[/subresource].
func (h *Handler) handleRunOperations(w http.ResponseWriter, r *http.Request) {
	rest := r.URL.Path[len("/api/runs/"):]
	runID, sub, _ := strings.Cut(rest, "/")
	if runID == "" {
		respondError(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	switch sub {
	case "":
		h.getRun(w, r, runID)
	case "categories":
		switch r.Method {
		case http.MethodGet:
			h.getCategories(w, r, runID)
		case http.MethodPost:
			h.selectCategories(w, r, runID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "prompts":
		h.getPrompts(w, r, runID)
	case "analysis":
		h.getAnalysis(w, r, runID)
	case "summary":
		h.getSummary(w, r, runID)
	case "timeseries":
		h.getTimeSeries(w, r, runID)
	case "reanalyze":
		h.reanalyzeRun(w, r, runID)
	default:
		respondError(w, "Unknown resource", http.StatusNotFound)
	}
}

func (h *Handler) getRun(w http.ResponseWriter, r *http.Request, runID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	run, err := h.store.GetRun(r.Context(), runID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, run, http.StatusOK)
}

func (h *Handler) getCategories(w http.ResponseWriter, r *http.Request, runID string) {
	if _, err := h.store.GetRun(r.Context(), runID); err != nil {
		respondStoreError(w, err)
		return
	}

	categories, err := h.store.GetCategories(r.Context(), runID)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, categories, http.StatusOK)
}

// selectCategories accepts the user's category selection and enqueues
// prompt generation. An empty selection means all derived categories.
func (h *Handler) selectCategories(w http.ResponseWriter, r *http.Request, runID string) {
	var req struct {
		CategoryIDs []string `json:"category_ids"`
		CompanyID   string   `json:"company_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	run, err := h.store.GetRun(ctx, runID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if run.Step != models.StepCategories {
		respondError(w, fmt.Sprintf("run is at step %q, category selection requires %q", run.Step, models.StepCategories), http.StatusConflict)
		return
	}

	taskID, err := h.queue.EnqueueGeneratePrompts(ctx, runID, req.CategoryIDs, req.CompanyID)
	if err != nil {
		respondError(w, fmt.Sprintf("Failed to enqueue prompt generation: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"run_id":  runID,
		"task_id": taskID,
		"status":  "queued",
	}, http.StatusAccepted)
}

func (h *Handler) getPrompts(w http.ResponseWriter, r *http.Request, runID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, err := h.store.GetRun(r.Context(), runID); err != nil {
		respondStoreError(w, err)
		return
	}

	prompts, err := h.store.GetPrompts(r.Context(), runID)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, prompts, http.StatusOK)
}

// getAnalysis returns the per-prompt analyses together with the category
// metrics and competitive analysis for the run.
func (h *Handler) getAnalysis(w http.ResponseWriter, r *http.Request, runID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	if _, err := h.store.GetRun(ctx, runID); err != nil {
		respondStoreError(w, err)
		return
	}

	analyses, err := h.store.GetAnalyses(ctx, runID)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics, err := h.store.GetCategoryMetrics(ctx, runID)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"analyses":         analyses,
		"category_metrics": metrics,
	}
	competitive, err := h.store.GetCompetitiveAnalysis(ctx, runID)
	switch {
	case err == nil:
		response["competitive_analysis"] = competitive
	case errors.Is(err, store.ErrNotFound):
		// Execution has not finished yet.
	default:
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, response, http.StatusOK)
}

func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request, runID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := h.store.GetSummary(r.Context(), runID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, summary, http.StatusOK)
}

// getTimeSeries returns the metric history accumulated by each analysis
// of the run, oldest point first.
func (h *Handler) getTimeSeries(w http.ResponseWriter, r *http.Request, runID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, err := h.store.GetRun(r.Context(), runID); err != nil {
		respondStoreError(w, err)
		return
	}

	points, err := h.store.GetTimeSeries(r.Context(), runID)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, points, http.StatusOK)
}

// reanalyzeRun enqueues a rescoring of the run's stored responses.
func (h *Handler) reanalyzeRun(w http.ResponseWriter, r *http.Request, runID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if _, err := h.store.GetRun(ctx, runID); err != nil {
		respondStoreError(w, err)
		return
	}

	taskID, err := h.queue.EnqueueReanalyze(ctx, runID)
	if err != nil {
		respondError(w, fmt.Sprintf("Failed to enqueue reanalysis: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"run_id":  runID,
		"task_id": taskID,
		"status":  "queued",
	}, http.StatusAccepted)
}

// handleCompanyOperations dispatches /api/companies/{id}/prompts, the
// cross-run prompt library kept per company.
func (h *Handler) handleCompanyOperations(w http.ResponseWriter, r *http.Request) {
	rest := r.URL.Path[len("/api/companies/"):]
	companyID, sub, _ := strings.Cut(rest, "/")
	if companyID == "" {
		respondError(w, "Company ID is required", http.StatusBadRequest)
		return
	}
	if sub != "prompts" {
		respondError(w, "Unknown resource", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	prompts, err := h.store.GetCompanyPrompts(r.Context(), companyID)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, prompts, http.StatusOK)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, "not found", http.StatusNotFound)
		return
	}
	respondError(w, err.Error(), http.StatusInternalServerError)
}
