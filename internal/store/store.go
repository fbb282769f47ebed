// Package store persists analysis runs and everything derived from them.
// The SQLite implementation is the production path; the in-memory
// implementation backs tests and ad-hoc tooling.
package store

import (
	"context"
	"errors"

	"github.com/brandscope/brandscope/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence collaborator of the workflow engine. All Save
// methods are no-ops when called with empty collections, and all writes are
// scoped to a single run.
type Store interface {
	SaveRun(ctx context.Context, run models.AnalysisRun) error
	GetRun(ctx context.Context, id string) (*models.AnalysisRun, error)
	UpdateRunStatus(ctx context.Context, id, status, step, progress string) error
	SetRunError(ctx context.Context, id, message string) error
	ListRuns(ctx context.Context, limit int) ([]models.AnalysisRun, error)

	SaveDiscovery(ctx context.Context, runID string, urls []string, foundSitemap bool) error
	GetDiscovery(ctx context.Context, runID string) ([]string, bool, error)

	SavePages(ctx context.Context, runID string, pages []models.PageContent) error
	GetPages(ctx context.Context, runID string) ([]models.PageContent, error)

	SaveCategories(ctx context.Context, runID string, categories []models.Category) error
	GetCategories(ctx context.Context, runID string) ([]models.Category, error)

	SavePrompts(ctx context.Context, runID string, prompts []models.Prompt) error
	GetPrompts(ctx context.Context, runID string) ([]models.Prompt, error)

	SaveCompanyPrompts(ctx context.Context, companyID string, prompts []models.Prompt) error
	GetCompanyPrompts(ctx context.Context, companyID string) ([]models.Prompt, error)

	SaveResponses(ctx context.Context, runID string, responses []models.LLMResponse) error
	GetResponses(ctx context.Context, runID string) ([]models.LLMResponse, error)

	SaveAnalyses(ctx context.Context, runID string, analyses []models.PromptAnalysis) error
	GetAnalyses(ctx context.Context, runID string) ([]models.PromptAnalysis, error)

	SaveCategoryMetrics(ctx context.Context, runID string, metrics []models.CategoryMetrics) error
	GetCategoryMetrics(ctx context.Context, runID string) ([]models.CategoryMetrics, error)

	SaveCompetitiveAnalysis(ctx context.Context, runID string, ca models.CompetitiveAnalysis) error
	GetCompetitiveAnalysis(ctx context.Context, runID string) (*models.CompetitiveAnalysis, error)

	SaveSummary(ctx context.Context, runID string, summary models.AnalysisSummary) error
	GetSummary(ctx context.Context, runID string) (*models.AnalysisSummary, error)

	AppendTimeSeries(ctx context.Context, runID string, points []models.TimeSeriesPoint) error
	GetTimeSeries(ctx context.Context, runID string) ([]models.TimeSeriesPoint, error)

	Close() error
}
