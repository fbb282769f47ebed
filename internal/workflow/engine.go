// Package workflow drives a brand-visibility run through its steps:
// sitemap discovery, content fetch, category derivation, prompt generation
// and prompt execution. Every step is externally triggered, persists its
// progress, and leaves the run resumable by id.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brandscope/brandscope/internal/analysis"
	"github.com/brandscope/brandscope/internal/category"
	"github.com/brandscope/brandscope/internal/crawler"
	"github.com/brandscope/brandscope/internal/detector"
	"github.com/brandscope/brandscope/internal/llm"
	"github.com/brandscope/brandscope/internal/models"
	"github.com/brandscope/brandscope/internal/promptgen"
	"github.com/brandscope/brandscope/internal/store"
)

const (
	// DefaultQuestionsPerCategory is how many prompts each selected
	// category yields in step 4.
	DefaultQuestionsPerCategory = 5

	// fallbackMinConfidence is the lowered floor used when the chat
	// provider is down and only the heuristic generator ran.
	fallbackMinConfidence = 0.1
)

// Engine owns the step logic. The chat generator is optional; when it is
// nil (or failing) the deterministic generators carry the run alone.
type Engine struct {
	store     store.Store
	crawler   *crawler.Crawler
	generator *llm.Generator
	search    llm.SearchClient
	catGen    *category.Generator
	promptGen *promptgen.Generator
	logger    *slog.Logger

	QuestionsPerCategory int
}

func NewEngine(s store.Store, c *crawler.Crawler, gen *llm.Generator, search llm.SearchClient, logger *slog.Logger) *Engine {
	return &Engine{
		store:                s,
		crawler:              c,
		generator:            gen,
		search:               search,
		catGen:               category.NewGenerator(),
		promptGen:            promptgen.NewGenerator(),
		logger:               logger,
		QuestionsPerCategory: DefaultQuestionsPerCategory,
	}
}

// StartRun validates the input and creates the run record in its initial
// state. The first step is executed separately.
func (e *Engine) StartRun(ctx context.Context, input models.RunInput) (*models.AnalysisRun, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	run := models.AnalysisRun{
		ID:         uuid.NewString(),
		WebsiteURL: input.WebsiteURL,
		Country:    input.Country,
		Region:     input.Region,
		Language:   strings.ToLower(input.Language),
		Status:     models.StatusRunning,
		Step:       models.StepSitemap,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.store.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	e.logger.Info("run created", "run_id", run.ID, "website", run.WebsiteURL, "country", run.Country)
	return &run, nil
}

// StepSitemap discovers candidate URLs for the run's website and advances
// the run to the content step.
func (e *Engine) StepSitemap(ctx context.Context, runID string) error {
	run, err := e.store.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}

	result, err := e.crawler.DiscoverURLs(ctx, run.WebsiteURL)
	if err != nil {
		return fmt.Errorf("url discovery: %w", err)
	}
	if err := e.store.SaveDiscovery(ctx, runID, result.URLs, result.FoundSitemap); err != nil {
		return fmt.Errorf("persist discovery: %w", err)
	}

	progress := fmt.Sprintf("discovered %d urls (sitemap: %t)", len(result.URLs), result.FoundSitemap)
	return e.advance(ctx, runID, models.StepContent, progress)
}

// StepContent fetches the discovered pages and advances the run to the
// categories step. Individual fetch failures are skipped inside the
// crawler; an entirely empty result is not fatal either, the category step
// falls back to generic categories.
func (e *Engine) StepContent(ctx context.Context, runID string) error {
	urls, _, err := e.store.GetDiscovery(ctx, runID)
	if err != nil {
		return fmt.Errorf("load discovery: %w", err)
	}

	pages := e.crawler.FetchPages(ctx, urls)
	if err := e.store.SavePages(ctx, runID, pages); err != nil {
		return fmt.Errorf("persist pages: %w", err)
	}

	progress := fmt.Sprintf("fetched %d of %d pages", len(pages), len(urls))
	return e.advance(ctx, runID, models.StepCategories, progress)
}

// StepCategories derives categories from the fetched content and persists
// them. The run stays on the categories step: advancing requires the caller
// to select categories and trigger StepPrompts.
func (e *Engine) StepCategories(ctx context.Context, runID string) error {
	run, err := e.store.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}
	pages, err := e.store.GetPages(ctx, runID)
	if err != nil {
		return fmt.Errorf("load pages: %w", err)
	}

	existing, err := e.store.GetCategories(ctx, runID)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	// Re-running this step must never shrink the stored set, so only
	// names not seen before are added.
	derived := e.deriveCategories(ctx, run, pages)
	fresh := mergeCategories(existing, derived)[len(existing):]
	if err := e.store.SaveCategories(ctx, runID, fresh); err != nil {
		return fmt.Errorf("persist categories: %w", err)
	}

	progress := fmt.Sprintf("derived %d categories, awaiting selection", len(existing)+len(fresh))
	if err := e.store.UpdateRunStatus(ctx, runID, models.StatusRunning, models.StepCategories, progress); err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// deriveCategories merges LLM-proposed and heuristic categories,
// de-duplicated by name. A chat failure lowers the heuristic confidence
// floor instead of aborting, and an empty outcome seeds generic categories.
func (e *Engine) deriveCategories(ctx context.Context, run *models.AnalysisRun, pages []models.PageContent) []models.Category {
	var llmCategories []models.Category
	llmFailed := e.generator == nil
	if e.generator != nil {
		content := combineContent(pages)
		proposed, err := e.generator.ProposeCategories(ctx, content, run.WebsiteURL)
		if err != nil {
			e.logger.Warn("llm category proposal failed, falling back to heuristics", "run_id", run.ID, "error", err)
			llmFailed = true
		} else {
			llmCategories = proposed
		}
	}

	heuristic := e.catGen
	if llmFailed {
		heuristic = category.NewGenerator()
		heuristic.MinConfidence = fallbackMinConfidence
	}
	heuristicCategories := heuristic.Generate(pages)

	merged := mergeCategories(llmCategories, heuristicCategories)
	if len(merged) == 0 {
		e.logger.Warn("no categories derived, seeding generic set", "run_id", run.ID)
		merged = category.GenericCategories()
	}
	return merged
}

// StepPrompts generates questions for the user-selected categories and
// advances the run to the prompts step. When companyID is non-empty the
// prompts are additionally stored as reusable company prompts.
func (e *Engine) StepPrompts(ctx context.Context, runID string, selectedCategoryIDs []string, companyID string) error {
	run, err := e.store.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}
	categories, err := e.store.GetCategories(ctx, runID)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	selected := selectCategories(categories, selectedCategoryIDs)
	if len(selected) == 0 {
		return fmt.Errorf("no selected categories match run %s", runID)
	}

	input := runInput(run)
	product := promptgen.ProductName(run.WebsiteURL)
	now := time.Now().UTC()

	var prompts []models.Prompt
	for _, cat := range selected {
		questions := e.questionsForCategory(ctx, product, cat, input)
		for _, q := range questions {
			prompts = append(prompts, models.Prompt{
				ID:         uuid.NewString(),
				CategoryID: cat.ID,
				Question:   q,
				Language:   input.Language,
				Country:    input.Country,
				Region:     input.Region,
				Intent:     promptgen.ClassifyIntent(q),
				CreatedAt:  now,
			})
		}
	}

	if err := e.store.SavePrompts(ctx, runID, prompts); err != nil {
		return fmt.Errorf("persist prompts: %w", err)
	}
	if companyID != "" {
		if err := e.store.SaveCompanyPrompts(ctx, companyID, prompts); err != nil {
			return fmt.Errorf("persist company prompts: %w", err)
		}
	}

	progress := fmt.Sprintf("generated %d prompts for %d categories", len(prompts), len(selected))
	return e.advance(ctx, runID, models.StepPrompts, progress)
}

// questionsForCategory asks the chat provider for questions and backfills
// any shortfall from the deterministic templates.
func (e *Engine) questionsForCategory(ctx context.Context, product string, cat models.Category, input models.RunInput) []string {
	n := e.QuestionsPerCategory
	var questions []string

	if e.generator != nil {
		generated, err := e.generator.GenerateQuestions(ctx, product, cat.Name, cat.Description, input, n)
		if err != nil {
			e.logger.Warn("llm question generation failed, using templates", "category", cat.Name, "error", err)
		} else {
			questions = generated
		}
	}

	if len(questions) < n {
		seen := make(map[string]bool, len(questions))
		for _, q := range questions {
			seen[strings.ToLower(q)] = true
		}
		for _, p := range e.promptGen.Generate(input, []models.Category{cat}) {
			if len(questions) >= n {
				break
			}
			if !seen[strings.ToLower(p.Question)] {
				seen[strings.ToLower(p.Question)] = true
				questions = append(questions, p.Question)
			}
		}
	}
	if len(questions) > n {
		questions = questions[:n]
	}
	return questions
}

// StepExecution runs all prompts sequentially through the search
// collaborator, analyzing each response as it arrives, then aggregates the
// run metrics and completes the run. Individual prompt failures are logged
// and excluded; they do not stop the batch.
func (e *Engine) StepExecution(ctx context.Context, runID string) error {
	run, err := e.store.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}
	prompts, err := e.store.GetPrompts(ctx, runID)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}
	if len(prompts) == 0 {
		return fmt.Errorf("run %s has no prompts to execute", runID)
	}
	if e.search == nil {
		return fmt.Errorf("no search provider configured")
	}

	engine := e.analysisEngine(run)
	executed := 0
	for i, p := range prompts {
		progress := fmt.Sprintf("executing prompt %d of %d", i+1, len(prompts))
		if err := e.store.UpdateRunStatus(ctx, runID, models.StatusRunning, models.StepExecution, progress); err != nil {
			return fmt.Errorf("update run: %w", err)
		}

		resp, err := e.search.Execute(ctx, p.Question)
		if err != nil {
			e.logger.Warn("prompt execution failed", "run_id", runID, "prompt_id", p.ID, "error", err)
			continue
		}
		resp.PromptID = p.ID

		if err := e.store.SaveResponses(ctx, runID, []models.LLMResponse{resp}); err != nil {
			return fmt.Errorf("persist response: %w", err)
		}

		// Eager per-prompt analysis keeps dashboards fresh mid-run.
		a := engine.AnalyzePair(p, resp)
		if err := e.store.SaveAnalyses(ctx, runID, []models.PromptAnalysis{a}); err != nil {
			return fmt.Errorf("persist analysis: %w", err)
		}
		executed++
	}

	if err := e.aggregate(ctx, run, engine); err != nil {
		return err
	}

	progress := fmt.Sprintf("executed %d of %d prompts", executed, len(prompts))
	if err := e.store.UpdateRunStatus(ctx, runID, models.StatusCompleted, models.StepCompleted, progress); err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	e.logger.Info("run completed", "run_id", runID, "executed", executed, "total", len(prompts))
	return nil
}

// ReanalyzeRun recomputes every stored analysis and the run aggregates from
// persisted responses. Analysis is pure, so this is safe to repeat.
func (e *Engine) ReanalyzeRun(ctx context.Context, runID string) error {
	run, err := e.store.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}
	prompts, err := e.store.GetPrompts(ctx, runID)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}
	responses, err := e.store.GetResponses(ctx, runID)
	if err != nil {
		return fmt.Errorf("load responses: %w", err)
	}

	engine := e.analysisEngine(run)
	analyses := engine.AnalyzeAll(prompts, responses)
	if err := e.store.SaveAnalyses(ctx, runID, analyses); err != nil {
		return fmt.Errorf("persist analyses: %w", err)
	}
	return e.aggregate(ctx, run, engine)
}

// Fail marks the run failed with the raised message. This is the only
// place a run transitions to failed.
func (e *Engine) Fail(ctx context.Context, runID string, cause error) {
	if err := e.store.SetRunError(ctx, runID, cause.Error()); err != nil {
		e.logger.Error("failed to record run failure", "run_id", runID, "error", err)
	}
}

// aggregate recomputes category metrics, the competitive analysis and the
// summary rollup from whatever analyses exist.
func (e *Engine) aggregate(ctx context.Context, run *models.AnalysisRun, engine *analysis.Engine) error {
	prompts, err := e.store.GetPrompts(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}
	analyses, err := e.store.GetAnalyses(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("load analyses: %w", err)
	}
	categories, err := e.store.GetCategories(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	var metrics []models.CategoryMetrics
	for _, cat := range categories {
		metrics = append(metrics, engine.CategoryMetrics(cat.ID, prompts, analyses))
	}
	if err := e.store.SaveCategoryMetrics(ctx, run.ID, metrics); err != nil {
		return fmt.Errorf("persist category metrics: %w", err)
	}

	competitive := engine.CompetitiveAnalysis(prompts, analyses)
	if err := e.store.SaveCompetitiveAnalysis(ctx, run.ID, competitive); err != nil {
		return fmt.Errorf("persist competitive analysis: %w", err)
	}

	summary := engine.Summary(run.ID, prompts, analyses, metrics, competitive)
	if err := e.store.SaveSummary(ctx, run.ID, summary); err != nil {
		return fmt.Errorf("persist summary: %w", err)
	}

	// Each aggregation appends one point per tracked metric so repeated
	// analyses of the same run build a history.
	points := []models.TimeSeriesPoint{
		{RunID: run.ID, Metric: models.MetricAvgVisibility, Value: summary.AvgVisibility, Timestamp: summary.Timestamp},
		{RunID: run.ID, Metric: models.MetricBrandShare, Value: summary.BrandShare, Timestamp: summary.Timestamp},
	}
	if err := e.store.AppendTimeSeries(ctx, run.ID, points); err != nil {
		return fmt.Errorf("persist time series: %w", err)
	}
	return nil
}

func (e *Engine) analysisEngine(run *models.AnalysisRun) *analysis.Engine {
	brand := promptgen.ProductName(run.WebsiteURL)
	return analysis.NewEngine(brand, run.WebsiteURL, nil, detector.DefaultFuzzyThreshold)
}

func (e *Engine) advance(ctx context.Context, runID, nextStep, progress string) error {
	if err := e.store.UpdateRunStatus(ctx, runID, models.StatusRunning, nextStep, progress); err != nil {
		return fmt.Errorf("advance run to %s: %w", nextStep, err)
	}
	return nil
}

func validateInput(input models.RunInput) error {
	if strings.TrimSpace(input.WebsiteURL) == "" {
		return fmt.Errorf("website_url is required")
	}
	if strings.TrimSpace(input.Country) == "" {
		return fmt.Errorf("country is required")
	}
	if strings.TrimSpace(input.Language) == "" {
		return fmt.Errorf("language is required")
	}
	return nil
}

func runInput(run *models.AnalysisRun) models.RunInput {
	return models.RunInput{
		WebsiteURL: run.WebsiteURL,
		Country:    run.Country,
		Region:     run.Region,
		Language:   run.Language,
	}
}

func selectCategories(categories []models.Category, ids []string) []models.Category {
	if len(ids) == 0 {
		return categories
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Category
	for _, c := range categories {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// mergeCategories keeps LLM categories first, then heuristic ones whose
// names are new, compared case-insensitively.
func mergeCategories(llmCategories, heuristicCategories []models.Category) []models.Category {
	seen := make(map[string]bool)
	var out []models.Category
	for _, c := range llmCategories {
		key := strings.ToLower(c.Name)
		if !seen[key] {
			seen[key] = true
			out = append(out, c)
		}
	}
	for _, c := range heuristicCategories {
		key := strings.ToLower(c.Name)
		if !seen[key] {
			seen[key] = true
			out = append(out, c)
		}
	}
	return out
}

func combineContent(pages []models.PageContent) string {
	var sb strings.Builder
	for _, p := range pages {
		sb.WriteString(p.Title)
		sb.WriteByte('\n')
		sb.WriteString(p.Content)
		sb.WriteByte('\n')
	}
	return sb.String()
}
