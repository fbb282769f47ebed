package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/brandscope/brandscope/internal/models"
)

// Memory is an in-process Store used by tests and dry runs.
type Memory struct {
	mu sync.RWMutex

	runs            map[string]models.AnalysisRun
	urls            map[string][]string
	foundSitemap    map[string]bool
	pages           map[string][]models.PageContent
	categories      map[string][]models.Category
	prompts         map[string][]models.Prompt
	companyPrompts  map[string][]models.Prompt
	responses       map[string]map[string]models.LLMResponse
	analyses        map[string]map[string]models.PromptAnalysis
	categoryMetrics map[string]map[string]models.CategoryMetrics
	competitive     map[string]models.CompetitiveAnalysis
	summaries       map[string][]models.AnalysisSummary
	timeSeries      map[string][]models.TimeSeriesPoint
}

func NewMemory() *Memory {
	return &Memory{
		runs:            make(map[string]models.AnalysisRun),
		urls:            make(map[string][]string),
		foundSitemap:    make(map[string]bool),
		pages:           make(map[string][]models.PageContent),
		categories:      make(map[string][]models.Category),
		prompts:         make(map[string][]models.Prompt),
		companyPrompts:  make(map[string][]models.Prompt),
		responses:       make(map[string]map[string]models.LLMResponse),
		analyses:        make(map[string]map[string]models.PromptAnalysis),
		categoryMetrics: make(map[string]map[string]models.CategoryMetrics),
		competitive:     make(map[string]models.CompetitiveAnalysis),
		summaries:       make(map[string][]models.AnalysisSummary),
		timeSeries:      make(map[string][]models.TimeSeriesPoint),
	}
}

func (m *Memory) SaveRun(_ context.Context, run models.AnalysisRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	return nil
}

func (m *Memory) GetRun(_ context.Context, id string) (*models.AnalysisRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &run, nil
}

func (m *Memory) UpdateRunStatus(_ context.Context, id, status, step, progress string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	run.Status = status
	run.Step = step
	run.Progress = progress
	run.UpdatedAt = time.Now().UTC()
	m.runs[id] = run
	return nil
}

func (m *Memory) SetRunError(_ context.Context, id, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	run.Status = models.StatusFailed
	run.ErrorMessage = message
	run.UpdatedAt = time.Now().UTC()
	m.runs[id] = run
	return nil
}

func (m *Memory) ListRuns(_ context.Context, limit int) ([]models.AnalysisRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	runs := make([]models.AnalysisRun, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run)
	}
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (m *Memory) SaveDiscovery(_ context.Context, runID string, urls []string, foundSitemap bool) error {
	if len(urls) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls[runID] = append([]string(nil), urls...)
	m.foundSitemap[runID] = foundSitemap
	return nil
}

func (m *Memory) GetDiscovery(_ context.Context, runID string) ([]string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.urls[runID]...), m.foundSitemap[runID], nil
}

func (m *Memory) SavePages(_ context.Context, runID string, pages []models.PageContent) error {
	if len(pages) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[runID] = append([]models.PageContent(nil), pages...)
	return nil
}

func (m *Memory) GetPages(_ context.Context, runID string) ([]models.PageContent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.PageContent(nil), m.pages[runID]...), nil
}

func (m *Memory) SaveCategories(_ context.Context, runID string, categories []models.Category) error {
	if len(categories) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing := m.categories[runID]
	for _, c := range categories {
		replaced := false
		for i := range existing {
			if existing[i].ID == c.ID {
				existing[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, c)
		}
	}
	m.categories[runID] = existing
	return nil
}

func (m *Memory) GetCategories(_ context.Context, runID string) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Category(nil), m.categories[runID]...), nil
}

func (m *Memory) SavePrompts(_ context.Context, runID string, prompts []models.Prompt) error {
	return m.savePrompts(m.prompts, runID, prompts)
}

func (m *Memory) GetPrompts(_ context.Context, runID string) ([]models.Prompt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Prompt(nil), m.prompts[runID]...), nil
}

func (m *Memory) SaveCompanyPrompts(_ context.Context, companyID string, prompts []models.Prompt) error {
	return m.savePrompts(m.companyPrompts, companyID, prompts)
}

func (m *Memory) GetCompanyPrompts(_ context.Context, companyID string) ([]models.Prompt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Prompt(nil), m.companyPrompts[companyID]...), nil
}

func (m *Memory) savePrompts(dst map[string][]models.Prompt, ownerID string, prompts []models.Prompt) error {
	if len(prompts) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing := dst[ownerID]
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.ID] = true
	}
	for _, p := range prompts {
		if !seen[p.ID] {
			existing = append(existing, p)
		}
	}
	dst[ownerID] = existing
	return nil
}

func (m *Memory) SaveResponses(_ context.Context, runID string, responses []models.LLMResponse) error {
	if len(responses) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.responses[runID] == nil {
		m.responses[runID] = make(map[string]models.LLMResponse)
	}
	for _, r := range responses {
		m.responses[runID][r.PromptID] = r
	}
	return nil
}

func (m *Memory) GetResponses(_ context.Context, runID string) ([]models.LLMResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.LLMResponse, 0, len(m.responses[runID]))
	for _, r := range m.responses[runID] {
		out = append(out, r)
	}
	sortByTimestamp(out, func(r models.LLMResponse) (time.Time, string) { return r.Timestamp, r.PromptID })
	return out, nil
}

func (m *Memory) SaveAnalyses(_ context.Context, runID string, analyses []models.PromptAnalysis) error {
	if len(analyses) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.analyses[runID] == nil {
		m.analyses[runID] = make(map[string]models.PromptAnalysis)
	}
	for _, a := range analyses {
		m.analyses[runID][a.PromptID] = a
	}
	return nil
}

func (m *Memory) GetAnalyses(_ context.Context, runID string) ([]models.PromptAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.PromptAnalysis, 0, len(m.analyses[runID]))
	for _, a := range m.analyses[runID] {
		out = append(out, a)
	}
	sortByTimestamp(out, func(a models.PromptAnalysis) (time.Time, string) { return a.Timestamp, a.PromptID })
	return out, nil
}

func (m *Memory) SaveCategoryMetrics(_ context.Context, runID string, metrics []models.CategoryMetrics) error {
	if len(metrics) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.categoryMetrics[runID] == nil {
		m.categoryMetrics[runID] = make(map[string]models.CategoryMetrics)
	}
	for _, metric := range metrics {
		m.categoryMetrics[runID][metric.CategoryID] = metric
	}
	return nil
}

func (m *Memory) GetCategoryMetrics(_ context.Context, runID string) ([]models.CategoryMetrics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.CategoryMetrics, 0, len(m.categoryMetrics[runID]))
	for _, metric := range m.categoryMetrics[runID] {
		out = append(out, metric)
	}
	sortByTimestamp(out, func(cm models.CategoryMetrics) (time.Time, string) { return cm.Timestamp, cm.CategoryID })
	return out, nil
}

func (m *Memory) SaveCompetitiveAnalysis(_ context.Context, runID string, ca models.CompetitiveAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.competitive[runID] = ca
	return nil
}

func (m *Memory) GetCompetitiveAnalysis(_ context.Context, runID string) (*models.CompetitiveAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ca, ok := m.competitive[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return &ca, nil
}

func (m *Memory) SaveSummary(_ context.Context, runID string, summary models.AnalysisSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[runID] = append(m.summaries[runID], summary)
	return nil
}

func (m *Memory) GetSummary(_ context.Context, runID string) (*models.AnalysisSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.summaries[runID]
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	latest := list[len(list)-1]
	return &latest, nil
}

func (m *Memory) AppendTimeSeries(_ context.Context, runID string, points []models.TimeSeriesPoint) error {
	if len(points) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeSeries[runID] = append(m.timeSeries[runID], points...)
	return nil
}

func (m *Memory) GetTimeSeries(_ context.Context, runID string) ([]models.TimeSeriesPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]models.TimeSeriesPoint(nil), m.timeSeries[runID]...)
	sortByTimestamp(out, func(p models.TimeSeriesPoint) (time.Time, string) { return p.Timestamp, p.Metric })
	return out, nil
}

func (m *Memory) Close() error { return nil }

func sortByTimestamp[T any](items []T, key func(T) (time.Time, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, ki := key(items[i])
		tj, kj := key(items[j])
		if ti.Equal(tj) {
			return ki < kj
		}
		return ti.Before(tj)
	})
}
