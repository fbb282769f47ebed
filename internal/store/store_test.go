package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandscope/brandscope/internal/models"
)

// runStoreTests exercises a Store implementation against the shared
// contract so SQLite and Memory stay interchangeable.
func runStoreTests(t *testing.T, s Store) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	run := models.AnalysisRun{
		ID:         "run-1",
		WebsiteURL: "https://acme.com",
		Country:    "Germany",
		Language:   "en",
		Status:     models.StatusRunning,
		Step:       models.StepSitemap,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	t.Run("run lifecycle", func(t *testing.T) {
		require.NoError(t, s.SaveRun(ctx, run))

		got, err := s.GetRun(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, "https://acme.com", got.WebsiteURL)
		assert.Equal(t, models.StepSitemap, got.Step)

		require.NoError(t, s.UpdateRunStatus(ctx, "run-1", models.StatusRunning, models.StepContent, "fetching pages"))
		got, err = s.GetRun(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, models.StepContent, got.Step)
		assert.Equal(t, "fetching pages", got.Progress)

		_, err = s.GetRun(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		assert.ErrorIs(t, s.UpdateRunStatus(ctx, "missing", models.StatusRunning, models.StepContent, ""), ErrNotFound)
	})

	t.Run("run failure", func(t *testing.T) {
		require.NoError(t, s.SetRunError(ctx, "run-1", "sitemap fetch exploded"))
		got, err := s.GetRun(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusFailed, got.Status)
		assert.Equal(t, "sitemap fetch exploded", got.ErrorMessage)
	})

	t.Run("discovery", func(t *testing.T) {
		require.NoError(t, s.SaveDiscovery(ctx, "run-1", []string{"https://acme.com", "https://acme.com/pricing"}, true))
		urls, foundSitemap, err := s.GetDiscovery(ctx, "run-1")
		require.NoError(t, err)
		assert.True(t, foundSitemap)
		assert.Equal(t, []string{"https://acme.com", "https://acme.com/pricing"}, urls)
	})

	t.Run("pages", func(t *testing.T) {
		pages := []models.PageContent{
			{URL: "https://acme.com", Title: "Home", Headings: "Welcome", Content: "Acme makes widgets"},
		}
		require.NoError(t, s.SavePages(ctx, "run-1", pages))
		got, err := s.GetPages(ctx, "run-1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Acme makes widgets", got[0].Content)
	})

	t.Run("categories", func(t *testing.T) {
		cats := []models.Category{
			{ID: "cat-1", Name: "Pricing", Description: "Cost questions", Confidence: 0.8, SourcePages: []string{"https://acme.com"}},
		}
		require.NoError(t, s.SaveCategories(ctx, "run-1", cats))
		got, err := s.GetCategories(ctx, "run-1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Pricing", got[0].Name)
		assert.Equal(t, []string{"https://acme.com"}, got[0].SourcePages)

		// Saving the same category again must not duplicate it.
		require.NoError(t, s.SaveCategories(ctx, "run-1", cats))
		got, err = s.GetCategories(ctx, "run-1")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("prompts", func(t *testing.T) {
		prompts := []models.Prompt{
			{ID: "p1", CategoryID: "cat-1", Question: "How much does Acme cost?", Language: "en", Country: "Germany", Intent: models.IntentHigh, CreatedAt: now},
			{ID: "p2", CategoryID: "cat-1", Question: "Is Acme available?", Language: "en", Country: "Germany", Intent: models.IntentMedium, CreatedAt: now.Add(time.Second)},
		}
		require.NoError(t, s.SavePrompts(ctx, "run-1", prompts))
		got, err := s.GetPrompts(ctx, "run-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "p1", got[0].ID)

		require.NoError(t, s.SaveCompanyPrompts(ctx, "company-7", prompts))
		company, err := s.GetCompanyPrompts(ctx, "company-7")
		require.NoError(t, err)
		assert.Len(t, company, 2)
	})

	t.Run("responses", func(t *testing.T) {
		responses := []models.LLMResponse{
			{
				PromptID:   "p1",
				OutputText: "Acme costs 10 euro",
				Citations:  []models.Citation{{URL: "https://acme.com/pricing", Title: "Pricing", Snippet: "plans"}},
				Model:      "sonar",
				Timestamp:  now,
			},
		}
		require.NoError(t, s.SaveResponses(ctx, "run-1", responses))
		got, err := s.GetResponses(ctx, "run-1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Acme costs 10 euro", got[0].OutputText)
		require.Len(t, got[0].Citations, 1)
		assert.Equal(t, "https://acme.com/pricing", got[0].Citations[0].URL)
	})

	t.Run("analyses", func(t *testing.T) {
		analyses := []models.PromptAnalysis{
			{
				PromptID:      "p1",
				BrandMentions: models.BrandMentions{Exact: 2, Contexts: []string{"acme costs 10 euro"}},
				IsMentioned:   true,
				MentionCount:  2,
				Timestamp:     now,
			},
		}
		require.NoError(t, s.SaveAnalyses(ctx, "run-1", analyses))
		got, err := s.GetAnalyses(ctx, "run-1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 2, got[0].BrandMentions.Exact)

		// Re-saving replaces rather than duplicates.
		require.NoError(t, s.SaveAnalyses(ctx, "run-1", analyses))
		got, err = s.GetAnalyses(ctx, "run-1")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("metrics and rollups", func(t *testing.T) {
		metrics := []models.CategoryMetrics{
			{CategoryID: "cat-1", VisibilityScore: 42.5, Timestamp: now},
		}
		require.NoError(t, s.SaveCategoryMetrics(ctx, "run-1", metrics))
		gotMetrics, err := s.GetCategoryMetrics(ctx, "run-1")
		require.NoError(t, err)
		require.Len(t, gotMetrics, 1)
		assert.Equal(t, 42.5, gotMetrics[0].VisibilityScore)

		ca := models.CompetitiveAnalysis{
			BrandShare:       60,
			CompetitorShares: map[string]float64{"Rival Labs": 40},
			Timestamp:        now,
		}
		require.NoError(t, s.SaveCompetitiveAnalysis(ctx, "run-1", ca))
		gotCA, err := s.GetCompetitiveAnalysis(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, 60.0, gotCA.BrandShare)

		_, err = s.GetCompetitiveAnalysis(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.SaveSummary(ctx, "run-1", models.AnalysisSummary{RunID: "run-1", TotalPrompts: 2, Timestamp: now}))
		require.NoError(t, s.SaveSummary(ctx, "run-1", models.AnalysisSummary{RunID: "run-1", TotalPrompts: 5, Timestamp: now.Add(time.Minute)}))
		summary, err := s.GetSummary(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, 5, summary.TotalPrompts, "latest summary wins")
	})

	t.Run("time series", func(t *testing.T) {
		first := []models.TimeSeriesPoint{
			{RunID: "run-1", Metric: models.MetricAvgVisibility, Value: 40, Timestamp: now},
			{RunID: "run-1", Metric: models.MetricBrandShare, Value: 55, Timestamp: now},
		}
		require.NoError(t, s.AppendTimeSeries(ctx, "run-1", first))

		// Points accumulate across saves instead of replacing each other.
		second := []models.TimeSeriesPoint{
			{RunID: "run-1", Metric: models.MetricAvgVisibility, Value: 45, Timestamp: now.Add(time.Hour)},
		}
		require.NoError(t, s.AppendTimeSeries(ctx, "run-1", second))

		got, err := s.GetTimeSeries(ctx, "run-1")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, models.MetricAvgVisibility, got[0].Metric)
		assert.Equal(t, 40.0, got[0].Value)
		assert.Equal(t, 45.0, got[2].Value, "newest point last")

		empty, err := s.GetTimeSeries(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("empty writes are no-ops", func(t *testing.T) {
		require.NoError(t, s.SaveDiscovery(ctx, "run-1", nil, false))
		require.NoError(t, s.SavePages(ctx, "run-1", nil))
		require.NoError(t, s.SaveCategories(ctx, "run-1", nil))
		require.NoError(t, s.SavePrompts(ctx, "run-1", nil))
		require.NoError(t, s.SaveResponses(ctx, "run-1", nil))
		require.NoError(t, s.SaveAnalyses(ctx, "run-1", nil))
		require.NoError(t, s.SaveCategoryMetrics(ctx, "run-1", nil))
		require.NoError(t, s.AppendTimeSeries(ctx, "run-1", nil))

		urls, foundSitemap, err := s.GetDiscovery(ctx, "run-1")
		require.NoError(t, err)
		assert.True(t, foundSitemap, "empty discovery save must not clobber prior data")
		assert.Len(t, urls, 2)
	})
}

func TestSQLiteStore(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	runStoreTests(t, db)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	runStoreTests(t, m)
}

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	require.NoError(t, db.Close())

	// Reopening applies nothing new and must not fail.
	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()

	var version int
	err = db.Conn().QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, migrations[len(migrations)-1].Version, version)
}

func TestStoreInterfaces(t *testing.T) {
	var _ Store = (*DB)(nil)
	var _ Store = (*Memory)(nil)
}

func TestRequireRowErr(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	err = db.SetRunError(context.Background(), "ghost", "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
