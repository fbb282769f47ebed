package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/brandscope/brandscope/internal/models"
)

func (db *DB) SaveRun(ctx context.Context, run models.AnalysisRun) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO runs (id, website_url, country, region, language, status, step, progress, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			step = excluded.step,
			progress = excluded.progress,
			error_message = excluded.error_message,
			updated_at = excluded.updated_at
	`, run.ID, run.WebsiteURL, run.Country, run.Region, run.Language,
		run.Status, run.Step, run.Progress, run.ErrorMessage, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func (db *DB) GetRun(ctx context.Context, id string) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, website_url, country, region, language, status, step, progress, error_message, created_at, updated_at
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.WebsiteURL, &run.Country, &run.Region, &run.Language,
		&run.Status, &run.Step, &run.Progress, &run.ErrorMessage, &run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

func (db *DB) UpdateRunStatus(ctx context.Context, id, status, step, progress string) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE runs SET status = ?, step = ?, progress = ?, updated_at = ? WHERE id = ?
	`, status, step, progress, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	return requireRow(res)
}

func (db *DB) SetRunError(ctx context.Context, id, message string) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE runs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?
	`, models.StatusFailed, message, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return requireRow(res)
}

func (db *DB) ListRuns(ctx context.Context, limit int) ([]models.AnalysisRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, website_url, country, region, language, status, step, progress, error_message, created_at, updated_at
		FROM runs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.AnalysisRun
	for rows.Next() {
		var run models.AnalysisRun
		if err := rows.Scan(&run.ID, &run.WebsiteURL, &run.Country, &run.Region, &run.Language,
			&run.Status, &run.Step, &run.Progress, &run.ErrorMessage, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (db *DB) SaveDiscovery(ctx context.Context, runID string, urls []string, foundSitemap bool) error {
	if len(urls) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_urls WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to clear run urls: %w", err)
	}
	sitemap := 0
	if foundSitemap {
		sitemap = 1
	}
	for i, u := range urls {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_urls (run_id, position, url, found_sitemap) VALUES (?, ?, ?, ?)
		`, runID, i, u, sitemap); err != nil {
			return fmt.Errorf("failed to insert run url: %w", err)
		}
	}
	return tx.Commit()
}

func (db *DB) GetDiscovery(ctx context.Context, runID string) ([]string, bool, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT url, found_sitemap FROM run_urls WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get discovery: %w", err)
	}
	defer rows.Close()

	var urls []string
	foundSitemap := false
	for rows.Next() {
		var u string
		var sitemap int
		if err := rows.Scan(&u, &sitemap); err != nil {
			return nil, false, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, u)
		foundSitemap = sitemap == 1
	}
	return urls, foundSitemap, rows.Err()
}

func (db *DB) SavePages(ctx context.Context, runID string, pages []models.PageContent) error {
	if len(pages) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_pages WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to clear run pages: %w", err)
	}
	for i, p := range pages {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_pages (run_id, position, url, title, headings, content) VALUES (?, ?, ?, ?, ?, ?)
		`, runID, i, p.URL, p.Title, p.Headings, p.Content); err != nil {
			return fmt.Errorf("failed to insert page: %w", err)
		}
	}
	return tx.Commit()
}

func (db *DB) GetPages(ctx context.Context, runID string) ([]models.PageContent, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT url, title, headings, content FROM run_pages WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pages: %w", err)
	}
	defer rows.Close()

	var pages []models.PageContent
	for rows.Next() {
		var p models.PageContent
		if err := rows.Scan(&p.URL, &p.Title, &p.Headings, &p.Content); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (db *DB) SaveCategories(ctx context.Context, runID string, categories []models.Category) error {
	if len(categories) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range categories {
		sourcePages, err := json.Marshal(c.SourcePages)
		if err != nil {
			return fmt.Errorf("failed to marshal source pages: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, run_id, name, description, confidence, source_pages)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				confidence = excluded.confidence,
				source_pages = excluded.source_pages
		`, c.ID, runID, c.Name, c.Description, c.Confidence, string(sourcePages)); err != nil {
			return fmt.Errorf("failed to insert category: %w", err)
		}
	}
	return tx.Commit()
}

func (db *DB) GetCategories(ctx context.Context, runID string) ([]models.Category, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, description, confidence, source_pages
		FROM categories WHERE run_id = ? ORDER BY confidence DESC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		var sourcePages string
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Confidence, &sourcePages); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if err := json.Unmarshal([]byte(sourcePages), &c.SourcePages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal source pages: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (db *DB) SavePrompts(ctx context.Context, runID string, prompts []models.Prompt) error {
	return db.savePromptRows(ctx, "prompts", "run_id", runID, prompts)
}

func (db *DB) GetPrompts(ctx context.Context, runID string) ([]models.Prompt, error) {
	return db.getPromptRows(ctx, "prompts", "run_id", runID)
}

func (db *DB) SaveCompanyPrompts(ctx context.Context, companyID string, prompts []models.Prompt) error {
	return db.savePromptRows(ctx, "company_prompts", "company_id", companyID, prompts)
}

func (db *DB) GetCompanyPrompts(ctx context.Context, companyID string) ([]models.Prompt, error) {
	return db.getPromptRows(ctx, "company_prompts", "company_id", companyID)
}

func (db *DB) savePromptRows(ctx context.Context, table, ownerColumn, ownerID string, prompts []models.Prompt) error {
	if len(prompts) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	//nolint:gosec // table and column names come from the two callers above
	query := fmt.Sprintf(`
		INSERT INTO %s (id, %s, category_id, question, language, country, region, intent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, table, ownerColumn)
	for _, p := range prompts {
		if _, err := tx.ExecContext(ctx, query,
			p.ID, ownerID, p.CategoryID, p.Question, p.Language, p.Country, p.Region, p.Intent, p.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert prompt: %w", err)
		}
	}
	return tx.Commit()
}

func (db *DB) getPromptRows(ctx context.Context, table, ownerColumn, ownerID string) ([]models.Prompt, error) {
	query := fmt.Sprintf(`
		SELECT id, category_id, question, language, country, region, intent, created_at
		FROM %s WHERE %s = ? ORDER BY created_at, id
	`, table, ownerColumn)
	rows, err := db.conn.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prompts: %w", err)
	}
	defer rows.Close()

	var prompts []models.Prompt
	for rows.Next() {
		var p models.Prompt
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Question, &p.Language, &p.Country, &p.Region, &p.Intent, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

func (db *DB) SaveResponses(ctx context.Context, runID string, responses []models.LLMResponse) error {
	if len(responses) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range responses {
		citations, err := json.Marshal(r.Citations)
		if err != nil {
			return fmt.Errorf("failed to marshal citations: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO responses (prompt_id, run_id, output_text, citations, model, timestamp)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(prompt_id) DO UPDATE SET
				output_text = excluded.output_text,
				citations = excluded.citations,
				model = excluded.model,
				timestamp = excluded.timestamp
		`, r.PromptID, runID, r.OutputText, string(citations), r.Model, r.Timestamp); err != nil {
			return fmt.Errorf("failed to insert response: %w", err)
		}
	}
	return tx.Commit()
}

func (db *DB) GetResponses(ctx context.Context, runID string) ([]models.LLMResponse, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT prompt_id, output_text, citations, model, timestamp
		FROM responses WHERE run_id = ? ORDER BY timestamp, prompt_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}
	defer rows.Close()

	var responses []models.LLMResponse
	for rows.Next() {
		var r models.LLMResponse
		var citations string
		if err := rows.Scan(&r.PromptID, &r.OutputText, &citations, &r.Model, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		if err := json.Unmarshal([]byte(citations), &r.Citations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal citations: %w", err)
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}

func (db *DB) SaveAnalyses(ctx context.Context, runID string, analyses []models.PromptAnalysis) error {
	if len(analyses) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range analyses {
		payload, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to marshal analysis: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO analyses (prompt_id, run_id, payload, timestamp)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(prompt_id) DO UPDATE SET
				payload = excluded.payload,
				timestamp = excluded.timestamp
		`, a.PromptID, runID, string(payload), a.Timestamp); err != nil {
			return fmt.Errorf("failed to insert analysis: %w", err)
		}
	}
	return tx.Commit()
}

func (db *DB) GetAnalyses(ctx context.Context, runID string) ([]models.PromptAnalysis, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT payload FROM analyses WHERE run_id = ? ORDER BY timestamp, prompt_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get analyses: %w", err)
	}
	defer rows.Close()

	var analyses []models.PromptAnalysis
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		var a models.PromptAnalysis
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

func (db *DB) SaveCategoryMetrics(ctx context.Context, runID string, metrics []models.CategoryMetrics) error {
	if len(metrics) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range metrics {
		payload, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal category metrics: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO category_metrics (run_id, category_id, payload)
			VALUES (?, ?, ?)
			ON CONFLICT(run_id, category_id) DO UPDATE SET payload = excluded.payload
		`, runID, m.CategoryID, string(payload)); err != nil {
			return fmt.Errorf("failed to insert category metrics: %w", err)
		}
	}
	return tx.Commit()
}

func (db *DB) GetCategoryMetrics(ctx context.Context, runID string) ([]models.CategoryMetrics, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT payload FROM category_metrics WHERE run_id = ? ORDER BY category_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category metrics: %w", err)
	}
	defer rows.Close()

	var metrics []models.CategoryMetrics
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan category metrics: %w", err)
		}
		var m models.CategoryMetrics
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal category metrics: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

func (db *DB) SaveCompetitiveAnalysis(ctx context.Context, runID string, ca models.CompetitiveAnalysis) error {
	payload, err := json.Marshal(ca)
	if err != nil {
		return fmt.Errorf("failed to marshal competitive analysis: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO competitive_analyses (run_id, payload) VALUES (?, ?)
		ON CONFLICT(run_id) DO UPDATE SET payload = excluded.payload
	`, runID, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save competitive analysis: %w", err)
	}
	return nil
}

func (db *DB) GetCompetitiveAnalysis(ctx context.Context, runID string) (*models.CompetitiveAnalysis, error) {
	var payload string
	err := db.conn.QueryRowContext(ctx, `
		SELECT payload FROM competitive_analyses WHERE run_id = ?
	`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competitive analysis: %w", err)
	}

	var ca models.CompetitiveAnalysis
	if err := json.Unmarshal([]byte(payload), &ca); err != nil {
		return nil, fmt.Errorf("failed to unmarshal competitive analysis: %w", err)
	}
	return &ca, nil
}

func (db *DB) SaveSummary(ctx context.Context, runID string, summary models.AnalysisSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO summaries (run_id, payload, timestamp) VALUES (?, ?, ?)
	`, runID, string(payload), summary.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

func (db *DB) GetSummary(ctx context.Context, runID string) (*models.AnalysisSummary, error) {
	var payload string
	err := db.conn.QueryRowContext(ctx, `
		SELECT payload FROM summaries WHERE run_id = ? ORDER BY timestamp DESC LIMIT 1
	`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	var summary models.AnalysisSummary
	if err := json.Unmarshal([]byte(payload), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &summary, nil
}

func (db *DB) AppendTimeSeries(ctx context.Context, runID string, points []models.TimeSeriesPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range points {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO time_series (run_id, metric, value, timestamp) VALUES (?, ?, ?, ?)
		`, runID, p.Metric, p.Value, p.Timestamp); err != nil {
			return fmt.Errorf("failed to insert time series point: %w", err)
		}
	}
	return tx.Commit()
}

func (db *DB) GetTimeSeries(ctx context.Context, runID string) ([]models.TimeSeriesPoint, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT run_id, metric, value, timestamp
		FROM time_series WHERE run_id = ? ORDER BY timestamp, metric
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get time series: %w", err)
	}
	defer rows.Close()

	var points []models.TimeSeriesPoint
	for rows.Next() {
		var p models.TimeSeriesPoint
		if err := rows.Scan(&p.RunID, &p.Metric, &p.Value, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan time series point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
