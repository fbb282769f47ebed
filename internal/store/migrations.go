package store

import (
	"fmt"
	"log/slog"
)

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_runs_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS runs (
				id TEXT PRIMARY KEY,
				website_url TEXT NOT NULL,
				country TEXT NOT NULL,
				region TEXT NOT NULL DEFAULT '',
				language TEXT NOT NULL,
				status TEXT NOT NULL,
				step TEXT NOT NULL,
				progress TEXT NOT NULL DEFAULT '',
				error_message TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
		`,
	},
	{
		Version: 2,
		Name:    "create_discovery_tables",
		SQL: `
			CREATE TABLE IF NOT EXISTS run_urls (
				run_id TEXT NOT NULL,
				position INTEGER NOT NULL,
				url TEXT NOT NULL,
				found_sitemap INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (run_id, position),
				FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
			);
			CREATE TABLE IF NOT EXISTS run_pages (
				run_id TEXT NOT NULL,
				position INTEGER NOT NULL,
				url TEXT NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				headings TEXT NOT NULL DEFAULT '',
				content TEXT NOT NULL DEFAULT '',
				PRIMARY KEY (run_id, position),
				FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
			);
		`,
	},
	{
		Version: 3,
		Name:    "create_categories_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS categories (
				id TEXT PRIMARY KEY,
				run_id TEXT NOT NULL,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				confidence REAL NOT NULL DEFAULT 0,
				source_pages TEXT NOT NULL DEFAULT '[]',
				FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_categories_run_id ON categories(run_id);
		`,
	},
	{
		Version: 4,
		Name:    "create_prompts_tables",
		SQL: `
			CREATE TABLE IF NOT EXISTS prompts (
				id TEXT PRIMARY KEY,
				run_id TEXT NOT NULL,
				category_id TEXT NOT NULL,
				question TEXT NOT NULL,
				language TEXT NOT NULL,
				country TEXT NOT NULL,
				region TEXT NOT NULL DEFAULT '',
				intent TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_prompts_run_id ON prompts(run_id);
			CREATE TABLE IF NOT EXISTS company_prompts (
				id TEXT PRIMARY KEY,
				company_id TEXT NOT NULL,
				category_id TEXT NOT NULL,
				question TEXT NOT NULL,
				language TEXT NOT NULL,
				country TEXT NOT NULL,
				region TEXT NOT NULL DEFAULT '',
				intent TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_company_prompts_company_id ON company_prompts(company_id);
		`,
	},
	{
		Version: 5,
		Name:    "create_responses_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS responses (
				prompt_id TEXT PRIMARY KEY,
				run_id TEXT NOT NULL,
				output_text TEXT NOT NULL,
				citations TEXT NOT NULL DEFAULT '[]',
				model TEXT NOT NULL DEFAULT '',
				timestamp TIMESTAMP NOT NULL,
				FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_responses_run_id ON responses(run_id);
		`,
	},
	{
		Version: 6,
		Name:    "create_analyses_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS analyses (
				prompt_id TEXT PRIMARY KEY,
				run_id TEXT NOT NULL,
				payload TEXT NOT NULL,
				timestamp TIMESTAMP NOT NULL,
				FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_analyses_run_id ON analyses(run_id);
		`,
	},
	{
		Version: 7,
		Name:    "create_metrics_tables",
		SQL: `
			CREATE TABLE IF NOT EXISTS category_metrics (
				run_id TEXT NOT NULL,
				category_id TEXT NOT NULL,
				payload TEXT NOT NULL,
				PRIMARY KEY (run_id, category_id),
				FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
			);
			CREATE TABLE IF NOT EXISTS competitive_analyses (
				run_id TEXT PRIMARY KEY,
				payload TEXT NOT NULL,
				FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
			);
			CREATE TABLE IF NOT EXISTS summaries (
				run_id TEXT NOT NULL,
				payload TEXT NOT NULL,
				timestamp TIMESTAMP NOT NULL,
				FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_summaries_run_id ON summaries(run_id);
		`,
	},
	{
		Version: 8,
		Name:    "create_time_series_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS time_series (
				run_id TEXT NOT NULL,
				metric TEXT NOT NULL,
				value REAL NOT NULL,
				timestamp TIMESTAMP NOT NULL,
				FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_time_series_run_id ON time_series(run_id);
		`,
	},
}

const createVersionTable = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
`

// Migrate applies all pending migrations in order, one transaction each.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(createVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("applying migration", "version", migration.Version, "name", migration.Name)
		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d (%s): %w", migration.Version, migration.Name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}
	return nil
}
