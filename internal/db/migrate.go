package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Statements are idempotent and
// portable between SQLite and Postgres.
func Migrate(db *sql.DB, dialect Dialect) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d (%s): %w", i, dialect, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS plans (
		id            TEXT PRIMARY KEY,
		source        TEXT NOT NULL CHECK(source IN ('generate','normalize')),
		target_date   TEXT NOT NULL,
		model         TEXT NOT NULL DEFAULT '',
		request_json  TEXT,
		raw_response  TEXT NOT NULL,
		plan_json     TEXT NOT NULL,
		week_count    INTEGER NOT NULL DEFAULT 0,
		dropped_count INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS plan_weeks (
		plan_id     TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		week_number INTEGER NOT NULL,
		week_start  TEXT NOT NULL,
		week_end    TEXT NOT NULL,
		day_count   INTEGER NOT NULL,
		days_json   TEXT NOT NULL,
		PRIMARY KEY (plan_id, week_number)
	)`,
	`CREATE TABLE IF NOT EXISTS grading_runs (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL CHECK(kind IN ('unit','batch')),
		item_count  INTEGER NOT NULL,
		skipped     INTEGER NOT NULL DEFAULT 0,
		model       TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plans_created ON plans(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_weeks_start ON plan_weeks(week_start)`,
	`CREATE INDEX IF NOT EXISTS idx_grading_runs_created ON grading_runs(created_at)`,
}
