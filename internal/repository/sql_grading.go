package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/studydesk/internal/db"
)

// SQLGradingRunRepo stores grading run records.
type SQLGradingRunRepo struct {
	db      db.DBTX
	dialect db.Dialect
}

func NewSQLGradingRunRepo(conn db.DBTX, dialect db.Dialect) *SQLGradingRunRepo {
	return &SQLGradingRunRepo{db: conn, dialect: dialect}
}

func (r *SQLGradingRunRepo) Create(ctx context.Context, run *GradingRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	query := r.dialect.Rebind(`INSERT INTO grading_runs (id, kind, item_count, skipped, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Kind, run.ItemCount, run.Skipped, run.Model,
		run.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting grading run: %w", err)
	}
	return nil
}

// ListRecent returns up to limit runs, newest first.
func (r *SQLGradingRunRepo) ListRecent(ctx context.Context, limit int) ([]*GradingRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := r.dialect.Rebind(`SELECT id, kind, item_count, skipped, model, created_at
		FROM grading_runs ORDER BY created_at DESC, id LIMIT ?`)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing grading runs: %w", err)
	}
	defer rows.Close()

	var out []*GradingRun
	for rows.Next() {
		var run GradingRun
		var createdAt string
		if err := rows.Scan(&run.ID, &run.Kind, &run.ItemCount, &run.Skipped, &run.Model, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning grading run: %w", err)
		}
		run.CreatedAt = parseTime(createdAt)
		out = append(out, &run)
	}
	return out, rows.Err()
}
