package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/studydesk/internal/db"
	"github.com/alexanderramin/studydesk/internal/schedule"
)

// SQLPlanRepo stores plans in the plans and plan_weeks tables.
type SQLPlanRepo struct {
	db      db.DBTX
	dialect db.Dialect
}

// NewSQLPlanRepo creates a plan repository on conn. conn may be a *sql.Tx.
func NewSQLPlanRepo(conn db.DBTX, dialect db.Dialect) *SQLPlanRepo {
	return &SQLPlanRepo{db: conn, dialect: dialect}
}

// Create inserts the plan row and one plan_weeks row per week. Callers that
// need atomicity run it on a transaction.
func (r *SQLPlanRepo) Create(ctx context.Context, p *StoredPlan) error {
	planJSON, err := json.Marshal(p.Plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	query := r.dialect.Rebind(`INSERT INTO plans
		(id, source, target_date, model, request_json, raw_response, plan_json, week_count, dropped_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.db.ExecContext(ctx, query,
		p.ID,
		string(p.Source),
		p.Plan.TargetDate,
		p.Model,
		nullableJSON(p.Request),
		p.RawResponse,
		string(planJSON),
		len(p.Plan.Weeks),
		p.DroppedCount,
		p.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting plan: %w", err)
	}

	weekQuery := r.dialect.Rebind(`INSERT INTO plan_weeks
		(plan_id, week_number, week_start, week_end, day_count, days_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	for _, w := range p.Plan.Weeks {
		win, ok := w.Window()
		if !ok {
			return fmt.Errorf("week %d has no dated entries", w.WeekNumber)
		}
		days, err := json.Marshal(w.Days)
		if err != nil {
			return fmt.Errorf("encoding week %d: %w", w.WeekNumber, err)
		}
		if _, err := r.db.ExecContext(ctx, weekQuery,
			p.ID,
			w.WeekNumber,
			win.Start.Format(schedule.DateLayout),
			win.End.Format(schedule.DateLayout),
			len(w.Days),
			string(days),
		); err != nil {
			return fmt.Errorf("inserting plan week %d: %w", w.WeekNumber, err)
		}
	}
	return nil
}

func (r *SQLPlanRepo) GetByID(ctx context.Context, id string) (*StoredPlan, error) {
	query := r.dialect.Rebind(`SELECT id, source, model, request_json, raw_response, plan_json, dropped_count, created_at
		FROM plans WHERE id = ?`)

	var p StoredPlan
	var source, planJSON, createdAt string
	var request sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &source, &p.Model, &request, &p.RawResponse, &planJSON, &p.DroppedCount, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plan %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning plan: %w", err)
	}

	p.Source = PlanSource(source)
	if request.Valid && request.String != "" {
		p.Request = json.RawMessage(request.String)
	}
	if err := json.Unmarshal([]byte(planJSON), &p.Plan); err != nil {
		return nil, fmt.Errorf("decoding stored plan %s: %w", id, err)
	}
	p.CreatedAt = parseTime(createdAt)

	weeks, err := r.listWeeks(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Weeks = weeks
	return &p, nil
}

func (r *SQLPlanRepo) listWeeks(ctx context.Context, planID string) ([]StoredWeek, error) {
	query := r.dialect.Rebind(`SELECT week_number, week_start, week_end, day_count
		FROM plan_weeks WHERE plan_id = ? ORDER BY week_number`)
	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("listing plan weeks: %w", err)
	}
	defer rows.Close()

	var weeks []StoredWeek
	for rows.Next() {
		var w StoredWeek
		if err := rows.Scan(&w.WeekNumber, &w.Start, &w.End, &w.DayCount); err != nil {
			return nil, fmt.Errorf("scanning plan week: %w", err)
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

// ListRecent returns up to limit plans, newest first.
func (r *SQLPlanRepo) ListRecent(ctx context.Context, limit int) ([]*PlanSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	query := r.dialect.Rebind(`SELECT p.id, p.source, p.target_date, p.model, p.week_count, p.dropped_count, p.created_at,
			COALESCE(MIN(w.week_start), ''), COALESCE(MAX(w.week_end), '')
		FROM plans p
		LEFT JOIN plan_weeks w ON w.plan_id = p.id
		GROUP BY p.id, p.source, p.target_date, p.model, p.week_count, p.dropped_count, p.created_at
		ORDER BY p.created_at DESC, p.id
		LIMIT ?`)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer rows.Close()

	var out []*PlanSummary
	for rows.Next() {
		var s PlanSummary
		var source, createdAt string
		if err := rows.Scan(&s.ID, &source, &s.TargetDate, &s.Model, &s.WeekCount, &s.DroppedCount, &createdAt,
			&s.FirstWeek, &s.LastWeek); err != nil {
			return nil, fmt.Errorf("scanning plan summary: %w", err)
		}
		s.Source = PlanSource(source)
		s.CreatedAt = parseTime(createdAt)
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Delete removes a plan; its weeks go with it.
func (r *SQLPlanRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM plan_weeks WHERE plan_id = ?`), id); err != nil {
		return fmt.Errorf("deleting plan weeks: %w", err)
	}
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM plans WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("plan %s: %w", id, ErrNotFound)
	}
	return nil
}
