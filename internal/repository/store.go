package repository

import (
	"context"
	"database/sql"

	"github.com/alexanderramin/studydesk/internal/db"
	"github.com/google/uuid"
)

// Store is the persistence entry point handed to services. It builds
// repositories on the pool for reads and on a transaction for writes.
type Store struct {
	db      *sql.DB
	dialect db.Dialect
	uow     db.UnitOfWork
}

// NewStore wraps an open database.
func NewStore(database *sql.DB, dialect db.Dialect) *Store {
	return &Store{db: database, dialect: dialect, uow: db.NewUnitOfWork(database)}
}

// WithUnitOfWork replaces the transaction runner. Tests use it to inject
// failures.
func (s *Store) WithUnitOfWork(uow db.UnitOfWork) *Store {
	cp := *s
	cp.uow = uow
	return &cp
}

func (s *Store) Plans() PlanRepo { return NewSQLPlanRepo(s.db, s.dialect) }

func (s *Store) GradingRuns() GradingRunRepo { return NewSQLGradingRunRepo(s.db, s.dialect) }

// SavePlan assigns an ID when missing and writes the plan and its weeks
// atomically.
func (s *Store) SavePlan(ctx context.Context, p *StoredPlan) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return NewSQLPlanRepo(tx, s.dialect).Create(ctx, p)
	})
}

// RecordGradingRun assigns an ID when missing and stores the run.
func (s *Store) RecordGradingRun(ctx context.Context, run *GradingRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	return s.GradingRuns().Create(ctx, run)
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// ListPlans returns plan summaries, newest first.
func (s *Store) ListPlans(ctx context.Context, limit int) ([]*PlanSummary, error) {
	return s.Plans().ListRecent(ctx, limit)
}

// GetPlan loads one plan with its weeks.
func (s *Store) GetPlan(ctx context.Context, id string) (*StoredPlan, error) {
	return s.Plans().GetByID(ctx, id)
}

// DeletePlan removes a plan and its weeks atomically.
func (s *Store) DeletePlan(ctx context.Context, id string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return NewSQLPlanRepo(tx, s.dialect).Delete(ctx, id)
	})
}
