package repository

import (
	"context"
)

type PlanRepo interface {
	Create(ctx context.Context, p *StoredPlan) error
	GetByID(ctx context.Context, id string) (*StoredPlan, error)
	ListRecent(ctx context.Context, limit int) ([]*PlanSummary, error)
	Delete(ctx context.Context, id string) error
}

type GradingRunRepo interface {
	Create(ctx context.Context, run *GradingRun) error
	ListRecent(ctx context.Context, limit int) ([]*GradingRun, error)
}

var (
	_ PlanRepo       = (*SQLPlanRepo)(nil)
	_ GradingRunRepo = (*SQLGradingRunRepo)(nil)
)
