package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/studydesk/internal/llm"
	"github.com/alexanderramin/studydesk/internal/logger"
	"github.com/alexanderramin/studydesk/internal/repository"
	"github.com/alexanderramin/studydesk/internal/schedule"
)

// PlanStore persists normalized plans. *repository.Store implements it.
type PlanStore interface {
	SavePlan(ctx context.Context, p *repository.StoredPlan) error
}

// Result is a normalized plan plus what it took to produce it.
type Result struct {
	ID         string                  `json:"id,omitempty"` // empty when not persisted
	Plan       schedule.Document       `json:"plan"`
	Dropped    []schedule.DroppedEntry `json:"dropped,omitempty"`
	Model      string                  `json:"model,omitempty"`
	TokensUsed int                     `json:"tokens_used,omitempty"`
	Raw        string                  `json:"-"`
}

// Service produces calendar-correct study plans.
type Service interface {
	// Generate asks the model for a plan and normalizes its reply.
	Generate(ctx context.Context, req Request) (*Result, error)

	// Normalize runs the normalizer alone on text that already holds a plan.
	Normalize(ctx context.Context, raw string) (*Result, error)
}

type service struct {
	client llm.LLMClient
	store  PlanStore
	log    *logger.Logger
}

// NewService creates a planner Service. store may be nil, in which case
// plans are not persisted.
func NewService(client llm.LLMClient, store PlanStore, log *logger.Logger) Service {
	if log == nil {
		log = logger.Nop()
	}
	return &service{client: client, store: store, log: log}
}

func (s *service) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:       llm.TaskPlan,
		UserPrompt: BuildPrompt(req),
	})
	if err != nil {
		return nil, fmt.Errorf("generating plan: %w", err)
	}

	doc, report, err := schedule.Parse(resp.Text)
	if err != nil {
		s.log.Warn("planner output rejected", "model", resp.Model, "error", err)
		return nil, &llm.OutputError{Raw: resp.Text, Err: err}
	}

	res := &Result{
		Plan:       doc,
		Dropped:    report.Dropped,
		Model:      resp.Model,
		TokensUsed: resp.TokensUsed,
		Raw:        resp.Text,
	}
	reqJSON, _ := json.Marshal(req)
	s.save(ctx, res, repository.SourceGenerate, reqJSON)
	return res, nil
}

func (s *service) Normalize(ctx context.Context, raw string) (*Result, error) {
	doc, report, err := schedule.Parse(raw)
	if err != nil {
		return nil, err
	}
	res := &Result{Plan: doc, Dropped: report.Dropped, Raw: raw}
	s.save(ctx, res, repository.SourceNormalize, nil)
	return res, nil
}

// save records the plan when a store is wired. A storage failure is logged
// and leaves res.ID empty; the caller still gets the plan.
func (s *service) save(ctx context.Context, res *Result, source repository.PlanSource, req json.RawMessage) {
	if len(res.Dropped) > 0 {
		s.log.Warn("plan entries dropped", "count", len(res.Dropped), "source", string(source))
	}
	if s.store == nil {
		return
	}
	stored := &repository.StoredPlan{
		Source:       source,
		Model:        res.Model,
		Request:      req,
		RawResponse:  res.Raw,
		Plan:         res.Plan,
		DroppedCount: len(res.Dropped),
	}
	if err := s.store.SavePlan(ctx, stored); err != nil {
		s.log.Error("saving plan failed", "error", err)
		return
	}
	res.ID = stored.ID
	s.log.Info("plan saved", "id", stored.ID, "weeks", len(res.Plan.Weeks), "source", string(source))
}
