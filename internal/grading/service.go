package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/studydesk/internal/llm"
	"github.com/alexanderramin/studydesk/internal/logger"
	"github.com/alexanderramin/studydesk/internal/questionbank"
	"github.com/alexanderramin/studydesk/internal/repository"
)

var (
	// ErrNoItems is returned for an empty batch.
	ErrNoItems = errors.New("no answers to grade")
	// ErrEmptyAnswer is returned when an item has no identifying fields.
	ErrEmptyAnswer = errors.New("section and question_number are required")
)

// Item is one student answer.
type Item struct {
	Section        string `json:"section"`
	QuestionNumber string `json:"question_number"`
	StudentAnswer  string `json:"student_answer"`
}

// Evaluation is the model's verdict on one answer. The free-text fields are
// kept as the model wrote them, string or list.
type Evaluation struct {
	QuestionNumber string          `json:"question_number"`
	Section        string          `json:"section"`
	Question       string          `json:"question,omitempty"`
	Type           string          `json:"type,omitempty"`
	Verdict        string          `json:"verdict"`
	MarksAwarded   float64         `json:"marks_awarded"`
	Mistake        json.RawMessage `json:"mistake,omitempty"`
	CorrectAnswer  json.RawMessage `json:"correct_answer,omitempty"`
	MistakeType    json.RawMessage `json:"mistake_type,omitempty"`
	Feedback       json.RawMessage `json:"feedback,omitempty"`
}

// SkippedItem is an answer that was not sent to the model.
type SkippedItem struct {
	Section        string `json:"section"`
	QuestionNumber string `json:"question_number"`
	Reason         string `json:"reason"`
}

// BatchResult holds the evaluations of a batch.
type BatchResult struct {
	Evaluations []Evaluation  `json:"evaluations"`
	Skipped     []SkippedItem `json:"skipped,omitempty"`
	Model       string        `json:"model,omitempty"`
}

// UnitResult is the examiner's free-form evaluation of one answer.
type UnitResult struct {
	Evaluation string `json:"evaluation"`
	Model      string `json:"model,omitempty"`
}

// KeySource resolves answer keys. *questionbank.Bank implements it.
type KeySource interface {
	Lookup(ctx context.Context, section, number string) (questionbank.Key, error)
}

// RunRecorder stores grading runs. *repository.Store implements it.
type RunRecorder interface {
	RecordGradingRun(ctx context.Context, run *repository.GradingRun) error
}

// Service grades student answers against the official key.
type Service interface {
	EvaluateUnit(ctx context.Context, item Item) (*UnitResult, error)
	EvaluateBatch(ctx context.Context, items []Item) (*BatchResult, error)
}

type service struct {
	client   llm.LLMClient
	keys     KeySource
	recorder RunRecorder
	log      *logger.Logger
}

// NewService creates a grading Service. recorder may be nil.
func NewService(client llm.LLMClient, keys KeySource, recorder RunRecorder, log *logger.Logger) Service {
	if log == nil {
		log = logger.Nop()
	}
	return &service{client: client, keys: keys, recorder: recorder, log: log}
}

func (s *service) EvaluateUnit(ctx context.Context, item Item) (*UnitResult, error) {
	if strings.TrimSpace(item.Section) == "" || strings.TrimSpace(item.QuestionNumber) == "" {
		return nil, ErrEmptyAnswer
	}
	key, err := s.keys.Lookup(ctx, item.Section, item.QuestionNumber)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:       llm.TaskGrade,
		UserPrompt: BuildUnitPrompt(key, item.StudentAnswer),
	})
	if err != nil {
		return nil, fmt.Errorf("grading answer: %w", err)
	}

	s.record(ctx, "unit", 1, 0, resp.Model)
	return &UnitResult{Evaluation: strings.TrimSpace(resp.Text), Model: resp.Model}, nil
}

func (s *service) EvaluateBatch(ctx context.Context, items []Item) (*BatchResult, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	result := &BatchResult{Evaluations: []Evaluation{}}
	var keys []questionbank.Key
	var keyed []Item
	for _, item := range items {
		key, err := s.keys.Lookup(ctx, item.Section, item.QuestionNumber)
		if err != nil {
			if !errors.Is(err, questionbank.ErrNotFound) {
				return nil, err
			}
			result.Skipped = append(result.Skipped, SkippedItem{
				Section:        item.Section,
				QuestionNumber: item.QuestionNumber,
				Reason:         err.Error(),
			})
			continue
		}
		keys = append(keys, key)
		keyed = append(keyed, item)
	}

	if len(keys) == 0 {
		s.log.Warn("batch had no gradable answers", "items", len(items))
		return result, nil
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:       llm.TaskGradeBatch,
		UserPrompt: BuildBatchPrompt(keys, keyed),
	})
	if err != nil {
		return nil, fmt.Errorf("grading batch: %w", err)
	}

	parsed, err := llm.ExtractJSON(resp.Text, validateBatch)
	if err != nil {
		s.log.Warn("batch evaluation rejected", "model", resp.Model, "error", err)
		return nil, &llm.OutputError{Raw: resp.Text, Err: err}
	}

	result.Evaluations = parsed.Evaluations
	result.Model = resp.Model
	s.record(ctx, "batch", len(keyed), len(result.Skipped), resp.Model)
	return result, nil
}

type batchPayload struct {
	Evaluations []Evaluation `json:"evaluations"`
}

func validateBatch(p batchPayload) error {
	if len(p.Evaluations) == 0 {
		return errors.New("evaluations is empty")
	}
	for i := range p.Evaluations {
		ev := &p.Evaluations[i]
		ev.Verdict = strings.ToLower(strings.TrimSpace(ev.Verdict))
		if ev.Verdict != "correct" && ev.Verdict != "wrong" {
			return fmt.Errorf("evaluations[%d]: verdict %q is not correct or wrong", i, ev.Verdict)
		}
		if ev.MarksAwarded < 0 {
			return fmt.Errorf("evaluations[%d]: marks_awarded %v is negative", i, ev.MarksAwarded)
		}
	}
	return nil
}

func (s *service) record(ctx context.Context, kind string, count, skipped int, model string) {
	if s.recorder == nil {
		return
	}
	run := &repository.GradingRun{Kind: kind, ItemCount: count, Skipped: skipped, Model: model}
	if err := s.recorder.RecordGradingRun(ctx, run); err != nil {
		s.log.Error("recording grading run failed", "kind", kind, "error", err)
	}
}
