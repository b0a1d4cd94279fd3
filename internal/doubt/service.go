package doubt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/studydesk/internal/llm"
	"github.com/alexanderramin/studydesk/internal/logger"
)

// ErrEmptyPrompt is returned when the doubt has no text.
var ErrEmptyPrompt = errors.New("doubt prompt is empty")

// Request is a student's question. Context carries earlier messages of the
// conversation, oldest first.
type Request struct {
	Prompt    string   `json:"prompt"`
	Important bool     `json:"important"`
	Context   []string `json:"context"`
}

// Answer is the model's explanation.
type Answer struct {
	Model      string `json:"model"`
	Answer     string `json:"answer"`
	TokensUsed int    `json:"tokens_used"`
}

// Service answers student doubts.
type Service interface {
	Solve(ctx context.Context, req Request) (*Answer, error)
}

type service struct {
	client         llm.LLMClient
	importantModel string
	log            *logger.Logger
}

// NewService creates a doubt Service. Important doubts are sent to
// importantModel; the rest use the client's default model.
func NewService(client llm.LLMClient, importantModel string, log *logger.Logger) Service {
	if log == nil {
		log = logger.Nop()
	}
	return &service{client: client, importantModel: importantModel, log: log}
}

func (s *service) Solve(ctx context.Context, req Request) (*Answer, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	genReq := llm.GenerateRequest{
		Task:       llm.TaskDoubt,
		UserPrompt: BuildPrompt(req.Prompt, req.Context),
	}
	if req.Important {
		genReq.Model = s.importantModel
	}

	resp, err := s.client.Generate(ctx, genReq)
	if err != nil {
		return nil, fmt.Errorf("solving doubt: %w", err)
	}

	s.log.Debug("doubt solved", "model", resp.Model, "tokens", resp.TokensUsed, "important", req.Important)
	return &Answer{
		Model:      resp.Model,
		Answer:     strings.TrimSpace(resp.Text),
		TokensUsed: resp.TokensUsed,
	}, nil
}
