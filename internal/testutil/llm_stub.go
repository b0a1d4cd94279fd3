package testutil

import (
	"context"
	"sync"

	"github.com/alexanderramin/studydesk/internal/llm"
)

// StubLLM returns a fixed response and records every request.
type StubLLM struct {
	Response string
	Model    string
	Tokens   int
	Err      error

	mu       sync.Mutex
	requests []llm.GenerateRequest
}

func (s *StubLLM) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	model := req.Model
	if model == "" {
		model = s.Model
	}
	if model == "" {
		model = "llama3-8b-8192"
	}
	return &llm.GenerateResponse{Text: s.Response, Model: model, TokensUsed: s.Tokens}, nil
}

func (s *StubLLM) Available(context.Context) bool { return s.Err == nil }

// Requests returns a copy of the requests seen so far.
func (s *StubLLM) Requests() []llm.GenerateRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.GenerateRequest(nil), s.requests...)
}

// LastRequest returns the most recent request, or the zero value.
func (s *StubLLM) LastRequest() llm.GenerateRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return llm.GenerateRequest{}
	}
	return s.requests[len(s.requests)-1]
}
