package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexanderramin/studydesk/internal/doubt"
	"github.com/alexanderramin/studydesk/internal/grading"
	"github.com/alexanderramin/studydesk/internal/llm"
	"github.com/alexanderramin/studydesk/internal/planner"
	"github.com/alexanderramin/studydesk/internal/questionbank"
	"github.com/alexanderramin/studydesk/internal/repository"
	"github.com/alexanderramin/studydesk/internal/schedule"
	"github.com/gin-gonic/gin"
)

// Error codes returned in the envelope.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidLLMOutput = "INVALID_LLM_OUTPUT"
	CodeLLMTimeout       = "LLM_TIMEOUT"
	CodeLLMUnavailable   = "LLM_UNAVAILABLE"
	CodeBankUnavailable  = "QUESTION_BANK_UNAVAILABLE"
	CodeInternal         = "INTERNAL"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error       APIError `json:"error"`
	RawResponse string   `json:"raw_response,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	env := ErrorEnvelope{Error: APIError{Message: msg, Code: code}}
	if raw, ok := llm.RawOutput(err); ok {
		env.RawResponse = raw
	}
	c.AbortWithStatusJSON(status, env)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// classify maps a service error to a status and code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, llm.ErrInvalidOutput), errors.Is(err, schedule.ErrMalformedDocument):
		return http.StatusBadGateway, CodeInvalidLLMOutput
	case errors.Is(err, llm.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeLLMTimeout
	case errors.Is(err, llm.ErrUnavailable), errors.Is(err, llm.ErrNotConfigured), errors.Is(err, llm.ErrRetryExhausted):
		return http.StatusServiceUnavailable, CodeLLMUnavailable
	case errors.Is(err, questionbank.ErrUnavailable):
		return http.StatusServiceUnavailable, CodeBankUnavailable
	case errors.Is(err, planner.ErrInvalidRequest), errors.Is(err, doubt.ErrEmptyPrompt),
		errors.Is(err, grading.ErrNoItems), errors.Is(err, grading.ErrEmptyAnswer):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, questionbank.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func respondServiceError(c *gin.Context, err error) {
	status, code := classify(err)
	_ = c.Error(err)
	RespondError(c, status, code, err)
}
