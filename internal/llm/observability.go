package llm

import (
	"github.com/alexanderramin/studydesk/internal/logger"
)

// LLMCallEvent records metadata about a single LLM invocation.
type LLMCallEvent struct {
	Task       TaskType
	Provider   Provider
	Model      string
	LatencyMs  int64
	TokensUsed int
	Attempts   int
	Success    bool
	ErrorCode  string
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// LogObserver writes LLM call events to a structured logger.
type LogObserver struct {
	log *logger.Logger
}

// NewLogObserver creates an Observer that logs events through log.
func NewLogObserver(log *logger.Logger) *LogObserver {
	return &LogObserver{log: log.With("component", "llm")}
}

func (o *LogObserver) OnCallComplete(event LLMCallEvent) {
	kv := []interface{}{
		"task", event.Task,
		"provider", event.Provider,
		"model", event.Model,
		"latency_ms", event.LatencyMs,
		"attempts", event.Attempts,
	}
	if !event.Success {
		o.log.Warn("llm_call failed", append(kv, "error_code", event.ErrorCode)...)
		return
	}
	o.log.Info("llm_call", append(kv, "tokens_used", event.TokensUsed)...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}
