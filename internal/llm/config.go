package llm

import (
	"os"
	"strconv"
	"strings"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskPlan       TaskType = "plan"
	TaskDoubt      TaskType = "doubt"
	TaskGrade      TaskType = "grade"
	TaskGradeBatch TaskType = "grade_batch"
)

// Provider names a generation backend.
type Provider string

const (
	ProviderGroq   Provider = "groq"
	ProviderGemini Provider = "gemini"
)

// DefaultGroqEndpoint is the OpenAI-compatible chat completions URL used by Groq.
const DefaultGroqEndpoint = "https://api.groq.com/openai/v1/chat/completions"

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem. It is built once
// at startup and passed to the client explicitly.
type LLMConfig struct {
	Provider       Provider
	Endpoint       string
	APIKey         string
	GeminiAPIKey   string
	Model          string
	ImportantModel string
	LogCalls       bool
	TimeoutMs      int
	MaxRetries     int
	Tasks          map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig with sensible defaults and no credentials.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Provider:       ProviderGroq,
		Endpoint:       DefaultGroqEndpoint,
		Model:          "llama3-8b-8192",
		ImportantModel: "deepseek-r1-distill-llama-70b",
		LogCalls:       true,
		TimeoutMs:      60000,
		MaxRetries:     1,
		Tasks: map[TaskType]TaskConfig{
			TaskPlan:       {Temperature: 0.2, MaxTokens: 3500, TimeoutMs: 60000},
			TaskDoubt:      {Temperature: 0.3, MaxTokens: 1024, TimeoutMs: 30000},
			TaskGrade:      {Temperature: 0.2, MaxTokens: 512, TimeoutMs: 30000},
			TaskGradeBatch: {Temperature: 0.2, MaxTokens: 2048, TimeoutMs: 60000},
		},
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("STUDYDESK_LLM_PROVIDER"))); v != "" {
		cfg.Provider = Provider(v)
	}
	cfg.APIKey = strings.TrimSpace(os.Getenv("GROQ_API_KEY"))
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if v := os.Getenv("STUDYDESK_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("STUDYDESK_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("STUDYDESK_LLM_IMPORTANT_MODEL"); v != "" {
		cfg.ImportantModel = v
	}
	if v := os.Getenv("STUDYDESK_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("STUDYDESK_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("STUDYDESK_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	applyTaskTimeoutEnv(&cfg, TaskPlan, "STUDYDESK_LLM_PLAN_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskDoubt, "STUDYDESK_LLM_DOUBT_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskGrade, "STUDYDESK_LLM_GRADE_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskGradeBatch, "STUDYDESK_LLM_GRADE_BATCH_TIMEOUT_MS")

	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// Configured reports whether the selected provider has credentials.
func (c LLMConfig) Configured() bool {
	switch c.Provider {
	case ProviderGemini:
		return c.GeminiAPIKey != ""
	default:
		return c.APIKey != ""
	}
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
