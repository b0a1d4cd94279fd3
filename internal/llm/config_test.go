package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_PlanTaskMatchesPlannerBudget(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3500, cfg.Tasks[TaskPlan].MaxTokens)
	assert.Equal(t, 0.2, cfg.Tasks[TaskPlan].Temperature)
	assert.Equal(t, ProviderGroq, cfg.Provider)
	assert.False(t, cfg.Configured())
}

func TestLoadConfig_TaskTimeoutOverrides(t *testing.T) {
	t.Setenv("STUDYDESK_LLM_TIMEOUT_MS", "9000")
	t.Setenv("STUDYDESK_LLM_PLAN_TIMEOUT_MS", "15000")
	t.Setenv("STUDYDESK_LLM_DOUBT_TIMEOUT_MS", "7000")

	cfg := LoadConfig()

	assert.Equal(t, 9000, cfg.TimeoutMs)
	assert.Equal(t, 15000, cfg.TaskTimeout(TaskPlan))
	assert.Equal(t, 7000, cfg.TaskTimeout(TaskDoubt))
	assert.Equal(t, 30000, cfg.TaskTimeout(TaskGrade))
}

func TestLoadConfig_InvalidTaskTimeoutOverrideIgnored(t *testing.T) {
	t.Setenv("STUDYDESK_LLM_PLAN_TIMEOUT_MS", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, 60000, cfg.TaskTimeout(TaskPlan))
}

func TestLoadConfig_ProviderAndKeys(t *testing.T) {
	t.Setenv("STUDYDESK_LLM_PROVIDER", " Gemini ")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("STUDYDESK_LLM_MODEL", "gemini-2.5-flash")

	cfg := LoadConfig()

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.True(t, cfg.Configured())
}

func TestTaskTimeout_FallsBackToGlobal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeoutMs = 1234
	assert.Equal(t, 1234, cfg.TaskTimeout(TaskType("unknown")))
}
