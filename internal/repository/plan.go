package repository

import (
	"encoding/json"
	"time"

	"github.com/alexanderramin/studydesk/internal/schedule"
)

// PlanSource records how a stored plan was produced.
type PlanSource string

const (
	SourceGenerate  PlanSource = "generate"
	SourceNormalize PlanSource = "normalize"
)

// StoredPlan is a normalized plan together with the model text it came from.
type StoredPlan struct {
	ID           string            `json:"id"`
	Source       PlanSource        `json:"source"`
	Model        string            `json:"model,omitempty"`
	Request      json.RawMessage   `json:"request,omitempty"` // nil for normalize-only plans
	RawResponse  string            `json:"raw_response"`
	Plan         schedule.Document `json:"plan"`
	DroppedCount int               `json:"dropped_count"`
	CreatedAt    time.Time         `json:"created_at"`

	// Weeks is filled on read from plan_weeks.
	Weeks []StoredWeek `json:"weeks,omitempty"`
}

// StoredWeek is the persisted index row for one normalized week.
type StoredWeek struct {
	WeekNumber int    `json:"week_number"`
	Start      string `json:"week_start"`
	End        string `json:"week_end"`
	DayCount   int    `json:"day_count"`
}

// PlanSummary is a list-view row.
type PlanSummary struct {
	ID           string     `json:"id"`
	Source       PlanSource `json:"source"`
	TargetDate   string     `json:"target_date"`
	Model        string     `json:"model,omitempty"`
	WeekCount    int        `json:"week_count"`
	DroppedCount int        `json:"dropped_count"`
	FirstWeek    string     `json:"first_week,omitempty"` // Monday of week 0
	LastWeek     string     `json:"last_week,omitempty"`  // Sunday of the last week
	CreatedAt    time.Time  `json:"created_at"`
}

// GradingRun records one grading request.
type GradingRun struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"` // "unit" or "batch"
	ItemCount int       `json:"item_count"`
	Skipped   int       `json:"skipped"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
