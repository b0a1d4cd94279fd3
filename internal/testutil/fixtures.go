package testutil

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/studydesk/internal/repository"
	"github.com/alexanderramin/studydesk/internal/schedule"
)

// PlannerReply is a realistic model reply: prose around a fenced object,
// a miscounted week, a comment and a leading-decimal duration.
const PlannerReply = "Here is the plan you asked for.\n```json\n" + `{
  "target_date": "2025-05-30",
  "study_plan": [
    {"week_number": 1, "days": [
      {"date": "2025-04-14", "tasks": [{"subject": "Physics", "chapter": "Force", "duration": 60, "status": "pending"}]},
      {"date": "2025-04-20", "tasks": [{"type": "break", "reason": "Sunday"}]},
      {"date": "2025-04-21", "tasks": [{"subject": "Maths", "chapter": "Matrices", "duration": .75, "status": "pending"}]}
    ]},
    {"week_number": 2, "days": [
      {"date": "2025-05-05", "tasks": [{"subject": "Chemistry", "chapter": "Acids", "duration": 45, "status": "pending"}]} // revise
    ]}
  ]
}` + "\n```\nGood luck!"

// DayOption configures a fixture entry.
type DayOption func(*schedule.DayEntry)

func WithTasks(raw string) DayOption {
	return func(e *schedule.DayEntry) { e.Tasks = json.RawMessage(raw) }
}

// NewDay returns a day entry with a single study task.
func NewDay(date, subject string, opts ...DayOption) schedule.DayEntry {
	e := schedule.DayEntry{
		Date:  date,
		Tasks: json.RawMessage(fmt.Sprintf(`[{"subject":%q,"chapter":"Revision","duration":60,"status":"pending"}]`, subject)),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// NewTestPlan returns a normalized plan with one week per Monday given.
func NewTestPlan(target string, mondays ...string) schedule.Document {
	doc := schedule.Document{TargetDate: target}
	for _, m := range mondays {
		doc.Weeks = append(doc.Weeks, schedule.WeekBlock{Days: []schedule.DayEntry{NewDay(m, "Physics")}})
	}
	norm, _ := schedule.Normalize(doc)
	return norm
}

// NewStoredPlan wraps a plan for persistence tests.
func NewStoredPlan(plan schedule.Document, createdAt time.Time) *repository.StoredPlan {
	raw, _ := json.Marshal(plan)
	return &repository.StoredPlan{
		Source:      repository.SourceNormalize,
		RawResponse: string(raw),
		Plan:        plan,
		CreatedAt:   createdAt,
	}
}
