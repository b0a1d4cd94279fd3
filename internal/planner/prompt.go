package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/studydesk/internal/schedule"
)

// BuildPrompt renders the planning prompt. Weeks 0 and 1 are spelled out
// with real dates so the model starts from the right Monday.
func BuildPrompt(req Request) string {
	start := req.Start()
	target := req.TargetDate()
	wk0 := schedule.WindowOf(start)
	wk1 := schedule.WindowOf(wk0.Start.AddDate(0, 0, 7))
	iso := func(t time.Time) string { return t.Format(schedule.DateLayout) }

	example := fmt.Sprintf(`{
  "target_date": "%s",
  "study_plan": [
    {
      "week_number": 0,
      "days": [
        { "date": "%s", "tasks": [] }
      ]
    },
    {
      "week_number": 1,
      "days": [
        { "date": "%s", "tasks": [] }
      ]
    }
  ]
}`, iso(target), iso(start), iso(wk1.Start))

	var b strings.Builder
	b.WriteString("You are an expert ICSE Class 10 study planner. Generate a highly detailed, realistic plan.\n\n")

	b.WriteString("STUDENT INFO\n")
	fmt.Fprintf(&b, "- Subjects: %s\n", strings.Join(req.Subjects, ", "))
	fmt.Fprintf(&b, "- Chapters: %s\n", strings.Join(req.Chapters, ", "))
	fmt.Fprintf(&b, "- Study goals: %s\n", req.StudyGoals)
	fmt.Fprintf(&b, "- Strengths: %s\n", strings.Join(req.Strengths, ", "))
	fmt.Fprintf(&b, "- Weaknesses: %s\n", strings.Join(req.Weaknesses, ", "))
	fmt.Fprintf(&b, "- Start date (YYYY-MM-DD): %s\n", iso(start))
	fmt.Fprintf(&b, "- Target date (YYYY-MM-DD): %s\n", iso(target))
	fmt.Fprintf(&b, "- Time available per study day: %d minutes\n", req.TimeAvailable)
	fmt.Fprintf(&b, "- Days until target: %d\n", req.DaysUntilTarget)
	fmt.Fprintf(&b, "- Allowed study days each week (lowercase): %s\n\n", strings.Join(req.DaysPerWeek, ", "))

	b.WriteString(`CALENDAR WEEK GROUPING (STRICT)
1) A week is always Monday to Sunday.
2) week_number starts at 0: week 0 is the calendar week containing the start date, week 1 is the next Monday to Sunday, and so on.
3) List all study dates in order using only the allowed weekdays, then assign each date the week_number of its Monday to Sunday window.
4) Only increment week_number when the calendar Monday changes. Week numbers must be contiguous with no gaps.
5) Never put dates from different Monday to Sunday windows in the same week, and never split one window across blocks.

`)
	b.WriteString("Anchor to the actual calendar for this student:\n")
	fmt.Fprintf(&b, "Start date %s falls in calendar week %s to %s, which is \"week_number\": 0.\n", iso(start), iso(wk0.Start), iso(wk0.End))
	fmt.Fprintf(&b, "The next calendar week runs %s to %s, which is \"week_number\": 1.\n\n", iso(wk1.Start), iso(wk1.End))

	b.WriteString(`TASK RULES
- Use only the allowed study days per week.
- Each day may have 1 to 3 tasks separated by a 20-minute break object: {"break": 20}.
- Each task has subject, chapter, duration (minutes) and status "pending".
- Estimated times must fit within the per-day time budget.
- Prioritize weaker subjects first, then strengths. Mix subjects across the week.
- If the syllabus completes early, allocate revision or buffer days.

OUTPUT RULES
- Return ONLY a valid JSON object. No commentary.
- Dates must be chronological and grouped by calendar week_number.
- The schema must follow exactly:
`)
	b.WriteString(example)
	b.WriteString("\n- Populate the tasks realistically for this student.\n")
	return b.String()
}
