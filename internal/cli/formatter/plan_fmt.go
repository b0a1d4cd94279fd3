package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/studydesk/internal/repository"
	"github.com/alexanderramin/studydesk/internal/schedule"
)

// FormatPlan renders a normalized plan one calendar week at a time.
func FormatPlan(doc schedule.Document, dropped []schedule.DroppedEntry) string {
	var b strings.Builder

	b.WriteString(Header("Study plan"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s   %s %d   %s %d\n\n",
		Dim("Target"), Bold(doc.TargetDate),
		Dim("Weeks"), len(doc.Weeks),
		Dim("Study days"), doc.Entries())

	if len(doc.Weeks) == 0 {
		b.WriteString(Dim("No dated entries.") + "\n")
	}
	for _, w := range doc.Weeks {
		b.WriteString(formatWeek(w))
		b.WriteString("\n")
	}

	if len(dropped) > 0 {
		b.WriteString(StyleRed.Render(fmt.Sprintf("Dropped %d undatable entries:", len(dropped))))
		b.WriteString("\n")
		for _, d := range dropped {
			date := d.Date
			if date == "" {
				date = "(no date)"
			}
			fmt.Fprintf(&b, "  %s %s\n", Dim(fmt.Sprintf("block %d entry %d:", d.Week, d.Index)), date)
		}
	}
	return b.String()
}

func formatWeek(w schedule.WeekBlock) string {
	title := fmt.Sprintf("Week %d", w.WeekNumber)
	if win, ok := w.Window(); ok {
		title += Dim(fmt.Sprintf("  %s → %s", win.Start.Format("Mon Jan 2"), win.End.Format("Mon Jan 2")))
	}

	rows := make([][]string, 0, len(w.Days))
	for _, d := range w.Days {
		day := ""
		if t, err := schedule.ParseDate(d.Date); err == nil {
			day = t.Format("Mon")
		}
		rows = append(rows, []string{d.Date, day, SummarizeTasks(d.Tasks)})
	}
	return StyleBold.Render(title) + "\n" + RenderTable([]string{"Date", "Day", "Tasks"}, rows)
}

// SummarizeTasks renders a day's tasks on one line. Task objects are
// opaque; known shapes get a short form and anything else is shown as
// compact JSON.
func SummarizeTasks(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return Dim("-")
	}
	var tasks []json.RawMessage
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return compact(raw)
	}
	if len(tasks) == 0 {
		return Dim("rest")
	}
	parts := make([]string, 0, len(tasks))
	for _, t := range tasks {
		parts = append(parts, summarizeTask(t))
	}
	return strings.Join(parts, Dim(" · "))
}

func summarizeTask(raw json.RawMessage) string {
	var t map[string]any
	if err := json.Unmarshal(raw, &t); err != nil {
		return compact(raw)
	}
	if mins, ok := t["break"].(float64); ok {
		return Dim("break " + FormatMinutes(roundMinutes(mins)))
	}
	if typ, _ := t["type"].(string); typ == "break" {
		return Dim("break")
	}
	subject, _ := t["subject"].(string)
	if subject == "" {
		return compact(raw)
	}
	s := subject
	if chapter, _ := t["chapter"].(string); chapter != "" {
		s += ": " + chapter
	}
	if d, ok := t["duration"].(float64); ok && d > 0 {
		s += " (" + FormatMinutes(roundMinutes(d)) + ")"
	}
	if status, _ := t["status"].(string); status == "done" || status == "completed" {
		return StyleGreen.Render("✔ " + s)
	}
	return s
}

func roundMinutes(f float64) int {
	m := int(math.Round(f))
	if m == 0 && f > 0 {
		return 1
	}
	return m
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// FormatPlanList renders stored plan summaries, newest first.
func FormatPlanList(plans []*repository.PlanSummary, now time.Time) string {
	if len(plans) == 0 {
		return Dim("No saved plans.") + "\n"
	}
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		span := Dim("-")
		if p.FirstWeek != "" {
			span = p.FirstWeek + " → " + p.LastWeek
		}
		rows = append(rows, []string{
			TruncID(p.ID),
			SourceBadge(p.Source),
			targetCell(p.TargetDate, now),
			fmt.Sprintf("%d", p.WeekCount),
			span,
			DroppedBadge(p.DroppedCount),
			HumanTimestampFrom(p.CreatedAt, now),
		})
	}
	return RenderTable([]string{"ID", "Source", "Target", "Weeks", "Span", "Dropped", "Saved"}, rows)
}

// targetCell shows the target date with its distance from now, or the date
// text alone when it does not parse.
func targetCell(target string, now time.Time) string {
	d, err := schedule.ParseDate(target)
	if err != nil {
		return target
	}
	return target + " " + Dim("("+RelativeDateFrom(d, now)+")")
}

// FormatStoredPlan renders a plan read back from history.
func FormatStoredPlan(p *repository.StoredPlan, now time.Time) string {
	var meta strings.Builder
	fmt.Fprintf(&meta, "%s %s\n", Dim("ID     "), p.ID)
	fmt.Fprintf(&meta, "%s %s\n", Dim("Source "), SourceBadge(p.Source))
	fmt.Fprintf(&meta, "%s %s\n", Dim("Target "), targetCell(p.Plan.TargetDate, now))
	if p.Model != "" {
		fmt.Fprintf(&meta, "%s %s\n", Dim("Model  "), p.Model)
	}
	fmt.Fprintf(&meta, "%s %s (%s)", Dim("Saved  "), p.CreatedAt.Format("Jan 2, 2006 15:04"), HumanTimestampFrom(p.CreatedAt, now))
	if p.DroppedCount > 0 {
		fmt.Fprintf(&meta, "\n%s %s", Dim("Dropped"), DroppedBadge(p.DroppedCount))
	}
	return RenderBox("Saved plan", meta.String()) + "\n\n" + FormatPlan(p.Plan, nil)
}
