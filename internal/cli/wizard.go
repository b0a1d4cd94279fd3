package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/studydesk/internal/cli/formatter"
	"github.com/alexanderramin/studydesk/internal/planner"
	"github.com/alexanderramin/studydesk/internal/schedule"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

type formRunner interface {
	Run() error
}

func runForm(f formRunner) error { return f.Run() }

func studydeskHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// plannerAnswers holds the raw wizard input.
type plannerAnswers struct {
	Subjects   string
	Chapters   string
	Goals      string
	Strengths  string
	Weaknesses string
	Minutes    string
	Start      string
	Target     string
	Days       []string
}

func plannerWizard(a *plannerAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Subjects").Description("Comma separated").Value(&a.Subjects).Validate(validateRequired),
			huh.NewInput().Title("Chapters").Description("Comma separated").Value(&a.Chapters),
			huh.NewInput().Title("Study goals").Value(&a.Goals),
			huh.NewInput().Title("Strengths").Description("Comma separated").Value(&a.Strengths),
			huh.NewInput().Title("Weaknesses").Description("Comma separated").Value(&a.Weaknesses),
		),
		huh.NewGroup(
			huh.NewInput().Title("Minutes per study day").Placeholder("120").Value(&a.Minutes).Validate(validatePositiveInt),
			huh.NewInput().Title("Start date (YYYY-MM-DD)").Value(&a.Start).Validate(validateDate),
			huh.NewInput().Title("Target date (YYYY-MM-DD)").Value(&a.Target).Validate(validateDate),
			huh.NewMultiSelect[string]().
				Title("Study days").
				Options(huh.NewOptions(weekdays...)...).
				Value(&a.Days),
		),
	).WithTheme(studydeskHuhTheme()).WithShowHelp(false)
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func validatePositiveInt(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func validateDate(s string) error {
	if _, err := schedule.ParseDate(s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func dateParts(t time.Time) []int {
	return []int{t.Year(), int(t.Month()), t.Day()}
}

// toRequest converts wizard answers into a planner request.
func (a plannerAnswers) toRequest() (planner.Request, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(a.Minutes))
	if err != nil {
		return planner.Request{}, fmt.Errorf("minutes per day: %w", err)
	}
	start, err := schedule.ParseDate(a.Start)
	if err != nil {
		return planner.Request{}, fmt.Errorf("start date: %w", err)
	}
	target, err := schedule.ParseDate(a.Target)
	if err != nil {
		return planner.Request{}, fmt.Errorf("target date: %w", err)
	}
	return planner.Request{
		Subjects:        splitCSV(a.Subjects),
		Chapters:        splitCSV(a.Chapters),
		StudyGoals:      strings.TrimSpace(a.Goals),
		Strengths:       splitCSV(a.Strengths),
		Weaknesses:      splitCSV(a.Weaknesses),
		TimeAvailable:   minutes,
		Target:          dateParts(target),
		DaysUntilTarget: int(target.Sub(start).Hours() / 24),
		DaysPerWeek:     a.Days,
		StartDate:       dateParts(start),
	}, nil
}
