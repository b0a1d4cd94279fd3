package planner

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRequest wraps every request validation failure.
var ErrInvalidRequest = errors.New("invalid planner request")

// Request is a student's planning request. Dates are [year, month, day].
type Request struct {
	Subjects        []string `json:"subjects"`
	Chapters        []string `json:"chapters"`
	StudyGoals      string   `json:"study_goals"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	TimeAvailable   int      `json:"time_available"` // minutes per study day
	Target          []int    `json:"target"`
	DaysUntilTarget int      `json:"days_until_target"`
	DaysPerWeek     []string `json:"days_per_week"` // lowercase weekday names
	StartDate       []int    `json:"start_date"`
}

var weekdayNames = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday, "sunday": time.Sunday,
}

// Validate checks the request and lowercases DaysPerWeek in place.
func (r *Request) Validate() error {
	if len(r.Subjects) == 0 {
		return fmt.Errorf("%w: at least one subject is required", ErrInvalidRequest)
	}
	if r.TimeAvailable <= 0 {
		return fmt.Errorf("%w: time_available must be positive", ErrInvalidRequest)
	}
	if r.DaysUntilTarget < 0 {
		return fmt.Errorf("%w: days_until_target must not be negative", ErrInvalidRequest)
	}
	start, err := dateFromParts("start_date", r.StartDate)
	if err != nil {
		return err
	}
	target, err := dateFromParts("target", r.Target)
	if err != nil {
		return err
	}
	if target.Before(start) {
		return fmt.Errorf("%w: target %s is before start %s", ErrInvalidRequest, target.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	if len(r.DaysPerWeek) == 0 {
		return fmt.Errorf("%w: days_per_week must name at least one weekday", ErrInvalidRequest)
	}
	for i, d := range r.DaysPerWeek {
		name := strings.ToLower(strings.TrimSpace(d))
		if _, ok := weekdayNames[name]; !ok {
			return fmt.Errorf("%w: unknown weekday %q", ErrInvalidRequest, d)
		}
		r.DaysPerWeek[i] = name
	}
	return nil
}

// Start returns the start date. Call Validate first.
func (r Request) Start() time.Time {
	t, _ := dateFromParts("start_date", r.StartDate)
	return t
}

// TargetDate returns the target date. Call Validate first.
func (r Request) TargetDate() time.Time {
	t, _ := dateFromParts("target", r.Target)
	return t
}

func dateFromParts(field string, parts []int) (time.Time, error) {
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %s must be [year, month, day]", ErrInvalidRequest, field)
	}
	y, m, d := parts[0], parts[1], parts[2]
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow; reject it instead.
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, fmt.Errorf("%w: %s %v is not a calendar date", ErrInvalidRequest, field, parts)
	}
	return t, nil
}
