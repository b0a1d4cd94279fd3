package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrMalformedDocument is the sentinel every MalformedDocumentError unwraps to.
var ErrMalformedDocument = errors.New("malformed schedule document")

// MalformedDocumentError reports an extracted object that does not have the
// schedule shape. Path points at the offending field.
type MalformedDocumentError struct {
	Path   string
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedDocument, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrMalformedDocument, e.Path, e.Reason)
}

func (e *MalformedDocumentError) Unwrap() error { return ErrMalformedDocument }

func malformed(path, format string, args ...any) error {
	return &MalformedDocumentError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Wire keys. Output always uses keyStudyPlan; keyWeeks is accepted on input.
const (
	keyTargetDate = "target_date"
	keyStudyPlan  = "study_plan"
	keyWeeks      = "weeks"
	keyWeekNumber = "week_number"
	keyDays       = "days"
	keyDate       = "date"
	keyTasks      = "tasks"
)

// Document is a study schedule as produced by the planner model.
type Document struct {
	TargetDate string
	Weeks      []WeekBlock
	// Extra holds top-level fields the schedule does not interpret.
	Extra map[string]json.RawMessage
}

// WeekBlock groups the entries of one calendar week.
type WeekBlock struct {
	WeekNumber int        `json:"week_number"`
	Days       []DayEntry `json:"days"`
}

// DayEntry is one dated entry. Tasks and any other fields are opaque and
// round-trip byte for byte.
type DayEntry struct {
	Date  string
	Tasks json.RawMessage
	Extra map[string]json.RawMessage
}

// Entries returns the number of day entries across all weeks.
func (d Document) Entries() int {
	n := 0
	for _, w := range d.Weeks {
		n += len(w.Days)
	}
	return n
}

// Decode validates the shape of an extracted payload and returns the
// document it describes. Week numbers in the payload are ignored.
func Decode(payload []byte) (Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil || top == nil {
		return Document{}, malformed("", "payload is not an object")
	}

	var doc Document

	rawTarget, ok := top[keyTargetDate]
	if !ok {
		return Document{}, malformed(keyTargetDate, "missing")
	}
	if err := json.Unmarshal(rawTarget, &doc.TargetDate); err != nil {
		return Document{}, malformed(keyTargetDate, "not a string")
	}
	if _, err := ParseDate(doc.TargetDate); err != nil {
		return Document{}, malformed(keyTargetDate, "%v", err)
	}

	weeksKey := keyStudyPlan
	rawWeeks, ok := top[keyStudyPlan]
	if !ok {
		weeksKey = keyWeeks
		rawWeeks, ok = top[keyWeeks]
	}
	if !ok {
		return Document{}, malformed(keyStudyPlan, "missing")
	}

	var weeks []json.RawMessage
	if err := json.Unmarshal(rawWeeks, &weeks); err != nil || weeks == nil {
		return Document{}, malformed(weeksKey, "not a list")
	}

	doc.Weeks = make([]WeekBlock, 0, len(weeks))
	for i, rawWeek := range weeks {
		path := fmt.Sprintf("%s[%d]", weeksKey, i)
		block, err := decodeWeek(path, rawWeek)
		if err != nil {
			return Document{}, err
		}
		block.WeekNumber = i
		doc.Weeks = append(doc.Weeks, block)
	}

	for k, v := range top {
		switch k {
		case keyTargetDate, keyStudyPlan, keyWeeks:
			continue
		}
		if doc.Extra == nil {
			doc.Extra = make(map[string]json.RawMessage)
		}
		doc.Extra[k] = v
	}
	return doc, nil
}

func decodeWeek(path string, raw json.RawMessage) (WeekBlock, error) {
	var week map[string]json.RawMessage
	if err := json.Unmarshal(raw, &week); err != nil || week == nil {
		return WeekBlock{}, malformed(path, "not an object")
	}

	var block WeekBlock
	rawDays, ok := week[keyDays]
	if !ok {
		return block, nil
	}
	var days []json.RawMessage
	if err := json.Unmarshal(rawDays, &days); err != nil || (days == nil && !isNull(rawDays)) {
		return WeekBlock{}, malformed(path+"."+keyDays, "not a list")
	}
	block.Days = make([]DayEntry, 0, len(days))
	for j, rawDay := range days {
		var entry DayEntry
		if err := json.Unmarshal(rawDay, &entry); err != nil {
			return WeekBlock{}, malformed(fmt.Sprintf("%s.%s[%d]", path, keyDays, j), "not an object")
		}
		block.Days = append(block.Days, entry)
	}
	return block, nil
}

// UnmarshalJSON accepts any object. A non-string date is kept as its JSON
// text so the normalizer can report it.
func (e *DayEntry) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("day entry is null")
	}

	*e = DayEntry{}
	if raw, ok := fields[keyDate]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &e.Date); err != nil {
			e.Date = string(raw)
		}
	}
	if raw, ok := fields[keyTasks]; ok {
		e.Tasks = raw
	}
	for k, v := range fields {
		if k == keyDate || k == keyTasks {
			continue
		}
		if e.Extra == nil {
			e.Extra = make(map[string]json.RawMessage)
		}
		e.Extra[k] = v
	}
	return nil
}

// MarshalJSON writes date and tasks first, then extra fields sorted by key.
func (e DayEntry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	w := objectWriter{buf: &buf}
	w.open()
	if err := w.field(keyDate, e.Date); err != nil {
		return nil, err
	}
	if e.Tasks != nil {
		w.raw(keyTasks, e.Tasks)
	}
	if err := w.extras(e.Extra); err != nil {
		return nil, err
	}
	w.close()
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes and validates via Decode.
func (d *Document) UnmarshalJSON(data []byte) error {
	doc, err := Decode(data)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

// MarshalJSON writes target_date and study_plan first, then extra fields.
func (d Document) MarshalJSON() ([]byte, error) {
	weeks := d.Weeks
	if weeks == nil {
		weeks = []WeekBlock{}
	}
	var buf bytes.Buffer
	w := objectWriter{buf: &buf}
	w.open()
	if err := w.field(keyTargetDate, d.TargetDate); err != nil {
		return nil, err
	}
	if err := w.field(keyStudyPlan, weeks); err != nil {
		return nil, err
	}
	if err := w.extras(d.Extra); err != nil {
		return nil, err
	}
	w.close()
	return buf.Bytes(), nil
}

// objectWriter emits a JSON object with a fixed key order.
type objectWriter struct {
	buf *bytes.Buffer
	n   int
}

func (w *objectWriter) open()  { w.buf.WriteByte('{') }
func (w *objectWriter) close() { w.buf.WriteByte('}') }

func (w *objectWriter) key(k string) {
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	w.n++
	kb, _ := json.Marshal(k)
	w.buf.Write(kb)
	w.buf.WriteByte(':')
}

func (w *objectWriter) field(k string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", k, err)
	}
	w.key(k)
	w.buf.Write(b)
	return nil
}

func (w *objectWriter) raw(k string, v json.RawMessage) {
	w.key(k)
	w.buf.Write(v)
}

func (w *objectWriter) extras(extra map[string]json.RawMessage) error {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !json.Valid(extra[k]) {
			return fmt.Errorf("encoding %s: invalid raw value", k)
		}
		w.raw(k, extra[k])
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
