package schedule

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

// DroppedEntry records a day entry that could not be placed in a week
// because its date is missing or unparseable.
type DroppedEntry struct {
	Week   int    `json:"week"`  // position of the input week block
	Index  int    `json:"index"` // position inside that block's days
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// Report describes what normalization did besides regrouping.
type Report struct {
	Dropped []DroppedEntry `json:"dropped,omitempty"`
}

type datedEntry struct {
	date  time.Time
	entry DayEntry
}

// Normalize regroups every dated entry into Monday-to-Sunday weeks,
// numbers the weeks 0..k-1 in calendar order and sorts each week by date.
// Input week numbers and grouping are discarded. Entries with the same
// date keep their input order. The input document is not modified.
func Normalize(doc Document) (Document, Report) {
	var report Report
	buckets := make(map[time.Time][]datedEntry)

	for wi, week := range doc.Weeks {
		for di, entry := range week.Days {
			date, err := ParseDate(entry.Date)
			if err != nil {
				report.Dropped = append(report.Dropped, DroppedEntry{
					Week:   wi,
					Index:  di,
					Date:   entry.Date,
					Reason: err.Error(),
				})
				continue
			}
			monday := MondayOf(date)
			buckets[monday] = append(buckets[monday], datedEntry{date: date, entry: cloneEntry(entry)})
		}
	}

	mondays := make([]time.Time, 0, len(buckets))
	for m := range buckets {
		mondays = append(mondays, m)
	}
	sort.Slice(mondays, func(i, j int) bool { return mondays[i].Before(mondays[j]) })

	out := Document{
		TargetDate: doc.TargetDate,
		Weeks:      make([]WeekBlock, 0, len(mondays)),
		Extra:      cloneRawMap(doc.Extra),
	}
	for n, m := range mondays {
		entries := buckets[m]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].date.Before(entries[j].date) })

		days := make([]DayEntry, len(entries))
		for i, e := range entries {
			days[i] = e.entry
		}
		out.Weeks = append(out.Weeks, WeekBlock{WeekNumber: n, Days: days})
	}
	return out, report
}

// Window returns the calendar week of the block's first dated entry.
// ok is false when the block has no parseable dates.
func (w WeekBlock) Window() (Window, bool) {
	for _, d := range w.Days {
		if t, err := ParseDate(d.Date); err == nil {
			return WindowOf(t), true
		}
	}
	return Window{}, false
}

func cloneEntry(e DayEntry) DayEntry {
	return DayEntry{
		Date:  e.Date,
		Tasks: bytes.Clone(e.Tasks),
		Extra: cloneRawMap(e.Extra),
	}
}

func cloneRawMap(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = bytes.Clone(v)
	}
	return out
}
