package schedule

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomDocument builds a document whose blocks ignore calendar weeks, with
// duplicate dates, gaps of several weeks and the occasional bad date.
func randomDocument(rng *rand.Rand) Document {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, rng.Intn(365))
	doc := Document{TargetDate: base.AddDate(0, 3, 0).Format(DateLayout)}

	numBlocks := rng.Intn(6)
	seq := 0
	for b := 0; b < numBlocks; b++ {
		block := WeekBlock{WeekNumber: rng.Intn(10)}
		numDays := rng.Intn(9)
		for i := 0; i < numDays; i++ {
			date := base.AddDate(0, 0, rng.Intn(70)).Format(DateLayout)
			switch rng.Intn(12) {
			case 0:
				date = ""
			case 1:
				date = "someday"
			}
			block.Days = append(block.Days, DayEntry{
				Date:  date,
				Tasks: json.RawMessage(fmt.Sprintf(`[{"seq":%d}]`, seq)),
			})
			seq++
		}
		doc.Weeks = append(doc.Weeks, block)
	}
	return doc
}

func entryKeys(entries []DayEntry) []string {
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Date+"|"+string(e.Tasks))
	}
	sort.Strings(keys)
	return keys
}

func validEntries(doc Document) []DayEntry {
	var out []DayEntry
	for _, w := range doc.Weeks {
		for _, d := range w.Days {
			if _, err := ParseDate(d.Date); err == nil {
				out = append(out, d)
			}
		}
	}
	return out
}

func allEntries(doc Document) []DayEntry {
	var out []DayEntry
	for _, w := range doc.Weeks {
		out = append(out, w.Days...)
	}
	return out
}

func TestNormalize_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 300; trial++ {
		doc := randomDocument(rng)
		out, report := Normalize(doc)

		// Idempotence
		again, againReport := Normalize(out)
		require.Equal(t, out, again, "trial %d: normalize must be idempotent", trial)
		assert.Empty(t, againReport.Dropped, "trial %d: second pass drops nothing", trial)

		// Window integrity
		windows := make(map[time.Time]bool)
		for _, w := range out.Weeks {
			require.NotEmpty(t, w.Days, "trial %d: no empty blocks", trial)
			win, ok := w.Window()
			require.True(t, ok)
			for _, d := range w.Days {
				date, err := ParseDate(d.Date)
				require.NoError(t, err)
				assert.True(t, win.Contains(date), "trial %d: %s outside %s", trial, d.Date, win)
				assert.Equal(t, win, WindowOf(date), "trial %d: block shares one window", trial)
			}
			assert.False(t, windows[win.Start], "trial %d: window %s repeated", trial, win)
			windows[win.Start] = true
		}

		// Contiguity
		for i, w := range out.Weeks {
			assert.Equal(t, i, w.WeekNumber, "trial %d: week numbers are 0..k-1", trial)
		}

		// Chronological ordering
		for i := 1; i < len(out.Weeks); i++ {
			prev, _ := out.Weeks[i-1].Window()
			cur, _ := out.Weeks[i].Window()
			assert.True(t, prev.Start.Before(cur.Start), "trial %d: blocks ordered by Monday", trial)
		}
		for _, w := range out.Weeks {
			for j := 1; j < len(w.Days); j++ {
				assert.LessOrEqual(t, w.Days[j-1].Date, w.Days[j].Date, "trial %d: days ordered", trial)
			}
		}

		// Content preservation
		assert.Equal(t, entryKeys(validEntries(doc)), entryKeys(allEntries(out)), "trial %d: valid entries preserved", trial)
		assert.Equal(t, len(allEntries(doc)), len(allEntries(out))+len(report.Dropped), "trial %d: every entry kept or reported", trial)
		assert.Equal(t, doc.TargetDate, out.TargetDate)
	}
}

func TestNormalize_StableWithinDuplicateDates(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 100; trial++ {
		doc := randomDocument(rng)
		out, _ := Normalize(doc)

		// Input order of entries sharing a date, by the seq tag in tasks.
		order := make(map[string][]string)
		for _, e := range validEntries(doc) {
			order[e.Date] = append(order[e.Date], string(e.Tasks))
		}
		got := make(map[string][]string)
		for _, e := range allEntries(out) {
			got[e.Date] = append(got[e.Date], string(e.Tasks))
		}
		assert.Equal(t, order, got, "trial %d", trial)
	}
}
