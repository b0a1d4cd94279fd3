package repository

import (
	"encoding/json"
	"time"
)

// nullableJSON converts an optional JSON document to a value suitable for
// storage. Returns nil (SQL NULL) for an empty document.
func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// timestampLayout has fixed-width fractions so stored values sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// parseTime parses a stored timestamp. Zero time on failure.
func parseTime(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
