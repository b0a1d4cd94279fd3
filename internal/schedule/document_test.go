package schedule

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_StudyPlanKey(t *testing.T) {
	payload := `{
		"target_date": "2025-05-30",
		"study_plan": [
			{"week_number": 7, "days": [
				{"date": "2025-04-14", "tasks": [{"subject": "Physics", "chapter": "Light", "duration": 60, "status": "pending"}]},
				{"date": "2025-04-15", "tasks": [{"type": "break", "reason": "rest"}], "note": "light day"}
			]}
		],
		"notes": "generated"
	}`

	doc, err := Decode([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "2025-05-30", doc.TargetDate)
	require.Len(t, doc.Weeks, 1)
	assert.Equal(t, 0, doc.Weeks[0].WeekNumber, "input week numbers are not trusted")
	require.Len(t, doc.Weeks[0].Days, 2)
	assert.Equal(t, "2025-04-14", doc.Weeks[0].Days[0].Date)
	assert.JSONEq(t, `[{"subject":"Physics","chapter":"Light","duration":60,"status":"pending"}]`, string(doc.Weeks[0].Days[0].Tasks))
	assert.JSONEq(t, `"light day"`, string(doc.Weeks[0].Days[1].Extra["note"]))
	assert.JSONEq(t, `"generated"`, string(doc.Extra["notes"]))
}

func TestDecode_WeeksAlias(t *testing.T) {
	doc, err := Decode([]byte(`{"target_date":"2025-05-30","weeks":[{"days":[{"date":"2025-04-14","tasks":[]}]}]}`))
	require.NoError(t, err)
	require.Len(t, doc.Weeks, 1)
	assert.Equal(t, 1, doc.Entries())
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		path    string
	}{
		{"array", `[1,2]`, ""},
		{"null", `null`, ""},
		{"missing target", `{"study_plan":[]}`, "target_date"},
		{"target not string", `{"target_date":20250530,"study_plan":[]}`, "target_date"},
		{"target not a date", `{"target_date":"end of May","study_plan":[]}`, "target_date"},
		{"missing weeks", `{"target_date":"2025-05-30"}`, "study_plan"},
		{"weeks not list", `{"target_date":"2025-05-30","study_plan":{"days":[]}}`, "study_plan"},
		{"weeks null", `{"target_date":"2025-05-30","study_plan":null}`, "study_plan"},
		{"week not object", `{"target_date":"2025-05-30","study_plan":["w1"]}`, "study_plan[0]"},
		{"days not list", `{"target_date":"2025-05-30","weeks":[{"days":"monday"}]}`, "weeks[0].days"},
		{"day not object", `{"target_date":"2025-05-30","study_plan":[{"days":[{"date":"2025-04-14"},3]}]}`, "study_plan[0].days[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedDocument)

			var me *MalformedDocumentError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, tt.path, me.Path)
		})
	}
}

func TestDecode_EmptyAndMissingDays(t *testing.T) {
	doc, err := Decode([]byte(`{"target_date":"2025-05-30","study_plan":[{"week_number":0},{"days":null},{"days":[]}]}`))
	require.NoError(t, err)
	assert.Len(t, doc.Weeks, 3)
	assert.Equal(t, 0, doc.Entries())
}

func TestDayEntry_NonStringDateKeptAsText(t *testing.T) {
	var e DayEntry
	require.NoError(t, json.Unmarshal([]byte(`{"date": 20250414, "tasks": []}`), &e))
	assert.Equal(t, "20250414", e.Date)

	require.NoError(t, json.Unmarshal([]byte(`{"date": null}`), &e))
	assert.Equal(t, "", e.Date)
	assert.Nil(t, e.Tasks)
}

func TestDayEntry_MarshalOrder(t *testing.T) {
	e := DayEntry{
		Date:  "2025-04-14",
		Tasks: json.RawMessage(`[{"subject":"Maths"}]`),
		Extra: map[string]json.RawMessage{"zeta": json.RawMessage(`1`), "alpha": json.RawMessage(`true`)},
	}
	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, `{"date":"2025-04-14","tasks":[{"subject":"Maths"}],"alpha":true,"zeta":1}`, string(b))
}

func TestDocument_MarshalUsesStudyPlanKey(t *testing.T) {
	doc := Document{TargetDate: "2025-05-30"}
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"target_date":"2025-05-30","study_plan":[]}`, string(b))
}

func TestDocument_JSONRoundTripPreservesTasks(t *testing.T) {
	in := `{"target_date":"2025-05-30","study_plan":[{"week_number":0,"days":[{"date":"2025-04-14","tasks":[{"subject":"Chemistry","duration":45,"status":"done","x":{"nested":[1,2.5,"a"]}}]}]}],"meta":{"v":2}}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(in), &doc))
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestDocument_UnmarshalRejectsMalformed(t *testing.T) {
	var doc Document
	err := json.Unmarshal([]byte(`{"study_plan":[]}`), &doc)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}
