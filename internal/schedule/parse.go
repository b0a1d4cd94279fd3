package schedule

import (
	"github.com/alexanderramin/studydesk/internal/llm"
)

// Parse turns raw model output into a normalized schedule. It is the only
// place untrusted planner text enters the pipeline.
//
// Errors are *llm.ExtractionError when no object can be found and
// *MalformedDocumentError when the object does not have the schedule shape.
// Undatable entries are not errors; they are listed in the Report.
func Parse(raw string) (Document, Report, error) {
	payload, err := llm.ExtractObject(raw)
	if err != nil {
		return Document{}, Report{}, err
	}
	doc, err := Decode(payload)
	if err != nil {
		return Document{}, Report{}, err
	}
	norm, report := Normalize(doc)
	return norm, report, nil
}
