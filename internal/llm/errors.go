package llm

import "errors"

var (
	// ErrUnavailable indicates the generation endpoint is unreachable.
	ErrUnavailable = errors.New("llm provider unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")

	// ErrNotConfigured indicates the selected provider has no API key.
	ErrNotConfigured = errors.New("llm provider not configured")
)

// OutputError carries the model text that a caller failed to interpret.
// Err is the underlying extraction, decoding or validation error.
type OutputError struct {
	Raw string
	Err error
}

func (e *OutputError) Error() string { return e.Err.Error() }

func (e *OutputError) Unwrap() error { return e.Err }

// RawOutput returns the model text attached to err, if any.
func RawOutput(err error) (string, bool) {
	var oe *OutputError
	if errors.As(err, &oe) {
		return oe.Raw, true
	}
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Raw, true
	}
	return "", false
}
