package llm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SchemaValidator validates a parsed struct after JSON extraction.
// Returns nil if valid, or a descriptive error if invalid.
type SchemaValidator[T any] func(T) error

// ExtractionError reports that no structured object could be isolated in a
// model response. Raw holds the untouched response for diagnostics.
type ExtractionError struct {
	Raw    string
	Reason string
}

func (e *ExtractionError) Error() string {
	return "no structured object in llm output: " + e.Reason
}

// Unwrap lets callers match extraction failures with errors.Is(err, ErrInvalidOutput).
func (e *ExtractionError) Unwrap() error { return ErrInvalidOutput }

// maxCandidates bounds how many balanced spans are parsed once the
// first-to-last span has failed.
const maxCandidates = 32

// ExtractPayload returns the substring of text spanning the outermost
// {...} pair that parses as a single JSON object. The first '{' through the
// last '}' is tried first; when that span does not parse, balanced regions
// are tried widest first (earliest on ties) and the first that parses wins.
func ExtractPayload(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || end < start {
		return "", &ExtractionError{Raw: text, Reason: "no delimiter pair"}
	}

	region := text[start : end+1]
	if parseable(region) {
		return region, nil
	}

	for i, sp := range candidateSpans(region) {
		if i == maxCandidates {
			break
		}
		if span := region[sp.open : sp.close+1]; parseable(span) {
			return span, nil
		}
	}
	return "", &ExtractionError{Raw: text, Reason: "no balanced object parses"}
}

// ExtractObject isolates the payload with ExtractPayload and returns it with
// the model-output repairs applied, ready for json.Unmarshal.
func ExtractObject(text string) ([]byte, error) {
	span, err := ExtractPayload(text)
	if err != nil {
		return nil, err
	}
	return []byte(repair(span)), nil
}

// ExtractJSON extracts a JSON object of type T from raw LLM text output.
// It handles markdown code fences, leading/trailing text, and nested braces.
// If validator is non-nil, the extracted value is validated before return.
func ExtractJSON[T any](raw string, validator SchemaValidator[T]) (T, error) {
	var zero T

	payload, err := ExtractObject(raw)
	if err != nil {
		return zero, err
	}

	var result T
	if err := json.Unmarshal(payload, &result); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	if validator != nil {
		if err := validator(result); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}

	return result, nil
}

func parseable(span string) bool {
	if !json.Valid([]byte(span)) {
		return json.Valid([]byte(repair(span)))
	}
	return true
}

func repair(span string) string {
	return normalizeLeadingDecimalNumbers(stripJSONComments(span))
}

type braceSpan struct {
	open, close int
}

func (b braceSpan) width() int { return b.close - b.open }

// candidateSpans collects balanced regions from a string-aware pass and a
// brace-only pass, deduplicated and ordered widest first. The brace-only pass
// recovers objects that follow a stray quote in prose.
func candidateSpans(s string) []braceSpan {
	seen := make(map[braceSpan]bool)
	var spans []braceSpan
	for _, quoted := range []bool{true, false} {
		for _, sp := range balancedSpans(s, quoted) {
			if !seen[sp] {
				seen[sp] = true
				spans = append(spans, sp)
			}
		}
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].width() != spans[j].width() {
			return spans[i].width() > spans[j].width()
		}
		return spans[i].open < spans[j].open
	})
	return spans
}

// balancedSpans pairs each '{' with the '}' that closes it in a single pass
// over s, using a stack of open positions. When quoted is set, braces inside
// JSON string literals are ignored. Unclosed braces yield no span.
func balancedSpans(s string, quoted bool) []braceSpan {
	var stack []int
	var spans []braceSpan
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = quoted
		case '{':
			stack = append(stack, i)
		case '}':
			if n := len(stack); n > 0 {
				spans = append(spans, braceSpan{open: stack[n-1], close: i})
				stack = stack[:n-1]
			}
		}
	}

	return spans
}

// stripJSONComments removes C-style line comments (// ...) outside of JSON string
// values. LLMs sometimes emit comments in JSON output despite instructions not to.
func stripJSONComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}

		if c == '\\' && inString {
			b.WriteByte(c)
			escaped = true
			continue
		}

		if c == '"' {
			b.WriteByte(c)
			inString = !inString
			continue
		}

		if inString {
			b.WriteByte(c)
			continue
		}

		if c == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		}

		if c == '/' && i+1 < len(s) && s[i+1] == '*' {
			i += 2
			for i+1 < len(s) {
				if s[i] == '*' && s[i+1] == '/' {
					i++
					break
				}
				i++
			}
			continue
		}

		b.WriteByte(c)
	}

	return b.String()
}

// normalizeLeadingDecimalNumbers rewrites invalid JSON numeric literals such as
// ".8" or "-.3" into "0.8" and "-0.3" outside string values.
func normalizeLeadingDecimalNumbers(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}

		if c == '\\' && inString {
			b.WriteByte(c)
			escaped = true
			continue
		}

		if c == '"' {
			b.WriteByte(c)
			inString = !inString
			continue
		}

		if inString {
			b.WriteByte(c)
			continue
		}

		if c == '.' && i+1 < len(s) && isDigit(s[i+1]) && isNumericBoundary(prevNonSpace(s, i-1)) {
			b.WriteByte('0')
		}

		b.WriteByte(c)
	}

	return b.String()
}

func prevNonSpace(s string, i int) byte {
	for ; i >= 0; i-- {
		if s[i] != ' ' && s[i] != '\n' && s[i] != '\r' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}

func isNumericBoundary(c byte) bool {
	switch c {
	case 0, ':', ',', '[', '{', '-':
		return true
	default:
		return false
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
