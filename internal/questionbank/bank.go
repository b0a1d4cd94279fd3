package questionbank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/studydesk/internal/config"
	"github.com/alexanderramin/studydesk/internal/logger"
)

var (
	// ErrNotFound means the question or its answer key entry does not exist.
	ErrNotFound = errors.New("question not found")
	// ErrUnavailable means the dataset could not be downloaded.
	ErrUnavailable = errors.New("question bank unavailable")
)

// Question is one entry of the question paper.
type Question struct {
	Section        string `json:"section"`
	QuestionNumber string `json:"question_number"`
	Type           string `json:"type"`
	Text           string `json:"question"`
	TextAlt        string `json:"question_text"`
}

func (q Question) text() string {
	if q.Text != "" {
		return q.Text
	}
	return q.TextAlt
}

type answerEntry struct {
	Section        string          `json:"section"`
	QuestionNumber string          `json:"question_number"`
	Answer         json.RawMessage `json:"answer"`
	Marks          marks           `json:"marks"`
}

// Key is the answer key entry for a question, joined with the question's
// metadata.
type Key struct {
	Section        string
	QuestionNumber string
	QuestionType   string
	QuestionText   string
	Answer         json.RawMessage // string or list, as stored
	Marks          float64
}

// AnswerText renders the answer for a prompt. Lists are joined one per line.
func (k Key) AnswerText() string {
	var s string
	if err := json.Unmarshal(k.Answer, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(k.Answer, &list); err == nil {
		return strings.Join(list, "\n")
	}
	return string(k.Answer)
}

// Bank downloads the question paper and answer key once and serves lookups
// from memory. A failed download is retried on the next call.
type Bank struct {
	cfg  config.QuestionBankConfig
	http *http.Client
	log  *logger.Logger

	mu        sync.Mutex
	loaded    bool
	rawPaper  json.RawMessage
	questions []Question
	answers   []answerEntry
}

// Option configures a Bank.
type Option func(*Bank)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Bank) { b.http = c }
}

// New creates a Bank for the configured dataset. Nothing is fetched until
// the first call.
func New(cfg config.QuestionBankConfig, log *logger.Logger, opts ...Option) *Bank {
	if log == nil {
		log = logger.Nop()
	}
	b := &Bank{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Questions returns the question paper exactly as stored in the dataset.
func (b *Bank) Questions(ctx context.Context) (json.RawMessage, error) {
	if err := b.load(ctx); err != nil {
		return nil, err
	}
	return b.rawPaper, nil
}

// Lookup finds the answer key for a question. Section matching is
// case-insensitive and both inputs are trimmed.
func (b *Bank) Lookup(ctx context.Context, section, number string) (Key, error) {
	if err := b.load(ctx); err != nil {
		return Key{}, err
	}
	section = strings.ToUpper(strings.TrimSpace(section))
	number = strings.TrimSpace(number)

	var q *Question
	for i := range b.questions {
		if strings.ToUpper(b.questions[i].Section) == section && b.questions[i].QuestionNumber == number {
			q = &b.questions[i]
			break
		}
	}
	if q == nil {
		return Key{}, fmt.Errorf("section %s question %s: %w", section, number, ErrNotFound)
	}

	for _, a := range b.answers {
		if strings.ToUpper(a.Section) == section && a.QuestionNumber == number {
			qtype := q.Type
			if qtype == "" {
				qtype = "unknown"
			}
			return Key{
				Section:        section,
				QuestionNumber: number,
				QuestionType:   qtype,
				QuestionText:   q.text(),
				Answer:         a.Answer,
				Marks:          float64(a.Marks),
			}, nil
		}
	}
	return Key{}, fmt.Errorf("answer for section %s question %s: %w", section, number, ErrNotFound)
}

func (b *Bank) load(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loaded {
		return nil
	}

	paper, err := b.fetch(ctx, b.cfg.QuestionsFile)
	if err != nil {
		return err
	}
	key, err := b.fetch(ctx, b.cfg.AnswerKeyFile)
	if err != nil {
		return err
	}

	var questions []Question
	if err := json.Unmarshal(paper, &questions); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrUnavailable, b.cfg.QuestionsFile, err)
	}
	var answers []answerEntry
	if err := json.Unmarshal(key, &answers); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrUnavailable, b.cfg.AnswerKeyFile, err)
	}

	b.rawPaper = paper
	b.questions = questions
	b.answers = answers
	b.loaded = true
	b.log.Info("question bank loaded", "repo", b.cfg.Repo, "questions", len(questions), "answers", len(answers))
	return nil
}

// fetch downloads one file from the dataset's main revision.
func (b *Bank) fetch(ctx context.Context, file string) ([]byte, error) {
	url := fmt.Sprintf("%s/datasets/%s/resolve/main/%s", strings.TrimRight(b.cfg.Endpoint, "/"), b.cfg.Repo, file)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.Token)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrUnavailable, file, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, file, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetching %s: status %d", ErrUnavailable, file, resp.StatusCode)
	}
	return body, nil
}

// marks accepts a JSON number or a numeric string.
type marks float64

func (m *marks) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*m = marks(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("marks: %w", err)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("marks %q: %w", s, err)
	}
	*m = marks(f)
	return nil
}
