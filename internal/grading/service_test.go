package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alexanderramin/studydesk/internal/llm"
	"github.com/alexanderramin/studydesk/internal/questionbank"
	"github.com/alexanderramin/studydesk/internal/repository"
	"github.com/alexanderramin/studydesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapKeys struct {
	keys map[string]questionbank.Key
	err  error
}

func (m mapKeys) Lookup(_ context.Context, section, number string) (questionbank.Key, error) {
	if m.err != nil {
		return questionbank.Key{}, m.err
	}
	k, ok := m.keys[strings.ToUpper(section)+"/"+number]
	if !ok {
		return questionbank.Key{}, fmt.Errorf("section %s question %s: %w", section, number, questionbank.ErrNotFound)
	}
	return k, nil
}

func physicsKeys() mapKeys {
	return mapKeys{keys: map[string]questionbank.Key{
		"A/1(i)": {
			Section: "A", QuestionNumber: "1(i)", QuestionType: "mcq",
			QuestionText: "Which lever has the load between effort and fulcrum?",
			Answer:       json.RawMessage(`"(b) Class II lever"`), Marks: 1,
		},
		"B/4(ii)": {
			Section: "B", QuestionNumber: "4(ii)", QuestionType: "numerical",
			QuestionText: "Calculate the power of a lens of focal length 25 cm.",
			Answer:       json.RawMessage(`["P = 1/f", "P = +4 D"]`), Marks: 2.5,
		},
	}}
}

const batchReply = "```json\n" + `{
  "evaluations": [
    {"question_number": "1(i)", "section": "A", "question": "Which lever...", "type": "mcq",
     "verdict": "Correct", "marks_awarded": 1, "mistake": [], "correct_answer": "(b) Class II lever", "mistake_type": [], "feedback": "Well done."},
    {"question_number": "4(ii)", "section": "B", "question": "Calculate...", "type": "numerical",
     "verdict": "wrong", "marks_awarded": .5, "mistake": "Sign of power missing", "correct_answer": ["P = +4 D"],
     "mistake_type": "calculation", "feedback": "Always state the sign of lens power."}
  ]
}` + "\n```"

func TestEvaluateUnit(t *testing.T) {
	client := &testutil.StubLLM{Response: "\n📘 AI-Graded Evaluation:\n1. Marks out of 2.5: 2\n"}
	store := testutil.NewTestStore(t)
	svc := NewService(client, physicsKeys(), store, nil)
	ctx := context.Background()

	res, err := svc.EvaluateUnit(ctx, Item{Section: "b", QuestionNumber: "4(ii)", StudentAnswer: "P = 4 D"})
	require.NoError(t, err)
	assert.Equal(t, "📘 AI-Graded Evaluation:\n1. Marks out of 2.5: 2", res.Evaluation)

	sent := client.LastRequest()
	assert.Equal(t, llm.TaskGrade, sent.Task)
	assert.Contains(t, sent.UserPrompt, "Answer Key:\nP = 1/f\nP = +4 D")
	assert.Contains(t, sent.UserPrompt, "Student's Answer: P = 4 D")
	assert.Contains(t, sent.UserPrompt, "The question type is numerical.")
	assert.Contains(t, sent.UserPrompt, "1. Marks out of 2.5: <number>")

	runs, err := store.GradingRuns().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "unit", runs[0].Kind)
	assert.Equal(t, 1, runs[0].ItemCount)
}

func TestEvaluateUnit_UnknownQuestion(t *testing.T) {
	client := &testutil.StubLLM{Response: "x"}
	svc := NewService(client, physicsKeys(), nil, nil)

	_, err := svc.EvaluateUnit(context.Background(), Item{Section: "A", QuestionNumber: "9", StudentAnswer: "x"})

	assert.ErrorIs(t, err, questionbank.ErrNotFound)
	assert.Empty(t, client.Requests())
}

func TestEvaluateUnit_MissingFields(t *testing.T) {
	svc := NewService(&testutil.StubLLM{}, physicsKeys(), nil, nil)

	_, err := svc.EvaluateUnit(context.Background(), Item{StudentAnswer: "x"})

	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestEvaluateBatch(t *testing.T) {
	client := &testutil.StubLLM{Response: batchReply}
	store := testutil.NewTestStore(t)
	svc := NewService(client, physicsKeys(), store, nil)
	ctx := context.Background()

	res, err := svc.EvaluateBatch(ctx, []Item{
		{Section: "A", QuestionNumber: "1(i)", StudentAnswer: "b"},
		{Section: "C", QuestionNumber: "7", StudentAnswer: "no key for this"},
		{Section: "B", QuestionNumber: "4(ii)", StudentAnswer: "4 D"},
	})
	require.NoError(t, err)

	require.Len(t, res.Evaluations, 2)
	assert.Equal(t, "correct", res.Evaluations[0].Verdict)
	assert.Equal(t, 0.5, res.Evaluations[1].MarksAwarded)
	assert.JSONEq(t, `"calculation"`, string(res.Evaluations[1].MistakeType))
	assert.JSONEq(t, `["P = +4 D"]`, string(res.Evaluations[1].CorrectAnswer))

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "7", res.Skipped[0].QuestionNumber)

	prompt := client.LastRequest().UserPrompt
	assert.Equal(t, llm.TaskGradeBatch, client.LastRequest().Task)
	assert.Contains(t, prompt, "Question Number: 1(i) | Section: A")
	assert.Contains(t, prompt, "Question Number: 4(ii) | Section: B")
	assert.NotContains(t, prompt, "no key for this")

	runs, err := store.GradingRuns().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "batch", runs[0].Kind)
	assert.Equal(t, 2, runs[0].ItemCount)
	assert.Equal(t, 1, runs[0].Skipped)
}

func TestEvaluateBatch_AllSkippedNeverCallsModel(t *testing.T) {
	client := &testutil.StubLLM{Response: batchReply}
	svc := NewService(client, physicsKeys(), nil, nil)

	res, err := svc.EvaluateBatch(context.Background(), []Item{{Section: "Z", QuestionNumber: "1"}})

	require.NoError(t, err)
	assert.NotNil(t, res.Evaluations)
	assert.Empty(t, res.Evaluations)
	assert.Len(t, res.Skipped, 1)
	assert.Empty(t, client.Requests())
}

func TestEvaluateBatch_Empty(t *testing.T) {
	svc := NewService(&testutil.StubLLM{}, physicsKeys(), nil, nil)
	_, err := svc.EvaluateBatch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestEvaluateBatch_BankUnavailable(t *testing.T) {
	client := &testutil.StubLLM{Response: batchReply}
	keys := mapKeys{err: fmt.Errorf("downloading answer key: %w", questionbank.ErrUnavailable)}
	svc := NewService(client, keys, nil, nil)

	_, err := svc.EvaluateBatch(context.Background(), []Item{{Section: "A", QuestionNumber: "1(i)"}})

	assert.ErrorIs(t, err, questionbank.ErrUnavailable)
	assert.Empty(t, client.Requests())
}

func TestEvaluateBatch_InvalidOutputKeepsRaw(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"prose", "I graded them all, well done!"},
		{"bad verdict", `{"evaluations":[{"question_number":"1(i)","section":"A","verdict":"partial","marks_awarded":1}]}`},
		{"negative marks", `{"evaluations":[{"question_number":"1(i)","section":"A","verdict":"wrong","marks_awarded":-1}]}`},
		{"no evaluations", `{"evaluations":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&testutil.StubLLM{Response: tt.reply}, physicsKeys(), nil, nil)

			_, err := svc.EvaluateBatch(context.Background(), []Item{{Section: "A", QuestionNumber: "1(i)", StudentAnswer: "b"}})

			require.Error(t, err)
			assert.ErrorIs(t, err, llm.ErrInvalidOutput)
			raw, ok := llm.RawOutput(err)
			require.True(t, ok)
			assert.Equal(t, tt.reply, raw)
		})
	}
}

type failingRecorder struct{ calls int }

func (f *failingRecorder) RecordGradingRun(context.Context, *repository.GradingRun) error {
	f.calls++
	return errors.New("disk full")
}

func TestEvaluateBatch_RecorderFailureIgnored(t *testing.T) {
	rec := &failingRecorder{}
	svc := NewService(&testutil.StubLLM{Response: batchReply}, physicsKeys(), rec, nil)

	res, err := svc.EvaluateBatch(context.Background(), []Item{{Section: "A", QuestionNumber: "1(i)", StudentAnswer: "b"}})

	require.NoError(t, err)
	assert.Len(t, res.Evaluations, 2)
	assert.Equal(t, 1, rec.calls)
}
