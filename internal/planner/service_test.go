package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/studydesk/internal/llm"
	"github.com/alexanderramin/studydesk/internal/repository"
	"github.com/alexanderramin/studydesk/internal/schedule"
	"github.com/alexanderramin/studydesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dates(w schedule.WeekBlock) []string {
	out := make([]string, len(w.Days))
	for i, d := range w.Days {
		out[i] = d.Date
	}
	return out
}

func TestService_Generate_NormalizesAndSaves(t *testing.T) {
	client := &testutil.StubLLM{Response: testutil.PlannerReply, Tokens: 900}
	store := testutil.NewTestStore(t)
	svc := NewService(client, store, nil)
	ctx := context.Background()

	res, err := svc.Generate(ctx, validRequest())
	require.NoError(t, err)

	require.Len(t, res.Plan.Weeks, 3)
	assert.Equal(t, []string{"2025-04-14", "2025-04-20"}, dates(res.Plan.Weeks[0]))
	assert.Equal(t, []string{"2025-04-21"}, dates(res.Plan.Weeks[1]))
	assert.Equal(t, []string{"2025-05-05"}, dates(res.Plan.Weeks[2]))
	assert.Equal(t, 2, res.Plan.Weeks[2].WeekNumber)
	assert.Equal(t, "llama3-8b-8192", res.Model)
	assert.Equal(t, 900, res.TokensUsed)
	require.NotEmpty(t, res.ID)

	sent := client.LastRequest()
	assert.Equal(t, llm.TaskPlan, sent.Task)
	assert.Empty(t, sent.SystemPrompt)
	assert.Contains(t, sent.UserPrompt, "week_number")

	stored, err := store.Plans().GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.SourceGenerate, stored.Source)
	assert.Equal(t, testutil.PlannerReply, stored.RawResponse)
	assert.Contains(t, string(stored.Request), `"subjects":["Physics","Chemistry"]`)
	assert.Len(t, stored.Weeks, 3)
}

func TestService_Generate_InvalidRequestSkipsModel(t *testing.T) {
	client := &testutil.StubLLM{Response: testutil.PlannerReply}
	svc := NewService(client, nil, nil)

	req := validRequest()
	req.Subjects = nil
	_, err := svc.Generate(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, client.Requests())
}

func TestService_Generate_ProviderError(t *testing.T) {
	svc := NewService(&testutil.StubLLM{Err: llm.ErrTimeout}, nil, nil)

	_, err := svc.Generate(context.Background(), validRequest())

	assert.ErrorIs(t, err, llm.ErrTimeout)
}

func TestService_Generate_GarbageKeepsRaw(t *testing.T) {
	svc := NewService(&testutil.StubLLM{Response: "I cannot help with that."}, nil, nil)

	_, err := svc.Generate(context.Background(), validRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrInvalidOutput)
	raw, ok := llm.RawOutput(err)
	assert.True(t, ok)
	assert.Equal(t, "I cannot help with that.", raw)
}

func TestService_Generate_WrongShapeKeepsRaw(t *testing.T) {
	reply := `{"plan": "study every day"}`
	svc := NewService(&testutil.StubLLM{Response: reply}, nil, nil)

	_, err := svc.Generate(context.Background(), validRequest())

	assert.ErrorIs(t, err, schedule.ErrMalformedDocument)
	raw, ok := llm.RawOutput(err)
	assert.True(t, ok)
	assert.Equal(t, reply, raw)
}

type failingStore struct{}

func (failingStore) SavePlan(context.Context, *repository.StoredPlan) error {
	return errors.New("database is locked")
}

func TestService_Generate_StoreFailureStillReturnsPlan(t *testing.T) {
	svc := NewService(&testutil.StubLLM{Response: testutil.PlannerReply}, failingStore{}, nil)

	res, err := svc.Generate(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Empty(t, res.ID)
	assert.Len(t, res.Plan.Weeks, 3)
}

func TestService_Normalize(t *testing.T) {
	store := testutil.NewTestStore(t)
	client := &testutil.StubLLM{}
	svc := NewService(client, store, nil)
	ctx := context.Background()

	raw := `{"target_date":"2025-06-01","weeks":[{"week_number":0,"days":[{"date":"2025-05-19","tasks":[]},{"date":"2025-05-05","tasks":[]},{"tasks":[]}]}]}`
	res, err := svc.Normalize(ctx, raw)
	require.NoError(t, err)

	require.Len(t, res.Plan.Weeks, 2)
	assert.Equal(t, []string{"2025-05-05"}, dates(res.Plan.Weeks[0]))
	assert.Equal(t, []string{"2025-05-19"}, dates(res.Plan.Weeks[1]))
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, 2, res.Dropped[0].Index)
	assert.Empty(t, client.Requests(), "normalize never calls the model")

	stored, err := store.Plans().GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.SourceNormalize, stored.Source)
	assert.Equal(t, 1, stored.DroppedCount)
	assert.Nil(t, stored.Request)
}

func TestService_Normalize_NoObject(t *testing.T) {
	svc := NewService(&testutil.StubLLM{}, nil, nil)

	_, err := svc.Normalize(context.Background(), "nothing structured")

	var ee *llm.ExtractionError
	assert.True(t, errors.As(err, &ee))
}
