package cluster

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ai-roundtable/observatory/pkg/artifact"
	"github.com/ai-roundtable/observatory/pkg/llm"
	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/stretchr/testify/require"
)

type fakeCandidateStore struct {
	linkedEventID string
	linked        bool
	candidates    []*models.Event
	runs          []*models.LLMRun
}

func (f *fakeCandidateStore) IsSnapshotLinked(ctx context.Context, snapshotID string) (string, bool, error) {
	return f.linkedEventID, f.linked, nil
}

func (f *fakeCandidateStore) CandidatesInWindow(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	return f.candidates, nil
}

func (f *fakeCandidateStore) InsertLLMRun(ctx context.Context, r *models.LLMRun) error {
	f.runs = append(f.runs, r)
	return nil
}

type fakeCompleter struct {
	content string
	err     error
}

func (f *fakeCompleter) Complete(ctx context.Context, processorName string, messages []llm.ChatMessage, jsonMode bool) (*llm.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Result{Provider: "test", Model: "test-model", Content: f.content}, nil
}

func newValidator(t *testing.T) *artifact.Validator {
	t.Helper()
	v, err := artifact.NewValidator()
	require.NoError(t, err)
	return v
}

func TestJudge_Decide_SkipsAlreadyLinkedSnapshot(t *testing.T) {
	store := &fakeCandidateStore{linked: true, linkedEventID: "evt-1"}
	j := NewJudge(store, &fakeCompleter{}, newValidator(t))

	decision, err := j.Decide(context.Background(), Snapshot{ID: "snap-1", Title: "x", PublishedAt: time.Now()})
	require.NoError(t, err)
	require.Equal(t, OutcomeSkipped, decision.Outcome)
	require.Equal(t, "evt-1", decision.MatchedEventID)
}

func TestJudge_Decide_NewWhenNoCandidates(t *testing.T) {
	store := &fakeCandidateStore{}
	j := NewJudge(store, &fakeCompleter{}, newValidator(t))

	decision, err := j.Decide(context.Background(), Snapshot{ID: "snap-1", Title: "OpenAI releases GPT-5", PublishedAt: time.Now()})
	require.NoError(t, err)
	require.Equal(t, OutcomeNew, decision.Outcome)
	require.Empty(t, store.runs, "no LLM call should happen on an early exit")
}

func TestJudge_Decide_MatchesWhenLLMReturnsValidCandidateID(t *testing.T) {
	store := &fakeCandidateStore{
		candidates: []*models.Event{
			{ID: "evt-1", Title: "OpenAI releases GPT-5", SourceCount: 1},
		},
	}
	llmContent := fmt.Sprintf(`{"matchedEventId": %q, "confidence": 0.9, "reason": "same announcement"}`, "evt-1")
	j := NewJudge(store, &fakeCompleter{content: llmContent}, newValidator(t))

	decision, err := j.Decide(context.Background(), Snapshot{ID: "snap-2", Title: "OpenAI launches GPT-5 model", PublishedAt: time.Now()})
	require.NoError(t, err)
	require.Equal(t, OutcomeMatch, decision.Outcome)
	require.Equal(t, "evt-1", decision.MatchedEventID)
	require.Len(t, store.runs, 1)
}

func TestJudge_Decide_DefaultsToNewOnMalformedJSON(t *testing.T) {
	store := &fakeCandidateStore{
		candidates: []*models.Event{
			{ID: "evt-1", Title: "OpenAI releases GPT-5", SourceCount: 1},
		},
	}
	j := NewJudge(store, &fakeCompleter{content: "not json"}, newValidator(t))

	decision, err := j.Decide(context.Background(), Snapshot{ID: "snap-3", Title: "OpenAI launches GPT-5 model", PublishedAt: time.Now()})
	require.NoError(t, err)
	require.Equal(t, OutcomeNew, decision.Outcome)
	require.Len(t, store.runs, 1, "LLMRun must still be recorded on parse failure")
}

func TestJudge_Decide_DefaultsToNewOnIDNotInCandidateList(t *testing.T) {
	store := &fakeCandidateStore{
		candidates: []*models.Event{
			{ID: "evt-1", Title: "OpenAI releases GPT-5", SourceCount: 1},
		},
	}
	llmContent := `{"matchedEventId": "evt-unknown", "confidence": 0.9, "reason": "x"}`
	j := NewJudge(store, &fakeCompleter{content: llmContent}, newValidator(t))

	decision, err := j.Decide(context.Background(), Snapshot{ID: "snap-4", Title: "OpenAI launches GPT-5 model", PublishedAt: time.Now()})
	require.NoError(t, err)
	require.Equal(t, OutcomeNew, decision.Outcome)
}

func TestJudge_Decide_DefaultsToNewOnLLMError(t *testing.T) {
	store := &fakeCandidateStore{
		candidates: []*models.Event{
			{ID: "evt-1", Title: "OpenAI releases GPT-5", SourceCount: 1},
		},
	}
	j := NewJudge(store, &fakeCompleter{err: fmt.Errorf("network down")}, newValidator(t))

	decision, err := j.Decide(context.Background(), Snapshot{ID: "snap-5", Title: "OpenAI launches GPT-5 model", PublishedAt: time.Now()})
	require.NoError(t, err)
	require.Equal(t, OutcomeNew, decision.Outcome)
	require.Len(t, store.runs, 1, "LLMRun must still be recorded on network failure")
}
