package enrich

import (
	"context"
	"fmt"
	"testing"

	"github.com/ai-roundtable/observatory/pkg/artifact"
	"github.com/ai-roundtable/observatory/pkg/llm"
	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/stretchr/testify/require"
)

type fakeArtifactStore struct {
	versions  map[string]int
	artifacts []*models.Artifact
	runs      []*models.LLMRun
	required  bool
}

func newFakeArtifactStore() *fakeArtifactStore {
	return &fakeArtifactStore{versions: map[string]int{}}
}

func key(eventID string, t models.ArtifactType) string { return eventID + "|" + string(t) }

func (f *fakeArtifactStore) LatestArtifactVersion(ctx context.Context, eventID string, t models.ArtifactType) (int, error) {
	return f.versions[key(eventID, t)], nil
}

func (f *fakeArtifactStore) InsertArtifact(ctx context.Context, a *models.Artifact) error {
	f.versions[key(a.EventID, a.Type)] = a.Version
	f.artifacts = append(f.artifacts, a)
	return nil
}

func (f *fakeArtifactStore) GetLatestArtifact(ctx context.Context, eventID string, t models.ArtifactType) (*models.Artifact, error) {
	for i := len(f.artifacts) - 1; i >= 0; i-- {
		if f.artifacts[i].EventID == eventID && f.artifacts[i].Type == t {
			return f.artifacts[i], nil
		}
	}
	return nil, nil
}

func (f *fakeArtifactStore) HasRequiredArtifacts(ctx context.Context, eventID string) (bool, error) {
	if f.required {
		return true, nil
	}
	for _, t := range models.RequiredArtifacts {
		if f.versions[key(eventID, t)] == 0 {
			return false, nil
		}
	}
	return true, nil
}

func (f *fakeArtifactStore) InsertLLMRun(ctx context.Context, r *models.LLMRun) error {
	f.runs = append(f.runs, r)
	return nil
}

type scriptedCompleter struct {
	responses map[string]string // processor name -> content
	err       error
}

func (s *scriptedCompleter) Complete(ctx context.Context, processorName string, messages []llm.ChatMessage, jsonMode bool) (*llm.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	content, ok := s.responses[processorName]
	if !ok {
		return nil, fmt.Errorf("scriptedCompleter: no response scripted for %s", processorName)
	}
	return &llm.Result{Provider: "test", Model: "test-model", Content: content}, nil
}

func newValidator(t *testing.T) *artifact.Validator {
	t.Helper()
	v, err := artifact.NewValidator()
	require.NoError(t, err)
	return v
}

func TestOrchestrator_SkipsWhenAllArtifactsAlreadyExist(t *testing.T) {
	store := newFakeArtifactStore()
	store.required = true
	o := NewOrchestrator(&scriptedCompleter{}, store, newValidator(t))

	err := o.Enrich(context.Background(), EventContext{EventID: "evt-1", Title: "t", Facts: []string{"f"}})
	require.NoError(t, err)
	require.Empty(t, store.runs, "no LLM call should happen when artifacts already satisfy the gate")
}

func TestOrchestrator_PersistsAllFourRequiredArtifacts(t *testing.T) {
	store := newFakeArtifactStore()
	completer := &scriptedCompleter{responses: map[string]string{
		"enrich_headline":      `{"text": "OpenAI releases GPT-5"}`,
		"enrich_what_happened": `{"facts": ["OpenAI announced GPT-5 today."]}`,
		"enrich_summary":       `{"text": "OpenAI released its newest flagship model."}`,
		"enrich_why_matters":   `{"text": "This raises the bar for frontier model capability."}`,
		"enrich_gm_take":       `{"text": "This is the clearest signal yet that the frontier race is accelerating."}`,
	}}
	o := NewOrchestrator(completer, store, newValidator(t))

	err := o.Enrich(context.Background(), EventContext{EventID: "evt-1", Title: "OpenAI releases GPT-5", Facts: []string{"fact one"}})
	require.NoError(t, err)
	require.Len(t, store.artifacts, 5)
	require.Len(t, store.runs, 5)
	for _, rt := range models.RequiredArtifacts {
		require.Equal(t, 1, store.versions[key("evt-1", rt)])
	}
	require.Equal(t, 1, store.versions[key("evt-1", models.ArtifactGMTake)])
}

func TestOrchestrator_OptionalStageFailureDoesNotFailEnrich(t *testing.T) {
	store := newFakeArtifactStore()
	completer := &scriptedCompleter{responses: map[string]string{
		"enrich_headline":      `{"text": "OpenAI releases GPT-5"}`,
		"enrich_what_happened": `{"facts": ["OpenAI announced GPT-5 today."]}`,
		"enrich_summary":       `{"text": "OpenAI released its newest flagship model."}`,
		"enrich_why_matters":   `{"text": "This raises the bar for frontier model capability."}`,
		// enrich_gm_take intentionally unscripted: scriptedCompleter errors on it.
	}}
	o := NewOrchestrator(completer, store, newValidator(t))

	err := o.Enrich(context.Background(), EventContext{EventID: "evt-1", Title: "OpenAI releases GPT-5", Facts: []string{"fact one"}})
	require.NoError(t, err)
	require.Len(t, store.artifacts, 4, "a failed optional stage must not be persisted")
	for _, rt := range models.RequiredArtifacts {
		require.Equal(t, 1, store.versions[key("evt-1", rt)])
	}
	require.Equal(t, 0, store.versions[key("evt-1", models.ArtifactGMTake)])
}

func TestOrchestrator_FailsStageOnSchemaViolation(t *testing.T) {
	store := newFakeArtifactStore()
	completer := &scriptedCompleter{responses: map[string]string{
		"enrich_headline": `{"text": ""}`, // violates minLength:1
	}}
	o := NewOrchestrator(completer, store, newValidator(t))

	err := o.Enrich(context.Background(), EventContext{EventID: "evt-1", Title: "t", Facts: []string{"f"}})
	require.Error(t, err)
	require.Empty(t, store.artifacts)
	require.Len(t, store.runs, 1, "the LLMRun row is still recorded even though validation failed")
}
