// Package enrich issues the LLM calls that turn a materialized event into
// its artifacts (headline, summary, entities, topics, relationships) and
// coordinates the fan-out/fan-in between the entity and topic stages.
package enrich

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/ai-roundtable/observatory/pkg/artifact"
	"github.com/ai-roundtable/observatory/pkg/llm"
	"github.com/ai-roundtable/observatory/pkg/models"
)

// EventContext is what an enrichment stage needs to know about the event it
// is processing, assembled by the caller from pkg/store.
type EventContext struct {
	EventID string
	Title   string
	Facts   []string // full text from each linked evidence snapshot
}

// completer is the subset of *llm.Router every stage calls through.
type completer interface {
	Complete(ctx context.Context, processorName string, messages []llm.ChatMessage, jsonMode bool) (*llm.Result, error)
}

type artifactStore interface {
	LatestArtifactVersion(ctx context.Context, eventID string, t models.ArtifactType) (int, error)
	InsertArtifact(ctx context.Context, a *models.Artifact) error
	GetLatestArtifact(ctx context.Context, eventID string, t models.ArtifactType) (*models.Artifact, error)
	HasRequiredArtifacts(ctx context.Context, eventID string) (bool, error)
	InsertLLMRun(ctx context.Context, r *models.LLMRun) error
}

// call runs one LLM exchange, records its LLMRun row, validates the
// response against schemaName, and reports whether it can be trusted.
// Callers persist only on ok == true.
func call(ctx context.Context, router completer, store artifactStore, validator *artifact.Validator, eventID, processorName, schemaName, prompt string) (content string, ok bool) {
	messages := []llm.ChatMessage{
		{Role: "system", Content: "Respond with strict JSON only, matching the requested shape exactly."},
		{Role: "user", Content: prompt},
	}
	promptHash := hashPrefix(prompt)
	inputHash := hashPrefix(eventID + "|" + processorName)

	result, err := router.Complete(ctx, processorName, messages, true)

	run := &models.LLMRun{ProcessorName: processorName, EventID: &eventID, PromptHash: promptHash, InputHash: inputHash}
	if result != nil {
		run.Provider = result.Provider
		run.Model = result.Model
		run.PromptTokens = result.Usage.PromptTokens
		run.OutputTokens = result.Usage.CompletionTokens
		run.LatencyMS = result.LatencyMS
		content = result.Content
	}
	if insertErr := store.InsertLLMRun(ctx, run); insertErr != nil {
		slog.Error("enrich: failed to record llm run", "processor", processorName, "event_id", eventID, "error", insertErr)
	}
	if err != nil {
		slog.Warn("enrich: llm call failed", "processor", processorName, "event_id", eventID, "error", err)
		return "", false
	}

	if _, valErr := validator.ValidateJSON(schemaName, []byte(content)); valErr != nil {
		slog.Warn("enrich: llm response failed schema validation", "processor", processorName, "event_id", eventID, "error", valErr)
		return "", false
	}
	return content, true
}

func hashPrefix(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:32]
}

func nextVersion(ctx context.Context, store artifactStore, eventID string, t models.ArtifactType) (int, error) {
	v, err := store.LatestArtifactVersion(ctx, eventID, t)
	if err != nil {
		return 0, fmt.Errorf("enrich: latest version: %w", err)
	}
	return v + 1, nil
}
