package cluster

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ai-roundtable/observatory/pkg/artifact"
	"github.com/ai-roundtable/observatory/pkg/llm"
	"github.com/ai-roundtable/observatory/pkg/models"
)

const (
	similarityFloor = 0.15
	candidateTopN   = 10
	candidateWindow = 72 * time.Hour
	processorName   = "cluster_judge"
)

// Decision is the cluster judge's verdict for one snapshot.
type Decision struct {
	Outcome        Outcome
	MatchedEventID string // set when Outcome is Match, or Skipped (the event the snapshot is already linked to)
}

type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomeMatch   Outcome = "match"
	OutcomeNew     Outcome = "new"
)

// Snapshot is the subset of an evidence snapshot the judge reasons over.
type Snapshot struct {
	ID          string
	Title       string
	PublishedAt time.Time
}

type candidateStore interface {
	IsSnapshotLinked(ctx context.Context, snapshotID string) (eventID string, linked bool, err error)
	CandidatesInWindow(ctx context.Context, from, to time.Time) ([]*models.Event, error)
	InsertLLMRun(ctx context.Context, r *models.LLMRun) error
}

// completer is the subset of *llm.Router the judge calls through, narrowed
// so tests can substitute a fake instead of a live provider.
type completer interface {
	Complete(ctx context.Context, processorName string, messages []llm.ChatMessage, jsonMode bool) (*llm.Result, error)
}

// Judge decides whether a snapshot matches an existing event.
type Judge struct {
	store     candidateStore
	router    completer
	validator *artifact.Validator
}

func NewJudge(store candidateStore, router completer, validator *artifact.Validator) *Judge {
	return &Judge{store: store, router: router, validator: validator}
}

type judgeCandidate struct {
	event      *models.Event
	similarity float64
}

type judgeResponse struct {
	MatchedEventID *string `json:"matchedEventId"`
	Confidence     float64 `json:"confidence"`
	Reason         string  `json:"reason"`
}

// Decide runs the full 6-step algorithm. Any network or parse failure
// defaults to OutcomeNew rather than propagating an error — the judge never
// blocks materialization, it only ever biases toward creating a new event.
func (j *Judge) Decide(ctx context.Context, snap Snapshot) (Decision, error) {
	if eventID, linked, err := j.store.IsSnapshotLinked(ctx, snap.ID); err != nil {
		return Decision{}, fmt.Errorf("cluster: idempotency check: %w", err)
	} else if linked {
		return Decision{Outcome: OutcomeSkipped, MatchedEventID: eventID}, nil
	}

	events, err := j.store.CandidatesInWindow(ctx, snap.PublishedAt.Add(-candidateWindow), snap.PublishedAt.Add(candidateWindow))
	if err != nil {
		return Decision{}, fmt.Errorf("cluster: candidate window: %w", err)
	}

	candidates := prefilter(snap.Title, events)
	if len(candidates) == 0 {
		return Decision{Outcome: OutcomeNew}, nil
	}

	return j.askLLM(ctx, snap, candidates)
}

func prefilter(title string, events []*models.Event) []judgeCandidate {
	var candidates []judgeCandidate
	for _, ev := range events {
		sim := Similarity(title, ev.Title)
		if sim >= similarityFloor {
			candidates = append(candidates, judgeCandidate{event: ev, similarity: sim})
		}
	}
	sort.Slice(candidates, func(i, k int) bool { return candidates[i].similarity > candidates[k].similarity })
	if len(candidates) > candidateTopN {
		candidates = candidates[:candidateTopN]
	}
	return candidates
}

func (j *Judge) askLLM(ctx context.Context, snap Snapshot, candidates []judgeCandidate) (Decision, error) {
	prompt := buildPrompt(snap.Title, candidates)
	messages := []llm.ChatMessage{
		{Role: "system", Content: "You match a news snippet to an existing tracked event or decide it is new. Respond with strict JSON only."},
		{Role: "user", Content: prompt},
	}

	promptHash := hashPrefix(prompt)
	inputHash := hashPrefix(snap.ID + "|" + snap.Title)

	result, err := j.router.Complete(ctx, processorName, messages, true)
	decision := Decision{Outcome: OutcomeNew}
	validIDs := candidateIDs(candidates)

	if err == nil {
		var parsed judgeResponse
		if err := json.Unmarshal([]byte(result.Content), &parsed); err == nil {
			if _, valErr := j.validator.ValidateJSON(artifact.SchemaClusterJudge, []byte(result.Content)); valErr == nil {
				if parsed.MatchedEventID != nil && validIDs[*parsed.MatchedEventID] {
					decision = Decision{Outcome: OutcomeMatch, MatchedEventID: *parsed.MatchedEventID}
				}
				slog.Info("cluster: judge decision", "snapshot_id", snap.ID, "decision", decision.Outcome, "confidence", parsed.Confidence, "reason", parsed.Reason)
			} else {
				slog.Warn("cluster: judge response failed schema validation, defaulting to new", "snapshot_id", snap.ID, "error", valErr)
			}
		} else {
			slog.Warn("cluster: judge response was not valid json, defaulting to new", "snapshot_id", snap.ID, "error", err)
		}
	} else {
		slog.Warn("cluster: judge llm call failed, defaulting to new", "snapshot_id", snap.ID, "error", err)
	}

	run := &models.LLMRun{
		ProcessorName: processorName,
		PromptHash:    promptHash,
		InputHash:     inputHash,
	}
	if result != nil {
		run.Provider = result.Provider
		run.Model = result.Model
		run.PromptTokens = result.Usage.PromptTokens
		run.OutputTokens = result.Usage.CompletionTokens
		run.LatencyMS = result.LatencyMS
	}
	if insertErr := j.store.InsertLLMRun(ctx, run); insertErr != nil {
		slog.Error("cluster: failed to record llm run", "error", insertErr)
	}

	return decision, nil
}

func buildPrompt(title string, candidates []judgeCandidate) string {
	prompt := fmt.Sprintf("Incoming title: %q\n\nCandidate events:\n", title)
	for _, c := range candidates {
		prompt += fmt.Sprintf("- id=%s title=%q sourceCount=%d\n", c.event.ID, c.event.Title, c.event.SourceCount)
	}
	prompt += "\nRespond with JSON: {\"matchedEventId\": string|null, \"confidence\": 0..1, \"reason\": \"<=200 chars\"}"
	return prompt
}

func candidateIDs(candidates []judgeCandidate) map[string]bool {
	ids := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		ids[c.event.ID] = true
	}
	return ids
}

func hashPrefix(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:32]
}
