// Package briefing assembles and validates the daily multi-persona
// roundtable briefing.
package briefing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ai-roundtable/observatory/pkg/artifact"
	"github.com/ai-roundtable/observatory/pkg/llm"
	"github.com/ai-roundtable/observatory/pkg/models"
)

// defaultTopN is the number of top events a daily briefing covers.
const defaultTopN = 5

type completer interface {
	Complete(ctx context.Context, processorName string, messages []llm.ChatMessage, jsonMode bool) (*llm.Result, error)
}

type briefingStore interface {
	TopEventsForDay(ctx context.Context, day time.Time, n int) ([]*models.Event, error)
	UpsertDailyBriefing(ctx context.Context, date string, payload json.RawMessage, topEventIDs []string) error
	InsertLLMRun(ctx context.Context, r *models.LLMRun) error
}

// Generator builds the roundtable prompt, validates the result against the
// full schema, falls back to a legacy single-turn prompt on failure, and
// persists whichever succeeds.
type Generator struct {
	router    completer
	store     briefingStore
	validator *artifact.Validator
	topN      int
}

func NewGenerator(router completer, store briefingStore, validator *artifact.Validator) *Generator {
	return &Generator{router: router, store: store, validator: validator, topN: defaultTopN}
}

// Run selects day's top events, attempts the roundtable prompt, and falls
// back to the legacy single-turn prompt on validation failure. If both
// fail, it persists nothing and logs.
func (g *Generator) Run(ctx context.Context, day time.Time) error {
	events, err := g.store.TopEventsForDay(ctx, day, g.topN)
	if err != nil {
		return fmt.Errorf("briefing: select top events: %w", err)
	}
	if len(events) == 0 {
		slog.Info("briefing: no published events for day, skipping", "date", day.Format("2006-01-02"))
		return nil
	}

	descriptors := describeEvents(events)
	topEventIDs := make([]string, len(events))
	for i, ev := range events {
		topEventIDs[i] = ev.ID
	}

	if content, ok := g.tryStage(ctx, "briefing_roundtable", artifact.SchemaBriefing, buildRoundtablePrompt(descriptors)); ok {
		if err := g.persist(ctx, day, content, topEventIDs); err == nil {
			return nil
		} else {
			slog.Warn("briefing: roundtable generation validated but failed structural checks", "error", err)
		}
	}

	slog.Warn("briefing: roundtable generation failed, falling back to legacy single-turn prompt", "date", day.Format("2006-01-02"))

	if content, ok := g.tryStage(ctx, "briefing_legacy", artifact.SchemaBriefingLegacy, buildLegacyPrompt(descriptors)); ok {
		return g.persistLegacy(ctx, day, content, topEventIDs)
	}

	slog.Error("briefing: both roundtable and legacy generation failed, no briefing persisted", "date", day.Format("2006-01-02"))
	return nil
}

type eventDescriptor struct {
	Ref   int
	Title string
}

func describeEvents(events []*models.Event) []eventDescriptor {
	descriptors := make([]eventDescriptor, len(events))
	for i, ev := range events {
		descriptors[i] = eventDescriptor{Ref: i + 1, Title: ev.Title}
	}
	return descriptors
}

func (g *Generator) tryStage(ctx context.Context, processorName, schemaName, prompt string) (string, bool) {
	messages := []llm.ChatMessage{
		{Role: "system", Content: "You write a multi-persona roundtable briefing. Respond with strict JSON only."},
		{Role: "user", Content: prompt},
	}

	result, err := g.router.Complete(ctx, processorName, messages, true)

	run := &models.LLMRun{ProcessorName: processorName}
	if result != nil {
		run.Provider = result.Provider
		run.Model = result.Model
		run.PromptTokens = result.Usage.PromptTokens
		run.OutputTokens = result.Usage.CompletionTokens
		run.LatencyMS = result.LatencyMS
	}
	if insertErr := g.store.InsertLLMRun(ctx, run); insertErr != nil {
		slog.Error("briefing: failed to record llm run", "processor", processorName, "error", insertErr)
	}
	if err != nil {
		slog.Warn("briefing: llm call failed", "processor", processorName, "error", err)
		return "", false
	}

	if _, valErr := g.validator.ValidateJSON(schemaName, []byte(result.Content)); valErr != nil {
		slog.Warn("briefing: llm response failed schema validation", "processor", processorName, "error", valErr)
		return "", false
	}
	return result.Content, true
}

func (g *Generator) persist(ctx context.Context, day time.Time, content string, topEventIDs []string) error {
	var payload models.RoundtablePayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return fmt.Errorf("briefing: decode roundtable payload: %w", err)
	}
	if err := artifact.ValidateRoundtableStructure(payload, len(topEventIDs)); err != nil {
		return err
	}
	return g.store.UpsertDailyBriefing(ctx, day.Format("2006-01-02"), json.RawMessage(content), topEventIDs)
}

func (g *Generator) persistLegacy(ctx context.Context, day time.Time, content string, topEventIDs []string) error {
	return g.store.UpsertDailyBriefing(ctx, day.Format("2006-01-02"), json.RawMessage(content), topEventIDs)
}

func buildRoundtablePrompt(descriptors []eventDescriptor) string {
	prompt := "Today's top events:\n"
	for _, d := range descriptors {
		prompt += fmt.Sprintf("%d. %s\n", d.Ref, d.Title)
	}
	prompt += `
Write a roundtable briefing with three personas (GM, Engineer, Skeptic) and seven possible move
types (SETUP, TECH_READ, RISK_CHECK, CROSS_EXAM, EVIDENCE_CALL, TAKEAWAY, CUT). The dialogue MUST
start with a GM/SETUP turn, end with a GM/TAKEAWAY turn, contain 4-20 turns total, include at
least one Engineer/TECH_READ turn and at least one Skeptic/RISK_CHECK turn, and every turn's
eventRef must point at one of the numbered events above. Respond as JSON:
{"turns": [{"persona", "move", "text", "eventRef"}], "prediction": "<=500 chars"}`
	return prompt
}

func buildLegacyPrompt(descriptors []eventDescriptor) string {
	prompt := "Today's top events:\n"
	for _, d := range descriptors {
		prompt += fmt.Sprintf("%d. %s\n", d.Ref, d.Title)
	}
	prompt += `
Write a single GM/SETUP monologue covering all the events above. Respond as JSON:
{"turns": [{"persona": "GM", "move": "SETUP", "text", "eventRef"}], "prediction": "<=500 chars"}`
	return prompt
}
