package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ai-roundtable/observatory/pkg/artifact"
	"github.com/ai-roundtable/observatory/pkg/models"
)

// requiredStages pairs each required artifact type with its schema and
// processor name.
var requiredStages = []struct {
	artifactType models.ArtifactType
	schema       string
	processor    string
	promptVerb   string
}{
	{models.ArtifactHeadline, artifact.SchemaHeadline, "enrich_headline", "a single headline, at most 120 characters, as {\"text\": \"...\"}"},
	{models.ArtifactWhatHappened, artifact.SchemaWhatHappened, "enrich_what_happened", "1-10 short factual bullet points as {\"facts\": [\"...\"]}"},
	{models.ArtifactSummary, artifact.SchemaSummary, "enrich_summary", "a neutral summary up to 1000 characters as {\"text\": \"...\"}"},
	{models.ArtifactWhyMatters, artifact.SchemaWhyMatters, "enrich_why_matters", "an analysis of why this matters, up to 600 characters, as {\"text\": \"...\"}"},
}

// optionalStages run after the required set, once ENRICHED is reachable.
// A failure here is logged and skipped, not reported to the caller — none
// of these gate the event's status transition.
var optionalStages = []struct {
	artifactType models.ArtifactType
	schema       string
	processor    string
	promptVerb   string
}{
	{models.ArtifactGMTake, artifact.SchemaGMTake, "enrich_gm_take", "a single opinionated analyst take on this event, up to 600 characters, as {\"text\": \"...\"}"},
}

// Orchestrator issues the four required-artifact LLM calls for an event.
type Orchestrator struct {
	router    completer
	store     artifactStore
	validator *artifact.Validator
}

func NewOrchestrator(router completer, store artifactStore, validator *artifact.Validator) *Orchestrator {
	return &Orchestrator{router: router, store: store, validator: validator}
}

// Enrich skips entirely if every required artifact type already exists for
// the event, in any version; no contract-version check is made. Otherwise it
// issues one LLM call for every required artifact type, including those that
// already exist, persisting each at version = max(existing)+1. A stage
// failure is reported to the caller, which is responsible for transitioning
// the event to QUARANTINED — Enrich itself never mutates event status.
func (o *Orchestrator) Enrich(ctx context.Context, evCtx EventContext) error {
	complete, err := o.store.HasRequiredArtifacts(ctx, evCtx.EventID)
	if err != nil {
		return fmt.Errorf("enrich: check required artifacts: %w", err)
	}
	if complete {
		return nil
	}

	facts := strings.Join(evCtx.Facts, "\n---\n")

	for _, stage := range requiredStages {
		prompt := fmt.Sprintf("Event title: %q\n\nEvidence excerpts:\n%s\n\nProduce %s", evCtx.Title, facts, stage.promptVerb)

		content, ok := call(ctx, o.router, o.store, o.validator, evCtx.EventID, stage.processor, stage.schema, prompt)
		if !ok {
			return fmt.Errorf("enrich: stage %s failed for event %s", stage.processor, evCtx.EventID)
		}

		version, err := nextVersion(ctx, o.store, evCtx.EventID, stage.artifactType)
		if err != nil {
			return err
		}
		a := &models.Artifact{EventID: evCtx.EventID, Type: stage.artifactType, Payload: []byte(content), Version: version}
		if err := o.store.InsertArtifact(ctx, a); err != nil {
			return fmt.Errorf("enrich: persist artifact %s: %w", stage.artifactType, err)
		}
	}

	o.enrichOptional(ctx, evCtx, facts)

	return nil
}

// enrichOptional issues the non-required artifact stages. These never block
// or fail Enrich — a missing GM_TAKE is not reason to quarantine an event
// that otherwise has everything it needs to be ENRICHED.
func (o *Orchestrator) enrichOptional(ctx context.Context, evCtx EventContext, facts string) {
	for _, stage := range optionalStages {
		prompt := fmt.Sprintf("Event title: %q\n\nEvidence excerpts:\n%s\n\nProduce %s", evCtx.Title, facts, stage.promptVerb)

		content, ok := call(ctx, o.router, o.store, o.validator, evCtx.EventID, stage.processor, stage.schema, prompt)
		if !ok {
			slog.Warn("enrich: optional stage failed, skipping", "stage", stage.processor, "event_id", evCtx.EventID)
			continue
		}

		version, err := nextVersion(ctx, o.store, evCtx.EventID, stage.artifactType)
		if err != nil {
			slog.Warn("enrich: optional stage version lookup failed, skipping", "stage", stage.processor, "event_id", evCtx.EventID, "error", err)
			continue
		}
		a := &models.Artifact{EventID: evCtx.EventID, Type: stage.artifactType, Payload: []byte(content), Version: version}
		if err := o.store.InsertArtifact(ctx, a); err != nil {
			slog.Warn("enrich: optional stage persist failed", "stage", stage.processor, "event_id", evCtx.EventID, "error", err)
		}
	}
}
