package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ai-roundtable/observatory/pkg/artifact"
	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/ai-roundtable/observatory/pkg/safety"
)

type relationshipPayload struct {
	Relationships []struct {
		Type             string  `json:"type"`
		SourceEntitySlug string  `json:"sourceEntitySlug"`
		TargetEntitySlug string  `json:"targetEntitySlug"`
		Confidence       float64 `json:"confidence"`
	} `json:"relationships"`
}

type relationshipStore interface {
	artifactStore
	GetEntityBySlug(ctx context.Context, slug string) (*models.Entity, bool, error)
	InsertRelationship(ctx context.Context, r *models.Relationship) error
	TrustProfileForEvent(ctx context.Context, eventID string) (models.TrustProfile, error)
}

// RelationshipExtractor runs the relationship-extract stage: proposes
// entity-to-entity relationships and runs each through the safety gate
// before persisting.
type RelationshipExtractor struct {
	router    completer
	store     relationshipStore
	validator *artifact.Validator
}

func NewRelationshipExtractor(router completer, store relationshipStore, validator *artifact.Validator) *RelationshipExtractor {
	return &RelationshipExtractor{router: router, store: store, validator: validator}
}

func (r *RelationshipExtractor) Extract(ctx context.Context, evCtx EventContext) error {
	prompt := fmt.Sprintf(
		"Event title: %q\n\nEvidence excerpts:\n%s\n\nPropose up to 10 relationships between entities already mentioned, as {\"relationships\": [{\"type\", \"sourceEntitySlug\", \"targetEntitySlug\", \"confidence\"}]}",
		evCtx.Title, strings.Join(evCtx.Facts, "\n---\n"))

	content, ok := call(ctx, r.router, r.store, r.validator, evCtx.EventID, "relationship_extract", artifact.SchemaRelationshipExtract, prompt)
	if !ok {
		return fmt.Errorf("enrich: relationship extract failed for event %s", evCtx.EventID)
	}

	var parsed relationshipPayload
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return fmt.Errorf("enrich: decode relationship extract payload: %w", err)
	}

	profile, err := r.store.TrustProfileForEvent(ctx, evCtx.EventID)
	if err != nil {
		return fmt.Errorf("enrich: trust profile: %w", err)
	}

	for _, item := range parsed.Relationships {
		source, found, err := r.store.GetEntityBySlug(ctx, item.SourceEntitySlug)
		if err != nil {
			return fmt.Errorf("enrich: resolve source entity %s: %w", item.SourceEntitySlug, err)
		}
		if !found {
			slog.Warn("enrich: relationship references unknown source entity, skipping", "event_id", evCtx.EventID, "slug", item.SourceEntitySlug)
			continue
		}
		target, found, err := r.store.GetEntityBySlug(ctx, item.TargetEntitySlug)
		if err != nil {
			return fmt.Errorf("enrich: resolve target entity %s: %w", item.TargetEntitySlug, err)
		}
		if !found {
			slog.Warn("enrich: relationship references unknown target entity, skipping", "event_id", evCtx.EventID, "slug", item.TargetEntitySlug)
			continue
		}

		relType := models.RelationshipType(item.Type)
		decision := safety.Admit(safety.Proposal{
			Type:            relType,
			SourceEntityID:  source.ID,
			TargetEntityID:  target.ID,
			EventID:         evCtx.EventID,
			EvidenceTier:    profile,
			ModelConfidence: item.Confidence,
		})

		rel := &models.Relationship{
			Type:            relType,
			SourceEntityID:  source.ID,
			TargetEntityID:  target.ID,
			EventID:         evCtx.EventID,
			Status:          decision.Status,
			ModelConfidence: item.Confidence,
		}
		if err := r.store.InsertRelationship(ctx, rel); err != nil {
			return fmt.Errorf("enrich: insert relationship: %w", err)
		}
	}

	version, err := nextVersion(ctx, r.store, evCtx.EventID, models.ArtifactRelationshipExtract)
	if err != nil {
		return err
	}
	a := &models.Artifact{EventID: evCtx.EventID, Type: models.ArtifactRelationshipExtract, Payload: []byte(content), Version: version}
	if err := r.store.InsertArtifact(ctx, a); err != nil {
		return fmt.Errorf("enrich: persist relationship extract artifact: %w", err)
	}
	return nil
}
