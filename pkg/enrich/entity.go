package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ai-roundtable/observatory/pkg/artifact"
	"github.com/ai-roundtable/observatory/pkg/models"
)

type entityPayload struct {
	Entities []struct {
		Slug       string  `json:"slug"`
		Name       string  `json:"name"`
		Type       string  `json:"type"`
		Role       string  `json:"role"`
		Confidence float64 `json:"confidence"`
	} `json:"entities"`
}

type entityStore interface {
	artifactStore
	UpsertEntity(ctx context.Context, slug, name string, nameHr *string, t models.EntityType, aliases []string) (*models.Entity, error)
	InsertMention(ctx context.Context, eventID, entityID string, role models.MentionRole, confidence float64) error
}

// EntityExtractor runs the entity-extract stage: parses named entities out
// of an event's evidence and links them as Mentions.
type EntityExtractor struct {
	router    completer
	store     entityStore
	validator *artifact.Validator
}

func NewEntityExtractor(router completer, store entityStore, validator *artifact.Validator) *EntityExtractor {
	return &EntityExtractor{router: router, store: store, validator: validator}
}

func (e *EntityExtractor) Extract(ctx context.Context, evCtx EventContext) error {
	prompt := fmt.Sprintf(
		"Event title: %q\n\nEvidence excerpts:\n%s\n\nExtract up to 20 named entities (companies, labs, models, products, people, regulations, datasets, benchmarks) as {\"entities\": [{\"slug\", \"name\", \"type\", \"role\", \"confidence\"}]}",
		evCtx.Title, strings.Join(evCtx.Facts, "\n---\n"))

	content, ok := call(ctx, e.router, e.store, e.validator, evCtx.EventID, "entity_extract", artifact.SchemaEntityExtract, prompt)
	if !ok {
		return fmt.Errorf("enrich: entity extract failed for event %s", evCtx.EventID)
	}

	var parsed entityPayload
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return fmt.Errorf("enrich: decode entity extract payload: %w", err)
	}

	for _, item := range parsed.Entities {
		entity, err := e.store.UpsertEntity(ctx, item.Slug, item.Name, nil, models.EntityType(item.Type), nil)
		if err != nil {
			return fmt.Errorf("enrich: upsert entity %s: %w", item.Slug, err)
		}
		if err := e.store.InsertMention(ctx, evCtx.EventID, entity.ID, models.MentionRole(item.Role), item.Confidence); err != nil {
			return fmt.Errorf("enrich: insert mention for %s: %w", item.Slug, err)
		}
	}

	version, err := nextVersion(ctx, e.store, evCtx.EventID, models.ArtifactEntityExtract)
	if err != nil {
		return err
	}
	a := &models.Artifact{EventID: evCtx.EventID, Type: models.ArtifactEntityExtract, Payload: []byte(content), Version: version}
	if err := e.store.InsertArtifact(ctx, a); err != nil {
		return fmt.Errorf("enrich: persist entity extract artifact: %w", err)
	}
	return nil
}
