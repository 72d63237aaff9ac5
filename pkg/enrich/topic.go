package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ai-roundtable/observatory/pkg/artifact"
	"github.com/ai-roundtable/observatory/pkg/models"
)

type topicPayload struct {
	Topics []struct {
		Slug       string  `json:"slug"`
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"topics"`
}

type topicStore interface {
	artifactStore
	UpsertTopic(ctx context.Context, slug, name string) (string, error)
	InsertEventTopic(ctx context.Context, eventID, topicID string, confidence float64) error
}

// TopicAssigner runs the topic-assign stage: classifies an event into 1-5
// canonical topics.
type TopicAssigner struct {
	router    completer
	store     topicStore
	validator *artifact.Validator
}

func NewTopicAssigner(router completer, store topicStore, validator *artifact.Validator) *TopicAssigner {
	return &TopicAssigner{router: router, store: store, validator: validator}
}

func (t *TopicAssigner) Assign(ctx context.Context, evCtx EventContext) error {
	prompt := fmt.Sprintf(
		"Event title: %q\n\nEvidence excerpts:\n%s\n\nAssign 1-5 canonical topics as {\"topics\": [{\"slug\", \"name\", \"confidence\"}]}",
		evCtx.Title, strings.Join(evCtx.Facts, "\n---\n"))

	content, ok := call(ctx, t.router, t.store, t.validator, evCtx.EventID, "topic_assign", artifact.SchemaTopicAssign, prompt)
	if !ok {
		return fmt.Errorf("enrich: topic assign failed for event %s", evCtx.EventID)
	}

	var parsed topicPayload
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return fmt.Errorf("enrich: decode topic assign payload: %w", err)
	}

	for _, item := range parsed.Topics {
		topicID, err := t.store.UpsertTopic(ctx, item.Slug, item.Name)
		if err != nil {
			return fmt.Errorf("enrich: upsert topic %s: %w", item.Slug, err)
		}
		if err := t.store.InsertEventTopic(ctx, evCtx.EventID, topicID, item.Confidence); err != nil {
			return fmt.Errorf("enrich: insert event topic for %s: %w", item.Slug, err)
		}
	}

	version, err := nextVersion(ctx, t.store, evCtx.EventID, models.ArtifactTopicAssign)
	if err != nil {
		return err
	}
	a := &models.Artifact{EventID: evCtx.EventID, Type: models.ArtifactTopicAssign, Payload: []byte(content), Version: version}
	if err := t.store.InsertArtifact(ctx, a); err != nil {
		return fmt.Errorf("enrich: persist topic assign artifact: %w", err)
	}
	return nil
}
