// Package watchlist is the terminal fan-in stage: a deterministic check of
// an event's extracted entities and topics against an operator-configured
// watchlist, run after relationship-extract and before the broadcast hook.
//
// spec.md names watchlist-match only as "the terminal step" with no wire
// format of its own, so unlike entity-extract/topic-assign/relationship-extract
// this stage is plain config-driven matching rather than another LLM call —
// there is no schema to validate an LLM response against here.
package watchlist

import (
	"context"
	"fmt"

	"github.com/ai-roundtable/observatory/pkg/config"
)

type eventStore interface {
	EntitySlugsForEvent(ctx context.Context, eventID string) ([]string, error)
	TopicSlugsForEvent(ctx context.Context, eventID string) ([]string, error)
}

// Matcher checks one event's entities/topics against the configured watchlist.
type Matcher struct {
	store    eventStore
	entities map[string]bool
	topics   map[string]bool
}

func NewMatcher(store eventStore, cfg *config.WatchlistConfig) *Matcher {
	entities := make(map[string]bool, len(cfg.EntitySlugs))
	for _, slug := range cfg.EntitySlugs {
		entities[slug] = true
	}
	topics := make(map[string]bool, len(cfg.TopicSlugs))
	for _, slug := range cfg.TopicSlugs {
		topics[slug] = true
	}
	return &Matcher{store: store, entities: entities, topics: topics}
}

// Result reports which watchlist entries, if any, matched the event.
type Result struct {
	Matched     bool
	EntitySlugs []string
	TopicSlugs  []string
}

// Match checks eventID's extracted entities and topics against the
// configured watchlist. An empty watchlist never matches.
func (m *Matcher) Match(ctx context.Context, eventID string) (Result, error) {
	if len(m.entities) == 0 && len(m.topics) == 0 {
		return Result{}, nil
	}

	entitySlugs, err := m.store.EntitySlugsForEvent(ctx, eventID)
	if err != nil {
		return Result{}, fmt.Errorf("watchlist: entity slugs for event: %w", err)
	}
	topicSlugs, err := m.store.TopicSlugsForEvent(ctx, eventID)
	if err != nil {
		return Result{}, fmt.Errorf("watchlist: topic slugs for event: %w", err)
	}

	var result Result
	for _, slug := range entitySlugs {
		if m.entities[slug] {
			result.EntitySlugs = append(result.EntitySlugs, slug)
		}
	}
	for _, slug := range topicSlugs {
		if m.topics[slug] {
			result.TopicSlugs = append(result.TopicSlugs, slug)
		}
	}
	result.Matched = len(result.EntitySlugs) > 0 || len(result.TopicSlugs) > 0
	return result, nil
}
