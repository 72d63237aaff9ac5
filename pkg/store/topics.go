package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UpsertTopic inserts or returns the existing topic for slug, returning its id.
func (s *Store) UpsertTopic(ctx context.Context, slug, name string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO topics (id, slug, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id`, uuid.NewString(), slug, name).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("store: upsert topic: %w", err)
	}
	return id, nil
}

// InsertEventTopic associates an event with a topic at a confidence.
func (s *Store) InsertEventTopic(ctx context.Context, eventID, topicID string, confidence float64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO event_topics (event_id, topic_id, confidence)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, topic_id) DO UPDATE SET confidence = EXCLUDED.confidence`,
		eventID, topicID, confidence)
	if err != nil {
		return fmt.Errorf("store: insert event topic: %w", err)
	}
	return nil
}

// TopicSlugsForEvent lists the slugs of every topic assigned to an event,
// used by watchlist-match to check an event against the configured topic
// watchlist.
func (s *Store) TopicSlugsForEvent(ctx context.Context, eventID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.slug FROM event_topics et
		JOIN topics t ON t.id = et.topic_id
		WHERE et.event_id = $1`, eventID)
	if err != nil {
		return nil, fmt.Errorf("store: topic slugs for event: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("store: scan topic slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}
