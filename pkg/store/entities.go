package store

import (
	"context"
	"fmt"

	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetEntityBySlug looks up a previously extracted entity by its slug, used
// by relationship-extract to resolve the entity references an LLM names by
// slug alone. Returns (nil, false, nil) when no such entity exists yet.
func (s *Store) GetEntityBySlug(ctx context.Context, slug string) (*models.Entity, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, slug, name, name_hr, type, aliases FROM entities WHERE slug = $1`, slug)

	var e models.Entity
	err := row.Scan(&e.ID, &e.Slug, &e.Name, &e.NameHr, &e.Type, &e.Aliases)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get entity by slug: %w", err)
	}
	return &e, true, nil
}

// UpsertEntity inserts or returns the existing Entity for slug.
func (s *Store) UpsertEntity(ctx context.Context, slug, name string, nameHr *string, t models.EntityType, aliases []string) (*models.Entity, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO entities (id, slug, name, name_hr, type, aliases)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id, slug, name, name_hr, type, aliases`,
		uuid.NewString(), slug, name, nameHr, t, aliases)

	var e models.Entity
	if err := row.Scan(&e.ID, &e.Slug, &e.Name, &e.NameHr, &e.Type, &e.Aliases); err != nil {
		return nil, fmt.Errorf("store: upsert entity: %w", err)
	}
	return &e, nil
}

// EntitySlugsForEvent lists the slugs of every entity mentioned in an
// event, used by watchlist-match to check an event against the configured
// entity watchlist.
func (s *Store) EntitySlugsForEvent(ctx context.Context, eventID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT e.slug FROM mentions m
		JOIN entities e ON e.id = m.entity_id
		WHERE m.event_id = $1`, eventID)
	if err != nil {
		return nil, fmt.Errorf("store: entity slugs for event: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("store: scan entity slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// InsertMention links an event to an entity with a role and confidence.
func (s *Store) InsertMention(ctx context.Context, eventID, entityID string, role models.MentionRole, confidence float64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO mentions (event_id, entity_id, role, confidence)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, entity_id) DO UPDATE SET role = EXCLUDED.role, confidence = EXCLUDED.confidence`,
		eventID, entityID, role, confidence)
	if err != nil {
		return fmt.Errorf("store: insert mention: %w", err)
	}
	return nil
}
