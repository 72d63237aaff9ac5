package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LatestArtifactVersion returns the highest existing version for
// (eventID, artifactType), or 0 if none exists.
func (s *Store) LatestArtifactVersion(ctx context.Context, eventID string, t models.ArtifactType) (int, error) {
	var version int
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(version), 0) FROM artifacts WHERE event_id = $1 AND type = $2`,
		eventID, t).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("store: latest artifact version: %w", err)
	}
	return version, nil
}

// InsertArtifact persists a new versioned artifact. Callers must have
// already computed version = LatestArtifactVersion(...)+1.
func (s *Store) InsertArtifact(ctx context.Context, a *models.Artifact) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO artifacts (id, event_id, type, payload, version, model_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		a.ID, a.EventID, a.Type, a.Payload, a.Version, a.ModelUsed)
	if err != nil {
		return fmt.Errorf("store: insert artifact: %w", err)
	}
	return nil
}

// GetLatestArtifact returns the highest-version artifact of type t for an
// event, or nil if none exists.
func (s *Store) GetLatestArtifact(ctx context.Context, eventID string, t models.ArtifactType) (*models.Artifact, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, event_id, type, payload, version, model_used, created_at
		FROM artifacts WHERE event_id = $1 AND type = $2
		ORDER BY version DESC LIMIT 1`, eventID, t)

	var a models.Artifact
	var payload []byte
	err := row.Scan(&a.ID, &a.EventID, &a.Type, &payload, &a.Version, &a.ModelUsed, &a.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get latest artifact: %w", err)
	}
	a.Payload = json.RawMessage(payload)
	return &a, nil
}

// HasRequiredArtifacts reports whether every type in models.RequiredArtifacts
// exists for eventID, the ENRICHED transition gate.
func (s *Store) HasRequiredArtifacts(ctx context.Context, eventID string) (bool, error) {
	for _, t := range models.RequiredArtifacts {
		v, err := s.LatestArtifactVersion(ctx, eventID, t)
		if err != nil {
			return false, err
		}
		if v == 0 {
			return false, nil
		}
	}
	return true, nil
}

// EventsAwaitingRelationshipExtract finds events with both ENTITY_EXTRACT and
// TOPIC_ASSIGN artifacts but no RELATIONSHIP_EXTRACT artifact — the crash-
// recovery sweeper's query for fan-in state that never fired.
func (s *Store) EventsAwaitingRelationshipExtract(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT e.id FROM events e
		WHERE EXISTS (SELECT 1 FROM artifacts WHERE event_id = e.id AND type = $1)
		  AND EXISTS (SELECT 1 FROM artifacts WHERE event_id = e.id AND type = $2)
		  AND NOT EXISTS (SELECT 1 FROM artifacts WHERE event_id = e.id AND type = $3)`,
		models.ArtifactEntityExtract, models.ArtifactTopicAssign, models.ArtifactRelationshipExtract)
	if err != nil {
		return nil, fmt.Errorf("store: events awaiting relationship extract: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
