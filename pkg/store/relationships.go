package store

import (
	"context"
	"fmt"

	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/google/uuid"
)

// InsertRelationship persists a relationship proposal at the status the
// safety gate already decided; the gate's decision, not this method, owns
// the APPROVED/QUARANTINED/REJECTED outcome.
func (s *Store) InsertRelationship(ctx context.Context, r *models.Relationship) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO relationships (id, type, source_entity_id, target_entity_id, event_id, status, model_confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		r.ID, r.Type, r.SourceEntityID, r.TargetEntityID, r.EventID, r.Status, r.ModelConfidence)
	if err != nil {
		return fmt.Errorf("store: insert relationship: %w", err)
	}
	return nil
}

// TrustProfileForEvent assembles the trust profile (source count, tier set)
// used by both the confidence scorer and the safety gate.
func (s *Store) TrustProfileForEvent(ctx context.Context, eventID string) (models.TrustProfile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT es.trust_tier
		FROM event_evidence ee
		JOIN evidence_snapshots sn ON sn.id = ee.snapshot_id
		JOIN evidence_sources es ON es.id = sn.source_id
		WHERE ee.event_id = $1`, eventID)
	if err != nil {
		return models.TrustProfile{}, fmt.Errorf("store: trust profile: %w", err)
	}
	defer rows.Close()

	var tiers []models.TrustTier
	for rows.Next() {
		var tier models.TrustTier
		if err := rows.Scan(&tier); err != nil {
			return models.TrustProfile{}, err
		}
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return models.TrustProfile{}, err
	}

	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM event_evidence WHERE event_id = $1`, eventID).Scan(&count); err != nil {
		return models.TrustProfile{}, fmt.Errorf("store: trust profile count: %w", err)
	}

	return models.TrustProfile{SourceCount: count, Tiers: tiers}, nil
}
