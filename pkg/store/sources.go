package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UpsertSource inserts or returns the existing EvidenceSource for
// canonicalURL. The no-op DO UPDATE is the standard trick to get RETURNING
// to hand back the existing row on a conflict.
func (s *Store) UpsertSource(ctx context.Context, rawURL, canonicalURL, domain string, tier models.TrustTier) (*models.EvidenceSource, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO evidence_sources (id, raw_url, canonical_url, domain, trust_tier)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (canonical_url) DO UPDATE SET canonical_url = EXCLUDED.canonical_url
		RETURNING id, raw_url, canonical_url, domain, trust_tier, created_at`,
		uuid.NewString(), rawURL, canonicalURL, domain, tier)

	var src models.EvidenceSource
	if err := row.Scan(&src.ID, &src.RawURL, &src.CanonicalURL, &src.Domain, &src.TrustTier, &src.CreatedAt); err != nil {
		return nil, fmt.Errorf("store: upsert source: %w", err)
	}
	return &src, nil
}

// FindRecentSnapshotByHash looks for an existing snapshot of the same source
// with an identical content hash fetched within `within` of now, satisfying
// the snapshot processor's idempotency-on-(canonicalUrl, contentHash) rule.
func (s *Store) FindRecentSnapshotByHash(ctx context.Context, sourceID, contentHash string, within time.Duration) (*models.EvidenceSnapshot, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, source_id, title, author, published_at, content_hash, full_text, http_status, fetched_at
		FROM evidence_snapshots
		WHERE source_id = $1 AND content_hash = $2 AND fetched_at >= $3
		ORDER BY fetched_at DESC
		LIMIT 1`,
		sourceID, contentHash, time.Now().Add(-within))

	snap, err := scanSnapshot(row)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: find recent snapshot: %w", err)
	}
	return snap, true, nil
}

// InsertSnapshot persists a new EvidenceSnapshot.
func (s *Store) InsertSnapshot(ctx context.Context, snap *models.EvidenceSnapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO evidence_snapshots (id, source_id, title, author, published_at, content_hash, full_text, http_status, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		snap.ID, snap.SourceID, snap.Title, snap.Author, snap.PublishedAt, snap.ContentHash, snap.FullText, snap.HTTPStatus, snap.FetchedAt)
	if err != nil {
		return fmt.Errorf("store: insert snapshot: %w", err)
	}
	return nil
}

// GetSnapshot loads one snapshot by id.
func (s *Store) GetSnapshot(ctx context.Context, id string) (*models.EvidenceSnapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, source_id, title, author, published_at, content_hash, full_text, http_status, fetched_at
		FROM evidence_snapshots WHERE id = $1`, id)
	snap, err := scanSnapshot(row)
	if err != nil {
		return nil, fmt.Errorf("store: get snapshot: %w", err)
	}
	return snap, nil
}

// EvidenceTextForEvent returns the non-empty full_text of every snapshot
// linked to eventID, in linking order, for the enrichment stages to build
// their fact list from.
func (s *Store) EvidenceTextForEvent(ctx context.Context, eventID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT es.full_text
		FROM event_evidence ee
		JOIN evidence_snapshots es ON es.id = ee.snapshot_id
		WHERE ee.event_id = $1 AND es.full_text IS NOT NULL AND es.full_text <> ''
		ORDER BY ee.linked_at`, eventID)
	if err != nil {
		return nil, fmt.Errorf("store: evidence text for event: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("store: evidence text for event: scan: %w", err)
		}
		texts = append(texts, text)
	}
	return texts, rows.Err()
}

// ClearStaleSnapshotText nulls full_text on snapshots fetched before
// cutoff, keeping the row and content hash but dropping the raw body the
// retention config's SnapshotRawHTMLDays bounds. Returns the row count
// affected.
func (s *Store) ClearStaleSnapshotText(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE evidence_snapshots SET full_text = NULL
		WHERE fetched_at < $1 AND full_text IS NOT NULL`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("store: clear stale snapshot text: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanSnapshot(row pgx.Row) (*models.EvidenceSnapshot, error) {
	var snap models.EvidenceSnapshot
	err := row.Scan(&snap.ID, &snap.SourceID, &snap.Title, &snap.Author, &snap.PublishedAt,
		&snap.ContentHash, &snap.FullText, &snap.HTTPStatus, &snap.FetchedAt)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
