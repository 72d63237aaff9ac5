package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CandidatesInWindow returns events whose occurredAt falls within [from, to],
// the cluster judge's candidate pool before bigram prefiltering.
func (s *Store) CandidatesInWindow(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, fingerprint, title, title_hr, occurred_at, impact_level, status, confidence, source_count, created_at, updated_at
		FROM events WHERE occurred_at BETWEEN $1 AND $2`, from, to)
	if err != nil {
		return nil, fmt.Errorf("store: candidate events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// GetEvent loads one event by id.
func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, fingerprint, title, title_hr, occurred_at, impact_level, status, confidence, source_count, created_at, updated_at
		FROM events WHERE id = $1`, id)
	ev, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("store: get event: %w", err)
	}
	return ev, nil
}

// UpsertEventByFingerprint inserts a new RAW event or returns the existing
// one for fingerprint, resolving the "concurrent new-decisions collide to
// one row" invariant via the unique index and the `xmax = 0` Postgres trick
// to report whether this call performed the insert.
func (s *Store) UpsertEventByFingerprint(ctx context.Context, fingerprint, title string, occurredAt time.Time, impact models.ImpactLevel) (event *models.Event, created bool, err error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO events (id, fingerprint, title, occurred_at, impact_level, status, source_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, now(), now())
		ON CONFLICT (fingerprint) DO UPDATE SET fingerprint = EXCLUDED.fingerprint
		RETURNING id, fingerprint, title, title_hr, occurred_at, impact_level, status, confidence, source_count, created_at, updated_at, (xmax = 0) AS inserted`,
		uuid.NewString(), fingerprint, title, occurredAt, impact, models.StatusRaw)

	ev := &models.Event{}
	scanErr := row.Scan(&ev.ID, &ev.Fingerprint, &ev.Title, &ev.TitleHr, &ev.OccurredAt, &ev.ImpactLevel,
		&ev.Status, &ev.Confidence, &ev.SourceCount, &ev.CreatedAt, &ev.UpdatedAt, &created)
	if scanErr != nil {
		return nil, false, fmt.Errorf("store: upsert event: %w", scanErr)
	}
	return ev, created, nil
}

// AddEventEvidence links a snapshot to an event with the given role.
func (s *Store) AddEventEvidence(ctx context.Context, eventID, snapshotID string, role models.EvidenceRole) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO event_evidence (event_id, snapshot_id, role, linked_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (event_id, snapshot_id) DO NOTHING`,
		eventID, snapshotID, role)
	if err != nil {
		return fmt.Errorf("store: add event evidence: %w", err)
	}
	return nil
}

// IsSnapshotLinked reports whether a snapshot is already attached to any
// event, the cluster judge's idempotency check.
func (s *Store) IsSnapshotLinked(ctx context.Context, snapshotID string) (eventID string, linked bool, err error) {
	row := s.pool.QueryRow(ctx, `SELECT event_id FROM event_evidence WHERE snapshot_id = $1 LIMIT 1`, snapshotID)
	if scanErr := row.Scan(&eventID); scanErr != nil {
		if scanErr == pgx.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("store: is snapshot linked: %w", scanErr)
	}
	return eventID, true, nil
}

// CountEvidenceByRole counts event_evidence rows of a given role for an event.
func (s *Store) CountEvidenceByRole(ctx context.Context, eventID string, role models.EvidenceRole) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM event_evidence WHERE event_id = $1 AND role = $2`, eventID, role).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count evidence by role: %w", err)
	}
	return n, nil
}

// RecomputeSourceCount sets Event.sourceCount to count(EventEvidence), the
// source-count-consistency invariant, and returns the new count.
func (s *Store) RecomputeSourceCount(ctx context.Context, eventID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		UPDATE events SET source_count = (SELECT count(*) FROM event_evidence WHERE event_id = $1), updated_at = now()
		WHERE id = $1
		RETURNING source_count`, eventID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: recompute source count: %w", err)
	}
	return n, nil
}

// SetEventStatus updates status and confidence, recording a status-history row.
func (s *Store) SetEventStatus(ctx context.Context, eventID string, from *models.EventStatus, to models.EventStatus, confidence *models.Confidence, reason string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: set event status: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `UPDATE events SET status = $1, confidence = $2, updated_at = now() WHERE id = $3`,
		to, confidence, eventID); err != nil {
		return fmt.Errorf("store: set event status: update: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO event_status_history (id, event_id, from_status, to_status, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		uuid.NewString(), eventID, from, to, reason); err != nil {
		return fmt.Errorf("store: set event status: history: %w", err)
	}
	return tx.Commit(ctx)
}

// QuarantinedEventsOlderThan returns the IDs of QUARANTINED events whose
// most recent status transition predates cutoff, the retention loop's
// force-resolve-to-BLOCKED query.
func (s *Store) QuarantinedEventsOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id FROM events WHERE status = $1 AND updated_at < $2`,
		models.StatusQuarantined, cutoff)
	if err != nil {
		return nil, fmt.Errorf("store: quarantined events older than: %w", err)
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

func scanEvents(rows pgx.Rows) ([]*models.Event, error) {
	var out []*models.Event
	for rows.Next() {
		var ev models.Event
		if err := rows.Scan(&ev.ID, &ev.Fingerprint, &ev.Title, &ev.TitleHr, &ev.OccurredAt, &ev.ImpactLevel,
			&ev.Status, &ev.Confidence, &ev.SourceCount, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &ev)
	}
	return out, rows.Err()
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var ev models.Event
	err := row.Scan(&ev.ID, &ev.Fingerprint, &ev.Title, &ev.TitleHr, &ev.OccurredAt, &ev.ImpactLevel,
		&ev.Status, &ev.Confidence, &ev.SourceCount, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}
