package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/google/uuid"
)

// TopEventsForDay returns the top N PUBLISHED events created on the calendar
// day of the given time, in that time's location, ranked by impact level then
// source count, the briefing
// generator's candidate selection.
func (s *Store) TopEventsForDay(ctx context.Context, day time.Time, n int) ([]*models.Event, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	rows, err := s.pool.Query(ctx, `
		SELECT id, fingerprint, title, title_hr, occurred_at, impact_level, status, confidence, source_count, created_at, updated_at
		FROM events
		WHERE status = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY
			CASE impact_level
				WHEN 'BREAKING' THEN 0
				WHEN 'HIGH' THEN 1
				WHEN 'MEDIUM' THEN 2
				ELSE 3
			END,
			source_count DESC
		LIMIT $4`,
		models.StatusPublished, start, end, n)
	if err != nil {
		return nil, fmt.Errorf("store: top events for day: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// UpsertDailyBriefing writes the roundtable payload for date (YYYY-MM-DD),
// replacing any existing briefing for the same date.
func (s *Store) UpsertDailyBriefing(ctx context.Context, date string, payload json.RawMessage, topEventIDs []string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO daily_briefings (id, date, payload, top_event_ids, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (date) DO UPDATE SET payload = EXCLUDED.payload, top_event_ids = EXCLUDED.top_event_ids`,
		uuid.NewString(), date, payload, topEventIDs)
	if err != nil {
		return fmt.Errorf("store: upsert daily briefing: %w", err)
	}
	return nil
}
