package retention

import (
	"context"
	"testing"
	"time"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/stretchr/testify/require"
)

type fakeEventStore struct {
	stale         []string
	resolvedTo    map[string]models.EventStatus
	clearedCutoff time.Time
}

func (f *fakeEventStore) QuarantinedEventsOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	return f.stale, nil
}

func (f *fakeEventStore) SetEventStatus(ctx context.Context, eventID string, from *models.EventStatus, to models.EventStatus, confidence *models.Confidence, reason string) error {
	if f.resolvedTo == nil {
		f.resolvedTo = map[string]models.EventStatus{}
	}
	f.resolvedTo[eventID] = to
	return nil
}

func (f *fakeEventStore) ClearStaleSnapshotText(ctx context.Context, cutoff time.Time) (int, error) {
	f.clearedCutoff = cutoff
	return 3, nil
}

type fakeDeadLetterQueue struct {
	purged int
}

func (f *fakeDeadLetterQueue) PurgeDead(ctx context.Context, cutoff time.Time) (int, error) {
	f.purged++
	return 1, nil
}

func TestRunOnce_ForceResolvesStaleQuarantinedEvents(t *testing.T) {
	store := &fakeEventStore{stale: []string{"evt-1", "evt-2"}}
	r := NewRunner(store, nil, &config.RetentionConfig{QuarantineTTL: time.Hour, SnapshotRawHTMLDays: 30, DeadLetterTTL: time.Hour})

	r.runOnce(context.Background())

	require.Equal(t, models.StatusBlocked, store.resolvedTo["evt-1"])
	require.Equal(t, models.StatusBlocked, store.resolvedTo["evt-2"])
}

func TestRunOnce_PurgesEveryQueue(t *testing.T) {
	store := &fakeEventStore{}
	q1 := &fakeDeadLetterQueue{}
	q2 := &fakeDeadLetterQueue{}
	r := NewRunner(store, []DeadLetterQueue{q1, q2}, &config.RetentionConfig{DeadLetterTTL: time.Hour, SnapshotRawHTMLDays: 30})

	r.runOnce(context.Background())

	require.Equal(t, 1, q1.purged)
	require.Equal(t, 1, q2.purged)
}
