package materialize

import (
	"context"
	"testing"
	"time"

	"github.com/ai-roundtable/observatory/pkg/cluster"
	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeEventStore struct {
	eventsByFingerprint map[string]*models.Event
	evidenceByEvent     map[string][]models.EvidenceRole
	statusSet           map[string]models.EventStatus
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{
		eventsByFingerprint: map[string]*models.Event{},
		evidenceByEvent:     map[string][]models.EvidenceRole{},
		statusSet:           map[string]models.EventStatus{},
	}
}

func (f *fakeEventStore) UpsertEventByFingerprint(ctx context.Context, fingerprint, title string, occurredAt time.Time, impact models.ImpactLevel) (*models.Event, bool, error) {
	if existing, ok := f.eventsByFingerprint[fingerprint]; ok {
		return existing, false, nil
	}
	ev := &models.Event{ID: uuid.NewString(), Fingerprint: fingerprint, Title: title, OccurredAt: occurredAt, ImpactLevel: impact, Status: models.StatusRaw}
	f.eventsByFingerprint[fingerprint] = ev
	return ev, true, nil
}

func (f *fakeEventStore) AddEventEvidence(ctx context.Context, eventID, snapshotID string, role models.EvidenceRole) error {
	f.evidenceByEvent[eventID] = append(f.evidenceByEvent[eventID], role)
	return nil
}

func (f *fakeEventStore) CountEvidenceByRole(ctx context.Context, eventID string, role models.EvidenceRole) (int, error) {
	n := 0
	for _, r := range f.evidenceByEvent[eventID] {
		if r == role {
			n++
		}
	}
	return n, nil
}

func (f *fakeEventStore) RecomputeSourceCount(ctx context.Context, eventID string) (int, error) {
	return len(f.evidenceByEvent[eventID]), nil
}

func (f *fakeEventStore) SetEventStatus(ctx context.Context, eventID string, from *models.EventStatus, to models.EventStatus, confidence *models.Confidence, reason string) error {
	f.statusSet[eventID] = to
	return nil
}

func TestMaterializer_ApplyNew_CreatesEventWithPrimaryEvidence(t *testing.T) {
	store := newFakeEventStore()
	m := NewMaterializer(store)

	result, err := m.Apply(context.Background(), cluster.Decision{Outcome: cluster.OutcomeNew}, Input{
		SnapshotID:  "snap-1",
		SourceType:  "hackernews",
		Title:       "OpenAI releases GPT-5",
		PublishedAt: time.Now(),
	})
	require.NoError(t, err)
	require.True(t, result.Created)
	require.Equal(t, []models.EvidenceRole{models.RolePrimary}, store.evidenceByEvent[result.EventID])
	require.Equal(t, models.StatusRaw, store.statusSet[result.EventID])
}

func TestMaterializer_ApplyNew_IsIdempotentOnFingerprint(t *testing.T) {
	store := newFakeEventStore()
	m := NewMaterializer(store)
	in := Input{SnapshotID: "snap-1", SourceType: "hackernews", Title: "OpenAI releases GPT-5", PublishedAt: time.Now()}

	first, err := m.Apply(context.Background(), cluster.Decision{Outcome: cluster.OutcomeNew}, in)
	require.NoError(t, err)

	in.SnapshotID = "snap-2"
	second, err := m.Apply(context.Background(), cluster.Decision{Outcome: cluster.OutcomeNew}, in)
	require.NoError(t, err)

	require.Equal(t, first.EventID, second.EventID)
	require.False(t, second.Created)
	require.Equal(t, 1, countRole(store.evidenceByEvent[first.EventID], models.RolePrimary),
		"the race-losing snapshot must not become a second PRIMARY")
	require.Equal(t, 1, countRole(store.evidenceByEvent[first.EventID], models.RoleSupporting))
}

func TestMaterializer_ApplyMatch_UsesSupportingUntilCeilingThenContext(t *testing.T) {
	store := newFakeEventStore()
	m := NewMaterializer(store)

	eventID := uuid.NewString()
	store.evidenceByEvent[eventID] = []models.EvidenceRole{models.RolePrimary}

	for i := 0; i < supportingCeiling; i++ {
		_, err := m.Apply(context.Background(), cluster.Decision{Outcome: cluster.OutcomeMatch, MatchedEventID: eventID}, Input{
			SnapshotID: uuid.NewString(), SourceType: "devto", Title: "t", PublishedAt: time.Now(),
		})
		require.NoError(t, err)
	}
	require.Equal(t, supportingCeiling, int(countRole(store.evidenceByEvent[eventID], models.RoleSupporting)))

	_, err := m.Apply(context.Background(), cluster.Decision{Outcome: cluster.OutcomeMatch, MatchedEventID: eventID}, Input{
		SnapshotID: uuid.NewString(), SourceType: "devto", Title: "t", PublishedAt: time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, 1, int(countRole(store.evidenceByEvent[eventID], models.RoleContext)))
}

func TestFingerprint_IsDeterministicAndNormalizesTitle(t *testing.T) {
	when := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	a := Fingerprint("hackernews", when, "OpenAI Releases GPT-5!")
	b := Fingerprint("hackernews", when, "openai releases gpt 5")
	require.Equal(t, a, b)
	require.Len(t, a, 32)
}

func countRole(roles []models.EvidenceRole, want models.EvidenceRole) int {
	n := 0
	for _, r := range roles {
		if r == want {
			n++
		}
	}
	return n
}
