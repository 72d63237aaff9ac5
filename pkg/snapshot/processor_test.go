package snapshot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory stand-in for pkg/store, scoped to what
// Processor needs.
type fakeStore struct {
	sources   map[string]*models.EvidenceSource
	snapshots []*models.EvidenceSnapshot
}

func newFakeStore() *fakeStore {
	return &fakeStore{sources: map[string]*models.EvidenceSource{}}
}

func (f *fakeStore) UpsertSource(ctx context.Context, rawURL, canonicalURL, domain string, tier models.TrustTier) (*models.EvidenceSource, error) {
	if existing, ok := f.sources[canonicalURL]; ok {
		return existing, nil
	}
	src := &models.EvidenceSource{ID: uuid.NewString(), RawURL: rawURL, CanonicalURL: canonicalURL, Domain: domain, TrustTier: tier, CreatedAt: time.Now()}
	f.sources[canonicalURL] = src
	return src, nil
}

func (f *fakeStore) FindRecentSnapshotByHash(ctx context.Context, sourceID, contentHash string, within time.Duration) (*models.EvidenceSnapshot, bool, error) {
	cutoff := time.Now().Add(-within)
	for _, s := range f.snapshots {
		if s.SourceID == sourceID && s.ContentHash == contentHash && s.FetchedAt.After(cutoff) {
			return s, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeStore) InsertSnapshot(ctx context.Context, snap *models.EvidenceSnapshot) error {
	snap.ID = uuid.NewString()
	snap.FetchedAt = time.Now()
	f.snapshots = append(f.snapshots, snap)
	return nil
}

func TestProcessor_PersistsNewSnapshotWithAssignedTier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	store := newFakeStore()
	tiers := &config.TrustTierConfig{DefaultTier: "STANDARD", Overrides: map[string]string{}}
	p := NewProcessor(store, tiers, 10*time.Minute)

	out, err := p.Process(context.Background(), Input{
		SourceType: "hackernews",
		SourceID:   "123",
		URL:        srv.URL + "/story?utm_source=hn",
		Title:      "GPT-5 released",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.SnapshotID)
	require.Len(t, store.snapshots, 1)
	require.Equal(t, http.StatusOK, store.snapshots[0].HTTPStatus)
}

func TestProcessor_ReusesSnapshotWithinDedupeWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("identical body"))
	}))
	defer srv.Close()

	store := newFakeStore()
	tiers := &config.TrustTierConfig{DefaultTier: "STANDARD", Overrides: map[string]string{}}
	p := NewProcessor(store, tiers, 10*time.Minute)

	in := Input{SourceType: "hackernews", SourceID: "1", URL: srv.URL, Title: "first"}
	first, err := p.Process(context.Background(), in)
	require.NoError(t, err)

	in.SourceID = "2"
	in.Title = "second fetch of same content"
	second, err := p.Process(context.Background(), in)
	require.NoError(t, err)

	require.Equal(t, first.SnapshotID, second.SnapshotID)
	require.Len(t, store.snapshots, 1)
}

func TestProcessor_RecordsFailedFetchWithoutErroring(t *testing.T) {
	store := newFakeStore()
	tiers := &config.TrustTierConfig{DefaultTier: "STANDARD", Overrides: map[string]string{}}
	p := NewProcessor(store, tiers, 10*time.Minute)

	out, err := p.Process(context.Background(), Input{
		SourceType: "arxiv",
		SourceID:   "abs/1",
		URL:        "http://127.0.0.1:1/unreachable",
		Title:      "unreachable paper",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.SnapshotID)
	require.Equal(t, 0, store.snapshots[0].HTTPStatus)
}
