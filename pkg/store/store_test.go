package store

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/ai-roundtable/observatory/pkg/database"
	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestStore(t *testing.T) *Store {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := stdsql.Open("pgx", connStr)
	require.NoError(t, err)
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	require.NoError(t, err)
	sourceDriver, err := iofs.New(database.MigrationsFS(), "migrations")
	require.NoError(t, err)
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "test", driver)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	poolCfg, err := pgxpool.ParseConfig(connStr)
	require.NoError(t, err)
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return New(pool)
}

func TestStore_UpsertSourceIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a, err := st.UpsertSource(ctx, "https://example.com/a?utm_source=x", "https://example.com/a", "example.com", models.TrustTierStandard)
	require.NoError(t, err)

	b, err := st.UpsertSource(ctx, "https://example.com/a?utm_source=y", "https://example.com/a", "example.com", models.TrustTierStandard)
	require.NoError(t, err)

	require.Equal(t, a.ID, b.ID)
}

func TestStore_UpsertEventByFingerprintResolvesConcurrentInserts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	ev1, created1, err := st.UpsertEventByFingerprint(ctx, "fp-1", "OpenAI releases GPT-5", now, models.ImpactHigh)
	require.NoError(t, err)
	require.True(t, created1)

	ev2, created2, err := st.UpsertEventByFingerprint(ctx, "fp-1", "OpenAI releases GPT-5", now, models.ImpactHigh)
	require.NoError(t, err)
	require.False(t, created2)
	require.Equal(t, ev1.ID, ev2.ID)
}

func TestStore_RecomputeSourceCountMatchesEvidenceRows(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	src, err := st.UpsertSource(ctx, "https://example.com/a", "https://example.com/a", "example.com", models.TrustTierStandard)
	require.NoError(t, err)

	ev, _, err := st.UpsertEventByFingerprint(ctx, "fp-2", "Title", time.Now(), models.ImpactMedium)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		snap := &models.EvidenceSnapshot{SourceID: src.ID, Title: "Title", ContentHash: "hash", HTTPStatus: 200}
		require.NoError(t, st.InsertSnapshot(ctx, snap))
		role := models.RolePrimary
		if i > 0 {
			role = models.RoleSupporting
		}
		require.NoError(t, st.AddEventEvidence(ctx, ev.ID, snap.ID, role))
	}

	count, err := st.RecomputeSourceCount(ctx, ev.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestStore_EvidenceTextForEventSkipsBlankFullText(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	src, err := st.UpsertSource(ctx, "https://example.com/b", "https://example.com/b", "example.com", models.TrustTierStandard)
	require.NoError(t, err)

	ev, _, err := st.UpsertEventByFingerprint(ctx, "fp-text", "Title", time.Now(), models.ImpactMedium)
	require.NoError(t, err)

	withText := &models.EvidenceSnapshot{SourceID: src.ID, Title: "Title", ContentHash: "hash-1", HTTPStatus: 200}
	body := "full article body"
	withText.FullText = &body
	require.NoError(t, st.InsertSnapshot(ctx, withText))
	require.NoError(t, st.AddEventEvidence(ctx, ev.ID, withText.ID, models.RolePrimary))

	blank := &models.EvidenceSnapshot{SourceID: src.ID, Title: "Title", ContentHash: "hash-2", HTTPStatus: 0}
	require.NoError(t, st.InsertSnapshot(ctx, blank))
	require.NoError(t, st.AddEventEvidence(ctx, ev.ID, blank.ID, models.RoleSupporting))

	texts, err := st.EvidenceTextForEvent(ctx, ev.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"full article body"}, texts)
}

func TestStore_ArtifactVersioning(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ev, _, err := st.UpsertEventByFingerprint(ctx, "fp-3", "Title", time.Now(), models.ImpactLow)
	require.NoError(t, err)

	v, err := st.LatestArtifactVersion(ctx, ev.ID, models.ArtifactHeadline)
	require.NoError(t, err)
	require.Equal(t, 0, v)

	require.NoError(t, st.InsertArtifact(ctx, &models.Artifact{
		EventID: ev.ID, Type: models.ArtifactHeadline, Payload: json.RawMessage(`{"text":"v1"}`), Version: 1, ModelUsed: "llama3.1:8b",
	}))
	require.NoError(t, st.InsertArtifact(ctx, &models.Artifact{
		EventID: ev.ID, Type: models.ArtifactHeadline, Payload: json.RawMessage(`{"text":"v2"}`), Version: 2, ModelUsed: "llama3.1:8b",
	}))

	latest, err := st.GetLatestArtifact(ctx, ev.ID, models.ArtifactHeadline)
	require.NoError(t, err)
	require.Equal(t, 2, latest.Version)
}

func TestStore_EventsAwaitingRelationshipExtract(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ev, _, err := st.UpsertEventByFingerprint(ctx, "fp-4", "Title", time.Now(), models.ImpactLow)
	require.NoError(t, err)

	require.NoError(t, st.InsertArtifact(ctx, &models.Artifact{
		EventID: ev.ID, Type: models.ArtifactEntityExtract, Payload: json.RawMessage(`{}`), Version: 1, ModelUsed: "m",
	}))
	require.NoError(t, st.InsertArtifact(ctx, &models.Artifact{
		EventID: ev.ID, Type: models.ArtifactTopicAssign, Payload: json.RawMessage(`{}`), Version: 1, ModelUsed: "m",
	}))

	ids, err := st.EventsAwaitingRelationshipExtract(ctx)
	require.NoError(t, err)
	require.Contains(t, ids, ev.ID)

	require.NoError(t, st.InsertArtifact(ctx, &models.Artifact{
		EventID: ev.ID, Type: models.ArtifactRelationshipExtract, Payload: json.RawMessage(`{}`), Version: 1, ModelUsed: "m",
	}))

	ids, err = st.EventsAwaitingRelationshipExtract(ctx)
	require.NoError(t, err)
	require.NotContains(t, ids, ev.ID)
}
