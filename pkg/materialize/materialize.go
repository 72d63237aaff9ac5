// Package materialize writes the cluster judge's decision to durable
// storage: a new canonical event, or another piece of evidence linked to
// an existing one.
package materialize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ai-roundtable/observatory/pkg/cluster"
	"github.com/ai-roundtable/observatory/pkg/models"
)

// supportingCeiling is the point at which additional matched evidence is
// downgraded to CONTEXT rather than SUPPORTING — spec.md's "or CONTEXT if
// the event already has >=3 supporting" rule.
const supportingCeiling = 3

// defaultImpact is assigned to every newly materialized event; impact
// level is revised later by enrichment, not by the materializer itself.
const defaultImpact = models.ImpactMedium

// Input is one snapshot's worth of cluster-judge output.
type Input struct {
	SnapshotID  string
	SourceType  string
	Title       string
	PublishedAt time.Time
}

type eventStore interface {
	UpsertEventByFingerprint(ctx context.Context, fingerprint, title string, occurredAt time.Time, impact models.ImpactLevel) (*models.Event, bool, error)
	AddEventEvidence(ctx context.Context, eventID, snapshotID string, role models.EvidenceRole) error
	CountEvidenceByRole(ctx context.Context, eventID string, role models.EvidenceRole) (int, error)
	RecomputeSourceCount(ctx context.Context, eventID string) (int, error)
	SetEventStatus(ctx context.Context, eventID string, from *models.EventStatus, to models.EventStatus, confidence *models.Confidence, reason string) error
}

// Materializer applies a cluster.Decision to the event store.
type Materializer struct {
	store eventStore
}

func NewMaterializer(store eventStore) *Materializer {
	return &Materializer{store: store}
}

// Result reports the event a decision was applied to, for the confidence
// scorer to pick up next.
type Result struct {
	EventID string
	Created bool
}

// Apply performs the new-event or match-event write path for one decision.
// decision.Outcome == skipped is a caller error — the judge already linked
// the snapshot, there is nothing to materialize.
func (m *Materializer) Apply(ctx context.Context, decision cluster.Decision, in Input) (*Result, error) {
	switch decision.Outcome {
	case cluster.OutcomeMatch:
		return m.applyMatch(ctx, decision.MatchedEventID, in)
	case cluster.OutcomeNew:
		return m.applyNew(ctx, in)
	default:
		return nil, fmt.Errorf("materialize: decision outcome %q has nothing to materialize", decision.Outcome)
	}
}

// applyNew upserts the fingerprint-derived event. If this call actually
// created it, the snapshot is that event's PRIMARY evidence. If another
// insert already won the race (created == false), this snapshot lost the
// race for PRIMARY and is routed through the same evidence-role logic as a
// cluster match — it must never become a second PRIMARY for the event.
func (m *Materializer) applyNew(ctx context.Context, in Input) (*Result, error) {
	fp := Fingerprint(in.SourceType, in.PublishedAt, in.Title)

	event, created, err := m.store.UpsertEventByFingerprint(ctx, fp, in.Title, in.PublishedAt, defaultImpact)
	if err != nil {
		return nil, fmt.Errorf("materialize: upsert event: %w", err)
	}

	if !created {
		return m.addMatchedEvidence(ctx, event.ID, in.SnapshotID)
	}

	if err := m.store.AddEventEvidence(ctx, event.ID, in.SnapshotID, models.RolePrimary); err != nil {
		return nil, fmt.Errorf("materialize: add primary evidence: %w", err)
	}
	if _, err := m.store.RecomputeSourceCount(ctx, event.ID); err != nil {
		return nil, fmt.Errorf("materialize: recompute source count: %w", err)
	}
	if err := m.store.SetEventStatus(ctx, event.ID, nil, models.StatusRaw, nil, "new event materialized"); err != nil {
		return nil, fmt.Errorf("materialize: record raw status: %w", err)
	}

	return &Result{EventID: event.ID, Created: true}, nil
}

func (m *Materializer) applyMatch(ctx context.Context, eventID string, in Input) (*Result, error) {
	return m.addMatchedEvidence(ctx, eventID, in.SnapshotID)
}

// addMatchedEvidence adds snapshotID to eventID as SUPPORTING evidence, or
// CONTEXT once the event already has supportingCeiling SUPPORTING rows —
// the shared path for both a cluster match and a lost fingerprint-upsert race.
func (m *Materializer) addMatchedEvidence(ctx context.Context, eventID, snapshotID string) (*Result, error) {
	supportingCount, err := m.store.CountEvidenceByRole(ctx, eventID, models.RoleSupporting)
	if err != nil {
		return nil, fmt.Errorf("materialize: count supporting evidence: %w", err)
	}

	role := models.RoleSupporting
	if supportingCount >= supportingCeiling {
		role = models.RoleContext
	}

	if err := m.store.AddEventEvidence(ctx, eventID, snapshotID, role); err != nil {
		return nil, fmt.Errorf("materialize: add evidence: %w", err)
	}
	if _, err := m.store.RecomputeSourceCount(ctx, eventID); err != nil {
		return nil, fmt.Errorf("materialize: recompute source count: %w", err)
	}

	return &Result{EventID: eventID, Created: false}, nil
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Fingerprint computes the deterministic 32-hex-char event identity hash
// over (sourceType, date, normalizedTitle).
func Fingerprint(sourceType string, publishedAt time.Time, title string) string {
	normalizedTitle := nonAlphanumeric.ReplaceAllString(strings.ToLower(title), "")
	date := publishedAt.UTC().Format("2006-01-02")
	sum := sha256.Sum256([]byte(sourceType + ":" + date + ":" + normalizedTitle))
	return hex.EncodeToString(sum[:])[:32]
}
