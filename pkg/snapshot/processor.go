// Package snapshot canonicalizes, fetches, and persists one point-in-time
// retrieval of a feed item's URL.
package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/models"
)

const defaultFetchTimeout = 20 * time.Second

// Input is one normalized feed item awaiting a snapshot.
type Input struct {
	SourceType  string
	SourceID    string
	URL         string
	Title       string
	Author      string
	PublishedAt *time.Time
}

// Output is handed to the cluster queue.
type Output struct {
	SnapshotID  string
	SourceType  string
	SourceID    string
	Title       string
	PublishedAt *time.Time
}

// sourceStore is the subset of pkg/store the processor needs, narrowed so
// this package can be unit-tested against a fake.
type sourceStore interface {
	UpsertSource(ctx context.Context, rawURL, canonicalURL, domain string, tier models.TrustTier) (*models.EvidenceSource, error)
	FindRecentSnapshotByHash(ctx context.Context, sourceID, contentHash string, within time.Duration) (*models.EvidenceSnapshot, bool, error)
	InsertSnapshot(ctx context.Context, snap *models.EvidenceSnapshot) error
}

// Processor runs the canonicalize/upsert/fetch/hash/persist sequence.
type Processor struct {
	store        sourceStore
	trustTiers   *config.TrustTierConfig
	client       *http.Client
	dedupeWindow time.Duration
}

func NewProcessor(store sourceStore, trustTiers *config.TrustTierConfig, dedupeWindow time.Duration) *Processor {
	if dedupeWindow <= 0 {
		dedupeWindow = 10 * time.Minute
	}
	return &Processor{
		store:        store,
		trustTiers:   trustTiers,
		client:       &http.Client{Timeout: defaultFetchTimeout},
		dedupeWindow: dedupeWindow,
	}
}

// Process canonicalizes in.URL, upserts its EvidenceSource, fetches the body
// (a fetch failure still records a snapshot, with HTTPStatus 0 and an empty
// body, rather than failing the pipeline stage), hashes it, and reuses an
// existing snapshot if one with an identical (canonicalUrl, contentHash)
// exists within the dedupe window.
func (p *Processor) Process(ctx context.Context, in Input) (*Output, error) {
	canonicalURL, err := Canonicalize(in.URL)
	if err != nil {
		return nil, fmt.Errorf("snapshot: canonicalize: %w", err)
	}
	domain, err := Domain(canonicalURL)
	if err != nil {
		return nil, fmt.Errorf("snapshot: domain: %w", err)
	}

	src, err := p.store.UpsertSource(ctx, in.URL, canonicalURL, domain, p.tierFor(domain))
	if err != nil {
		return nil, fmt.Errorf("snapshot: upsert source: %w", err)
	}

	body, status := p.fetch(ctx, canonicalURL)
	contentHash := hashContent(body)

	if existing, found, err := p.store.FindRecentSnapshotByHash(ctx, src.ID, contentHash, p.dedupeWindow); err != nil {
		return nil, fmt.Errorf("snapshot: dedupe lookup: %w", err)
	} else if found {
		return &Output{
			SnapshotID:  existing.ID,
			SourceType:  in.SourceType,
			SourceID:    in.SourceID,
			Title:       existing.Title,
			PublishedAt: existing.PublishedAt,
		}, nil
	}

	snap := &models.EvidenceSnapshot{
		SourceID:    src.ID,
		Title:       in.Title,
		PublishedAt: in.PublishedAt,
		ContentHash: contentHash,
		HTTPStatus:  status,
	}
	if in.Author != "" {
		snap.Author = &in.Author
	}
	if body != "" {
		snap.FullText = &body
	}
	if err := p.store.InsertSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("snapshot: insert: %w", err)
	}

	return &Output{
		SnapshotID:  snap.ID,
		SourceType:  in.SourceType,
		SourceID:    in.SourceID,
		Title:       in.Title,
		PublishedAt: in.PublishedAt,
	}, nil
}

func (p *Processor) fetch(ctx context.Context, canonicalURL string) (body string, httpStatus int) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, canonicalURL, nil)
	if err != nil {
		return "", 0
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", 0
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", resp.StatusCode
	}
	return string(raw), resp.StatusCode
}

func (p *Processor) tierFor(domain string) models.TrustTier {
	if tier, ok := p.trustTiers.Overrides[domain]; ok {
		return models.TrustTier(tier)
	}
	return models.TrustTier(p.trustTiers.DefaultTier)
}

func hashContent(body string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(body)))
	return hex.EncodeToString(sum[:])[:32]
}
