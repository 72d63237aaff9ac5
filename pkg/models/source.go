// Package models holds the domain entities for the ingestion, clustering,
// enrichment, and briefing pipeline: evidence sources and snapshots, events
// and their evidence, LLM artifacts, entities and relationships, topics,
// daily briefings, and the LLM run log.
package models

import "time"

// TrustTier classifies the authority of a source's domain.
type TrustTier string

// Trust tier values, ordered from least to most authoritative.
const (
	TrustTierLow           TrustTier = "LOW"
	TrustTierStandard      TrustTier = "STANDARD"
	TrustTierAuthoritative TrustTier = "AUTHORITATIVE"
)

// EvidenceSource is one per canonical URL. Immutable after creation.
type EvidenceSource struct {
	ID           string
	RawURL       string
	CanonicalURL string
	Domain       string
	TrustTier    TrustTier
	CreatedAt    time.Time
}

// EvidenceSnapshot is one per retrieval of a source. Append-only.
type EvidenceSnapshot struct {
	ID          string
	SourceID    string
	Title       string
	Author      *string
	PublishedAt *time.Time
	ContentHash string
	FullText    *string
	HTTPStatus  int
	FetchedAt   time.Time
}
