package models

import "time"

// LLMRun is one row per LLM call, written regardless of whether the call's
// output parses or validates — the run log is the audit trail, not a cache.
type LLMRun struct {
	ID            string
	Provider      string
	Model         string
	ProcessorName string
	EventID       *string
	PromptHash    string
	InputHash     string
	PromptTokens  int
	OutputTokens  int
	CostUSD       float64
	LatencyMS     int64
	CreatedAt     time.Time
}

// RawItem is the normalized output of a feed adapter.
type RawItem struct {
	SourceType  string
	ExternalID  string
	URL         string
	Title       string
	Author      string
	PublishedAt *time.Time
	Score       *float64
	Tags        []string
}
