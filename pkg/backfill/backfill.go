// Package backfill streams legacy (sourceType, url, title, publishedAt) rows
// through the same snapshot, cluster, and materialize stages live ingestion
// uses, so migrated rows get identical invariant treatment instead of a
// second, divergent import path.
package backfill

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ai-roundtable/observatory/pkg/cluster"
	"github.com/ai-roundtable/observatory/pkg/materialize"
	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/ai-roundtable/observatory/pkg/scoring"
	"github.com/ai-roundtable/observatory/pkg/snapshot"
)

// Row is one legacy item to replay through the pipeline.
type Row struct {
	SourceType  string     `json:"sourceType"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	PublishedAt *time.Time `json:"publishedAt"`
}

type statusStore interface {
	SetEventStatus(ctx context.Context, eventID string, from *models.EventStatus, to models.EventStatus, confidence *models.Confidence, reason string) error
	TrustProfileForEvent(ctx context.Context, eventID string) (models.TrustProfile, error)
}

// Runner drives rows through snapshot -> cluster -> materialize -> score.
type Runner struct {
	processor    *snapshot.Processor
	judge        *cluster.Judge
	materializer *materialize.Materializer
	store        statusStore
}

func NewRunner(processor *snapshot.Processor, judge *cluster.Judge, materializer *materialize.Materializer, store statusStore) *Runner {
	return &Runner{processor: processor, judge: judge, materializer: materializer, store: store}
}

// Stats summarizes a completed run.
type Stats struct {
	Rows     int
	Snapshot int
	Events   int
	Failed   int
}

// Run reads rows from r (CSV if isJSONL is false, newline-delimited JSON
// otherwise) and replays each through the pipeline, continuing past
// individual row failures.
func (rn *Runner) Run(ctx context.Context, r io.Reader, isJSONL bool) (Stats, error) {
	var stats Stats
	rows, err := parseRows(r, isJSONL)
	if err != nil {
		return stats, fmt.Errorf("backfill: parse rows: %w", err)
	}

	for i, row := range rows {
		stats.Rows++
		created, err := rn.replay(ctx, row)
		if err != nil {
			stats.Failed++
			slog.Error("backfill: row failed", "index", i, "url", row.URL, "error", err)
			continue
		}
		stats.Snapshot++
		if created {
			stats.Events++
		}
	}
	return stats, nil
}

// replay reports whether the row created a new event.
func (rn *Runner) replay(ctx context.Context, row Row) (bool, error) {
	out, err := rn.processor.Process(ctx, snapshot.Input{
		SourceType:  row.SourceType,
		SourceID:    row.URL,
		URL:         row.URL,
		Title:       row.Title,
		PublishedAt: row.PublishedAt,
	})
	if err != nil {
		return false, fmt.Errorf("snapshot stage: %w", err)
	}

	publishedAt := time.Now().UTC()
	if out.PublishedAt != nil {
		publishedAt = *out.PublishedAt
	}

	decision, err := rn.judge.Decide(ctx, cluster.Snapshot{
		ID:          out.SnapshotID,
		Title:       out.Title,
		PublishedAt: publishedAt,
	})
	if err != nil {
		return false, fmt.Errorf("cluster stage: %w", err)
	}

	result, err := rn.materializer.Apply(ctx, decision, materialize.Input{
		SnapshotID:  out.SnapshotID,
		SourceType:  out.SourceType,
		Title:       out.Title,
		PublishedAt: publishedAt,
	})
	if err != nil {
		return false, fmt.Errorf("materialize stage: %w", err)
	}

	profile, err := rn.store.TrustProfileForEvent(ctx, result.EventID)
	if err != nil {
		return false, fmt.Errorf("trust profile: %w", err)
	}
	confidence, status := scoring.Score(profile)
	if err := rn.store.SetEventStatus(ctx, result.EventID, nil, status, &confidence, "backfill rescoring"); err != nil {
		return false, fmt.Errorf("set event status: %w", err)
	}
	return result.Created, nil
}

func parseRows(r io.Reader, isJSONL bool) ([]Row, error) {
	if isJSONL {
		return parseJSONL(r)
	}
	return parseCSV(r)
}

func parseJSONL(r io.Reader) ([]Row, error) {
	var rows []Row
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row Row
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, fmt.Errorf("decode jsonl row: %w", err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// parseCSV expects a header row: sourceType,url,title,publishedAt (RFC3339).
func parseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	var rows []Row
	for _, rec := range records[1:] {
		row := Row{
			SourceType: valueAt(rec, col, "sourceType"),
			URL:        valueAt(rec, col, "url"),
			Title:      valueAt(rec, col, "title"),
		}
		if raw := valueAt(rec, col, "publishedAt"); raw != "" {
			if t, err := time.Parse(time.RFC3339, raw); err == nil {
				row.PublishedAt = &t
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func valueAt(rec []string, col map[string]int, name string) string {
	idx, ok := col[name]
	if !ok || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}
