package store

import (
	"context"
	"fmt"

	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/google/uuid"
)

// InsertLLMRun records one LLM call, successful or not — the run log is the
// audit trail, never a cache, so it is written regardless of downstream
// parse/validation outcome.
func (s *Store) InsertLLMRun(ctx context.Context, r *models.LLMRun) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO llm_runs (id, provider, model, processor_name, event_id, prompt_hash, input_hash, prompt_tokens, output_tokens, cost_usd, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())`,
		r.ID, r.Provider, r.Model, r.ProcessorName, r.EventID, r.PromptHash, r.InputHash, r.PromptTokens, r.OutputTokens, r.CostUSD, r.LatencyMS)
	if err != nil {
		return fmt.Errorf("store: insert llm run: %w", err)
	}
	return nil
}
