package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ai-roundtable/observatory/pkg/config"
)

// Result is one completed chat call, ready for the caller to hash and
// record as a pkg/models.LLMRun.
type Result struct {
	Provider   string
	Model      string
	Content    string
	Usage      Usage
	LatencyMS  int64
	UsedFallback bool
}

// Router tries the primary provider and falls back to a secondary one on
// failure. Every enrichment processor (cluster judge, artifact generators,
// briefing roundtable) calls through a single Router instance.
type Router struct {
	primary  *ProviderClient
	fallback *ProviderClient // nil when no fallback is configured
}

// NewRouter builds a Router from the resolved LLM configuration.
func NewRouter(cfg *config.LLMConfig) (*Router, error) {
	primaryCfg, ok := cfg.Providers[cfg.Primary]
	if !ok {
		return nil, fmt.Errorf("llm: primary provider %q not configured", cfg.Primary)
	}
	primary := NewProviderClient(cfg.Primary, primaryCfg.BaseURL, primaryCfg.Model, primaryCfg.APIKeyEnv, primaryCfg.Timeout)

	var fallback *ProviderClient
	if cfg.Fallback != "" {
		fallbackCfg, ok := cfg.Providers[cfg.Fallback]
		if !ok {
			return nil, fmt.Errorf("llm: fallback provider %q not configured", cfg.Fallback)
		}
		fallback = NewProviderClient(cfg.Fallback, fallbackCfg.BaseURL, fallbackCfg.Model, fallbackCfg.APIKeyEnv, fallbackCfg.Timeout)
	}

	return &Router{primary: primary, fallback: fallback}, nil
}

// Complete sends messages to the primary provider, and on failure to the
// fallback (if configured). jsonMode requests strict JSON-object output for
// processors whose output is schema-validated.
func (r *Router) Complete(ctx context.Context, processorName string, messages []ChatMessage, jsonMode bool) (*Result, error) {
	start := time.Now()
	resp, err := r.primary.ChatCompletion(ctx, messages, jsonMode)
	if err == nil {
		return toResult(r.primary, resp, time.Since(start), false), nil
	}

	slog.Warn("llm primary call failed", "processor", processorName, "provider", r.primary.Name(), "error", err)

	if r.fallback == nil {
		return nil, fmt.Errorf("llm: primary %s failed and no fallback configured: %w", r.primary.Name(), err)
	}

	start = time.Now()
	resp, fbErr := r.fallback.ChatCompletion(ctx, messages, jsonMode)
	if fbErr != nil {
		return nil, fmt.Errorf("llm: primary %s failed (%v) and fallback %s also failed: %w", r.primary.Name(), err, r.fallback.Name(), fbErr)
	}

	return toResult(r.fallback, resp, time.Since(start), true), nil
}

func toResult(provider *ProviderClient, resp *ChatResponse, latency time.Duration, usedFallback bool) *Result {
	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}
	return &Result{
		Provider:     provider.Name(),
		Model:        provider.Model(),
		Content:      content,
		Usage:        resp.Usage,
		LatencyMS:    latency.Milliseconds(),
		UsedFallback: usedFallback,
	}
}
