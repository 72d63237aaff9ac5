// Package broadcast notifies the public SSE gateway about an event. The
// pipeline calls it from the terminal watchlist-match step, after enrichment
// has completed; an event is not announced at the moment it becomes
// PUBLISHED.
package broadcast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Hook POSTs a notification to the broadcast endpoint. Nil-safe: all
// methods are no-ops when the hook or its base URL is unset, mirroring a
// fail-open notification service rather than blocking the pipeline on a
// downstream SSE gateway being unreachable.
type Hook struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHook builds a Hook targeting baseURL + "/api/sse/broadcast". Returns
// nil if baseURL is empty, so callers can unconditionally call Notify.
func NewHook(baseURL string) *Hook {
	if baseURL == "" {
		return nil
	}
	return &Hook{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default().With("component", "broadcast-hook"),
	}
}

type broadcastPayload struct {
	Type    string `json:"type"`
	EventID string `json:"eventId"`
}

// Notify posts a new_event broadcast for eventID. Errors are logged and
// never retried; a down SSE gateway must never block the enrichment
// pipeline.
func (h *Hook) Notify(ctx context.Context, eventID string) error {
	if h == nil {
		return nil
	}

	body, err := json.Marshal(broadcastPayload{Type: "new_event", EventID: eventID})
	if err != nil {
		return fmt.Errorf("broadcast: encode payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/api/sse/broadcast", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("broadcast: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("broadcast: request failed", "event_id", eventID, "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		h.logger.Warn("broadcast: non-2xx response", "event_id", eventID, "status", resp.StatusCode)
		return fmt.Errorf("broadcast: unexpected status %d", resp.StatusCode)
	}
	return nil
}
