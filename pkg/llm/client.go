package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ProviderClient talks to a single OpenAI-chat-completions-compatible
// endpoint. Ollama and DeepSeek both implement this contract, so one
// connector serves both.
type ProviderClient struct {
	name    string
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewProviderClient builds a connector for one configured provider.
// apiKeyEnv may be empty for providers that don't require auth (local Ollama).
func NewProviderClient(name, baseURL, model, apiKeyEnv string, timeout time.Duration) *ProviderClient {
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	var apiKey string
	if apiKeyEnv != "" {
		apiKey = os.Getenv(apiKeyEnv)
	}

	return &ProviderClient{
		name:    name,
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Name returns the provider identifier used in pkg/models.LLMRun.Provider.
func (p *ProviderClient) Name() string { return p.name }

// Model returns the configured model name.
func (p *ProviderClient) Model() string { return p.model }

// ChatCompletion sends a non-streaming chat completion request.
func (p *ProviderClient) ChatCompletion(ctx context.Context, messages []ChatMessage, jsonMode bool) (*ChatResponse, error) {
	req := &ChatRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
	}
	if jsonMode {
		req.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	p.setHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", p.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", p.name, err)
	}

	if resp.StatusCode != http.StatusOK {
		var errBody errorBody
		_ = json.Unmarshal(respBody, &errBody)
		if errBody.Error.Message != "" {
			return nil, fmt.Errorf("%s: status %d: %s", p.name, resp.StatusCode, errBody.Error.Message)
		}
		return nil, fmt.Errorf("%s: status %d: %s", p.name, resp.StatusCode, string(respBody))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", p.name, err)
	}

	return &chatResp, nil
}

func (p *ProviderClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
}
