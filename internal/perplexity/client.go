// Package perplexity is a client for the Perplexity chat completions API:
// one request/response cycle per call, keyword-based model selection, and
// citation-annotated rendering of responses.
package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultMaxTokens   = 4000
	defaultTemperature = 0.2

	// The API accepts at most 10 domain filter entries.
	maxDomainFilters = 10
)

// defaultSystemPrompt is used when the caller supplies no system message.
const defaultSystemPrompt = "You are a helpful research assistant. Provide accurate, " +
	"well-sourced answers and cite your sources."

// Client issues single chat-completion requests to the Perplexity API.
// It performs no retries; retry policy belongs to the caller.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the given endpoint. A zero timeout
// disables the client-side cutoff.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Search runs one chat completion for query against model.
//
// The request always carries exactly two messages: one system message
// (taken from opts.Messages if its first entry has role "system", else the
// default prompt) followed by one user message with the query. Any other
// caller-supplied messages are discarded; the system message is selected
// by role, never duplicated by position.
//
// Defaults unless overridden: max_tokens 4000, temperature 0.2, citations on.
//
// Failures are either *NetworkError (transport) or *APIError (non-2xx).
func (c *Client) Search(ctx context.Context, query, model string, opts Options) (*Response, error) {
	systemPrompt := defaultSystemPrompt
	if len(opts.Messages) > 0 && opts.Messages[0].Role == "system" {
		systemPrompt = opts.Messages[0].Content
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}

	domains := opts.DomainFilter
	if len(domains) > maxDomainFilters {
		domains = domains[:maxDomainFilters]
	}

	req := Request{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: query},
		},
		MaxTokens:              maxTokens,
		Temperature:            temperature,
		TopP:                   opts.TopP,
		SearchDomainFilter:     domains,
		SearchRecencyFilter:    opts.RecencyFilter,
		ReturnCitations:        !opts.DisableCitations,
		ReturnRelatedQuestions: opts.RelatedQuestions,
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: httpResp.StatusCode, Body: string(body)}
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("search completed",
		"model", model,
		"duration_ms", time.Since(start).Milliseconds(),
		"total_tokens", resp.Usage.TotalTokens,
		"citations", len(resp.Citations),
	)

	return &resp, nil
}
