package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fundscout/internal/logging"
	"fundscout/internal/taxonomy"
	"fundscout/internal/types"
)

const defaultTavilyBaseURL = "https://api.tavily.com"

// TavilyBackend queries the Tavily AI-research API. Unlike the keyword
// engines it takes natural-language prompts; the generator accounts for this
// when expanding requests assigned to it.
type TavilyBackend struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTavilyBackend builds a Tavily client; baseURL empty means production.
func NewTavilyBackend(apiKey, baseURL string, timeout time.Duration) *TavilyBackend {
	if baseURL == "" {
		baseURL = defaultTavilyBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TavilyBackend{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (t *TavilyBackend) Name() taxonomy.Backend { return taxonomy.BackendTavily }

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (t *TavilyBackend) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	payload, err := json.Marshal(tavilyRequest{APIKey: t.apiKey, Query: query, MaxResults: limit})
	if err != nil {
		return nil, fmt.Errorf("tavily: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tavily: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: request failed: %w (%w)", err, ErrTransient)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tavily: failed to read response: %w (%w)", err, ErrTransient)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, fmt.Errorf("tavily: status %d: %s (%w)", resp.StatusCode, string(body), ErrTransient)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily: status %d: %s", resp.StatusCode, string(body))
	}

	var tr tavilyResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("tavily: failed to parse response: %w", err)
	}

	results := make([]types.SearchResult, 0, len(tr.Results))
	for i, r := range tr.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, types.SearchResult{
			URL:         r.URL,
			Title:       r.Title,
			Description: r.Content,
			Backend:     taxonomy.BackendTavily,
			Query:       query,
			Position:    i + 1,
		})
	}
	logging.SearchDebug("tavily returned %d results for %q", len(results), query)
	return results, nil
}
