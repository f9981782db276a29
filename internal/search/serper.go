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

const defaultSerperBaseURL = "https://google.serper.dev"

// SerperBackend queries the Serper.dev Google meta-search API.
type SerperBackend struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSerperBackend builds a Serper client; baseURL empty means production.
func NewSerperBackend(apiKey, baseURL string, timeout time.Duration) *SerperBackend {
	if baseURL == "" {
		baseURL = defaultSerperBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SerperBackend{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *SerperBackend) Name() taxonomy.Backend { return taxonomy.BackendSerper }

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	Organic []struct {
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
		Position int    `json:"position"`
	} `json:"organic"`
}

func (s *SerperBackend) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	payload, err := json.Marshal(serperRequest{Q: query, Num: limit})
	if err != nil {
		return nil, fmt.Errorf("serper: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("serper: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper: request failed: %w (%w)", err, ErrTransient)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("serper: failed to read response: %w (%w)", err, ErrTransient)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, fmt.Errorf("serper: status %d: %s (%w)", resp.StatusCode, string(body), ErrTransient)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper: status %d: %s", resp.StatusCode, string(body))
	}

	var sr serperResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("serper: failed to parse response: %w", err)
	}

	results := make([]types.SearchResult, 0, len(sr.Organic))
	for i, r := range sr.Organic {
		if r.Link == "" {
			continue
		}
		pos := r.Position
		if pos == 0 {
			pos = i + 1
		}
		results = append(results, types.SearchResult{
			URL:         r.Link,
			Title:       r.Title,
			Description: r.Snippet,
			Backend:     taxonomy.BackendSerper,
			Query:       query,
			Position:    pos,
		})
	}
	logging.SearchDebug("serper returned %d results for %q", len(results), query)
	return results, nil
}
