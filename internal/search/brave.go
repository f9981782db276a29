package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fundscout/internal/logging"
	"fundscout/internal/taxonomy"
	"fundscout/internal/types"
)

const defaultBraveBaseURL = "https://api.search.brave.com/res/v1"

// BraveBackend queries the Brave Search web API. Keyword-style queries.
type BraveBackend struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewBraveBackend builds a Brave client; baseURL empty means production.
func NewBraveBackend(apiKey, baseURL string, timeout time.Duration) *BraveBackend {
	if baseURL == "" {
		baseURL = defaultBraveBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BraveBackend{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (b *BraveBackend) Name() taxonomy.Backend { return taxonomy.BackendBrave }

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func (b *BraveBackend) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	endpoint := fmt.Sprintf("%s/web/search?q=%s&count=%d",
		b.baseURL, url.QueryEscape(query), limit)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("brave: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave: request failed: %w (%w)", err, ErrTransient)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("brave: failed to read response: %w (%w)", err, ErrTransient)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, fmt.Errorf("brave: status %d: %s (%w)", resp.StatusCode, string(body), ErrTransient)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave: status %d: %s", resp.StatusCode, string(body))
	}

	var br braveResponse
	if err := json.Unmarshal(body, &br); err != nil {
		return nil, fmt.Errorf("brave: failed to parse response: %w", err)
	}

	results := make([]types.SearchResult, 0, len(br.Web.Results))
	for i, r := range br.Web.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, types.SearchResult{
			URL:         r.URL,
			Title:       r.Title,
			Description: r.Description,
			Backend:     taxonomy.BackendBrave,
			Query:       query,
			Position:    i + 1,
		})
	}
	logging.SearchDebug("brave returned %d results for %q", len(results), query)
	return results, nil
}
