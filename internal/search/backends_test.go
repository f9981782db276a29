package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundscout/internal/taxonomy"
)

func TestBraveSearchNormalizesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "stem grants bulgaria", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("count"))
		w.Write([]byte(`{"web":{"results":[
			{"title":"STEM Grants","url":"https://mon.gov.bg/grants","description":"Open call"},
			{"title":"No URL","url":"","description":"dropped"},
			{"title":"Another","url":"https://foundation.bg/f","description":""}
		]}}`))
	}))
	defer srv.Close()

	b := NewBraveBackend("test-key", srv.URL, time.Second)
	results, err := b.Search(context.Background(), "stem grants bulgaria", 5)
	require.NoError(t, err)
	require.Len(t, results, 2, "results without a URL are dropped")
	assert.Equal(t, "https://mon.gov.bg/grants", results[0].URL)
	assert.Equal(t, "STEM Grants", results[0].Title)
	assert.Equal(t, taxonomy.BackendBrave, results[0].Backend)
	assert.Equal(t, "stem grants bulgaria", results[0].Query)
	assert.Equal(t, 1, results[0].Position)
}

func TestSerperSearchNormalizesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "serper-key", r.Header.Get("X-API-KEY"))
		w.Write([]byte(`{"organic":[
			{"title":"Grant portal","link":"https://grants.example.org","snippet":"Apply now","position":1},
			{"title":"Second","link":"https://second.example.org","snippet":"","position":2}
		]}`))
	}))
	defer srv.Close()

	s := NewSerperBackend("serper-key", srv.URL, time.Second)
	results, err := s.Search(context.Background(), "education funding", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, taxonomy.BackendSerper, results[0].Backend)
	assert.Equal(t, "Apply now", results[0].Description)
	assert.Equal(t, 2, results[1].Position)
}

func TestTavilySearchNormalizesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"title":"Research answer","url":"https://undp.org/fund","content":"Funding overview"}
		]}`))
	}))
	defer srv.Close()

	tv := NewTavilyBackend("tavily-key", srv.URL, time.Second)
	results, err := tv.Search(context.Background(), "what funds STEM education in Bulgaria", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, taxonomy.BackendTavily, results[0].Backend)
	assert.Equal(t, "Funding overview", results[0].Description)
}

func TestBackendErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"rate limited", http.StatusTooManyRequests, true},
		{"server error", http.StatusBadGateway, true},
		{"auth error", http.StatusUnauthorized, false},
		{"bad request", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			b := NewBraveBackend("k", srv.URL, time.Second)
			_, err := b.Search(context.Background(), "q", 5)
			require.Error(t, err)
			assert.Equal(t, tt.transient, IsTransient(err))
		})
	}
}

func TestBackendTimeoutIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	b := NewBraveBackend("k", srv.URL, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := b.Search(ctx, "q", 5)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}
