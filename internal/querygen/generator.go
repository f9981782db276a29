// Package querygen expands a planner request into concrete search strings.
// An LLM does the expansion when one is configured; a deterministic template
// fallback guarantees the generator always returns exactly the requested
// number of queries, so an LLM outage degrades quality but never the batch.
package querygen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fundscout/internal/logging"
	"fundscout/internal/taxonomy"
	"fundscout/internal/types"
)

// LLMClient is the narrow completion surface the generator needs.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator expands query requests. Safe for concurrent use when the
// underlying client is.
type Generator struct {
	llm     LLMClient // nil means template-only
	timeout time.Duration
}

// New builds a generator. llm may be nil to run template-only.
func New(llm LLMClient, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{llm: llm, timeout: timeout}
}

// Generate returns exactly req.NumberOfQueries non-empty trimmed strings.
// It never returns an error: any LLM failure falls back to templates, and a
// short LLM answer is padded from the same templates.
func (g *Generator) Generate(ctx context.Context, req types.QueryRequest) []string {
	n := req.NumberOfQueries
	if n <= 0 {
		n = 3
	}

	keywords := GatherKeywords(req)
	templates := templateQueries(req, keywords, n)

	if g.llm == nil {
		return templates
	}

	lctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.llm.Complete(lctx, buildPrompt(req, keywords, n))
	if err != nil {
		logging.QueryGenError("llm expansion failed for %s/%s, using templates: %v", req.Category, req.Scope, err)
		return templates
	}

	queries := parseQueries(raw, n)
	if len(queries) < n {
		logging.QueryGen("llm returned %d/%d queries for %s/%s, padding from templates",
			len(queries), n, req.Category, req.Scope)
		for _, t := range templates {
			if len(queries) == n {
				break
			}
			if !contains(queries, t) {
				queries = append(queries, t)
			}
		}
		// Template collisions with the LLM output can still leave us short.
		for i := 0; len(queries) < n; i++ {
			queries = append(queries, fmt.Sprintf("%s variant %d", templates[i%len(templates)], i+2))
		}
	}
	return queries
}

// buildPrompt composes the expansion prompt in the style the backend expects:
// keyword strings for keyword engines, natural-language questions for
// AI-research engines.
func buildPrompt(req types.QueryRequest, keywords []string, n int) string {
	var b strings.Builder

	switch req.Backend.Style() {
	case taxonomy.StyleNatural:
		b.WriteString("Write natural-language research questions for finding funding sources.\n")
	default:
		b.WriteString("Write keyword-style web search queries for finding funding sources.\n")
	}

	fmt.Fprintf(&b, "Topic keywords: %s.\n", strings.Join(keywords, ", "))
	fmt.Fprintf(&b, "Geographic focus: %s.\n", req.Scope.Label())
	if req.UserLanguage != "" {
		fmt.Fprintf(&b, "Answer in %s.\n", req.UserLanguage)
	}
	if len(req.SearchLanguages) > 0 {
		fmt.Fprintf(&b, "Queries may use these languages: %s.\n", strings.Join(req.SearchLanguages, ", "))
	}
	fmt.Fprintf(&b, "Return exactly %d distinct queries, one per line, no numbering and no commentary.", n)
	return b.String()
}

// parseQueries extracts up to n queries from an LLM answer: one per line,
// with bullets, numbering and surrounding quotes stripped.
func parseQueries(raw string, n int) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789.) ")
		line = strings.Trim(line, `"'`)
		line = strings.TrimSpace(line)
		if line == "" || contains(out, line) {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}

// templateQueries is the deterministic fallback: fixed-size keyword windows
// joined with the scope label. Always returns exactly n queries, even with an
// empty keyword table.
func templateQueries(req types.QueryRequest, keywords []string, n int) []string {
	label := req.Scope.Label()
	base := strings.ReplaceAll(string(req.Category), "_", " ")

	out := make([]string, 0, n)
	for i := 0; len(out) < n; i++ {
		var q string
		if len(keywords) == 0 {
			q = fmt.Sprintf("%s funding %s", base, label)
		} else {
			lo := (i * 3) % len(keywords)
			hi := lo + 3
			if hi > len(keywords) {
				hi = len(keywords)
			}
			q = fmt.Sprintf("%s %s", strings.Join(keywords[lo:hi], " "), label)
		}
		if contains(out, q) {
			q = fmt.Sprintf("%s %d", q, i+1)
		}
		out = append(out, q)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
