// Package judge scores search-result metadata for funding relevance. The
// judge never touches the network: title, description and URL are everything
// it sees, which keeps a score cheap enough to run on every result before any
// crawling happens. Scoring is deterministic over compile-time tables.
package judge

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fundscout/internal/taxonomy"
	"fundscout/internal/types"
)

// Default spam TLD policy; overridable via configuration.
var DefaultSpamTLDs = []string{"xyz", "click", "top", "loan", "win", "gq", "cf"}

// Judge computes a scale-2 confidence score in 0.00..1.00 as the weighted
// mean of four sub-judges: funding vocabulary, domain credibility, geographic
// relevance and organization type.
type Judge struct {
	weights  [4]decimal.Decimal
	spamTLDs map[string]struct{}
}

// New builds a judge. weights are funding/credibility/geography/org-type in
// that order and must sum to 1.00 at scale 2; nil means equal weights.
// spamTLDs entries may carry a leading dot; nil means DefaultSpamTLDs.
func New(weights []float64, spamTLDs []string) (*Judge, error) {
	j := &Judge{spamTLDs: make(map[string]struct{})}

	if weights == nil {
		for i := range j.weights {
			j.weights[i] = decimal.RequireFromString("0.25")
		}
	} else {
		if len(weights) != 4 {
			return nil, fmt.Errorf("judge needs exactly 4 weights, got %d", len(weights))
		}
		sum := decimal.Zero
		for i, w := range weights {
			d := decimal.NewFromFloat(w).Round(2)
			if d.IsNegative() {
				return nil, fmt.Errorf("judge weight %d is negative: %v", i, w)
			}
			j.weights[i] = d
			sum = sum.Add(d)
		}
		if !sum.Equal(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("judge weights must sum to 1.00, got %s", sum)
		}
	}

	if spamTLDs == nil {
		spamTLDs = DefaultSpamTLDs
	}
	for _, tld := range spamTLDs {
		j.spamTLDs[strings.TrimPrefix(strings.ToLower(tld), ".")] = struct{}{}
	}
	return j, nil
}

// Verdict is the composite score plus the per-sub-judge breakdown, kept for
// debug logging and audit metadata.
type Verdict struct {
	Score       decimal.Decimal // scale 2, 0.00..1.00
	Funding     decimal.Decimal
	Credibility decimal.Decimal
	Geography   decimal.Decimal
	OrgType     decimal.Decimal
}

// Score is the common path: just the composite.
func (j *Judge) Score(res types.SearchResult) decimal.Decimal {
	return j.Evaluate(res).Score
}

// Evaluate runs all four sub-judges and combines them. Half-up rounding to
// scale 2 happens once, on the composite.
func (j *Judge) Evaluate(res types.SearchResult) Verdict {
	text := strings.ToLower(res.Title + " " + res.Description)
	domain, _ := types.ExtractDomain(res.URL)

	v := Verdict{
		Funding:     fundingScore(text),
		Credibility: j.credibilityScore(domain),
		Geography:   geographyScore(text, res.Request.Scope),
		OrgType:     orgTypeScore(text, res.Request.FunderType),
	}
	v.Score = v.Funding.Mul(j.weights[0]).
		Add(v.Credibility.Mul(j.weights[1])).
		Add(v.Geography.Mul(j.weights[2])).
		Add(v.OrgType.Mul(j.weights[3])).
		Round(2)
	return v
}

// IsSpamTLD is the hard gate the pipeline runs before deduplication and
// scoring. Operates on a normalized domain name.
func (j *Judge) IsSpamTLD(domain string) bool {
	i := strings.LastIndexByte(domain, '.')
	if i < 0 || i == len(domain)-1 {
		return false
	}
	_, spam := j.spamTLDs[domain[i+1:]]
	return spam
}

// strongFundingTerms are near-certain funding vocabulary; weakFundingTerms
// are supporting signals. Matches accumulate and cap at 1.00.
var strongFundingTerms = []string{
	"grant", "call for proposals", "scholarship", "fellowship", "bursary",
	"funding opportunit", "request for applications", "rfa", "tender",
}

var weakFundingTerms = []string{
	"funding", "award", "financial support", "donor", "apply by",
	"application deadline", "eligible", "stipend",
}

func fundingScore(text string) decimal.Decimal {
	score := decimal.Zero
	for _, term := range strongFundingTerms {
		if strings.Contains(text, term) {
			score = score.Add(decimal.RequireFromString("0.30"))
		}
	}
	for _, term := range weakFundingTerms {
		if strings.Contains(text, term) {
			score = score.Add(decimal.RequireFromString("0.15"))
		}
	}
	one := decimal.NewFromInt(1)
	if score.GreaterThan(one) {
		return one
	}
	return score
}

// Host suffixes of well-known funders and grantmakers. Medium tier: real
// organizations, but not institutional registries like .gov.
var knownFunderSuffixes = []string{
	"un.org", "undp.org", "unesco.org", "unicef.org", "worldbank.org",
	"ebrd.com", "americaforbulgaria.org", "opensocietyfoundations.org",
	"fordfoundation.org", "rockefellerfoundation.org", "mott.org",
	"velux.com", "bcause.bg",
}

func (j *Judge) credibilityScore(domain string) decimal.Decimal {
	if domain == "" {
		return decimal.RequireFromString("0.20")
	}
	if j.IsSpamTLD(domain) {
		return decimal.RequireFromString("0.05")
	}

	labels := strings.Split(domain, ".")
	tld := labels[len(labels)-1]
	switch tld {
	case "gov", "edu", "int", "mil":
		return decimal.RequireFromString("0.95")
	}
	// Country-code government and education registries: gov.bg, edu.rs, ...
	for _, l := range labels[:len(labels)-1] {
		if l == "gov" || l == "edu" {
			return decimal.RequireFromString("0.95")
		}
	}
	if domain == "europa.eu" || strings.HasSuffix(domain, ".europa.eu") {
		return decimal.RequireFromString("0.95")
	}

	for _, suffix := range knownFunderSuffixes {
		if domain == suffix || strings.HasSuffix(domain, "."+suffix) {
			return decimal.RequireFromString("0.75")
		}
	}
	if strings.Contains(domain, "foundation") || strings.Contains(domain, "fondation") {
		return decimal.RequireFromString("0.70")
	}

	return decimal.RequireFromString("0.50")
}

func geographyScore(text string, scope taxonomy.GeographicScope) decimal.Decimal {
	if !scope.Valid() {
		return decimal.RequireFromString("0.40")
	}
	if scope.MentionedIn(text) {
		return decimal.NewFromInt(1)
	}
	// Membership credit: an ancestor or descendant of the requested scope.
	for _, ancestor := range scope.Chain()[1:] {
		if ancestor.MentionedIn(text) {
			return decimal.RequireFromString("0.65")
		}
	}
	for _, other := range allScopes {
		if other == scope {
			continue
		}
		if scope.Contains(other) && other.MentionedIn(text) {
			return decimal.RequireFromString("0.65")
		}
	}
	// An unrelated geography is a worse sign than no geography at all.
	for _, other := range allScopes {
		if other.MentionedIn(text) {
			return decimal.RequireFromString("0.20")
		}
	}
	return decimal.RequireFromString("0.40")
}

var allScopes = []taxonomy.GeographicScope{
	taxonomy.ScopeBulgaria, taxonomy.ScopeRomania, taxonomy.ScopeGreece,
	taxonomy.ScopeSerbia, taxonomy.ScopeNorthMacedonia, taxonomy.ScopeBalkans,
	taxonomy.ScopeEasternEurope, taxonomy.ScopeEU, taxonomy.ScopeEurope,
	taxonomy.ScopeGlobal,
}

var funderIndicators = map[taxonomy.FunderType][]string{
	taxonomy.FunderGovernment:      {"ministry", "government", "agency", "national fund", "state "},
	taxonomy.FunderFoundation:      {"foundation", "trust", "endowment", "philanthrop"},
	taxonomy.FunderCorporate:       {"corporate", "company", "csr", "sponsorship"},
	taxonomy.FunderMultilateral:    {"united nations", "european commission", "commission", "world bank", "programme"},
	taxonomy.FunderBilateral:       {"embassy", "usaid", "development cooperation", "bilateral"},
	taxonomy.FunderNGO:             {"ngo", "nonprofit", "non-profit", "civil society"},
	taxonomy.FunderDevelopmentBank: {"development bank", "investment bank", "ebrd"},
	taxonomy.FunderCommunityFund:   {"community fund", "community foundation", "local fund"},
}

func orgTypeScore(text string, want taxonomy.FunderType) decimal.Decimal {
	if want != "" {
		for _, ind := range funderIndicators[want] {
			if strings.Contains(text, ind) {
				return decimal.NewFromInt(1)
			}
		}
		for other, inds := range funderIndicators {
			if other == want {
				continue
			}
			for _, ind := range inds {
				if strings.Contains(text, ind) {
					return decimal.RequireFromString("0.45")
				}
			}
		}
		return decimal.RequireFromString("0.35")
	}

	// No requested funder type: any funder indicator is a good sign.
	for _, inds := range funderIndicators {
		for _, ind := range inds {
			if strings.Contains(text, ind) {
				return decimal.RequireFromString("0.80")
			}
		}
	}
	return decimal.RequireFromString("0.40")
}
