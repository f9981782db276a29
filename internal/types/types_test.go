package types

import (
	"testing"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "plain host", url: "https://ec.europa.eu/research", want: "ec.europa.eu"},
		{name: "www stripped", url: "https://www.fondation.org/grants", want: "fondation.org"},
		{name: "case folded", url: "https://Grants.GOV/search", want: "grants.gov"},
		{name: "subdomains preserved", url: "https://erasmus-plus.ec.europa.eu/", want: "erasmus-plus.ec.europa.eu"},
		{name: "port ignored", url: "http://localhost:8080/x", want: "localhost"},
		{name: "trailing dot", url: "https://example.org./x", want: "example.org"},
		{name: "relative url", url: "/research/participants", wantErr: true},
		{name: "empty", url: "", wantErr: true},
		{name: "scheme only", url: "https://", wantErr: true},
		{name: "garbage", url: "ht!tp://%%", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractDomain(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ExtractDomain(%q) = %q, want error", tt.url, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractDomain(%q): %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("ExtractDomain(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestStatisticsDerivedTotals(t *testing.T) {
	s := ProcessingStatistics{
		TotalResults:          10,
		SpamTLDFiltered:       1,
		BlacklistedSkipped:    2,
		DuplicatesSkipped:     1,
		HighConfidenceCreated: 3,
		LowConfidenceCreated:  1,
		InvalidURLsSkipped:    1,
		TransientFailures:     1,
	}
	if got := s.TotalCandidatesCreated(); got != 4 {
		t.Errorf("TotalCandidatesCreated = %d, want 4", got)
	}
	if got := s.TotalProcessed(); got != 10 {
		t.Errorf("TotalProcessed = %d, want 10", got)
	}
}

func TestQueryRequestValidate(t *testing.T) {
	valid := QueryRequest{
		Category:        "scholarships",
		Scope:           "bulgaria",
		Backend:         "brave",
		NumberOfQueries: 3,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	missing := valid
	missing.Category = ""
	if err := missing.Validate(); err == nil {
		t.Error("request without category should be rejected")
	}

	badScope := valid
	badScope.Scope = "atlantis"
	if err := badScope.Validate(); err == nil {
		t.Error("request with unknown scope should be rejected")
	}

	zeroQueries := valid
	zeroQueries.NumberOfQueries = 0
	if err := zeroQueries.Validate(); err == nil {
		t.Error("request with zero queries should be rejected")
	}
}
