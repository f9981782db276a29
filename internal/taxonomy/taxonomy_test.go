package taxonomy

import (
	"testing"
)

func TestEveryCategoryHasKeywords(t *testing.T) {
	categories := []Category{
		CategoryGovernmentGrants, CategoryPrivateFoundations, CategoryCorporateCSR,
		CategoryMultilateralFunds, CategoryBilateralAid, CategoryEUPrograms,
		CategoryResearchFunding, CategorySTEMEducation, CategoryLanguageEducation,
		CategoryVocationalTraining, CategoryEarlyChildhood, CategoryHigherEducation,
		CategoryScholarships, CategoryFellowships, CategoryTeacherDevelopment,
		CategorySchoolInfrastructure, CategoryDigitalInclusion, CategoryEdTech,
		CategoryArtsCulture, CategorySportsYouth, CategoryCommunityDevelopment,
		CategoryRuralEducation, CategoryMinorityInclusion, CategorySpecialNeeds,
		CategoryAdultLiteracy, CategoryLibraryPrograms, CategoryEnvironmentalEducation,
		CategoryCivicEducation, CategoryHealthEducation, CategoryEmergencyEducation,
	}
	for _, c := range categories {
		if len(c.Keywords()) == 0 {
			t.Errorf("category %s has no keywords", c)
		}
	}
}

func TestScopeChain(t *testing.T) {
	tests := []struct {
		name  string
		scope GeographicScope
		want  []GeographicScope
	}{
		{
			name:  "country chains through region and bloc",
			scope: ScopeBulgaria,
			want:  []GeographicScope{ScopeBulgaria, ScopeBalkans, ScopeEasternEurope, ScopeEurope, ScopeGlobal},
		},
		{
			name:  "global is its own chain",
			scope: ScopeGlobal,
			want:  []GeographicScope{ScopeGlobal},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.scope.Chain()
			if len(got) != len(tt.want) {
				t.Fatalf("chain length = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chain[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScopeContains(t *testing.T) {
	if !ScopeBalkans.Contains(ScopeBulgaria) {
		t.Error("balkans should contain bulgaria")
	}
	if !ScopeEurope.Contains(ScopeEU) {
		t.Error("europe should contain the EU")
	}
	if ScopeBulgaria.Contains(ScopeBalkans) {
		t.Error("a country must not contain its region")
	}
	if !ScopeGlobal.Contains(ScopeSerbia) {
		t.Error("global contains everything")
	}
}

func TestScopeMentionedIn(t *testing.T) {
	if !ScopeBulgaria.MentionedIn("grants for bulgarian schools") {
		t.Error("expected mention of bulgaria")
	}
	if ScopeRomania.MentionedIn("grants for bulgarian schools") {
		t.Error("unexpected mention of romania")
	}
}

func TestBackendStyle(t *testing.T) {
	if BackendTavily.Style() != StyleNatural {
		t.Errorf("tavily style = %s, want natural", BackendTavily.Style())
	}
	if BackendBrave.Style() != StyleKeyword {
		t.Errorf("brave style = %s, want keyword", BackendBrave.Style())
	}
	if !BackendSerper.Valid() {
		t.Error("serper should be a valid backend")
	}
	if Backend("bing").Valid() {
		t.Error("bing is not a configured backend")
	}
}
