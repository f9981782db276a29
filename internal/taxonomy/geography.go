package taxonomy

import "strings"

// GeographicScope is a node in the geographic hierarchy the pipeline targets.
// Scopes form a containment chain country -> region -> bloc -> global; the
// judge uses the chain to award partial credit for membership hits.
type GeographicScope string

const (
	ScopeBulgaria       GeographicScope = "bulgaria"
	ScopeRomania        GeographicScope = "romania"
	ScopeGreece         GeographicScope = "greece"
	ScopeSerbia         GeographicScope = "serbia"
	ScopeNorthMacedonia GeographicScope = "north_macedonia"
	ScopeBalkans        GeographicScope = "balkans"
	ScopeEasternEurope  GeographicScope = "eastern_europe"
	ScopeEU             GeographicScope = "european_union"
	ScopeEurope         GeographicScope = "europe"
	ScopeGlobal         GeographicScope = "global"
)

// scopeParent is the containment chain. Absent key means top of the chain.
var scopeParent = map[GeographicScope]GeographicScope{
	ScopeBulgaria:       ScopeBalkans,
	ScopeRomania:        ScopeBalkans,
	ScopeGreece:         ScopeBalkans,
	ScopeSerbia:         ScopeBalkans,
	ScopeNorthMacedonia: ScopeBalkans,
	ScopeBalkans:        ScopeEasternEurope,
	ScopeEasternEurope:  ScopeEurope,
	ScopeEU:             ScopeEurope,
	ScopeEurope:         ScopeGlobal,
}

var scopeLabels = map[GeographicScope]string{
	ScopeBulgaria:       "Bulgaria",
	ScopeRomania:        "Romania",
	ScopeGreece:         "Greece",
	ScopeSerbia:         "Serbia",
	ScopeNorthMacedonia: "North Macedonia",
	ScopeBalkans:        "the Balkans",
	ScopeEasternEurope:  "Eastern Europe",
	ScopeEU:             "the European Union",
	ScopeEurope:         "Europe",
	ScopeGlobal:         "worldwide",
}

// scopeMentions maps a scope to lower-cased strings whose presence in result
// metadata counts as a mention of that scope.
var scopeMentions = map[GeographicScope][]string{
	ScopeBulgaria:       {"bulgaria", "bulgarian", "sofia"},
	ScopeRomania:        {"romania", "romanian", "bucharest"},
	ScopeGreece:         {"greece", "greek", "athens"},
	ScopeSerbia:         {"serbia", "serbian", "belgrade"},
	ScopeNorthMacedonia: {"north macedonia", "macedonian", "skopje"},
	ScopeBalkans:        {"balkan", "balkans", "southeast europe", "south-east europe", "see region"},
	ScopeEasternEurope:  {"eastern europe", "eastern european", "cee", "central and eastern europe"},
	ScopeEU:             {"european union", "eu member", "eu countries", "erasmus", "horizon europe"},
	ScopeEurope:         {"europe", "european"},
	ScopeGlobal:         {"worldwide", "global", "international", "all countries"},
}

// Label returns the human-readable label used in prompts and query templates.
func (g GeographicScope) Label() string {
	if l, ok := scopeLabels[g]; ok {
		return l
	}
	return string(g)
}

// Chain returns g followed by its ancestors up to the top of the hierarchy.
func (g GeographicScope) Chain() []GeographicScope {
	chain := []GeographicScope{g}
	for {
		parent, ok := scopeParent[chain[len(chain)-1]]
		if !ok {
			return chain
		}
		chain = append(chain, parent)
	}
}

// Contains reports whether other is g itself or a descendant of g.
func (g GeographicScope) Contains(other GeographicScope) bool {
	for _, s := range other.Chain() {
		if s == g {
			return true
		}
	}
	return false
}

// MentionedIn reports whether the given lower-cased text mentions scope g.
func (g GeographicScope) MentionedIn(text string) bool {
	for _, m := range scopeMentions[g] {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// Valid reports whether g is a known scope.
func (g GeographicScope) Valid() bool {
	_, ok := scopeLabels[g]
	return ok
}
