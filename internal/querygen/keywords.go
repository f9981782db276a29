package querygen

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"fundscout/internal/types"
)

// GatherKeywords unions the keyword tables of every populated dimension of
// the request. The result is deduplicated and sorted, so two requests with
// the same dimensions in any order produce the same keyword set.
func GatherKeywords(req types.QueryRequest) []string {
	seen := make(map[string]struct{})

	add := func(kws []string) {
		for _, kw := range kws {
			kw = strings.TrimSpace(strings.ToLower(kw))
			if kw != "" {
				seen[kw] = struct{}{}
			}
		}
	}

	add(req.Category.Keywords())
	add(req.FunderType.Keywords())
	add(req.Mechanism.Keywords())
	add(req.ProjectScale.Keywords())
	for _, b := range req.Beneficiaries {
		add(b.Keywords())
	}
	add(req.RecipientType.Keywords())

	out := lo.Keys(seen)
	sort.Strings(out)
	return out
}
