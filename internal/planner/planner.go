// Package planner turns a calendar date into the night's batch of query
// requests. A fixed weekly rotation walks different slices of the funding
// taxonomy each night, so a full week covers much more ground than any single
// batch could. Planning is pure: same date and configuration, same batch.
package planner

import (
	"time"

	"fundscout/internal/logging"
	"fundscout/internal/taxonomy"
	"fundscout/internal/types"
)

// rotation is one weekday's slice of the taxonomy. The Cartesian product of
// funder types, categories and scopes becomes the night's candidate requests.
type rotation struct {
	funderTypes []taxonomy.FunderType
	categories  []taxonomy.Category
	scopes      []taxonomy.GeographicScope
	mechanism   taxonomy.Mechanism    // optional, fixed for the day
	scale       taxonomy.ProjectScale // optional, fixed for the day
}

// weeklyRotation is compile-time planner configuration.
var weeklyRotation = map[time.Weekday]rotation{
	time.Monday: {
		funderTypes: []taxonomy.FunderType{taxonomy.FunderGovernment},
		categories:  []taxonomy.Category{taxonomy.CategoryGovernmentGrants, taxonomy.CategorySTEMEducation, taxonomy.CategoryEUPrograms},
		scopes:      []taxonomy.GeographicScope{taxonomy.ScopeBulgaria, taxonomy.ScopeEU},
		mechanism:   taxonomy.MechanismGrant,
	},
	time.Tuesday: {
		funderTypes: []taxonomy.FunderType{taxonomy.FunderFoundation, taxonomy.FunderNGO},
		categories:  []taxonomy.Category{taxonomy.CategoryPrivateFoundations, taxonomy.CategoryLanguageEducation},
		scopes:      []taxonomy.GeographicScope{taxonomy.ScopeBulgaria, taxonomy.ScopeBalkans, taxonomy.ScopeGlobal},
	},
	time.Wednesday: {
		funderTypes: []taxonomy.FunderType{taxonomy.FunderMultilateral},
		categories:  []taxonomy.Category{taxonomy.CategoryMultilateralFunds, taxonomy.CategoryScholarships, taxonomy.CategoryFellowships},
		scopes:      []taxonomy.GeographicScope{taxonomy.ScopeBulgaria, taxonomy.ScopeEasternEurope, taxonomy.ScopeGlobal},
		mechanism:   taxonomy.MechanismScholarship,
	},
	time.Thursday: {
		funderTypes: []taxonomy.FunderType{taxonomy.FunderBilateral, taxonomy.FunderDevelopmentBank},
		categories:  []taxonomy.Category{taxonomy.CategorySchoolInfrastructure, taxonomy.CategoryBilateralAid, taxonomy.CategoryDigitalInclusion},
		scopes:      []taxonomy.GeographicScope{taxonomy.ScopeBulgaria, taxonomy.ScopeBalkans},
		scale:       taxonomy.ScaleLarge,
	},
	time.Friday: {
		funderTypes: []taxonomy.FunderType{taxonomy.FunderCorporate},
		categories:  []taxonomy.Category{taxonomy.CategoryCorporateCSR, taxonomy.CategoryVocationalTraining, taxonomy.CategoryEdTech},
		scopes:      []taxonomy.GeographicScope{taxonomy.ScopeBulgaria, taxonomy.ScopeEurope},
	},
	time.Saturday: {
		funderTypes: []taxonomy.FunderType{taxonomy.FunderCommunityFund, taxonomy.FunderFoundation},
		categories:  []taxonomy.Category{taxonomy.CategoryCommunityDevelopment, taxonomy.CategoryEarlyChildhood, taxonomy.CategoryRuralEducation},
		scopes:      []taxonomy.GeographicScope{taxonomy.ScopeBulgaria},
		scale:       taxonomy.ScaleSmall,
	},
	time.Sunday: {
		funderTypes: []taxonomy.FunderType{taxonomy.FunderFoundation, taxonomy.FunderMultilateral},
		categories:  []taxonomy.Category{taxonomy.CategoryArtsCulture, taxonomy.CategoryResearchFunding},
		scopes:      []taxonomy.GeographicScope{taxonomy.ScopeBulgaria, taxonomy.ScopeEU, taxonomy.ScopeGlobal},
	},
}

// Planner builds daily batches.
type Planner struct {
	queriesPerNight   int
	queriesPerRequest int
	backends          []taxonomy.Backend
}

// New builds a planner over the given backends. Backends are assigned to
// requests round-robin in the listed order; an empty list falls back to all
// known backends.
func New(queriesPerNight, queriesPerRequest int, backends []taxonomy.Backend) *Planner {
	if queriesPerNight <= 0 {
		queriesPerNight = 20
	}
	if queriesPerRequest <= 0 {
		queriesPerRequest = 3
	}
	if len(backends) == 0 {
		backends = taxonomy.AllBackends
	}
	return &Planner{
		queriesPerNight:   queriesPerNight,
		queriesPerRequest: queriesPerRequest,
		backends:          backends,
	}
}

// PlanDailyBatch emits the night's requests for the given date. Deterministic
// over (date, configuration); never fails. The batch is truncated so the
// total query count stays within queriesPerNight.
func (p *Planner) PlanDailyBatch(date time.Time) []types.QueryRequest {
	day := date.Weekday()
	rot := weeklyRotation[day]

	maxRequests := p.queriesPerNight / p.queriesPerRequest
	if maxRequests == 0 {
		maxRequests = 1
	}

	var batch []types.QueryRequest
	for _, ft := range rot.funderTypes {
		for _, cat := range rot.categories {
			for _, scope := range rot.scopes {
				if len(batch) == maxRequests {
					logging.PlannerDebug("rotation for %s truncated at %d requests", day, maxRequests)
					return p.finish(day, batch)
				}
				batch = append(batch, types.QueryRequest{
					Category:        cat,
					Scope:           scope,
					Backend:         p.backends[len(batch)%len(p.backends)],
					NumberOfQueries: p.queriesPerRequest,
					FunderType:      ft,
					Mechanism:       rot.mechanism,
					ProjectScale:    rot.scale,
				})
			}
		}
	}
	return p.finish(day, batch)
}

func (p *Planner) finish(day time.Weekday, batch []types.QueryRequest) []types.QueryRequest {
	logging.Planner("%s batch: %d requests, %d queries", day, len(batch), len(batch)*p.queriesPerRequest)
	return batch
}
