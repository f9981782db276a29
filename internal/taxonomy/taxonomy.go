// Package taxonomy defines the closed vocabulary the discovery pipeline plans
// and judges against: funding categories, geographic scopes, funder types,
// funding mechanisms, project scales, beneficiary groups, recipient types and
// search backend identifiers. All mapping tables in this package are
// compile-time data; nothing here touches the network or the store.
package taxonomy

// Category is a funding-search category. Every QueryRequest carries exactly
// one.
type Category string

const (
	CategoryGovernmentGrants       Category = "government_grants"
	CategoryPrivateFoundations     Category = "private_foundations"
	CategoryCorporateCSR           Category = "corporate_csr"
	CategoryMultilateralFunds      Category = "multilateral_funds"
	CategoryBilateralAid           Category = "bilateral_aid"
	CategoryEUPrograms             Category = "eu_programs"
	CategoryResearchFunding        Category = "research_funding"
	CategorySTEMEducation          Category = "stem_education"
	CategoryLanguageEducation      Category = "language_education"
	CategoryVocationalTraining     Category = "vocational_training"
	CategoryEarlyChildhood         Category = "early_childhood"
	CategoryHigherEducation        Category = "higher_education"
	CategoryScholarships           Category = "scholarships"
	CategoryFellowships            Category = "fellowships"
	CategoryTeacherDevelopment     Category = "teacher_development"
	CategorySchoolInfrastructure   Category = "school_infrastructure"
	CategoryDigitalInclusion       Category = "digital_inclusion"
	CategoryEdTech                 Category = "edtech"
	CategoryArtsCulture            Category = "arts_culture"
	CategorySportsYouth            Category = "sports_youth"
	CategoryCommunityDevelopment   Category = "community_development"
	CategoryRuralEducation         Category = "rural_education"
	CategoryMinorityInclusion      Category = "minority_inclusion"
	CategorySpecialNeeds           Category = "special_needs"
	CategoryAdultLiteracy          Category = "adult_literacy"
	CategoryLibraryPrograms        Category = "library_programs"
	CategoryEnvironmentalEducation Category = "environmental_education"
	CategoryCivicEducation         Category = "civic_education"
	CategoryHealthEducation        Category = "health_education"
	CategoryEmergencyEducation     Category = "emergency_education"
)

// FunderType classifies who operates the funding source.
type FunderType string

const (
	FunderGovernment      FunderType = "government"
	FunderFoundation      FunderType = "foundation"
	FunderCorporate       FunderType = "corporate"
	FunderMultilateral    FunderType = "multilateral"
	FunderBilateral       FunderType = "bilateral"
	FunderNGO             FunderType = "ngo"
	FunderDevelopmentBank FunderType = "development_bank"
	FunderCommunityFund   FunderType = "community_fund"
)

// Mechanism is how the money is delivered.
type Mechanism string

const (
	MechanismGrant       Mechanism = "grant"
	MechanismScholarship Mechanism = "scholarship"
	MechanismFellowship  Mechanism = "fellowship"
	MechanismPrize       Mechanism = "prize"
	MechanismTender      Mechanism = "tender"
	MechanismInKind      Mechanism = "in_kind"
)

// ProjectScale is the size band of fundable projects.
type ProjectScale string

const (
	ScaleMicro    ProjectScale = "micro"    // < 10k
	ScaleSmall    ProjectScale = "small"    // 10k - 100k
	ScaleMedium   ProjectScale = "medium"   // 100k - 1M
	ScaleLarge    ProjectScale = "large"    // > 1M
	ScaleFlagship ProjectScale = "flagship" // multi-year programs
)

// Beneficiary is a target population dimension. A request may carry several.
type Beneficiary string

const (
	BeneficiaryStudents      Beneficiary = "students"
	BeneficiaryTeachers      Beneficiary = "teachers"
	BeneficiaryYouth         Beneficiary = "youth"
	BeneficiaryWomenGirls    Beneficiary = "women_girls"
	BeneficiaryMinorities    Beneficiary = "minorities"
	BeneficiaryRural         Beneficiary = "rural_communities"
	BeneficiaryDisabled      Beneficiary = "people_with_disabilities"
	BeneficiaryRefugees      Beneficiary = "refugees"
	BeneficiaryEarlyLearners Beneficiary = "early_learners"
)

// RecipientType is the kind of organization expected to apply.
type RecipientType string

const (
	RecipientSchool       RecipientType = "school"
	RecipientUniversity   RecipientType = "university"
	RecipientNonprofit    RecipientType = "nonprofit"
	RecipientMunicipality RecipientType = "municipality"
	RecipientIndividual   RecipientType = "individual"
	RecipientConsortium   RecipientType = "consortium"
)

// Backend identifies a search backend implementation.
type Backend string

const (
	BackendBrave  Backend = "brave"  // keyword meta-search
	BackendTavily Backend = "tavily" // AI-prompted research
	BackendSerper Backend = "serper" // general meta-search
)

// AllBackends lists the backends in round-robin assignment order.
var AllBackends = []Backend{BackendBrave, BackendTavily, BackendSerper}

// PromptStyle tells the query generator what shape of query a backend wants.
type PromptStyle string

const (
	StyleKeyword PromptStyle = "keyword" // terse keyword strings
	StyleNatural PromptStyle = "natural" // full natural-language prompts
)

// Style returns the query style a backend expects. Tavily takes research
// prompts; the meta-search engines take keyword queries.
func (b Backend) Style() PromptStyle {
	if b == BackendTavily {
		return StyleNatural
	}
	return StyleKeyword
}

// Valid reports whether b is a known backend.
func (b Backend) Valid() bool {
	for _, known := range AllBackends {
		if b == known {
			return true
		}
	}
	return false
}
