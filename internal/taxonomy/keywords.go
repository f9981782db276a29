package taxonomy

// Static keyword tables for query composition. The query generator unions the
// keywords of every populated dimension of a request; the tables are closed
// mappings and must stay deterministic, so keep each list sorted by relevance,
// not alphabetically, and never generate entries at runtime.

var categoryKeywords = map[Category][]string{
	CategoryGovernmentGrants:       {"government grants", "public funding", "state grant program", "ministry funding"},
	CategoryPrivateFoundations:     {"foundation grants", "philanthropic funding", "charitable foundation", "grantmaking"},
	CategoryCorporateCSR:           {"corporate social responsibility", "corporate giving", "CSR program", "corporate foundation"},
	CategoryMultilateralFunds:      {"multilateral funding", "international development fund", "UN funding", "World Bank grants"},
	CategoryBilateralAid:           {"bilateral aid", "development cooperation", "country assistance program", "embassy grants"},
	CategoryEUPrograms:             {"EU funding", "European Commission grants", "Erasmus+", "Horizon Europe", "structural funds"},
	CategoryResearchFunding:        {"research grants", "research funding", "call for proposals", "scientific funding"},
	CategorySTEMEducation:          {"STEM education grants", "science education funding", "math education program", "robotics grants"},
	CategoryLanguageEducation:      {"language education grants", "language learning funding", "bilingual education program"},
	CategoryVocationalTraining:     {"vocational training grants", "TVET funding", "skills development program", "apprenticeship funding"},
	CategoryEarlyChildhood:         {"early childhood education grants", "preschool funding", "kindergarten program support"},
	CategoryHigherEducation:        {"higher education grants", "university funding", "academic program grants"},
	CategoryScholarships:           {"scholarships", "scholarship program", "tuition support", "student financial aid"},
	CategoryFellowships:            {"fellowships", "fellowship program", "postdoctoral funding"},
	CategoryTeacherDevelopment:     {"teacher training grants", "professional development funding", "educator fellowship"},
	CategorySchoolInfrastructure:   {"school infrastructure funding", "school construction grants", "classroom renovation"},
	CategoryDigitalInclusion:       {"digital inclusion grants", "connectivity funding", "digital divide program"},
	CategoryEdTech:                 {"edtech grants", "education technology funding", "e-learning program"},
	CategoryArtsCulture:            {"arts education grants", "cultural funding", "creative education program"},
	CategorySportsYouth:            {"youth sports grants", "physical education funding", "youth program grants"},
	CategoryCommunityDevelopment:   {"community development grants", "local initiative funding", "civil society grants"},
	CategoryRuralEducation:         {"rural education grants", "rural school funding", "remote learning support"},
	CategoryMinorityInclusion:      {"minority education grants", "inclusion funding", "Roma education program"},
	CategorySpecialNeeds:           {"special needs education grants", "inclusive education funding", "disability support program"},
	CategoryAdultLiteracy:          {"adult literacy grants", "adult education funding", "lifelong learning program"},
	CategoryLibraryPrograms:        {"library grants", "reading program funding", "literacy initiative"},
	CategoryEnvironmentalEducation: {"environmental education grants", "climate education funding", "sustainability program"},
	CategoryCivicEducation:         {"civic education grants", "democracy education funding", "citizenship program"},
	CategoryHealthEducation:        {"health education grants", "school health funding", "wellbeing program"},
	CategoryEmergencyEducation:     {"education in emergencies funding", "crisis education grants", "humanitarian education"},
}

var funderTypeKeywords = map[FunderType][]string{
	FunderGovernment:      {"ministry", "government agency", "national program", "public authority"},
	FunderFoundation:      {"foundation", "charitable trust", "endowment"},
	FunderCorporate:       {"corporate foundation", "company giving program"},
	FunderMultilateral:    {"UNESCO", "UNICEF", "World Bank", "UNDP", "international organization"},
	FunderBilateral:       {"USAID", "GIZ", "SIDA", "development agency", "embassy"},
	FunderNGO:             {"NGO", "nonprofit organization", "civil society organization"},
	FunderDevelopmentBank: {"development bank", "EBRD", "EIB", "investment facility"},
	FunderCommunityFund:   {"community foundation", "local fund", "giving circle"},
}

var mechanismKeywords = map[Mechanism][]string{
	MechanismGrant:       {"grant", "funding opportunity", "call for applications"},
	MechanismScholarship: {"scholarship", "bursary", "tuition waiver"},
	MechanismFellowship:  {"fellowship", "residency", "research stay"},
	MechanismPrize:       {"prize", "award", "competition"},
	MechanismTender:      {"tender", "request for proposals", "RFP", "procurement"},
	MechanismInKind:      {"in-kind support", "equipment donation", "technical assistance"},
}

var projectScaleKeywords = map[ProjectScale][]string{
	ScaleMicro:    {"micro-grant", "small grant", "seed funding"},
	ScaleSmall:    {"small project grant", "pilot funding"},
	ScaleMedium:   {"project grant", "program funding"},
	ScaleLarge:    {"large-scale funding", "institutional grant"},
	ScaleFlagship: {"flagship program", "multi-year funding", "strategic partnership"},
}

var beneficiaryKeywords = map[Beneficiary][]string{
	BeneficiaryStudents:      {"students", "pupils", "learners"},
	BeneficiaryTeachers:      {"teachers", "educators", "school staff"},
	BeneficiaryYouth:         {"youth", "young people", "adolescents"},
	BeneficiaryWomenGirls:    {"women", "girls", "gender equality"},
	BeneficiaryMinorities:    {"minorities", "marginalized communities"},
	BeneficiaryRural:         {"rural communities", "villages", "remote areas"},
	BeneficiaryDisabled:      {"people with disabilities", "accessibility", "inclusive"},
	BeneficiaryRefugees:      {"refugees", "displaced persons", "migrants"},
	BeneficiaryEarlyLearners: {"young children", "preschoolers", "early learners"},
}

var recipientTypeKeywords = map[RecipientType][]string{
	RecipientSchool:       {"for schools", "school eligibility"},
	RecipientUniversity:   {"for universities", "higher education institutions"},
	RecipientNonprofit:    {"for nonprofits", "NGO eligibility", "registered charities"},
	RecipientMunicipality: {"for municipalities", "local government eligibility"},
	RecipientIndividual:   {"for individuals", "individual applicants"},
	RecipientConsortium:   {"consortium", "partnership projects"},
}

// Keywords returns the keyword list for a category. The returned slice is
// shared; callers must not mutate it.
func (c Category) Keywords() []string { return categoryKeywords[c] }

// Keywords returns the keyword list for a funder type.
func (f FunderType) Keywords() []string { return funderTypeKeywords[f] }

// Keywords returns the keyword list for a mechanism.
func (m Mechanism) Keywords() []string { return mechanismKeywords[m] }

// Keywords returns the keyword list for a project scale.
func (p ProjectScale) Keywords() []string { return projectScaleKeywords[p] }

// Keywords returns the keyword list for a beneficiary group.
func (b Beneficiary) Keywords() []string { return beneficiaryKeywords[b] }

// Keywords returns the keyword list for a recipient type.
func (r RecipientType) Keywords() []string { return recipientTypeKeywords[r] }
