// internal/engine/prefill/targets.go
package prefill

import (
	"candidate-evaluation-workers/internal/models"
)

type stringTarget struct {
	name  string
	paths []string
	email bool
	field func(*models.InputModel) *string
}

type numberTarget struct {
	name     string
	paths    []string
	millions bool
	// complement paths hold a percentage whose remainder to 100 is the
	// target value. They are tried after paths.
	complement []string
	field      func(*models.InputModel) *float64
}

type intTarget struct {
	name  string
	paths []string
	field func(*models.InputModel) *int
}

type listTarget struct {
	name  string
	paths []string
	field func(*models.InputModel) *[]string
}

// paths lists the lookup order for a field: the flat key first, then the key
// under each known section, then alternates.
func paths(key string, sections []string, alternates ...string) []string {
	out := []string{key}
	for _, s := range sections {
		out = append(out, s+"."+key)
	}
	return append(out, alternates...)
}

var (
	profileSections      = []string{"profile", "candidate"}
	bookSections         = []string{"book", "profile"}
	geographySections    = []string{"geography"}
	relationshipSections = []string{"relationships"}
	projectionSections   = []string{"projection", "business_plan"}
)

var stringTargets = []stringTarget{
	{
		name:  "candidate_name",
		paths: paths("candidate_name", profileSections, "name", "full_name", "fullName", "user.name", "profile.name", "candidate.name"),
		field: func(m *models.InputModel) *string { return &m.Profile.Name },
	},
	{
		name:  "candidate_email",
		paths: paths("candidate_email", profileSections, "email", "user.email", "profile.email", "candidate.email"),
		email: true,
		field: func(m *models.InputModel) *string { return &m.Profile.Email },
	},
	{
		name:  "current_employer",
		paths: paths("current_employer", profileSections, "employer", "currentEmployer"),
		field: func(m *models.InputModel) *string { return &m.Profile.CurrentEmployer },
	},
	{
		name:  "current_role",
		paths: paths("current_role", profileSections, "role", "title", "currentRole"),
		field: func(m *models.InputModel) *string { return &m.Profile.CurrentRole },
	},
	{
		name:  "current_market",
		paths: paths("current_market", profileSections, "market", "currentMarket"),
		field: func(m *models.InputModel) *string { return &m.Profile.CurrentMarket },
	},
	{
		name:  "current_location",
		paths: paths("current_location", profileSections, "location", "city", "currentLocation"),
		field: func(m *models.InputModel) *string { return &m.Profile.CurrentLocation },
	},
}

var numberTargets = []numberTarget{
	{
		name:  "years_experience",
		paths: paths("years_experience", profileSections, "experience", "yearsExperience"),
		field: func(m *models.InputModel) *float64 { return &m.Profile.YearsExperience },
	},
	{
		name:  "base_salary",
		paths: paths("base_salary", profileSections, "salary", "baseSalary"),
		field: func(m *models.InputModel) *float64 { return &m.Profile.BaseSalary },
	},
	{
		name:  "last_bonus",
		paths: paths("last_bonus", profileSections, "bonus", "lastBonus"),
		field: func(m *models.InputModel) *float64 { return &m.Profile.LastBonus },
	},
	{
		name:       "inherited_book_pct",
		paths:      paths("inherited_book_pct", profileSections, "book.inherited_book_pct", "inheritedBookPct"),
		complement: paths("self_acquired_pct", append(bookSections, "relationships"), "selfAcquiredPct"),
		field:      func(m *models.InputModel) *float64 { return &m.Profile.InheritedBookPct },
	},
	{
		name:     "current_assets_m",
		paths:    paths("current_assets_m", bookSections, "aum", "aum_m", "currentAssets", "book.aum"),
		millions: true,
		field:    func(m *models.InputModel) *float64 { return &m.Book.CurrentAssetsM },
	},
	{
		name:  "top_3_concentration_pct",
		paths: paths("top_3_concentration_pct", bookSections, "top3ConcentrationPct"),
		field: func(m *models.InputModel) *float64 { return &m.Book.Top3ConcentrationPct },
	},
	{
		name:  "advisory_pct",
		paths: paths("advisory_pct", geographySections),
		field: func(m *models.InputModel) *float64 { return &m.Geography.AdvisoryPct },
	},
	{
		name:  "discretionary_pct",
		paths: paths("discretionary_pct", geographySections),
		field: func(m *models.InputModel) *float64 { return &m.Geography.DiscretionaryPct },
	},
	{
		name:     "lending_volume_m",
		paths:    paths("lending_volume_m", geographySections, "lendingVolume"),
		millions: true,
		field:    func(m *models.InputModel) *float64 { return &m.Geography.LendingVolumeM },
	},
	{
		name:  "alternatives_pct",
		paths: paths("alternatives_pct", geographySections),
		field: func(m *models.InputModel) *float64 { return &m.Geography.AlternativesPct },
	},
	{
		name:  "avg_relationship_years",
		paths: paths("avg_relationship_years", relationshipSections),
		field: func(m *models.InputModel) *float64 { return &m.Relationships.AvgRelationshipYears },
	},
	{
		name:  "clients_known_personally_pct",
		paths: paths("clients_known_personally_pct", relationshipSections),
		field: func(m *models.InputModel) *float64 { return &m.Relationships.ClientsKnownPersonallyPct },
	},
	{
		name:  "multi_generational_pct",
		paths: paths("multi_generational_pct", relationshipSections),
		field: func(m *models.InputModel) *float64 { return &m.Relationships.MultiGenerationalPct },
	},
	{
		name:  "client_referral_rate_pct",
		paths: paths("client_referral_rate_pct", relationshipSections),
		field: func(m *models.InputModel) *float64 { return &m.Relationships.ClientReferralRatePct },
	},
	{
		name:     "nnm_y1",
		paths:    paths("nnm_y1", projectionSections, "nnmYear1"),
		millions: true,
		field:    func(m *models.InputModel) *float64 { return &m.Projection.NNMYear1 },
	},
	{
		name:     "nnm_y2",
		paths:    paths("nnm_y2", projectionSections, "nnmYear2"),
		millions: true,
		field:    func(m *models.InputModel) *float64 { return &m.Projection.NNMYear2 },
	},
	{
		name:     "nnm_y3",
		paths:    paths("nnm_y3", projectionSections, "nnmYear3"),
		millions: true,
		field:    func(m *models.InputModel) *float64 { return &m.Projection.NNMYear3 },
	},
	{
		name:  "roa_y1",
		paths: paths("roa_y1", projectionSections, "roaYear1"),
		field: func(m *models.InputModel) *float64 { return &m.Projection.ROAPctYear1 },
	},
	{
		name:  "roa_y2",
		paths: paths("roa_y2", projectionSections, "roaYear2"),
		field: func(m *models.InputModel) *float64 { return &m.Projection.ROAPctYear2 },
	},
	{
		name:  "roa_y3",
		paths: paths("roa_y3", projectionSections, "roaYear3"),
		field: func(m *models.InputModel) *float64 { return &m.Projection.ROAPctYear3 },
	},
}

var intTargets = []intTarget{
	{
		name:  "current_number_clients",
		paths: paths("current_number_clients", bookSections, "clients", "numberOfClients"),
		field: func(m *models.InputModel) *int { return &m.Book.CurrentNumberClients },
	},
	{
		name:  "cross_border_licenses",
		paths: paths("cross_border_licenses", geographySections),
		field: func(m *models.InputModel) *int { return &m.Geography.CrossBorderLicenses },
	},
	{
		name:  "kyc_portability",
		paths: paths("kyc_portability", relationshipSections),
		field: func(m *models.InputModel) *int { return &m.Relationships.KYCPortability },
	},
	{
		name:  "clients_y1",
		paths: paths("clients_y1", projectionSections),
		field: func(m *models.InputModel) *int { return &m.Projection.ClientsYear1 },
	},
	{
		name:  "clients_y2",
		paths: paths("clients_y2", projectionSections),
		field: func(m *models.InputModel) *int { return &m.Projection.ClientsYear2 },
	},
	{
		name:  "clients_y3",
		paths: paths("clients_y3", projectionSections),
		field: func(m *models.InputModel) *int { return &m.Projection.ClientsYear3 },
	},
}

var listTargets = []listTarget{
	{
		name:  "booking_centres",
		paths: paths("booking_centres", geographySections, "bookingCentres"),
		field: func(m *models.InputModel) *[]string { return &m.Geography.BookingCentres },
	},
	{
		name:  "products",
		paths: paths("products", geographySections),
		field: func(m *models.InputModel) *[]string { return &m.Geography.Products },
	},
}
