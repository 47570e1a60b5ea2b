// internal/models/candidate.go
package models

// Markets with a dedicated AUM threshold.
const (
	MarketCHOnshore = "CH Onshore"
)

// Product categories a banker can select in the geography/product step.
const (
	ProductLending               = "Lending"
	ProductAlternatives          = "Alternatives"
	ProductDiscretionaryMandates = "Discretionary Mandates"
	ProductAdvisory              = "Advisory"
	ProductStructuredProducts    = "Structured Products"
	ProductFXAndTreasury         = "FX & Treasury"
	ProductWealthPlanning        = "Wealth Planning"
	ProductExternalAssetManagers = "External Asset Managers"
)

type CandidateProfile struct {
	Name             string  `json:"candidate_name"`
	Email            string  `json:"candidate_email"`
	YearsExperience  float64 `json:"years_experience"`
	CurrentEmployer  string  `json:"current_employer"`
	CurrentRole      string  `json:"current_role"`
	CurrentMarket    string  `json:"current_market"`
	CurrentLocation  string  `json:"current_location"`
	BaseSalary       float64 `json:"base_salary"`
	LastBonus        float64 `json:"last_bonus"`
	InheritedBookPct float64 `json:"inherited_book_pct"`
}

// BookComposition describes size and shape of the banker's book. AvgClientSizeM
// and SelfAcquiredPct are derived and must not be set directly.
type BookComposition struct {
	CurrentAssetsM       float64 `json:"current_assets_m"`
	CurrentNumberClients int     `json:"current_number_clients"`
	AvgClientSizeM       float64 `json:"avg_client_size_m"`
	Top3ConcentrationPct float64 `json:"top_3_concentration_pct"`
	SelfAcquiredPct      float64 `json:"self_acquired_pct"`
}

type GeographyProductMix struct {
	BookingCentres      []string `json:"booking_centres"`
	CrossBorderLicenses int      `json:"cross_border_licenses"`
	Products            []string `json:"products"`
	AdvisoryPct         float64  `json:"advisory_pct"`
	DiscretionaryPct    float64  `json:"discretionary_pct"`
	LendingVolumeM      float64  `json:"lending_volume_m"`
	AlternativesPct     float64  `json:"alternatives_pct"`
}

// HasProduct reports whether the product category is selected.
func (g GeographyProductMix) HasProduct(product string) bool {
	for _, p := range g.Products {
		if p == product {
			return true
		}
	}
	return false
}

type RelationshipMetrics struct {
	AvgRelationshipYears      float64 `json:"avg_relationship_years"`
	ClientsKnownPersonallyPct float64 `json:"clients_known_personally_pct"`
	MultiGenerationalPct      float64 `json:"multi_generational_pct"`
	ClientReferralRatePct     float64 `json:"client_referral_rate_pct"`
	KYCPortability            int     `json:"kyc_portability"`
}

// NNMProjection holds the three yearly net-new-money assumptions (millions),
// the matching ROA percentages and projected client counts.
type NNMProjection struct {
	NNMYear1     float64 `json:"nnm_y1"`
	NNMYear2     float64 `json:"nnm_y2"`
	NNMYear3     float64 `json:"nnm_y3"`
	ROAPctYear1  float64 `json:"roa_y1"`
	ROAPctYear2  float64 `json:"roa_y2"`
	ROAPctYear3  float64 `json:"roa_y3"`
	ClientsYear1 int     `json:"clients_y1"`
	ClientsYear2 int     `json:"clients_y2"`
	ClientsYear3 int     `json:"clients_y3"`
}

func (p NNMProjection) TotalNNM() float64 {
	return p.NNMYear1 + p.NNMYear2 + p.NNMYear3
}

func (p NNMProjection) AverageROA() float64 {
	return (p.ROAPctYear1 + p.ROAPctYear2 + p.ROAPctYear3) / 3
}

// InputModel is everything a recruiter or candidate enters in either tool.
type InputModel struct {
	Profile       CandidateProfile    `json:"profile"`
	Book          BookComposition     `json:"book"`
	Geography     GeographyProductMix `json:"geography"`
	Relationships RelationshipMetrics `json:"relationships"`
	Projection    NNMProjection       `json:"projection"`
}

// Normalize re-establishes the derived fields: self-acquired share is the
// complement of the inherited share, average client size follows AUM and
// client count.
func (m InputModel) Normalize() InputModel {
	m.Book.SelfAcquiredPct = 100 - m.Profile.InheritedBookPct
	if m.Book.CurrentNumberClients > 0 {
		m.Book.AvgClientSizeM = m.Book.CurrentAssetsM / float64(m.Book.CurrentNumberClients)
	} else {
		m.Book.AvgClientSizeM = 0
	}
	return m
}
