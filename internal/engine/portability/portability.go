// Package portability estimates how much of a banker's book is expected to
// follow them to a new employer. Four dimensions are scored independently on
// 0-100 and combined with fixed weights.
package portability

import (
	"math"

	"candidate-evaluation-workers/internal/engine/coerce"
	"candidate-evaluation-workers/internal/models"
)

// Dimension weights. They sum to 1.
const (
	WeightClientQuality        = 0.30
	WeightRegulatory           = 0.25
	WeightProductIndependence  = 0.20
	WeightRelationshipStrength = 0.25
)

const (
	baseClientQuality        = 50
	baseRegulatory           = 40
	baseProductIndependence  = 60
	baseRelationshipStrength = 50
)

// Tier1BookingCentres are the booking centres that count as tier-1 hubs.
var Tier1BookingCentres = []string{"Geneva", "Zurich", "London", "Singapore", "Hong Kong", "New York"}

// Score computes the four dimension scores, the weighted overall score and
// its verdict, plus risk flags and recommendations.
func Score(in models.InputModel) models.PortabilityResult {
	m := in.Normalize()

	breakdown := models.PortabilityBreakdown{
		ClientQuality:        ClientQuality(m),
		Regulatory:           Regulatory(m),
		ProductIndependence:  ProductIndependence(m),
		RelationshipStrength: RelationshipStrength(m),
	}
	overall := Overall(breakdown)

	return models.PortabilityResult{
		Score:           overall,
		Verdict:         Verdict(overall),
		Breakdown:       breakdown,
		RiskFlags:       RiskFlags(m),
		Recommendations: Recommendations(m),
	}
}

// Overall is the weighted sum of the dimensions, rounded to the nearest
// integer. Dimensions are already clamped so the result stays in [0,100].
func Overall(b models.PortabilityBreakdown) int {
	weighted := WeightClientQuality*float64(b.ClientQuality) +
		WeightRegulatory*float64(b.Regulatory) +
		WeightProductIndependence*float64(b.ProductIndependence) +
		WeightRelationshipStrength*float64(b.RelationshipStrength)
	return coerce.Clamp(int(math.Round(weighted)), 0, 100)
}

func Verdict(score int) string {
	switch {
	case score >= 75:
		return models.VerdictGreen
	case score >= 60:
		return models.VerdictYellow
	case score >= 40:
		return models.VerdictOrange
	default:
		return models.VerdictRed
	}
}

func ClientQuality(m models.InputModel) int {
	score := baseClientQuality

	switch self := m.Book.SelfAcquiredPct; {
	case self >= 70:
		score += 20
	case self >= 50:
		score += 10
	default:
		score -= 10
	}

	switch avg := m.Book.AvgClientSizeM; {
	case avg >= 5:
		score += 15
	case avg >= 3:
		score += 10
	case avg >= 1.5:
		score += 5
	}

	switch top3 := m.Book.Top3ConcentrationPct; {
	case top3 <= 30:
		score += 15
	case top3 <= 45:
		score += 5
	default:
		score -= 10
	}

	return coerce.Clamp(score, 0, 100)
}

func Regulatory(m models.InputModel) int {
	score := baseRegulatory
	g := m.Geography

	if HasTier1Centre(g.BookingCentres) {
		score += 20
	}

	switch n := len(g.BookingCentres); {
	case n >= 3:
		score += 15
	case n >= 2:
		score += 10
	}

	score += ordinalBonus(g.CrossBorderLicenses, 20, 10, 5)
	score += ordinalBonus(m.Relationships.KYCPortability, 15, 10, 5)

	return coerce.Clamp(score, 0, 100)
}

func ordinalBonus(level, three, two, one int) int {
	switch {
	case level >= 3:
		return three
	case level == 2:
		return two
	case level == 1:
		return one
	default:
		return 0
	}
}

func ProductIndependence(m models.InputModel) int {
	score := baseProductIndependence
	g := m.Geography

	if g.HasProduct(models.ProductLending) {
		if LendingExposurePct(m) > 30 {
			score -= 20
		} else {
			score += 10
		}
	}
	if g.HasProduct(models.ProductAlternatives) {
		score += 10
	}
	if g.DiscretionaryPct >= 40 {
		score += 15
	}
	if g.AdvisoryPct >= 30 {
		score += 10
	}

	return coerce.Clamp(score, 0, 100)
}

func RelationshipStrength(m models.InputModel) int {
	score := baseRelationshipStrength
	r := m.Relationships

	switch {
	case r.AvgRelationshipYears >= 10:
		score += 20
	case r.AvgRelationshipYears >= 7:
		score += 15
	case r.AvgRelationshipYears >= 5:
		score += 10
	}

	switch {
	case r.ClientsKnownPersonallyPct >= 80:
		score += 15
	case r.ClientsKnownPersonallyPct >= 60:
		score += 10
	}

	switch {
	case r.MultiGenerationalPct >= 40:
		score += 10
	case r.MultiGenerationalPct >= 25:
		score += 5
	}

	switch {
	case r.ClientReferralRatePct >= 20:
		score += 15
	case r.ClientReferralRatePct >= 10:
		score += 10
	}

	return coerce.Clamp(score, 0, 100)
}

// LendingExposurePct is lending volume as a share of AUM, or 0 without AUM.
func LendingExposurePct(m models.InputModel) float64 {
	if m.Book.CurrentAssetsM <= 0 {
		return 0
	}
	return m.Geography.LendingVolumeM / m.Book.CurrentAssetsM * 100
}

func HasTier1Centre(centres []string) bool {
	for _, c := range centres {
		for _, t := range Tier1BookingCentres {
			if c == t {
				return true
			}
		}
	}
	return false
}
