// internal/engine/portability/advice.go
package portability

import (
	"candidate-evaluation-workers/internal/models"
)

// Risk flag texts.
const (
	FlagInheritedBook      = "More than 50% of the book is inherited"
	FlagConcentration      = "Top 3 clients hold more than 50% of AUM"
	FlagNoBookingCentres   = "No booking centres selected"
	FlagNoCrossBorder      = "No cross-border licences"
	FlagSmallClients       = "Average client size below 2M"
	FlagWeakKYC            = "KYC documentation is hard to port"
	FlagShortTenure        = "Average relationship tenure below 3 years"
	FlagLendingDependency  = "Lending exceeds 40% of AUM"
	RecSelfAcquired        = "Grow the self-acquired share of the book to 70% or more"
	RecConcentration       = "Reduce top 3 client concentration to 30% or less"
	RecBookingCentres      = "Add access to at least two booking centres"
	RecCrossBorder         = "Broaden cross-border licensing to cover two or more jurisdictions"
	RecClientSize          = "Focus acquisition on clients above 3M to lift average client size"
	RecKYC                 = "Keep KYC files complete and portable for most clients"
	RecTenure              = "Deepen relationships toward an average tenure of 7 years"
	RecLendingDiversify    = "Diversify revenue away from lending to below 30% of AUM"
	lendingRiskThreshold   = 40.0
	lendingAdviceThreshold = 30.0
)

// RiskFlags returns every acute risk that applies; checks are independent.
func RiskFlags(m models.InputModel) []string {
	flags := []string{}
	add := func(cond bool, flag string) {
		if cond {
			flags = append(flags, flag)
		}
	}

	add(m.Profile.InheritedBookPct > 50, FlagInheritedBook)
	add(m.Book.Top3ConcentrationPct > 50, FlagConcentration)
	add(len(m.Geography.BookingCentres) == 0, FlagNoBookingCentres)
	add(m.Geography.CrossBorderLicenses == 0, FlagNoCrossBorder)
	add(m.Book.AvgClientSizeM < 2, FlagSmallClients)
	add(m.Relationships.KYCPortability <= 1, FlagWeakKYC)
	add(m.Relationships.AvgRelationshipYears < 3, FlagShortTenure)
	add(LendingExposurePct(m) > lendingRiskThreshold, FlagLendingDependency)

	return flags
}

// Recommendations lists one improvement per dimension below its good
// threshold. They do not depend on which risk flags fired.
func Recommendations(m models.InputModel) []string {
	recs := []string{}
	add := func(cond bool, rec string) {
		if cond {
			recs = append(recs, rec)
		}
	}

	add(m.Book.SelfAcquiredPct < 70, RecSelfAcquired)
	add(m.Book.Top3ConcentrationPct > 30, RecConcentration)
	add(len(m.Geography.BookingCentres) < 2, RecBookingCentres)
	add(m.Geography.CrossBorderLicenses < 2, RecCrossBorder)
	add(m.Book.AvgClientSizeM < 3, RecClientSize)
	add(m.Relationships.KYCPortability < 2, RecKYC)
	add(m.Relationships.AvgRelationshipYears < 7, RecTenure)
	add(LendingExposurePct(m) > lendingAdviceThreshold, RecLendingDiversify)

	return recs
}
