// internal/engine/viability/subscore.go
package viability

import (
	"candidate-evaluation-workers/internal/engine/coerce"
)

const subScoreBase = 50

// SubScore is the business plan tool's own portability estimate (0-100),
// driven by inherited share, client size, ROA, pipeline realism and
// experience. It is unrelated to the dedicated portability assessment.
func SubScore(in Input, opts Options) int {
	m := in.Model.Normalize()
	score := subScoreBase

	switch inherited := m.Profile.InheritedBookPct; {
	case inherited <= 30:
		score += 15
	case inherited <= 50:
		score += 5
	default:
		score -= 15
	}

	if m.Book.CurrentNumberClients > 0 {
		switch avg := m.Book.AvgClientSizeM; {
		case avg >= 5:
			score += 10
		case avg >= 2:
			score += 5
		case avg < 1:
			score -= 5
		}
	}

	switch roa := m.Projection.AverageROA(); {
	case roa > 0.9:
		score += 10
	case roa >= 0.6:
		score += 5
	default:
		score -= 10
	}

	switch check, _ := checkPipeline(in.BestCaseSumM, m.Projection.NNMYear1, opts.tolerance()); check {
	case pipelineWithin:
		score += 10
	case pipelineOutside:
		score -= 10
	}

	switch years := m.Profile.YearsExperience; {
	case years >= 7:
		score += 5
	case years < 6:
		score -= 5
	}

	return coerce.Clamp(score, 0, 100)
}
