// Package viability scores a banker's business plan with a fixed rule list.
// Every rule adds a small integer delta and emits one reason, categorized as
// positive, negative or flag.
package viability

import (
	"fmt"
	"math"

	"candidate-evaluation-workers/internal/engine/projection"
	"candidate-evaluation-workers/internal/models"
)

const (
	DefaultPipelineTolerancePct = 10.0

	AUMThresholdM          = 200.0
	AUMThresholdCHOnshoreM = 250.0
	ThreeYearNNMTargetM    = 100.0
	MaxClients             = 80

	MinScore = -1
	MaxScore = 12
)

type Options struct {
	// PipelineTolerancePct is the accepted deviation between the prospect
	// best-case sum and year one NNM. Zero or negative means the default.
	PipelineTolerancePct float64
}

func (o Options) tolerance() float64 {
	if o.PipelineTolerancePct <= 0 {
		return DefaultPipelineTolerancePct
	}
	return o.PipelineTolerancePct
}

// Input carries everything the rules read. BestCaseSumM is the prospect
// ledger's best-case NNM total.
type Input struct {
	Model        models.InputModel
	BestCaseSumM float64
}

type scorecard struct {
	score     int
	positives []string
	negatives []string
	flags     []string
}

func (s *scorecard) positive(delta int, format string, args ...interface{}) {
	s.score += delta
	s.positives = append(s.positives, fmt.Sprintf(format, args...))
}

func (s *scorecard) negative(delta int, format string, args ...interface{}) {
	s.score += delta
	s.negatives = append(s.negatives, fmt.Sprintf(format, args...))
}

func (s *scorecard) flag(format string, args ...interface{}) {
	s.flags = append(s.flags, fmt.Sprintf(format, args...))
}

// Score runs every rule against in and returns the summed score, its verdict,
// the portability sub-score and the financial projection.
func Score(in Input, opts Options) models.ViabilityResult {
	m := in.Model.Normalize()
	card := &scorecard{
		positives: []string{},
		negatives: []string{},
		flags:     []string{},
	}

	scoreExperience(card, m.Profile.YearsExperience)
	scoreAUM(card, m.Book.CurrentAssetsM, m.Profile.CurrentMarket)
	scoreCompensation(card, m.Profile.BaseSalary, m.Profile.LastBonus)
	scoreROA(card, m.Projection.AverageROA())
	scoreClients(card, m.Book.CurrentNumberClients)
	scorePipeline(card, in.BestCaseSumM, m.Projection.NNMYear1, opts.tolerance())
	scoreThreeYearNNM(card, m.Projection.TotalNNM())

	return models.ViabilityResult{
		Score:               card.score,
		Verdict:             Verdict(card.score),
		Positives:           card.positives,
		Negatives:           card.negatives,
		Flags:               card.flags,
		PortabilitySubScore: SubScore(in, opts),
		Projection:          projection.Calculate(m.Projection, m.Profile.BaseSalary),
	}
}

// Verdict maps a summed score to its label.
func Verdict(score int) string {
	switch {
	case score >= 7:
		return models.VerdictStrongCandidate
	case score >= 4:
		return models.VerdictMediumPotential
	default:
		return models.VerdictWeakCandidate
	}
}

func scoreExperience(card *scorecard, years float64) {
	switch {
	case years >= 7:
		card.positive(2, "%s years of experience", num(years))
	case years == 6:
		card.positive(1, "6 years of experience")
	default:
		card.negative(0, "Only %s years of experience (6+ expected)", num(years))
	}
}

// AUMThreshold returns the minimum book size expected for market.
func AUMThreshold(market string) float64 {
	if market == models.MarketCHOnshore {
		return AUMThresholdCHOnshoreM
	}
	return AUMThresholdM
}

func scoreAUM(card *scorecard, aumM float64, market string) {
	threshold := AUMThreshold(market)
	if aumM >= threshold {
		card.positive(2, "AUM of %sM meets the %sM threshold", num(aumM), num(threshold))
		return
	}
	card.negative(0, "AUM of %sM is %sM short of the %sM threshold", num(aumM), num(threshold-aumM), num(threshold))
}

func scoreCompensation(card *scorecard, base, bonus float64) {
	switch {
	case base > 200_000 && bonus > 100_000:
		card.positive(2, "Compensation profile indicates a hunter")
	case base <= 150_000 && bonus <= 50_000:
		card.negative(-1, "Compensation profile suggests an inherited book with low portability")
	default:
		card.flag("Compensation profile is inconclusive")
	}
}

// ROA in (0.8, 0.9] falls between the two ladders and contributes nothing.
func scoreROA(card *scorecard, avg float64) {
	switch {
	case avg > 0.9:
		card.positive(2, "Average ROA of %s%% is above 0.9%%", num(avg))
	case avg >= 0.6 && avg <= 0.8:
		card.positive(1, "Average ROA of %s%% is within 0.6-0.8%%", num(avg))
	case avg < 0.6:
		card.negative(0, "Average ROA of %s%% is below 0.6%%", num(avg))
	}
}

func scoreClients(card *scorecard, clients int) {
	switch {
	case clients == 0:
		card.flag("Number of clients not provided")
	case clients > MaxClients:
		card.negative(0, "%d clients exceeds %d, suggesting a lower-tier segment", clients, MaxClients)
	default:
		card.positive(1, "Client load of %d is manageable", clients)
	}
}

// PipelineDeviation returns how far the prospect best-case sum is from year
// one NNM, as a percentage of year one NNM. A missing year one target with a
// non-empty pipeline counts as a 100% deviation.
func PipelineDeviation(bestSumM, nnmYear1 float64) float64 {
	if nnmYear1 <= 0 {
		if bestSumM == 0 && nnmYear1 == 0 {
			return 0
		}
		return 100
	}
	return math.Abs(bestSumM-nnmYear1) / nnmYear1 * 100
}

type pipelineCheck int

const (
	pipelineEmpty pipelineCheck = iota
	pipelineWithin
	pipelineOutside
)

func checkPipeline(bestSumM, nnmYear1, tolerance float64) (pipelineCheck, float64) {
	if bestSumM == 0 && nnmYear1 == 0 {
		return pipelineEmpty, 0
	}
	dev := PipelineDeviation(bestSumM, nnmYear1)
	if dev <= tolerance {
		return pipelineWithin, dev
	}
	return pipelineOutside, dev
}

func scorePipeline(card *scorecard, bestSumM, nnmYear1, tolerance float64) {
	check, dev := checkPipeline(bestSumM, nnmYear1, tolerance)
	switch check {
	case pipelineEmpty:
		card.flag("No prospect pipeline or year one NNM provided")
	case pipelineWithin:
		card.positive(1, "Prospect pipeline is consistent with year one NNM (%s%% deviation)", num(round1(dev)))
	default:
		card.negative(0, "Prospect pipeline deviates %s%% from year one NNM (tolerance %s%%)", num(round1(dev)), num(tolerance))
	}
}

func scoreThreeYearNNM(card *scorecard, totalM float64) {
	if totalM >= ThreeYearNNMTargetM {
		card.positive(2, "3-year NNM of %sM meets the %sM target", num(totalM), num(ThreeYearNNMTargetM))
		return
	}
	card.negative(0, "3-year NNM of %sM is %sM short of the %sM target", num(totalM), num(ThreeYearNNMTargetM-totalM), num(ThreeYearNNMTargetM))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// num prints a value with at most two decimals and no trailing zeros.
func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if s == "-0" {
		return "0"
	}
	return s
}
