// Package projection turns net-new-money and ROA assumptions into a three
// year revenue, cost and net margin projection.
package projection

import (
	"candidate-evaluation-workers/internal/models"
)

const (
	// FixedCostMultiplier loads base salary with social charges and overhead.
	FixedCostMultiplier = 1.25
	Years               = 3
)

// Calculate projects revenue as NNM (millions) times ROA (percent) for each
// year against a fixed cost that stays constant across the three years.
func Calculate(p models.NNMProjection, baseSalary float64) models.FinancialProjection {
	nnm := [Years]float64{p.NNMYear1, p.NNMYear2, p.NNMYear3}
	roa := [Years]float64{p.ROAPctYear1, p.ROAPctYear2, p.ROAPctYear3}
	fixedCost := FixedCost(baseSalary)

	result := models.FinancialProjection{
		Years:     make([]models.YearProjection, 0, Years),
		CostTotal: fixedCost * Years,
	}

	for i := 0; i < Years; i++ {
		revenue := Revenue(nnm[i], roa[i])
		net := revenue - fixedCost

		result.Years = append(result.Years, models.YearProjection{
			Year:      i + 1,
			NNMM:      nnm[i],
			ROAPct:    roa[i],
			Revenue:   revenue,
			FixedCost: fixedCost,
			NetMargin: net,
			Negative:  net < 0,
		})
		result.GrossTotal += revenue
		result.NetTotal += net
	}

	result.ProfitMarginPct = ProfitMargin(result.NetTotal, result.GrossTotal)
	result.NetNegative = result.NetTotal < 0
	return result
}

func Revenue(nnmM, roaPct float64) float64 {
	return nnmM * 1_000_000 * (roaPct / 100)
}

func FixedCost(baseSalary float64) float64 {
	return baseSalary * FixedCostMultiplier
}

// ProfitMargin returns net as a percentage of gross, or 0 when gross is not
// positive or net is zero.
func ProfitMargin(net, gross float64) float64 {
	if gross <= 0 || net == 0 {
		return 0
	}
	return net / gross * 100
}
