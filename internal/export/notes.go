// internal/export/notes.go
package export

import (
	"fmt"
	"strings"

	"candidate-evaluation-workers/internal/engine/coerce"
	"candidate-evaluation-workers/internal/engine/prospects"
	"candidate-evaluation-workers/internal/models"

	"github.com/shopspring/decimal"
)

// BuildNotes renders the free-text summary stored next to a submission.
func BuildNotes(tool string, r models.ScoreResult, totals prospects.Totals) string {
	var b strings.Builder
	switch tool {
	case models.ToolBusinessPlan:
		if r.Viability != nil {
			writeViability(&b, *r.Viability, totals)
		}
	case models.ToolPortability:
		if r.Portability != nil {
			writePortability(&b, *r.Portability)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeViability(b *strings.Builder, v models.ViabilityResult, totals prospects.Totals) {
	fmt.Fprintf(b, "Business Plan Score: %d (%s)\n", v.Score, v.Verdict)
	writeList(b, "Strengths", v.Positives)
	writeList(b, "Concerns", v.Negatives)
	writeList(b, "Flags", v.Flags)

	p := v.Projection
	fmt.Fprintf(b, "3-year projection: revenue %s, cost %s, net %s, margin %s%%\n",
		money(p.GrossTotal), money(p.CostTotal), money(p.NetTotal), decimal.NewFromFloat(p.ProfitMarginPct).StringFixed(1))
	if totals.Count > 0 {
		fmt.Fprintf(b, "Prospects: %d, wealth %sM, best case %sM, worst case %sM\n",
			totals.Count, coerce.Format(totals.WealthM), coerce.Format(totals.BestCaseNNMM), coerce.Format(totals.WorstCaseNNMM))
	}
	fmt.Fprintf(b, "Portability sub-score: %d/100\n", v.PortabilitySubScore)
}

func writePortability(b *strings.Builder, p models.PortabilityResult) {
	fmt.Fprintf(b, "Portability Score: %d/100 (%s)\n", p.Score, p.Verdict)
	fmt.Fprintf(b, "Client quality %d, regulatory %d, product independence %d, relationship strength %d\n",
		p.Breakdown.ClientQuality, p.Breakdown.Regulatory, p.Breakdown.ProductIndependence, p.Breakdown.RelationshipStrength)
	writeList(b, "Risk flags", p.RiskFlags)
	writeList(b, "Recommendations", p.Recommendations)
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(0)
}
