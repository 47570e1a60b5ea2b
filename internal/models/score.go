// internal/models/score.go
package models

// Plan viability verdicts.
const (
	VerdictStrongCandidate = "Strong Candidate"
	VerdictMediumPotential = "Medium Potential"
	VerdictWeakCandidate   = "Weak Candidate"
)

// Portability verdicts (traffic light).
const (
	VerdictGreen  = "green"
	VerdictYellow = "yellow"
	VerdictOrange = "orange"
	VerdictRed    = "red"
)

// Tools that produce a score.
const (
	ToolBusinessPlan = "business_plan"
	ToolPortability  = "portability"
)

type YearProjection struct {
	Year      int     `json:"year"`
	NNMM      float64 `json:"nnm_m"`
	ROAPct    float64 `json:"roa_pct"`
	Revenue   float64 `json:"revenue"`
	FixedCost float64 `json:"fixed_cost"`
	NetMargin float64 `json:"net_margin"`
	Negative  bool    `json:"negative"`
}

type FinancialProjection struct {
	Years           []YearProjection `json:"years"`
	GrossTotal      float64          `json:"gross_total"`
	CostTotal       float64          `json:"cost_total"`
	NetTotal        float64          `json:"net_total"`
	ProfitMarginPct float64          `json:"profit_margin_pct"`
	NetNegative     bool             `json:"net_negative"`
}

type ViabilityResult struct {
	Score               int                 `json:"score"`
	Verdict             string              `json:"verdict"`
	Positives           []string            `json:"positives"`
	Negatives           []string            `json:"negatives"`
	Flags               []string            `json:"flags"`
	PortabilitySubScore int                 `json:"portability_sub_score"`
	Projection          FinancialProjection `json:"projection"`
}

type PortabilityBreakdown struct {
	ClientQuality        int `json:"client_quality"`
	Regulatory           int `json:"regulatory"`
	ProductIndependence  int `json:"product_independence"`
	RelationshipStrength int `json:"relationship_strength"`
}

type PortabilityResult struct {
	Score           int                  `json:"score"`
	Verdict         string               `json:"verdict"`
	Breakdown       PortabilityBreakdown `json:"breakdown"`
	RiskFlags       []string             `json:"risk_flags"`
	Recommendations []string             `json:"recommendations"`
}

// ScoreResult pairs the outputs of both tools for one session. Either side
// may be nil when that tool has not been run.
type ScoreResult struct {
	Viability   *ViabilityResult   `json:"viability,omitempty"`
	Portability *PortabilityResult `json:"portability,omitempty"`
}
