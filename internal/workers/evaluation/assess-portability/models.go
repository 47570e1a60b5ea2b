// internal/workers/evaluation/assess-portability/models.go
package assessportability

import "candidate-evaluation-workers/internal/models"

// Input carries optional section updates. A section that is present replaces
// the stored one as a whole.
type Input struct {
	SessionID     string                      `json:"sessionId"`
	Profile       *models.CandidateProfile    `json:"profile,omitempty"`
	Book          *models.BookComposition     `json:"book,omitempty"`
	Geography     *models.GeographyProductMix `json:"geography,omitempty"`
	Relationships *models.RelationshipMetrics `json:"relationships,omitempty"`
}

type Output struct {
	SessionID       string                      `json:"sessionId"`
	Score           int                         `json:"score"`
	Verdict         string                      `json:"verdict"`
	Breakdown       models.PortabilityBreakdown `json:"breakdown"`
	RiskFlags       []string                    `json:"riskFlags"`
	Recommendations []string                    `json:"recommendations"`
	Notes           string                      `json:"notes"`
}
