// internal/workers/evaluation/simulate-business-plan/models.go
package simulatebusinessplan

import (
	"candidate-evaluation-workers/internal/engine/prospects"
	"candidate-evaluation-workers/internal/models"
)

// Input carries optional section updates. A section that is present replaces
// the stored one as a whole.
type Input struct {
	SessionID            string                   `json:"sessionId"`
	Profile              *models.CandidateProfile `json:"profile,omitempty"`
	Book                 *models.BookComposition  `json:"book,omitempty"`
	Projection           *models.NNMProjection    `json:"projection,omitempty"`
	PipelineTolerancePct *float64                 `json:"pipelineTolerancePct,omitempty"`
}

type Output struct {
	SessionID string                 `json:"sessionId"`
	Score     int                    `json:"score"`
	Verdict   string                 `json:"verdict"`
	Viability models.ViabilityResult `json:"viability"`
	Totals    prospects.Totals       `json:"totals"`
	Notes     string                 `json:"notes"`
}
