// internal/engine/session/recompute.go
package session

import (
	"candidate-evaluation-workers/internal/engine/portability"
	"candidate-evaluation-workers/internal/engine/prospects"
	"candidate-evaluation-workers/internal/engine/viability"
	"candidate-evaluation-workers/internal/models"
)

// Evaluation is everything derived from a session's inputs.
type Evaluation struct {
	Totals      prospects.Totals         `json:"totals"`
	Viability   models.ViabilityResult   `json:"viability"`
	Portability models.PortabilityResult `json:"portability"`
}

// Recompute runs the projection and both scorers against the current state.
func Recompute(s State) Evaluation {
	totals := prospects.Aggregate(s.Prospects)
	input := s.Input.Normalize()

	return Evaluation{
		Totals: totals,
		Viability: viability.Score(viability.Input{
			Model:        input,
			BestCaseSumM: totals.BestCaseNNMM,
		}, viability.Options{PipelineTolerancePct: s.PipelineTolerancePct}),
		Portability: portability.Score(input),
	}
}

// ScoreResult returns the evaluation for the requested tool. An unknown tool
// yields both results.
func (e Evaluation) ScoreResult(tool string) models.ScoreResult {
	v, p := e.Viability, e.Portability
	switch tool {
	case models.ToolBusinessPlan:
		return models.ScoreResult{Viability: &v}
	case models.ToolPortability:
		return models.ScoreResult{Portability: &p}
	default:
		return models.ScoreResult{Viability: &v, Portability: &p}
	}
}

// WithResult stores the evaluation of tool on the state.
func WithResult(s State, e Evaluation, tool string) State {
	r := e.ScoreResult(tool)
	s.Result = &r
	return s
}
