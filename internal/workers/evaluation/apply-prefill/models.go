// internal/workers/evaluation/apply-prefill/models.go
package applyprefill

import (
	"candidate-evaluation-workers/internal/engine/prefill"
	"candidate-evaluation-workers/internal/models"
)

type Input struct {
	SessionID string                 `json:"sessionId"`
	Payload   map[string]interface{} `json:"payload"`
}

type Output struct {
	SessionID string `json:"sessionId"`
	// PrefillApplied is true only for the call that performed the merge.
	PrefillApplied bool              `json:"prefillApplied"`
	AlreadyApplied bool              `json:"alreadyApplied"`
	Filled         []string          `json:"filled"`
	Discarded      []prefill.Discard `json:"discarded,omitempty"`
	Input          models.InputModel `json:"input"`
}
