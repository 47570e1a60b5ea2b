// Package session holds one evaluation session as an explicit value. Every
// change goes through Apply, which returns a new State and never mutates the
// one passed in. Scores are computed on demand by Recompute.
package session

import (
	"time"

	"candidate-evaluation-workers/internal/engine/prefill"
	"candidate-evaluation-workers/internal/engine/prospects"
	"candidate-evaluation-workers/internal/engine/viability"
	"candidate-evaluation-workers/internal/models"
)

// NoEdit marks that no ledger entry is loaded into the draft.
const NoEdit = -1

type State struct {
	ID                   string                 `json:"id"`
	Input                models.InputModel      `json:"input"`
	Prospects            []models.Prospect      `json:"prospects"`
	Draft                models.ProspectDraft   `json:"draft"`
	EditingIndex         int                    `json:"editing_index"`
	PrefillApplied       bool                   `json:"prefill_applied"`
	PrefillReport        *prefill.Report        `json:"prefill_report,omitempty"`
	PipelineTolerancePct float64                `json:"pipeline_tolerance_pct"`
	LastImported         int                    `json:"last_imported"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
	Result               *models.ScoreResult    `json:"result,omitempty"`
	Metadata             map[string]interface{} `json:"metadata,omitempty"`
}

// New returns an empty session.
func New(id string, now time.Time) State {
	return State{
		ID:                   id,
		Prospects:            []models.Prospect{},
		EditingIndex:         NoEdit,
		PipelineTolerancePct: viability.DefaultPipelineTolerancePct,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// IsEditing reports whether the draft holds an existing ledger entry.
func (s State) IsEditing() bool {
	return prospects.InRange(s.Prospects, s.EditingIndex)
}

// Totals returns the prospect ledger aggregate.
func (s State) Totals() prospects.Totals {
	return prospects.Aggregate(s.Prospects)
}
