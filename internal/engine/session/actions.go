// internal/engine/session/actions.go
package session

import (
	"candidate-evaluation-workers/internal/engine/prefill"
	"candidate-evaluation-workers/internal/engine/prospects"
	"candidate-evaluation-workers/internal/models"
)

// Action is a single change to a session.
type Action interface {
	isAction()
}

type UpdateProfile struct{ Profile models.CandidateProfile }

type UpdateBook struct{ Book models.BookComposition }

type UpdateGeography struct{ Geography models.GeographyProductMix }

type UpdateRelationships struct{ Relationships models.RelationshipMetrics }

type UpdateProjection struct{ Projection models.NNMProjection }

type SetDraft struct{ Draft models.ProspectDraft }

// AddProspect appends the current draft to the ledger.
type AddProspect struct{}

// EditProspect loads the entry at Index into the draft.
type EditProspect struct{ Index int }

// UpdateProspect writes the draft back to the entry being edited.
type UpdateProspect struct{}

// CancelEdit clears the draft without touching the ledger.
type CancelEdit struct{}

type RemoveProspect struct{ Index int }

type ImportProspects struct{ CSV string }

type ApplyPrefill struct{ Payload map[string]interface{} }

type SetPipelineTolerance struct{ Pct float64 }

func (UpdateProfile) isAction()        {}
func (UpdateBook) isAction()           {}
func (UpdateGeography) isAction()      {}
func (UpdateRelationships) isAction()  {}
func (UpdateProjection) isAction()     {}
func (SetDraft) isAction()             {}
func (AddProspect) isAction()          {}
func (EditProspect) isAction()         {}
func (UpdateProspect) isAction()       {}
func (CancelEdit) isAction()           {}
func (RemoveProspect) isAction()       {}
func (ImportProspects) isAction()      {}
func (ApplyPrefill) isAction()         {}
func (SetPipelineTolerance) isAction() {}

// Apply returns the state after action. Derived book fields are recomputed
// after every action and any stored result is dropped. A prefill that fills
// nothing leaves the state untouched.
func Apply(s State, action Action) State {
	next := s
	next.LastImported = 0

	switch a := action.(type) {
	case UpdateProfile:
		next.Input.Profile = a.Profile
	case UpdateBook:
		next.Input.Book = a.Book
	case UpdateGeography:
		next.Input.Geography = a.Geography
	case UpdateRelationships:
		next.Input.Relationships = a.Relationships
	case UpdateProjection:
		next.Input.Projection = a.Projection
	case SetDraft:
		next.Draft = a.Draft
	case AddProspect:
		next.Prospects, next.Draft = prospects.Add(s.Prospects, s.Draft)
		next.EditingIndex = NoEdit
	case EditProspect:
		if prospects.InRange(s.Prospects, a.Index) {
			next.Draft = prospects.ToDraft(s.Prospects[a.Index])
			next.EditingIndex = a.Index
		}
	case UpdateProspect:
		if s.IsEditing() {
			next.Prospects = prospects.Update(s.Prospects, s.EditingIndex, s.Draft)
			next.Draft = models.ProspectDraft{}
			next.EditingIndex = NoEdit
		}
	case CancelEdit:
		next.Draft = models.ProspectDraft{}
		next.EditingIndex = NoEdit
	case RemoveProspect:
		next = removeProspect(next, a.Index)
	case ImportProspects:
		next.Prospects, next.LastImported = prospects.ImportCSV(s.Prospects, a.CSV)
	case ApplyPrefill:
		input, report := prefill.Apply(s.Input, s.PrefillApplied, a.Payload)
		if !report.Applied {
			return s
		}
		next.Input = input
		next.PrefillApplied = true
		next.PrefillReport = &report
	case SetPipelineTolerance:
		if a.Pct > 0 {
			next.PipelineTolerancePct = a.Pct
		}
	default:
		return s
	}

	next.Input = next.Input.Normalize()
	next.Result = nil
	return next
}

// ApplyAll folds actions over s in order.
func ApplyAll(s State, actions ...Action) State {
	for _, a := range actions {
		s = Apply(s, a)
	}
	return s
}

func removeProspect(s State, index int) State {
	if !prospects.InRange(s.Prospects, index) {
		return s
	}
	s.Prospects = prospects.Remove(s.Prospects, index)
	switch {
	case index == s.EditingIndex:
		s.Draft = models.ProspectDraft{}
		s.EditingIndex = NoEdit
	case index < s.EditingIndex:
		s.EditingIndex--
	}
	return s
}
