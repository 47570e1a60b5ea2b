// internal/engine/session/session_test.go
package session

import (
	"testing"
	"time"

	"candidate-evaluation-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seededState() State {
	return ApplyAll(New("sess-1", testNow),
		SetDraft{Draft: models.ProspectDraft{Name: "Alpha", Source: "Finder", Wealth: "40", BestNNM: "20", WorstNNM: "10"}},
		AddProspect{},
		SetDraft{Draft: models.ProspectDraft{Name: "Beta", Source: "Inherited", Wealth: "25", BestNNM: "12", WorstNNM: "5"}},
		AddProspect{},
		SetDraft{Draft: models.ProspectDraft{Name: "Gamma", Wealth: "60", BestNNM: "20", WorstNNM: "8"}},
		AddProspect{},
	)
}

func strongInput() []Action {
	return []Action{
		UpdateProfile{Profile: models.CandidateProfile{
			Name:            "Anna Keller",
			Email:           "anna.keller@bank.ch",
			YearsExperience: 8,
			CurrentMarket:   models.MarketCHOnshore,
			BaseSalary:      250000,
			LastBonus:       150000,
		}},
		UpdateBook{Book: models.BookComposition{CurrentAssetsM: 260, CurrentNumberClients: 40, Top3ConcentrationPct: 25}},
		UpdateProjection{Projection: models.NNMProjection{
			NNMYear1: 50, NNMYear2: 45, NNMYear3: 45,
			ROAPctYear1: 0.95, ROAPctYear2: 0.95, ROAPctYear3: 0.95,
		}},
	}
}

// ==========================
// State / Actions
// ==========================

func TestNew(t *testing.T) {
	s := New("sess-1", testNow)

	assert.Equal(t, "sess-1", s.ID)
	assert.Equal(t, NoEdit, s.EditingIndex)
	assert.Equal(t, 10.0, s.PipelineTolerancePct)
	assert.Empty(t, s.Prospects)
	assert.False(t, s.IsEditing())
}

func TestApply_MaintainsDerivedBookFields(t *testing.T) {
	s := ApplyAll(New("s", testNow),
		UpdateProfile{Profile: models.CandidateProfile{InheritedBookPct: 35}},
		UpdateBook{Book: models.BookComposition{CurrentAssetsM: 300, CurrentNumberClients: 60, SelfAcquiredPct: 1, AvgClientSizeM: 99}},
	)

	assert.Equal(t, 65.0, s.Input.Book.SelfAcquiredPct)
	assert.Equal(t, 5.0, s.Input.Book.AvgClientSizeM)
	assert.Equal(t, 100.0, s.Input.Book.SelfAcquiredPct+s.Input.Profile.InheritedBookPct)

	s = Apply(s, UpdateBook{Book: models.BookComposition{CurrentAssetsM: 300}})
	assert.Equal(t, 0.0, s.Input.Book.AvgClientSizeM)
	assert.Equal(t, 65.0, s.Input.Book.SelfAcquiredPct)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	before := seededState()
	_ = Apply(before, RemoveProspect{Index: 0})
	_ = Apply(before, UpdateProfile{Profile: models.CandidateProfile{Name: "X"}})

	assert.Len(t, before.Prospects, 3)
	assert.Equal(t, "Alpha", before.Prospects[0].Name)
	assert.Equal(t, "", before.Input.Profile.Name)
}

func TestApply_AddClearsDraft(t *testing.T) {
	s := seededState()

	require.Len(t, s.Prospects, 3)
	assert.True(t, s.Draft.IsEmpty())
	assert.Equal(t, models.SourceSelfAcquired, s.Prospects[2].Source)
}

func TestApply_EditAndUpdate(t *testing.T) {
	s := Apply(seededState(), EditProspect{Index: 1})
	require.True(t, s.IsEditing())
	assert.Equal(t, "Beta", s.Draft.Name)
	assert.Equal(t, "25", s.Draft.Wealth)

	draft := s.Draft
	draft.Wealth = "30"
	s = ApplyAll(s, SetDraft{Draft: draft}, UpdateProspect{})

	assert.Equal(t, 30.0, s.Prospects[1].WealthM)
	assert.Equal(t, NoEdit, s.EditingIndex)
	assert.True(t, s.Draft.IsEmpty())
}

func TestApply_EditOutOfRangeIsNoop(t *testing.T) {
	s := Apply(seededState(), EditProspect{Index: 7})
	assert.False(t, s.IsEditing())
	assert.True(t, s.Draft.IsEmpty())

	s = Apply(s, UpdateProspect{})
	assert.Equal(t, seededState().Prospects, s.Prospects)
}

func TestApply_RemoveEditedResetsDraft(t *testing.T) {
	s := ApplyAll(seededState(), EditProspect{Index: 1}, RemoveProspect{Index: 1})

	assert.Len(t, s.Prospects, 2)
	assert.Equal(t, NoEdit, s.EditingIndex)
	assert.True(t, s.Draft.IsEmpty())
}

func TestApply_RemoveBeforeEditedShiftsIndex(t *testing.T) {
	s := ApplyAll(seededState(), EditProspect{Index: 2}, RemoveProspect{Index: 0})

	assert.Equal(t, 1, s.EditingIndex)
	assert.Equal(t, "Gamma", s.Draft.Name)
	assert.Equal(t, "Gamma", s.Prospects[s.EditingIndex].Name)
}

func TestApply_RemoveOutOfRange(t *testing.T) {
	s := Apply(seededState(), RemoveProspect{Index: -1})
	assert.Len(t, s.Prospects, 3)
}

func TestApply_ImportProspects(t *testing.T) {
	csv := "Name,Source,Wealth (M),Best NNM (M),Worst NNM (M)\nDelta,Finder,10,4,2\n"

	s := Apply(seededState(), ImportProspects{CSV: csv})
	assert.Equal(t, 1, s.LastImported)
	assert.Len(t, s.Prospects, 4)

	s = Apply(s, ImportProspects{CSV: "Wrong,Header\nA,B\n"})
	assert.Equal(t, 0, s.LastImported)
	assert.Len(t, s.Prospects, 4)
}

func TestApply_PrefillOnce(t *testing.T) {
	s := Apply(New("s", testNow), ApplyPrefill{Payload: map[string]interface{}{
		"email":            "anna@bank.ch",
		"current_assets_m": 260.0,
	}})

	assert.True(t, s.PrefillApplied)
	require.NotNil(t, s.PrefillReport)
	assert.ElementsMatch(t, []string{"candidate_email", "current_assets_m"}, s.PrefillReport.Filled)

	again := Apply(s, ApplyPrefill{Payload: map[string]interface{}{"candidate_name": "Other"}})
	assert.Equal(t, s.Input, again.Input)
	assert.Equal(t, s.PrefillReport, again.PrefillReport)
}

func TestApply_RepeatedPrefillKeepsResult(t *testing.T) {
	s := Apply(seededState(), ApplyPrefill{Payload: map[string]interface{}{"candidate_name": "Anna"}})
	require.True(t, s.PrefillApplied)
	s = WithResult(s, Recompute(s), models.ToolBusinessPlan)
	require.NotNil(t, s.Result)

	again := Apply(s, ApplyPrefill{Payload: map[string]interface{}{"candidate_name": "Other"}})
	assert.Equal(t, s, again)
	assert.NotNil(t, again.Result)
}

func TestApply_SetPipelineTolerance(t *testing.T) {
	s := Apply(New("s", testNow), SetPipelineTolerance{Pct: 15})
	assert.Equal(t, 15.0, s.PipelineTolerancePct)

	s = Apply(s, SetPipelineTolerance{Pct: 0})
	assert.Equal(t, 15.0, s.PipelineTolerancePct)
}

func TestApply_ClearsStoredResult(t *testing.T) {
	s := ApplyAll(seededState(), strongInput()...)
	s = WithResult(s, Recompute(s), models.ToolBusinessPlan)
	require.NotNil(t, s.Result)

	s = Apply(s, SetDraft{Draft: models.ProspectDraft{Name: "Z"}})
	assert.Nil(t, s.Result)
}

// ==========================
// Recompute
// ==========================

func TestRecompute_StrongCandidate(t *testing.T) {
	// ledger best-case sum is 52
	s := ApplyAll(seededState(), strongInput()...)

	eval := Recompute(s)

	assert.Equal(t, 52.0, eval.Totals.BestCaseNNMM)
	assert.Equal(t, 12, eval.Viability.Score)
	assert.Equal(t, models.VerdictStrongCandidate, eval.Viability.Verdict)
	assert.Equal(t, 3, len(eval.Viability.Projection.Years))
	assert.Equal(t, 100, eval.Portability.Breakdown.ClientQuality)
}

func TestRecompute_UsesSessionTolerance(t *testing.T) {
	s := ApplyAll(seededState(), strongInput()...)
	s = Apply(s, UpdateProjection{Projection: models.NNMProjection{
		NNMYear1: 46, NNMYear2: 50, NNMYear3: 50,
		ROAPctYear1: 0.95, ROAPctYear2: 0.95, ROAPctYear3: 0.95,
	}})

	// 52 vs 46 deviates ~13%
	assert.Equal(t, 11, Recompute(s).Viability.Score)

	s = Apply(s, SetPipelineTolerance{Pct: 15})
	assert.Equal(t, 12, Recompute(s).Viability.Score)
}

func TestEvaluation_ScoreResult(t *testing.T) {
	eval := Recompute(seededState())

	bp := eval.ScoreResult(models.ToolBusinessPlan)
	assert.NotNil(t, bp.Viability)
	assert.Nil(t, bp.Portability)

	pt := eval.ScoreResult(models.ToolPortability)
	assert.Nil(t, pt.Viability)
	assert.NotNil(t, pt.Portability)

	both := eval.ScoreResult("")
	assert.NotNil(t, both.Viability)
	assert.NotNil(t, both.Portability)
}
