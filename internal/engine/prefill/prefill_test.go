// internal/engine/prefill/prefill_test.go
package prefill

import (
	"testing"

	"candidate-evaluation-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func businessPlanPayload() map[string]interface{} {
	return map[string]interface{}{
		"candidate_name":   "Anna Keller",
		"user":             map[string]interface{}{"email": "anna.keller@bank.ch"},
		"years_experience": 8.0,
		"current_market":   "CH Onshore",
		"base_salary":      "250,000",
		"current_assets_m": 260_000_000.0,
		"book": map[string]interface{}{
			"current_number_clients": 40.0,
		},
		"projection": map[string]interface{}{
			"nnm_y1": 50.0,
			"roa_y1": 0.95,
		},
		"geography": map[string]interface{}{
			"booking_centres": []interface{}{"Geneva", " ", "Zurich"},
		},
	}
}

// ==========================
// Apply
// ==========================

func TestApply_FillsEmptyFields(t *testing.T) {
	out, report := Apply(models.InputModel{}, false, businessPlanPayload())

	assert.True(t, report.Applied)
	assert.Equal(t, "Anna Keller", out.Profile.Name)
	assert.Equal(t, "anna.keller@bank.ch", out.Profile.Email)
	assert.Equal(t, 8.0, out.Profile.YearsExperience)
	assert.Equal(t, "CH Onshore", out.Profile.CurrentMarket)
	assert.Equal(t, 250000.0, out.Profile.BaseSalary)
	assert.Equal(t, 260.0, out.Book.CurrentAssetsM)
	assert.Equal(t, 40, out.Book.CurrentNumberClients)
	assert.Equal(t, 6.5, out.Book.AvgClientSizeM)
	assert.Equal(t, 100.0, out.Book.SelfAcquiredPct)
	assert.Equal(t, 50.0, out.Projection.NNMYear1)
	assert.Equal(t, 0.95, out.Projection.ROAPctYear1)
	assert.Equal(t, []string{"Geneva", "Zurich"}, out.Geography.BookingCentres)
	assert.Contains(t, report.Filled, "candidate_email")
	assert.Contains(t, report.Filled, "current_assets_m")
	assert.Empty(t, report.Discarded)
}

func TestApply_NeverOverwritesUserInput(t *testing.T) {
	in := models.InputModel{
		Profile: models.CandidateProfile{
			Name:            "Typed Name",
			YearsExperience: 3,
		},
		Book: models.BookComposition{CurrentAssetsM: 120},
	}

	out, report := Apply(in, false, businessPlanPayload())

	assert.Equal(t, "Typed Name", out.Profile.Name)
	assert.Equal(t, 3.0, out.Profile.YearsExperience)
	assert.Equal(t, 120.0, out.Book.CurrentAssetsM)
	assert.NotContains(t, report.Filled, "candidate_name")
	assert.NotContains(t, report.Filled, "current_assets_m")
	assert.Equal(t, "anna.keller@bank.ch", out.Profile.Email)
}

func TestApply_KeyPathOrder(t *testing.T) {
	payload := map[string]interface{}{
		"email":   "",
		"user":    map[string]interface{}{"email": "first@example.com"},
		"profile": map[string]interface{}{"email": "second@example.com"},
	}

	out, _ := Apply(models.InputModel{}, false, payload)
	assert.Equal(t, "first@example.com", out.Profile.Email)
}

func TestApply_DiscardsInvalidEmail(t *testing.T) {
	payload := map[string]interface{}{"email": "not-an-email"}

	out, report := Apply(models.InputModel{}, false, payload)

	assert.Equal(t, "", out.Profile.Email)
	require.Len(t, report.Discarded, 1)
	assert.Equal(t, Discard{Field: "candidate_email", Path: "email", Reason: "invalid email"}, report.Discarded[0])
}

func TestApply_IsIdempotent(t *testing.T) {
	first, _ := Apply(models.InputModel{}, false, businessPlanPayload())

	second := map[string]interface{}{
		"candidate_name":   "Someone Else",
		"current_role":     "Managing Director",
		"current_assets_m": 999.0,
	}
	again, report := Apply(first, true, second)

	assert.False(t, report.Applied)
	assert.Empty(t, report.Filled)
	assert.Equal(t, first, again)
}

func TestApply_InheritedFromSelfAcquired(t *testing.T) {
	tests := []struct {
		name      string
		payload   map[string]interface{}
		inherited float64
		filled    bool
	}{
		{"flat key", map[string]interface{}{"self_acquired_pct": 80.0}, 20, true},
		{"book section", map[string]interface{}{"book": map[string]interface{}{"self_acquired_pct": "65"}}, 35, true},
		{"direct key wins", map[string]interface{}{"inherited_book_pct": 40.0, "self_acquired_pct": 90.0}, 40, true},
		{"fully self acquired", map[string]interface{}{"self_acquired_pct": 100.0}, 0, false},
		{"out of range", map[string]interface{}{"self_acquired_pct": 140.0}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, report := Apply(models.InputModel{}, false, tt.payload)
			assert.Equal(t, tt.inherited, out.Profile.InheritedBookPct)
			assert.Equal(t, tt.filled, contains(report.Filled, "inherited_book_pct"))
		})
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestApply_NilPayload(t *testing.T) {
	in := models.InputModel{Profile: models.CandidateProfile{InheritedBookPct: 30}}
	out, report := Apply(in, false, nil)

	assert.True(t, report.Applied)
	assert.Empty(t, report.Filled)
	assert.Equal(t, 70.0, out.Book.SelfAcquiredPct)
}

// ==========================
// Helpers
// ==========================

func TestToMillions(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{260, 260},
		{10_000, 10_000},
		{10_001, 0.010001},
		{260_000_000, 260},
		{0, 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, ToMillions(tt.in), 1e-12, "in=%v", tt.in)
	}
}

func TestLookup(t *testing.T) {
	payload := map[string]interface{}{
		"a": map[string]interface{}{"b": map[string]interface{}{"c": "deep"}},
		"n": nil,
		"s": "flat",
	}

	v, ok := Lookup(payload, "a.b.c")
	assert.True(t, ok)
	assert.Equal(t, "deep", v)

	_, ok = Lookup(payload, "a.x.c")
	assert.False(t, ok)
	_, ok = Lookup(payload, "s.inner")
	assert.False(t, ok)
	_, ok = Lookup(payload, "n")
	assert.False(t, ok)
}

func TestStringList(t *testing.T) {
	v, ok := stringList("Geneva, London,,")
	assert.True(t, ok)
	assert.Equal(t, []string{"Geneva", "London"}, v)

	_, ok = stringList([]interface{}{1.0, ""})
	assert.False(t, ok)
}
