// Package prospects implements the prospect ledger: an ordered list of named
// prospects with draft-based editing, CSV import/export and aggregate sums.
//
// Every function returns a new slice; the list passed in is never modified.
package prospects

import (
	"strings"

	"candidate-evaluation-workers/internal/engine/coerce"
	"candidate-evaluation-workers/internal/models"

	"github.com/shopspring/decimal"
)

// TotalLabel names the synthetic aggregate row shown below the ledger.
const TotalLabel = "TOTAL"

type Totals struct {
	Count         int     `json:"count"`
	WealthM       float64 `json:"wealth_m"`
	BestCaseNNMM  float64 `json:"best_nnm_m"`
	WorstCaseNNMM float64 `json:"worst_nnm_m"`
}

// TotalRow renders the totals as a display prospect.
func (t Totals) TotalRow() models.Prospect {
	return models.Prospect{
		Name:          TotalLabel,
		WealthM:       t.WealthM,
		BestCaseNNMM:  t.BestCaseNNMM,
		WorstCaseNNMM: t.WorstCaseNNMM,
	}
}

// Normalize builds a prospect from draft fields. Numbers that do not parse
// become 0 and an unknown source falls back to "Self Acquired".
func Normalize(d models.ProspectDraft) models.Prospect {
	return models.Prospect{
		Name:          d.Name,
		Source:        NormalizeSource(d.Source),
		WealthM:       coerce.Float(d.Wealth),
		BestCaseNNMM:  coerce.Float(d.BestNNM),
		WorstCaseNNMM: coerce.Float(d.WorstNNM),
	}
}

func NormalizeSource(s string) string {
	trimmed := strings.TrimSpace(s)
	for _, src := range models.ProspectSources {
		if strings.EqualFold(trimmed, src) {
			return src
		}
	}
	return models.SourceSelfAcquired
}

// ToDraft loads a prospect back into form fields for editing.
func ToDraft(p models.Prospect) models.ProspectDraft {
	return models.ProspectDraft{
		Name:     p.Name,
		Source:   p.Source,
		Wealth:   coerce.Format(p.WealthM),
		BestNNM:  coerce.Format(p.BestCaseNNMM),
		WorstNNM: coerce.Format(p.WorstCaseNNMM),
	}
}

// Add appends the normalized draft and returns the cleared draft.
func Add(list []models.Prospect, draft models.ProspectDraft) ([]models.Prospect, models.ProspectDraft) {
	out := clone(list, 1)
	out = append(out, Normalize(draft))
	return out, models.ProspectDraft{}
}

// Update replaces the entry at index. Out-of-range indexes are ignored.
func Update(list []models.Prospect, index int, draft models.ProspectDraft) []models.Prospect {
	if !InRange(list, index) {
		return list
	}
	out := clone(list, 0)
	out[index] = Normalize(draft)
	return out
}

// Remove deletes the entry at index. Out-of-range indexes are ignored.
func Remove(list []models.Prospect, index int) []models.Prospect {
	if !InRange(list, index) {
		return list
	}
	out := make([]models.Prospect, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...)
}

func InRange(list []models.Prospect, index int) bool {
	return index >= 0 && index < len(list)
}

// Aggregate sums wealth and both NNM cases across all entries. Sums are
// taken in decimal so that entered values like 0.1 + 0.2 add up exactly.
func Aggregate(list []models.Prospect) Totals {
	wealth, best, worst := decimal.Zero, decimal.Zero, decimal.Zero
	for _, p := range list {
		wealth = wealth.Add(decimal.NewFromFloat(p.WealthM))
		best = best.Add(decimal.NewFromFloat(p.BestCaseNNMM))
		worst = worst.Add(decimal.NewFromFloat(p.WorstCaseNNMM))
	}

	w, _ := wealth.Float64()
	b, _ := best.Float64()
	wc, _ := worst.Float64()
	return Totals{
		Count:         len(list),
		WealthM:       w,
		BestCaseNNMM:  b,
		WorstCaseNNMM: wc,
	}
}

// Query selects the filtered view shown in the ledger table.
type Query struct {
	Text   string `json:"text,omitempty"`
	Source string `json:"source,omitempty"`
}

// Filter keeps entries whose name contains Text (case-insensitive) and whose
// source equals Source when set.
func Filter(list []models.Prospect, q Query) []models.Prospect {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	source := strings.TrimSpace(q.Source)

	out := make([]models.Prospect, 0, len(list))
	for _, p := range list {
		if text != "" && !strings.Contains(strings.ToLower(p.Name), text) {
			continue
		}
		if source != "" && !strings.EqualFold(p.Source, source) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func clone(list []models.Prospect, extra int) []models.Prospect {
	out := make([]models.Prospect, len(list), len(list)+extra)
	copy(out, list)
	return out
}
