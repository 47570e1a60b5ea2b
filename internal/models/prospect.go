// internal/models/prospect.go
package models

// Prospect sources.
const (
	SourceSelfAcquired = "Self Acquired"
	SourceInherited    = "Inherited"
	SourceFinder       = "Finder"
)

var ProspectSources = []string{SourceSelfAcquired, SourceInherited, SourceFinder}

// IsProspectSource reports whether s is one of the enumerated sources.
func IsProspectSource(s string) bool {
	for _, src := range ProspectSources {
		if s == src {
			return true
		}
	}
	return false
}

type Prospect struct {
	Name          string  `json:"name"`
	Source        string  `json:"source"`
	WealthM       float64 `json:"wealth_m"`
	BestCaseNNMM  float64 `json:"best_nnm_m"`
	WorstCaseNNMM float64 `json:"worst_nnm_m"`
}

// ProspectDraft holds the inline form fields as typed by the user.
type ProspectDraft struct {
	Name     string `json:"name"`
	Source   string `json:"source"`
	Wealth   string `json:"wealth"`
	BestNNM  string `json:"best_nnm"`
	WorstNNM string `json:"worst_nnm"`
}

func (d ProspectDraft) IsEmpty() bool {
	return d == ProspectDraft{}
}
