// internal/models/evaluation.go
package models

import "time"

// Shortlist values as stored by the dashboard sheet.
const (
	ShortlistYes = "YES"
	ShortlistNo  = "NO"
)

// EvaluationRecord is one row of the recruiter dashboard ledger.
type EvaluationRecord struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	Tool           string    `json:"tool"`
	Timestamp      time.Time `json:"timestamp"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Market         string    `json:"market"`
	MatchScore     int       `json:"match_score"`
	Verdict        string    `json:"verdict"`
	AISummary      string    `json:"ai_summary"`
	Tags           []string  `json:"tags"`
	CVLink         string    `json:"cv_link"`
	LinkedInSearch string    `json:"linkedin_search"`
	Shortlist      string    `json:"shortlist"`
}

func (r EvaluationRecord) IsShortlisted() bool {
	return r.Shortlist == ShortlistYes
}
