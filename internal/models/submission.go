// internal/models/submission.go
package models

import "time"

// Submission is what a finished evaluation sends to the remote store.
type Submission struct {
	SessionID   string     `json:"session_id"`
	Tool        string     `json:"tool"`
	Input       InputModel `json:"input"`
	Prospects   []Prospect `json:"prospects,omitempty"`
	Score       int        `json:"score"`
	Verdict     string     `json:"verdict"`
	Notes       string     `json:"notes"`
	AINotes     string     `json:"ai_notes"`
	SubmittedAt time.Time  `json:"submitted_at"`
}

// SubmissionReceipt is the remote store's answer. Only Success == true
// counts as saved.
type SubmissionReceipt struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ShortlistUpdate is the body of the shortlist toggle call.
type ShortlistUpdate struct {
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
	Value     string `json:"value"`
}
