// internal/workers/evaluation/save-evaluation/models.go
package saveevaluation

type Input struct {
	SessionID      string   `json:"sessionId"`
	Tool           string   `json:"tool"`
	Role           string   `json:"role,omitempty"`
	CVLink         string   `json:"cvLink,omitempty"`
	LinkedInSearch string   `json:"linkedInSearch,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// Output feeds the notification step, so it repeats the candidate identity
// and the score that was saved.
type Output struct {
	EvaluationID   string `json:"evaluationId"`
	Saved          bool   `json:"saved"`
	Timestamp      string `json:"timestamp"`
	Tool           string `json:"tool"`
	Score          int    `json:"score"`
	Verdict        string `json:"verdict"`
	CandidateName  string `json:"candidateName"`
	CandidateEmail string `json:"candidateEmail"`
	Message        string `json:"message,omitempty"`
}
