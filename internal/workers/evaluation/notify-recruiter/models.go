// internal/workers/evaluation/notify-recruiter/models.go
package notifyrecruiter

type Input struct {
	EvaluationID   string `json:"evaluationId,omitempty"`
	CandidateName  string `json:"candidateName"`
	CandidateEmail string `json:"candidateEmail,omitempty"`
	Tool           string `json:"tool"`
	Score          int    `json:"score"`
	Verdict        string `json:"verdict"`
}

type Output struct {
	Notified  bool   `json:"notified"`
	MessageID string `json:"messageId,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Skip reasons.
const (
	ReasonDisabled     = "notifications disabled"
	ReasonVerdict      = "verdict not configured for notification"
	ReasonNoRecipients = "no recruiter recipients configured"
)
