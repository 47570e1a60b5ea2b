// internal/workers/evaluation/toggle-shortlist/models.go
package toggleshortlist

// Input addresses a dashboard row by candidate email and the RFC 3339
// timestamp of the evaluation.
type Input struct {
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
}

type Output struct {
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
	Shortlist string `json:"shortlist"`
	Previous  string `json:"previous"`
}
