// internal/workers/evaluation/export-candidate-ledger/models.go
package exportcandidateledger

type Input struct {
	ShortlistOnly bool   `json:"shortlistOnly,omitempty"`
	Email         string `json:"email,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

type Output struct {
	CSV  string `json:"csv"`
	Rows int    `json:"rows"`
}
