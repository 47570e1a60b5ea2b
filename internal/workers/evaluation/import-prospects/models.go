// internal/workers/evaluation/import-prospects/models.go
package importprospects

import "candidate-evaluation-workers/internal/engine/prospects"

type Input struct {
	SessionID string `json:"sessionId"`
	CSV       string `json:"csv"`
}

type Output struct {
	SessionID     string           `json:"sessionId"`
	Imported      int              `json:"imported"`
	ProspectCount int              `json:"prospectCount"`
	Totals        prospects.Totals `json:"totals"`
}
