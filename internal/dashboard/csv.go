// internal/dashboard/csv.go
package dashboard

import (
	"strconv"
	"strings"
	"time"

	"candidate-evaluation-workers/internal/engine/prospects"
	"candidate-evaluation-workers/internal/models"
)

// Headers is the dashboard export header row.
var Headers = []string{
	"Timestamp", "Name", "Email", "Role", "Market", "Match Score",
	"AI Summary", "Tags", "CV Link", "LinkedIn Search", "Shortlist",
}

// ExportCSV renders rows in the given order. Tags are joined with ", " and
// quoted like any other field containing a comma.
func ExportCSV(rows []models.EvaluationRecord) string {
	var b strings.Builder
	prospects.WriteRow(&b, Headers)
	for _, r := range rows {
		shortlist := r.Shortlist
		if shortlist == "" {
			shortlist = models.ShortlistNo
		}
		prospects.WriteRow(&b, []string{
			r.Timestamp.UTC().Format(time.RFC3339),
			r.Name,
			r.Email,
			r.Role,
			r.Market,
			strconv.Itoa(r.MatchScore),
			r.AISummary,
			strings.Join(r.Tags, ", "),
			r.CVLink,
			r.LinkedInSearch,
			shortlist,
		})
	}
	return b.String()
}
