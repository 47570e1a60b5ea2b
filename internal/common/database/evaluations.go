// internal/common/database/evaluations.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"candidate-evaluation-workers/internal/models"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrEvaluationStore    = errors.New("evaluation store failure")
)

// EvaluationFilter narrows List results. Zero values mean no filter.
type EvaluationFilter struct {
	Email         string
	ShortlistOnly bool
	Limit         int
}

// EvaluationRepository stores dashboard rows in candidate_evaluations.
type EvaluationRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewEvaluationRepository(db *sql.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db, now: time.Now}
}

// Insert writes rec and returns its ID. An empty ID is replaced with a new
// UUID and an empty shortlist defaults to NO. The audit row is best effort.
func (r *EvaluationRepository) Insert(ctx context.Context, rec models.EvaluationRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Shortlist == "" {
		rec.Shortlist = models.ShortlistNo
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = r.now().UTC()
	}
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO candidate_evaluations (
			id, session_id, tool, evaluated_at, name, email, role, market,
			match_score, verdict, ai_summary, tags, cv_link, linkedin_search, shortlist
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		rec.ID, rec.SessionID, rec.Tool, rec.Timestamp, rec.Name, rec.Email, rec.Role, rec.Market,
		rec.MatchScore, rec.Verdict, rec.AISummary, pq.Array(tags), rec.CVLink, rec.LinkedInSearch, rec.Shortlist,
	)
	if err != nil {
		return "", fmt.Errorf("%w: insert evaluation: %v", ErrEvaluationStore, err)
	}

	r.audit(ctx, "evaluation_recorded", rec.ID, map[string]interface{}{
		"sessionId": rec.SessionID,
		"tool":      rec.Tool,
		"score":     rec.MatchScore,
		"verdict":   rec.Verdict,
	})
	return rec.ID, nil
}

// Shortlist returns the stored shortlist value of the row identified by
// email and timestamp.
func (r *EvaluationRepository) Shortlist(ctx context.Context, email string, ts time.Time) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `
		SELECT shortlist FROM candidate_evaluations
		WHERE email = $1 AND evaluated_at = $2`, email, ts).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s at %s", ErrEvaluationNotFound, email, ts.Format(time.RFC3339))
	}
	if err != nil {
		return "", fmt.Errorf("%w: read shortlist: %v", ErrEvaluationStore, err)
	}
	return value, nil
}

// SetShortlist writes value to the row identified by email and timestamp.
func (r *EvaluationRepository) SetShortlist(ctx context.Context, email string, ts time.Time, value string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE candidate_evaluations SET shortlist = $1
		WHERE email = $2 AND evaluated_at = $3`, value, email, ts)
	if err != nil {
		return fmt.Errorf("%w: update shortlist: %v", ErrEvaluationStore, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update shortlist: %v", ErrEvaluationStore, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s at %s", ErrEvaluationNotFound, email, ts.Format(time.RFC3339))
	}
	return nil
}

// List returns rows newest first.
func (r *EvaluationRepository) List(ctx context.Context, f EvaluationFilter) ([]models.EvaluationRecord, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Email != "" {
		args = append(args, f.Email)
		where = append(where, fmt.Sprintf("email = $%d", len(args)))
	}
	if f.ShortlistOnly {
		args = append(args, models.ShortlistYes)
		where = append(where, fmt.Sprintf("shortlist = $%d", len(args)))
	}

	query := `SELECT id, session_id, tool, evaluated_at, name, email, role, market,
		match_score, verdict, ai_summary, tags, cv_link, linkedin_search, shortlist
		FROM candidate_evaluations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY evaluated_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list evaluations: %v", ErrEvaluationStore, err)
	}
	defer rows.Close()

	records := []models.EvaluationRecord{}
	for rows.Next() {
		var (
			rec  models.EvaluationRecord
			tags pq.StringArray
		)
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.Tool, &rec.Timestamp, &rec.Name, &rec.Email, &rec.Role, &rec.Market,
			&rec.MatchScore, &rec.Verdict, &rec.AISummary, &tags, &rec.CVLink, &rec.LinkedInSearch, &rec.Shortlist,
		); err != nil {
			return nil, fmt.Errorf("%w: scan evaluation: %v", ErrEvaluationStore, err)
		}
		rec.Tags = []string(tags)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate evaluations: %v", ErrEvaluationStore, err)
	}
	return records, nil
}

// Audit records an event without failing the caller.
func (r *EvaluationRepository) Audit(ctx context.Context, eventType, resourceID string, details map[string]interface{}) {
	r.audit(ctx, eventType, resourceID, details)
}

func (r *EvaluationRepository) audit(ctx context.Context, eventType, resourceID string, details map[string]interface{}) {
	payload, err := json.Marshal(details)
	if err != nil {
		payload = []byte("{}")
	}
	// Audit failures never fail the operation that triggered them.
	_, _ = r.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		eventType, "candidate_evaluation", resourceID, payload, r.now().UTC(),
	)
}
