// Package export turns a scored session into a submission for the remote
// store and guards the save so only one runs per key at a time. A failed
// save is reported to the caller and never retried here.
package export

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"candidate-evaluation-workers/internal/engine/session"
	"candidate-evaluation-workers/internal/models"
)

var (
	// ErrInFlight is returned when a save for the same key is still running.
	ErrInFlight = errors.New("submission already in flight")
	// ErrNoResult means the session holds no score for the requested tool.
	ErrNoResult = errors.New("session has no result for tool")
)

// Persister stores one finished evaluation remotely.
type Persister interface {
	Save(ctx context.Context, s models.Submission) (*models.SubmissionReceipt, error)
}

// Report is the printable summary of one evaluation.
type Report struct {
	Submission models.Submission
	Result     models.ScoreResult
}

// ReportRenderer turns a report into a document such as a PDF. No renderer
// ships with this module; callers plug one in.
type ReportRenderer interface {
	Render(ctx context.Context, r Report) ([]byte, error)
}

// Compose builds the submission for tool from a session. The session must
// carry a result for that tool.
func Compose(st session.State, tool string, now time.Time) (models.Submission, error) {
	score, verdict, ok := ScoreOf(st.Result, tool)
	if !ok {
		return models.Submission{}, fmt.Errorf("%w: %s", ErrNoResult, tool)
	}

	notes := BuildNotes(tool, *st.Result, st.Totals())
	return models.Submission{
		SessionID:   st.ID,
		Tool:        tool,
		Input:       st.Input.Normalize(),
		Prospects:   st.Prospects,
		Score:       score,
		Verdict:     verdict,
		Notes:       notes,
		AINotes:     notes,
		SubmittedAt: now.UTC(),
	}, nil
}

// ScoreOf extracts the composite score and verdict of tool from r.
func ScoreOf(r *models.ScoreResult, tool string) (int, string, bool) {
	if r == nil {
		return 0, "", false
	}
	switch tool {
	case models.ToolBusinessPlan:
		if r.Viability != nil {
			return r.Viability.Score, r.Viability.Verdict, true
		}
	case models.ToolPortability:
		if r.Portability != nil {
			return r.Portability.Score, r.Portability.Verdict, true
		}
	}
	return 0, "", false
}

// Submitter allows one in-flight save per key.
type Submitter struct {
	persister Persister

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewSubmitter(p Persister) *Submitter {
	return &Submitter{persister: p, inflight: make(map[string]struct{})}
}

// Submit saves s under key. A second call with the same key while the first
// is running returns ErrInFlight without contacting the store.
func (s *Submitter) Submit(ctx context.Context, key string, sub models.Submission) (*models.SubmissionReceipt, error) {
	if !s.acquire(key) {
		return nil, fmt.Errorf("%w: %s", ErrInFlight, key)
	}
	defer s.release(key)

	return s.persister.Save(ctx, sub)
}

// InFlight reports whether a save for key is running.
func (s *Submitter) InFlight(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[key]
	return ok
}

func (s *Submitter) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *Submitter) release(key string) {
	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
}

// SubmissionKey identifies one tool's save for one session.
func SubmissionKey(sessionID, tool string) string {
	return sessionID + "/" + tool
}
