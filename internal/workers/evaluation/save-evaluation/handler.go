// internal/workers/evaluation/save-evaluation/handler.go
package saveevaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"candidate-evaluation-workers/internal/common/camunda"
	"candidate-evaluation-workers/internal/common/database"
	apperrors "candidate-evaluation-workers/internal/common/errors"
	"candidate-evaluation-workers/internal/common/logger"
	"candidate-evaluation-workers/internal/common/metrics"
	"candidate-evaluation-workers/internal/common/sheets"
	"candidate-evaluation-workers/internal/common/validation"
	"candidate-evaluation-workers/internal/engine/session"
	"candidate-evaluation-workers/internal/export"
	"candidate-evaluation-workers/internal/models"
	"candidate-evaluation-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "save-evaluation"
)

type Handler struct {
	config    *Config
	sessions  *database.SessionStore
	submitter *export.Submitter
	repo      *database.EvaluationRepository
	errs      *apperrors.ErrorHandler
	schema    map[string]interface{}
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(
	config *Config,
	sessions *database.SessionStore,
	submitter *export.Submitter,
	repo *database.EvaluationRepository,
	log logger.Logger,
) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		sessions:  sessions,
		submitter: submitter,
		repo:      repo,
		errs:      apperrors.NewErrorHandler(l),
		schema:    registry.MustDefault().InputSchema(TaskType),
		logger:    l,
		now:       time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})
	timer := metrics.StartJob(TaskType)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.DecodeVariables(job.Variables, h.schema, &input); err != nil {
		h.failJob(ctx, client, job, timer, err)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, timer, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err})
		timer.Failed("COMPLETE_FAILED")
		return
	}
	timer.Completed()
	h.logger.Info("job completed successfully", map[string]interface{}{"jobKey": job.Key})
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	st, err := h.sessions.Load(ctx, input.SessionID)
	if err != nil {
		return nil, classify(err, input.SessionID)
	}

	// A session edited after its last scoring run has no stored result.
	if _, _, ok := export.ScoreOf(st.Result, input.Tool); !ok {
		st = session.WithResult(st, session.Recompute(st), input.Tool)
	}

	profile := st.Input.Profile
	if !validation.ValidateEmail(profile.Email) {
		return nil, apperrors.NewInputValidationFailedError(
			fmt.Sprintf("candidate email %q is missing or invalid", profile.Email))
	}

	// Dashboard rows are addressed by email and a second-precision timestamp.
	now := h.now().UTC().Truncate(time.Second)
	sub, err := export.Compose(st, input.Tool, now)
	if err != nil {
		return nil, classify(err, input.SessionID)
	}

	key := export.SubmissionKey(st.ID, input.Tool)
	receipt, err := h.submitter.Submit(ctx, key, sub)
	if err != nil {
		metrics.PersistenceAttempts.WithLabelValues(outcome(err)).Inc()
		return nil, classify(err, key)
	}
	metrics.PersistenceAttempts.WithLabelValues("saved").Inc()

	role := input.Role
	if role == "" {
		role = profile.CurrentRole
	}
	id, err := h.repo.Insert(ctx, models.EvaluationRecord{
		SessionID:      st.ID,
		Tool:           input.Tool,
		Timestamp:      sub.SubmittedAt,
		Name:           profile.Name,
		Email:          profile.Email,
		Role:           role,
		Market:         profile.CurrentMarket,
		MatchScore:     sub.Score,
		Verdict:        sub.Verdict,
		AISummary:      sub.AINotes,
		Tags:           input.Tags,
		CVLink:         input.CVLink,
		LinkedInSearch: input.LinkedInSearch,
	})
	if err != nil {
		h.logger.Error("remote save succeeded but dashboard row was not written", map[string]interface{}{
			"sessionId": st.ID,
			"error":     err,
		})
		return nil, apperrors.NewEvaluationRecordFailedError(err)
	}

	if err := h.sessions.Save(ctx, st); err != nil {
		h.logger.Warn("failed to store session after save", map[string]interface{}{"sessionId": st.ID, "error": err})
	}

	h.logger.Info("evaluation saved", map[string]interface{}{
		"sessionId":    st.ID,
		"evaluationId": id,
		"tool":         input.Tool,
		"score":        sub.Score,
		"verdict":      sub.Verdict,
	})

	return &Output{
		EvaluationID:   id,
		Saved:          true,
		Timestamp:      sub.SubmittedAt.Format(time.RFC3339),
		Tool:           input.Tool,
		Score:          sub.Score,
		Verdict:        sub.Verdict,
		CandidateName:  profile.Name,
		CandidateEmail: profile.Email,
		Message:        receipt.Message,
	}, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, export.ErrInFlight):
		return "in_flight"
	case errors.Is(err, sheets.ErrNotAcknowledged):
		return "rejected"
	default:
		return "failed"
	}
}

func classify(err error, id string) error {
	switch {
	case errors.Is(err, database.ErrSessionNotFound):
		return apperrors.NewSessionNotFoundError(id)
	case errors.Is(err, database.ErrSessionStore):
		return apperrors.NewSessionStoreFailedError(err)
	case errors.Is(err, export.ErrNoResult):
		return apperrors.NewInputValidationFailedError(err.Error())
	case errors.Is(err, export.ErrInFlight):
		return apperrors.NewSubmissionInFlightError(id)
	case errors.Is(err, sheets.ErrNotAcknowledged):
		return apperrors.NewPersistenceRejectedError(err.Error())
	case errors.Is(err, sheets.ErrRequestFailed):
		return apperrors.NewPersistenceFailedError(err)
	default:
		return err
	}
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, timer *metrics.JobTimer, err error) {
	timer.Failed(string(apperrors.Normalize(err).Code))
	h.errs.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
