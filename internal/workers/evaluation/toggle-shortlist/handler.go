// internal/workers/evaluation/toggle-shortlist/handler.go
package toggleshortlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"candidate-evaluation-workers/internal/common/camunda"
	"candidate-evaluation-workers/internal/common/database"
	apperrors "candidate-evaluation-workers/internal/common/errors"
	"candidate-evaluation-workers/internal/common/logger"
	"candidate-evaluation-workers/internal/common/metrics"
	"candidate-evaluation-workers/internal/dashboard"
	"candidate-evaluation-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "toggle-shortlist"
)

type Handler struct {
	config  *Config
	toggler *dashboard.Toggler
	repo    *database.EvaluationRepository
	errs    *apperrors.ErrorHandler
	schema  map[string]interface{}
	logger  logger.Logger
}

func NewHandler(config *Config, toggler *dashboard.Toggler, repo *database.EvaluationRepository, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		toggler: toggler,
		repo:    repo,
		errs:    apperrors.NewErrorHandler(l),
		schema:  registry.MustDefault().InputSchema(TaskType),
		logger:  l,
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
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(input.Timestamp))
	if err != nil {
		return nil, apperrors.NewInputValidationFailedError(fmt.Sprintf("timestamp: %v", err))
	}
	key := dashboard.Key{Email: strings.TrimSpace(input.Email), Timestamp: ts.UTC()}

	toggle, err := h.toggler.ToggleShortlist(ctx, key)
	if err != nil {
		if toggle.RolledBack {
			h.logger.Warn("shortlist change rolled back", map[string]interface{}{
				"email":     key.Email,
				"timestamp": input.Timestamp,
				"restored":  toggle.Value,
			})
		}
		return nil, classify(err, key, toggle)
	}

	h.repo.Audit(ctx, "shortlist_toggled", key.String(), map[string]interface{}{
		"email":    key.Email,
		"previous": toggle.Previous,
		"value":    toggle.Value,
	})
	h.logger.Info("shortlist toggled", map[string]interface{}{
		"email":    key.Email,
		"previous": toggle.Previous,
		"value":    toggle.Value,
	})

	return &Output{
		Email:     key.Email,
		Timestamp: key.Timestamp.Format(time.RFC3339),
		Shortlist: toggle.Value,
		Previous:  toggle.Previous,
	}, nil
}

func classify(err error, key dashboard.Key, toggle dashboard.Toggle) error {
	switch {
	case errors.Is(err, dashboard.ErrToggleInFlight):
		return apperrors.NewSubmissionInFlightError(key.String())
	case errors.Is(err, database.ErrEvaluationNotFound):
		return apperrors.NewEvaluationNotFoundError(err.Error())
	case errors.Is(err, dashboard.ErrToggleFailed):
		return apperrors.NewShortlistToggleFailedError(err).
			WithMetadata("rolledBack", toggle.RolledBack).
			WithMetadata("shortlist", toggle.Value)
	case errors.Is(err, database.ErrEvaluationStore):
		return apperrors.NewDatabaseConnectionFailedError(err)
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
