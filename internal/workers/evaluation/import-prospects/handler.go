// internal/workers/evaluation/import-prospects/handler.go
package importprospects

import (
	"context"
	"errors"

	"candidate-evaluation-workers/internal/common/camunda"
	"candidate-evaluation-workers/internal/common/database"
	apperrors "candidate-evaluation-workers/internal/common/errors"
	"candidate-evaluation-workers/internal/common/logger"
	"candidate-evaluation-workers/internal/common/metrics"
	"candidate-evaluation-workers/internal/engine/session"
	"candidate-evaluation-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "import-prospects"
)

type Handler struct {
	config   *Config
	sessions *database.SessionStore
	errs     *apperrors.ErrorHandler
	schema   map[string]interface{}
	logger   logger.Logger
}

func NewHandler(config *Config, sessions *database.SessionStore, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		sessions: sessions,
		errs:     apperrors.NewErrorHandler(l),
		schema:   registry.MustDefault().InputSchema(TaskType),
		logger:   l,
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

	next := session.Apply(st, session.ImportProspects{CSV: input.CSV})
	if err := h.sessions.Save(ctx, next); err != nil {
		return nil, classify(err, input.SessionID)
	}

	// A wrong header or an empty document imports nothing; the ledger is
	// left as it was.
	if next.LastImported == 0 {
		h.logger.Warn("csv contained no importable prospects", map[string]interface{}{"sessionId": next.ID})
	}

	totals := next.Totals()
	h.logger.Info("prospects imported", map[string]interface{}{
		"sessionId": next.ID,
		"imported":  next.LastImported,
		"count":     totals.Count,
	})
	return &Output{
		SessionID:     next.ID,
		Imported:      next.LastImported,
		ProspectCount: len(next.Prospects),
		Totals:        totals,
	}, nil
}

func classify(err error, sessionID string) error {
	switch {
	case errors.Is(err, database.ErrSessionNotFound):
		return apperrors.NewSessionNotFoundError(sessionID)
	case errors.Is(err, database.ErrSessionStore):
		return apperrors.NewSessionStoreFailedError(err)
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
