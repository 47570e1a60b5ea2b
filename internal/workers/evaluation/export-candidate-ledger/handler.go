// internal/workers/evaluation/export-candidate-ledger/handler.go
package exportcandidateledger

import (
	"context"

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
	TaskType = "export-candidate-ledger"
)

type Handler struct {
	config *Config
	repo   *database.EvaluationRepository
	errs   *apperrors.ErrorHandler
	schema map[string]interface{}
	logger logger.Logger
}

func NewHandler(config *Config, repo *database.EvaluationRepository, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		repo:   repo,
		errs:   apperrors.NewErrorHandler(l),
		schema: registry.MustDefault().InputSchema(TaskType),
		logger: l,
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
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := h.repo.List(ctx, database.EvaluationFilter{
		Email:         input.Email,
		ShortlistOnly: input.ShortlistOnly,
		Limit:         limit,
	})
	if err != nil {
		return nil, apperrors.NewLedgerExportFailedError(err)
	}

	h.logger.Info("candidate ledger exported", map[string]interface{}{
		"rows":          len(rows),
		"shortlistOnly": input.ShortlistOnly,
	})
	return &Output{CSV: dashboard.ExportCSV(rows), Rows: len(rows)}, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, timer *metrics.JobTimer, err error) {
	timer.Failed(string(apperrors.Normalize(err).Code))
	h.errs.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
