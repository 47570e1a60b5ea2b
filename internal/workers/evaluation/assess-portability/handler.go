// internal/workers/evaluation/assess-portability/handler.go
package assessportability

import (
	"context"
	"errors"

	"candidate-evaluation-workers/internal/common/camunda"
	"candidate-evaluation-workers/internal/common/database"
	apperrors "candidate-evaluation-workers/internal/common/errors"
	"candidate-evaluation-workers/internal/common/logger"
	"candidate-evaluation-workers/internal/common/metrics"
	"candidate-evaluation-workers/internal/common/observability"
	"candidate-evaluation-workers/internal/engine/session"
	"candidate-evaluation-workers/internal/export"
	"candidate-evaluation-workers/internal/models"
	"candidate-evaluation-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "assess-portability"
)

type Handler struct {
	config   *Config
	sessions *database.SessionStore
	obs      *observability.Observability
	errs     *apperrors.ErrorHandler
	schema   map[string]interface{}
	logger   logger.Logger
}

func NewHandler(config *Config, sessions *database.SessionStore, obs *observability.Observability, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		sessions: sessions,
		obs:      obs,
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
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.logger.Info("job completed successfully", map[string]interface{}{"jobKey": job.Key})
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	st, err := h.sessions.LoadOrNew(ctx, input.SessionID)
	if err != nil {
		return nil, classify(err, input.SessionID)
	}

	var actions []session.Action
	if input.Profile != nil {
		actions = append(actions, session.UpdateProfile{Profile: *input.Profile})
	}
	if input.Book != nil {
		actions = append(actions, session.UpdateBook{Book: *input.Book})
	}
	if input.Geography != nil {
		actions = append(actions, session.UpdateGeography{Geography: *input.Geography})
	}
	if input.Relationships != nil {
		actions = append(actions, session.UpdateRelationships{Relationships: *input.Relationships})
	}

	st = session.ApplyAll(st, actions...)
	eval := session.Recompute(st)
	st = session.WithResult(st, eval, models.ToolPortability)

	if err := h.sessions.Save(ctx, st); err != nil {
		return nil, classify(err, input.SessionID)
	}

	p := eval.Portability
	metrics.RecordEvaluation(models.ToolPortability, p.Verdict, p.Score)
	h.obs.RecordEvaluation(ctx, models.ToolPortability, p.Verdict)

	h.logger.Info("portability assessed", map[string]interface{}{
		"sessionId": st.ID,
		"score":     p.Score,
		"verdict":   p.Verdict,
		"riskFlags": len(p.RiskFlags),
	})

	return &Output{
		SessionID:       st.ID,
		Score:           p.Score,
		Verdict:         p.Verdict,
		Breakdown:       p.Breakdown,
		RiskFlags:       nonNil(p.RiskFlags),
		Recommendations: nonNil(p.Recommendations),
		Notes:           export.BuildNotes(models.ToolPortability, *st.Result, eval.Totals),
	}, nil
}

// nonNil keeps empty lists as [] in job variables.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
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
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.errs.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
