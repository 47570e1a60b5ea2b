// internal/workers/evaluation/simulate-business-plan/handler.go
package simulatebusinessplan

import (
	"context"
	"errors"
	"time"

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
	TaskType = "simulate-business-plan"
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
	fresh := false
	st, err := h.sessions.Load(ctx, input.SessionID)
	if errors.Is(err, database.ErrSessionNotFound) {
		st, err = session.New(input.SessionID, time.Now().UTC()), nil
		fresh = true
	}
	if err != nil {
		return nil, classify(err, input.SessionID)
	}

	st = session.ApplyAll(st, h.actions(input, fresh)...)
	eval := session.Recompute(st)
	st = session.WithResult(st, eval, models.ToolBusinessPlan)

	if err := h.sessions.Save(ctx, st); err != nil {
		return nil, classify(err, input.SessionID)
	}

	v := eval.Viability
	metrics.RecordEvaluation(models.ToolBusinessPlan, v.Verdict, v.Score)
	h.obs.RecordEvaluation(ctx, models.ToolBusinessPlan, v.Verdict)

	h.logger.Info("business plan scored", map[string]interface{}{
		"sessionId":   st.ID,
		"score":       v.Score,
		"verdict":     v.Verdict,
		"netNegative": v.Projection.NetNegative,
		"flags":       len(v.Flags),
	})

	return &Output{
		SessionID: st.ID,
		Score:     v.Score,
		Verdict:   v.Verdict,
		Viability: v,
		Totals:    eval.Totals,
		Notes:     export.BuildNotes(models.ToolBusinessPlan, *st.Result, eval.Totals),
	}, nil
}

// actions maps the job onto session actions. The configured tolerance only
// seeds new sessions; stored sessions keep theirs unless the job sets one.
func (h *Handler) actions(input *Input, fresh bool) []session.Action {
	var actions []session.Action
	if input.Profile != nil {
		actions = append(actions, session.UpdateProfile{Profile: *input.Profile})
	}
	if input.Book != nil {
		actions = append(actions, session.UpdateBook{Book: *input.Book})
	}
	if input.Projection != nil {
		actions = append(actions, session.UpdateProjection{Projection: *input.Projection})
	}

	switch {
	case input.PipelineTolerancePct != nil:
		actions = append(actions, session.SetPipelineTolerance{Pct: *input.PipelineTolerancePct})
	case fresh && h.config.PipelineTolerancePct > 0:
		actions = append(actions, session.SetPipelineTolerance{Pct: h.config.PipelineTolerancePct})
	}
	return actions
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
	code := string(apperrors.Normalize(err).Code)
	timer.Failed(code)
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.errs.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
