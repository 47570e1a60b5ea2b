// internal/workers/evaluation/notify-recruiter/handler.go
package notifyrecruiter

import (
	"context"
	"fmt"
	"strings"

	awsclient "candidate-evaluation-workers/internal/common/aws"
	"candidate-evaluation-workers/internal/common/camunda"
	apperrors "candidate-evaluation-workers/internal/common/errors"
	"candidate-evaluation-workers/internal/common/logger"
	"candidate-evaluation-workers/internal/common/metrics"
	"candidate-evaluation-workers/internal/models"
	"candidate-evaluation-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "notify-recruiter"
)

// Mailer sends one email and returns the provider message ID.
type Mailer interface {
	Send(ctx context.Context, email awsclient.Email) (string, error)
}

type Handler struct {
	config *Config
	mailer Mailer
	errs   *apperrors.ErrorHandler
	schema map[string]interface{}
	logger logger.Logger
}

func NewHandler(config *Config, mailer Mailer, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		mailer: mailer,
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
	switch {
	case !h.config.Enabled || h.mailer == nil:
		return h.skip(input, ReasonDisabled), nil
	case !h.config.notifies(input.Verdict):
		return h.skip(input, ReasonVerdict), nil
	case len(h.config.Recipients) == 0:
		return h.skip(input, ReasonNoRecipients), nil
	}

	tmpl, ok := templates[input.Tool]
	if !ok {
		return nil, apperrors.NewInputValidationFailedError(fmt.Sprintf("unknown tool %q", input.Tool))
	}
	data := templateData(input)

	messageID, err := h.mailer.Send(ctx, awsclient.Email{
		To:       h.config.Recipients,
		Subject:  renderTemplate(tmpl.subject, data),
		TextBody: renderTemplate(tmpl.body, data),
	})
	if err != nil {
		return nil, apperrors.NewNotificationSendFailedError("email", err)
	}

	h.logger.Info("recruiters notified", map[string]interface{}{
		"messageId":  messageID,
		"verdict":    input.Verdict,
		"recipients": len(h.config.Recipients),
	})
	return &Output{Notified: true, MessageID: messageID}, nil
}

func (h *Handler) skip(input *Input, reason string) *Output {
	h.logger.Debug("notification skipped", map[string]interface{}{
		"verdict": input.Verdict,
		"reason":  reason,
	})
	return &Output{Notified: false, Reason: reason}
}

type template struct {
	subject string
	body    string
}

var templates = map[string]template{
	models.ToolBusinessPlan: {
		subject: "{{verdict}}: {{candidateName}} (business plan {{score}}/12)",
		body: "{{candidateName}} completed the business plan simulator.\n\n" +
			"Score: {{score}}/12\nVerdict: {{verdict}}\nEmail: {{candidateEmail}}\nEvaluation: {{evaluationId}}\n",
	},
	models.ToolPortability: {
		subject: "Portability {{verdict}}: {{candidateName}} ({{score}}/100)",
		body: "{{candidateName}} completed the portability assessment.\n\n" +
			"Score: {{score}}/100\nTraffic light: {{verdict}}\nEmail: {{candidateEmail}}\nEvaluation: {{evaluationId}}\n",
	},
}

func templateData(input *Input) map[string]string {
	name := input.CandidateName
	if name == "" {
		name = "Unnamed candidate"
	}
	return map[string]string{
		"candidateName":  name,
		"candidateEmail": input.CandidateEmail,
		"score":          fmt.Sprintf("%d", input.Score),
		"verdict":        input.Verdict,
		"evaluationId":   input.EvaluationID,
	}
}

// renderTemplate replaces {{key}} placeholders. Unknown placeholders render
// as empty text.
func renderTemplate(tmpl string, data map[string]string) string {
	result := tmpl
	for k, v := range data {
		result = strings.ReplaceAll(result, "{{"+k+"}}", v)
	}
	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, timer *metrics.JobTimer, err error) {
	timer.Failed(string(apperrors.Normalize(err).Code))
	h.errs.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
