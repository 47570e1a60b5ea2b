// internal/workers/evaluation/notify-recruiter/handler_test.go
package notifyrecruiter

import (
	"context"
	"errors"
	"testing"

	awsclient "candidate-evaluation-workers/internal/common/aws"
	"candidate-evaluation-workers/internal/common/config"
	apperrors "candidate-evaluation-workers/internal/common/errors"
	"candidate-evaluation-workers/internal/common/logger"
	"candidate-evaluation-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeSES struct {
	calls []*ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("ses-42")}, nil
}

func notificationConfig() config.NotificationConfig {
	return config.NotificationConfig{
		Enabled:    true,
		FromEmail:  "talent@example.com",
		Recruiters: []string{"lead@example.com", "desk@example.com"},
		NotifyOn:   []string{models.VerdictStrongCandidate, models.VerdictGreen},
	}
}

func newTestHandler(t *testing.T, ncfg config.NotificationConfig, api *fakeSES) *Handler {
	t.Helper()
	mailer := awsclient.NewSESClientWithAPI(api, ncfg.FromEmail)
	return NewHandler(LoadConfig(config.WorkerConfig{}, ncfg), mailer, logger.NewTestLogger(t))
}

func strongInput() *Input {
	return &Input{
		EvaluationID:   "eval-1",
		CandidateName:  "Anna Keller",
		CandidateEmail: "anna.keller@bank.ch",
		Tool:           models.ToolBusinessPlan,
		Score:          12,
		Verdict:        models.VerdictStrongCandidate,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_SendsEmail(t *testing.T) {
	api := &fakeSES{}
	handler := newTestHandler(t, notificationConfig(), api)

	output, err := handler.Execute(context.Background(), strongInput())
	require.NoError(t, err)

	assert.True(t, output.Notified)
	assert.Equal(t, "ses-42", output.MessageID)
	require.Len(t, api.calls, 1)

	sent := api.calls[0]
	assert.Equal(t, "talent@example.com", aws.ToString(sent.Source))
	assert.Equal(t, []string{"lead@example.com", "desk@example.com"}, sent.Destination.ToAddresses)
	assert.Equal(t, "Strong Candidate: Anna Keller (business plan 12/12)", aws.ToString(sent.Message.Subject.Data))

	body := aws.ToString(sent.Message.Body.Text.Data)
	assert.Contains(t, body, "Score: 12/12")
	assert.Contains(t, body, "Email: anna.keller@bank.ch")
	assert.Contains(t, body, "Evaluation: eval-1")
	assert.NotContains(t, body, "{{")
}

func TestHandler_Execute_Portability(t *testing.T) {
	api := &fakeSES{}
	handler := newTestHandler(t, notificationConfig(), api)

	output, err := handler.Execute(context.Background(), &Input{
		CandidateName: "Marc Weber",
		Tool:          models.ToolPortability,
		Score:         92,
		Verdict:       models.VerdictGreen,
	})
	require.NoError(t, err)
	assert.True(t, output.Notified)

	require.Len(t, api.calls, 1)
	assert.Equal(t, "Portability green: Marc Weber (92/100)", aws.ToString(api.calls[0].Message.Subject.Data))
	assert.Contains(t, aws.ToString(api.calls[0].Message.Body.Text.Data), "Evaluation: \n")
}

func TestHandler_Execute_Skips(t *testing.T) {
	disabled := notificationConfig()
	disabled.Enabled = false

	noRecipients := notificationConfig()
	noRecipients.Recruiters = nil

	weak := strongInput()
	weak.Verdict = models.VerdictWeakCandidate

	tests := []struct {
		name   string
		cfg    config.NotificationConfig
		input  *Input
		reason string
	}{
		{name: "disabled", cfg: disabled, input: strongInput(), reason: ReasonDisabled},
		{name: "verdict not configured", cfg: notificationConfig(), input: weak, reason: ReasonVerdict},
		{name: "no recipients", cfg: noRecipients, input: strongInput(), reason: ReasonNoRecipients},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeSES{}
			handler := newTestHandler(t, tt.cfg, api)

			output, err := handler.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.False(t, output.Notified)
			assert.Equal(t, tt.reason, output.Reason)
			assert.Empty(t, api.calls)
		})
	}
}

func TestHandler_Execute_NoMailer(t *testing.T) {
	handler := NewHandler(LoadConfig(config.WorkerConfig{}, notificationConfig()), nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), strongInput())
	require.NoError(t, err)
	assert.Equal(t, ReasonDisabled, output.Reason)
}

// ==========================
// Error Scenario Tests
// ==========================

func TestHandler_Execute_SendFails(t *testing.T) {
	api := &fakeSES{err: errors.New("throttling: rate exceeded")}
	handler := newTestHandler(t, notificationConfig(), api)

	_, err := handler.Execute(context.Background(), strongInput())
	require.Error(t, err)

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "rate exceeded")
}

func TestRenderTemplate(t *testing.T) {
	out := renderTemplate("{{a}} and {{b}}{{missing}}!", map[string]string{"a": "x", "b": "y"})
	assert.Equal(t, "x and y!", out)

	assert.Equal(t, "open {{ brace", renderTemplate("open {{ brace", nil))
}
