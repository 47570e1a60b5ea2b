// internal/common/errors/handler.go
package errors

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	json "github.com/goccy/go-json"
)

// ErrorHandler handles job errors with standardized error handling
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Action is what HandleJobError does with a failed job.
type Action int

const (
	// ActionThrow raises a BPMN error so the process can route it.
	ActionThrow Action = iota
	// ActionFail fails the job with retries left for the broker.
	ActionFail
)

// Decision is the outcome of classifying a job error.
type Decision struct {
	Action  Action
	Retries int
	Error   *BPMNError
	Source  *StandardError
}

// Decide classifies err for a job that has jobRetries attempts remaining.
func Decide(err error, jobRetries int32) Decision {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	retries := bpmnErr.Retries
	if retries > 0 && jobRetries > 0 {
		if int(jobRetries) < retries {
			retries = int(jobRetries)
		}
		return Decision{Action: ActionFail, Retries: retries, Error: bpmnErr, Source: stdErr}
	}
	return Decision{Action: ActionThrow, Error: bpmnErr, Source: stdErr}
}

// HandleJobError handles any error in a worker job
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	d := Decide(err, job.Retries)
	h.logError(job, d)

	if d.Action == ActionFail {
		h.failJobWithRetries(ctx, client, job, d.Error, d.Retries)
		return
	}
	h.throwBPMNError(ctx, client, job, d.Error)
}

// Normalize ensures we always have a StandardError
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retries)).
		ErrorMessage(bpmnErr.Message)

	if vars, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(vars)); err == nil {
			h.send(ctx, job, func(ctx context.Context) error {
				_, err := withVars.Send(ctx)
				return err
			})
			return
		}
	}

	h.send(ctx, job, func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if vars, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(vars)); err == nil {
			h.send(ctx, job, func(ctx context.Context) error {
				_, err := withVars.Send(ctx)
				return err
			})
			return
		}
	}

	h.send(ctx, job, func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
}

func (h *ErrorHandler) send(ctx context.Context, job entities.Job, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		h.logger.Error("failed to report job error", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *ErrorHandler) logError(job entities.Job, d Decision) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(d.Source.Code),
		"bpmnErrorCode":    d.Error.Code,
		"message":          d.Error.Message,
		"details":          d.Source.Details,
		"retryable":        d.Source.Retryable,
		"retries":          d.Retries,
		"errorCategory":    GetErrorCategory(d.Source.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
