// internal/common/camunda/job.go
package camunda

import (
	"context"
	"strings"

	apperrors "candidate-evaluation-workers/internal/common/errors"
	"candidate-evaluation-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/goccy/go-json"
)

// DecodeVariables validates raw job variables against schema and decodes
// them into out. Failures come back as PARSE_ERROR or
// INPUT_VALIDATION_FAILED standard errors.
func DecodeVariables(variables string, schema map[string]interface{}, out interface{}) error {
	if strings.TrimSpace(variables) == "" {
		variables = "{}"
	}

	result, err := validation.ValidateJSON(schema, variables)
	if err != nil {
		return apperrors.NewParseError(err)
	}
	if !result.Valid {
		return apperrors.NewInputValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
	}

	if err := json.Unmarshal([]byte(variables), out); err != nil {
		return apperrors.NewParseError(err)
	}
	return nil
}

// CompleteJob completes job with output as its variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return err
	}
	_, err = cmd.Send(ctx)
	return err
}
