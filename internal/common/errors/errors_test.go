// internal/common/errors/errors_test.go
package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRedisDown = errors.New("redis: connection refused")

func TestStandardError_Unwrap(t *testing.T) {
	stdErr := NewSessionStoreFailedError(errRedisDown)
	wrapped := fmt.Errorf("load session: %w", stdErr)

	assert.ErrorIs(t, wrapped, errRedisDown)

	found, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeSessionStoreFailed, found.Code)
	assert.Equal(t, errRedisDown.Error(), found.Details)
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewPersistenceRejectedError(`{"success":false}`).WithMetadata("sessionId", "s-1")

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "PERSISTENCE_FAILED", bpmnErr.Code)
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.False(t, bpmnErr.Retryable)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "PERSISTENCE_FAILED", vars["errorCode"])
	assert.Equal(t, "PERSISTENCE_REJECTED", vars["originalErrorCode"])
	assert.Equal(t, "s-1", vars["sessionId"])
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeSessionStoreFailed, 3},
		{ErrCodeEvaluationRecordFailed, 0},
		{ErrCodeNotificationSendFailed, 3},
		{ErrCodeLedgerExportFailed, 2},
		{ErrCodePersistenceFailed, 0},
		{ErrCodePersistenceRejected, 0},
		{ErrCodeShortlistToggleFailed, 0},
		{ErrCodeInputValidationFailed, 0},
		{ErrorCode("UNKNOWN"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetRetryCount(tt.code))
			assert.Equal(t, tt.want > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		jobRetries  int32
		wantAction  Action
		wantRetries int
		wantCode    string
	}{
		{"retryable with budget", NewSessionStoreFailedError(errRedisDown), 3, ActionFail, 3, "SESSION_STORE_FAILED"},
		{"retryable capped by job", NewSessionStoreFailedError(errRedisDown), 1, ActionFail, 1, "SESSION_STORE_FAILED"},
		{"retryable but exhausted", NewSessionStoreFailedError(errRedisDown), 0, ActionThrow, 0, "SESSION_STORE_FAILED"},
		{"persistence never retried", NewPersistenceFailedError(errors.New("timeout")), 3, ActionThrow, 0, "PERSISTENCE_FAILED"},
		{"plain error", errors.New("boom"), 3, ActionThrow, 0, "INTERNAL_ERROR"},
		{"wrapped standard error", fmt.Errorf("ctx: %w", NewSessionNotFoundError("s-9")), 3, ActionThrow, 0, "SESSION_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.err, tt.jobRetries)
			assert.Equal(t, tt.wantAction, d.Action)
			assert.Equal(t, tt.wantRetries, d.Retries)
			assert.Equal(t, tt.wantCode, d.Error.Code)
		})
	}
}

func TestNormalize_PlainError(t *testing.T) {
	stdErr := Normalize(errRedisDown)
	assert.Equal(t, ErrCodeInternal, stdErr.Code)
	assert.ErrorIs(t, stdErr, errRedisDown)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "SESSION", GetErrorCategory(ErrCodeSessionNotFound))
	assert.Equal(t, "PERSISTENCE", GetErrorCategory(ErrCodePersistenceRejected))
	assert.Equal(t, "PERSISTENCE", GetErrorCategory(ErrCodeSubmissionInFlight))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeLedgerExportFailed))
	assert.Equal(t, "DASHBOARD", GetErrorCategory(ErrCodeShortlistToggleFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInputValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
