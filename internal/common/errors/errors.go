// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeParseError               ErrorCode = "PARSE_ERROR"
	ErrCodeInputValidationFailed    ErrorCode = "INPUT_VALIDATION_FAILED"
	ErrCodeSessionNotFound          ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionStoreFailed       ErrorCode = "SESSION_STORE_FAILED"
	ErrCodePersistenceFailed        ErrorCode = "PERSISTENCE_FAILED"
	ErrCodePersistenceRejected      ErrorCode = "PERSISTENCE_REJECTED"
	ErrCodeSubmissionInFlight       ErrorCode = "SUBMISSION_IN_FLIGHT"
	ErrCodeEvaluationRecordFailed   ErrorCode = "EVALUATION_RECORD_FAILED"
	ErrCodeShortlistToggleFailed    ErrorCode = "SHORTLIST_TOGGLE_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeLedgerExportFailed       ErrorCode = "LEDGER_EXPORT_FAILED"
	ErrCodeEvaluationNotFound       ErrorCode = "EVALUATION_NOT_FOUND"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Job variables could not be parsed", err, false)
}

func NewInputValidationFailedError(details string) *StandardError {
	e := newError(ErrCodeInputValidationFailed, "Job input failed validation", nil, false)
	e.Details = details
	return e
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	e := newError(ErrCodeSessionNotFound, "Evaluation session not found or expired", nil, false)
	e.Details = fmt.Sprintf("sessionId: %s", sessionID)
	return e
}

// NewSessionStoreFailedError wraps a Redis failure. Store errors are transient.
func NewSessionStoreFailedError(err error) *StandardError {
	return newError(ErrCodeSessionStoreFailed, "Session store operation failed", err, true)
}

// NewPersistenceFailedError covers network and HTTP failures of the remote
// save. It is never retried automatically.
func NewPersistenceFailedError(err error) *StandardError {
	return newError(ErrCodePersistenceFailed, "Remote save failed", err, false)
}

// NewPersistenceRejectedError is returned when the endpoint answered without
// an explicit success flag.
func NewPersistenceRejectedError(details string) *StandardError {
	e := newError(ErrCodePersistenceRejected, "Remote save was not acknowledged", nil, false)
	e.Details = details
	return e
}

func NewSubmissionInFlightError(key string) *StandardError {
	e := newError(ErrCodeSubmissionInFlight, "A submission for this session is already in progress", nil, false)
	e.Details = fmt.Sprintf("key: %s", key)
	return e
}

// NewEvaluationRecordFailedError is raised when the remote save succeeded but
// the local ledger row could not be written. Retrying the job would post the
// submission again, so it is not retried.
func NewEvaluationRecordFailedError(err error) *StandardError {
	return newError(ErrCodeEvaluationRecordFailed, "Evaluation could not be recorded", err, false)
}

func NewEvaluationNotFoundError(details string) *StandardError {
	e := newError(ErrCodeEvaluationNotFound, "Evaluation record not found", nil, false)
	e.Details = details
	return e
}

// NewShortlistToggleFailedError is raised after the optimistic change has
// been rolled back. Not retried; the recruiter retries manually.
func NewShortlistToggleFailedError(err error) *StandardError {
	return newError(ErrCodeShortlistToggleFailed, "Shortlist update failed and was rolled back", err, false)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	e := newError(ErrCodeNotificationSendFailed, "Notification delivery failed", err, true)
	e.Details = fmt.Sprintf("type: %s, error: %s", channel, e.Details)
	return e
}

func NewLedgerExportFailedError(err error) *StandardError {
	return newError(ErrCodeLedgerExportFailed, "Candidate ledger export failed", err, true)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err, true)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeParseError:               "PARSE_ERROR",
	ErrCodeInputValidationFailed:    "INPUT_VALIDATION_FAILED",
	ErrCodeSessionNotFound:          "SESSION_NOT_FOUND",
	ErrCodeSessionStoreFailed:       "SESSION_STORE_FAILED",
	ErrCodePersistenceFailed:        "PERSISTENCE_FAILED",
	ErrCodePersistenceRejected:      "PERSISTENCE_FAILED",
	ErrCodeSubmissionInFlight:       "SUBMISSION_IN_FLIGHT",
	ErrCodeEvaluationRecordFailed:   "EVALUATION_RECORD_FAILED",
	ErrCodeEvaluationNotFound:       "EVALUATION_NOT_FOUND",
	ErrCodeShortlistToggleFailed:    "SHORTLIST_TOGGLE_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
	ErrCodeLedgerExportFailed:       "LEDGER_EXPORT_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSessionStoreFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeLedgerExportFailed:
		return 2

	default:
		return 0 // business errors and anything after a remote save: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError finds a StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "PERSISTENCE") || strings.Contains(codeStr, "SUBMISSION"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "EVALUATION") || strings.Contains(codeStr, "LEDGER") || strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "SHORTLIST"):
		return "DASHBOARD"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "PARSE") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
