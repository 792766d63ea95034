// Package errors provides the error taxonomy shared by the transport, the
// API collaborators and the workflow orchestrator.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// Kind classifies an error for stage boundaries and retry decisions.
type Kind string

const (
	KindClient     Kind = "client"
	KindServer     Kind = "server"
	KindValidation Kind = "validation"
	KindPartial    Kind = "partial"
	KindInternal   Kind = "internal"
)

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

const (
	ErrCodeClientRequestRejected ErrorCode = "CLIENT_REQUEST_REJECTED"
	ErrCodeUnexpectedStatus      ErrorCode = "UNEXPECTED_STATUS"
	ErrCodeServerUnavailable     ErrorCode = "SERVER_UNAVAILABLE"
	ErrCodeBatchTooLarge         ErrorCode = "BATCH_TOO_LARGE"
	ErrCodeInvalidInput          ErrorCode = "INVALID_INPUT"
	ErrCodeItemFailed            ErrorCode = "ITEM_FAILED"
	ErrCodeDecodeFailed          ErrorCode = "RESPONSE_DECODE_FAILED"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured pipeline error.
type StandardError struct {
	Code       ErrorCode `json:"code"`
	Kind       Kind      `json:"kind"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	Method     string    `json:"method,omitempty"`
	Endpoint   string    `json:"endpoint,omitempty"`
	StatusCode int       `json:"statusCode,omitempty"`
	Attempts   int       `json:"attempts,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	msg := fmt.Sprintf("%s[%s]: %s", e.Kind, e.Code, e.Message)
	if e.Endpoint != "" {
		msg += " (" + e.Endpoint + ")"
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the response status the error was built from, if any.
func (e *StandardError) HTTPStatus() int {
	return e.StatusCode
}

// ==========================
// 2. Constructors
// ==========================

// NewClientError reports a 4xx response. Client errors are never retried.
func NewClientError(method, endpoint string, status int, details string) *StandardError {
	return &StandardError{
		Code:       ErrCodeClientRequestRejected,
		Kind:       KindClient,
		Message:    fmt.Sprintf("request rejected with status %d", status),
		Details:    details,
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: status,
		Retryable:  false,
		Timestamp:  time.Now().UTC(),
	}
}

// NewUnexpectedStatusError reports a response that is neither 2xx, 4xx nor
// 5xx, such as an unfollowed redirect. It is not retried.
func NewUnexpectedStatusError(method, endpoint string, status int, details string) *StandardError {
	return &StandardError{
		Code:       ErrCodeUnexpectedStatus,
		Kind:       KindInternal,
		Message:    fmt.Sprintf("unexpected response status %d", status),
		Details:    details,
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: status,
		Retryable:  false,
		Timestamp:  time.Now().UTC(),
	}
}

// NewServerError reports a 5xx or network failure that survived every attempt.
// The last underlying error is kept as the cause.
func NewServerError(method, endpoint string, attempts int, cause error) *StandardError {
	details := ""
	status := 0
	if cause != nil {
		details = cause.Error()
		var sc interface{ HTTPStatus() int }
		if stderrors.As(cause, &sc) {
			status = sc.HTTPStatus()
		}
	}
	return &StandardError{
		Code:       ErrCodeServerUnavailable,
		Kind:       KindServer,
		Message:    fmt.Sprintf("request failed after %d attempts", attempts),
		Details:    details,
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: status,
		Attempts:   attempts,
		Retryable:  true,
		Cause:      cause,
		Timestamp:  time.Now().UTC(),
	}
}

// NewValidationError reports a precondition violated before any network call.
func NewValidationError(code ErrorCode, message, details string) *StandardError {
	if code == "" {
		code = ErrCodeInvalidInput
	}
	return &StandardError{
		Code:      code,
		Kind:      KindValidation,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBatchTooLargeError is raised by bulk collaborators whose endpoint caps the batch size.
func NewBatchTooLargeError(endpoint string, size, limit int) *StandardError {
	e := NewValidationError(ErrCodeBatchTooLarge,
		fmt.Sprintf("batch of %d exceeds the limit of %d", size, limit), "")
	e.Endpoint = endpoint
	return e
}

// NewPartialFailure records one failed item of a multi-item stage.
func NewPartialFailure(subject string, cause error) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      ErrCodeItemFailed,
		Kind:      KindPartial,
		Message:   fmt.Sprintf("item %q failed", subject),
		Details:   details,
		Subject:   subject,
		Retryable: false,
		Cause:     cause,
		Timestamp: time.Now().UTC(),
	}
}

// NewDecodeError reports a 2xx response whose body could not be decoded.
func NewDecodeError(endpoint string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecodeFailed,
		Kind:      KindInternal,
		Message:   "failed to decode response",
		Details:   cause.Error(),
		Endpoint:  endpoint,
		Cause:     cause,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps anything unexpected.
func NewInternalError(message string, cause error) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Kind:      KindInternal,
		Message:   message,
		Details:   details,
		Cause:     cause,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// KindOf returns the kind of err; errors outside the taxonomy are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func IsClientError(err error) bool     { return KindOf(err) == KindClient }
func IsServerError(err error) bool     { return KindOf(err) == KindServer }
func IsValidationError(err error) bool { return KindOf(err) == KindValidation }

// IsCancellation reports whether err stems from the caller's context.
func IsCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
