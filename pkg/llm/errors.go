package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies completion-service failures.
type ErrorType string

const (
	ErrorTypeAuth      ErrorType = "auth"
	ErrorTypeRateLimit ErrorType = "rate_limit"
	ErrorTypeTimeout   ErrorType = "timeout"
	ErrorTypeServer    ErrorType = "server"
	ErrorTypeModel     ErrorType = "model"
	ErrorTypeResponse  ErrorType = "response"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error is a structured completion-service error with explicit retryability.
type Error struct {
	Type      ErrorType
	Message   string
	Retryable bool
	Cause     error
	ModelName string
}

// Error implements the error interface.
func (e *Error) Error() string {
	parts := []string{string(e.Type)}
	if e.ModelName != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.ModelName))
	}
	parts = append(parts, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable implements the retry.RetryableError interface.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewError creates a structured completion-service error.
func NewError(errType ErrorType, message string, retryable bool, cause error, model string) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
		ModelName: model,
	}
}

// ClassifyError categorizes a raw provider error. Rate limits, timeouts and
// server-side failures are retryable; auth and unknown-model failures are not.
func ClassifyError(err error, model string) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "401") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key") || strings.Contains(lower, "authentication"):
		return NewError(ErrorTypeAuth, "authentication failed", false, err, model)

	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "too many requests") || strings.Contains(lower, "overloaded"):
		return NewError(ErrorTypeRateLimit, "rate limited", true, err, model)

	case strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out") ||
		strings.Contains(lower, "deadline exceeded"):
		return NewError(ErrorTypeTimeout, "request timed out", true, err, model)

	case strings.Contains(lower, "model") && (strings.Contains(lower, "not found") ||
		strings.Contains(lower, "does not exist")):
		return NewError(ErrorTypeModel, "model not found", false, err, model)

	case strings.Contains(lower, "500") || strings.Contains(lower, "502") ||
		strings.Contains(lower, "503") || strings.Contains(lower, "504") ||
		strings.Contains(lower, "service unavailable") || strings.Contains(lower, "connection"):
		return NewError(ErrorTypeServer, "service failure", true, err, model)

	default:
		return NewError(ErrorTypeUnknown, "completion request failed", true, err, model)
	}
}
