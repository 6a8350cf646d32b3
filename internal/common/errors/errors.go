package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode classifies an application error.
type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodePrecondition ErrorCode = "PRECONDITION_FAILED"
	ErrCodeConflict     ErrorCode = "CONFLICT"

	ErrCodeGiveawayNotFound ErrorCode = "GIVEAWAY_NOT_FOUND"
	ErrCodeGiveawayClosed   ErrorCode = "GIVEAWAY_CLOSED"
	ErrCodeEntryRejected    ErrorCode = "ENTRY_REJECTED"

	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
	ErrCodeChatAPI ErrorCode = "CHAT_API_ERROR"
)

// AppError is a typed application error carrying a code, a user-presentable
// message and an optional cause.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether the error refers to a missing record.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound || e.Code == ErrCodeGiveawayNotFound
}

// IsValidation reports whether the error is a validation rejection that
// should be surfaced verbatim to the requesting user.
func (e *AppError) IsValidation() bool {
	return e.Code == ErrCodeValidation || e.Code == ErrCodeEntryRejected
}

// IsCollaborator reports whether the error came from an external
// collaborator (chat platform or durable storage).
func (e *AppError) IsCollaborator() bool {
	return e.Code == ErrCodeStorage || e.Code == ErrCodeChatAPI
}

// WithDetail attaches structured detail to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// NewNotFoundError creates a "not found" error for a record.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// NewPreconditionError creates a precondition-violation error.
func NewPreconditionError(reason string) *AppError {
	return New(ErrCodePrecondition, reason)
}

// NewStorageError creates a durable-storage collaborator error.
func NewStorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorage, fmt.Sprintf("Storage operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewChatAPIError creates a chat-platform collaborator error.
func NewChatAPIError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeChatAPI, fmt.Sprintf("Chat API operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// AsAppError extracts an AppError from anywhere in the error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
