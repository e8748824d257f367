package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a typed application error carrying the HTTP status it maps to
// and whether the client may sensibly retry the request.
type AppError struct {
	Code      int
	Message   string
	Retryable bool
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewLLMError wraps a completion-provider failure. Fatal to the current turn.
func NewLLMError(err error) *AppError {
	return &AppError{
		Code:      http.StatusServiceUnavailable,
		Message:   "LLM service error",
		Retryable: true,
		Err:       err,
	}
}

// NewStorageError wraps persistence failures.
func NewStorageError(err error) *AppError {
	return &AppError{
		Code:      http.StatusInternalServerError,
		Message:   "storage error",
		Retryable: true,
		Err:       err,
	}
}

// NewJournalNotFoundError distinguishes the not-found condition so the client
// can show a specific message and skip retry.
func NewJournalNotFoundError(journalID string) *AppError {
	return &AppError{
		Code:      http.StatusNotFound,
		Message:   fmt.Sprintf("journal not found: %s", journalID),
		Retryable: false,
	}
}

// NewValidationError rejects bad input before any network call is made.
func NewValidationError(detail string) *AppError {
	return &AppError{
		Code:      http.StatusUnprocessableEntity,
		Message:   detail,
		Retryable: false,
	}
}

// AsAppError unwraps err into an *AppError if one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == http.StatusNotFound
}
