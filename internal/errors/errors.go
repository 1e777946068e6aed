package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeSessionComplete  = "SESSION_COMPLETE"
	ErrCodeStateUnavailable = "STATE_UNAVAILABLE"
)

// AppError is an error carrying a stable code and an HTTP status.
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "STATE_UNAVAILABLE")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewConflictError reports a request that collides with one in flight.
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

// NewSessionCompleteError reports a grade sent to a session with no current item.
func NewSessionCompleteError(sessionID string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeSessionComplete,
		Message: fmt.Sprintf("session %s has no item to grade", sessionID),
		Status:  http.StatusConflict,
		Err:     err,
	}
}

// NewStoreUnavailableError reports that stored review data other than a
// single item's state could not be read.
func NewStoreUnavailableError(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeStateUnavailable,
		Message: fmt.Sprintf("%s unavailable", resource),
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

// NewStateUnavailableError reports that review state could not be loaded
// or persisted. The caller must not move on to the next item.
func NewStateUnavailableError(itemID string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeStateUnavailable,
		Message: fmt.Sprintf("review state unavailable for item %s", itemID),
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}
