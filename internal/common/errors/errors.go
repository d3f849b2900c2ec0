package errors

import "fmt"

// ErrorCode identifies the failure class of an application error.
type ErrorCode string

const (
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"

	// Authentication failures
	ErrCodeAuth            ErrorCode = "AUTH_ERROR"
	ErrCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"

	// Wallet rule failures
	ErrCodeAlreadyClaimed      ErrorCode = "ALREADY_CLAIMED"
	ErrCodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodeBelowMinimum        ErrorCode = "BELOW_MINIMUM"

	// Infrastructure failures
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
	ErrCodeCache   ErrorCode = "CACHE_ERROR"
)

// AppError is a typed application error carrying the message shown to the
// user. Remote failures keep the server-supplied message verbatim.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
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

// IsLocal reports whether the error was produced by a client-side rule check
// rather than a remote response.
func (e *AppError) IsLocal() bool {
	return e.Code == ErrCodeBelowMinimum ||
		e.Code == ErrCodeInsufficientBalance ||
		e.Code == ErrCodeValidation ||
		e.Code == ErrCodeUnauthenticated
}

// IsNetwork reports whether the error is a transport or decoding failure with
// no structured server message.
func (e *AppError) IsNetwork() bool {
	return e.Code == ErrCodeNetwork
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches a cause to a new application error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// NewValidationError creates a validation error for a named field.
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason))
}

// NewUnauthenticatedError creates the error returned when an operation
// requires a logged-in session.
func NewUnauthenticatedError() *AppError {
	return New(ErrCodeUnauthenticated, "Please login first")
}

// NewNetworkError wraps a transport or decoding failure.
func NewNetworkError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeNetwork, fmt.Sprintf("Request failed: %s", operation))
}

// NewCacheError wraps a session cache failure.
func NewCacheError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeCache, fmt.Sprintf("Cache operation failed: %s", operation))
}

// AsAppError casts err to *AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
