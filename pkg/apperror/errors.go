package apperror

import (
	"errors"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized   = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden      = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict       = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrUnprocessable  = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable entity"}
	ErrTokenExpired   = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken   = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
)

// Fiscal adapter error kinds. Callers match these with errors.Is to
// distinguish validation failures from configuration problems before
// anything reaches the submission queue.
var (
	// ErrConfiguration: missing signing key, certification code or device id,
	// bad software version. Fatal at startup or first use, never defaulted.
	ErrConfiguration = errors.New("configuration error")

	// ErrIncompleteOrder: the order has no identifier or no line items.
	ErrIncompleteOrder = errors.New("incomplete order")

	// ErrInvalidAmount: non-finite input or a value that cannot be expressed
	// as an integral number of cents.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidInput: bad text or max length handed to the sanitizer.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTimestamp: unparseable or zero transaction timestamp.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrIncompleteResponse: the protocol response lacks the server-assigned
	// transaction identifier needed for a receipt reference.
	ErrIncompleteResponse = errors.New("incomplete response")

	// ErrUnsupportedFormat: unrecognized receipt reference format.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, ErrIncompleteOrder),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidTimestamp):
		return &AppError{Code: http.StatusUnprocessableEntity, Message: err.Error()}
	case errors.Is(err, ErrUnsupportedFormat):
		return &AppError{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, ErrIncompleteResponse):
		return &AppError{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, ErrConfiguration):
		return &AppError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
