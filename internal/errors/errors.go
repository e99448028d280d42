package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when no caller identity can be resolved.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the caller fails an ownership or role check.
	ErrForbidden = errors.New("access to this resource is forbidden")
	// ErrTaskNotFound is returned when a task is not found.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrDuplicateUser is returned when registering an email that is already taken.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInvalidCredentials is returned when the password check fails.
	ErrInvalidCredentials = errors.New("invalid password")
)

// ValidationError reports a bad or missing request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError creates a validation error for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// A duplicate registration is a 400, not a 409.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return NewHTTPError(http.StatusBadRequest, verr.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrTaskNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "TASK_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrCategoryNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "CATEGORY_NOT_FOUND")
	case errors.Is(err, ErrDuplicateUser):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "DUPLICATE_USER")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_CREDENTIALS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
