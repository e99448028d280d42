package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", NewValidationError("title", "is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrapped validation", fmt.Errorf("create task: %w", NewValidationError("title", "is required")), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"task not found", fmt.Errorf("get: %w", ErrTaskNotFound), http.StatusNotFound, "TASK_NOT_FOUND"},
		{"user not found", ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"duplicate user is a bad request", ErrDuplicateUser, http.StatusBadRequest, "DUPLICATE_USER"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_HidesInternalMessage(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	assert.Equal(t, "internal server error", httpErr.ToErrorResponse().Message)
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, "title: is required", NewValidationError("title", "is required").Error())
	assert.Equal(t, "bad body", NewValidationError("", "bad body").Error())
}
