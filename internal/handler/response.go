package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "taskmanager/internal/errors"
)

// MessageResponse carries a human-readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// fail converts a domain error into an echo HTTP error with an ErrorResponse body.
func fail(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

// bindAndValidate decodes the JSON body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Message: "invalid request body",
			Code:    "INVALID_REQUEST",
		})
	}
	if err := c.Validate(req); err != nil {
		return fail(err)
	}
	return nil
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fail(apperrors.NewValidationError("id", "must be a UUID"))
	}
	return id, nil
}
