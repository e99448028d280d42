package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskmanager/internal/auth"
	"taskmanager/internal/service"
)

// UserHandler bundles HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.UserSummary
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	actor, err := auth.CurrentIdentity(c)
	if err != nil {
		return fail(err)
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), actor, id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary List users
// @Description Admins see every user, other users only themselves.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.UserSummary
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	actor, err := auth.CurrentIdentity(c)
	if err != nil {
		return fail(err)
	}
	users, err := h.svc.ListUsers(c.Request().Context(), actor)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, users)
}
