package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"taskmanager/internal/auth"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// authFailure renders every expected auth failure as 400 {message}.
func authFailure(err error) error {
	var verr *apperrors.ValidationError
	var message string
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		message = "User not found"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		message = "Invalid password"
	case errors.Is(err, apperrors.ErrDuplicateUser):
		message = "User already exists"
	case errors.As(err, &verr):
		message = verr.Error()
	default:
		return fail(err)
	}
	return echo.NewHTTPError(http.StatusBadRequest, MessageResponse{Message: message}).SetInternal(err)
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} MessageResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, MessageResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return authFailure(err)
	}

	_, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return authFailure(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Registration successful"})
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} MessageResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, MessageResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return authFailure(err)
	}

	token, _, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return authFailure(err)
	}

	return c.JSON(http.StatusOK, LoginResponse{Token: token, Message: "Login successful"})
}

// Me godoc
// @Summary Current identity
// @Description Returns the caller as described by the bearer token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.Identity
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := auth.CurrentIdentity(c)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, id)
}
