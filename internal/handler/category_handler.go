package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskmanager/internal/auth"
	"taskmanager/internal/service"
)

// CategoryHandler handles category endpoints.
type CategoryHandler struct {
	svc service.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(svc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// CreateCategoryRequest represents a category creation request.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

// ListCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Category
// @Failure 401 {object} errors.ErrorResponse
// @Router /category [get]
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	categories, err := h.svc.ListCategories(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, categories)
}

// CreateCategory godoc
// @Summary Create category
// @Description Admin only.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "Category data"
// @Success 201 {object} model.Category
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /category [post]
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	actor, err := auth.CurrentIdentity(c)
	if err != nil {
		return fail(err)
	}
	var req CreateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	category, err := h.svc.CreateCategory(c.Request().Context(), actor, req.Name, req.Description)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, category)
}
