package service

import (
	"context"
	"fmt"
	"strings"

	"taskmanager/internal/auth"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
)

// CategoryService manages task categories.
type CategoryService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, actor *auth.Identity, name, description string) (*model.Category, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory is restricted to admins.
func (s *categoryService) CreateCategory(ctx context.Context, actor *auth.Identity, name, description string) (*model.Category, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "is required")
	}

	category := &model.Category{Name: name, Description: description}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}
