package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskmanager/internal/db"
	"taskmanager/internal/model"
)

// CategoryRepository defines category persistence operations.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	List(ctx context.Context) ([]model.Category, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Category, error)
}

type categoryRepository struct {
	runner
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(conn *gorm.DB, policy db.RetryPolicy) CategoryRepository {
	return &categoryRepository{runner{conn: conn, policy: policy}}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.run(ctx, func(tx *gorm.DB) error {
		return tx.Create(category).Error
	})
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Order("name").Find(&categories).Error
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// FindByIDs returns the categories matching ids; unknown ids are simply absent.
func (r *categoryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Category, error) {
	var categories []model.Category
	if len(ids) == 0 {
		return categories, nil
	}
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Where("id IN ?", ids).Find(&categories).Error
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}
