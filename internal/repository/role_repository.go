package repository

import (
	"context"

	"gorm.io/gorm"

	"taskmanager/internal/db"
	"taskmanager/internal/model"
)

// RoleRepository defines role persistence operations.
type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	FindByName(ctx context.Context, name string) (*model.Role, error)
	FindByNames(ctx context.Context, names []string) ([]model.Role, error)
}

type roleRepository struct {
	runner
}

// NewRoleRepository creates a new role repository.
func NewRoleRepository(conn *gorm.DB, policy db.RetryPolicy) RoleRepository {
	return &roleRepository{runner{conn: conn, policy: policy}}
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return r.run(ctx, func(tx *gorm.DB) error {
		return tx.Create(role).Error
	})
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Where("name = ?", name).First(&role).Error
	})
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByNames(ctx context.Context, names []string) ([]model.Role, error) {
	var roles []model.Role
	if len(names) == 0 {
		return roles, nil
	}
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Where("name IN ?", names).Order("name").Find(&roles).Error
	})
	if err != nil {
		return nil, err
	}
	return roles, nil
}
