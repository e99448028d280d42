package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskmanager/internal/db"
	"taskmanager/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]model.User, error)
}

type userRepository struct {
	runner
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(conn *gorm.DB, policy db.RetryPolicy) UserRepository {
	return &userRepository{runner{conn: conn, policy: policy}}
}

// Create inserts the user together with its role links. Roles must already exist.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.run(ctx, func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Preload("Roles").Where("id = ?", id).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Preload("Roles").Where("email = ?", email).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	})
	return count > 0, err
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Order("email").Find(&users).Error
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

