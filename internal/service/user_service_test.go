package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/model"
)

func TestUserService_GetUser(t *testing.T) {
	self := actor(model.RoleUser)

	t.Run("forbidden is decided before the lookup", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, nil)

		_, err := svc.GetUser(context.Background(), self, uuid.New())

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("admin gets not found for unknown ids", func(t *testing.T) {
		repo := new(MockUserRepository)
		missing := uuid.New()
		repo.On("FindByID", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound)
		svc := NewUserService(repo, nil)

		_, err := svc.GetUser(context.Background(), actor(model.RoleAdmin), missing)

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("self lookup returns the summary", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, self.UserID).
			Return(&model.User{ID: self.UserID, Email: "me@x.io", PasswordHash: "secret"}, nil)
		svc := NewUserService(repo, nil)

		summary, err := svc.GetUser(context.Background(), self, self.UserID)

		require.NoError(t, err)
		assert.Equal(t, "me@x.io", summary.Email)
	})

	t.Run("no identity", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository), nil)
		_, err := svc.GetUser(context.Background(), nil, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	t.Run("admin lists everyone", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("List", mock.Anything).Return([]model.User{{Email: "a@x.io"}, {Email: "b@x.io"}}, nil)
		svc := NewUserService(repo, nil)

		users, err := svc.ListUsers(context.Background(), actor(model.RoleAdmin))

		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("user lists only self", func(t *testing.T) {
		repo := new(MockUserRepository)
		self := actor(model.RoleUser)
		repo.On("FindByID", mock.Anything, self.UserID).Return(&model.User{ID: self.UserID, Email: "me@x.io"}, nil)
		svc := NewUserService(repo, nil)

		users, err := svc.ListUsers(context.Background(), self)

		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, self.UserID, users[0].ID)
		repo.AssertNotCalled(t, "List", mock.Anything)
	})

	t.Run("deleted self is not found", func(t *testing.T) {
		repo := new(MockUserRepository)
		self := actor(model.RoleUser)
		repo.On("FindByID", mock.Anything, self.UserID).Return(nil, gorm.ErrRecordNotFound)
		svc := NewUserService(repo, nil)

		users, err := svc.ListUsers(context.Background(), self)

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		assert.Nil(t, users)
	})
}

func TestCategoryService_CreateCategory(t *testing.T) {
	t.Run("admin only", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo)

		_, err := svc.CreateCategory(context.Background(), actor(model.RoleUser), "Work", "")

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("name required", func(t *testing.T) {
		svc := NewCategoryService(new(MockCategoryRepository))
		_, err := svc.CreateCategory(context.Background(), actor(model.RoleAdmin), " ", "")
		var verr *apperrors.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("created", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Category) bool { return c.Name == "Work" })).Return(nil)
		svc := NewCategoryService(repo)

		category, err := svc.CreateCategory(context.Background(), actor(model.RoleAdmin), " Work ", "day job")

		require.NoError(t, err)
		assert.Equal(t, "day job", category.Description)
		repo.AssertExpectations(t)
	})
}
