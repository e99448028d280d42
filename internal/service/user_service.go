package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskmanager/internal/auth"
	"taskmanager/internal/cache"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/model"
	"taskmanager/internal/policy"
	"taskmanager/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes user lookups gated by the authorization policy.
type UserService interface {
	ListUsers(ctx context.Context, actor *auth.Identity) ([]model.UserSummary, error)
	GetUser(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*model.UserSummary, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return "user:" + id.String()
}

// ListUsers returns everyone for admins and only the caller otherwise.
// A caller whose own record is gone gets ErrUserNotFound.
func (s *userService) ListUsers(ctx context.Context, actor *auth.Identity) ([]model.UserSummary, error) {
	self, err := policy.VisibleUserScope(actor)
	if err != nil {
		return nil, err
	}

	if self != nil {
		summary, err := s.find(ctx, *self)
		if err != nil {
			return nil, err
		}
		return []model.UserSummary{*summary}, nil
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	summaries := make([]model.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	return summaries, nil
}

// GetUser decides Forbidden before looking the record up.
func (s *userService) GetUser(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*model.UserSummary, error) {
	if err := policy.AuthorizeUserRecord(actor, id); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *userService) find(ctx context.Context, id uuid.UUID) (*model.UserSummary, error) {
	var cached model.UserSummary
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	summary := user.Summary()
	s.cache.SetJSON(ctx, s.cacheKey(id), summary, userCacheTTL)
	return &summary, nil
}
