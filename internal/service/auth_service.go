package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskmanager/internal/auth"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
)

const bcryptCost = 10

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
}

type authService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	tokens   *auth.TokenService
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, tokens *auth.TokenService) AuthService {
	return &authService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		tokens:   tokens,
	}
}

// Register creates a user with the default User role. It does not log the user in.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := model.NormalizeEmail(in.Email)
	if email == "" {
		return nil, apperrors.NewValidationError("email", "is required")
	}
	if in.Password == "" {
		return nil, apperrors.NewValidationError("password", "is required")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateUser
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role, err := ensureRole(ctx, s.roleRepo, model.RoleUser)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     email,
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Roles:        []model.Role{*role},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks the password and issues a session token.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperrors.ErrUserNotFound
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(auth.IdentityFromUser(user))
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// ensureRole returns the named role, creating it when absent.
// A concurrent creator winning the insert counts as success.
func ensureRole(ctx context.Context, roles repository.RoleRepository, name string) (*model.Role, error) {
	role, err := roles.FindByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find role %s: %w", name, err)
	}

	role = &model.Role{Name: name}
	if err := roles.Create(ctx, role); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create role %s: %w", name, err)
		}
		if role, err = roles.FindByName(ctx, name); err != nil {
			return nil, fmt.Errorf("find role %s: %w", name, err)
		}
	}
	return role, nil
}
