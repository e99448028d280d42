package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"taskmanager/internal/model"
	"taskmanager/internal/repository"
)

// SeedUser describes an account created at startup when its email is unused.
type SeedUser struct {
	Email     string   `yaml:"email"`
	Password  string   `yaml:"password"`
	FirstName string   `yaml:"firstName"`
	LastName  string   `yaml:"lastName"`
	Roles     []string `yaml:"roles"`
}

type seedFile struct {
	Users []SeedUser `yaml:"users"`
}

// DefaultSeedUsers are the two built-in accounts.
var DefaultSeedUsers = []SeedUser{
	{
		Email:     "admin@taskmanager.com",
		Password:  "Admin123!",
		FirstName: "Admin",
		LastName:  "User",
		Roles:     []string{model.RoleAdmin},
	},
	{
		Email:     "user@taskmanager.com",
		Password:  "User123!",
		FirstName: "Regular",
		LastName:  "User",
		Roles:     []string{model.RoleUser},
	},
}

// LoadSeedFile reads extra seed users from a YAML file of the form
//
//	users:
//	  - email: ops@example.com
//	    password: secret
//	    roles: [Admin]
func LoadSeedFile(path string) ([]SeedUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return f.Users, nil
}

// Seeder creates the built-in roles and accounts. Every step checks for an
// existing row immediately before inserting and treats a duplicate-key
// failure as success, so it can run on every start from any number of instances.
type Seeder struct {
	users repository.UserRepository
	roles repository.RoleRepository
	log   logrus.FieldLogger
}

// NewSeeder creates a seeder.
func NewSeeder(users repository.UserRepository, roles repository.RoleRepository, log logrus.FieldLogger) *Seeder {
	return &Seeder{users: users, roles: roles, log: log}
}

// Run ensures the default roles, the default accounts and then extra.
func (s *Seeder) Run(ctx context.Context, extra []SeedUser) error {
	if err := s.EnsureRoles(ctx); err != nil {
		return err
	}
	accounts := append(append([]SeedUser{}, DefaultSeedUsers...), extra...)
	for _, u := range accounts {
		created, err := s.EnsureUser(ctx, u)
		if err != nil {
			return err
		}
		if created {
			s.log.WithField("email", model.NormalizeEmail(u.Email)).Info("seeded user")
		}
	}
	return nil
}

// EnsureRoles creates Admin and User when absent.
func (s *Seeder) EnsureRoles(ctx context.Context) error {
	for _, name := range model.DefaultRoles {
		if _, err := ensureRole(ctx, s.roles, name); err != nil {
			return err
		}
	}
	return nil
}

// EnsureUser creates u unless a user with its email exists. It reports whether
// this call inserted the row. Entries without email or password are skipped.
func (s *Seeder) EnsureUser(ctx context.Context, u SeedUser) (bool, error) {
	email := model.NormalizeEmail(u.Email)
	if email == "" || u.Password == "" {
		s.log.WithField("email", u.Email).Warn("skipping seed user without email or password")
		return false, nil
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check seed user %s: %w", email, err)
	}
	if exists {
		return false, nil
	}

	roleNames := u.Roles
	if len(roleNames) == 0 {
		roleNames = []string{model.RoleUser}
	}
	roles, err := s.resolveRoles(ctx, roleNames)
	if err != nil {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     email,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Roles:        roles,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("create seed user %s: %w", email, err)
	}
	return true, nil
}

// resolveRoles loads the named roles in one query and creates any that are missing.
func (s *Seeder) resolveRoles(ctx context.Context, names []string) ([]model.Role, error) {
	found, err := s.roles.FindByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	byName := make(map[string]model.Role, len(found))
	for _, r := range found {
		byName[r.Name] = r
	}

	roles := make([]model.Role, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		role, ok := byName[name]
		if !ok {
			created, err := ensureRole(ctx, s.roles, name)
			if err != nil {
				return nil, err
			}
			role = *created
		}
		roles = append(roles, role)
	}
	return roles, nil
}
