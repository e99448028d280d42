package auth

import (
	"github.com/google/uuid"

	"taskmanager/internal/model"
)

// Identity is the caller as established by a validated session token.
type Identity struct {
	UserID    uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Roles     []string  `json:"roles"`
}

// HasRole reports whether role is in the identity's role set.
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the identity carries the Admin role.
func (i *Identity) IsAdmin() bool {
	return i.HasRole(model.RoleAdmin)
}

// IdentityFromUser builds the identity a token for u would carry.
func IdentityFromUser(u *model.User) *Identity {
	return &Identity{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     u.RoleNames(),
	}
}
