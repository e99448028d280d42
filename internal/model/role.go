package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Built-in role names.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// DefaultRoles are seeded at process start when absent.
var DefaultRoles = []string{RoleAdmin, RoleUser}

// Role is a named capability set assigned to users.
type Role struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;size:64;not null"`
	CreatedAt time.Time `json:"-"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
