// Package policy decides whether an authenticated identity may act on a task
// or user record. Every function is pure: it reads the identity and the
// resource and returns a decision, nothing else.
package policy

import (
	"github.com/google/uuid"

	"taskmanager/internal/auth"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/model"
)

// Action is an operation on a single task.
type Action int

const (
	View Action = iota
	Edit
	Delete
)

func (a Action) String() string {
	switch a {
	case View:
		return "view"
	case Edit:
		return "edit"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// ownsOrAdmin is the single rule behind every task decision.
// Assignment alone grants nothing.
func ownsOrAdmin(actor *auth.Identity, task *model.Task) bool {
	if actor == nil || task == nil {
		return false
	}
	return actor.IsAdmin() || actor.UserID == task.CreatedByID
}

// CanView reports whether actor may read task.
func CanView(actor *auth.Identity, task *model.Task) bool {
	return ownsOrAdmin(actor, task)
}

// CanEdit reports whether actor may update task.
func CanEdit(actor *auth.Identity, task *model.Task) bool {
	return ownsOrAdmin(actor, task)
}

// CanDelete reports whether actor may delete task.
func CanDelete(actor *auth.Identity, task *model.Task) bool {
	return ownsOrAdmin(actor, task)
}

// Can dispatches to the check for action.
func Can(actor *auth.Identity, action Action, task *model.Task) bool {
	switch action {
	case View:
		return CanView(actor, task)
	case Edit:
		return CanEdit(actor, task)
	case Delete:
		return CanDelete(actor, task)
	default:
		return false
	}
}

// CanViewUserRecord reports whether actor may read the user record targetID.
func CanViewUserRecord(actor *auth.Identity, targetID uuid.UUID) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.UserID == targetID
}

// AuthorizeTask returns ErrUnauthenticated without an actor and ErrForbidden
// when actor may not perform action on task. The caller confirms existence first.
func AuthorizeTask(actor *auth.Identity, action Action, task *model.Task) error {
	if actor == nil {
		return apperrors.ErrUnauthenticated
	}
	if !Can(actor, action, task) {
		return apperrors.ErrForbidden
	}
	return nil
}

// AuthorizeUserRecord is AuthorizeTask for user records.
func AuthorizeUserRecord(actor *auth.Identity, targetID uuid.UUID) error {
	if actor == nil {
		return apperrors.ErrUnauthenticated
	}
	if !CanViewUserRecord(actor, targetID) {
		return apperrors.ErrForbidden
	}
	return nil
}

// TaskScope restricts a task listing to a single creator.
// A nil CreatorID means every task is visible.
type TaskScope struct {
	CreatorID *uuid.UUID
}

// VisibleTaskScope is the listing filter for actor: everything for admins,
// otherwise only tasks the actor created.
func VisibleTaskScope(actor *auth.Identity) (TaskScope, error) {
	if actor == nil {
		return TaskScope{}, apperrors.ErrUnauthenticated
	}
	if actor.IsAdmin() {
		return TaskScope{}, nil
	}
	id := actor.UserID
	return TaskScope{CreatorID: &id}, nil
}

// VisibleUserScope mirrors VisibleTaskScope for the user listing: admins see
// everyone, anyone else only themselves.
func VisibleUserScope(actor *auth.Identity) (*uuid.UUID, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if actor.IsAdmin() {
		return nil, nil
	}
	id := actor.UserID
	return &id, nil
}
