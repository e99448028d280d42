package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskPriority is the ordered urgency of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
	PriorityUrgent TaskPriority = "Urgent"
)

// priorities is ordered from least to most urgent; the index is the wire ordinal.
var priorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	return p.Rank() >= 0
}

// Rank returns the position of p in the priority order, or -1 when unknown.
func (p TaskPriority) Rank() int {
	for i, v := range priorities {
		if v == p {
			return i
		}
	}
	return -1
}

// UnmarshalJSON accepts either the priority name or its ordinal.
func (p *TaskPriority) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var ordinal int
	if err := json.Unmarshal(data, &ordinal); err == nil {
		if ordinal < 0 || ordinal >= len(priorities) {
			return fmt.Errorf("priority %d out of range", ordinal)
		}
		*p = priorities[ordinal]
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("priority must be a name or ordinal: %w", err)
	}
	if name == "" {
		*p = ""
		return nil
	}
	parsed := TaskPriority(name)
	if !parsed.Valid() {
		return fmt.Errorf("unknown priority %q", name)
	}
	*p = parsed
	return nil
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "Todo"
	StatusInProgress TaskStatus = "InProgress"
	StatusDone       TaskStatus = "Done"
	StatusCancelled  TaskStatus = "Cancelled"
)

var statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone, StatusCancelled}

// Valid reports whether s is one of the four task states.
func (s TaskStatus) Valid() bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts either the status name or its ordinal.
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var ordinal int
	if err := json.Unmarshal(data, &ordinal); err == nil {
		if ordinal < 0 || ordinal >= len(statuses) {
			return fmt.Errorf("status %d out of range", ordinal)
		}
		*s = statuses[ordinal]
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("status must be a name or ordinal: %w", err)
	}
	if name == "" {
		*s = ""
		return nil
	}
	parsed := TaskStatus(name)
	if !parsed.Valid() {
		return fmt.Errorf("unknown status %q", name)
	}
	*s = parsed
	return nil
}

// CanTransition reports whether a task may move from one status to another.
// Every valid status is reachable from every other one, including reopening a Done task.
func CanTransition(from, to TaskStatus) bool {
	return from.Valid() && to.Valid()
}

// Task is a unit of work owned by its creator and optionally assigned to another user.
type Task struct {
	ID           uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	Title        string       `json:"title" gorm:"size:255;not null"`
	Description  string       `json:"description" gorm:"type:text"`
	DueDate      *time.Time   `json:"dueDate"`
	Priority     TaskPriority `json:"priority" gorm:"type:varchar(16);not null;default:'Low'"`
	Status       TaskStatus   `json:"status" gorm:"type:varchar(16);not null;default:'Todo';index"`
	CreatedByID  uuid.UUID    `json:"createdById" gorm:"type:char(36);not null;index"`
	AssignedToID *uuid.UUID   `json:"assignedToId" gorm:"type:char(36);index"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`

	// Relations, populated only by explicit preloads.
	CreatedBy  *User      `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID;constraint:OnDelete:RESTRICT"`
	AssignedTo *User      `json:"assignedTo,omitempty" gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL"`
	Categories []Category `json:"categories" gorm:"many2many:task_categories"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
