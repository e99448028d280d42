package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskmanager/internal/db"
	"taskmanager/internal/model"
)

// updatableTaskColumns are replaced wholesale by Update. created_by_id is never among them.
var updatableTaskColumns = []string{
	"title", "description", "due_date", "priority", "status", "assigned_to_id", "updated_at",
}

// TaskRepository defines task persistence operations.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, createdBy *uuid.UUID) ([]model.Task, error)
}

type taskRepository struct {
	runner
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(conn *gorm.DB, policy db.RetryPolicy) TaskRepository {
	return &taskRepository{runner{conn: conn, policy: policy}}
}

// withRelations preloads every relation a task response carries.
func withRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("CreatedBy").Preload("AssignedTo").Preload("Categories", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("name")
	})
}

// Create inserts task and links task.Categories in one transaction.
func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}
		if len(task.Categories) == 0 {
			return nil
		}
		return tx.Model(task).Association("Categories").Replace(task.Categories)
	})
}

// Update replaces the mutable columns and the category set of an existing task.
func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(task).Select(updatableTaskColumns).Updates(task).Error; err != nil {
			return err
		}
		categories := tx.Model(task).Association("Categories")
		if len(task.Categories) == 0 {
			return categories.Clear()
		}
		return categories.Replace(task.Categories)
	})
}

// Delete removes the task and its category links.
func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		task := &model.Task{ID: id}
		if err := tx.Model(task).Association("Categories").Clear(); err != nil {
			return err
		}
		res := tx.Delete(&model.Task{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.run(ctx, func(tx *gorm.DB) error {
		return withRelations(tx).Where("id = ?", id).First(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns tasks oldest first, restricted to createdBy when non-nil.
func (r *taskRepository) List(ctx context.Context, createdBy *uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	err := r.run(ctx, func(tx *gorm.DB) error {
		q := withRelations(tx)
		if createdBy != nil {
			q = q.Where("created_by_id = ?", *createdBy)
		}
		return q.Order("created_at").Order("id").Find(&tasks).Error
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
