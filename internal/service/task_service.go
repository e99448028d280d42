package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskmanager/internal/auth"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/model"
	"taskmanager/internal/policy"
	"taskmanager/internal/repository"
)

// TaskInput holds the client-controlled fields of a task.
// Status is ignored on create.
type TaskInput struct {
	Title        string
	Description  string
	DueDate      *time.Time
	Priority     model.TaskPriority
	Status       model.TaskStatus
	AssignedToID *uuid.UUID
	CategoryIDs  []uuid.UUID
}

// TaskService exposes task operations gated by the authorization policy.
type TaskService interface {
	ListTasks(ctx context.Context, actor *auth.Identity) ([]model.Task, error)
	GetTask(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*model.Task, error)
	CreateTask(ctx context.Context, actor *auth.Identity, in TaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, actor *auth.Identity, id uuid.UUID, in TaskInput) error
	DeleteTask(ctx context.Context, actor *auth.Identity, id uuid.UUID) error
}

type taskService struct {
	taskRepo     repository.TaskRepository
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
}

// NewTaskService creates a new task service.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, categoryRepo repository.CategoryRepository) TaskService {
	return &taskService{
		taskRepo:     taskRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *taskService) ListTasks(ctx context.Context, actor *auth.Identity) ([]model.Task, error) {
	scope, err := policy.VisibleTaskScope(actor)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.List(ctx, scope.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *taskService) GetTask(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*model.Task, error) {
	return s.load(ctx, actor, policy.View, id)
}

// CreateTask stores a new task owned by actor. Status always starts at Todo.
func (s *taskService) CreateTask(ctx context.Context, actor *auth.Identity, in TaskInput) (*model.Task, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	title, priority, err := validateCommon(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, in.AssignedToID); err != nil {
		return nil, err
	}
	categories, err := s.resolveCategories(ctx, in.CategoryIDs)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:        title,
		Description:  in.Description,
		DueDate:      in.DueDate,
		Priority:     priority,
		Status:       model.StatusTodo,
		CreatedByID:  actor.UserID,
		AssignedToID: in.AssignedToID,
		Categories:   categories,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	created, err := s.taskRepo.FindByID(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("reload task: %w", err)
	}
	return created, nil
}

// UpdateTask replaces every mutable field of the task. Any status may follow any other.
func (s *taskService) UpdateTask(ctx context.Context, actor *auth.Identity, id uuid.UUID, in TaskInput) error {
	task, err := s.load(ctx, actor, policy.Edit, id)
	if err != nil {
		return err
	}

	title, priority, err := validateCommon(in)
	if err != nil {
		return err
	}
	if in.Status == "" {
		return apperrors.NewValidationError("status", "is required")
	}
	if !model.CanTransition(task.Status, in.Status) {
		return apperrors.NewValidationError("status", fmt.Sprintf("cannot move from %s to %s", task.Status, in.Status))
	}
	if err := s.checkAssignee(ctx, in.AssignedToID); err != nil {
		return err
	}
	categories, err := s.resolveCategories(ctx, in.CategoryIDs)
	if err != nil {
		return err
	}

	task.Title = title
	task.Description = in.Description
	task.DueDate = in.DueDate
	task.Priority = priority
	task.Status = in.Status
	task.AssignedToID = in.AssignedToID
	task.Categories = categories
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (s *taskService) DeleteTask(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	if _, err := s.load(ctx, actor, policy.Delete, id); err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// load fetches a task and authorizes action on it. Existence is confirmed
// before ownership, so a missing task is NotFound even for a stranger.
func (s *taskService) load(ctx context.Context, actor *auth.Identity, action policy.Action, id uuid.UUID) (*model.Task, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	if err := policy.AuthorizeTask(actor, action, task); err != nil {
		return nil, err
	}
	return task, nil
}

func validateCommon(in TaskInput) (string, model.TaskPriority, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", "", apperrors.NewValidationError("title", "is required")
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityLow
	}
	if !priority.Valid() {
		return "", "", apperrors.NewValidationError("priority", fmt.Sprintf("unknown priority %q", priority))
	}
	if in.Status != "" && !in.Status.Valid() {
		return "", "", apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", in.Status))
	}
	return title, priority, nil
}

func (s *taskService) checkAssignee(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.userRepo.FindByID(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewValidationError("assignedToId", "user does not exist")
		}
		return fmt.Errorf("find assignee: %w", err)
	}
	return nil
}

func (s *taskService) resolveCategories(ctx context.Context, ids []uuid.UUID) ([]model.Category, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, nil
	}

	categories, err := s.categoryRepo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	if len(categories) != len(unique) {
		return nil, apperrors.NewValidationError("categoryIds", "unknown category")
	}
	return categories, nil
}
