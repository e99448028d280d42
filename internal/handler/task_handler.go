package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"taskmanager/internal/auth"
	"taskmanager/internal/model"
	"taskmanager/internal/service"
)

// TaskHandler handles task endpoints.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest represents a task creation request.
// Priority accepts a name ("High") or an ordinal (2).
type CreateTaskRequest struct {
	Title        string             `json:"title" validate:"required,max=255"`
	Description  string             `json:"description"`
	DueDate      *time.Time         `json:"dueDate"`
	Priority     model.TaskPriority `json:"priority" swaggertype:"string" enums:"Low,Medium,High,Urgent"`
	AssignedToID *uuid.UUID         `json:"assignedToId" swaggertype:"string" format:"uuid"`
	CategoryIDs  []uuid.UUID        `json:"categoryIds" swaggertype:"array,string"`
}

// UpdateTaskRequest replaces every mutable field of a task.
type UpdateTaskRequest struct {
	Title        string             `json:"title" validate:"required,max=255"`
	Description  string             `json:"description"`
	DueDate      *time.Time         `json:"dueDate"`
	Priority     model.TaskPriority `json:"priority" swaggertype:"string" enums:"Low,Medium,High,Urgent"`
	Status       model.TaskStatus   `json:"status" validate:"required" swaggertype:"string" enums:"Todo,InProgress,Done,Cancelled"`
	AssignedToID *uuid.UUID         `json:"assignedToId" swaggertype:"string" format:"uuid"`
	CategoryIDs  []uuid.UUID        `json:"categoryIds" swaggertype:"array,string"`
}

// ListTasks godoc
// @Summary List visible tasks
// @Description Admins see every task, other users only the tasks they created.
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Task
// @Failure 401 {object} errors.ErrorResponse
// @Router /task [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	actor, err := auth.CurrentIdentity(c)
	if err != nil {
		return fail(err)
	}
	tasks, err := h.taskService.ListTasks(c.Request().Context(), actor)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// GetTask godoc
// @Summary Get task by id
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /task/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	actor, err := auth.CurrentIdentity(c)
	if err != nil {
		return fail(err)
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	task, err := h.taskService.GetTask(c.Request().Context(), actor, id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, task)
}

// CreateTask godoc
// @Summary Create task
// @Description The task starts in Todo and is owned by the caller.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskRequest true "Task data"
// @Success 201 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /task [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	actor, err := auth.CurrentIdentity(c)
	if err != nil {
		return fail(err)
	}
	var req CreateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), actor, service.TaskInput{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		Priority:     req.Priority,
		AssignedToID: req.AssignedToID,
		CategoryIDs:  req.CategoryIDs,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, task)
}

// UpdateTask godoc
// @Summary Replace task
// @Tags tasks
// @Accept json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body UpdateTaskRequest true "Task data"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /task/{id} [put]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	actor, err := auth.CurrentIdentity(c)
	if err != nil {
		return fail(err)
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req UpdateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err = h.taskService.UpdateTask(c.Request().Context(), actor, id, service.TaskInput{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		Priority:     req.Priority,
		Status:       req.Status,
		AssignedToID: req.AssignedToID,
		CategoryIDs:  req.CategoryIDs,
	})
	if err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteTask godoc
// @Summary Delete task
// @Tags tasks
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /task/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	actor, err := auth.CurrentIdentity(c)
	if err != nil {
		return fail(err)
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.taskService.DeleteTask(c.Request().Context(), actor, id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
