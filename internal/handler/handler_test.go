package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/auth"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/handler"
	"taskmanager/internal/model"
	"taskmanager/internal/router"
	"taskmanager/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.User), args.Error(2)
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) ListTasks(ctx context.Context, actor *auth.Identity) ([]model.Task, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskService) GetTask(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) CreateTask(ctx context.Context, actor *auth.Identity, in service.TaskInput) (*model.Task, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, actor *auth.Identity, id uuid.UUID, in service.TaskInput) error {
	args := m.Called(ctx, actor, id, in)
	return args.Error(0)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func newContext(method, target, body string, id *auth.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = router.NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != nil {
		c.Set(auth.ContextKey, id)
	}
	return c, rec
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		setup   func(*MockAuthService)
		status  int
		message string
	}{
		{
			name: "success",
			body: `{"email":"admin@taskmanager.com","password":"Admin123!"}`,
			setup: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "admin@taskmanager.com", "Admin123!").Return("tok", &model.User{}, nil)
			},
			status:  http.StatusOK,
			message: "Login successful",
		},
		{
			name: "user not found",
			body: `{"email":"ghost@x.io","password":"x"}`,
			setup: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "ghost@x.io", "x").Return("", nil, apperrors.ErrUserNotFound)
			},
			status:  http.StatusBadRequest,
			message: "User not found",
		},
		{
			name: "invalid password",
			body: `{"email":"admin@taskmanager.com","password":"wrong"}`,
			setup: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "admin@taskmanager.com", "wrong").Return("", nil, apperrors.ErrInvalidCredentials)
			},
			status:  http.StatusBadRequest,
			message: "Invalid password",
		},
		{
			name:    "invalid email",
			body:    `{"email":"nope","password":"x"}`,
			status:  http.StatusBadRequest,
			message: "email: must be a valid email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			if tt.setup != nil {
				tt.setup(svc)
			}
			h := handler.NewAuthHandler(svc)
			c, rec := newContext(http.MethodPost, "/api/auth/login", tt.body, nil)

			err := h.Login(c)

			if tt.status == http.StatusOK {
				require.NoError(t, err)
				var resp handler.LoginResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "tok", resp.Token)
				assert.Equal(t, tt.message, resp.Message)
				return
			}
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.status, he.Code)
			assert.Equal(t, handler.MessageResponse{Message: tt.message}, he.Message)
		})
	}
}

func TestAuthHandler_RegisterInternalErrorIs500(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	h := handler.NewAuthHandler(svc)
	c, _ := newContext(http.MethodPost, "/api/auth/register",
		`{"email":"a@b.io","password":"secret1","firstName":"A","lastName":"B"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, statusOf(t, h.Register(c)))
}

func TestTaskHandler_ErrorMapping(t *testing.T) {
	caller := &auth.Identity{UserID: uuid.New(), Roles: []string{model.RoleUser}}
	id := uuid.New()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperrors.ErrTaskNotFound, http.StatusNotFound},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTaskService)
			svc.On("DeleteTask", mock.Anything, caller, id).Return(tt.err)
			h := handler.NewTaskHandler(svc)
			c, _ := newContext(http.MethodDelete, "/api/task/"+id.String(), "", caller)
			c.SetParamNames("id")
			c.SetParamValues(id.String())

			assert.Equal(t, tt.status, statusOf(t, h.DeleteTask(c)))
		})
	}
}

func TestTaskHandler_CreatePassesOrdinalPriority(t *testing.T) {
	caller := &auth.Identity{UserID: uuid.New(), Roles: []string{model.RoleUser}}
	svc := new(MockTaskService)
	svc.On("CreateTask", mock.Anything, caller, mock.MatchedBy(func(in service.TaskInput) bool {
		return in.Title == "t" && in.Priority == model.PriorityMedium
	})).Return(&model.Task{ID: uuid.New(), Title: "t", Status: model.StatusTodo}, nil)
	h := handler.NewTaskHandler(svc)
	c, rec := newContext(http.MethodPost, "/api/task", `{"title":"t","priority":1}`, caller)

	require.NoError(t, h.CreateTask(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestTaskHandler_WithoutIdentity(t *testing.T) {
	h := handler.NewTaskHandler(new(MockTaskService))
	c, _ := newContext(http.MethodGet, "/api/task", "", nil)

	assert.Equal(t, http.StatusUnauthorized, statusOf(t, h.ListTasks(c)))
}
