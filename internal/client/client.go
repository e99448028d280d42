// Package client talks to the task manager HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"taskmanager/internal/model"
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string `json:"message"`
	Code       string `json:"code"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// Client is safe for concurrent use. Calls go through a circuit breaker that
// opens after repeated transport failures or 5xx responses.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker

	mu    sync.RWMutex
	token string
}

// New creates a client for the API rooted at baseURL (for example http://localhost:8080).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "taskmanager-api",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

type loginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return "", err
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

// ListTasks returns the tasks visible to the caller.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, "/api/task", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

type updateTaskPayload struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	DueDate      *time.Time         `json:"dueDate"`
	Priority     model.TaskPriority `json:"priority"`
	Status       model.TaskStatus   `json:"status"`
	AssignedToID *uuid.UUID         `json:"assignedToId"`
	CategoryIDs  []uuid.UUID        `json:"categoryIds"`
}

// UpdateTask sends the full task, since the server replaces every mutable field.
func (c *Client) UpdateTask(ctx context.Context, task model.Task) error {
	payload := updateTaskPayload{
		Title:        task.Title,
		Description:  task.Description,
		DueDate:      task.DueDate,
		Priority:     task.Priority,
		Status:       task.Status,
		AssignedToID: task.AssignedToID,
		CategoryIDs:  make([]uuid.UUID, 0, len(task.Categories)),
	}
	for _, cat := range task.Categories {
		payload.CategoryIDs = append(payload.CategoryIDs, cat.ID)
	}
	return c.do(ctx, http.MethodPut, "/api/task/"+task.ID.String(), payload, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, in, out)
	})
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
