// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidRequest reports malformed or rejected transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrServiceUnavailable reports a backing store that cannot serve requests.
var ErrServiceUnavailable = errors.New("service unavailable")

// Task is the wire shape of one task.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Board groups tasks by status in creation order.
type Board struct {
	Todo       []Task `json:"todo"`
	InProgress []Task `json:"inprogress"`
	Done       []Task `json:"done"`
}

// CreateTaskRequest captures input for new tasks.
type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// MoveTaskRequest captures one status change.
type MoveTaskRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// DeleteTaskRequest identifies one task to remove.
type DeleteTaskRequest struct {
	ID string `json:"id"`
}

// OKResponse acknowledges mutations that return no resource.
type OKResponse struct {
	OK bool `json:"ok"`
}

// TaskService captures board operations exposed to transports.
type TaskService interface {
	ListBoard(context.Context) (Board, error)
	CreateTask(context.Context, CreateTaskRequest) (Task, error)
	MoveTask(context.Context, MoveTaskRequest) (Task, error)
	DeleteTask(context.Context, DeleteTaskRequest) error
}

// ReadinessChecker reports whether dependencies can serve traffic.
type ReadinessChecker interface {
	Ready(context.Context) error
}
