package app

import (
	"context"

	"github.com/evanschultz/taskboard/internal/domain"
)

// Repository represents task storage used by the service.
type Repository interface {
	CreateTask(context.Context, domain.Task) error
	GetTask(context.Context, string) (domain.Task, error)
	ListTasks(context.Context) ([]domain.Task, error)
	UpdateTaskStatus(context.Context, string, domain.Status) error
	DeleteTask(context.Context, string) error
}

// HealthChecker is implemented by repositories that can report readiness.
type HealthChecker interface {
	Ping(context.Context) error
}
