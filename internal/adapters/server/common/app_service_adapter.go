package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evanschultz/taskboard/internal/app"
	"github.com/evanschultz/taskboard/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service task APIs.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// ListBoard returns every task grouped by status.
func (a *AppServiceAdapter) ListBoard(ctx context.Context) (Board, error) {
	if a == nil || a.service == nil {
		return Board{}, fmt.Errorf("app service adapter is not configured: %w", ErrServiceUnavailable)
	}
	grouped, err := a.service.ListGroupedTasks(ctx)
	if err != nil {
		return Board{}, mapAppError("list tasks", err)
	}
	return BoardFromGrouped(grouped), nil
}

// CreateTask validates and stores one task.
func (a *AppServiceAdapter) CreateTask(ctx context.Context, in CreateTaskRequest) (Task, error) {
	if a == nil || a.service == nil {
		return Task{}, fmt.Errorf("app service adapter is not configured: %w", ErrServiceUnavailable)
	}
	if strings.TrimSpace(in.Title) == "" {
		return Task{}, fmt.Errorf("title is required: %w", ErrInvalidRequest)
	}
	task, err := a.service.CreateTask(ctx, app.CreateTaskInput{
		Title:       in.Title,
		Description: in.Description,
		Tags:        in.Tags,
	})
	if err != nil {
		return Task{}, mapAppError("create task", err)
	}
	return TaskFromDomain(task), nil
}

// MoveTask changes the status of one task.
func (a *AppServiceAdapter) MoveTask(ctx context.Context, in MoveTaskRequest) (Task, error) {
	if a == nil || a.service == nil {
		return Task{}, fmt.Errorf("app service adapter is not configured: %w", ErrServiceUnavailable)
	}
	in.ID = strings.TrimSpace(in.ID)
	in.Status = strings.TrimSpace(in.Status)
	if in.ID == "" || in.Status == "" {
		return Task{}, fmt.Errorf("id and status are required: %w", ErrInvalidRequest)
	}
	task, err := a.service.MoveTask(ctx, in.ID, in.Status)
	if err != nil {
		// An unknown id is a client mistake on this route, like an unknown status.
		if errors.Is(err, app.ErrNotFound) {
			return Task{}, fmt.Errorf("move task: invalid id or status: %w", errors.Join(ErrInvalidRequest, ErrNotFound, err))
		}
		return Task{}, mapAppError("move task", err)
	}
	return TaskFromDomain(task), nil
}

// DeleteTask removes one task.
func (a *AppServiceAdapter) DeleteTask(ctx context.Context, in DeleteTaskRequest) error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrServiceUnavailable)
	}
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return fmt.Errorf("id is required: %w", ErrInvalidRequest)
	}
	if err := a.service.DeleteTask(ctx, in.ID); err != nil {
		return mapAppError("delete task", err)
	}
	return nil
}

// Ready reports backing-store readiness.
func (a *AppServiceAdapter) Ready(ctx context.Context) error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrServiceUnavailable)
	}
	if err := a.service.Ready(ctx); err != nil {
		return mapAppError("ready", err)
	}
	return nil
}

// TaskFromDomain converts one domain task into its wire shape.
func TaskFromDomain(t domain.Task) Task {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Tags:        append([]string(nil), tags...),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
	}
}

// TaskToDomain converts one wire task back into the domain model.
func TaskToDomain(t Task) domain.Task {
	status := domain.Status(t.Status)
	if !status.Valid() {
		status = domain.StatusTodo
	}
	return domain.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Tags:        domain.NormalizeTags(t.Tags),
		Status:      status,
		CreatedAt:   t.CreatedAt,
	}
}

// BoardFromGrouped converts grouped domain tasks into the wire board.
func BoardFromGrouped(grouped domain.Grouped) Board {
	return Board{
		Todo:       tasksFromDomain(grouped[domain.StatusTodo]),
		InProgress: tasksFromDomain(grouped[domain.StatusInProgress]),
		Done:       tasksFromDomain(grouped[domain.StatusDone]),
	}
}

// Grouped converts the wire board into grouped domain tasks. Missing lists become empty.
func (b Board) Grouped() domain.Grouped {
	out := domain.NewGrouped()
	for status, tasks := range map[domain.Status][]Task{
		domain.StatusTodo:       b.Todo,
		domain.StatusInProgress: b.InProgress,
		domain.StatusDone:       b.Done,
	} {
		for _, task := range tasks {
			converted := TaskToDomain(task)
			converted.Status = status
			out[status] = append(out[status], converted)
		}
	}
	return out
}

// tasksFromDomain converts a slice, always returning a non-nil result.
func tasksFromDomain(tasks []domain.Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, TaskFromDomain(task))
	}
	return out
}

// mapAppError maps app and domain errors into transport error categories.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, app.ErrStoreUnhealthy):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrServiceUnavailable, err))
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidStatus):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
