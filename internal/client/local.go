package client

import (
	"context"
	"fmt"

	"github.com/evanschultz/taskboard/internal/adapters/server/common"
	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
)

// Local serves the board from an in-process task service, without a network hop.
type Local struct {
	tasks common.TaskService
}

var _ board.API = (*Local)(nil)

// NewLocal wraps one task service.
func NewLocal(tasks common.TaskService) (*Local, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task service is required")
	}
	return &Local{tasks: tasks}, nil
}

// ListTasks returns every task grouped by status.
func (l *Local) ListTasks(ctx context.Context) (domain.Grouped, error) {
	out, err := l.tasks.ListBoard(ctx)
	if err != nil {
		return nil, err
	}
	return out.Grouped(), nil
}

// CreateTask stores one new task.
func (l *Local) CreateTask(ctx context.Context, draft board.Draft) (domain.Task, error) {
	task, err := l.tasks.CreateTask(ctx, common.CreateTaskRequest{
		Title:       draft.Title,
		Description: draft.Description,
		Tags:        draft.Tags,
	})
	if err != nil {
		return domain.Task{}, err
	}
	return common.TaskToDomain(task), nil
}

// MoveTask changes one task's status.
func (l *Local) MoveTask(ctx context.Context, id string, status domain.Status) error {
	_, err := l.tasks.MoveTask(ctx, common.MoveTaskRequest{ID: id, Status: string(status)})
	return err
}

// DeleteTask removes one task.
func (l *Local) DeleteTask(ctx context.Context, id string) error {
	return l.tasks.DeleteTask(ctx, common.DeleteTaskRequest{ID: id})
}
