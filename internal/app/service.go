package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/taskboard/internal/domain"
)

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service owns task lifecycle rules on top of one repository.
type Service struct {
	repo  Repository
	idGen IDGenerator
	clock Clock
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:  repo,
		idGen: idGen,
		clock: clock,
	}
}

// CreateTaskInput holds input values for create task operations.
type CreateTaskInput struct {
	Title       string
	Description string
	Tags        []string
}

// CreateTask validates input and stores a new task in the todo column.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	task, err := domain.NewTask(domain.TaskInput{
		ID:          s.idGen(),
		Title:       in.Title,
		Description: in.Description,
		Tags:        in.Tags,
		Status:      domain.StatusTodo,
	}, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// ListTasks returns every task in repository order: creation time, then insertion.
func (s *Service) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListGroupedTasks returns tasks bucketed by status.
func (s *Service) ListGroupedTasks(ctx context.Context) (domain.Grouped, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	return domain.GroupTasks(tasks), nil
}

// MoveTask sets the status of an existing task.
func (s *Service) MoveTask(ctx context.Context, taskID string, status string) (domain.Task, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return domain.Task{}, domain.ErrInvalidID
	}
	next, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Task{}, err
	}
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	if err := task.Move(next); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.UpdateTaskStatus(ctx, task.ID, task.Status); err != nil {
		return domain.Task{}, fmt.Errorf("move task: %w", err)
	}
	return task, nil
}

// DeleteTask removes a task. Missing tasks are treated as already deleted.
func (s *Service) DeleteTask(ctx context.Context, taskID string) error {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return domain.ErrInvalidID
	}
	if err := s.repo.DeleteTask(ctx, taskID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// Ready reports whether the backing store can serve requests.
func (s *Service) Ready(ctx context.Context) error {
	checker, ok := s.repo.(HealthChecker)
	if !ok {
		return nil
	}
	if err := checker.Ping(ctx); err != nil {
		return errors.Join(ErrStoreUnhealthy, err)
	}
	return nil
}
