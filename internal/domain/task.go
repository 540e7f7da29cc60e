package domain

import (
	"strings"
	"time"
)

type Task struct {
	ID          string
	Title       string
	Description string
	Tags        []string
	Status      Status
	CreatedAt   time.Time
}

type TaskInput struct {
	ID          string
	Title       string
	Description string
	Tags        []string
	Status      Status
}

func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if !in.Status.Valid() {
		return Task{}, ErrInvalidStatus
	}

	return Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Tags:        NormalizeTags(in.Tags),
		Status:      in.Status,
		CreatedAt:   now.UTC(),
	}, nil
}

func (t *Task) Move(status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	t.Status = status
	return nil
}

// ParseTags splits comma-separated input, keeping entered order.
func ParseTags(raw string) []string {
	return NormalizeTags(strings.Split(raw, ","))
}

// NormalizeTags trims every tag and drops empties without reordering.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, raw := range tags {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}
