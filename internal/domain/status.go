package domain

import (
	"slices"
	"strings"
)

// Status identifies the board column a task belongs to.
type Status string

// StatusTodo and related constants define the board columns in display order.
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inprogress"
	StatusDone       Status = "done"
)

var validStatuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// Statuses returns every status in canonical column order.
func Statuses() []Status {
	return append([]Status(nil), validStatuses...)
}

// ParseStatus normalizes raw input and rejects unknown statuses.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !slices.Contains(validStatuses, status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Valid reports whether the status is one of the board columns.
func (s Status) Valid() bool {
	return slices.Contains(validStatuses, s)
}

// Label returns the column heading for the status.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}
