package domain

import (
	"cmp"
	"slices"
)

// Grouped maps each status to its ordered tasks.
type Grouped map[Status][]Task

// NewGrouped returns a mapping with an empty list for every status.
func NewGrouped() Grouped {
	out := make(Grouped, len(validStatuses))
	for _, status := range validStatuses {
		out[status] = []Task{}
	}
	return out
}

// GroupTasks buckets tasks by status, preserving input order within each bucket.
func GroupTasks(tasks []Task) Grouped {
	out := NewGrouped()
	for _, task := range tasks {
		status := task.Status
		if !status.Valid() {
			status = StatusTodo
		}
		out[status] = append(out[status], task)
	}
	return out
}

// SortByCreated orders tasks oldest first, breaking ties by id.
func SortByCreated(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Count returns the number of tasks across all statuses.
func (g Grouped) Count() int {
	total := 0
	for _, tasks := range g {
		total += len(tasks)
	}
	return total
}
