package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/evanschultz/taskboard/internal/domain"
)

// DeletePrompt is the confirmation question shown before deleting a task.
const DeletePrompt = "Delete this task?"

// CreateForm holds raw dialog input.
type CreateForm struct {
	Title       string
	Description string
	Tags        string
}

// loadResult carries one board fetch.
type loadResult struct {
	grouped domain.Grouped
	err     error
}

// apply renders fetched tasks, or keeps the current board and notifies on failure.
func (r loadResult) apply(c *Controller) []Command {
	if r.err != nil {
		c.notifier.Notify(LevelError, fmt.Sprintf("Failed to load tasks: %v", r.err))
		return nil
	}
	c.Render(r.grouped)
	return nil
}

// createResult carries one create outcome and the dialog session it was submitted from.
type createResult struct {
	task    domain.Task
	err     error
	session uint64
}

// apply closes the dialog, clears its inputs, and reloads whatever the outcome.
// A dialog reopened after the submit belongs to a newer session and is left alone.
func (r createResult) apply(c *Controller) []Command {
	if r.session == c.dialogSession {
		c.dialog.Close()
		c.dialog.Reset()
	}
	if r.err != nil {
		c.notifier.Notify(LevelError, fmt.Sprintf("Failed to create task: %v", r.err))
	}
	return []Command{c.Reload()}
}

// deleteResult carries one delete outcome.
type deleteResult struct {
	taskID string
	err    error
}

// apply reloads after a delete attempt.
func (r deleteResult) apply(c *Controller) []Command {
	if r.err != nil {
		c.notifier.Notify(LevelError, fmt.Sprintf("Failed to delete task: %v", r.err))
	}
	return []Command{c.Reload()}
}

// Reload returns the command that fetches every task and re-renders the board.
func (c *Controller) Reload() Command {
	api := c.api
	return func(ctx context.Context) Result {
		grouped, err := api.ListTasks(ctx)
		return loadResult{grouped: grouped, err: err}
	}
}

// Start returns the initial load command. Later calls return nil.
func (c *Controller) Start() Command {
	if c.started {
		return nil
	}
	c.started = true
	return c.Reload()
}

// Refresh reloads the board on request.
func (c *Controller) Refresh() Command {
	return c.Reload()
}

// OpenCreate shows the creation dialog and starts a new dialog session.
func (c *Controller) OpenCreate() {
	c.dialogSession++
	c.dialog.Open()
}

// CancelCreate hides the creation dialog without submitting.
func (c *Controller) CancelCreate() {
	c.dialog.Close()
}

// SubmitCreate validates the form and returns the create command. A blank title
// notifies the user, keeps the dialog open, and sends nothing.
func (c *Controller) SubmitCreate(form CreateForm) Command {
	title := strings.TrimSpace(form.Title)
	if title == "" {
		c.notifier.Notify(LevelWarn, "Title required")
		return nil
	}
	draft := Draft{
		Title:       title,
		Description: strings.TrimSpace(form.Description),
		Tags:        domain.ParseTags(form.Tags),
	}
	api := c.api
	session := c.dialogSession
	return func(ctx context.Context) Result {
		task, err := api.CreateTask(ctx, draft)
		return createResult{task: task, err: err, session: session}
	}
}

// RequestDelete asks the user to confirm deleting one task.
func (c *Controller) RequestDelete(taskID string) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return
	}
	c.pendingDelete = taskID
	c.confirmer.Confirm(DeletePrompt)
}

// PendingDelete returns the task id awaiting confirmation, or "".
func (c *Controller) PendingDelete() string {
	return c.pendingDelete
}

// ResolveDelete answers the pending confirmation. Declining leaves the board untouched.
func (c *Controller) ResolveDelete(confirmed bool) Command {
	taskID := c.pendingDelete
	c.pendingDelete = ""
	if !confirmed || taskID == "" {
		return nil
	}
	api := c.api
	return func(ctx context.Context) Result {
		return deleteResult{taskID: taskID, err: api.DeleteTask(ctx, taskID)}
	}
}
