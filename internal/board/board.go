// Package board holds the interaction core of the task board: rendering columns,
// tracking drag sessions with optimistic moves, and dispatching user actions.
//
// The Controller is not safe for concurrent use. Hosts call it from a single event
// loop and run the returned Commands elsewhere, feeding each Result back through Apply.
package board

import (
	"context"

	"github.com/evanschultz/taskboard/internal/domain"
)

// Draft carries validated input for a new task.
type Draft struct {
	Title       string
	Description string
	Tags        []string
}

// API is the backend the board reads from and mutates.
type API interface {
	ListTasks(context.Context) (domain.Grouped, error)
	CreateTask(context.Context, Draft) (domain.Task, error)
	MoveTask(context.Context, string, domain.Status) error
	DeleteTask(context.Context, string) error
}

// Dialog is the task-creation dialog owned by the host UI.
type Dialog interface {
	Open()
	Close()
	// Reset clears every input field.
	Reset()
}

// Level grades user-facing notifications.
type Level int

// LevelInfo and related constants define notification severities.
const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Notifier surfaces messages to the user.
type Notifier interface {
	Notify(Level, string)
}

// Confirmer asks the user a yes/no question. The host answers later via ResolveDelete.
type Confirmer interface {
	Confirm(prompt string)
}

// Command is work to run off the event loop. Its Result goes back through Controller.Apply.
type Command func(context.Context) Result

// Result is the outcome of one Command.
type Result interface {
	apply(*Controller) []Command
}

// Options wires host capabilities into a Controller. Nil fields become no-ops.
type Options struct {
	Dialog    Dialog
	Notifier  Notifier
	Confirmer Confirmer
}

// Controller owns the rendered columns, the drag session, and pending confirmations.
type Controller struct {
	api       API
	dialog    Dialog
	notifier  Notifier
	confirmer Confirmer

	columns       []*Column
	drag          DragSession
	pendingDelete string
	dialogSession uint64
	started       bool
}

// New constructs a controller with empty columns.
func New(api API, opts Options) *Controller {
	c := &Controller{
		api:       api,
		dialog:    opts.Dialog,
		notifier:  opts.Notifier,
		confirmer: opts.Confirmer,
	}
	if c.dialog == nil {
		c.dialog = noopDialog{}
	}
	if c.notifier == nil {
		c.notifier = noopNotifier{}
	}
	if c.confirmer == nil {
		c.confirmer = noopConfirmer{}
	}
	for _, status := range domain.Statuses() {
		c.columns = append(c.columns, &Column{Status: status, Cards: []Card{}})
	}
	return c
}

// Apply folds one command result into controller state and returns follow-up commands.
func (c *Controller) Apply(res Result) []Command {
	if res == nil {
		return nil
	}
	return res.apply(c)
}

// Run executes a command and applies its result inline, following every
// follow-up command until none remain. Hosts without an event loop use it.
func (c *Controller) Run(ctx context.Context, cmd Command) {
	queue := []Command{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		queue = append(queue, c.Apply(next(ctx))...)
	}
}

type noopDialog struct{}

func (noopDialog) Open()  {}
func (noopDialog) Close() {}
func (noopDialog) Reset() {}

type noopNotifier struct{}

func (noopNotifier) Notify(Level, string) {}

type noopConfirmer struct{}

func (noopConfirmer) Confirm(string) {}
