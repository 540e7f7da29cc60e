package board

import (
	"context"
	"fmt"

	"github.com/evanschultz/taskboard/internal/domain"
)

// DragSession records the card currently being dragged. At most one is active.
type DragSession struct {
	taskID string
}

// Active reports whether a drag is in progress.
func (s DragSession) Active() bool {
	return s.taskID != ""
}

// TaskID returns the dragged task id, or "" when idle.
func (s DragSession) TaskID() string {
	return s.taskID
}

// Move describes one optimistic status change awaiting backend confirmation.
type Move struct {
	TaskID string
	From   domain.Status
	To     domain.Status
}

// moveResult carries the backend outcome of one Move.
type moveResult struct {
	move Move
	err  error
}

// apply keeps the optimistic placement on success and reloads on failure.
func (r moveResult) apply(c *Controller) []Command {
	if r.err == nil {
		return nil
	}
	c.notifier.Notify(LevelError, fmt.Sprintf("Failed to move task: %v", r.err))
	return []Command{c.Reload()}
}

// Drag returns the current drag session.
func (c *Controller) Drag() DragSession {
	return c.drag
}

// DragStart begins dragging one rendered card. It is ignored while another drag is active
// or when the card is not on the board.
func (c *Controller) DragStart(taskID string) bool {
	if c.drag.Active() {
		return false
	}
	if _, _, ok := c.locate(taskID); !ok {
		return false
	}
	c.drag = DragSession{taskID: taskID}
	return true
}

// DragOver highlights the hovered column as a valid drop target.
func (c *Controller) DragOver(status domain.Status) {
	for _, col := range c.columns {
		col.Highlighted = col.Status == status
	}
}

// DragLeave removes the drop-target highlight from one column.
func (c *Controller) DragLeave(status domain.Status) {
	if col, ok := c.column(status); ok {
		col.Highlighted = false
	}
}

// DragEnd clears the drag session and any leftover highlight, whatever the outcome.
func (c *Controller) DragEnd() {
	c.drag = DragSession{}
	for _, col := range c.columns {
		col.Highlighted = false
	}
}

// Drop appends the dragged card to the end of the target column before the backend
// confirms, then returns the command that persists the move. It returns nil when no
// drag is active or the target is not a board column.
func (c *Controller) Drop(status domain.Status) Command {
	target, ok := c.column(status)
	if !ok {
		return nil
	}
	target.Highlighted = false
	if !c.drag.Active() {
		return nil
	}
	colIdx, cardIdx, ok := c.locate(c.drag.taskID)
	if !ok {
		return nil
	}
	source := c.columns[colIdx]
	card := source.Cards[cardIdx]
	source.Cards = append(source.Cards[:cardIdx:cardIdx], source.Cards[cardIdx+1:]...)
	target.Cards = append(target.Cards, card)

	move := Move{TaskID: card.ID, From: source.Status, To: status}
	api := c.api
	return func(ctx context.Context) Result {
		return moveResult{move: move, err: api.MoveTask(ctx, move.TaskID, move.To)}
	}
}
