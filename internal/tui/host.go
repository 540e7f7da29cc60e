package tui

import "github.com/evanschultz/taskboard/internal/board"

// notice is one message raised by the board controller.
type notice struct {
	level board.Level
	text  string
}

// boardHost records controller capability calls so Update can mirror them into the model.
type boardHost struct {
	dialogOpen    bool
	resetForm     bool
	confirmPrompt string
	notices       []notice
}

// Open marks the create dialog visible.
func (h *boardHost) Open() {
	h.dialogOpen = true
}

// Close marks the create dialog hidden.
func (h *boardHost) Close() {
	h.dialogOpen = false
}

// Reset requests cleared form inputs.
func (h *boardHost) Reset() {
	h.resetForm = true
}

// Notify queues one status message.
func (h *boardHost) Notify(level board.Level, text string) {
	h.notices = append(h.notices, notice{level: level, text: text})
}

// Confirm queues a yes/no prompt.
func (h *boardHost) Confirm(prompt string) {
	h.confirmPrompt = prompt
}
