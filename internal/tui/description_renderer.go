package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minDescriptionWrap keeps glamour from wrapping descriptions into unreadable slivers.
const minDescriptionWrap = 24

// descriptionRenderer renders task descriptions as terminal markdown for the task info view.
// It keeps one glamour renderer per wrap width and the last rendered description.
type descriptionRenderer struct {
	wrap     int
	renderer *glamour.TermRenderer

	taskID string
	source string
	output string
}

// render returns the styled description for one task, or "" when it has none.
// Rendering failures fall back to the raw trimmed text.
func (d *descriptionRenderer) render(taskID, description string, width int) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return ""
	}
	wrap := max(width, minDescriptionWrap)
	if d.renderer != nil && d.wrap == wrap && d.taskID == taskID && d.source == description {
		return d.output
	}
	if d.renderer == nil || d.wrap != wrap {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return description
		}
		d.renderer = renderer
		d.wrap = wrap
	}
	out, err := d.renderer.Render(description)
	if err != nil {
		return description
	}
	d.taskID = taskID
	d.source = description
	d.output = strings.Trim(out, "\n")
	return d.output
}
