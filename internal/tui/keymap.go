package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// KeyConfig overrides the default board bindings. Blank fields keep defaults.
type KeyConfig struct {
	PickUp     string
	NewTask    string
	DeleteTask string
	TaskInfo   string
	CopyID     string
	Reload     string
}

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	reload     key.Binding
	toggleHelp key.Binding
	moveLeft   key.Binding
	moveRight  key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	pickUp     key.Binding
	drop       key.Binding
	cancel     key.Binding
	addTask    key.Binding
	taskInfo   key.Binding
	deleteTask key.Binding
	copyID     key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		pickUp:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "pick up / drop")),
		drop:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		addTask:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		taskInfo:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "task info")),
		deleteTask: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		copyID:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
	}
}

// applyConfig rebinds configurable actions.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.pickUp, cfg.PickUp, "space", "pick up / drop")
	configureBinding(&k.addTask, cfg.NewTask, "n", "new task")
	configureBinding(&k.deleteTask, cfg.DeleteTask, "d", "delete task")
	configureBinding(&k.taskInfo, cfg.TaskInfo, "i", "task info")
	configureBinding(&k.copyID, cfg.CopyID, "y", "copy id")
	configureBinding(&k.reload, cfg.Reload, "r", "refresh")
}

// configureBinding replaces one binding's keys and help from raw config.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, helpKey := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(helpKey, desc)
}

// parseBindingKeys expands one configured key into matcher strings and a help label.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	switch {
	case raw == "space" || raw == " ":
		return []string{" ", "space"}, "space"
	case utf8.RuneCountInString(raw) == 1:
		r, _ := utf8.DecodeRuneInString(raw)
		if unicode.IsUpper(r) {
			return []string{raw, "shift+" + string(unicode.ToLower(r))}, raw
		}
		return []string{raw}, raw
	default:
		return []string{strings.ToLower(raw)}, raw
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.addTask, k.pickUp, k.deleteTask, k.taskInfo, k.reload, k.toggleHelp, k.quit}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addTask, k.taskInfo, k.deleteTask, k.copyID, k.reload, k.toggleHelp, k.quit},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.pickUp, k.drop, k.cancel},
	}
}
