package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
)

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeAddTask
	modeConfirmDelete
	modeTaskInfo
)

// task-form field indexes used throughout keyboard/update logic.
const (
	taskFieldTitle = iota
	taskFieldDescription
	taskFieldTags
)

// board layout constants shared by rendering and mouse hit testing.
const (
	// colOverhead is the per-column border (2), horizontal padding (2), and margin (1).
	colOverhead = 5
	// cardsTop is the row offset of the first card inside a column: border, header, spacer.
	cardsTop = 3
)

// Delete confirmation choices. Cancel is preselected.
const (
	confirmChoiceConfirm = iota
	confirmChoiceCancel
)

// resultMsg carries one finished board command back into Update.
type resultMsg struct {
	result board.Result
}

// actionMsg carries message data through update handling.
type actionMsg struct {
	err    error
	status string
}

// Model represents model data used by this package.
type Model struct {
	ctrl *board.Controller
	host *boardHost
	ctx  context.Context

	ready  bool
	width  int
	height int

	status      string
	statusLevel board.Level
	pending     int

	help            help.Model
	keys            keyMap
	title           string
	copyToClipboard func(string) error
	descriptions    *descriptionRenderer

	selectedColumn int
	selectedTask   int
	hoverColumn    int
	mouseDrag      bool
	mouseMoved     bool

	mode           inputMode
	formInputs     []textinput.Model
	formFocus      int
	creating       bool
	confirmPrompt  string
	confirmChoice  int
	taskInfoTaskID string
}

// NewModel constructs a board model over one backend API.
func NewModel(api board.API, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	host := &boardHost{}
	m := Model{
		ctrl: board.New(api, board.Options{
			Dialog:    host,
			Notifier:  host,
			Confirmer: host,
		}),
		host:            host,
		ctx:             context.Background(),
		status:          "loading...",
		help:            h,
		keys:            newKeyMap(),
		title:           "taskboard",
		copyToClipboard: clipboard.WriteAll,
		descriptions:    &descriptionRenderer{},
		hoverColumn:     -1,
		formInputs: []textinput.Model{
			newModalInput("title: ", "required", "", 200),
			newModalInput("description: ", "optional, markdown", "", 2000),
			newModalInput("tags: ", "comma separated", "", 200),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init starts the initial board load.
func (m Model) Init() tea.Cmd {
	cmd := m.ctrl.Start()
	if cmd == nil {
		return nil
	}
	return m.boardCmd(cmd)
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case resultMsg:
		m.pending = max(0, m.pending-1)
		focusID := m.selectedCardID()
		next := m.ctrl.Apply(msg.result)
		if m.pending == 0 && strings.HasSuffix(m.status, "...") {
			m.setStatus(board.LevelInfo, "ready")
		}
		hostCmd := m.syncHost()
		if focusID != "" {
			m.focusTaskByID(focusID)
		}
		m.clampSelections()
		nextCmd := m.boardCmds(next)
		return m, batchCmds(hostCmd, nextCmd)

	case actionMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			m.statusLevel = board.LevelError
			return m, nil
		}
		m.status = msg.status
		m.statusLevel = board.LevelInfo
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		if m.mode == modeAddTask && len(m.formInputs) > 0 {
			var cmd tea.Cmd
			m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// boardCmd wraps one controller command as a tea command.
func (m *Model) boardCmd(cmd board.Command) tea.Cmd {
	if cmd == nil {
		return nil
	}
	m.pending++
	ctx := m.ctx
	return func() tea.Msg {
		return resultMsg{result: cmd(ctx)}
	}
}

// boardCmds wraps follow-up controller commands.
func (m *Model) boardCmds(cmds []board.Command) tea.Cmd {
	out := make([]tea.Cmd, 0, len(cmds))
	for _, cmd := range cmds {
		out = append(out, m.boardCmd(cmd))
	}
	return batchCmds(out...)
}

// batchCmds drops nil commands and avoids batching a single command.
func batchCmds(cmds ...tea.Cmd) tea.Cmd {
	out := make([]tea.Cmd, 0, len(cmds))
	for _, cmd := range cmds {
		if cmd != nil {
			out = append(out, cmd)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return tea.Batch(out...)
	}
}

// syncHost mirrors controller capability calls into the model.
func (m *Model) syncHost() tea.Cmd {
	var cmd tea.Cmd
	if m.host.resetForm {
		for idx := range m.formInputs {
			m.formInputs[idx].Reset()
		}
		m.host.resetForm = false
	}
	switch {
	case m.host.dialogOpen && m.mode != modeAddTask:
		m.mode = modeAddTask
		m.creating = false
		cmd = m.focusTaskFormField(taskFieldTitle)
	case !m.host.dialogOpen && m.mode == modeAddTask:
		m.mode = modeNone
		m.creating = false
	}
	if m.host.confirmPrompt != "" {
		m.mode = modeConfirmDelete
		m.confirmPrompt = m.host.confirmPrompt
		m.confirmChoice = confirmChoiceCancel
		m.host.confirmPrompt = ""
	}
	for _, n := range m.host.notices {
		m.status = n.text
		m.statusLevel = n.level
	}
	m.host.notices = nil
	return cmd
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// focusTaskFormField focuses one create-form input.
func (m *Model) focusTaskFormField(idx int) tea.Cmd {
	if len(m.formInputs) == 0 {
		return nil
	}
	m.formFocus = wrapIndex(idx, 0, len(m.formInputs))
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	return m.formInputs[m.formFocus].Focus()
}

// taskForm returns raw create-form values.
func (m Model) taskForm() board.CreateForm {
	return board.CreateForm{
		Title:       m.formInputs[taskFieldTitle].Value(),
		Description: m.formInputs[taskFieldDescription].Value(),
		Tags:        m.formInputs[taskFieldTags].Value(),
	}
}

// handleNormalModeKey handles board-level keys.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	dragging := m.ctrl.Drag().Active()
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.cancel):
		if m.help.ShowAll {
			m.help.ShowAll = false
			return m, nil
		}
		if dragging {
			m.ctrl.DragEnd()
			m.hoverColumn = -1
			m.mouseDrag = false
			m.setStatus(board.LevelInfo, "drag cancelled")
		}
		return m, nil
	case key.Matches(msg, m.keys.moveLeft):
		if dragging {
			m.hoverTo(m.hoverColumn - 1)
			return m, nil
		}
		m.selectedColumn = max(0, m.selectedColumn-1)
		m.clampSelections()
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if dragging {
			m.hoverTo(m.hoverColumn + 1)
			return m, nil
		}
		m.selectedColumn = min(len(domain.Statuses())-1, m.selectedColumn+1)
		m.clampSelections()
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.selectedTask++
		m.clampSelections()
		return m, nil
	case key.Matches(msg, m.keys.pickUp):
		if dragging {
			return m.dropAt(m.hoverColumn)
		}
		card, ok := m.selectedCard()
		if !ok || !m.ctrl.DragStart(card.ID) {
			return m, nil
		}
		m.hoverColumn = -1
		m.hoverTo(m.selectedColumn)
		m.setStatus(board.LevelInfo, fmt.Sprintf("dragging %s • h/l choose column • enter drop • esc cancel", card.IDLabel()))
		return m, nil
	case key.Matches(msg, m.keys.drop):
		if dragging {
			return m.dropAt(m.hoverColumn)
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.setStatus(board.LevelInfo, "refreshing...")
		cmd := m.boardCmd(m.ctrl.Refresh())
		return m, cmd
	}

	if dragging {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.addTask):
		m.ctrl.OpenCreate()
		cmd := m.syncHost()
		return m, cmd
	case key.Matches(msg, m.keys.taskInfo):
		card, ok := m.selectedCard()
		if !ok {
			return m, nil
		}
		m.mode = modeTaskInfo
		m.taskInfoTaskID = card.ID
		return m, nil
	case key.Matches(msg, m.keys.deleteTask):
		card, ok := m.selectedCard()
		if !ok {
			return m, nil
		}
		m.ctrl.RequestDelete(card.ID)
		cmd := m.syncHost()
		return m, cmd
	case key.Matches(msg, m.keys.copyID):
		card, ok := m.selectedCard()
		if !ok {
			return m, nil
		}
		return m, m.copyIDCmd(card.ID)
	default:
		return m, nil
	}
}

// handleInputModeKey handles keys while a modal is open.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeAddTask:
		switch msg.String() {
		case "esc":
			m.ctrl.CancelCreate()
			m.setStatus(board.LevelInfo, "cancelled")
			cmd := m.syncHost()
			return m, cmd
		case "tab", "down":
			cmd := m.focusTaskFormField(m.formFocus + 1)
			return m, cmd
		case "shift+tab", "up":
			cmd := m.focusTaskFormField(m.formFocus - 1)
			return m, cmd
		case "enter":
			if m.creating {
				return m, nil
			}
			cmd := m.ctrl.SubmitCreate(m.taskForm())
			hostCmd := m.syncHost()
			if cmd == nil {
				return m, hostCmd
			}
			m.creating = true
			m.setStatus(board.LevelInfo, "creating task...")
			createCmd := m.boardCmd(cmd)
			return m, batchCmds(hostCmd, createCmd)
		}
		var cmd tea.Cmd
		m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
		return m, cmd

	case modeConfirmDelete:
		switch msg.String() {
		case "esc", "n":
			return m.resolveDelete(false)
		case "h", "left", "l", "right":
			if m.confirmChoice == confirmChoiceConfirm {
				m.confirmChoice = confirmChoiceCancel
			} else {
				m.confirmChoice = confirmChoiceConfirm
			}
			return m, nil
		case "y":
			return m.resolveDelete(true)
		case "enter":
			return m.resolveDelete(m.confirmChoice == confirmChoiceConfirm)
		default:
			return m, nil
		}

	case modeTaskInfo:
		switch {
		case msg.String() == "esc", key.Matches(msg, m.keys.taskInfo):
			m.mode = modeNone
			m.taskInfoTaskID = ""
			return m, nil
		case key.Matches(msg, m.keys.copyID):
			return m, m.copyIDCmd(m.taskInfoTaskID)
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

// resolveDelete answers the pending delete confirmation.
func (m Model) resolveDelete(confirmed bool) (tea.Model, tea.Cmd) {
	m.mode = modeNone
	m.confirmPrompt = ""
	m.confirmChoice = confirmChoiceCancel
	cmd := m.ctrl.ResolveDelete(confirmed)
	if cmd == nil {
		m.setStatus(board.LevelInfo, "cancelled")
		return m, nil
	}
	m.setStatus(board.LevelInfo, "deleting task...")
	out := m.boardCmd(cmd)
	return m, out
}

// hoverTo moves the keyboard drag target to one column.
func (m *Model) hoverTo(colIdx int) {
	statuses := domain.Statuses()
	colIdx = clamp(colIdx, 0, len(statuses)-1)
	if m.hoverColumn >= 0 && m.hoverColumn != colIdx {
		m.ctrl.DragLeave(statuses[m.hoverColumn])
	}
	m.hoverColumn = colIdx
	m.ctrl.DragOver(statuses[colIdx])
}

// dropAt drops the dragged card on one column and ends the drag.
func (m Model) dropAt(colIdx int) (tea.Model, tea.Cmd) {
	statuses := domain.Statuses()
	taskID := m.ctrl.Drag().TaskID()
	var cmd board.Command
	if colIdx >= 0 && colIdx < len(statuses) {
		cmd = m.ctrl.Drop(statuses[colIdx])
	}
	m.ctrl.DragEnd()
	m.hoverColumn = -1
	m.mouseDrag = false
	m.mouseMoved = false
	if cmd == nil {
		return m, nil
	}
	m.focusTaskByID(taskID)
	m.setStatus(board.LevelInfo, fmt.Sprintf("moved #%s to %s", taskID, statuses[colIdx].Label()))
	out := m.boardCmd(cmd)
	return m, out
}

// copyIDCmd copies one task id to the system clipboard.
func (m Model) copyIDCmd(taskID string) tea.Cmd {
	write := m.copyToClipboard
	return func() tea.Msg {
		if err := write(taskID); err != nil {
			return actionMsg{err: fmt.Errorf("copy id: %w", err)}
		}
		return actionMsg{status: "copied #" + taskID}
	}
}

// setStatus records one local status message.
func (m *Model) setStatus(level board.Level, text string) {
	m.status = text
	m.statusLevel = level
}

// handleMouseClick starts a mouse drag on the clicked card.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone || msg.Button != tea.MouseLeft {
		return m, nil
	}
	colIdx := m.columnAtX(msg.X)
	if colIdx < 0 {
		return m, nil
	}
	m.selectedColumn = colIdx
	cardIdx := m.cardIndexAt(colIdx, msg.Y)
	if cardIdx < 0 {
		m.clampSelections()
		return m, nil
	}
	m.selectedTask = cardIdx
	card, ok := m.selectedCard()
	if ok && m.ctrl.DragStart(card.ID) {
		m.mouseDrag = true
		m.mouseMoved = false
		m.hoverColumn = colIdx
	}
	return m, nil
}

// handleMouseMotion tracks the column under a mouse drag.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.mouseDrag {
		return m, nil
	}
	colIdx := m.columnAtX(msg.X)
	if colIdx == m.hoverColumn {
		return m, nil
	}
	statuses := domain.Statuses()
	if m.hoverColumn >= 0 {
		m.ctrl.DragLeave(statuses[m.hoverColumn])
	}
	if colIdx >= 0 {
		m.ctrl.DragOver(statuses[colIdx])
	}
	m.hoverColumn = colIdx
	m.mouseMoved = true
	return m, nil
}

// handleMouseRelease drops a mouse drag, or treats a still release as a plain click.
func (m Model) handleMouseRelease(_ tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.mouseDrag {
		return m, nil
	}
	if !m.mouseMoved || m.hoverColumn < 0 {
		m.ctrl.DragEnd()
		m.mouseDrag = false
		m.hoverColumn = -1
		return m, nil
	}
	return m.dropAt(m.hoverColumn)
}

// handleMouseWheel moves the card cursor.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.selectedTask > 0 {
			m.selectedTask--
		}
	case tea.MouseWheelDown:
		m.selectedTask++
		m.clampSelections()
	}
	return m, nil
}

// clampSelections keeps the cursor on an existing column and card.
func (m *Model) clampSelections() {
	cols := m.ctrl.Columns()
	m.selectedColumn = clamp(m.selectedColumn, 0, len(cols)-1)
	if len(cols) == 0 {
		m.selectedTask = 0
		return
	}
	m.selectedTask = clamp(m.selectedTask, 0, len(cols[m.selectedColumn].Cards)-1)
}

// selectedCard returns the card under the cursor.
func (m Model) selectedCard() (board.Card, bool) {
	cols := m.ctrl.Columns()
	if m.selectedColumn < 0 || m.selectedColumn >= len(cols) {
		return board.Card{}, false
	}
	cards := cols[m.selectedColumn].Cards
	if m.selectedTask < 0 || m.selectedTask >= len(cards) {
		return board.Card{}, false
	}
	return cards[m.selectedTask], true
}

// selectedCardID returns the id under the cursor or "".
func (m Model) selectedCardID() string {
	card, ok := m.selectedCard()
	if !ok {
		return ""
	}
	return card.ID
}

// focusTaskByID moves the cursor onto one card when it is rendered.
func (m *Model) focusTaskByID(taskID string) {
	for colIdx, col := range m.ctrl.Columns() {
		for cardIdx, card := range col.Cards {
			if card.ID == taskID {
				m.selectedColumn = colIdx
				m.selectedTask = cardIdx
				return
			}
		}
	}
}

// render builds the full screen.
func (m Model) render() string {
	if !m.ready {
		return "loading..."
	}
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render(m.title)
	total := 0
	for _, n := range m.ctrl.Counts() {
		total += n
	}
	header += statusStyle.Render(fmt.Sprintf("  %d tasks", total))
	if drag := m.ctrl.Drag(); drag.Active() {
		header += statusStyle.Render("  dragging #" + drag.TaskID())
	}
	if m.pending > 0 {
		header += statusStyle.Render("  syncing…")
	}

	sections := []string{header, "", m.renderBoard(accent, muted, dim)}
	if line := m.renderStatusLine(dim); line != "" {
		sections = append(sections, line)
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	full := content + "\n" + helpLine

	overlay := m.renderModeOverlay(accent, muted, m.width-8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(accent, muted, dim, m.width-8)
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(full)
		if m.height > 0 {
			overlayHeight = m.height
		}
		full = overlayOnContent(full, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return full
}

// renderBoard draws the three status columns side by side.
func (m Model) renderBoard(accent, muted, dim color.Color) string {
	cols := m.ctrl.Columns()
	colWidth := m.columnWidth()
	innerHeight := m.columnInnerHeight()
	draggedID := m.ctrl.Drag().TaskID()

	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		MarginRight(1).
		Width(colWidth + 4)
	selColStyle := baseColStyle.BorderForeground(accent)
	dropColStyle := baseColStyle.BorderForeground(lipgloss.Color("212"))
	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	dropTitle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	draggingStyle := lipgloss.NewStyle().Foreground(muted).Faint(true).Italic(true)
	metaStyle := lipgloss.NewStyle().Foreground(muted)

	views := make([]string, 0, len(cols))
	for colIdx, col := range cols {
		heading := fmt.Sprintf("%s (%d)", col.Status.Label(), col.Count())
		lines := []string{colTitle.Render(heading), ""}
		if col.Highlighted {
			lines[0] = dropTitle.Render(heading + "  ⇣ drop here")
		}

		cardRows := make([]string, 0, len(col.Cards)*4)
		if len(col.Cards) == 0 {
			cardRows = append(cardRows, emptyStyle.Render("(empty)"))
		}
		for cardIdx, card := range col.Cards {
			selected := colIdx == m.selectedColumn && cardIdx == m.selectedTask
			prefix := "  "
			switch {
			case card.ID == draggedID:
				prefix = "⇄ "
			case selected:
				prefix = "│ "
			}
			for lineIdx, line := range cardLines(card, colWidth-2) {
				row := prefix + line
				switch {
				case card.ID == draggedID:
					row = draggingStyle.Render(row)
				case lineIdx == 0 && selected:
					row = selectedStyle.Render(row)
				case lineIdx > 0:
					row = prefix + metaStyle.Render(line)
				}
				cardRows = append(cardRows, row)
			}
			if cardIdx < len(col.Cards)-1 {
				cardRows = append(cardRows, "")
			}
		}

		window := max(1, innerHeight-len(lines))
		scrollTop := m.columnScroll(colIdx, window)
		if scrollTop > 0 && scrollTop < len(cardRows) {
			cardRows = cardRows[scrollTop:]
		}
		lines = append(lines, cardRows...)
		content := fitLines(strings.Join(lines, "\n"), innerHeight)

		switch {
		case col.Highlighted:
			views = append(views, dropColStyle.Render(content))
		case colIdx == m.selectedColumn:
			views = append(views, selColStyle.Render(content))
		default:
			views = append(views, baseColStyle.Render(content))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// cardLines lays out one card: title, optional first description line, then id badge and tags.
func cardLines(card board.Card, width int) []string {
	width = max(1, width)
	lines := []string{truncate(card.Title, width)}
	if desc := firstLine(card.Description); desc != "" {
		lines = append(lines, truncate(desc, width))
	}
	meta := card.IDLabel()
	if tags := summarizeTags(card.Tags, 4); tags != "" {
		meta += "  " + tags
	}
	return append(lines, truncate(meta, width))
}

// cardRowSpans returns the first row of each card relative to the card area, plus the total.
func (m Model) cardRowSpans(colIdx int) ([]int, int) {
	cols := m.ctrl.Columns()
	if colIdx < 0 || colIdx >= len(cols) {
		return nil, 0
	}
	starts := make([]int, 0, len(cols[colIdx].Cards))
	row := 0
	for cardIdx, card := range cols[colIdx].Cards {
		starts = append(starts, row)
		row += len(cardLines(card, m.columnWidth()-2))
		if cardIdx < len(cols[colIdx].Cards)-1 {
			row++
		}
	}
	return starts, row
}

// columnScroll keeps the selected card visible inside the column window.
func (m Model) columnScroll(colIdx, window int) int {
	if colIdx != m.selectedColumn {
		return 0
	}
	starts, total := m.cardRowSpans(colIdx)
	if m.selectedTask < 0 || m.selectedTask >= len(starts) {
		return 0
	}
	end := total
	if m.selectedTask+1 < len(starts) {
		end = starts[m.selectedTask+1] - 1
	}
	scrollTop := 0
	if end > window {
		scrollTop = end - window
	}
	if starts[m.selectedTask] < scrollTop {
		scrollTop = starts[m.selectedTask]
	}
	return clamp(scrollTop, 0, max(0, total-window))
}

// columnAtX returns the column under one screen column, or -1.
func (m Model) columnAtX(x int) int {
	for idx := range domain.Statuses() {
		if x >= m.columnX(idx) && x < m.columnX(idx+1) {
			return idx
		}
	}
	return -1
}

// columnX returns the first screen column of one board column.
func (m Model) columnX(colIdx int) int {
	return colIdx * (m.columnWidth() + colOverhead)
}

// cardIndexAt returns the card under one screen row of a column, or -1.
func (m Model) cardIndexAt(colIdx, y int) int {
	starts, total := m.cardRowSpans(colIdx)
	window := max(1, m.columnInnerHeight()-2)
	row := y - m.boardTop() - cardsTop + m.columnScroll(colIdx, window)
	if row < 0 || row >= total {
		return -1
	}
	for idx := len(starts) - 1; idx >= 0; idx-- {
		if row >= starts[idx] {
			return idx
		}
	}
	return -1
}

// cardRowY returns the screen row of one card's title.
func (m Model) cardRowY(colIdx, cardIdx int) int {
	starts, _ := m.cardRowSpans(colIdx)
	if cardIdx < 0 || cardIdx >= len(starts) {
		return -1
	}
	window := max(1, m.columnInnerHeight()-2)
	return m.boardTop() + cardsTop + starts[cardIdx] - m.columnScroll(colIdx, window)
}

// renderStatusLine renders the latest notification.
func (m Model) renderStatusLine(dim color.Color) string {
	status := strings.TrimSpace(m.status)
	if status == "" || status == "ready" {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(dim)
	switch m.statusLevel {
	case board.LevelError:
		style = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	case board.LevelWarn:
		style = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	}
	return style.Render(status)
}

// renderModeOverlay renders the active modal, if any.
func (m Model) renderModeOverlay(accent, muted color.Color, maxWidth int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)

	switch m.mode {
	case modeAddTask:
		if maxWidth > 0 {
			style = style.Width(clamp(maxWidth, 40, 80))
		}
		lines := []string{titleStyle.Render("New Task")}
		for _, in := range m.formInputs {
			lines = append(lines, in.View())
		}
		hint := "enter create • tab next field • esc cancel"
		if m.creating {
			hint = "creating..."
		}
		lines = append(lines, hintStyle.Render(hint))
		return style.Render(strings.Join(lines, "\n"))

	case modeConfirmDelete:
		if maxWidth > 0 {
			style = style.Width(clamp(maxWidth, 36, 72))
		}
		target := "(unknown task)"
		if card, _, ok := m.ctrl.Card(m.ctrl.PendingDelete()); ok {
			target = card.IDLabel() + " " + card.Title
		}
		confirmStyle := lipgloss.NewStyle().Foreground(muted)
		cancelStyle := lipgloss.NewStyle().Foreground(muted)
		if m.confirmChoice == confirmChoiceConfirm {
			confirmStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
		} else {
			cancelStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
		}
		lines := []string{
			titleStyle.Render(m.confirmPrompt),
			truncate(target, 60),
			confirmStyle.Render("[confirm]") + "  " + cancelStyle.Render("[cancel]"),
			hintStyle.Render("enter apply • esc cancel • h/l switch • y confirm • n cancel"),
		}
		return style.Render(strings.Join(lines, "\n"))

	case modeTaskInfo:
		card, status, ok := m.ctrl.Card(m.taskInfoTaskID)
		if !ok {
			return ""
		}
		width := 60
		if maxWidth > 0 {
			width = clamp(maxWidth, 32, 88)
			style = style.Width(width)
		}
		tags := "-"
		if len(card.Tags) > 0 {
			tags = strings.Join(card.Tags, ", ")
		}
		lines := []string{
			titleStyle.Render(card.Title),
			hintStyle.Render(card.IDLabel() + " • " + status.Label()),
			hintStyle.Render("tags: " + tags),
			"",
		}
		if desc := m.descriptions.render(card.ID, card.Description, width-4); desc != "" {
			lines = append(lines, desc)
		} else {
			lines = append(lines, hintStyle.Render("(no description)"))
		}
		lines = append(lines, "", hintStyle.Render("esc close • y copy id"))
		return style.Render(strings.Join(lines, "\n"))
	}
	return ""
}

// renderHelpOverlay renders the expanded key reference.
func (m Model) renderHelpOverlay(accent, muted, dim color.Color, maxWidth int) string {
	width := clamp(maxWidth, 48, 90)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)

	workflow := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render("Moving tasks"),
		"keyboard: space pick up • h/l choose column • enter or space drop • esc cancel",
		"mouse: press on a card, drag to another column, release to drop",
		"failed moves are reported and the board reloads from the server",
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render(m.title + " help"),
		"",
		hb.View(m.keys),
		"",
		lipgloss.NewStyle().Foreground(muted).Render(strings.Join(workflow, "\n")),
		lipgloss.NewStyle().Foreground(muted).Render("press ? or esc to close"),
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1)
	if maxWidth > 0 {
		style = style.Width(width)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// columnWidth returns the card text width of one column.
func (m Model) columnWidth() int {
	count := len(domain.Statuses())
	w := 28
	if m.width > 0 {
		candidate := (m.width - count*(colOverhead+2)) / count
		if candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, 20, 48)
}

// columnInnerHeight returns the rows available inside a column border.
func (m Model) columnInnerHeight() int {
	// header, spacer, status line, and help footer surround the board
	h := m.height - m.boardTop() - 2 - 4
	if h < 10 {
		return 10
	}
	return h
}

// boardTop returns the screen row where column borders start.
func (m Model) boardTop() int {
	return 2
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// wrapIndex wraps v into [minV, minV+total).
func wrapIndex(v, minV, total int) int {
	if total <= 0 {
		return minV
	}
	return minV + ((v-minV)%total+total)%total
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}

// firstLine returns the first non-blank line of s.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// summarizeTags renders up to maxTags tag chips.
func summarizeTags(tags []string, maxTags int) string {
	if len(tags) == 0 {
		return ""
	}
	if maxTags <= 0 {
		maxTags = 1
	}
	visible := tags
	extra := 0
	if len(tags) > maxTags {
		visible = tags[:maxTags]
		extra = len(tags) - maxTags
	}
	joined := "[" + strings.Join(visible, "] [") + "]"
	if extra > 0 {
		joined += fmt.Sprintf(" +%d", extra)
	}
	return joined
}
