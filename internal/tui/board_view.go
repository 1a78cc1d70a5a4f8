package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/kingrea/kanban/internal/board"
	"github.com/kingrea/kanban/internal/session"
)

const (
	msgEmptyTitle  = "Please enter a task"
	msgMoveOK      = "Task moved successfully!"
	msgMoveFailed  = "Failed! Rolling back..."
	activityLines  = 5
	pendingGlyph   = "⟳"
	selectedMarker = "▸ "
)

// moveResolvedMsg carries the outcome of a confirmation back to the update
// loop. generation ties it to the board screen that issued it.
type moveResolvedMsg struct {
	generation uint64
	move       board.Move
	err        error
}

// boardView is the "/board" route. Each instance owns its own task list;
// logging out throws it away.
type boardView struct {
	app        *App
	generation uint64
	session    session.Session
	board      *board.Board

	input  textinput.Model
	typing bool
	keys   boardKeyMap
	help   help.Model

	column int
	rows   map[board.Status]int
}

func newBoardView(app *App, generation uint64, sess session.Session) *boardView {
	input := textinput.New()
	input.Placeholder = "Enter new task"
	input.Prompt = "+ "
	input.Width = 40
	return &boardView{
		app:        app,
		generation: generation,
		session:    sess,
		board:      board.New(board.WithRollbackMode(app.config.RollbackMode())),
		input:      input,
		keys:       newBoardKeyMap(),
		help:       help.New(),
		rows:       map[board.Status]int{},
	}
}

// Init starts with the cursor in the new-task field.
func (v *boardView) Init() tea.Cmd {
	return v.startTyping()
}

func (v *boardView) startTyping() tea.Cmd {
	v.typing = true
	v.keys.typing = true
	return v.input.Focus()
}

func (v *boardView) stopTyping() {
	v.typing = false
	v.keys.typing = false
	v.input.Blur()
}

func (v *boardView) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if v.typing {
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return cmd
		}
		return nil
	}

	if key.Matches(keyMsg, v.keys.Logout) {
		return v.app.logout()
	}

	if v.typing {
		switch {
		case key.Matches(keyMsg, v.keys.Submit):
			return v.addTask()
		case key.Matches(keyMsg, v.keys.Cancel):
			v.stopTyping()
			return nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(keyMsg, v.keys.Quit):
		return tea.Quit
	case key.Matches(keyMsg, v.keys.NewTask):
		return v.startTyping()
	case key.Matches(keyMsg, v.keys.Left):
		if v.column > 0 {
			v.column--
		}
	case key.Matches(keyMsg, v.keys.Right):
		if v.column < len(board.Columns)-1 {
			v.column++
		}
	case key.Matches(keyMsg, v.keys.Up):
		v.shiftRow(-1)
	case key.Matches(keyMsg, v.keys.Down):
		v.shiftRow(1)
	case key.Matches(keyMsg, v.keys.Move):
		return v.moveSelected()
	case key.Matches(keyMsg, v.keys.Delete):
		v.deleteSelected()
	}
	return nil
}

// addTask adds whatever is in the input. A blank title raises one error
// toast and leaves both the list and the input untouched.
func (v *boardView) addTask() tea.Cmd {
	task, err := v.board.Add(v.input.Value())
	if errors.Is(err, board.ErrEmptyTitle) {
		v.app.logWarn("Add rejected · empty title")
		return v.app.notifyError(msgEmptyTitle)
	}
	if err != nil {
		v.app.logger.WithError(err).Error("add task")
		return nil
	}
	v.input.Reset()
	v.app.logger.WithFields(log.Fields{"task": task.ID, "title": task.Title}).Info("task added")
	v.app.logInfo("Added %q", task.Title)
	return nil
}

func (v *boardView) deleteSelected() {
	task, ok := v.selectedTask()
	if !ok {
		return
	}
	v.deleteTask(task.ID)
}

func (v *boardView) deleteTask(id string) bool {
	task, _ := v.board.Get(id)
	if !v.board.Delete(id) {
		return false
	}
	v.clampRows()
	v.app.logger.WithField("task", id).Info("task deleted")
	v.app.logInfo("Deleted %q", task.Title)
	return true
}

// moveSelected advances the selected task one column. Done tasks have no
// move action.
func (v *boardView) moveSelected() tea.Cmd {
	task, ok := v.selectedTask()
	if !ok {
		return nil
	}
	next, ok := task.Status.Next()
	if !ok {
		v.app.statusMsg = fmt.Sprintf("%q is already done", task.Title)
		return nil
	}
	return v.moveTask(task.ID, next)
}

// moveTask applies the move optimistically and returns the command that
// asks the confirmer about it.
func (v *boardView) moveTask(id string, to board.Status) tea.Cmd {
	mv, err := v.board.Move(id, to)
	if err != nil {
		v.app.logger.WithError(err).WithField("task", id).Warn("move refused locally")
		return nil
	}
	v.clampRows()
	task, _ := v.board.Get(id)
	v.app.logger.WithFields(log.Fields{
		"task": id,
		"from": mv.From,
		"to":   mv.To,
		"seq":  mv.Seq,
	}).Info("move pending confirmation")
	v.app.logInfo("Moving %q → %s", task.Title, to.Label())
	return v.app.confirmMove(v.generation, mv)
}

// settle applies a confirmation result to the list.
func (v *boardView) settle(mv board.Move, err error) tea.Cmd {
	fields := log.Fields{"task": mv.TaskID, "to": mv.To, "seq": mv.Seq}
	if !v.board.IsPending(mv) {
		v.app.logger.WithFields(fields).WithError(err).Info("confirmation for a cancelled move")
		return nil
	}
	if err == nil {
		v.board.Commit(mv)
		v.app.logger.WithFields(fields).Info("move confirmed")
		v.app.logInfo("Move confirmed · %s", mv.To.Label())
		return v.app.notifySuccess(msgMoveOK)
	}
	changed := v.board.Rollback(mv)
	v.clampRows()
	fields["mode"] = v.board.Mode()
	fields["changed"] = changed
	v.app.logger.WithFields(fields).WithError(err).Warn("move rolled back")
	v.app.logError("Move to %s failed · rolled back", mv.To.Label())
	return v.app.notifyError(msgMoveFailed)
}

func (v *boardView) focusedStatus() board.Status {
	return board.Columns[v.column]
}

func (v *boardView) selectedTask() (board.Task, bool) {
	status := v.focusedStatus()
	tasks := v.board.Column(status)
	if len(tasks) == 0 {
		return board.Task{}, false
	}
	row := v.rows[status]
	if row >= len(tasks) {
		row = len(tasks) - 1
	}
	return tasks[row], true
}

func (v *boardView) shiftRow(delta int) {
	status := v.focusedStatus()
	count := len(v.board.Column(status))
	row := v.rows[status] + delta
	if row < 0 {
		row = 0
	}
	if row > count-1 {
		row = max(0, count-1)
	}
	v.rows[status] = row
}

func (v *boardView) clampRows() {
	for _, status := range board.Columns {
		count := len(v.board.Column(status))
		if v.rows[status] > count-1 {
			v.rows[status] = max(0, count-1)
		}
	}
}

func (v *boardView) View(width int) string {
	user := v.session.Name
	if v.session.Anonymous() {
		user = "guest"
	} else if !v.session.Started.IsZero() {
		user = fmt.Sprintf("%s since %s", user, v.session.Started.Local().Format("15:04"))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("Kanban Board"),
		mutedStyle.Render(fmt.Sprintf("  · %s", user)),
	)

	sections := []string{
		header,
		"",
		v.input.View(),
		"",
		v.renderColumns(width),
	}
	if activity := v.renderActivity(width); activity != "" {
		sections = append(sections, activity)
	}
	sections = append(sections, hintStyle.Render(v.help.View(v.keys)))
	return strings.Join(sections, "\n")
}

func (v *boardView) renderColumns(width int) string {
	colWidth := max(20, (width-6)/len(board.Columns)-2)
	rendered := make([]string, 0, len(board.Columns))
	for idx, status := range board.Columns {
		rendered = append(rendered, v.renderColumn(status, idx == v.column && !v.typing, colWidth))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (v *boardView) renderColumn(status board.Status, focused bool, width int) string {
	color := accent(status)
	tasks := v.board.Column(status)
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(color).
		Render(fmt.Sprintf("%s (%d)", status.Label(), len(tasks)))

	lines := []string{title, ""}
	if len(tasks) == 0 {
		lines = append(lines, mutedStyle.Render("—"))
	}
	row := v.rows[status]
	for i, task := range tasks {
		label := task.Title
		if n := v.board.Pending(task.ID); n > 0 {
			label = fmt.Sprintf("%s %s", label, pendingGlyph)
		}
		style := lipgloss.NewStyle().Width(max(10, width-4))
		prefix := "  "
		if focused && i == row {
			prefix = selectedMarker
			style = style.Bold(true).Foreground(color)
		}
		lines = append(lines, style.Render(prefix+label))
	}

	border := lipgloss.Color("#444444")
	if focused {
		border = color
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func (v *boardView) renderActivity(width int) string {
	lines, total := v.app.logbook.Tail(activityLines)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("ACTIVITY · %d entries", total))
	body := hintStyle.Render(strings.Join(lines, "\n"))
	return panelStyle.Width(max(20, width-4)).Render(fmt.Sprintf("%s\n%s", head, body))
}
