package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/kanban/internal/board"
	"github.com/kingrea/kanban/internal/notify"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	columnAccent = map[board.Status]lipgloss.Color{
		board.StatusTodo:       lipgloss.Color("#5B8DEF"),
		board.StatusInProgress: lipgloss.Color("#E5B80B"),
		board.StatusDone:       lipgloss.Color("#3DBE6E"),
	}
)

func toastStyle(severity notify.Severity) lipgloss.Style {
	color := lipgloss.Color("#3DBE6E")
	if severity == notify.SeverityError {
		color = lipgloss.Color("#FF6B6B")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Foreground(color).
		Padding(0, 1)
}

func accent(status board.Status) lipgloss.Color {
	if c, ok := columnAccent[status]; ok {
		return c
	}
	return lipgloss.Color("#444444")
}
