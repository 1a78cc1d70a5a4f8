package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"
)

// entryView is the "/" route: a single name field.
type entryView struct {
	app   *App
	input textinput.Model
	keys  entryKeyMap
	help  help.Model
}

func newEntryView(app *App, prefill string) *entryView {
	input := textinput.New()
	input.Placeholder = "Enter your name"
	input.Prompt = "› "
	input.Width = 32
	input.SetValue(prefill)
	input.Focus()
	return &entryView{
		app:   app,
		input: input,
		keys:  newEntryKeyMap(),
		help:  help.New(),
	}
}

func (v *entryView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *entryView) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, v.keys.Submit):
			return v.submit()
		case key.Matches(keyMsg, v.keys.Quit):
			return tea.Quit
		}
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

// submit logs in with the typed name. Blank input is ignored without any
// feedback.
func (v *entryView) submit() tea.Cmd {
	name := strings.TrimSpace(v.input.Value())
	if name == "" {
		return nil
	}
	sess, err := v.app.sessions.Login(v.app.ctx, name)
	if err != nil {
		v.app.logger.WithError(err).Error("login failed")
		v.app.logError("Login failed for %s: %v", name, err)
		return v.app.notifyError(fmt.Sprintf("Could not save session: %v", err))
	}
	v.app.logger.WithFields(log.Fields{"user": sess.Name, "key": v.app.sessions.Key()}).Info("logged in")
	v.app.logInfo("Login · %s", sess.Name)
	return v.app.openBoard(sess)
}

func (v *entryView) View(width int) string {
	card := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Login"),
		"",
		v.input.View(),
		"",
		hintStyle.Render(v.help.View(v.keys)),
	)
	box := panelStyle.Width(44).Render(card)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}
