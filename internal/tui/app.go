// internal/tui/app.go
//
// This is the TUI for the kanban board. It uses bubbletea, which follows
// The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// Two routes exist: "/" asks for a display name, "/board" shows the three
// columns. Moves on the board are confirmed asynchronously; the
// confirmation runs as a tea.Cmd and reports back with a moveResolvedMsg.

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/kingrea/kanban/internal/board"
	"github.com/kingrea/kanban/internal/config"
	"github.com/kingrea/kanban/internal/confirm"
	"github.com/kingrea/kanban/internal/logbook"
	"github.com/kingrea/kanban/internal/logging"
	"github.com/kingrea/kanban/internal/notify"
	"github.com/kingrea/kanban/internal/session"
)

// Route names an addressable screen.
type Route string

const (
	RouteEntry Route = "/"
	RouteBoard Route = "/board"
)

// ParseRoute accepts "/" and "/board" (with or without the leading slash).
func ParseRoute(value string) (Route, error) {
	trimmed := strings.Trim(strings.TrimSpace(value), "/")
	switch strings.ToLower(trimmed) {
	case "":
		return RouteEntry, nil
	case "board":
		return RouteBoard, nil
	}
	return "", fmt.Errorf("tui: unknown route %q", value)
}

// notificationExpiredMsg removes a toast once its TTL has passed.
type notificationExpiredMsg struct {
	id uint64
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithConfirmer replaces the simulated confirmer built from config.
func WithConfirmer(c confirm.Confirmer) AppOption {
	return func(a *App) {
		if c != nil {
			a.confirmer = c
		}
	}
}

// WithLogger routes diagnostic logs to l.
func WithLogger(l *logging.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithLogbook records board activity to lb and shows its tail.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// WithStartRoute opens the app on route instead of the entry screen.
func WithStartRoute(route Route) AppOption {
	return func(a *App) {
		if route != "" {
			a.startRoute = route
		}
	}
}

// WithContext sets the context confirmations run under.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

// WithClock sets the clock used for notification and login timestamps.
func WithClock(clock func() time.Time) AppOption {
	return func(a *App) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	ctx        context.Context
	config     *config.Config
	sessions   *session.Manager
	confirmer  confirm.Confirmer
	logger     *logging.Logger
	logbook    *logbook.Logbook
	clock      func() time.Time
	startRoute Route

	route      Route
	current    session.Session
	entry      *entryView
	board      *boardView
	generation uint64
	notices    *notify.Center
	statusMsg  string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp wires the screens to cfg and the session store.
func NewApp(cfg *config.Config, store session.Store, opts ...AppOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("tui: config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("tui: session store is required")
	}
	app := &App{
		ctx:        context.Background(),
		config:     cfg,
		logger:     logging.Discard(),
		clock:      time.Now,
		startRoute: RouteEntry,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.confirmer == nil {
		sim, err := confirm.NewSimulated(cfg.ConfirmSettings())
		if err != nil {
			return nil, err
		}
		settings := sim.Settings()
		app.logger.WithFields(log.Fields{
			"min_delay":    settings.MinDelay,
			"max_delay":    settings.MaxDelay,
			"failure_rate": settings.FailureRate,
		}).Info("simulated confirmer ready")
		app.confirmer = sim
	}
	app.sessions = session.NewManager(store, cfg.Project.Session.Key, session.WithClock(app.clock))
	app.notices = notify.NewCenter(cfg.NotifySettings(), app.clock)

	stored, ok, err := app.sessions.Current(app.ctx)
	if err != nil {
		app.logger.WithError(err).Warn("read stored session")
	}
	if ok {
		app.current = stored
	}
	app.entry = newEntryView(app, app.current.Name)
	app.route = RouteEntry
	if app.startRoute == RouteBoard {
		app.openBoard(app.current)
	}
	app.logger.WithField("route", app.route).Info("app started")
	return app, nil
}

// Route reports the active screen.
func (a *App) Route() Route { return a.route }

// Session returns the session handed to the board screen.
func (a *App) Session() session.Session { return a.current }

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	if a.route == RouteBoard && a.board != nil {
		return a.board.Init()
	}
	return a.entry.Init()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case notificationExpiredMsg:
		a.notices.Dismiss(msg.id)
		return a, nil

	case moveResolvedMsg:
		return a, a.handleMoveResolved(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		a.statusMsg = ""
	}

	switch a.route {
	case RouteBoard:
		if a.board != nil {
			return a, a.board.Update(msg)
		}
	default:
		return a, a.entry.Update(msg)
	}
	return a, nil
}

// Navigate switches screens. Leaving the board discards it; opening the
// board never checks for a stored session.
func (a *App) Navigate(route Route) tea.Cmd {
	switch route {
	case RouteBoard:
		if a.route == RouteBoard && a.board != nil {
			return nil
		}
		return a.openBoard(a.current)
	default:
		a.closeBoard()
		a.route = RouteEntry
		return a.entry.Init()
	}
}

func (a *App) openBoard(sess session.Session) tea.Cmd {
	a.generation++
	a.current = sess
	a.board = newBoardView(a, a.generation, sess)
	a.route = RouteBoard
	return a.board.Init()
}

func (a *App) closeBoard() {
	if a.board == nil {
		return
	}
	if pending := a.board.board.PendingTotal(); pending > 0 {
		a.logger.WithField("pending", pending).Info("board closed with unconfirmed moves")
	}
	a.board = nil
}

// logout forgets the stored name, drops the board and shows the entry
// screen again. In-flight confirmations keep running and are ignored when
// they arrive.
func (a *App) logout() tea.Cmd {
	var cmds []tea.Cmd
	name := a.current.Name
	a.notices.Clear()
	if err := a.sessions.Logout(a.ctx); err != nil {
		a.logger.WithError(err).Error("logout failed")
		a.logError("Logout failed: %v", err)
		cmds = append(cmds, a.notifyError(fmt.Sprintf("Could not clear session: %v", err)))
	} else {
		a.logger.WithField("user", name).Info("logged out")
		a.logInfo("Logout · %s", name)
	}
	a.current = session.Session{}
	a.closeBoard()
	a.entry = newEntryView(a, "")
	a.route = RouteEntry
	cmds = append(cmds, a.entry.Init())
	return tea.Batch(cmds...)
}

func (a *App) confirmMove(generation uint64, mv board.Move) tea.Cmd {
	confirmer := a.confirmer
	ctx := a.ctx
	return func() tea.Msg {
		return moveResolvedMsg{
			generation: generation,
			move:       mv,
			err:        confirmer.Confirm(ctx),
		}
	}
}

func (a *App) handleMoveResolved(msg moveResolvedMsg) tea.Cmd {
	if a.board == nil || a.board.generation != msg.generation {
		a.logger.WithField("task", msg.move.TaskID).
			WithField("generation", msg.generation).
			Debug("confirmation arrived for a closed board")
		return nil
	}
	return a.board.settle(msg.move, msg.err)
}

func (a *App) notifySuccess(message string) tea.Cmd {
	return a.expireAfter(a.notices.Success(message))
}

func (a *App) notifyError(message string) tea.Cmd {
	return a.expireAfter(a.notices.Error(message))
}

func (a *App) expireAfter(n notify.Notification) tea.Cmd {
	id := n.ID
	return tea.Tick(n.TTL, func(time.Time) tea.Msg {
		return notificationExpiredMsg{id: id}
	})
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	var content string
	switch a.route {
	case RouteBoard:
		if a.board != nil {
			content = a.board.View(width)
		}
	default:
		content = a.entry.View(width)
	}

	sections := []string{}
	if toasts := a.renderNotifications(width); toasts != "" {
		sections = append(sections, toasts)
	}
	sections = append(sections, content)
	if a.statusMsg != "" {
		sections = append(sections, mutedStyle.MarginTop(1).Render(a.statusMsg))
	}
	return strings.Join(sections, "\n")
}

// renderNotifications stacks the active toasts in the top-right corner.
func (a *App) renderNotifications(width int) string {
	active := a.notices.Active()
	if len(active) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(active))
	for _, n := range active {
		rendered = append(rendered, toastStyle(n.Severity).Render(n.Message))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
}
