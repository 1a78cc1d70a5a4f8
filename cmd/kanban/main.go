// cmd/kanban/main.go
//
// This is the entry point for the kanban board.
//
// Flow:
// 1. Resolve the project directory and create .kanban/ if needed
// 2. Load config, open the logs and the session store
// 3. Launch the TUI on the requested route

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/kanban/internal/config"
	"github.com/kingrea/kanban/internal/logbook"
	"github.com/kingrea/kanban/internal/logging"
	"github.com/kingrea/kanban/internal/session"
	"github.com/kingrea/kanban/internal/tui"
)

func main() {
	dir := flag.String("dir", "", "project directory holding .kanban/ (default: working directory)")
	route := flag.String("route", "/", "screen to open: / or /board")
	backend := flag.String("session", "", "session backend override: memory, file or redis")
	flag.Parse()

	projectDir := *dir
	if projectDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fail("getting working directory", err)
		}
		projectDir = cwd
	}
	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		fail("resolving project directory", err)
	}

	start, err := tui.ParseRoute(*route)
	if err != nil {
		fail("parsing route", err)
	}

	if err := config.InitDir(projectDir); err != nil {
		fail("initializing .kanban directory", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		fail("loading config", err)
	}
	if *backend != "" {
		if err := cfg.SetSessionBackend(*backend); err != nil {
			fail("applying -session", err)
		}
	}

	logger, err := logging.New(projectDir)
	if err != nil {
		fail("opening log file", err)
	}
	defer logger.Close()

	activity, err := logbook.New(filepath.Join(cfg.LogsDir(), "activity.log"))
	if err != nil {
		fail("opening activity log", err)
	}

	ctx := context.Background()
	store, err := session.Open(ctx, cfg)
	if err != nil {
		fail("opening session store", err)
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}
	logger.WithField("backend", cfg.Project.Session.Backend).Info("session store ready")

	app, err := tui.NewApp(cfg, store,
		tui.WithContext(ctx),
		tui.WithLogger(logger),
		tui.WithLogbook(activity),
		tui.WithStartRoute(start),
	)
	if err != nil {
		fail("building TUI", err)
	}

	// Run blocks until the user quits
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.WithError(err).Error("tui exited")
		fail("running TUI", err)
	}
}

func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", what, err)
	os.Exit(1)
}
