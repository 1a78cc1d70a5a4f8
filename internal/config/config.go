// internal/config/config.go
//
// This package handles configuration and the .kanban directory structure.
// Every directory the board runs from gets a .kanban/ folder with a
// config.yaml, the diagnostic logs, and the stored session.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/kanban/internal/board"
	"github.com/kingrea/kanban/internal/confirm"
	"github.com/kingrea/kanban/internal/notify"
)

const (
	// KanbanDir is the name of the directory we create in the working directory
	KanbanDir = ".kanban"

	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"

	defaultSessionKey  = "user"
	defaultRedisURL    = "redis://127.0.0.1:6379/0"
	defaultRedisPrefix = "kanban"
)

const defaultProjectConfigYAML = `# kanban board configuration
version: 1

# Where the logged-in display name is kept.
# backend: file (default, .kanban/state/session.yaml), redis, or memory.
session:
  backend: file
  key: user
  # redis_url: redis://127.0.0.1:6379/0
  # redis_prefix: kanban

# Simulated confirmation for task moves.
confirm:
  min_delay: 1s
  max_delay: 3s
  failure_rate: 0.2

# rollback: task reverts only the moved task when a move is refused.
# rollback: snapshot restores the whole board as it was when the move began.
board:
  rollback: task

notifications:
  success_ttl: 2s
  error_ttl: 4s
  max_visible: 4
`

// SessionConfig selects the session store backend.
type SessionConfig struct {
	Backend     string `yaml:"backend"`
	Key         string `yaml:"key"`
	RedisURL    string `yaml:"redis_url,omitempty"`
	RedisPrefix string `yaml:"redis_prefix,omitempty"`
}

// ConfirmConfig tunes the simulated move confirmation.
type ConfirmConfig struct {
	MinDelay    time.Duration `yaml:"min_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	FailureRate *float64      `yaml:"failure_rate,omitempty"`
}

// BoardConfig captures board behaviour.
type BoardConfig struct {
	Rollback string `yaml:"rollback"`
}

// NotificationsConfig controls toast lifetimes.
type NotificationsConfig struct {
	SuccessTTL time.Duration `yaml:"success_ttl"`
	ErrorTTL   time.Duration `yaml:"error_ttl"`
	MaxVisible int           `yaml:"max_visible"`
}

// ProjectConfig models .kanban/config.yaml.
type ProjectConfig struct {
	Version       int                 `yaml:"version"`
	Session       SessionConfig       `yaml:"session"`
	Confirm       ConfirmConfig       `yaml:"confirm"`
	Board         BoardConfig         `yaml:"board"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// Config holds the runtime configuration for the board.
type Config struct {
	// ProjectDir is the directory the board was started from
	ProjectDir string

	// KanbanProjectDir is ProjectDir/.kanban
	KanbanProjectDir string

	Project ProjectConfig
}

// InitDir creates the .kanban directory structure in the given directory.
//
// Structure created:
// .kanban/
// ├── config.yaml
// ├── logs/    <- kanban.log and activity.log
// └── state/   <- session.yaml for the file session backend
func InitDir(projectDir string) error {
	kanbanDir := filepath.Join(projectDir, KanbanDir)

	dirs := []string{
		filepath.Join(kanbanDir, "logs"),
		filepath.Join(kanbanDir, "state"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return ensureProjectConfig(filepath.Join(kanbanDir, "config.yaml"))
}

// NewConfig loads .kanban/config.yaml (if any) and applies KANBAN_*
// environment overrides.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:       projectDir,
		KanbanProjectDir: filepath.Join(projectDir, KanbanDir),
		Project:          defaultProjectConfig(),
	}

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.KanbanProjectDir, "logs")
}

// StateDir returns the path to the state directory
func (c *Config) StateDir() string {
	return filepath.Join(c.KanbanProjectDir, "state")
}

// SessionPath returns the file used by the file session backend
func (c *Config) SessionPath() string {
	return filepath.Join(c.StateDir(), "session.yaml")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.KanbanProjectDir, "config.yaml")
}

// RollbackMode returns the configured board rollback mode.
func (c *Config) RollbackMode() board.RollbackMode {
	mode, err := board.ParseRollbackMode(c.Project.Board.Rollback)
	if err != nil {
		return board.RollbackTask
	}
	return mode
}

// ConfirmSettings converts the confirm section for the simulated confirmer.
func (c *Config) ConfirmSettings() confirm.Settings {
	settings := confirm.Settings{
		MinDelay:    c.Project.Confirm.MinDelay,
		MaxDelay:    c.Project.Confirm.MaxDelay,
		FailureRate: confirm.DefaultFailureRate,
	}
	if rate := c.Project.Confirm.FailureRate; rate != nil {
		settings.FailureRate = *rate
	}
	return settings
}

// NotifySettings converts the notifications section.
func (c *Config) NotifySettings() notify.Settings {
	return notify.Settings{
		SuccessTTL: c.Project.Notifications.SuccessTTL,
		ErrorTTL:   c.Project.Notifications.ErrorTTL,
		MaxVisible: c.Project.Notifications.MaxVisible,
	}
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

// SetSessionBackend overrides session.backend, normalized and validated
// the same way as the config file.
func (c *Config) SetSessionBackend(value string) error {
	next := c.Project
	next.Session.Backend = value
	next.normalize()
	if err := next.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Project = next
	return nil
}

func (c *Config) applyEnvOverrides() error {
	pc := &c.Project
	if value := strings.TrimSpace(os.Getenv("KANBAN_SESSION_BACKEND")); value != "" {
		pc.Session.Backend = value
	}
	if value := strings.TrimSpace(os.Getenv("KANBAN_SESSION_KEY")); value != "" {
		pc.Session.Key = value
	}
	if value := strings.TrimSpace(os.Getenv("KANBAN_REDIS_URL")); value != "" {
		pc.Session.RedisURL = value
	}
	if value := strings.TrimSpace(os.Getenv("KANBAN_ROLLBACK")); value != "" {
		pc.Board.Rollback = value
	}
	if value := strings.TrimSpace(os.Getenv("KANBAN_FAILURE_RATE")); value != "" {
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("config: KANBAN_FAILURE_RATE: %w", err)
		}
		pc.Confirm.FailureRate = &rate
	}
	pc.normalize()
	if err := pc.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func defaultProjectConfig() ProjectConfig {
	rate := confirm.DefaultFailureRate
	return ProjectConfig{
		Version: 1,
		Session: SessionConfig{
			Backend:     BackendFile,
			Key:         defaultSessionKey,
			RedisURL:    defaultRedisURL,
			RedisPrefix: defaultRedisPrefix,
		},
		Confirm: ConfirmConfig{
			MinDelay:    confirm.DefaultMinDelay,
			MaxDelay:    confirm.DefaultMaxDelay,
			FailureRate: &rate,
		},
		Board: BoardConfig{Rollback: string(board.RollbackTask)},
		Notifications: NotificationsConfig{
			SuccessTTL: notify.DefaultSuccessTTL,
			ErrorTTL:   notify.DefaultErrorTTL,
			MaxVisible: notify.DefaultMaxVisible,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Confirm.FailureRate == nil {
		rate := confirm.DefaultFailureRate
		pc.Confirm.FailureRate = &rate
	}
	if pc.Notifications.SuccessTTL <= 0 {
		pc.Notifications.SuccessTTL = notify.DefaultSuccessTTL
	}
	if pc.Notifications.ErrorTTL <= 0 {
		pc.Notifications.ErrorTTL = notify.DefaultErrorTTL
	}
	if pc.Notifications.MaxVisible <= 0 {
		pc.Notifications.MaxVisible = notify.DefaultMaxVisible
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Session.Backend = strings.ToLower(strings.TrimSpace(pc.Session.Backend))
	if pc.Session.Backend == "" {
		pc.Session.Backend = BackendFile
	}
	pc.Session.Key = strings.TrimSpace(pc.Session.Key)
	if pc.Session.Key == "" {
		pc.Session.Key = defaultSessionKey
	}
	pc.Session.RedisURL = strings.TrimSpace(pc.Session.RedisURL)
	if pc.Session.RedisURL == "" {
		pc.Session.RedisURL = defaultRedisURL
	}
	pc.Session.RedisPrefix = strings.TrimSpace(pc.Session.RedisPrefix)
	if pc.Session.RedisPrefix == "" {
		pc.Session.RedisPrefix = defaultRedisPrefix
	}
	pc.Board.Rollback = strings.ToLower(strings.TrimSpace(pc.Board.Rollback))
	if pc.Board.Rollback == "" {
		pc.Board.Rollback = string(board.RollbackTask)
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.Session.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("session.backend must be 'file', 'redis' or 'memory'")
	}
	if _, err := board.ParseRollbackMode(pc.Board.Rollback); err != nil {
		return fmt.Errorf("board.rollback: %w", err)
	}
	settings := confirm.Settings{
		MinDelay:    pc.Confirm.MinDelay,
		MaxDelay:    pc.Confirm.MaxDelay,
		FailureRate: confirm.DefaultFailureRate,
	}
	if pc.Confirm.FailureRate != nil {
		settings.FailureRate = *pc.Confirm.FailureRate
	}
	return settings.Validate()
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
