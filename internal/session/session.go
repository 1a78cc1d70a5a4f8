// Package session tracks who is "logged in": a display name kept in a
// Store under a single key. There is no authentication.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/kanban/internal/config"
)

// ErrEmptyName is returned by Login when the trimmed name is empty.
var ErrEmptyName = errors.New("session: display name is required")

// Session is the context object handed to the board screen.
type Session struct {
	Name    string
	Started time.Time
}

// Anonymous reports whether the board was opened without logging in.
func (s Session) Anonymous() bool { return s.Name == "" }

// Manager owns the session lifecycle: Login creates it, Logout tears it
// down.
type Manager struct {
	store Store
	key   string
	clock func() time.Time
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithClock sets the clock that stamps Session.Started.
func WithClock(clock func() time.Time) ManagerOption {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewManager stores the name under key in store.
func NewManager(store Store, key string, opts ...ManagerOption) *Manager {
	m := &Manager{
		store: store,
		key:   key,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Key returns the storage key the name is written under.
func (m *Manager) Key() string { return m.key }

// Login stores the trimmed name and returns the new session.
func (m *Manager) Login(ctx context.Context, name string) (Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Session{}, ErrEmptyName
	}
	if err := m.store.Set(ctx, m.key, name); err != nil {
		return Session{}, err
	}
	return Session{Name: name, Started: m.clock()}, nil
}

// Logout forgets the stored name.
func (m *Manager) Logout(ctx context.Context) error {
	return m.store.Delete(ctx, m.key)
}

// Current reads the stored name, if any.
func (m *Manager) Current(ctx context.Context) (Session, bool, error) {
	name, ok, err := m.store.Get(ctx, m.key)
	if err != nil || !ok {
		return Session{}, false, err
	}
	return Session{Name: name}, true, nil
}

// Open builds the store selected by cfg.Project.Session.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	sc := cfg.Project.Session
	switch sc.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendFile, "":
		return NewFileStore(cfg.SessionPath())
	case config.BackendRedis:
		return OpenRedisStore(ctx, sc.RedisURL, sc.RedisPrefix)
	default:
		return nil, fmt.Errorf("session: unknown backend %q", sc.Backend)
	}
}
