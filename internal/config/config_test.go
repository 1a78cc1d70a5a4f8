package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/kanban/internal/board"
)

func TestInitDirWritesDefaultConfig(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("InitDir returned error: %v", err)
	}
	for _, dir := range []string{"logs", "state"} {
		if info, err := os.Stat(filepath.Join(projectDir, KanbanDir, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory, err=%v", dir, err)
		}
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if cfg.Project.Session.Backend != BackendFile {
		t.Fatalf("expected file backend, got %s", cfg.Project.Session.Backend)
	}
	if cfg.RollbackMode() != board.RollbackTask {
		t.Fatalf("expected task rollback, got %s", cfg.RollbackMode())
	}
	settings := cfg.ConfirmSettings()
	if settings.MinDelay != time.Second || settings.MaxDelay != 3*time.Second || settings.FailureRate != 0.2 {
		t.Fatalf("unexpected confirm settings: %+v", settings)
	}
}

func TestLoadProjectConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if cfg.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", cfg.Project.Version)
	}
	if cfg.Project.Session.Key != defaultSessionKey {
		t.Fatalf("expected session key %q, got %q", defaultSessionKey, cfg.Project.Session.Key)
	}
	if cfg.SessionPath() != filepath.Join(projectDir, KanbanDir, "state", "session.yaml") {
		t.Fatalf("unexpected session path %s", cfg.SessionPath())
	}
}

func TestLoadProjectConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, `
version: 1
session:
  backend: Redis
  key: whoami
  redis_url: redis://cache:6379/2
confirm:
  min_delay: 250ms
  max_delay: 750ms
  failure_rate: 0
board:
  rollback: snapshot
notifications:
  error_ttl: 10s
`)
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if cfg.Project.Session.Backend != BackendRedis {
		t.Fatalf("expected backend to be normalized to redis, got %s", cfg.Project.Session.Backend)
	}
	if cfg.Project.Session.Key != "whoami" || cfg.Project.Session.RedisPrefix != defaultRedisPrefix {
		t.Fatalf("unexpected session config: %+v", cfg.Project.Session)
	}
	settings := cfg.ConfirmSettings()
	if settings.MinDelay != 250*time.Millisecond || settings.MaxDelay != 750*time.Millisecond {
		t.Fatalf("unexpected delay window: %+v", settings)
	}
	if settings.FailureRate != 0 {
		t.Fatalf("explicit zero failure rate must be kept, got %v", settings.FailureRate)
	}
	if cfg.RollbackMode() != board.RollbackSnapshot {
		t.Fatalf("expected snapshot rollback, got %s", cfg.RollbackMode())
	}
	notify := cfg.NotifySettings()
	if notify.ErrorTTL != 10*time.Second || notify.SuccessTTL != 2*time.Second {
		t.Fatalf("unexpected notification settings: %+v", notify)
	}
}

func TestLoadProjectConfigValidation(t *testing.T) {
	tests := map[string]string{
		"backend":  "session:\n  backend: sqlite\n",
		"rollback": "board:\n  rollback: undo\n",
		"window":   "confirm:\n  min_delay: 5s\n  max_delay: 1s\n",
		"rate":     "confirm:\n  failure_rate: 2\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			projectDir := t.TempDir()
			writeConfig(t, projectDir, body)
			if _, err := NewConfig(projectDir); err == nil {
				t.Fatalf("expected validation error but got none")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	projectDir := t.TempDir()
	t.Setenv("KANBAN_SESSION_BACKEND", "memory")
	t.Setenv("KANBAN_ROLLBACK", "snapshot")
	t.Setenv("KANBAN_FAILURE_RATE", "1")
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if cfg.Project.Session.Backend != BackendMemory {
		t.Fatalf("expected memory backend, got %s", cfg.Project.Session.Backend)
	}
	if cfg.RollbackMode() != board.RollbackSnapshot {
		t.Fatalf("expected snapshot rollback, got %s", cfg.RollbackMode())
	}
	if cfg.ConfirmSettings().FailureRate != 1 {
		t.Fatalf("expected failure rate override")
	}

	t.Setenv("KANBAN_FAILURE_RATE", "often")
	if _, err := NewConfig(projectDir); err == nil {
		t.Fatalf("expected error for unparsable failure rate")
	}
}

func writeConfig(t *testing.T, projectDir, body string) {
	t.Helper()
	dir := filepath.Join(projectDir, KanbanDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(strings.TrimSpace(body)+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSetSessionBackendNormalizes(t *testing.T) {
	cfg, err := NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if err := cfg.SetSessionBackend("  Redis "); err != nil {
		t.Fatalf("SetSessionBackend: %v", err)
	}
	if cfg.Project.Session.Backend != BackendRedis {
		t.Fatalf("backend = %q, want redis", cfg.Project.Session.Backend)
	}
	if err := cfg.SetSessionBackend("etcd"); err == nil {
		t.Fatalf("expected unknown backend to fail")
	}
	if cfg.Project.Session.Backend != BackendRedis {
		t.Fatalf("failed override changed backend to %q", cfg.Project.Session.Backend)
	}
}
