package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"optitask/internal/config"
)

func TestNew_DefaultsWithoutFile(t *testing.T) {
	t.Setenv(config.ServerURLEnv, "")
	dir := t.TempDir()

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dir != dir {
		t.Errorf("expected dir %q, got %q", dir, cfg.Dir)
	}
	s := cfg.Settings
	if s.Backend != config.BackendHTTP || s.ServerURL != config.DefaultServerURL || s.GoogleList != config.DefaultGoogleList {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if !s.ShowNewestFirst() {
		t.Error("expected newest first by default")
	}
}

func TestNew_ReadsYAML(t *testing.T) {
	t.Setenv(config.ServerURLEnv, "")
	dir := t.TempDir()
	content := "backend: Google\nserver_url: http://tasks.local:9000/\ngoogle_list: abc123\nnewest_first: false\n"
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte(content), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := cfg.Settings
	if s.Backend != config.BackendGoogle {
		t.Errorf("expected google backend, got %q", s.Backend)
	}
	if s.ServerURL != "http://tasks.local:9000" {
		t.Errorf("expected trailing slash trimmed, got %q", s.ServerURL)
	}
	if s.GoogleList != "abc123" {
		t.Errorf("expected google list abc123, got %q", s.GoogleList)
	}
	if s.ShowNewestFirst() {
		t.Error("expected oldest first")
	}
}

func TestNew_EnvOverridesServerURL(t *testing.T) {
	t.Setenv(config.ServerURLEnv, "http://env.local:1")
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Settings.ServerURL != "http://env.local:1" {
		t.Errorf("expected env url, got %q", cfg.Settings.ServerURL)
	}
}

func TestNew_RejectsUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("backend: carrier-pigeon\n"), 0600)

	_, err := config.New(dir)
	if err == nil || !strings.Contains(err.Error(), "unknown backend: carrier-pigeon") {
		t.Errorf("expected unknown backend error, got %v", err)
	}
}

func TestNew_RejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("backend: [\n"), 0600)

	if _, err := config.New(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := config.DefaultConfigDir(); got != filepath.Join("/tmp/xdg", "optitask") {
		t.Errorf("unexpected dir %q", got)
	}
}
