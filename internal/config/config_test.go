package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
app:
  addr: "127.0.0.1:9999"
targets:
  greenhouse:
    - https://boards.greenhouse.io/acme
  teamtailor:
    - https://acme.teamtailor.com/
politeness:
  min_interval: 5s
fetch:
  timeout: 10s
  max_attempts: 2
  base_delay: 500ms
  user_agent: "TestAgent/1.0"
  render: false
workers: 8
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Addr != "127.0.0.1:9999" {
		t.Errorf("addr = %q", cfg.App.Addr)
	}
	if len(cfg.Targets) != 2 || len(cfg.Targets["greenhouse"]) != 1 {
		t.Errorf("targets = %+v", cfg.Targets)
	}
	if cfg.Politeness.MinInterval != 5*time.Second {
		t.Errorf("min_interval = %v", cfg.Politeness.MinInterval)
	}
	if cfg.Fetch.Timeout != 10*time.Second || cfg.Fetch.BaseDelay != 500*time.Millisecond {
		t.Errorf("fetch = %+v", cfg.Fetch)
	}
	if cfg.Fetch.MaxAttempts != 2 || cfg.Fetch.Render {
		t.Errorf("fetch = %+v", cfg.Fetch)
	}
	if cfg.Workers != 8 {
		t.Errorf("workers = %d", cfg.Workers)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
targets:
  generic:
    - https://example.com/careers
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Addr == "" {
		t.Errorf("default addr missing")
	}
	if cfg.Politeness.MinInterval != 2*time.Second {
		t.Errorf("default min_interval = %v", cfg.Politeness.MinInterval)
	}
	if cfg.Fetch.MaxAttempts != 3 || cfg.Fetch.Timeout != 20*time.Second {
		t.Errorf("fetch defaults = %+v", cfg.Fetch)
	}
	if !cfg.Fetch.Render {
		t.Errorf("render should default to enabled")
	}
	if cfg.Workers != 4 {
		t.Errorf("default workers = %d", cfg.Workers)
	}
}

func TestLoadRejectsEmptyTargets(t *testing.T) {
	path := writeConfig(t, `
politeness:
  min_interval: 1s
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for a config without targets")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `
targets:
  generic:
    - https://example.com/careers
politeness:
  min_interval: soon
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for an unparseable duration")
	}
}

func TestEnsureUserConfigCopiesOnce(t *testing.T) {
	dataDir := t.TempDir()
	def := writeConfig(t, "targets:\n  generic:\n    - https://example.com/careers\n")

	path, err := EnsureUserConfig(dataDir, def)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if filepath.Dir(path) != dataDir {
		t.Errorf("user config at %q, want inside %q", path, dataDir)
	}

	// a user edit must survive re-bootstrap
	if err := os.WriteFile(path, []byte("targets:\n  generic:\n    - https://edited.example\n"), 0o644); err != nil {
		t.Fatalf("edit: %v", err)
	}
	again, err := EnsureUserConfig(dataDir, def)
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	b, err := os.ReadFile(again)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "targets:\n  generic:\n    - https://edited.example\n" {
		t.Errorf("bootstrap overwrote the user's copy")
	}
}
