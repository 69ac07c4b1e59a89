package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bottle-sort/internal/engine"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := parse(defaultYAML)
	if err != nil {
		t.Fatalf("embedded config does not parse: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("embedded config = %+v, want %+v", cfg, DefaultConfig())
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := `pour:
  mode: instant
board:
  rows: 3
  cols: 4
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Instant() {
		t.Error("expected instant pours")
	}
	if cfg.BoardLayout() != (engine.Board{Rows: 3, Cols: 4}) {
		t.Errorf("unexpected board %+v", cfg.BoardLayout())
	}
	// Untouched sections keep defaults.
	if cfg.Levels.Set != "classic" {
		t.Errorf("expected default set, got %q", cfg.Levels.Set)
	}
	if cfg.PourDuration() != 350*time.Millisecond {
		t.Errorf("expected default duration, got %v", cfg.PourDuration())
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("pour: [not, a, map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"instant", func(c *Config) { c.Pour.Mode = PourInstant }, false},
		{"zero rows", func(c *Config) { c.Board.Rows = 0 }, true},
		{"bad mode", func(c *Config) { c.Pour.Mode = "slow" }, true},
		{"negative duration", func(c *Config) { c.Pour.DurationMS = -1 }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"negative idle", func(c *Config) { c.SSH.IdleTimeoutMin = -5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "debug"

	lvl, err := cfg.LogLevel()
	if err != nil {
		t.Fatalf("LogLevel failed: %v", err)
	}
	if lvl != log.DebugLevel {
		t.Errorf("expected debug, got %v", lvl)
	}
}
