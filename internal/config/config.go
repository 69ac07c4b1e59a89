// Package config provides YAML-based configuration loading for bottle-sort.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/bottle-sort/internal/engine"
)

//go:embed defaults/bottlesort.yaml
var defaultYAML []byte

// Pour modes.
const (
	PourAnimated = "animated"
	PourInstant  = "instant"
)

// Config is the full application configuration.
type Config struct {
	Board   BoardConfig   `yaml:"board"`
	Pour    PourConfig    `yaml:"pour"`
	Levels  LevelsConfig  `yaml:"levels"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	SSH     SSHConfig     `yaml:"ssh"`
}

// BoardConfig is the default slot layout for level sets that don't set one.
type BoardConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// PourConfig controls how pours are presented.
type PourConfig struct {
	Mode       string `yaml:"mode"` // animated or instant
	DurationMS int    `yaml:"duration_ms"`
}

// LevelsConfig points at level sources.
type LevelsConfig struct {
	Path string `yaml:"path"`
	Set  string `yaml:"set"`
}

// StorageConfig defines where results are kept.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// SSHConfig configures the serve command.
type SSHConfig struct {
	Address        string `yaml:"address"`
	HostKeyPath    string `yaml:"host_key_path"`
	IdleTimeoutMin int    `yaml:"idle_timeout_min"`
}

// DefaultConfig returns the hardcoded configuration.
func DefaultConfig() Config {
	board := engine.DefaultBoard()
	return Config{
		Board: BoardConfig{Rows: board.Rows, Cols: board.Cols},
		Pour: PourConfig{
			Mode:       PourAnimated,
			DurationMS: 350,
		},
		Levels: LevelsConfig{
			Set: "classic",
		},
		Storage: StorageConfig{
			DBPath: "~/.bottlesort/results.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		SSH: SSHConfig{
			Address:        ":23234",
			IdleTimeoutMin: 30,
		},
	}
}

// Load reads the configuration.
// Search order: customPath -> ~/.bottlesort/config.yaml -> ./configs/bottlesort.yaml -> embedded default
// Fields missing from a file keep their default values.
func Load(customPath string) (Config, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Config{}, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		cfg, err := parse(data)
		if err != nil {
			return Config{}, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parse(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "bottlesort.yaml")); err == nil {
		if cfg, err := parse(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parse(defaultYAML)
	if err != nil {
		return DefaultConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

func parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".bottlesort", filename)
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Board.Rows < 1 || c.Board.Cols < 1 {
		errs = append(errs, fmt.Errorf("config: board must be at least 1x1, got %dx%d", c.Board.Rows, c.Board.Cols))
	}
	switch c.Pour.Mode {
	case PourAnimated, PourInstant:
	default:
		errs = append(errs, fmt.Errorf("config: unknown pour mode %q", c.Pour.Mode))
	}
	if c.Pour.DurationMS < 0 {
		errs = append(errs, fmt.Errorf("config: negative pour duration %d", c.Pour.DurationMS))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	if c.SSH.IdleTimeoutMin < 0 {
		errs = append(errs, fmt.Errorf("config: negative idle timeout %d", c.SSH.IdleTimeoutMin))
	}
	return errors.Join(errs...)
}

// BoardLayout returns the configured board.
func (c Config) BoardLayout() engine.Board {
	return engine.Board{Rows: c.Board.Rows, Cols: c.Board.Cols}
}

// Instant reports whether pours complete without an animation interval.
func (c Config) Instant() bool {
	return c.Pour.Mode == PourInstant
}

// PourDuration returns the animation interval for animated pours.
func (c Config) PourDuration() time.Duration {
	return time.Duration(c.Pour.DurationMS) * time.Millisecond
}

// IdleTimeout returns the SSH idle timeout.
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.SSH.IdleTimeoutMin) * time.Minute
}

// LogLevel parses the configured log level.
func (c Config) LogLevel() (log.Level, error) {
	return log.ParseLevel(c.Log.Level)
}
