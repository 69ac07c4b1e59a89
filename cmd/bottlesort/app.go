package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bottle-sort/internal/config"
	"github.com/vovakirdan/bottle-sort/internal/core"
	"github.com/vovakirdan/bottle-sort/internal/levels"
	"github.com/vovakirdan/bottle-sort/internal/registry"
	"github.com/vovakirdan/bottle-sort/internal/storage"
)

// app holds what every command needs after flags are parsed.
type app struct {
	cfg    config.Config
	logger *log.Logger
}

// setup loads the config, applies flag overrides and registers user level
// sets. It exits on error.
func setup(logOut io.Writer) *app {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fail("%v", err)
	}

	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagLevels != "" {
		cfg.Levels.Path = flagLevels
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		fail("%v", err)
	}

	a := &app{
		cfg:    cfg,
		logger: newLogger(logOut, "bottlesort"),
	}
	level, _ := cfg.LogLevel() // Checked by Validate
	a.logger.SetLevel(level)

	if cfg.Levels.Path != "" {
		loader := levels.NewLoader(cfg.BoardLayout(), a.logger)
		ids, err := loader.RegisterPath(cfg.Levels.Path)
		if err != nil {
			fail("%v", err)
		}
		a.logger.Debug("registered level sets", "path", cfg.Levels.Path, "sets", ids)
	}
	return a
}

func newLogger(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
}

// openStore opens the results database. When required is false a failure is
// a warning and the returned store is nil.
func (a *app) openStore(required bool) *storage.Store {
	store, err := storage.Open(a.cfg.Storage.DBPath)
	if err != nil {
		if required {
			fail("opening results database: %v", err)
		}
		a.logger.Warn("could not open results database", "error", err)
		return nil
	}
	return store
}

// openSet opens a registered level set or exits.
func (a *app) openSet(id string) registry.Set {
	if !registry.Exists(id) {
		fmt.Fprintf(os.Stderr, "Error: unknown level set %q\n", id)
		fmt.Fprintln(os.Stderr, "Run 'bottlesort levels' to see available sets.")
		os.Exit(1)
	}
	set, err := registry.Open(id)
	if err != nil {
		fail("%v", err)
	}
	return set
}

// runtimeConfig builds the per-session play settings.
func (a *app) runtimeConfig(width, height int, player string) core.RuntimeConfig {
	cfg := core.DefaultConfig()
	cfg.ScreenW = width
	cfg.ScreenH = height
	cfg.Instant = a.cfg.Instant()
	cfg.PourDuration = a.cfg.PourDuration()
	cfg.Player = player
	return cfg
}

func parseLevel(arg string) int {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		fail("invalid level number %q", arg)
	}
	return n
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
