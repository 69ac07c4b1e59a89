package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/bottle-sort/internal/platform/tui"
)

var (
	flagLogFile string
	flagPlayer  string
	flagInstant bool
)

var playCmd = &cobra.Command{
	Use:   "play [set] [level]",
	Short: "Play a level set",
	Long: `Start the puzzle.

Without arguments the level picker opens on the configured default set. With
a set it opens on that set's levels, and with a set and a level number that
level starts right away.

Controls:
  Arrows/WASD  - Move between bottles
  Space/Enter  - Pick up, pour, or put back (mouse clicks work too)
  U            - Unlock a sponsored bottle
  H            - Hint
  R            - Restart the level
  N            - Next level (after solving)
  Esc/B        - Back to the level picker
  Ctrl+S       - Save a text screenshot
  Q/Ctrl+C     - Quit

Examples:
  bottlesort play
  bottlesort play classic
  bottlesort play classic 4 --instant
  bottlesort play tutorial 1 --levels ./tutorial.yaml --log-file play.log`,
	Args: cobra.MaximumNArgs(2),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file while playing")
	playCmd.Flags().StringVar(&flagPlayer, "player", "", "Player name stored with results (default: $USER)")
	playCmd.Flags().BoolVar(&flagInstant, "instant", false, "Pour without animation")
}

func runPlay(_ *cobra.Command, args []string) {
	a := setup(os.Stderr)

	// The configured default set only preselects the picker.
	setID := a.cfg.Levels.Set
	level := 0
	if len(args) > 0 {
		setID = args[0]
		a.openSet(setID)
	}
	if len(args) > 1 {
		level = parseLevel(args[1])
	}

	// The TUI owns the terminal, so session logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			fail("opening log file: %v", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(logOut, "bottlesort")
	logger.SetLevel(a.logger.GetLevel())

	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	player := flagPlayer
	if player == "" {
		player = os.Getenv("USER")
	}
	cfg := a.runtimeConfig(width, height, player)
	if flagInstant {
		cfg.Instant = true
	}

	store := a.openStore(false)

	runErr := tui.RunSession(tui.SessionOptions{
		Store:  store,
		Config: cfg,
		Logger: logger,
		SetID:  setID,
		Level:  level,
	})

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fail("running session: %v", runErr)
	}
}
