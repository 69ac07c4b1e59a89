package core

import (
	"time"

	"github.com/vovakirdan/bottle-sort/internal/engine"
)

// RuntimeConfig contains per-session settings passed to the play view.
type RuntimeConfig struct {
	ScreenW      int           // Screen width in characters
	ScreenH      int           // Screen height in characters
	Instant      bool          // Pours complete without an animation interval
	PourDuration time.Duration // Animation interval for animated pours
	Player       string        // Name stored with results
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:      80,
		ScreenH:      24,
		PourDuration: 350 * time.Millisecond,
	}
}

// EngineOptions returns engine options for playing a set laid out on board.
func (c RuntimeConfig) EngineOptions(board engine.Board) []engine.Option {
	opts := []engine.Option{engine.WithBoard(board)}
	if c.Instant {
		opts = append(opts, engine.WithInstantPours())
	}
	return opts
}
