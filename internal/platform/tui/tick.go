// Package tui provides the Bubble Tea front end for bottle-sort: the level
// picker, the play view, the results table and the SSH session wrapper.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/bottle-sort/internal/engine"
)

// PourDoneMsg is sent when a pour animation interval has elapsed.
type PourDoneMsg struct {
	Complete engine.CompletionSignal
}

// pourCmd holds the completion signal for the animation interval, then
// hands it back to the play view.
func pourCmd(d time.Duration, complete engine.CompletionSignal) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return PourDoneMsg{Complete: complete}
	})
}
