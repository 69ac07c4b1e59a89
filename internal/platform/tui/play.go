package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bottle-sort/internal/core"
	"github.com/vovakirdan/bottle-sort/internal/engine"
	"github.com/vovakirdan/bottle-sort/internal/registry"
	"github.com/vovakirdan/bottle-sort/internal/solver"
	"github.com/vovakirdan/bottle-sort/internal/storage"
)

const (
	boardTop    = 3 // Header lines above the board
	hintTimeout = 2 * time.Second
)

// hintMsg carries a solver result for the board at a given move count.
type hintMsg struct {
	moves int
	move  solver.Move
	ok    bool
	err   error
	// locked is true when the hint needs a locked bottle.
	locked bool
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarn
	statusWin
)

// PlayModel is the Bubble Tea model for one level set being played.
type PlayModel struct {
	set    registry.Set
	level  engine.LevelData
	engine *engine.Engine
	store  *storage.Store
	config core.RuntimeConfig
	logger *log.Logger
	theme  Theme
	keys   PlayKeyMap
	help   help.Model
	screen *core.Screen
	layout core.Layout

	cursor  engine.Position
	started time.Time

	pouring bool
	pour    engine.PourStarted

	hasHint bool
	hint    solver.Move

	unlockPending bool
	unlockBottle  engine.BottleID

	status     string
	statusKind statusKind
	solved     bool
	best       int
	hasBest    bool

	quitting   bool
	backToMenu bool
}

// NewPlayModel creates a play view for one level of a set. Level 0 starts at
// the first level.
func NewPlayModel(set registry.Set, level int, store *storage.Store, cfg core.RuntimeConfig, logger *log.Logger) (PlayModel, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	data, ok := registry.Find(set, level)
	if !ok {
		levels := set.Levels()
		if level != 0 || len(levels) == 0 {
			return PlayModel{}, fmt.Errorf("tui: set %q has no level %d", set.ID(), level)
		}
		data = levels[0]
	}

	h := help.New()
	h.ShowAll = false
	h.Width = cfg.ScreenW

	m := PlayModel{
		set:    set,
		engine: engine.New(cfg.EngineOptions(set.Board())...),
		store:  store,
		config: cfg,
		logger: logger,
		theme:  DefaultTheme(),
		keys:   DefaultPlayKeyMap(),
		help:   h,
	}
	m.resize(cfg.ScreenW)

	if err := m.load(data); err != nil {
		return PlayModel{}, err
	}
	return m, nil
}

// load replaces the current level.
func (m *PlayModel) load(data engine.LevelData) error {
	if err := m.engine.LoadLevel(data); err != nil {
		return fmt.Errorf("tui: level %d: %w", data.Level, err)
	}

	m.level = data
	m.started = time.Now()
	m.pouring = false
	m.hasHint = false
	m.unlockPending = false
	m.solved = false
	m.setStatus(statusInfo, "Pick up a bottle with space, or click it.")

	m.hasBest = false
	if m.store != nil {
		if best, ok, err := m.store.BestMoves(m.set.ID(), data.Level); err == nil {
			m.best, m.hasBest = best, ok
		}
	}

	if snap, ok := m.engine.Snapshot(); ok && len(snap.Bottles) > 0 {
		m.cursor = snap.Bottles[0].Position
	}
	if ev, ok := m.engine.Solved(); ok {
		m.apply([]engine.Event{ev})
	}

	m.logger.Debug("level loaded", "set", m.set.ID(), "level", data.Level)
	return nil
}

func (m *PlayModel) resize(width int) {
	m.config.ScreenW = width
	w, h := core.BoardSize(m.set.Board())
	m.layout = core.NewLayout(m.set.Board(), max(width, w), boardTop)
	m.screen = core.NewScreen(max(width, w), boardTop+h)
	m.help.Width = width
}

func (m *PlayModel) setStatus(kind statusKind, format string, args ...any) {
	m.statusKind = kind
	m.status = fmt.Sprintf(format, args...)
}

// Init initializes the model.
func (m PlayModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenH = msg.Height
		m.resize(msg.Width)
		return m, nil

	case PourDoneMsg:
		m.pouring = false
		return m, m.apply(msg.Complete())

	case hintMsg:
		return m.handleHint(msg)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m PlayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()
		return m, nil
	}

	return m.handleAction(m.keys.Action(msg))
}

// handleMouse turns a left click on a bottle into a tap.
func (m PlayModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	pos, ok := m.layout.SlotAt(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	if _, ok := m.bottleAt(pos); !ok {
		return m, nil
	}
	m.cursor = pos
	return m.handleAction(core.ActionTap)
}

// handleAction applies one puzzle action.
func (m PlayModel) handleAction(a core.Action) (tea.Model, tea.Cmd) {
	switch {
	case a == core.ActionQuit:
		m.quitting = true
		return m, tea.Quit

	case a.IsMovement():
		m.cursor = core.Navigate(m.cursor, a, m.occupied())
		return m, nil
	}

	switch a {
	case core.ActionTap:
		return m.tap()

	case core.ActionUnlock:
		return m.unlock()

	case core.ActionHint:
		if m.solved {
			return m, nil
		}
		m.setStatus(statusInfo, "Thinking...")
		return m, m.hintCmd()

	case core.ActionRestart:
		if err := m.load(m.level); err != nil {
			m.setStatus(statusWarn, "Wait for the pour to finish.")
		}
		return m, nil

	case core.ActionNext:
		if !m.solved {
			return m, nil
		}
		next, ok := registry.Next(m.set, m.level.Level)
		if !ok {
			m.setStatus(statusWin, "That was the last level of %s!", m.set.Title())
			return m, nil
		}
		if err := m.load(next); err != nil {
			m.setStatus(statusWarn, "%v", err)
		}
		return m, nil

	case core.ActionBack:
		if m.engine.Busy() {
			m.setStatus(statusWarn, "Wait for the pour to finish.")
			return m, nil
		}
		m.backToMenu = true
		return m, nil
	}

	return m, nil
}

// tap sends a tap on the bottle under the cursor to the engine.
func (m PlayModel) tap() (tea.Model, tea.Cmd) {
	id, ok := m.bottleAt(m.cursor)
	if !ok {
		return m, nil
	}

	out, err := m.engine.HandleTap(id)
	if err != nil {
		m.setStatus(statusWarn, "%v", err)
		return m, nil
	}
	if out.Ignored {
		m.setStatus(statusWarn, "Pouring...")
		return m, nil
	}

	m.unlockPending = false
	return m, m.apply(out.Events)
}

// unlock grants a pending unlock request. The sponsored unlock is simulated
// by the key press itself.
func (m PlayModel) unlock() (tea.Model, tea.Cmd) {
	if !m.unlockPending {
		return m, nil
	}

	outcome, err := m.engine.UnlockBottle(m.unlockBottle)
	if err != nil {
		m.setStatus(statusWarn, "%v", err)
		return m, nil
	}

	switch outcome {
	case engine.UnlockDone:
		m.unlockPending = false
		m.logger.Info("bottle unlocked", "set", m.set.ID(), "level", m.level.Level, "bottle", m.unlockBottle)
		m.setStatus(statusInfo, "Bottle %d unlocked. Thanks for watching!", m.unlockBottle)
	case engine.UnlockAlreadyUnlocked:
		m.unlockPending = false
	case engine.UnlockBusy:
		m.setStatus(statusWarn, "Wait for the pour to finish.")
	}
	return m, nil
}

// apply renders engine events into model state and returns any follow-up
// command.
func (m *PlayModel) apply(events []engine.Event) tea.Cmd {
	var cmd tea.Cmd
	for _, ev := range events {
		switch ev := ev.(type) {
		case engine.BottleSelected:
			m.setStatus(statusInfo, "Picked up %d from bottle %d.", ev.LiftedRun, ev.Bottle)

		case engine.BottleDeselected:
			m.setStatus(statusInfo, "Put bottle %d back.", ev.Bottle)

		case engine.PourRejected:
			m.setStatus(statusWarn, "Bottle %d can't pour into bottle %d.", ev.From, ev.To)

		case engine.PourStarted:
			m.hasHint = false
			m.logger.Debug("pour", "from", ev.From, "to", ev.To, "amount", ev.Amount)
			if m.config.Instant {
				continue
			}
			m.pouring = true
			m.pour = ev
			m.setStatus(statusInfo, "Pouring %d from bottle %d into bottle %d...", ev.Amount, ev.From, ev.To)
			cmd = pourCmd(m.config.PourDuration, ev.Complete)

		case engine.BottlesChanged:
			if !m.solved {
				m.setStatus(statusInfo, "Poured.")
			}

		case engine.LevelSolved:
			m.solved = true
			m.onSolved(ev)

		case engine.UnlockRequired:
			m.unlockPending = true
			m.unlockBottle = ev.Bottle
			m.setStatus(statusWarn, "Bottle %d is sponsored. Press u to watch an ad and unlock it.", ev.Bottle)

		case engine.BottleUnlocked:
			m.setStatus(statusInfo, "Bottle %d unlocked.", ev.Bottle)
		}
	}
	return cmd
}

// onSolved records the result once per solve.
func (m *PlayModel) onSolved(ev engine.LevelSolved) {
	elapsed := time.Since(m.started)
	m.logger.Info("level solved",
		"set", m.set.ID(),
		"level", ev.Level,
		"moves", ev.Moves,
		"duration", elapsed.Round(time.Millisecond),
	)

	record := !m.hasBest || ev.Moves < m.best
	if m.store != nil {
		if _, err := m.store.SaveResult(storage.Result{
			SetID:    m.set.ID(),
			Level:    ev.Level,
			Moves:    ev.Moves,
			Duration: elapsed,
			Player:   m.config.Player,
		}); err != nil {
			m.logger.Warn("could not save result", "error", err)
		}
	}
	if record {
		m.best, m.hasBest = ev.Moves, true
	}

	msg := fmt.Sprintf("Solved in %d moves!", ev.Moves)
	if record {
		msg += " New best."
	}
	if _, ok := registry.Next(m.set, ev.Level); ok {
		msg += " Press n for the next level."
	}
	m.setStatus(statusWin, "%s", msg)
}

// hintCmd runs the solver off the update loop.
func (m PlayModel) hintCmd() tea.Cmd {
	lvl := m.engine.Level()
	snap, _ := m.engine.Snapshot()
	moves := snap.Moves

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), hintTimeout)
		defer cancel()

		mv, ok, err := solver.Hint(ctx, lvl, solver.Options{})
		if errors.Is(err, solver.ErrUnsolvable) {
			mv, ok, err = solver.Hint(ctx, lvl, solver.Options{AssumeUnlocked: true})
			return hintMsg{moves: moves, move: mv, ok: ok, err: err, locked: err == nil}
		}
		return hintMsg{moves: moves, move: mv, ok: ok, err: err}
	}
}

func (m PlayModel) handleHint(msg hintMsg) (tea.Model, tea.Cmd) {
	snap, ok := m.engine.Snapshot()
	if !ok || snap.Moves != msg.moves || m.solved {
		return m, nil // Board changed since the hint was requested
	}

	switch {
	case errors.Is(msg.err, solver.ErrUnsolvable):
		m.setStatus(statusWarn, "No way out from here. Press r to restart.")
	case msg.err != nil:
		m.setStatus(statusWarn, "No hint available.")
	case !msg.ok:
		m.setStatus(statusInfo, "Nothing left to do.")
	case msg.locked:
		m.setStatus(statusWarn, "You'll need a locked bottle. Tap one to unlock it.")
	default:
		m.hasHint = true
		m.hint = msg.move
		m.setStatus(statusInfo, "Hint: pour bottle %d into bottle %d.", msg.move.From, msg.move.To)
	}
	m.logger.Debug("hint", "moves", msg.moves, "ok", msg.ok, "error", msg.err)
	return m, nil
}

func (m PlayModel) occupied() []engine.Position {
	snap, ok := m.engine.Snapshot()
	if !ok {
		return nil
	}
	out := make([]engine.Position, 0, len(snap.Bottles))
	for _, b := range snap.Bottles {
		out = append(out, b.Position)
	}
	return out
}

func (m PlayModel) bottleAt(p engine.Position) (engine.BottleID, bool) {
	snap, ok := m.engine.Snapshot()
	if !ok {
		return 0, false
	}
	for _, b := range snap.Bottles {
		if b.Position == p {
			return b.ID, true
		}
	}
	return 0, false
}

// drawBoard renders the current state to the screen buffer.
func (m PlayModel) drawBoard(plain bool) *core.Screen {
	m.screen.Clear()
	snap, ok := m.engine.Snapshot()
	if !ok {
		return m.screen
	}
	core.DrawBoard(m.screen, m.layout, core.BoardView{
		Snapshot:   snap,
		Cursor:     m.cursor,
		ShowCursor: true,
		Plain:      plain,
		HasHint:    m.hasHint,
		HintFrom:   m.hint.From,
		HintTo:     m.hint.To,
		Pouring:    m.pouring,
		PourFrom:   m.pour.From,
		PourTo:     m.pour.To,
		PourAmount: m.pour.Amount,
	})
	return m.screen
}

// saveScreenshot saves the current board as plain text.
func (m *PlayModel) saveScreenshot() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".bottlesort", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%d_%s.txt", m.set.ID(), m.level.Level, timestamp)
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, []byte(m.drawBoard(true).String()), 0o600); err != nil {
		m.setStatus(statusWarn, "Screenshot failed: %v", err)
		return
	}
	m.setStatus(statusInfo, "Saved %s", path)
}

// View renders the current state to a string for display.
func (m PlayModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	snap, _ := m.engine.Snapshot()
	title := fmt.Sprintf("%s  Level %d", m.set.Title(), m.level.Level)
	if m.level.Name != "" {
		title += ": " + m.level.Name
	}
	b.WriteString(centerText(m.theme.Title.Render(title), m.config.ScreenW))
	b.WriteString("\n")

	div := m.theme.HUDDivider.Render("  |  ")
	hud := m.theme.HUDLabel.Render("Moves ") + m.theme.HUDValue.Render(fmt.Sprintf("%d", snap.Moves))
	if m.hasBest {
		hud += div + m.theme.HUDLabel.Render("Best ") + m.theme.HUDValue.Render(fmt.Sprintf("%d", m.best))
	}
	hud += div + m.theme.HUDLabel.Render("Time ") +
		m.theme.HUDValue.Render(time.Since(m.started).Round(time.Second).String())
	b.WriteString(centerText(hud, m.config.ScreenW))
	b.WriteString("\n")

	// Board occupies the screen from boardTop.
	board := strings.SplitN(RenderScreen(m.drawBoard(false)), "\n", boardTop+1)
	b.WriteString("\n")
	b.WriteString(board[len(board)-1])
	b.WriteString("\n\n")

	style := m.theme.Status
	switch m.statusKind {
	case statusWarn:
		style = m.theme.StatusWarn
	case statusWin:
		style = m.theme.StatusWin
	}
	if m.unlockPending {
		b.WriteString(centerText(m.theme.Prompt.Render(m.status), m.config.ScreenW))
	} else {
		b.WriteString(centerText(style.Render(m.status), m.config.ScreenW))
	}
	b.WriteString("\n\n")
	b.WriteString(m.theme.Help.Render(m.help.View(m.keys)))

	return b.String()
}

// IsQuitting returns true if user requested to quit entirely.
func (m PlayModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to the level picker.
func (m PlayModel) BackToMenu() bool {
	return m.backToMenu
}

// Solved reports whether the current level has been solved.
func (m PlayModel) Solved() bool {
	return m.solved
}

// Engine exposes the engine for tests.
func (m PlayModel) Engine() *engine.Engine {
	return m.engine
}
