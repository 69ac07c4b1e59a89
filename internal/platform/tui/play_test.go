package tui

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/bottle-sort/internal/core"
	"github.com/vovakirdan/bottle-sort/internal/engine"
	"github.com/vovakirdan/bottle-sort/internal/registry"
	"github.com/vovakirdan/bottle-sort/internal/storage"
)

const testSetID = "tui-test"

type testSet struct {
	levels []engine.LevelData
}

func (testSet) ID() string                   { return testSetID }
func (testSet) Title() string                { return "TUI Test" }
func (testSet) Board() engine.Board          { return engine.DefaultBoard() }
func (s testSet) Levels() []engine.LevelData { return s.levels }

func bottle(id, row, col int, lock engine.LockStatus, blocks ...int) engine.BottleRecord {
	return engine.BottleRecord{ID: id, Row: row, Col: col, Blocks: blocks, LockStatus: int(lock)}
}

// newTestSet returns three levels:
//  1. one pour from bottle 0 into bottle 1 solves it
//  2. same, with a single block moving
//  3. the middle bottle is sponsored
func newTestSet() testSet {
	return testSet{levels: []engine.LevelData{
		{Level: 1, Name: "First", Bottles: []engine.BottleRecord{
			bottle(0, 0, 0, engine.Unlocked, 2, 1, 1),
			bottle(1, 0, 1, engine.Unlocked),
		}},
		{Level: 2, Name: "Second", Bottles: []engine.BottleRecord{
			bottle(0, 0, 0, engine.Unlocked, 1, 1, 2),
			bottle(1, 0, 1, engine.Unlocked, 2),
		}},
		{Level: 3, Name: "Sponsored", Bottles: []engine.BottleRecord{
			bottle(0, 0, 0, engine.Unlocked, 1, 2),
			bottle(1, 0, 1, engine.AdUnlock),
			bottle(2, 0, 2, engine.Unlocked, 2, 1),
		}},
	}}
}

var registerOnce sync.Once

func registerTestSet(t *testing.T) {
	t.Helper()
	registerOnce.Do(func() {
		registry.Register(testSetID, "TUI Test", func() (registry.Set, error) {
			return newTestSet(), nil
		})
	})
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("storage.Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testConfig(instant bool) core.RuntimeConfig {
	cfg := core.DefaultConfig()
	cfg.Instant = instant
	cfg.PourDuration = time.Millisecond
	cfg.Player = "tester"
	return cfg
}

func newPlay(t *testing.T, level int, store *storage.Store, instant bool) PlayModel {
	t.Helper()
	m, err := NewPlayModel(newTestSet(), level, store, testConfig(instant), nil)
	if err != nil {
		t.Fatalf("NewPlayModel failed: %v", err)
	}
	return m
}

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m PlayModel, msgs ...tea.Msg) (PlayModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		var ok bool
		m, ok = next.(PlayModel)
		if !ok {
			t.Fatalf("Update returned %T, want PlayModel", next)
		}
	}
	return m, cmd
}

func TestPlayModelInstantSolveSavesResult(t *testing.T) {
	store := openStore(t)
	m := newPlay(t, 1, store, true)

	m, _ = send(t, m, keySpace)
	snap, _ := m.Engine().Snapshot()
	if !snap.HasSelect || snap.Selected != 0 || snap.LiftedRun != 2 {
		t.Fatalf("after first tap: selected=%d has=%v run=%d, want bottle 0 with run 2",
			snap.Selected, snap.HasSelect, snap.LiftedRun)
	}

	m, cmd := send(t, m, keyRight, keySpace)
	if cmd != nil {
		t.Error("instant pours should not schedule a tick")
	}
	if !m.Solved() {
		t.Fatal("level should be solved after one pour")
	}
	if !strings.Contains(m.status, "Solved in 1 moves") {
		t.Errorf("status = %q, want solve message", m.status)
	}

	best, ok, err := store.BestMoves(testSetID, 1)
	if err != nil {
		t.Fatalf("BestMoves failed: %v", err)
	}
	if !ok || best != 1 {
		t.Errorf("BestMoves = %d, %v; want 1, true", best, ok)
	}

	results, err := store.SetResults(testSetID)
	if err != nil {
		t.Fatalf("SetResults failed: %v", err)
	}
	if len(results) != 1 || results[0].Player != "tester" {
		t.Errorf("results = %+v, want one result by tester", results)
	}
}

func TestPlayModelNextLevel(t *testing.T) {
	m := newPlay(t, 1, nil, true)

	// Next is ignored until the level is solved.
	m, _ = send(t, m, runes("n"))
	if m.level.Level != 1 {
		t.Fatalf("level = %d before solve, want 1", m.level.Level)
	}

	m, _ = send(t, m, keySpace, keyRight, keySpace, runes("n"))
	if m.level.Level != 2 {
		t.Errorf("level = %d after next, want 2", m.level.Level)
	}
	if m.Solved() {
		t.Error("new level should not start solved")
	}
	if m.cursor != (engine.Position{}) {
		t.Errorf("cursor = %v, want first bottle", m.cursor)
	}
}

func TestPlayModelLevelSolvedAtLoad(t *testing.T) {
	set := testSet{levels: []engine.LevelData{
		{Level: 1, Name: "Empty", Bottles: []engine.BottleRecord{
			bottle(0, 0, 0, engine.Unlocked),
			bottle(1, 0, 1, engine.Unlocked),
		}},
		newTestSet().levels[0],
	}}
	set.levels[1].Level = 2

	m, err := NewPlayModel(set, 1, nil, testConfig(true), nil)
	if err != nil {
		t.Fatalf("NewPlayModel failed: %v", err)
	}
	if !m.Solved() {
		t.Fatal("an all-empty level should start solved")
	}
	if !strings.Contains(m.status, "Solved in 0 moves") {
		t.Errorf("status = %q, want solve message", m.status)
	}

	m, _ = send(t, m, runes("n"))
	if m.level.Level != 2 {
		t.Errorf("level = %d after next, want 2", m.level.Level)
	}
	if m.Solved() {
		t.Error("second level should not start solved")
	}
}

func TestPlayModelAnimatedPour(t *testing.T) {
	m := newPlay(t, 1, nil, false)

	m, cmd := send(t, m, keySpace, keyRight, keySpace)
	if cmd == nil {
		t.Fatal("animated pour should schedule a completion tick")
	}
	if !m.Engine().Busy() || !m.pouring {
		t.Fatal("engine should be busy while the pour animates")
	}
	if m.Solved() {
		t.Fatal("level should not be solved before the pour completes")
	}

	// Taps during the animation are dropped.
	m, _ = send(t, m, keyLeft, keySpace)
	if snap, _ := m.Engine().Snapshot(); snap.Moves != 0 {
		t.Errorf("moves = %d during pour, want 0", snap.Moves)
	}

	msg := cmd()
	if _, ok := msg.(PourDoneMsg); !ok {
		t.Fatalf("tick produced %T, want PourDoneMsg", msg)
	}
	m, _ = send(t, m, msg)
	if m.Engine().Busy() || m.pouring {
		t.Error("engine should be idle after the pour completes")
	}
	if !m.Solved() {
		t.Error("level should be solved after the pour completes")
	}

	// A second delivery of the same signal changes nothing.
	m, _ = send(t, m, msg)
	if snap, _ := m.Engine().Snapshot(); snap.Moves != 1 {
		t.Errorf("moves = %d after duplicate completion, want 1", snap.Moves)
	}
}

func TestPlayModelRestartWaitsForPour(t *testing.T) {
	m := newPlay(t, 1, nil, false)

	m, cmd := send(t, m, keySpace, keyRight, keySpace)
	if cmd == nil {
		t.Fatal("animated pour should schedule a completion tick")
	}

	m, _ = send(t, m, runes("r"))
	if !m.Engine().Busy() {
		t.Fatal("restart during a pour must not reset the engine")
	}
	if !strings.Contains(m.status, "Wait") {
		t.Errorf("status = %q, want wait message", m.status)
	}

	m, _ = send(t, m, cmd(), runes("r"))
	if snap, _ := m.Engine().Snapshot(); snap.Moves != 0 || snap.Solved {
		t.Errorf("after restart moves=%d solved=%v, want a fresh level", snap.Moves, snap.Solved)
	}
}

func TestPlayModelUnlockFlow(t *testing.T) {
	m := newPlay(t, 3, nil, true)

	m, _ = send(t, m, keyRight, keySpace)
	if !m.unlockPending || m.unlockBottle != 1 {
		t.Fatalf("unlockPending=%v bottle=%d, want pending unlock of bottle 1", m.unlockPending, m.unlockBottle)
	}

	m, _ = send(t, m, runes("u"))
	if m.unlockPending {
		t.Error("unlock should clear the prompt")
	}
	snap, _ := m.Engine().Snapshot()
	if snap.Bottles[1].Lock != engine.Unlocked {
		t.Errorf("bottle 1 lock = %v, want unlocked", snap.Bottles[1].Lock)
	}

	// The unlocked bottle now accepts a pour.
	m, _ = send(t, m, keyLeft, keySpace, keyRight, keySpace)
	if snap, _ := m.Engine().Snapshot(); snap.Moves != 1 {
		t.Errorf("moves = %d, want 1", snap.Moves)
	}
}

func TestPlayModelUnlockWithoutPromptIsIgnored(t *testing.T) {
	m := newPlay(t, 3, nil, true)

	m, _ = send(t, m, runes("u"))
	snap, _ := m.Engine().Snapshot()
	if snap.Bottles[1].Lock != engine.AdUnlock {
		t.Errorf("bottle 1 lock = %v, want still locked", snap.Bottles[1].Lock)
	}
}

func TestPlayModelMouseTap(t *testing.T) {
	m := newPlay(t, 1, nil, true)

	click := func(p engine.Position) tea.MouseMsg {
		r := m.layout.BottleRect(p)
		return tea.MouseMsg{
			X:      r.X + r.W/2,
			Y:      r.Y + r.H/2,
			Action: tea.MouseActionPress,
			Button: tea.MouseButtonLeft,
		}
	}

	m, _ = send(t, m, click(engine.Position{Row: 0, Col: 1}))
	if m.cursor != (engine.Position{Row: 0, Col: 1}) {
		t.Errorf("cursor = %v after click, want (0,1)", m.cursor)
	}
	snap, _ := m.Engine().Snapshot()
	if !snap.HasSelect || snap.Selected != 1 {
		t.Errorf("click should select bottle 1, got selected=%d has=%v", snap.Selected, snap.HasSelect)
	}

	// Clicking an empty slot does nothing.
	m, _ = send(t, m, click(engine.Position{Row: 1, Col: 4}))
	if snap, _ := m.Engine().Snapshot(); snap.Selected != 1 {
		t.Errorf("click on empty slot changed selection to %d", snap.Selected)
	}
}

func TestPlayModelHintIgnoredWhenStale(t *testing.T) {
	m := newPlay(t, 2, nil, true)

	m, cmd := send(t, m, runes("h"))
	if cmd == nil {
		t.Fatal("hint should run the solver")
	}
	msg := cmd()

	hm, ok := msg.(hintMsg)
	if !ok {
		t.Fatalf("hint produced %T, want hintMsg", msg)
	}
	if !hm.ok || hm.move.From != 0 || hm.move.To != 1 {
		t.Fatalf("hint = %+v, want 0 -> 1", hm)
	}

	fresh, _ := send(t, m, msg)
	if !fresh.hasHint {
		t.Error("fresh hint should be shown")
	}

	// Same hint delivered after a move is dropped.
	stale, _ := send(t, m, keySpace, keyRight, keySpace, msg)
	if stale.hasHint {
		t.Error("stale hint should be ignored")
	}
}

func TestPlayModelBackAndQuit(t *testing.T) {
	m := newPlay(t, 1, nil, true)

	back, _ := send(t, m, keyEsc)
	if !back.BackToMenu() {
		t.Error("esc should return to the level picker")
	}

	quit, cmd := send(t, m, runes("q"))
	if !quit.IsQuitting() || cmd == nil {
		t.Error("q should quit")
	}
	if quit.View() != "" {
		t.Error("quitting view should be empty")
	}
}

func TestPlayModelView(t *testing.T) {
	m := newPlay(t, 1, nil, true)
	view := m.View()

	for _, want := range []string{"TUI Test", "Level 1", "First", "Moves"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestNewPlayModelUnknownLevel(t *testing.T) {
	if _, err := NewPlayModel(newTestSet(), 99, nil, testConfig(true), nil); err == nil {
		t.Error("expected error for missing level")
	}

	m, err := NewPlayModel(newTestSet(), 0, nil, testConfig(true), nil)
	if err != nil {
		t.Fatalf("level 0 should start at the first level: %v", err)
	}
	if m.level.Level != 1 {
		t.Errorf("level = %d, want 1", m.level.Level)
	}
}
