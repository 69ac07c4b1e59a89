package engine

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoLevel is returned when an operation needs a loaded level.
	ErrNoLevel = errors.New("engine: no level loaded")

	// ErrUnknownBottle is returned for a bottle id not in the current level.
	ErrUnknownBottle = errors.New("engine: unknown bottle")

	// ErrPourInFlight is returned by LoadLevel while a pour awaits completion.
	ErrPourInFlight = errors.New("engine: pour in flight")
)

// TapOutcome is the result of one tap.
type TapOutcome struct {
	Events  []Event
	Ignored bool // Dropped because a pour is in flight
}

// PourStarted returns the PourStarted event of the outcome, if any.
func (o TapOutcome) PourStarted() (PourStarted, bool) {
	for _, ev := range o.Events {
		if ps, ok := ev.(PourStarted); ok {
			return ps, true
		}
	}
	return PourStarted{}, false
}

// UnlockOutcome is the result of an explicit unlock request.
type UnlockOutcome int

const (
	UnlockDone            UnlockOutcome = iota // Bottle is now unlocked
	UnlockAlreadyUnlocked                      // Nothing to do
	UnlockBusy                                 // Rejected: a pour is in flight
)

// String returns a human-readable name for the outcome.
func (u UnlockOutcome) String() string {
	switch u {
	case UnlockDone:
		return "unlocked"
	case UnlockAlreadyUnlocked:
		return "already unlocked"
	case UnlockBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithBoard sets the board used to validate bottle positions.
func WithBoard(b Board) Option {
	return func(e *Engine) {
		e.board = b
	}
}

// WithInstantPours completes every pour before HandleTap returns.
func WithInstantPours() Option {
	return func(e *Engine) {
		e.instant = true
	}
}

// Engine owns one level and its selection state. It is the single entry point
// used by the presentation layer and is safe for concurrent use: the level and
// selection are guarded by one mutex.
type Engine struct {
	mu      sync.Mutex
	board   Board
	instant bool
	level   *Level
	sel     *Selection
	gen     uint64 // bumped on every level load and pour start
}

// New creates an engine with no level loaded.
func New(opts ...Option) *Engine {
	e := &Engine{board: DefaultBoard()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Board returns the board used for position validation.
func (e *Engine) Board() Board {
	return e.board
}

// LoadLevel replaces the current level and resets the selection. On error the
// previous level stays active. A level that is already solved never emits
// LevelSolved from a pour; callers read it from Solved after loading.
func (e *Engine) LoadLevel(data LevelData) error {
	lvl, err := NewLevel(data, e.board)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sel != nil && e.sel.Busy() {
		return ErrPourInFlight
	}
	e.level = lvl
	e.sel = NewSelection(lvl)
	e.gen++
	return nil
}

// HandleTap drives the selection state machine one step.
func (e *Engine) HandleTap(id BottleID) (TapOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.level == nil {
		return TapOutcome{}, ErrNoLevel
	}
	if e.level.Bottle(id) == nil {
		return TapOutcome{}, fmt.Errorf("%w: %d", ErrUnknownBottle, id)
	}

	events, ignored := e.sel.OnTap(id)
	if ignored {
		return TapOutcome{Ignored: true}, nil
	}

	for i, ev := range events {
		ps, ok := ev.(PourStarted)
		if !ok {
			continue
		}
		e.gen++
		ps.Complete = e.completionSignal(e.gen)
		events[i] = ps
		if e.instant {
			events = append(events, e.sel.Complete()...)
		}
	}

	return TapOutcome{Events: events}, nil
}

// completionSignal returns a one-shot signal bound to the pour started at gen.
func (e *Engine) completionSignal(gen uint64) CompletionSignal {
	var once sync.Once
	return func() []Event {
		var events []Event
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if e.gen != gen {
				return
			}
			events = e.sel.Complete()
		})
		return events
	}
}

// CompletePour completes the pending pour, if any. It is equivalent to
// calling the signal carried by the latest PourStarted event.
func (e *Engine) CompletePour() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sel == nil {
		return nil
	}
	return e.sel.Complete()
}

// UnlockBottle unlocks a locked bottle. This is the entry point for an
// external unlock authority after UnlockRequired.
func (e *Engine) UnlockBottle(id BottleID) (UnlockOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.level == nil {
		return 0, ErrNoLevel
	}
	if e.level.Bottle(id) == nil {
		return 0, fmt.Errorf("%w: %d", ErrUnknownBottle, id)
	}
	if e.sel.Busy() {
		return UnlockBusy, nil
	}
	if !e.sel.Unlock(id) {
		return UnlockAlreadyUnlocked, nil
	}
	return UnlockDone, nil
}

// IsLevelSolved reports whether the current level is solved.
func (e *Engine) IsLevelSolved() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.level == nil {
		return false
	}
	return IsSolved(e.level)
}

// Solved returns the LevelSolved event of the current level once it has been
// solved, either by a pour or because it was loaded in a solved state.
func (e *Engine) Solved() (LevelSolved, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sel == nil || !e.sel.Solved() {
		return LevelSolved{}, false
	}
	return LevelSolved{Level: e.level.Number, Moves: e.sel.Moves()}, true
}

// Loaded returns true once a level has been loaded.
func (e *Engine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.level != nil
}

// Busy returns true while a pour awaits its completion signal.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel != nil && e.sel.Busy()
}

// Level returns a deep copy of the current level, or nil.
func (e *Engine) Level() *Level {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.level == nil {
		return nil
	}
	return e.level.Clone()
}

// BottleView is a read-only copy of one bottle for rendering.
type BottleView struct {
	ID       BottleID
	Position Position
	Lock     LockStatus
	Blocks   []Color
}

// Snapshot is a consistent read-only view of the engine.
type Snapshot struct {
	Level     int
	Name      string
	Bottles   []BottleView // Sorted by position
	State     State
	Selected  BottleID
	HasSelect bool
	LiftedRun int
	Moves     int
	Solved    bool
}

// Snapshot returns the current state for rendering. ok is false if no level
// is loaded.
func (e *Engine) Snapshot() (snap Snapshot, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.level == nil {
		return Snapshot{}, false
	}

	snap = Snapshot{
		Level:     e.level.Number,
		Name:      e.level.Name,
		State:     e.sel.State(),
		LiftedRun: e.sel.LiftedRun(),
		Moves:     e.sel.Moves(),
		Solved:    IsSolved(e.level),
	}
	snap.Selected, snap.HasSelect = e.sel.Selected()

	for _, id := range e.level.ByPosition() {
		b := e.level.Bottle(id)
		snap.Bottles = append(snap.Bottles, BottleView{
			ID:       b.ID,
			Position: b.Position,
			Lock:     b.Lock,
			Blocks:   b.Blocks(),
		})
	}
	return snap, true
}
