package engine

// State is the selection state.
type State int

const (
	StateIdle     State = iota // Nothing picked up
	StateSelected              // One bottle picked up
	StateBusy                  // A pour is in flight; taps are ignored
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelected:
		return "selected"
	case StateBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// pendingPour is a validated pour waiting for its completion signal.
// amount is computed once, when the pour starts.
type pendingPour struct {
	from, to BottleID
	amount   int
}

// Selection turns bottle taps into validated pours on one level.
// It is not safe for concurrent use; Engine serializes access.
type Selection struct {
	level    *Level
	state    State
	selected BottleID
	pending  pendingPour
	moves    int
	solved   bool // LevelSolved already emitted
}

// NewSelection creates an idle selection over l. A level that is already
// solved counts as solved from the start.
func NewSelection(l *Level) *Selection {
	return &Selection{level: l, solved: IsSolved(l)}
}

// State returns the current state.
func (s *Selection) State() State {
	return s.state
}

// Selected returns the picked-up bottle. ok is false when nothing is
// picked up or a pour is in flight.
func (s *Selection) Selected() (id BottleID, ok bool) {
	if s.state != StateSelected {
		return 0, false
	}
	return s.selected, true
}

// LiftedRun returns the length of the highlighted run of the selected bottle.
func (s *Selection) LiftedRun() int {
	id, ok := s.Selected()
	if !ok {
		return 0
	}
	return TopRun(s.level.Bottle(id))
}

// Moves returns the number of completed pours.
func (s *Selection) Moves() int {
	return s.moves
}

// Solved reports whether the level has reached the solved state.
func (s *Selection) Solved() bool {
	return s.solved
}

// Busy returns true while a pour awaits completion.
func (s *Selection) Busy() bool {
	return s.state == StateBusy
}

// OnTap advances the machine for a tap on bottle id, which must exist in the
// level. ignored is true when the tap was dropped because a pour is in flight.
func (s *Selection) OnTap(id BottleID) (events []Event, ignored bool) {
	if s.state == StateBusy {
		return nil, true
	}

	tapped := s.level.Bottle(id)

	switch tapped.Lock {
	case Unlocked:
	case FreeUnlock:
		tapped.Lock = Unlocked
		return []Event{BottleUnlocked{Bottle: id}}, false
	default:
		return []Event{UnlockRequired{Bottle: id, Lock: tapped.Lock}}, false
	}

	if s.state == StateIdle {
		s.state = StateSelected
		s.selected = id
		return []Event{BottleSelected{Bottle: id, LiftedRun: TopRun(tapped)}}, false
	}

	if id == s.selected {
		s.state = StateIdle
		return []Event{BottleDeselected{Bottle: id}}, false
	}

	from := s.level.Bottle(s.selected)
	if !CanPour(from, tapped) {
		s.state = StateIdle
		return []Event{PourRejected{From: s.selected, To: id}}, false
	}

	s.pending = pendingPour{from: s.selected, to: id, amount: PourAmount(from, tapped)}
	s.state = StateBusy
	return []Event{PourStarted{From: s.pending.from, To: s.pending.to, Amount: s.pending.amount}}, false
}

// Complete applies the pending pour, checks for completion and returns to
// idle. It returns nil when no pour is pending.
func (s *Selection) Complete() []Event {
	if s.state != StateBusy {
		return nil
	}

	p := s.pending
	from, to := s.level.Bottle(p.from), s.level.Bottle(p.to)
	ApplyPour(from, to, p.amount)
	s.moves++
	s.pending = pendingPour{}
	s.state = StateIdle

	events := []Event{BottlesChanged{Bottles: []BottleContents{
		{Bottle: p.from, Blocks: from.Blocks()},
		{Bottle: p.to, Blocks: to.Blocks()},
	}}}

	if !s.solved && IsSolved(s.level) {
		s.solved = true
		events = append(events, LevelSolved{Level: s.level.Number, Moves: s.moves})
	}
	return events
}

// Unlock unlocks a bottle regardless of how it is locked.
// It reports false if the bottle was already unlocked.
func (s *Selection) Unlock(id BottleID) bool {
	b := s.level.Bottle(id)
	if b.IsUnlocked() {
		return false
	}
	b.Lock = Unlocked
	return true
}
