// Package engine implements the bottle-sort puzzle rules: the bottle and level
// data model, pour legality and execution, the selection state machine and the
// completion check. It has no external dependencies and performs no I/O; the
// presentation layer drives it through Engine and renders the events it returns.
package engine

import "fmt"

const (
	// Capacity is the number of blocks a bottle can hold.
	Capacity = 4

	// MaxPatterns is the highest valid block color.
	MaxPatterns = 7
)

// Color identifies a block pattern. Valid colors are in [1, MaxPatterns].
type Color int

// Valid reports whether c is inside the playable color range.
func (c Color) Valid() bool {
	return c >= 1 && c <= MaxPatterns
}

// LockStatus governs whether a bottle accepts taps and pours.
type LockStatus int

const (
	Unlocked   LockStatus = iota // Normal bottle
	FreeUnlock                   // Unlocks on first tap
	AdUnlock                     // Needs an external unlock authority
)

// String returns a human-readable name for the lock status.
func (l LockStatus) String() string {
	switch l {
	case Unlocked:
		return "unlocked"
	case FreeUnlock:
		return "free-unlock"
	case AdUnlock:
		return "ad-unlock"
	default:
		return "unknown"
	}
}

// Valid reports whether l is one of the known lock statuses.
func (l LockStatus) Valid() bool {
	return l >= Unlocked && l <= AdUnlock
}

// BottleID is the stable identity of a bottle inside a level.
type BottleID int

// Position is a board slot. Row 0 is the top row.
type Position struct {
	Row int
	Col int
}

// String returns a string representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Bottle is an ordered stack of blocks. Index 0 is the bottom.
type Bottle struct {
	ID       BottleID
	Position Position
	Lock     LockStatus
	blocks   []Color
}

// NewBottle creates a bottle holding a copy of blocks.
// It does not validate, so an overfull bottle is kept as given; Level
// construction rejects it.
func NewBottle(id BottleID, pos Position, lock LockStatus, blocks ...Color) *Bottle {
	b := &Bottle{
		ID:       id,
		Position: pos,
		Lock:     lock,
		blocks:   make([]Color, len(blocks), max(len(blocks), Capacity)),
	}
	copy(b.blocks, blocks)
	return b
}

// Blocks returns a copy of the bottle contents, bottom to top.
func (b *Bottle) Blocks() []Color {
	out := make([]Color, len(b.blocks))
	copy(out, b.blocks)
	return out
}

// Len returns the number of blocks in the bottle.
func (b *Bottle) Len() int {
	return len(b.blocks)
}

// IsEmpty returns true if the bottle holds no blocks.
func (b *Bottle) IsEmpty() bool {
	return len(b.blocks) == 0
}

// IsFull returns true if the bottle is at capacity.
func (b *Bottle) IsFull() bool {
	return len(b.blocks) >= Capacity
}

// FreeSpace returns how many more blocks fit.
func (b *Bottle) FreeSpace() int {
	return max(Capacity-len(b.blocks), 0)
}

// Top returns the topmost color. ok is false for an empty bottle.
func (b *Bottle) Top() (c Color, ok bool) {
	if len(b.blocks) == 0 {
		return 0, false
	}
	return b.blocks[len(b.blocks)-1], true
}

// IsUnlocked returns true if the bottle participates in pours.
func (b *Bottle) IsUnlocked() bool {
	return b.Lock == Unlocked
}

// IsMonochrome returns true if the bottle is empty or holds a single color.
func (b *Bottle) IsMonochrome() bool {
	for _, c := range b.blocks {
		if c != b.blocks[0] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the bottle.
func (b *Bottle) Clone() *Bottle {
	return NewBottle(b.ID, b.Position, b.Lock, b.blocks...)
}

// String returns a compact representation like "#3[1 1 2]".
func (b *Bottle) String() string {
	return fmt.Sprintf("#%d%v", b.ID, b.blocks)
}
