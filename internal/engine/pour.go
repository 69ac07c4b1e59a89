package engine

import "fmt"

// TopRun returns the number of equal-colored blocks at the top of b.
// Returns 0 for an empty bottle.
func TopRun(b *Bottle) int {
	top, ok := b.Top()
	if !ok {
		return 0
	}
	n := 0
	for i := len(b.blocks) - 1; i >= 0 && b.blocks[i] == top; i-- {
		n++
	}
	return n
}

// CanPour reports whether blocks may move from one bottle to another.
// An empty destination accepts any color.
func CanPour(from, to *Bottle) bool {
	if !to.IsUnlocked() {
		return false
	}
	fromTop, ok := from.Top()
	if !ok {
		return false
	}
	if to.IsFull() {
		return false
	}
	toTop, ok := to.Top()
	if !ok {
		toTop = fromTop
	}
	return fromTop == toTop
}

// PourAmount returns how many blocks a pour moves. Only meaningful when
// CanPour(from, to) is true. The remainder of a run that does not fit stays
// in from.
func PourAmount(from, to *Bottle) int {
	return min(TopRun(from), to.FreeSpace())
}

// ApplyPour moves the top amount blocks of from onto to, keeping their order.
// It panics if amount does not satisfy the pour preconditions; callers obtain
// amount from PourAmount under the same snapshot.
func ApplyPour(from, to *Bottle, amount int) {
	if amount < 1 || amount > from.Len() || amount > to.FreeSpace() {
		panic(fmt.Sprintf("engine: invalid pour of %d from %v to %v", amount, from, to))
	}
	cut := len(from.blocks) - amount
	to.blocks = append(to.blocks, from.blocks[cut:]...)
	from.blocks = from.blocks[:cut]
}
