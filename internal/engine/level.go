package engine

import "sort"

// Level is one puzzle instance: a fixed set of bottles whose contents change
// as pours are applied.
type Level struct {
	Number  int
	Name    string
	bottles map[BottleID]*Bottle
	order   []BottleID // load order, for presentation only
}

// Bottle returns the bottle with the given id, or nil.
func (l *Level) Bottle(id BottleID) *Bottle {
	return l.bottles[id]
}

// IDs returns bottle ids in load order.
func (l *Level) IDs() []BottleID {
	out := make([]BottleID, len(l.order))
	copy(out, l.order)
	return out
}

// Bottles returns the bottles in load order. The pointers are live.
func (l *Level) Bottles() []*Bottle {
	out := make([]*Bottle, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.bottles[id])
	}
	return out
}

// ByPosition returns bottle ids sorted by row, then column.
func (l *Level) ByPosition() []BottleID {
	ids := l.IDs()
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := l.bottles[ids[i]].Position, l.bottles[ids[j]].Position
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
	return ids
}

// Len returns the number of bottles.
func (l *Level) Len() int {
	return len(l.order)
}

// ColorCounts returns the multiset of blocks across all bottles.
// Pours never change it.
func (l *Level) ColorCounts() map[Color]int {
	counts := make(map[Color]int)
	for _, b := range l.bottles {
		for _, c := range b.blocks {
			counts[c]++
		}
	}
	return counts
}

// Clone returns a deep copy of the level.
func (l *Level) Clone() *Level {
	c := &Level{
		Number:  l.Number,
		Name:    l.Name,
		bottles: make(map[BottleID]*Bottle, len(l.bottles)),
		order:   make([]BottleID, len(l.order)),
	}
	copy(c.order, l.order)
	for id, b := range l.bottles {
		c.bottles[id] = b.Clone()
	}
	return c
}
