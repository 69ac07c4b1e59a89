// Package solver finds shortest pour sequences for a level using a
// breadth-first search over board states.
package solver

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vovakirdan/bottle-sort/internal/engine"
)

// DefaultMaxStates bounds the search when Options.MaxStates is zero.
const DefaultMaxStates = 250_000

var (
	// ErrUnsolvable means every reachable state was explored without a solution.
	ErrUnsolvable = errors.New("solver: level has no solution")
	// ErrLimit means the state limit was hit before the search finished.
	ErrLimit = errors.New("solver: state limit reached")
)

// Options tune a search.
type Options struct {
	// AssumeUnlocked treats every locked bottle as already unlocked.
	AssumeUnlocked bool
	// MaxStates caps the number of distinct states visited.
	MaxStates int
}

// Move is a single pour.
type Move struct {
	From   engine.BottleID
	To     engine.BottleID
	Amount int
}

// Solution is an ordered list of pours that solves a level.
type Solution struct {
	Moves []Move
}

// Len returns the number of pours.
func (s Solution) Len() int { return len(s.Moves) }

// Stats captures the cost of a search.
type Stats struct {
	States   int
	Duration time.Duration
}

type node struct {
	level  *engine.Level
	parent int
	move   Move
}

// Solve returns a shortest solution for lvl. lvl itself is not modified.
// An already solved level yields an empty solution.
func Solve(ctx context.Context, lvl *engine.Level, opts Options) (Solution, Stats, error) {
	start := time.Now()
	limit := opts.MaxStates
	if limit <= 0 {
		limit = DefaultMaxStates
	}

	root := lvl.Clone()
	if opts.AssumeUnlocked {
		for _, b := range root.Bottles() {
			b.Lock = engine.Unlocked
		}
	}

	nodes := []node{{level: root, parent: -1}}
	seen := map[string]struct{}{key(root): {}}
	stats := func() Stats {
		return Stats{States: len(seen), Duration: time.Since(start)}
	}

	if engine.IsSolved(root) {
		return Solution{}, stats(), nil
	}

	ids := root.IDs()
	for head := 0; head < len(nodes); head++ {
		if err := ctx.Err(); err != nil {
			return Solution{}, stats(), err
		}

		cur := nodes[head].level
		for _, fromID := range ids {
			from := cur.Bottle(fromID)
			if !from.IsUnlocked() || from.IsEmpty() {
				continue
			}
			for _, toID := range ids {
				if toID == fromID {
					continue
				}
				to := cur.Bottle(toID)
				if !engine.CanPour(from, to) {
					continue
				}
				// Pouring a whole single-color bottle into an empty one
				// just swaps them.
				if to.IsEmpty() && from.IsMonochrome() {
					continue
				}

				next := cur.Clone()
				amount := engine.PourAmount(from, to)
				engine.ApplyPour(next.Bottle(fromID), next.Bottle(toID), amount)

				k := key(next)
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				nodes = append(nodes, node{
					level:  next,
					parent: head,
					move:   Move{From: fromID, To: toID, Amount: amount},
				})

				if engine.IsSolved(next) {
					return path(nodes, len(nodes)-1), stats(), nil
				}
				if len(seen) >= limit {
					return Solution{}, stats(), ErrLimit
				}
			}
		}
		// Release explored states.
		nodes[head].level = nil
	}

	return Solution{}, stats(), ErrUnsolvable
}

// Hint returns the first move of a shortest solution. ok is false when the
// level is already solved.
func Hint(ctx context.Context, lvl *engine.Level, opts Options) (mv Move, ok bool, err error) {
	sol, _, err := Solve(ctx, lvl, opts)
	if err != nil {
		return Move{}, false, err
	}
	if sol.Len() == 0 {
		return Move{}, false, nil
	}
	return sol.Moves[0], true, nil
}

func path(nodes []node, i int) Solution {
	var moves []Move
	for ; nodes[i].parent >= 0; i = nodes[i].parent {
		moves = append(moves, nodes[i].move)
	}
	for l, r := 0, len(moves)-1; l < r; l, r = l+1, r-1 {
		moves[l], moves[r] = moves[r], moves[l]
	}
	return Solution{Moves: moves}
}

// key identifies a state up to bottle permutation. Bottle identity does not
// matter for solvability, only contents and lock state.
func key(l *engine.Level) string {
	parts := make([]string, 0, l.Len())
	for _, b := range l.Bottles() {
		var sb strings.Builder
		if b.IsUnlocked() {
			sb.WriteByte('u')
		} else {
			sb.WriteByte('l')
		}
		for _, c := range b.Blocks() {
			sb.WriteString(strconv.Itoa(int(c)))
		}
		parts = append(parts, sb.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}
