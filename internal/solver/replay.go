package solver

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/bottle-sort/internal/engine"
)

// ErrReplay means a solution did not play out on an engine.
var ErrReplay = errors.New("solver: replay failed")

// Replay plays sol on an engine with a loaded level, tapping source then
// destination for every move and completing each pour. Locked bottles are
// unlocked first when unlock is set. It returns the number of pours applied.
func Replay(e *engine.Engine, sol Solution, unlock bool) (int, error) {
	lvl := e.Level()
	if lvl == nil {
		return 0, fmt.Errorf("%w: %w", ErrReplay, engine.ErrNoLevel)
	}

	if unlock {
		for _, b := range lvl.Bottles() {
			if b.IsUnlocked() {
				continue
			}
			if _, err := e.UnlockBottle(b.ID); err != nil {
				return 0, fmt.Errorf("%w: unlocking bottle %d: %w", ErrReplay, b.ID, err)
			}
		}
	}

	applied := 0
	for i, mv := range sol.Moves {
		if _, err := tap(e, mv.From); err != nil {
			return applied, fmt.Errorf("%w: move %d: %w", ErrReplay, i+1, err)
		}
		out, err := tap(e, mv.To)
		if err != nil {
			return applied, fmt.Errorf("%w: move %d: %w", ErrReplay, i+1, err)
		}

		ps, ok := out.PourStarted()
		if !ok {
			return applied, fmt.Errorf("%w: move %d: pour %d -> %d not accepted", ErrReplay, i+1, mv.From, mv.To)
		}
		if ps.Amount != mv.Amount {
			return applied, fmt.Errorf("%w: move %d: poured %d, expected %d", ErrReplay, i+1, ps.Amount, mv.Amount)
		}
		// No-op for instant engines
		ps.Complete()
		applied++
	}

	if !e.IsLevelSolved() {
		return applied, fmt.Errorf("%w: level not solved after %d moves", ErrReplay, applied)
	}
	return applied, nil
}

func tap(e *engine.Engine, id engine.BottleID) (engine.TapOutcome, error) {
	out, err := e.HandleTap(id)
	if err != nil {
		return out, err
	}
	if out.Ignored {
		return out, fmt.Errorf("tap on bottle %d ignored while busy", id)
	}
	for _, ev := range out.Events {
		if req, ok := ev.(engine.UnlockRequired); ok {
			return out, fmt.Errorf("bottle %d is locked (%s)", req.Bottle, req.Lock)
		}
	}
	return out, nil
}
