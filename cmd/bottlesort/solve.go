package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/bottle-sort/internal/core"
	"github.com/vovakirdan/bottle-sort/internal/engine"
	"github.com/vovakirdan/bottle-sort/internal/registry"
)

var (
	flagSteps          bool
	flagSolveTimeout   time.Duration
	flagSolveMaxStates int
)

var solveCmd = &cobra.Command{
	Use:   "solve <set> <level>",
	Short: "Print a shortest solution for a level",
	Long: `Searches for a shortest sequence of pours that solves a level. If the
level cannot be solved with its sponsored bottles locked, the search is
repeated with them unlocked.

Examples:
  bottlesort solve classic 5
  bottlesort solve classic 5 --steps`,
	Args: cobra.ExactArgs(2),
	Run:  runSolve,
}

var showCmd = &cobra.Command{
	Use:   "show <set> <level>",
	Short: "Print a level as text",
	Long: `Prints the starting position of a level. Blocks are shown as color
numbers, + marks a free unlock and $ a sponsored bottle.

Examples:
  bottlesort show classic 1`,
	Args: cobra.ExactArgs(2),
	Run:  runShow,
}

func init() {
	solveCmd.Flags().BoolVar(&flagSteps, "steps", false, "Print the board after every pour")
	solveCmd.Flags().DurationVar(&flagSolveTimeout, "timeout", 30*time.Second, "Solver time limit")
	solveCmd.Flags().IntVar(&flagSolveMaxStates, "max-states", 1_000_000, "Solver state limit")
}

// findLevel opens a set and looks up one of its levels, or exits.
func (a *app) findLevel(setID, levelArg string) (registry.Set, engine.LevelData) {
	set := a.openSet(setID)
	number := parseLevel(levelArg)
	data, ok := registry.Find(set, number)
	if !ok {
		fail("level set %q has no level %d", setID, number)
	}
	return set, data
}

func runSolve(_ *cobra.Command, args []string) {
	a := setup(os.Stderr)
	set, data := a.findLevel(args[0], args[1])

	lvl, err := engine.NewLevel(data, set.Board())
	if err != nil {
		fail("%v", err)
	}

	sol, stats, locked, err := solveLevel(lvl, flagSolveTimeout, flagSolveMaxStates)
	if err != nil {
		fail("level %d: %v", data.Level, err)
	}
	a.logger.Debug("search finished", "states", stats.States, "duration", stats.Duration)

	fmt.Printf("%s level %d: %d moves (%d states searched in %s)\n",
		set.Title(), data.Level, sol.Len(), stats.States, stats.Duration.Round(time.Millisecond))
	if locked {
		fmt.Println("Needs a sponsored bottle unlocked first.")
	}
	fmt.Println()

	// Replay on an instant engine so each step can be printed.
	e := engine.New(engine.WithBoard(set.Board()), engine.WithInstantPours())
	if err := e.LoadLevel(data); err != nil {
		fail("%v", err)
	}
	if locked {
		for _, b := range lvl.Bottles() {
			if !b.IsUnlocked() {
				//nolint:errcheck // Bottle ids come from the level itself
				e.UnlockBottle(b.ID)
			}
		}
	}

	for i, mv := range sol.Moves {
		fmt.Printf("%3d. pour %d -> %d  (%d block(s))\n", i+1, mv.From, mv.To, mv.Amount)
		if !flagSteps {
			continue
		}
		for _, id := range []engine.BottleID{mv.From, mv.To} {
			if _, err := e.HandleTap(id); err != nil {
				fail("replaying move %d: %v", i+1, err)
			}
		}
		snap, _ := e.Snapshot()
		fmt.Println(core.RenderBoard(snap, set.Board()))
	}
}

func runShow(_ *cobra.Command, args []string) {
	a := setup(os.Stderr)
	set, data := a.findLevel(args[0], args[1])

	e := engine.New(engine.WithBoard(set.Board()))
	if err := e.LoadLevel(data); err != nil {
		fail("%v", err)
	}
	snap, _ := e.Snapshot()

	title := fmt.Sprintf("%s level %d", set.Title(), data.Level)
	if data.Name != "" {
		title += ": " + data.Name
	}
	fmt.Println(title)
	fmt.Println()
	fmt.Println(core.RenderBoard(snap, set.Board()))
}
