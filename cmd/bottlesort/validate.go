package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/bottle-sort/internal/engine"
	"github.com/vovakirdan/bottle-sort/internal/levels"
	"github.com/vovakirdan/bottle-sort/internal/solver"
)

var (
	flagSolve     bool
	flagTimeout   time.Duration
	flagMaxStates int
)

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check level-set files",
	Long: `Loads a level-set file, or every .yaml/.yml/.json file under a directory,
and reports documents that are rejected.

With --solve every level is also run through the solver and the solution is
replayed on a real engine. Levels that can only be solved by unlocking a
sponsored bottle are reported but are not failures.

Examples:
  bottlesort validate ./my-levels
  bottlesort validate ./my-levels/tutorial.yaml --solve
  bottlesort validate ./my-levels --solve --timeout 30s`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&flagSolve, "solve", false, "Check that every level can be solved")
	validateCmd.Flags().DurationVar(&flagTimeout, "timeout", 10*time.Second, "Solver time limit per level")
	validateCmd.Flags().IntVar(&flagMaxStates, "max-states", solver.DefaultMaxStates, "Solver state limit per level")
}

func runValidate(_ *cobra.Command, args []string) {
	a := setup(os.Stderr)
	loader := levels.NewLoader(a.cfg.BoardLayout(), a.logger)

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		fail("%v", err)
	}

	var (
		sets   []*levels.LevelSet
		failed []levels.FileError
	)
	if info.IsDir() {
		sets, failed, err = loader.Scan(path)
		if err != nil {
			fail("%v", err)
		}
	} else {
		set, err := loader.LoadFile(path)
		if err != nil {
			failed = append(failed, levels.FileError{Path: path, Err: err})
		} else {
			sets = append(sets, set)
		}
	}

	for _, f := range failed {
		fmt.Printf("FAIL  %s\n      %v\n", f.Path, f.Err)
	}

	problems := len(failed)
	for _, set := range sets {
		fmt.Printf("OK    %s  (%s, %d levels)\n", set.Path(), set.ID(), len(set.Levels()))
		if flagSolve {
			problems += a.solveSet(set)
		}
	}

	fmt.Println()
	fmt.Printf("%d set(s) loaded, %d problem(s)\n", len(sets), problems)
	if problems > 0 {
		os.Exit(1)
	}
}

// solveSet solves and replays every level of a set and returns the number of
// levels that failed.
func (a *app) solveSet(set *levels.LevelSet) int {
	problems := 0
	for _, data := range set.Levels() {
		lvl, err := engine.NewLevel(data, set.Board())
		if err != nil {
			fmt.Printf("      level %-3d FAIL  %v\n", data.Level, err)
			problems++
			continue
		}

		sol, stats, locked, err := solveLevel(lvl, flagTimeout, flagMaxStates)
		if err == nil {
			e := engine.New(a.runtimeConfig(0, 0, "").EngineOptions(set.Board())...)
			if err = e.LoadLevel(data); err == nil {
				_, err = solver.Replay(e, sol, locked)
			}
		}

		switch {
		case err != nil:
			fmt.Printf("      level %-3d FAIL  %v\n", data.Level, err)
			problems++
		case locked:
			fmt.Printf("      level %-3d ok    %d moves, needs an unlock (%d states)\n", data.Level, sol.Len(), stats.States)
		default:
			fmt.Printf("      level %-3d ok    %d moves (%d states, %s)\n",
				data.Level, sol.Len(), stats.States, stats.Duration.Round(time.Millisecond))
		}
		a.logger.Debug("solved level", "set", set.ID(), "level", data.Level, "moves", sol.Len(), "states", stats.States)
	}
	return problems
}

// solveLevel tries the level as given, then with locked bottles available.
// locked reports whether the solution needs an unlock.
func solveLevel(lvl *engine.Level, timeout time.Duration, maxStates int) (sol solver.Solution, stats solver.Stats, locked bool, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := solver.Options{MaxStates: maxStates}
	sol, stats, err = solver.Solve(ctx, lvl, opts)
	if !errors.Is(err, solver.ErrUnsolvable) {
		return sol, stats, false, err
	}

	opts.AssumeUnlocked = true
	sol, stats, err = solver.Solve(ctx, lvl, opts)
	return sol, stats, true, err
}
