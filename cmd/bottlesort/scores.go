package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/bottle-sort/internal/platform/tui"
)

var (
	flagClear       bool
	flagInteractive bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [set]",
	Short: "Show best results for a level set",
	Long: `Display the best result (fewest moves, then fastest) for every level
of a set. Without a set the configured default set is shown.

Examples:
  bottlesort scores
  bottlesort scores classic
  bottlesort scores classic --clear
  bottlesort scores --interactive`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all results for the set")
	scoresCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse results in a table")
}

func runScores(_ *cobra.Command, args []string) {
	a := setup(os.Stderr)

	setID := a.cfg.Levels.Set
	if len(args) > 0 {
		setID = args[0]
	}
	set := a.openSet(setID)

	store := a.openStore(true)
	defer store.Close()

	if flagClear {
		if err := store.ClearResults(set.ID()); err != nil {
			store.Close()
			fail("%v", err)
		}
		a.logger.Info("cleared results", "set", set.ID())
		return
	}

	if flagInteractive {
		width, height := 80, 24
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
			height = h
		}
		if _, err := tui.RunResults(store, width, height, set.ID()); err != nil {
			store.Close()
			fail("%v", err)
		}
		return
	}

	// Display results
	fmt.Printf("Best Results - %s\n", set.Title())
	fmt.Println()

	solved, err := store.SolvedLevels(set.ID())
	if err != nil {
		store.Close()
		fail("retrieving results: %v", err)
	}
	if len(solved) == 0 {
		fmt.Println("No levels solved yet.")
		fmt.Println()
		fmt.Printf("Play 'bottlesort play %s' to set the first result!\n", set.ID())
		return
	}

	// Print header
	fmt.Printf("  %-5s  %-5s  %-8s  %-12s  %s\n", "Level", "Moves", "Time", "Player", "Date")
	fmt.Printf("  %-5s  %-5s  %-8s  %-12s  %s\n", "-----", "-----", "----", "------", "----")

	for _, lvl := range set.Levels() {
		best, err := store.BestResults(set.ID(), lvl.Level, 1)
		if err != nil {
			store.Close()
			fail("retrieving results: %v", err)
		}
		if len(best) == 0 {
			fmt.Printf("  %-5d  %-5s\n", lvl.Level, "-")
			continue
		}
		r := best[0]
		fmt.Printf("  %-5d  %-5d  %-8s  %-12s  %s\n",
			lvl.Level, r.Moves, r.Duration.Round(time.Second), r.Player, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	// Show totals
	fmt.Println()
	if stats, err := store.GetSetStats(set.ID()); err == nil {
		fmt.Printf("Solved %d/%d levels in %d plays, %.1f moves on average\n",
			stats.Solved, len(set.Levels()), stats.Plays, stats.AvgMoves)
	}
}
