package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/bottle-sort/internal/levels/formats"
	"github.com/vovakirdan/bottle-sort/internal/registry"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List all level sets",
	Long: `Shows every registered level set: the built-in sets plus any loaded
with --levels or the levels.path config setting.`,
	Args: cobra.NoArgs,
	Run:  runLevels,
}

var exportCmd = &cobra.Command{
	Use:   "export <set> [file]",
	Short: "Write a level set as YAML",
	Long: `Writes a level set as a YAML document that --levels can load again.
Without a file the document goes to stdout.

Examples:
  bottlesort levels export classic
  bottlesort levels export classic ./classic.yaml`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runExport,
}

func init() {
	levelsCmd.AddCommand(exportCmd)
}

func runLevels(_ *cobra.Command, _ []string) {
	a := setup(os.Stderr)
	sets := registry.List()

	if len(sets) == 0 {
		fmt.Println("No level sets available.")
		return
	}

	// Solved counts are optional
	var solved map[string]int
	if store := a.openStore(false); store != nil {
		stats, err := store.GetAllSetStats()
		store.Close()
		if err == nil {
			solved = make(map[string]int, len(stats))
			for id, st := range stats {
				solved[id] = st.Solved
			}
		}
	}

	fmt.Println("Available level sets:")
	fmt.Println()

	// Calculate column widths
	maxIDLen, maxTitleLen := 2, 5 // "ID", "Title" headers
	for _, s := range sets {
		maxIDLen = max(maxIDLen, len(s.ID))
		maxTitleLen = max(maxTitleLen, len(s.Title))
	}

	// Print header
	fmt.Printf("  %-*s  %-*s  %-6s  %-5s  %s\n", maxIDLen, "ID", maxTitleLen, "Title", "Levels", "Board", "Solved")
	fmt.Printf("  %-*s  %-*s  %-6s  %-5s  %s\n", maxIDLen, "--", maxTitleLen, "-----", "------", "-----", "------")

	for _, info := range sets {
		set, err := registry.Open(info.ID)
		if err != nil {
			a.logger.Warn("cannot open level set", "id", info.ID, "error", err)
			continue
		}
		board := set.Board()
		fmt.Printf("  %-*s  %-*s  %-6d  %-5s  %d\n",
			maxIDLen, info.ID,
			maxTitleLen, info.Title,
			len(set.Levels()),
			fmt.Sprintf("%dx%d", board.Rows, board.Cols),
			solved[info.ID],
		)
	}

	fmt.Println()
	fmt.Println("Run 'bottlesort play <id>' to play a set.")
}

func runExport(_ *cobra.Command, args []string) {
	a := setup(os.Stderr)
	set := a.openSet(args[0])

	doc := formats.FromLevelData(set.ID(), set.Title(), set.Board(), set.Levels())
	out, err := doc.Encode()
	if err != nil {
		fail("encoding %s: %v", set.ID(), err)
	}

	if len(args) < 2 {
		//nolint:errcheck // Nothing useful to do if stdout is gone
		os.Stdout.Write(out)
		return
	}
	if err := os.WriteFile(args[1], out, 0o644); err != nil {
		fail("writing %s: %v", args[1], err)
	}
	a.logger.Info("exported level set", "id", set.ID(), "levels", len(set.Levels()), "path", args[1])
}
