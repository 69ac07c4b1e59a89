// bottlesort is a water-sort bottle puzzle for the terminal.
//
// Usage:
//
//	bottlesort play [set] [level]     - Play a level set
//	bottlesort levels                 - List level sets
//	bottlesort levels export <set>    - Write a level set as YAML
//	bottlesort validate <path>        - Check level files
//	bottlesort solve <set> <level>    - Print a shortest solution
//	bottlesort show <set> <level>     - Print a level as text
//	bottlesort scores [set]           - Show best results
//	bottlesort serve                  - Start SSH server for remote play
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.bottlesort/config.yaml)
//	--db <path>         - Results database (default: ~/.bottlesort/results.db)
//	--levels <path>     - Extra level-set file or directory
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Register the built-in level sets
	_ "github.com/vovakirdan/bottle-sort/internal/levels"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLevels   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bottlesort",
	Short: "Bottle Sort - a water-sort puzzle in your terminal",
	Long: `Bottle Sort is a color-sorting puzzle. Pour the top run of colored
blocks from one bottle into another until every bottle holds a single color.

Available commands:
  play      - Play a level set
  levels    - List level sets or export one
  validate  - Check level files (optionally solve every level)
  solve     - Print a shortest solution for a level
  show      - Print a level as text
  scores    - View best results
  serve     - Start SSH server for remote play

Examples:
  bottlesort play
  bottlesort play classic 3
  bottlesort levels --levels ./my-levels
  bottlesort validate ./my-levels --solve
  bottlesort serve --ssh :2222`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to results database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLevels, "levels", "", "Level-set file or directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
}
