package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/racer/internal/platform/tui"
	"github.com/vovakirdan/racer/internal/storage"
)

var (
	flagHistoryPlain bool
	flagHistoryLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Browse training runs",
	Long: `Show stored training runs and the per-generation statistics of each.

A run ID may be shortened to any unique prefix. Output is plain text
when stdout is not a terminal or --plain is set.

Examples:
  racer history
  racer history 3f2a
  racer history --plain | less`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&flagHistoryPlain, "plain", false, "Print tables instead of the interactive browser")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Number of runs to list in plain mode")
}

func runHistory(_ *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	selected := ""
	if len(args) == 1 {
		selected = args[0]
	}

	if !flagHistoryPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		w, h := terminalSize()
		return tui.RunHistory(store, selected, w, h)
	}
	if selected == "" {
		return printRuns(store)
	}
	return printGenerations(store, selected)
}

func printRuns(store *storage.Store) error {
	runs, err := store.Runs(flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No training runs yet. Run 'racer train' first.")
		return nil
	}

	fmt.Printf("  %-8s  %-9s  %5s  %5s  %10s  %s\n", "Run", "Status", "Pop", "Gens", "Best", "Started")
	for _, r := range runs {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Printf("  %-8s  %-9s  %5d  %5d  %10.2f  %s\n",
			id, r.Status, r.Population, r.Generations, r.BestFitness, r.StartedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func printGenerations(store *storage.Store, prefix string) error {
	run, err := store.FindRun(prefix)
	if err != nil {
		return err
	}
	gens, err := store.Generations(run.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s (%s), population %d, seed %d\n\n", run.ID, run.Status, run.Population, run.Seed)
	fmt.Printf("  %4s  %9s  %9s  %8s  %9s  %6s  %7s  %s\n", "Gen", "Best", "Mean", "StdDev", "Median", "Score", "Ticks", "Reason")
	for _, g := range gens {
		fmt.Printf("  %4d  %9.2f  %9.2f  %8.2f  %9.2f  %6d  %7d  %s\n",
			g.Generation, g.Best, g.Mean, g.StdDev, g.Median, g.Score, g.Ticks, g.Reason)
	}
	return nil
}
