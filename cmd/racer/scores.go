package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/racer/internal/platform/tui"
	"github.com/vovakirdan/racer/internal/registry"
	"github.com/vovakirdan/racer/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresTUI   bool
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [game]",
	Short: "Show high scores",
	Long: `Display the top keyboard-play scores for one variant, or for every
variant when no game is given.

Examples:
  racer scores
  racer scores racing-hard --limit 20
  racer scores --tui
  racer scores racing-easy --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to show")
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Open the interactive scoreboard")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete the scores of the given game")
}

func runScores(_ *cobra.Command, args []string) error {
	ids := registry.IDs()
	if len(args) == 1 {
		if !registry.Exists(args[0]) {
			return fmt.Errorf("unknown game %q, run 'racer list' to see available games", args[0])
		}
		ids = args
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagScoresTUI {
		w, h := terminalSize()
		_, err := tui.RunScoreboard(store, w, h)
		return err
	}
	if flagScoresClear {
		if len(args) == 0 {
			return fmt.Errorf("--clear needs a game")
		}
		if err := store.ClearScores(args[0]); err != nil {
			return err
		}
		fmt.Printf("Cleared scores for %s\n", args[0])
		return nil
	}

	for i, id := range ids {
		if i > 0 {
			fmt.Println()
		}
		if err := printScores(store, id); err != nil {
			return err
		}
	}
	return nil
}

func printScores(store *storage.Store, gameID string) error {
	game, err := registry.Create(gameID)
	if err != nil {
		return err
	}
	scores, err := store.TopScores(gameID, flagScoresLimit)
	if err != nil {
		return err
	}

	fmt.Printf("High Scores - %s\n", game.Title())
	fmt.Println()
	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Printf("Play 'racer play %s' to set the first high score!\n", gameID)
		return nil
	}

	fmt.Printf("  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
	fmt.Printf("  %-4s  %-10s  %s\n", "----", "-----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-10d  %s\n", i+1, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	if stats, err := store.GetGameStats(gameID); err == nil {
		fmt.Println()
		fmt.Printf("Best: %d  Games: %d  Average: %.1f\n", stats.HighScore, stats.GamesCount, stats.AvgScore)
	}
	return nil
}
