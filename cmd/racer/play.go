package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/racer/internal/config"
	"github.com/vovakirdan/racer/internal/evolve"
	"github.com/vovakirdan/racer/internal/games/racing"
	"github.com/vovakirdan/racer/internal/platform/tui"
	"github.com/vovakirdan/racer/internal/registry"
	"github.com/vovakirdan/racer/internal/storage"
	"github.com/vovakirdan/racer/internal/training"
)

var (
	flagDifficulty string
	flagVs         string
)

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Race the walls with the keyboard",
	Long: `Drive one car through the same walls the evolved controllers face.

The game argument picks a variant (see 'racer list'); --difficulty
picks one by preset instead. With --vs, a trained champion (run ID
prefix, champion.yaml, or "latest") races alongside you.

Controls:
  Up/W/Space  - Steer up
  Down/S      - Steer down
  P/Esc       - Pause
  R           - Restart (after a crash)
  Ctrl+S      - Save a screenshot to ~/.racer/screenshots
  Q/Ctrl+C    - Quit

Examples:
  racer play
  racer play racing-hard
  racer play --difficulty easy
  racer play --config ./narrow-gaps.yaml
  racer play --vs latest
  racer play --vs 3f2a`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	playCmd.Flags().StringVar(&flagVs, "vs", "", "Race a trained champion: run ID prefix, champion.yaml, or latest")
}

func runPlay(_ *cobra.Command, args []string) error {
	d, err := config.ParseDifficulty(flagDifficulty)
	if err != nil {
		return err
	}
	gameID := racing.GameID(d)
	if len(args) == 1 {
		gameID = args[0]
	}
	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown game %q, run 'racer list' to see available games", gameID)
	}

	racing.SetConfigPath(flagConfig)
	game, err := registry.Create(gameID)
	if err != nil {
		return err
	}

	store := openStore(newLogger("racer"))
	if store != nil {
		defer store.Close()
	}
	if flagVs != "" {
		if err := addRival(game, store, flagVs); err != nil {
			return err
		}
	}
	return tui.Run(game, store, runtimeConfig())
}

// addRival loads a champion genome and lets it drive a second car.
func addRival(game registry.Game, store *storage.Store, source string) error {
	rg, ok := game.(*racing.Game)
	if !ok {
		return fmt.Errorf("game %q does not support a rival", game.ID())
	}
	if source == "latest" {
		source = ""
	}

	encoded, err := training.LoadChampion(store, source)
	if err != nil {
		return err
	}
	genome, _, err := evolve.DecodeGenome(encoded)
	if err != nil {
		return fmt.Errorf("decoding champion: %w", err)
	}
	brain, err := evolve.NewBrain(genome)
	if err != nil {
		return err
	}
	rg.SetRival(brain)
	return nil
}
