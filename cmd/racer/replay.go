package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/racer/internal/games/racing"
	"github.com/vovakirdan/racer/internal/platform/tui"
	"github.com/vovakirdan/racer/internal/training"
)

var (
	flagReplayHeadless   bool
	flagReplayMaxTicks   int
	flagReplayDifficulty string
)

var replayCmd = &cobra.Command{
	Use:   "replay [run-id | champion.yaml]",
	Short: "Watch a saved champion drive",
	Long: `Load the champion genome of a training run and let it drive one car.

The argument is a run ID prefix or a champion.yaml written by
'racer train --out'. Without an argument the latest run is used.

Examples:
  racer replay
  racer replay 3f2a
  racer replay ./runs/hard/champion.yaml --difficulty hard
  racer replay --headless --max-ticks 5000`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&flagReplayHeadless, "headless", false, "Print the result without drawing")
	replayCmd.Flags().IntVar(&flagReplayMaxTicks, "max-ticks", -1, "Tick limit (-1 = from config, 0 = none)")
	replayCmd.Flags().StringVar(&flagReplayDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
}

func runReplay(_ *cobra.Command, args []string) error {
	logger := newLogger("racer")

	cfg, err := loadConfig(flagReplayDifficulty)
	if err != nil {
		return err
	}
	if flagReplayMaxTicks >= 0 {
		cfg.Limits.MaxTicks = flagReplayMaxTicks
	}
	if flagReplayHeadless && cfg.Limits.MaxTicks == 0 && cfg.Limits.MaxScore == 0 {
		return fmt.Errorf("--headless needs a tick or score limit, a good champion never crashes")
	}

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}
	source := ""
	if len(args) == 1 {
		source = args[0]
	}
	encoded, err := training.LoadChampion(store, source)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		res     racing.Result
		fitness float64
	)
	if flagReplayHeadless {
		res, fitness, err = training.Replay(ctx, cfg, encoded, nil)
	} else {
		w, h := terminalSize()
		err = tui.Watch(ctx, tui.WatchOptions{
			Config:  &cfg,
			Sprites: racing.NewSprites(&cfg),
			FPS:     flagFPS,
			Width:   w,
			Height:  h,
		}, func(ctx context.Context, watcher *tui.Watcher) error {
			var replayErr error
			res, fitness, replayErr = training.Replay(ctx, cfg, encoded, watcher)
			return replayErr
		})
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("replay finished",
		"score", res.Score,
		"ticks", res.Ticks,
		"reason", res.Reason,
		"fitness", fmt.Sprintf("%.2f", fitness),
	)
	return nil
}
