package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/racer/internal/config"
	"github.com/vovakirdan/racer/internal/games/racing"
	"github.com/vovakirdan/racer/internal/platform/tui"
	"github.com/vovakirdan/racer/internal/training"
)

var (
	flagGenerations     int
	flagPopulation      int
	flagWorkers         int
	flagMaxTicks        int
	flagWatch           bool
	flagOutDir          string
	flagTrainDifficulty string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Evolve car controllers",
	Long: `Evolve a population of neural controllers against the wall course.

Each generation every controller drives its own car through the same
walls; fitness rewards survival and passed walls and penalizes crashes.
Every generation is recorded in the database (see 'racer history') and,
with --out, in generations.csv next to config.yaml and champion.yaml.

Press Ctrl+C (or q while watching) to stop early. The best controller
found so far is still saved.

Examples:
  racer train
  racer train --generations 100 --population 150 --workers 8
  racer train --watch --fps 60
  racer train --difficulty hard --out ./runs/hard --seed 42`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&flagGenerations, "generations", 0, "Generations to evolve (0 = from config)")
	trainCmd.Flags().IntVar(&flagPopulation, "population", 0, "Population size (0 = from config)")
	trainCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Parallel controller calls per tick (0 = from config)")
	trainCmd.Flags().IntVar(&flagMaxTicks, "max-ticks", -1, "Tick limit per generation (-1 = from config, 0 = none)")
	trainCmd.Flags().BoolVar(&flagWatch, "watch", false, "Show each generation live")
	trainCmd.Flags().StringVar(&flagOutDir, "out", "", "Directory for CSV telemetry and the champion genome")
	trainCmd.Flags().StringVar(&flagTrainDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
}

// applyTrainFlags overrides the loaded config with explicit command-line values.
func applyTrainFlags(cfg *config.RacingConfig) {
	if flagGenerations > 0 {
		cfg.Evolution.Generations = flagGenerations
	}
	if flagPopulation > 0 {
		cfg.Evolution.Population = flagPopulation
		cfg.Evolution.Elitism = min(cfg.Evolution.Elitism, flagPopulation)
	}
	if flagWorkers > 0 {
		cfg.Evolution.Workers = flagWorkers
	}
	if flagMaxTicks >= 0 {
		cfg.Limits.MaxTicks = flagMaxTicks
	}
}

func runTrain(_ *cobra.Command, _ []string) error {
	logger := newLogger("racer")

	cfg, err := loadConfig(flagTrainDifficulty)
	if err != nil {
		return err
	}
	applyTrainFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := training.Options{
		Config: cfg,
		Store:  store,
		OutDir: flagOutDir,
		Logger: logger,
	}

	var outcome training.Outcome
	if flagWatch {
		// Log lines would tear the alt screen; only errors get through while watching.
		prev := logger.GetLevel()
		logger.SetLevel(log.ErrorLevel)
		w, h := terminalSize()
		err = tui.Watch(ctx, tui.WatchOptions{
			Config:  &cfg,
			Sprites: racing.NewSprites(&cfg),
			FPS:     flagFPS,
			Width:   w,
			Height:  h,
		}, func(ctx context.Context, watcher *tui.Watcher) error {
			opts.Observer = watcher
			opts.Reporters = append(opts.Reporters, watcher)
			var runErr error
			outcome, runErr = training.Run(ctx, opts)
			return runErr
		})
		logger.SetLevel(prev)
	} else {
		outcome, err = training.Run(ctx, opts)
	}
	if err != nil {
		return err
	}

	logger.Info("training "+outcome.Status,
		"run", outcome.RunID,
		"generations", outcome.Generations,
		"best", fmt.Sprintf("%.2f", outcome.Champion.Fitness),
		"champion_gen", outcome.Champion.Generation,
	)
	if outcome.OutDir != "" {
		logger.Info("output written", "dir", outcome.OutDir)
	}
	return nil
}
