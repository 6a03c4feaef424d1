// racer evolves neural controllers that steer cars through gaps in
// scrolling walls, and lets you race the same walls yourself.
//
// Usage:
//
//	racer                    - Start menu (play, scores, training history)
//	racer train              - Evolve controllers, optionally watching live
//	racer replay [run-id]    - Watch a saved champion drive
//	racer play [game]        - Play with the keyboard
//	racer list               - List playable variants
//	racer scores [game]      - Show high scores
//	racer history [run-id]   - Browse training runs
//	racer serve              - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>     - Tick rate for play and watch modes (default: 30)
//	--seed <value>   - RNG seed for walls and evolution
//	--db <path>      - Database path (default: ~/.racer/racer.db)
//	--config <path>  - Racing config YAML
//	--verbose        - Debug logging
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/racer/internal/config"
	"github.com/vovakirdan/racer/internal/core"
	"github.com/vovakirdan/racer/internal/games/racing"
)

var (
	// Global flags
	flagFPS     int
	flagSeed    int64
	flagDBPath  string
	flagConfig  string
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "racer",
	Short: "Wall Racer - evolve drivers that dodge walls in your terminal",
	Long: `Wall Racer simulates cars steering through gaps in walls that scroll
toward them. A population of small neural networks learns to drive by
neuroevolution, and you can race the same walls with the keyboard.

Run without a command to open the menu.

Examples:
  racer train --generations 30 --watch
  racer replay
  racer play --difficulty hard
  racer history
  racer serve --ssh :2222`,
	SilenceUsage: true,
	RunE:         runMenu,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate for play and watch modes")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = from config, else time-based)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.racer/racer.db", "Path to the database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a racing config YAML")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

// newLogger returns the stderr logger shared by a command.
func newLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// terminalSize returns the size of stdout, or 80x24 when it is not a terminal.
func terminalSize() (int, int) {
	def := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return def.ScreenW, def.ScreenH
}

// runtimeConfig builds the play runtime settings from the global flags.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	cfg.ScreenW, cfg.ScreenH = terminalSize()
	if flagFPS > 0 {
		cfg.TickRate = flagFPS
	}
	cfg.Seed = flagSeed
	return cfg
}

// loadConfig loads --config, applies a difficulty preset and the --seed override, and validates.
func loadConfig(difficulty string) (config.RacingConfig, error) {
	racing.SetConfigPath(flagConfig)

	cfg, err := config.LoadRacing(flagConfig)
	if err != nil {
		return cfg, err
	}
	d, err := config.ParseDifficulty(difficulty)
	if err != nil {
		return cfg, err
	}
	config.ApplyDifficulty(&cfg, d)

	if flagSeed != 0 {
		cfg.Walls.Seed = flagSeed
		cfg.Evolution.Seed = flagSeed
	}
	return cfg, cfg.Validate()
}
