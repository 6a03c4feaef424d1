package main

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/racer/internal/games/racing"
	"github.com/vovakirdan/racer/internal/platform/tui"
	"github.com/vovakirdan/racer/internal/registry"
	"github.com/vovakirdan/racer/internal/storage"
)

// openStore opens the database, or returns nil with a warning so play can continue without it.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open database, nothing will be saved", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}

func runMenu(_ *cobra.Command, _ []string) error {
	logger := newLogger("racer")
	racing.SetConfigPath(flagConfig)

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	cfg := runtimeConfig()
	for {
		res, err := tui.RunMenu(store, cfg)
		if err != nil {
			return err
		}
		cfg = res.Config

		switch {
		case res.Quit:
			return nil

		case res.WantsScoreboard:
			goBack, err := tui.RunScoreboard(store, cfg.ScreenW, cfg.ScreenH)
			if err != nil {
				return err
			}
			if !goBack {
				return nil
			}

		case res.WantsHistory:
			if err := tui.RunHistory(store, "", cfg.ScreenW, cfg.ScreenH); err != nil {
				logger.Error("history", "error", err)
			}

		default:
			game, err := registry.Create(res.GameID)
			if err != nil {
				logger.Error("cannot create game", "game", res.GameID, "error", err)
				continue
			}
			cfg.Seed = time.Now().UnixNano()
			if flagSeed != 0 {
				cfg.Seed = flagSeed
			}
			if err := tui.Run(game, store, cfg); err != nil {
				return err
			}
		}
	}
}
