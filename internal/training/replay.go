package training

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vovakirdan/racer/internal/config"
	"github.com/vovakirdan/racer/internal/evolve"
	"github.com/vovakirdan/racer/internal/games/racing"
	"github.com/vovakirdan/racer/internal/storage"
)

// ErrNoChampion is returned when a run finished without saving a genome.
var ErrNoChampion = errors.New("training: run has no champion")

// LoadChampion reads an encoded champion genome. source is either a path
// to a champion.yaml file or a run ID prefix looked up in store; an empty
// source selects the latest run.
func LoadChampion(store *storage.Store, source string) ([]byte, error) {
	if source != "" {
		if data, err := os.ReadFile(source); err == nil {
			return data, nil
		}
	}
	if store == nil {
		return nil, fmt.Errorf("training: no database to look up %q", source)
	}

	var (
		run storage.Run
		err error
	)
	if source == "" {
		run, err = store.LatestRun()
	} else {
		run, err = store.FindRun(source)
	}
	if err != nil {
		return nil, err
	}
	if run.Champion == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoChampion, run.ID)
	}
	return []byte(run.Champion), nil
}

// Replay drives a single car with the encoded genome until it crashes or a
// limit in cfg stops the world. The returned fitness is earned in this
// replay, which differs from the stored one whenever the walls differ.
func Replay(ctx context.Context, cfg config.RacingConfig, encoded []byte, obs racing.Observer) (racing.Result, float64, error) {
	if err := cfg.Validate(); err != nil {
		return racing.Result{}, 0, err
	}

	genome, _, err := evolve.DecodeGenome(encoded)
	if err != nil {
		return racing.Result{}, 0, fmt.Errorf("decoding champion: %w", err)
	}
	brain, err := evolve.NewBrain(genome)
	if err != nil {
		return racing.Result{}, 0, err
	}

	entrant := &racing.Entrant{ID: genome.Id, Controller: brain}
	ev := racing.NewEvaluator(&cfg, racing.Options{Observer: obs})
	res, err := ev.Evaluate(ctx, []*racing.Entrant{entrant})
	return res, entrant.Fitness, err
}
