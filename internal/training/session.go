// Package training runs an evolution session end to end: it opens a run
// in the database, evolves controllers against the racing evaluator, and
// records every generation in sqlite and CSV before saving the champion.
package training

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/racer/internal/config"
	"github.com/vovakirdan/racer/internal/evolve"
	"github.com/vovakirdan/racer/internal/games/racing"
	"github.com/vovakirdan/racer/internal/storage"
	"github.com/vovakirdan/racer/internal/telemetry"
)

// Options configures a training session.
type Options struct {
	Config    config.RacingConfig
	Store     *storage.Store // nil disables the run log
	OutDir    string         // empty disables file output
	Observer  racing.Observer
	Reporters []evolve.Reporter
	Logger    *log.Logger
}

// Outcome describes a finished, cancelled or failed session.
type Outcome struct {
	RunID       string
	Status      string
	Generations int // Generations fully evaluated and recorded
	Champion    evolve.Champion
	Encoded     []byte // Champion genome as YAML; nil if no generation finished
	OutDir      string
}

// recorder persists every report to the run log and the CSV file.
type recorder struct {
	runID string
	store *storage.Store
	out   *telemetry.OutputManager
	count int
}

func (r *recorder) Report(rep evolve.Report) error {
	if r.store != nil {
		err := r.store.SaveGeneration(storage.Generation{
			RunID:      r.runID,
			Generation: rep.Generation,
			Best:       rep.Summary.Best,
			Mean:       rep.Summary.Mean,
			StdDev:     rep.Summary.StdDev,
			Median:     rep.Summary.Median,
			Score:      rep.Result.Score,
			Ticks:      rep.Result.Ticks,
			BestGenome: rep.Best.Id,
			Reason:     rep.Result.Reason.String(),
		})
		if err != nil {
			return err
		}
	}

	rec := telemetry.NewGenerationRecord(r.runID, rep.Generation, rep.Summary)
	rec.Score = rep.Result.Score
	rec.Ticks = rep.Result.Ticks
	rec.Reason = rep.Result.Reason.String()
	rec.BestGenome = rep.Best.Id
	rec.Nodes = rep.Nodes
	rec.Genes = rep.Genes
	rec.Elapsed = float64(rep.Elapsed.Microseconds()) / 1000
	if err := r.out.WriteGeneration(rec); err != nil {
		return err
	}

	r.count = rep.Generation
	return nil
}

// Run validates opts.Config and evolves cfg.Evolution.Generations
// generations. Cancellation through ctx is not an error: the outcome's
// status says "cancelled" and the best genome so far is still saved.
func Run(ctx context.Context, opts Options) (Outcome, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return Outcome{}, err
	}
	ev := cfg.Evolution

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	cfgYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return Outcome{}, fmt.Errorf("marshaling config: %w", err)
	}

	out := Outcome{Status: storage.RunRunning, OutDir: opts.OutDir}
	if opts.Store != nil {
		out.RunID, err = opts.Store.CreateRun(ev.Population, ev.Generations, ev.Seed, string(cfgYAML))
		if err != nil {
			return out, err
		}
	} else {
		out.RunID = uuid.NewString()
	}

	om, err := telemetry.NewOutputManager(opts.OutDir)
	if err != nil {
		return out, finishFailed(opts.Store, out.RunID, err)
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		return out, finishFailed(opts.Store, out.RunID, err)
	}

	rec := &recorder{runID: out.RunID, store: opts.Store, out: om}
	popts := []evolve.Option{
		evolve.WithLogger(logger),
		evolve.WithReporter(rec),
		evolve.WithReporter(evolve.LogReporter(logger)),
	}
	for _, r := range opts.Reporters {
		popts = append(popts, evolve.WithReporter(r))
	}
	pop, err := evolve.NewPopulation(ev, popts...)
	if err != nil {
		return out, finishFailed(opts.Store, out.RunID, err)
	}

	evaluator := racing.NewEvaluator(&cfg, racing.Options{
		Observer: opts.Observer,
		Workers:  ev.Workers,
	})
	logger.Info("training started",
		"run", out.RunID,
		"population", ev.Population,
		"generations", ev.Generations,
		"workers", ev.Workers,
	)

	champ, runErr := pop.Run(ctx, evaluator.Evaluate, ev.Generations)
	out.Champion = champ
	out.Generations = rec.count

	switch {
	case runErr == nil:
		out.Status = storage.RunFinished
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		out.Status = storage.RunCancelled
		logger.Warn("training cancelled", "after", out.Generations)
		runErr = nil
	default:
		out.Status = storage.RunFailed
	}

	if champ.Genome != nil {
		out.Encoded, err = evolve.EncodeGenome(champ.Genome, champ.Fitness)
		if err != nil {
			return out, errors.Join(runErr, err)
		}
		if err := om.WriteChampion(out.Encoded); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}

	if opts.Store != nil {
		if err := opts.Store.FinishRun(out.RunID, out.Status, champ.Fitness, string(out.Encoded)); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}
	return out, runErr
}

// finishFailed marks a run failed and returns err.
func finishFailed(store *storage.Store, runID string, err error) error {
	if store != nil {
		if ferr := store.FinishRun(runID, storage.RunFailed, 0, ""); ferr != nil {
			return errors.Join(err, ferr)
		}
	}
	return err
}
