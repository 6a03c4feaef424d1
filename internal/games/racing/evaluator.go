package racing

import (
	"context"
	"fmt"

	"github.com/vovakirdan/racer/internal/config"
)

// Reason tells why a generation ended.
type Reason int

const (
	ReasonExtinct Reason = iota
	ReasonTickLimit
	ReasonScoreLimit
)

// String returns a short name for the reason.
func (r Reason) String() string {
	switch r {
	case ReasonTickLimit:
		return "tick-limit"
	case ReasonScoreLimit:
		return "score-limit"
	default:
		return "extinct"
	}
}

// Result summarizes one evaluated generation. Per-entrant fitness is
// written into the entrants themselves.
type Result struct {
	Generation  int
	Ticks       int
	Score       int
	Reason      Reason
	BestID      int // -1 for an empty batch
	BestFitness float64
}

// Options tunes an Evaluator. The zero value runs headless, sequentially,
// with a time-seeded gap source unless the config carries a seed.
type Options struct {
	Observer Observer
	Workers  int
	Gaps     GapSource
}

// Evaluator runs batches of entrants to extinction, one generation per call.
type Evaluator struct {
	cfg        *config.RacingConfig
	sprites    *Sprites
	opts       Options
	generation int
}

// NewEvaluator creates an evaluator for cfg. The config must already be valid.
func NewEvaluator(cfg *config.RacingConfig, opts Options) *Evaluator {
	if opts.Gaps == nil {
		opts.Gaps = RandomGaps(cfg.Walls.MinGapY, cfg.Walls.MaxGapY, cfg.Walls.Seed)
	}
	return &Evaluator{
		cfg:     cfg,
		sprites: NewSprites(cfg),
		opts:    opts,
	}
}

// Generation returns the number of Evaluate calls made so far.
func (ev *Evaluator) Generation() int {
	return ev.generation
}

// Evaluate checks the batch, resets every entrant's fitness, simulates
// until no car is left (or a configured limit is hit) and returns the
// outcome. A rejected batch leaves fitness untouched. Controller
// failures abort the generation. Cancellation is checked between ticks.
func (ev *Evaluator) Evaluate(ctx context.Context, entrants []*Entrant) (Result, error) {
	ev.generation++
	res := Result{Generation: ev.generation, BestID: -1}

	if len(entrants) == 0 {
		return res, nil
	}

	w, err := NewWorld(ev.cfg, ev.sprites, entrants, ev.opts.Gaps, ev.opts.Workers)
	if err != nil {
		return res, fmt.Errorf("generation %d: %w", ev.generation, err)
	}
	for _, e := range entrants {
		e.Fitness = 0
	}
	w.generation = ev.generation

	limits := ev.cfg.Limits
	for !w.Done() {
		if err := ctx.Err(); err != nil {
			return ev.finish(res, w, entrants), err
		}
		if err := w.Tick(ctx); err != nil {
			return ev.finish(res, w, entrants), fmt.Errorf("generation %d tick %d: %w", ev.generation, w.Ticks(), err)
		}
		if ev.opts.Observer != nil {
			ev.opts.Observer.Observe(w.Frame())
		}
		if limits.MaxScore > 0 && w.Score() >= limits.MaxScore {
			res.Reason = ReasonScoreLimit
			break
		}
		if limits.MaxTicks > 0 && w.Ticks() >= limits.MaxTicks {
			res.Reason = ReasonTickLimit
			break
		}
	}
	return ev.finish(res, w, entrants), nil
}

func (ev *Evaluator) finish(res Result, w *World, entrants []*Entrant) Result {
	res.Ticks = w.Ticks()
	res.Score = w.Score()
	for _, e := range entrants {
		if res.BestID < 0 || e.Fitness > res.BestFitness || (e.Fitness == res.BestFitness && e.ID < res.BestID) {
			res.BestID = e.ID
			res.BestFitness = e.Fitness
		}
	}
	return res
}
