package evolve

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/vovakirdan/racer/internal/config"
	"github.com/vovakirdan/racer/internal/games/racing"
	"github.com/vovakirdan/racer/internal/telemetry"
)

// FitnessFunc evaluates one batch of entrants and writes each entrant's
// fitness back. racing.Evaluator.Evaluate satisfies it.
type FitnessFunc func(ctx context.Context, entrants []*racing.Entrant) (racing.Result, error)

// Report describes one evaluated generation.
type Report struct {
	Generation int
	Result     racing.Result
	Summary    telemetry.Summary
	Fitness    map[int]float64 // By genome ID
	Best       *genetics.Genome
	Nodes      int // Node count of the best phenotype
	Genes      int // Link count of the best phenotype, one per enabled gene
	Elapsed    time.Duration
}

// Reporter receives every generation's Report. An error stops the run.
type Reporter interface {
	Report(r Report) error
}

// ReporterFunc adapts a plain function to the Reporter interface.
type ReporterFunc func(r Report) error

// Report calls f(r).
func (f ReporterFunc) Report(r Report) error {
	return f(r)
}

// Champion is the fittest genome seen during a run.
type Champion struct {
	Genome     *genetics.Genome
	Fitness    float64
	Generation int
}

// Population is a fixed-size set of genomes bred generation by generation.
type Population struct {
	cfg         config.Evolution
	rng         *rand.Rand
	genomes     []*genetics.Genome
	innovations *Innovations
	nextID      int
	generation  int
	champion    Champion
	reporters   []Reporter
	logger      *log.Logger
}

// Option configures a Population.
type Option func(*Population)

// WithLogger sets the logger used for per-generation lines.
func WithLogger(l *log.Logger) Option {
	return func(p *Population) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithReporter registers a reporter.
func WithReporter(r Reporter) Option {
	return func(p *Population) {
		p.reporters = append(p.reporters, r)
	}
}

// NewPopulation creates cfg.Population minimal genomes.
// A zero cfg.Seed seeds from the clock.
func NewPopulation(cfg config.Evolution, opts ...Option) (*Population, error) {
	if cfg.Population <= 0 {
		return nil, fmt.Errorf("%w: population must be positive, got %d", config.ErrInvalidConfig, cfg.Population)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	p := &Population{
		cfg:         cfg,
		rng:         rand.New(rand.NewSource(seed)),
		innovations: NewInnovations(),
		nextID:      1,
		champion:    Champion{Generation: -1},
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.genomes = make([]*genetics.Genome, cfg.Population)
	for i := range p.genomes {
		p.genomes[i] = NewGenome(p.newID(), p.rng)
	}
	return p, nil
}

func (p *Population) newID() int {
	id := p.nextID
	p.nextID++
	return id
}

// Genomes returns the genomes awaiting evaluation.
func (p *Population) Genomes() []*genetics.Genome {
	return p.genomes
}

// Generation returns the number of evaluated generations.
func (p *Population) Generation() int {
	return p.generation
}

// Champion returns the best genome seen so far. Its Genome is nil until
// the first generation has been evaluated.
func (p *Population) Champion() Champion {
	return p.champion
}

// Step evaluates the current genomes, reports, and breeds the next generation.
func (p *Population) Step(ctx context.Context, fitness FitnessFunc) (Report, error) {
	start := time.Now()
	p.generation++

	entrants := make([]*racing.Entrant, len(p.genomes))
	brains := make([]*Brain, len(p.genomes))
	for i, g := range p.genomes {
		brain, err := NewBrain(g)
		if err != nil {
			return Report{}, err
		}
		brains[i] = brain
		entrants[i] = &racing.Entrant{ID: g.Id, Controller: brain}
	}

	res, err := fitness(ctx, entrants)
	if err != nil {
		return Report{}, fmt.Errorf("generation %d: %w", p.generation, err)
	}

	scores := make([]float64, len(entrants))
	byID := make(map[int]float64, len(entrants))
	for i, e := range entrants {
		scores[i] = e.Fitness
		byID[e.ID] = e.Fitness
	}
	order := p.rank(scores)
	best := p.genomes[order[0]]

	if p.champion.Genome == nil || scores[order[0]] > p.champion.Fitness {
		p.champion = Champion{
			Genome:     CloneGenome(best, best.Id),
			Fitness:    scores[order[0]],
			Generation: p.generation,
		}
	}

	report := Report{
		Generation: p.generation,
		Result:     res,
		Summary:    telemetry.Summarize(scores),
		Fitness:    byID,
		Best:       best,
		Nodes:      brains[order[0]].NodeCount(),
		Genes:      brains[order[0]].LinkCount(),
		Elapsed:    time.Since(start),
	}
	for _, r := range p.reporters {
		if err := r.Report(report); err != nil {
			return report, fmt.Errorf("reporting generation %d: %w", p.generation, err)
		}
	}

	next, err := p.breed(order, scores)
	if err != nil {
		return report, fmt.Errorf("breeding generation %d: %w", p.generation+1, err)
	}
	p.genomes = next
	return report, nil
}

// Run steps until generations have been evaluated, the fitness threshold
// is reached, or ctx is cancelled. It returns the champion either way.
func (p *Population) Run(ctx context.Context, fitness FitnessFunc, generations int) (Champion, error) {
	for i := 0; i < generations; i++ {
		if err := ctx.Err(); err != nil {
			return p.champion, err
		}

		report, err := p.Step(ctx, fitness)
		if err != nil {
			return p.champion, err
		}
		p.logger.Info("generation",
			"gen", report.Generation,
			"best", fmt.Sprintf("%.2f", report.Summary.Best),
			"mean", fmt.Sprintf("%.2f", report.Summary.Mean),
			"score", report.Result.Score,
			"ticks", report.Result.Ticks,
			"reason", report.Result.Reason,
		)

		if p.cfg.FitnessThreshold > 0 && report.Summary.Best >= p.cfg.FitnessThreshold {
			p.logger.Info("fitness threshold reached", "threshold", p.cfg.FitnessThreshold, "gen", report.Generation)
			break
		}
	}
	return p.champion, nil
}

// rank returns genome indices ordered by fitness, best first, lowest
// genome ID first on ties.
func (p *Population) rank(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if scores[ia] != scores[ib] {
			return scores[ia] > scores[ib]
		}
		return p.genomes[ia].Id < p.genomes[ib].Id
	})
	return order
}

// breed keeps the elites and fills the rest with mutated offspring of
// tournament winners.
func (p *Population) breed(order []int, scores []float64) ([]*genetics.Genome, error) {
	size := p.cfg.Population
	next := make([]*genetics.Genome, 0, size)

	elites := min(p.cfg.Elitism, len(order), size)
	for _, idx := range order[:elites] {
		next = append(next, CloneGenome(p.genomes[idx], p.newID()))
	}

	for len(next) < size {
		a := p.tournament(scores)
		var child *genetics.Genome
		if p.rng.Float64() < p.cfg.CrossoverProb {
			b := p.tournament(scores)
			c, err := Crossover(p.genomes[a], p.genomes[b], scores[a], scores[b], p.newID(), p.rng)
			if err != nil {
				return nil, err
			}
			child = c
		} else {
			child = CloneGenome(p.genomes[a], p.newID())
		}

		if p.rng.Float64() < p.cfg.WeightMutProb {
			MutateWeights(child, p.cfg, p.rng)
		}
		if p.rng.Float64() < p.cfg.AddNodeProb {
			AddNode(child, p.innovations, p.rng)
		}
		next = append(next, child)
	}
	return next, nil
}

// tournament picks TournamentSize genomes at random and returns the fittest.
func (p *Population) tournament(scores []float64) int {
	best := p.rng.Intn(len(scores))
	for i := 1; i < p.cfg.TournamentSize; i++ {
		c := p.rng.Intn(len(scores))
		if scores[c] > scores[best] {
			best = c
		}
	}
	return best
}

// LogReporter logs a debug line with the best genome's shape.
func LogReporter(l *log.Logger) Reporter {
	return ReporterFunc(func(r Report) error {
		l.Debug("best genome",
			"gen", r.Generation,
			"genome", r.Best.Id,
			"nodes", r.Nodes,
			"genes", r.Genes,
			"p10", fmt.Sprintf("%.2f", r.Summary.P10),
			"p90", fmt.Sprintf("%.2f", r.Summary.P90),
			"elapsed", r.Elapsed.Round(time.Millisecond),
		)
		return nil
	})
}
