package evolve

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/vovakirdan/racer/internal/config"
	"github.com/vovakirdan/racer/internal/games/racing"
)

func setWeights(g *genetics.Genome, w float64) {
	for _, gene := range g.Genes {
		gene.Link.ConnectionWeight = w
	}
}

func enabledGenes(g *genetics.Genome) int {
	n := 0
	for _, gene := range g.Genes {
		if gene.IsEnabled {
			n++
		}
	}
	return n
}

func TestNewGenomeShape(t *testing.T) {
	g := NewGenome(1, rand.New(rand.NewSource(1)))

	if len(g.Nodes) != SensorInputs+2 {
		t.Errorf("got %d nodes, want %d", len(g.Nodes), SensorInputs+2)
	}
	if len(g.Genes) != SensorInputs+1 {
		t.Fatalf("got %d genes, want %d", len(g.Genes), SensorInputs+1)
	}
	for i, gene := range g.Genes {
		if gene.InnovationNum != int64(i+1) {
			t.Errorf("gene %d innovation = %d, want %d", i, gene.InnovationNum, i+1)
		}
		if gene.Link.OutNode.Id != OutputNodeID {
			t.Errorf("gene %d should feed the output", i)
		}
		if w := gene.Link.ConnectionWeight; w < -1 || w > 1 {
			t.Errorf("initial weight %v outside [-1, 1]", w)
		}
	}
}

func TestBrainActivate(t *testing.T) {
	obs := racing.Observation{0.35, 0.5, 1.5}

	tests := []struct {
		name   string
		weight float64
		check  func(float64) bool
	}{
		{"positive weights", 0.5, func(out float64) bool { return out > 0 && out <= 1 }},
		{"negative weights", -0.5, func(out float64) bool { return out < 0 && out >= -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenome(1, rand.New(rand.NewSource(1)))
			setWeights(g, tt.weight)
			b, err := NewBrain(g)
			if err != nil {
				t.Fatalf("NewBrain: %v", err)
			}

			if b.NodeCount() != SensorInputs+2 || b.LinkCount() != SensorInputs+1 {
				t.Errorf("phenotype has %d nodes and %d links", b.NodeCount(), b.LinkCount())
			}

			out1, err := b.Activate(obs)
			if err != nil {
				t.Fatalf("Activate: %v", err)
			}
			if !tt.check(out1) {
				t.Errorf("output %v has the wrong sign or range", out1)
			}

			// No state carries between ticks.
			out2, err := b.Activate(obs)
			if err != nil {
				t.Fatalf("Activate: %v", err)
			}
			if out1 != out2 {
				t.Errorf("repeated activation differs: %v vs %v", out1, out2)
			}
		})
	}
}

func TestInnovationsShared(t *testing.T) {
	in := NewInnovations()

	n1, a1, b1 := in.Split(2)
	n2, a2, b2 := in.Split(2)
	if n1 != n2 || a1 != a2 || b1 != b2 {
		t.Error("splitting the same connection twice should reuse its innovations")
	}
	if n1 != firstHiddenID || a1 != initialInnovs+1 || b1 != initialInnovs+2 {
		t.Errorf("first split = node %d innov %d/%d", n1, a1, b1)
	}

	n3, a3, _ := in.Split(3)
	if n3 == n1 || a3 <= b1 {
		t.Error("a different connection should get fresh numbers")
	}
}

func TestAddNode(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	in := NewInnovations()
	g := NewGenome(1, rng)

	if !AddNode(g, in, rng) {
		t.Fatal("AddNode should split a connection")
	}
	if len(g.Nodes) != SensorInputs+3 || len(g.Genes) != SensorInputs+3 {
		t.Fatalf("got %d nodes and %d genes after split", len(g.Nodes), len(g.Genes))
	}
	if enabledGenes(g) != SensorInputs+2 {
		t.Errorf("split connection should be disabled, %d enabled", enabledGenes(g))
	}

	b, err := NewBrain(g)
	if err != nil {
		t.Fatalf("NewBrain: %v", err)
	}
	if _, err := b.Activate(racing.Observation{1, 2, 3}); err != nil {
		t.Errorf("split genome should still activate: %v", err)
	}

	for _, gene := range g.Genes {
		gene.IsEnabled = false
	}
	if AddNode(g, in, rng) {
		t.Error("AddNode should fail without enabled connections")
	}
}

func TestCrossoverStructureFromFitter(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	in := NewInnovations()
	fit := NewGenome(1, rng)
	weak := NewGenome(2, rng)
	AddNode(fit, in, rng)

	child, err := Crossover(weak, fit, 1, 10, 3, rng)
	if err != nil {
		t.Fatalf("Crossover: %v", err)
	}
	if child.Id != 3 {
		t.Errorf("child ID = %d, want 3", child.Id)
	}
	if len(child.Nodes) != len(fit.Nodes) || len(child.Genes) != len(fit.Genes) {
		t.Errorf("child should have the fitter parent's structure: %d nodes %d genes", len(child.Nodes), len(child.Genes))
	}
	if enabledGenes(child) != enabledGenes(fit) {
		t.Error("enabled flags should follow the fitter parent")
	}

	weakWeights := map[int64]float64{}
	for _, g := range weak.Genes {
		weakWeights[g.InnovationNum] = g.Link.ConnectionWeight
	}
	fitWeights := map[int64]float64{}
	for _, g := range fit.Genes {
		fitWeights[g.InnovationNum] = g.Link.ConnectionWeight
	}
	for _, g := range child.Genes {
		w := g.Link.ConnectionWeight
		if w != fitWeights[g.InnovationNum] && w != weakWeights[g.InnovationNum] {
			t.Errorf("gene %d weight %v came from neither parent", g.InnovationNum, w)
		}
	}

	if _, err := NewBrain(child); err != nil {
		t.Errorf("child should build a network: %v", err)
	}
	if _, err := Crossover(nil, fit, 0, 0, 4, rng); err == nil {
		t.Error("nil parent should fail")
	}
}

func TestMutateWeightsClamp(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	g := NewGenome(1, rng)
	ev := config.DefaultRacingConfig().Evolution
	ev.WeightMutPower = 1000
	ev.WeightReplaceProb = 0

	before := make([]float64, len(g.Genes))
	for i, gene := range g.Genes {
		before[i] = gene.Link.ConnectionWeight
	}
	MutateWeights(g, ev, rng)

	changed := false
	for i, gene := range g.Genes {
		w := gene.Link.ConnectionWeight
		if math.Abs(w) > ev.MaxWeight {
			t.Errorf("weight %v exceeds ±%v", w, ev.MaxWeight)
		}
		if w != before[i] {
			changed = true
		}
	}
	if !changed {
		t.Error("mutation changed nothing")
	}
}

func TestEncodeDecodeGenome(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	in := NewInnovations()
	g := NewGenome(42, rng)
	AddNode(g, in, rng)

	data, err := EncodeGenome(g, 12.5)
	if err != nil {
		t.Fatalf("EncodeGenome: %v", err)
	}
	decoded, fitness, err := DecodeGenome(data)
	if err != nil {
		t.Fatalf("DecodeGenome: %v", err)
	}
	if decoded.Id != 42 || fitness != 12.5 {
		t.Errorf("decoded id=%d fitness=%v", decoded.Id, fitness)
	}

	b1, err := NewBrain(g)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := NewBrain(decoded)
	if err != nil {
		t.Fatal(err)
	}
	obs := racing.Observation{0.2, 0.4, 0.6}
	o1, err1 := b1.Activate(obs)
	o2, err2 := b2.Activate(obs)
	if err1 != nil || err2 != nil || o1 != o2 {
		t.Errorf("decoded brain differs: %v/%v (%v, %v)", o1, o2, err1, err2)
	}

	if _, _, err := DecodeGenome([]byte("nodes: [")); err == nil {
		t.Error("malformed YAML should fail")
	}
}

func testEvolution() config.Evolution {
	ev := config.DefaultRacingConfig().Evolution
	ev.Population = 12
	ev.Elitism = 2
	ev.Seed = 99
	return ev
}

// biasFitness rewards genomes for a large bias weight.
func biasFitness(_ context.Context, es []*racing.Entrant) (racing.Result, error) {
	for _, e := range es {
		b := e.Controller.(*Brain)
		for _, gene := range b.Genome.Genes {
			if gene.Link.InNode.Id == BiasNodeID && gene.IsEnabled {
				e.Fitness = gene.Link.ConnectionWeight
			}
		}
	}
	return racing.Result{BestID: -1}, nil
}

func TestPopulationStep(t *testing.T) {
	var reports []Report
	p, err := NewPopulation(testEvolution(), WithReporter(ReporterFunc(func(r Report) error {
		reports = append(reports, r)
		return nil
	})))
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}

	ids := map[int]bool{}
	for _, g := range p.Genomes() {
		ids[g.Id] = true
	}
	if len(ids) != 12 {
		t.Fatalf("genome IDs should be unique, got %d distinct", len(ids))
	}

	report, err := p.Step(context.Background(), biasFitness)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if report.Generation != 1 || len(reports) != 1 {
		t.Errorf("generation=%d reports=%d", report.Generation, len(reports))
	}
	if report.Summary.Count != 12 || len(report.Fitness) != 12 {
		t.Errorf("summary should cover every genome: %+v", report.Summary)
	}
	if report.Fitness[report.Best.Id] != report.Summary.Best {
		t.Error("Best should be the top-scoring genome")
	}
	if report.Nodes != len(report.Best.Nodes) || report.Genes != enabledGenes(report.Best) {
		t.Errorf("report shape %d nodes %d genes, best genome has %d and %d",
			report.Nodes, report.Genes, len(report.Best.Nodes), enabledGenes(report.Best))
	}
	if len(p.Genomes()) != 12 {
		t.Errorf("population size changed to %d", len(p.Genomes()))
	}

	// The first elite is an exact copy of the best genome under a new ID.
	elite := p.Genomes()[0]
	if elite.Id == report.Best.Id {
		t.Error("elite clone should get a fresh ID")
	}
	for i, gene := range elite.Genes {
		if gene.Link.ConnectionWeight != report.Best.Genes[i].Link.ConnectionWeight {
			t.Error("elite should keep the best genome's weights")
			break
		}
	}

	ch := p.Champion()
	if ch.Genome == nil || ch.Fitness != report.Summary.Best || ch.Generation != 1 {
		t.Errorf("unexpected champion: %+v", ch)
	}
}

func TestPopulationRunImproves(t *testing.T) {
	p, err := NewPopulation(testEvolution())
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}

	var first, last float64
	p.reporters = append(p.reporters, ReporterFunc(func(r Report) error {
		if r.Generation == 1 {
			first = r.Summary.Best
		}
		last = r.Summary.Best
		return nil
	}))

	ch, err := p.Run(context.Background(), biasFitness, 20)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.Generation() != 20 {
		t.Errorf("Generation = %d, want 20", p.Generation())
	}
	// Elitism makes the best score monotone.
	if last < first {
		t.Errorf("best fitness regressed from %v to %v", first, last)
	}
	if ch.Fitness < last {
		t.Errorf("champion %v below last best %v", ch.Fitness, last)
	}
}

func TestPopulationRunThreshold(t *testing.T) {
	ev := testEvolution()
	ev.FitnessThreshold = 1
	p, err := NewPopulation(ev)
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}

	always := func(_ context.Context, es []*racing.Entrant) (racing.Result, error) {
		for _, e := range es {
			e.Fitness = 5
		}
		return racing.Result{}, nil
	}
	if _, err := p.Run(context.Background(), always, 50); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.Generation() != 1 {
		t.Errorf("run should stop after the first generation, ran %d", p.Generation())
	}
}

func TestPopulationRunErrors(t *testing.T) {
	boom := errors.New("boom")
	p, err := NewPopulation(testEvolution())
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}
	failing := func(context.Context, []*racing.Entrant) (racing.Result, error) {
		return racing.Result{}, boom
	}
	if _, err := p.Run(context.Background(), failing, 5); !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx, biasFitness, 5); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}

	if _, err := NewPopulation(config.Evolution{}); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("empty population should be rejected, got %v", err)
	}
}

func TestPopulationWithEvaluator(t *testing.T) {
	cfg := config.DefaultRacingConfig()
	cfg.Walls.Seed = 5
	cfg.Limits.MaxTicks = 300
	ev := racing.NewEvaluator(&cfg, racing.Options{Workers: 4})

	p, err := NewPopulation(testEvolution())
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}
	ch, err := p.Run(context.Background(), ev.Evaluate, 3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ev.Generation() != 3 {
		t.Errorf("evaluator ran %d generations, want 3", ev.Generation())
	}
	if ch.Genome == nil {
		t.Error("run should produce a champion")
	}
}
