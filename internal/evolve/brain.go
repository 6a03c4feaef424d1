// Package evolve breeds goNEAT genomes into racing controllers.
//
// Every genome has the same fixed interface: three linear sensor inputs
// matching racing.Observation, one constant bias input, and a single tanh
// output read as the steering scalar. Topology grows only by splitting
// existing connections, so every genome stays connected end to end.
package evolve

import (
	"fmt"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	"github.com/yaricom/goNEAT/v4/neat/network"

	"github.com/vovakirdan/racer/internal/games/racing"
)

// Network shape
const (
	SensorInputs = len(racing.Observation{})
	BiasNodeID   = SensorInputs + 1
	OutputNodeID = SensorInputs + 2

	biasValue      = 1.0
	fallbackDepth  = 5
	firstHiddenID  = OutputNodeID + 1
	initialInnovs  = int64(SensorInputs + 1)
	initialWeightR = 1.0 // Initial weights are uniform in [-R, R]
)

// Brain wraps a goNEAT phenotype network as a racing.Controller.
// A Brain is not safe for concurrent use; each entrant gets its own.
type Brain struct {
	Genome  *genetics.Genome
	network *network.Network
	inputs  []float64
}

// NewBrain builds the phenotype network for genome.
func NewBrain(genome *genetics.Genome) (*Brain, error) {
	phenotype, err := genome.Genesis(genome.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to build network from genome %d: %w", genome.Id, err)
	}
	return &Brain{
		Genome:  genome,
		network: phenotype,
		inputs:  make([]float64, SensorInputs+1),
	}, nil
}

// Activate feeds one observation through the network and returns its output.
func (b *Brain) Activate(obs racing.Observation) (float64, error) {
	copy(b.inputs, obs.Slice())
	b.inputs[SensorInputs] = biasValue

	if err := b.network.LoadSensors(b.inputs); err != nil {
		return 0, fmt.Errorf("failed to load sensors: %w", err)
	}

	// Activate with depth-based steps for proper signal propagation
	depth, err := b.network.MaxActivationDepth()
	if err != nil || depth < 1 {
		depth = fallbackDepth
	}
	for i := 0; i < depth; i++ {
		if _, err := b.network.Activate(); err != nil {
			return 0, fmt.Errorf("activation failed: %w", err)
		}
	}

	outputs := b.network.ReadOutputs()
	if len(outputs) != 1 {
		return 0, fmt.Errorf("expected 1 output, got %d", len(outputs))
	}
	out := outputs[0]

	// Observations are independent; no state carries to the next tick.
	if _, err := b.network.Flush(); err != nil {
		return 0, fmt.Errorf("flush failed: %w", err)
	}
	return out, nil
}

// NodeCount returns the number of nodes in the phenotype, sensors included.
func (b *Brain) NodeCount() int {
	return b.network.NodeCount()
}

// LinkCount returns the number of links in the phenotype; disabled genes build none.
func (b *Brain) LinkCount() int {
	return b.network.LinkCount()
}
