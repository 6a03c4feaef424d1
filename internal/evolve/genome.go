package evolve

import (
	"math/rand"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// split remembers how a connection was split so that every genome splitting
// the same connection gets the same hidden node and innovation numbers.
type split struct {
	nodeID   int
	inInnov  int64
	outInnov int64
}

// Innovations hands out node IDs and innovation numbers for structural
// mutations across the whole run.
type Innovations struct {
	nextInnov int64
	nextNode  int
	splits    map[int64]split
}

// NewInnovations creates a tracker that starts after the initial genome's
// nodes and connections.
func NewInnovations() *Innovations {
	return &Innovations{
		nextInnov: initialInnovs + 1,
		nextNode:  firstHiddenID,
		splits:    make(map[int64]split),
	}
}

// Split returns the hidden node ID and the two innovation numbers for
// splitting the connection with innovation innov.
func (in *Innovations) Split(innov int64) (nodeID int, inInnov, outInnov int64) {
	if s, ok := in.splits[innov]; ok {
		return s.nodeID, s.inInnov, s.outInnov
	}
	s := split{nodeID: in.nextNode, inInnov: in.nextInnov, outInnov: in.nextInnov + 1}
	in.nextNode++
	in.nextInnov += 2
	in.splits[innov] = s
	return s.nodeID, s.inInnov, s.outInnov
}

// NewGenome creates a minimal genome: every input and the bias connected
// directly to the output with random weights.
func NewGenome(id int, rng *rand.Rand) *genetics.Genome {
	nodes := make([]*network.NNode, 0, SensorInputs+2)

	// Input nodes (IDs 1 to SensorInputs) plus the bias input
	for i := 1; i <= BiasNodeID; i++ {
		node := network.NewNNode(i, network.InputNeuron)
		node.ActivationType = neatmath.LinearActivation
		nodes = append(nodes, node)
	}

	out := network.NewNNode(OutputNodeID, network.OutputNeuron)
	out.ActivationType = neatmath.TanhActivation
	nodes = append(nodes, out)

	genes := make([]*genetics.Gene, 0, BiasNodeID)
	for i := 0; i < BiasNodeID; i++ {
		weight := (rng.Float64()*2 - 1) * initialWeightR
		gene := genetics.NewGeneWithTrait(
			nil,
			weight,
			nodes[i],
			out,
			false,
			int64(i+1),
			0,
		)
		genes = append(genes, gene)
	}

	return genetics.NewGenome(id, nil, nodes, genes)
}

func copyNode(node *network.NNode) *network.NNode {
	newNode := network.NewNNode(node.Id, node.NeuronType)
	newNode.ActivationType = node.ActivationType
	return newNode
}

// CloneGenome creates a deep copy of a genome with a new ID.
func CloneGenome(genome *genetics.Genome, newID int) *genetics.Genome {
	nodeMap := make(map[int]*network.NNode, len(genome.Nodes))
	newNodes := make([]*network.NNode, 0, len(genome.Nodes))
	for _, node := range genome.Nodes {
		newNode := copyNode(node)
		nodeMap[node.Id] = newNode
		newNodes = append(newNodes, newNode)
	}

	newGenes := make([]*genetics.Gene, 0, len(genome.Genes))
	for _, gene := range genome.Genes {
		inNode := nodeMap[gene.Link.InNode.Id]
		outNode := nodeMap[gene.Link.OutNode.Id]
		if inNode == nil || outNode == nil {
			continue
		}
		newGene := genetics.NewGeneWithTrait(
			nil,
			gene.Link.ConnectionWeight,
			inNode,
			outNode,
			gene.Link.IsRecurrent,
			gene.InnovationNum,
			gene.MutationNum,
		)
		newGene.IsEnabled = gene.IsEnabled
		newGenes = append(newGenes, newGene)
	}

	return genetics.NewGenome(newID, nil, newNodes, newGenes)
}
