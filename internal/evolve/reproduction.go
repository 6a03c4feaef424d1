package evolve

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"

	"github.com/vovakirdan/racer/internal/config"
)

// Crossover performs NEAT-style crossover between two parent genomes.
// Genes are aligned by innovation number. The child takes its structure
// (genes, nodes, enabled flags) from the fitter parent and each matching
// gene's weight from either parent at random.
func Crossover(parent1, parent2 *genetics.Genome, fitness1, fitness2 float64, childID int, rng *rand.Rand) (*genetics.Genome, error) {
	if parent1 == nil || parent2 == nil {
		return nil, fmt.Errorf("cannot crossover nil genomes")
	}

	primary, secondary := parent1, parent2
	if fitness2 > fitness1 {
		primary, secondary = parent2, parent1
	}

	secondaryGenes := make(map[int64]*genetics.Gene, len(secondary.Genes))
	for _, gene := range secondary.Genes {
		secondaryGenes[gene.InnovationNum] = gene
	}

	childNodeMap := make(map[int]*network.NNode, len(primary.Nodes))
	for _, node := range primary.Nodes {
		childNodeMap[node.Id] = copyNode(node)
	}

	genes := make([]*genetics.Gene, len(primary.Genes))
	copy(genes, primary.Genes)
	sort.Slice(genes, func(i, j int) bool { return genes[i].InnovationNum < genes[j].InnovationNum })

	childGenes := make([]*genetics.Gene, 0, len(genes))
	for _, pGene := range genes {
		weight := pGene.Link.ConnectionWeight
		if sGene, ok := secondaryGenes[pGene.InnovationNum]; ok && rng.Float64() < 0.5 {
			weight = sGene.Link.ConnectionWeight
		}

		inNode := childNodeMap[pGene.Link.InNode.Id]
		outNode := childNodeMap[pGene.Link.OutNode.Id]
		if inNode == nil || outNode == nil {
			return nil, fmt.Errorf("genome %d: gene %d references a missing node", primary.Id, pGene.InnovationNum)
		}

		childGene := genetics.NewGeneWithTrait(
			nil,
			weight,
			inNode,
			outNode,
			pGene.Link.IsRecurrent,
			pGene.InnovationNum,
			pGene.MutationNum,
		)
		childGene.IsEnabled = pGene.IsEnabled
		childGenes = append(childGenes, childGene)
	}

	childNodes := make([]*network.NNode, 0, len(childNodeMap))
	for _, node := range childNodeMap {
		childNodes = append(childNodes, node)
	}
	sort.Slice(childNodes, func(i, j int) bool { return childNodes[i].Id < childNodes[j].Id })

	return genetics.NewGenome(childID, nil, childNodes, childGenes), nil
}

// MutateWeights perturbs every connection weight with Gaussian noise, or
// occasionally replaces it, and clamps the result to ±MaxWeight.
func MutateWeights(genome *genetics.Genome, ev config.Evolution, rng *rand.Rand) {
	for _, gene := range genome.Genes {
		if rng.Float64() < ev.WeightReplaceProb {
			gene.Link.ConnectionWeight = rng.Float64()*2 - 1
		} else {
			gene.Link.ConnectionWeight += rng.NormFloat64() * ev.WeightMutPower
		}
		gene.Link.ConnectionWeight = clampWeight(gene.Link.ConnectionWeight, ev.MaxWeight)
	}
}

// clampWeight clamps a connection weight to [-limit, limit].
func clampWeight(w, limit float64) float64 {
	if w > limit {
		return limit
	}
	if w < -limit {
		return -limit
	}
	return w
}

// AddNode splits a random enabled connection in two, inserting a tanh
// hidden node. The old connection is disabled; the incoming half gets
// weight 1 and the outgoing half keeps the old weight.
// It returns false when nothing could be split.
func AddNode(genome *genetics.Genome, innovations *Innovations, rng *rand.Rand) bool {
	present := make(map[int]bool, len(genome.Nodes))
	for _, node := range genome.Nodes {
		present[node.Id] = true
	}

	candidates := make([]*genetics.Gene, 0, len(genome.Genes))
	for _, gene := range genome.Genes {
		if !gene.IsEnabled || gene.Link.IsRecurrent {
			continue
		}
		// A genome can only split a connection once.
		if nodeID, _, _ := innovations.peek(gene.InnovationNum); present[nodeID] {
			continue
		}
		candidates = append(candidates, gene)
	}
	if len(candidates) == 0 {
		return false
	}

	geneToSplit := candidates[rng.Intn(len(candidates))]
	nodeID, inInnov, outInnov := innovations.Split(geneToSplit.InnovationNum)
	geneToSplit.IsEnabled = false

	newNode := network.NewNNode(nodeID, network.HiddenNeuron)
	newNode.ActivationType = neatmath.TanhActivation

	gene1 := genetics.NewGeneWithTrait(
		nil,
		1.0,
		geneToSplit.Link.InNode,
		newNode,
		false,
		inInnov,
		0,
	)
	gene2 := genetics.NewGeneWithTrait(
		nil,
		geneToSplit.Link.ConnectionWeight,
		newNode,
		geneToSplit.Link.OutNode,
		false,
		outInnov,
		0,
	)

	genome.Nodes = append(genome.Nodes, newNode)
	genome.Genes = append(genome.Genes, gene1, gene2)
	return true
}

// peek returns the node a split of innov would use, or 0 if it was never split.
func (in *Innovations) peek(innov int64) (int, int64, int64) {
	s, ok := in.splits[innov]
	if !ok {
		return 0, 0, 0
	}
	return s.nodeID, s.inInnov, s.outInnov
}
