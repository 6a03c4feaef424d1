package evolve

import (
	"fmt"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
	"gopkg.in/yaml.v3"
)

type genomeRecord struct {
	ID      int          `yaml:"id"`
	Fitness float64      `yaml:"fitness,omitempty"`
	Nodes   []nodeRecord `yaml:"nodes"`
	Genes   []geneRecord `yaml:"genes"`
}

type nodeRecord struct {
	ID         int    `yaml:"id"`
	Kind       string `yaml:"kind"`
	Activation string `yaml:"activation"`
}

type geneRecord struct {
	In         int     `yaml:"in"`
	Out        int     `yaml:"out"`
	Weight     float64 `yaml:"weight"`
	Innovation int64   `yaml:"innovation"`
	Enabled    bool    `yaml:"enabled"`
	Recurrent  bool    `yaml:"recurrent,omitempty"`
}

// EncodeGenome serializes a genome to YAML, with the fitness it earned.
func EncodeGenome(g *genetics.Genome, fitness float64) ([]byte, error) {
	rec := genomeRecord{ID: g.Id, Fitness: fitness}
	for _, node := range g.Nodes {
		kind, err := kindName(node)
		if err != nil {
			return nil, err
		}
		act := "tanh"
		if node.ActivationType == neatmath.LinearActivation {
			act = "linear"
		}
		rec.Nodes = append(rec.Nodes, nodeRecord{ID: node.Id, Kind: kind, Activation: act})
	}
	for _, gene := range g.Genes {
		rec.Genes = append(rec.Genes, geneRecord{
			In:         gene.Link.InNode.Id,
			Out:        gene.Link.OutNode.Id,
			Weight:     gene.Link.ConnectionWeight,
			Innovation: gene.InnovationNum,
			Enabled:    gene.IsEnabled,
			Recurrent:  gene.Link.IsRecurrent,
		})
	}
	return yaml.Marshal(rec)
}

func kindName(node *network.NNode) (string, error) {
	switch node.NeuronType {
	case network.InputNeuron:
		return "input", nil
	case network.OutputNeuron:
		return "output", nil
	case network.HiddenNeuron:
		return "hidden", nil
	default:
		return "", fmt.Errorf("node %d: unsupported neuron type %v", node.Id, node.NeuronType)
	}
}

// DecodeGenome rebuilds a genome written by EncodeGenome and returns it
// with its recorded fitness.
func DecodeGenome(data []byte) (*genetics.Genome, float64, error) {
	var rec genomeRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, 0, fmt.Errorf("decoding genome: %w", err)
	}

	nodes := make([]*network.NNode, 0, len(rec.Nodes))
	byID := make(map[int]*network.NNode, len(rec.Nodes))
	for _, n := range rec.Nodes {
		var node *network.NNode
		switch n.Kind {
		case "input":
			node = network.NewNNode(n.ID, network.InputNeuron)
		case "output":
			node = network.NewNNode(n.ID, network.OutputNeuron)
		case "hidden":
			node = network.NewNNode(n.ID, network.HiddenNeuron)
		default:
			return nil, 0, fmt.Errorf("decoding genome: node %d has unknown kind %q", n.ID, n.Kind)
		}
		if n.Activation == "linear" {
			node.ActivationType = neatmath.LinearActivation
		} else {
			node.ActivationType = neatmath.TanhActivation
		}
		nodes = append(nodes, node)
		byID[n.ID] = node
	}

	genes := make([]*genetics.Gene, 0, len(rec.Genes))
	for _, gr := range rec.Genes {
		in, out := byID[gr.In], byID[gr.Out]
		if in == nil || out == nil {
			return nil, 0, fmt.Errorf("decoding genome: gene %d references a missing node", gr.Innovation)
		}
		gene := genetics.NewGeneWithTrait(nil, gr.Weight, in, out, gr.Recurrent, gr.Innovation, 0)
		gene.IsEnabled = gr.Enabled
		genes = append(genes, gene)
	}

	if len(nodes) == 0 || len(genes) == 0 {
		return nil, 0, fmt.Errorf("decoding genome: empty genome")
	}
	return genetics.NewGenome(rec.ID, nil, nodes, genes), rec.Fitness, nil
}
