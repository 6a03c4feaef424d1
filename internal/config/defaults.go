package config

import (
	_ "embed"
)

//go:embed defaults/racing.yaml
var defaultRacingYAML []byte

// DefaultRacingConfig returns the hardcoded default configuration.
// It mirrors defaults/racing.yaml and is used if the embedded file cannot be parsed.
func DefaultRacingConfig() RacingConfig {
	return RacingConfig{
		Playfield: Playfield{
			Width:       600,
			Height:      800,
			Boundary:    730,
			UpperMargin: -50,
			BottomSlack: 10,
		},
		Car: Car{
			X:      230,
			Y:      350,
			Width:  64,
			Height: 32,
			Step:   25,
		},
		Walls: Walls{
			Gap:      200,
			Velocity: 15,
			Width:    104,
			Height:   640,
			MinGapY:  50,
			MaxGapY:  450,
			FirstX:   700,
			SpawnX:   600,
		},
		Road: Road{
			Velocity: 5,
			Width:    600,
		},
		Fitness: Fitness{
			TickReward:       0.1,
			CollisionPenalty: 1,
			PassBonus:        5,
		},
		Actions: Actions{
			UpThreshold:   0.5,
			DownThreshold: 0,
		},
		Evolution: Evolution{
			Population:        50,
			Generations:       50,
			Elitism:           2,
			TournamentSize:    3,
			CrossoverProb:     0.75,
			WeightMutProb:     0.8,
			WeightMutPower:    0.5,
			WeightReplaceProb: 0.1,
			MaxWeight:         30,
			AddNodeProb:       0.03,
			Workers:           1,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultRacingYAML
}
