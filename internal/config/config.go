// Package config provides YAML-based configuration for the racing simulator:
// playfield geometry, car and wall physics, fitness accounting and the
// evolution parameters used by the trainer.
package config

// RacingConfig contains all configuration for the racing simulator.
type RacingConfig struct {
	Playfield Playfield `yaml:"playfield"`
	Car       Car       `yaml:"car"`
	Walls     Walls     `yaml:"walls"`
	Road      Road      `yaml:"road"`
	Fitness   Fitness   `yaml:"fitness"`
	Actions   Actions   `yaml:"actions"`
	Limits    Limits    `yaml:"limits"`
	Evolution Evolution `yaml:"evolution"`
}

// Playfield defines the simulated area in pixel units.
type Playfield struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Boundary    float64 `yaml:"boundary"`     // Lower edge cars must stay above (road line)
	UpperMargin float64 `yaml:"upper_margin"` // Cars above this Y are out of bounds
	BottomSlack float64 `yaml:"bottom_slack"` // Pixels of the car allowed to dip past the boundary
}

// Car defines the agent sprite and its movement step.
type Car struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Step   float64 `yaml:"step"` // Vertical distance of one up/down move
}

// Walls defines obstacle geometry, speed and spawning.
type Walls struct {
	Gap      float64 `yaml:"gap"`      // Vertical opening between top and bottom bodies
	Velocity float64 `yaml:"velocity"` // Leftward movement per tick
	Width    int     `yaml:"width"`    // Sprite width
	Height   int     `yaml:"height"`   // Sprite height of one body
	MinGapY  int     `yaml:"min_gap_y"`
	MaxGapY  int     `yaml:"max_gap_y"` // Exclusive
	FirstX   float64 `yaml:"first_x"`   // X of the wall created at generation start
	SpawnX   float64 `yaml:"spawn_x"`   // X of walls appended after a pass
	Seed     int64   `yaml:"seed"`      // Gap RNG seed; 0 means time-based
}

// Road defines the cosmetic scrolling track.
type Road struct {
	Velocity float64 `yaml:"velocity"`
	Width    float64 `yaml:"width"`
}

// Fitness defines rewards and penalties written back to controllers.
type Fitness struct {
	TickReward       float64 `yaml:"tick_reward"`
	CollisionPenalty float64 `yaml:"collision_penalty"`
	PassBonus        float64 `yaml:"pass_bonus"`
}

// Actions defines how a controller's scalar output maps to a move.
// Outputs above Up move up, outputs below Down move down, anything else holds.
type Actions struct {
	UpThreshold   float64 `yaml:"up_threshold"`
	DownThreshold float64 `yaml:"down_threshold"`
}

// Limits bounds a single generation. Zero disables a limit.
type Limits struct {
	MaxTicks int `yaml:"max_ticks"`
	MaxScore int `yaml:"max_score"`
}

// Evolution defines the trainer's population and variation parameters.
type Evolution struct {
	Population        int     `yaml:"population"`
	Generations       int     `yaml:"generations"`
	Elitism           int     `yaml:"elitism"`
	TournamentSize    int     `yaml:"tournament_size"`
	CrossoverProb     float64 `yaml:"crossover_prob"`
	WeightMutProb     float64 `yaml:"weight_mut_prob"`
	WeightMutPower    float64 `yaml:"weight_mut_power"`
	WeightReplaceProb float64 `yaml:"weight_replace_prob"`
	MaxWeight         float64 `yaml:"max_weight"`
	AddNodeProb       float64 `yaml:"add_node_prob"`
	FitnessThreshold  float64 `yaml:"fitness_threshold"` // 0 disables early stop
	Workers           int     `yaml:"workers"`           // Parallel controller calls per tick
	Seed              int64   `yaml:"seed"`              // Evolution RNG seed; 0 means time-based
}
