package racing

import (
	"math"

	"github.com/vovakirdan/racer/internal/config"
)

// Observation is what a controller sees of the world each tick:
// the car's vertical position and its vertical distances to the target
// wall's gap top and gap bottom.
type Observation [3]float64

// Slice returns the observation as a slice, the shape most network
// libraries expect for sensor input.
func (o Observation) Slice() []float64 {
	return []float64{o[0], o[1], o[2]}
}

// Controller decides an action scalar from an observation.
// Any policy works: an evolved network, a scripted heuristic, a replay.
// Returning an error aborts the whole generation.
type Controller interface {
	Activate(obs Observation) (float64, error)
}

// ControllerFunc adapts a plain function to the Controller interface.
type ControllerFunc func(obs Observation) (float64, error)

// Activate calls f(obs).
func (f ControllerFunc) Activate(obs Observation) (float64, error) {
	return f(obs)
}

// Entrant pairs a controller with the fitness accumulator the evaluator
// writes back into. The caller owns the Entrant; the evaluator only
// mutates Fitness.
type Entrant struct {
	ID         int
	Controller Controller
	Fitness    float64
}

// Move is the discrete impulse a car applies in one tick.
type Move int

const (
	MoveHold Move = iota
	MoveUp
	MoveDown
)

// String returns a human-readable name for the move.
func (m Move) String() string {
	switch m {
	case MoveUp:
		return "Up"
	case MoveDown:
		return "Down"
	default:
		return "Hold"
	}
}

// MoveFor maps a controller output to a move using the configured thresholds.
// Outputs strictly above UpThreshold move up, strictly below DownThreshold
// move down, everything in between holds.
func MoveFor(output float64, th config.Actions) Move {
	switch {
	case output > th.UpThreshold:
		return MoveUp
	case output < th.DownThreshold:
		return MoveDown
	default:
		return MoveHold
	}
}

// usable reports whether a controller output can be mapped to a move.
func usable(output float64) bool {
	return !math.IsNaN(output) && !math.IsInf(output, 0)
}
