package racing

import (
	"math"

	"github.com/vovakirdan/racer/internal/core"
)

// Car is one agent. Its X never changes; Y changes only through Apply.
type Car struct {
	ID    int // Identity of the matching Entrant
	X     float64
	Y     float64
	alive bool
	step  float64
}

// NewCar creates a live car at (x, y) that moves step pixels per impulse.
func NewCar(id int, x, y, step float64) *Car {
	return &Car{ID: id, X: x, Y: y, alive: true, step: step}
}

// Apply moves the car for one tick. Up decreases Y, down increases it.
// There is no velocity and no clamping: bounds are the world's concern.
func (c *Car) Apply(m Move) {
	switch m {
	case MoveUp:
		c.Y -= c.step
	case MoveDown:
		c.Y += c.step
	}
}

// Alive reports whether the car is still in the active set.
func (c *Car) Alive() bool {
	return c.alive
}

// Rect returns the car's bounding box in playfield pixels.
func (c *Car) Rect(s *Sprites) core.Rect {
	return core.NewRect(int(math.Round(c.X)), int(math.Round(c.Y)), s.Car.Width(), s.Car.Height())
}
