package racing

import (
	"math"

	"github.com/vovakirdan/racer/internal/core"
)

// Wall is a pair of solid bodies with a gap between them.
// Height is the Y of the gap top; the top body ends there and the bottom
// body starts Gap pixels lower.
type Wall struct {
	X      float64
	Height float64 // Gap top
	Top    float64 // Y of the top body's upper edge
	Bottom float64 // Y of the bottom body's upper edge (gap bottom)
	Passed bool
}

// NewWall creates a wall at x with its gap starting at gapTop.
// The gap position never changes afterwards.
func NewWall(x, gapTop, gap float64, s *Sprites) *Wall {
	return &Wall{
		X:      x,
		Height: gapTop,
		Top:    gapTop - float64(s.WallTop.Height()),
		Bottom: gapTop + gap,
	}
}

// Advance moves the wall left by velocity.
func (w *Wall) Advance(velocity float64) {
	w.X -= velocity
}

// Collides reports whether any solid pixel of the car overlaps a solid
// pixel of either body.
func (w *Wall) Collides(c *Car, s *Sprites) bool {
	carRect := c.Rect(s)
	wx := int(math.Round(w.X))
	dx := wx - carRect.X

	topY := int(math.Round(w.Top))
	if carRect.Intersects(core.NewRect(wx, topY, s.WallTop.Width(), s.WallTop.Height())) &&
		s.Car.Overlap(s.WallTop, dx, topY-carRect.Y) {
		return true
	}

	bottomY := int(math.Round(w.Bottom))
	if carRect.Intersects(core.NewRect(wx, bottomY, s.WallBottom.Width(), s.WallBottom.Height())) &&
		s.Car.Overlap(s.WallBottom, dx, bottomY-carRect.Y) {
		return true
	}
	return false
}

// MarkPassed sets Passed the first time the wall's X falls below refX.
// It returns true only on that transition; Passed never reverts.
func (w *Wall) MarkPassed(refX float64) bool {
	if w.Passed || w.X >= refX {
		return false
	}
	w.Passed = true
	return true
}

// Trailing returns the X of the wall's right edge.
func (w *Wall) Trailing(s *Sprites) float64 {
	return w.X + float64(s.WallTop.Width())
}

// Offscreen reports whether the wall has fully left the playfield on the left.
func (w *Wall) Offscreen(s *Sprites) bool {
	return w.Trailing(s) < 0
}

// TargetWall returns the index of the wall a car at carX should steer for:
// the first wall whose trailing edge has not been passed. If every wall is
// behind the car the last one is returned.
func TargetWall(walls []*Wall, carX float64, s *Sprites) (int, error) {
	if len(walls) == 0 {
		return 0, &StateError{Op: "select target wall from empty set", ID: -1}
	}
	for i, w := range walls {
		if carX <= w.Trailing(s) {
			return i, nil
		}
	}
	return len(walls) - 1, nil
}
