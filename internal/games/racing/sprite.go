package racing

import (
	"github.com/vovakirdan/racer/internal/config"
	"github.com/vovakirdan/racer/internal/core"
)

// crenelDepth is how many rows of a wall's open edge are notched.
const crenelDepth = 12

// Sprites holds the collision masks shared by every car and wall of a run.
type Sprites struct {
	Car        *core.Mask
	WallTop    *core.Mask // Open edge at the bottom, facing the gap
	WallBottom *core.Mask // Open edge at the top, facing the gap
}

// NewSprites builds the procedural silhouettes for the configured sizes.
func NewSprites(cfg *config.RacingConfig) *Sprites {
	bottom := core.MaskFromFunc(cfg.Walls.Width, cfg.Walls.Height, func(x, y int) bool {
		return wallSolid(x, y, cfg.Walls.Width)
	})
	return &Sprites{
		Car: core.MaskFromFunc(cfg.Car.Width, cfg.Car.Height, func(x, y int) bool {
			return carSolid(x, y, cfg.Car.Width, cfg.Car.Height)
		}),
		WallTop:    bottom.FlipVertical(),
		WallBottom: bottom,
	}
}

// carSolid describes a side-on car: a narrow cabin over a body with rounded corners.
func carSolid(x, y, w, h int) bool {
	cabinH := h / 3
	if y < cabinH {
		// Slanted windshield on the right, flat rear on the left.
		return x >= w/4 && x < 3*w/4-(cabinH-1-y)
	}

	r := h / 4
	top := cabinH
	cx := core.Clamp(x, r, w-1-r)
	cy := core.Clamp(y, top+r, h-1-r)
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

// wallSolid describes a brick wall body whose open edge (row 0) is crenellated.
func wallSolid(x, y, w int) bool {
	if y >= crenelDepth {
		return true
	}
	block := core.Max(w/8, 1)
	return (x/block)%2 == 0
}
