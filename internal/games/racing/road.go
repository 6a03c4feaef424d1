package racing

// Road is the cosmetic scrolling track: two equal segments that move left
// and leapfrog each other once fully offscreen. It has no gameplay effect.
type Road struct {
	Y        float64
	X1, X2   float64
	width    float64
	velocity float64
}

// NewRoad creates a road at y made of two segments of the given width.
func NewRoad(y, width, velocity float64) *Road {
	return &Road{
		Y:        y,
		X1:       0,
		X2:       width,
		width:    width,
		velocity: velocity,
	}
}

// Advance scrolls both segments and wraps the one that left the screen.
func (r *Road) Advance() {
	r.X1 -= r.velocity
	r.X2 -= r.velocity
	if r.X1+r.width < 0 {
		r.X1 = r.X2 + r.width
	}
	if r.X2+r.width < 0 {
		r.X2 = r.X1 + r.width
	}
}

// Width returns the width of one segment.
func (r *Road) Width() float64 {
	return r.width
}
