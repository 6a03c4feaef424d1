package core

// Mask is a 1-bit occupancy bitmap for a sprite. Set bits are solid pixels.
// Collision between two sprites is decided by overlapping set bits, so
// irregular silhouettes are not punished by their bounding boxes.
type Mask struct {
	width  int
	height int
	bits   []bool
}

// NewMask creates an empty mask of the given size.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		width:  width,
		height: height,
		bits:   make([]bool, width*height),
	}
}

// MaskFromFunc builds a mask by asking solid for every pixel.
func MaskFromFunc(width, height int, solid func(x, y int) bool) *Mask {
	m := NewMask(width, height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			m.bits[y*m.width+x] = solid(x, y)
		}
	}
	return m
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int {
	return m.width
}

// Height returns the mask height in pixels.
func (m *Mask) Height() int {
	return m.height
}

// Bounds returns the mask rectangle anchored at the origin.
func (m *Mask) Bounds() Rect {
	return NewRect(0, 0, m.width, m.height)
}

// Set marks a pixel solid or clear. Out-of-bounds coordinates are ignored.
func (m *Mask) Set(x, y int, solid bool) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.bits[y*m.width+x] = solid
}

// Get reports whether a pixel is solid. Out-of-bounds pixels are clear.
func (m *Mask) Get(x, y int) bool {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return false
	}
	return m.bits[y*m.width+x]
}

// Count returns the number of solid pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// FlipVertical returns a copy mirrored top to bottom.
func (m *Mask) FlipVertical() *Mask {
	flipped := NewMask(m.width, m.height)
	for y := 0; y < m.height; y++ {
		src := (m.height - 1 - y) * m.width
		copy(flipped.bits[y*m.width:(y+1)*m.width], m.bits[src:src+m.width])
	}
	return flipped
}

// Overlap reports whether other, placed at offset (dx, dy) from this mask's
// top-left corner, shares at least one solid pixel with this mask.
func (m *Mask) Overlap(other *Mask, dx, dy int) bool {
	area := m.Bounds().Intersection(other.Bounds().Translate(dx, dy))
	if area.Empty() {
		return false
	}
	for y := area.Y; y < area.Bottom(); y++ {
		for x := area.X; x < area.Right(); x++ {
			if m.bits[y*m.width+x] && other.bits[(y-dy)*other.width+(x-dx)] {
				return true
			}
		}
	}
	return false
}
