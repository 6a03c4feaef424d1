package core

import "testing"

// diamond returns a mask whose solid pixels satisfy |x-c| + |y-c| <= c.
func diamond(size int) *Mask {
	c := size / 2
	return MaskFromFunc(size, size, func(x, y int) bool {
		dx, dy := x-c, y-c
		if dx < 0 {
			dx = -dx
		}
		if dy < 0 {
			dy = -dy
		}
		return dx+dy <= c
	})
}

func TestMaskOverlapFullRects(t *testing.T) {
	solid := func(int, int) bool { return true }
	a := MaskFromFunc(10, 10, solid)
	b := MaskFromFunc(10, 10, solid)

	tests := []struct {
		name     string
		dx, dy   int
		expected bool
	}{
		{"same position", 0, 0, true},
		{"partial overlap", 9, 9, true},
		{"adjacent right", 10, 0, false},
		{"adjacent below", 0, 10, false},
		{"negative offset overlap", -9, -3, true},
		{"far away", 100, 100, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.Overlap(b, tc.dx, tc.dy); got != tc.expected {
				t.Errorf("Overlap(%d, %d) = %v, expected %v", tc.dx, tc.dy, got, tc.expected)
			}
		})
	}
}

func TestMaskOverlapIsPixelAccurate(t *testing.T) {
	a := diamond(11)
	b := diamond(11)

	// Bounding boxes overlap in the corner region but the diamonds do not.
	if a.Overlap(b, 8, 8) {
		t.Error("Diamonds touching only by their bounding boxes should not overlap")
	}
	if !a.Overlap(b, 5, 5) {
		t.Error("Diamonds sharing their edges should overlap")
	}
	// Symmetry
	if a.Overlap(b, 8, 8) != b.Overlap(a, -8, -8) {
		t.Error("Overlap should be symmetric under negated offset")
	}
}

func TestMaskFlipVertical(t *testing.T) {
	m := NewMask(3, 4)
	m.Set(1, 0, true)
	m.Set(2, 3, true)

	f := m.FlipVertical()
	if !f.Get(1, 3) || !f.Get(2, 0) {
		t.Error("FlipVertical should mirror rows")
	}
	if f.Count() != m.Count() {
		t.Errorf("FlipVertical changed pixel count: %d vs %d", f.Count(), m.Count())
	}
}

func TestMaskOutOfBounds(t *testing.T) {
	m := NewMask(2, 2)
	m.Set(-1, 0, true)
	m.Set(5, 5, true)
	if m.Count() != 0 {
		t.Errorf("Out-of-bounds Set should be ignored, got %d solid pixels", m.Count())
	}
	if m.Get(-1, -1) {
		t.Error("Out-of-bounds Get should be false")
	}
}
