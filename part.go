package cfgeom

import (
	"math"
)

// Part is a single node sequence: one point, one line strand, or one
// polygon ring. A Part belongs to exactly one Geometry.
type Part struct {
	x, y, z []float64
	isHole  bool

	// clockwise caches IsClockwise; nil until first computed.
	clockwise *bool
}

// NewPart creates a Part from node coordinates. z may be nil when the part
// has no z values. The slices are copied.
func NewPart(x, y, z []float64, isHole bool) (*Part, error) {
	if len(x) == 0 {
		return nil, invalidf("x value(s) must be provided")
	}
	if len(y) == 0 {
		return nil, invalidf("y value(s) must be provided")
	}
	if len(x) != len(y) {
		return nil, invalidf("x and y must contain the same number of items (%d != %d)", len(x), len(y))
	}
	if len(z) != 0 && len(z) != len(x) {
		return nil, invalidf("x, y, and z must contain the same number of items (%d != %d)", len(x), len(z))
	}

	p := &Part{
		x:      append([]float64(nil), x...),
		y:      append([]float64(nil), y...),
		isHole: isHole,
	}
	if len(z) != 0 {
		p.z = append([]float64(nil), z...)
	}
	return p, nil
}

// X returns the x coordinates. The slice must not be modified.
func (p *Part) X() []float64 { return p.x }

// Y returns the y coordinates. The slice must not be modified.
func (p *Part) Y() []float64 { return p.y }

// Z returns the z coordinates, or nil if the part has none. The slice must
// not be modified.
func (p *Part) Z() []float64 { return p.z }

// Len returns the number of nodes.
func (p *Part) Len() int { return len(p.x) }

// IsHole reports whether the part is a polygon interior ring.
func (p *Part) IsHole() bool { return p.isHole }

// HasZ reports whether the part carries z values.
func (p *Part) HasZ() bool { return len(p.z) != 0 }

// SignedArea returns the shoelace area of the part. Clockwise node order
// gives a positive value and anticlockwise a negative one. Parts with fewer
// than three nodes have zero area.
func (p *Part) SignedArea() float64 {
	area, _ := signedArea(p.x, p.y)
	return area
}

// Area returns the absolute shoelace area of the part.
func (p *Part) Area() float64 {
	return math.Abs(p.SignedArea())
}

// IsClockwise reports whether the nodes are ordered clockwise. Parts with
// fewer than three nodes are never clockwise.
func (p *Part) IsClockwise() bool {
	if p.clockwise == nil {
		area, ok := signedArea(p.x, p.y)
		cw := ok && area > 0
		p.clockwise = &cw
	}
	return *p.clockwise
}

// Reverse reverses the node order in place.
func (p *Part) Reverse() {
	reverseFloats(p.x)
	reverseFloats(p.y)
	reverseFloats(p.z)
	p.clockwise = nil
}

// Equal reports whether two parts have the same nodes and hole flag. NaN z
// values compare equal to each other.
func (p *Part) Equal(o *Part) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.isHole == o.isHole &&
		floatsEqual(p.x, o.x) &&
		floatsEqual(p.y, o.y) &&
		floatsEqual(p.z, o.z)
}

// signedArea computes the shoelace sum over the closed node sequence. It
// reports false when fewer than three nodes are given.
func signedArea(x, y []float64) (float64, bool) {
	n := len(x)
	if n < 3 {
		return 0, false
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area -= x[i] * y[j]
		area += x[j] * y[i]
	}
	return area / 2, true
}

func reverseFloats(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && !(math.IsNaN(a[i]) && math.IsNaN(b[i])) {
			return false
		}
	}
	return true
}

func allNaN(s []float64) bool {
	for _, v := range s {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}
