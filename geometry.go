package cfgeom

// Geometry is an ordered sequence of parts sharing one geometry type. A
// polygon geometry lists each exterior ring followed by its holes.
type Geometry struct {
	geomType GeomType
	parts    []*Part

	hasHole   bool
	multipart bool
	hasZ      bool
}

// NewGeometry validates parts against the geometry type and returns the
// Geometry that owns them.
func NewGeometry(t GeomType, parts ...*Part) (*Geometry, error) {
	if !t.valid() {
		return nil, invalidf("geometry type must be point, line, or polygon")
	}
	if len(parts) == 0 {
		return nil, invalidf("geometry part(s) must be provided")
	}

	g := &Geometry{
		geomType: t,
		parts:    append([]*Part(nil), parts...),
	}

	exteriors := 0
	for i, p := range parts {
		if p == nil {
			return nil, invalidf("geometry part %d is nil", i)
		}
		n := p.Len()
		switch {
		case t == Polygon && n < 3:
			return nil, invalidf("polygon parts require at least three nodes, part %d has %d", i, n)
		case t == Line && n < 2:
			return nil, invalidf("line parts require at least two nodes, part %d has %d", i, n)
		case t == Point && n != 1:
			return nil, invalidf("points must have one node per part, part %d has %d", i, n)
		}
		if p.IsHole() {
			if t != Polygon {
				return nil, invalidf("only polygon parts can be holes")
			}
			g.hasHole = true
		} else {
			exteriors++
		}
		if p.HasZ() {
			g.hasZ = true
		}
	}
	if t == Polygon && parts[0].IsHole() {
		return nil, invalidf("first polygon part cannot be a hole")
	}
	g.multipart = exteriors > 1

	return g, nil
}

// Type returns the geometry type.
func (g *Geometry) Type() GeomType { return g.geomType }

// Parts returns the parts in order. The slice must not be modified.
func (g *Geometry) Parts() []*Part { return g.parts }

// NumNodes returns the total node count over all parts.
func (g *Geometry) NumNodes() int {
	n := 0
	for _, p := range g.parts {
		n += p.Len()
	}
	return n
}

// HasHole reports whether any part is a polygon hole.
func (g *Geometry) HasHole() bool { return g.hasHole }

// IsMultipart reports whether the geometry has more than one non-hole part.
func (g *Geometry) IsMultipart() bool { return g.multipart }

// HasZ reports whether any part carries z values.
func (g *Geometry) HasZ() bool { return g.hasZ }

// WKTType returns the matching Well-Known Text type, such as "LineString"
// or "MultiPolygon".
func (g *Geometry) WKTType() string {
	if g.multipart {
		return "Multi" + g.geomType.wkt()
	}
	return g.geomType.wkt()
}

// Orient reorders polygon rings in place. With holesClockwise, exterior
// rings become anticlockwise and holes clockwise; otherwise the opposite.
func (g *Geometry) Orient(holesClockwise bool) error {
	if g.geomType != Polygon {
		return &UnsupportedError{Op: "orient", Type: g.geomType.String()}
	}
	for _, p := range g.parts {
		// Holes want clockwise exactly when holesClockwise; exteriors the reverse.
		wantCW := p.IsHole() == holesClockwise
		if p.IsClockwise() != wantCW {
			p.Reverse()
		}
	}
	return nil
}

// Equal reports whether two geometries have the same type and equal parts.
func (g *Geometry) Equal(o *Geometry) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.geomType != o.geomType || len(g.parts) != len(o.parts) {
		return false
	}
	for i := range g.parts {
		if !g.parts[i].Equal(o.parts[i]) {
			return false
		}
	}
	return true
}

// polygons groups polygon parts into one exterior followed by its holes,
// starting a new group at every exterior.
func (g *Geometry) polygons() [][]*Part {
	var out [][]*Part
	for _, p := range g.parts {
		if !p.isHole || len(out) == 0 {
			out = append(out, []*Part{p})
			continue
		}
		out[len(out)-1] = append(out[len(out)-1], p)
	}
	return out
}
