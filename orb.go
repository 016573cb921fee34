package cfgeom

import (
	"strings"

	"github.com/paulmach/orb"
)

// FromOrb converts an orb geometry to a Geometry. Polygon exteriors are
// followed by their holes in order; a Bound becomes a rectangle polygon.
// Collections are not supported.
func FromOrb(geom orb.Geometry) (*Geometry, error) {
	if geom == nil {
		return nil, invalidf("orb geometry is nil")
	}

	switch v := geom.(type) {
	case orb.Point:
		return NewGeometry(Point, pointPart(v))

	case orb.MultiPoint:
		parts := make([]*Part, 0, len(v))
		for _, p := range v {
			parts = append(parts, pointPart(p))
		}
		return NewGeometry(Point, parts...)

	case orb.LineString:
		p, err := pointsPart(v, false)
		if err != nil {
			return nil, err
		}
		return NewGeometry(Line, p)

	case orb.MultiLineString:
		parts := make([]*Part, 0, len(v))
		for _, ls := range v {
			p, err := pointsPart(ls, false)
			if err != nil {
				return nil, err
			}
			parts = append(parts, p)
		}
		return NewGeometry(Line, parts...)

	case orb.Ring:
		return polygonFromOrb(orb.Polygon{v})

	case orb.Polygon:
		return polygonFromOrb(v)

	case orb.MultiPolygon:
		var parts []*Part
		for _, poly := range v {
			pp, err := polygonParts(poly)
			if err != nil {
				return nil, err
			}
			parts = append(parts, pp...)
		}
		return NewGeometry(Polygon, parts...)

	case orb.Bound:
		return polygonFromOrb(boundToPolygon(v))

	default:
		return nil, &UnsupportedError{Op: "orb conversion", Type: geom.GeoJSONType()}
	}
}

// ContainerFromOrb converts each orb geometry and collects them into a
// Container. All geometries must map to the same geometry type.
func ContainerFromOrb(geoms ...orb.Geometry) (*Container, error) {
	out := make([]*Geometry, 0, len(geoms))
	for _, g := range geoms {
		cg, err := FromOrb(g)
		if err != nil {
			return nil, err
		}
		out = append(out, cg)
	}
	return NewContainer(out...)
}

func pointPart(p orb.Point) *Part {
	return &Part{x: []float64{p[0]}, y: []float64{p[1]}}
}

func pointsPart(pts []orb.Point, hole bool) (*Part, error) {
	x := make([]float64, len(pts))
	y := make([]float64, len(pts))
	for i, p := range pts {
		x[i], y[i] = p[0], p[1]
	}
	return NewPart(x, y, nil, hole)
}

func polygonParts(poly orb.Polygon) ([]*Part, error) {
	parts := make([]*Part, 0, len(poly))
	for i, ring := range poly {
		p, err := pointsPart(ring, i > 0)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

func polygonFromOrb(poly orb.Polygon) (*Geometry, error) {
	parts, err := polygonParts(poly)
	if err != nil {
		return nil, err
	}
	return NewGeometry(Polygon, parts...)
}

func boundToPolygon(b orb.Bound) orb.Polygon {
	return orb.Polygon{
		orb.Ring{
			{b.Min[0], b.Min[1]},
			{b.Max[0], b.Min[1]},
			{b.Max[0], b.Max[1]},
			{b.Min[0], b.Max[1]},
			{b.Min[0], b.Min[1]},
		},
	}
}

// Orb converts g to an orb geometry. Multipart geometries become Multi*
// geometries. orb is two-dimensional, so z values are dropped.
func (g *Geometry) Orb() orb.Geometry {
	return g.orb(strings.HasPrefix(g.WKTType(), "Multi"))
}

// orb converts g, forcing a Multi* geometry when multi is set.
func (g *Geometry) orb(multi bool) orb.Geometry {
	switch g.geomType {
	case Point:
		mp := make(orb.MultiPoint, 0, len(g.parts))
		for _, p := range g.parts {
			mp = append(mp, orb.Point{p.x[0], p.y[0]})
		}
		if !multi && len(mp) == 1 {
			return mp[0]
		}
		return mp

	case Line:
		mls := make(orb.MultiLineString, 0, len(g.parts))
		for _, p := range g.parts {
			mls = append(mls, orb.LineString(partPoints(p)))
		}
		if !multi && len(mls) == 1 {
			return mls[0]
		}
		return mls

	default:
		mp := g.orbPolygons()
		if !multi && len(mp) == 1 {
			return mp[0]
		}
		return mp
	}
}

// orbPolygons converts each exterior and its holes to an orb.Polygon.
func (g *Geometry) orbPolygons() orb.MultiPolygon {
	groups := g.polygons()
	mp := make(orb.MultiPolygon, len(groups))
	for i, rings := range groups {
		mp[i] = make(orb.Polygon, len(rings))
		for j, p := range rings {
			mp[i][j] = orb.Ring(partPoints(p))
		}
	}
	return mp
}

func partPoints(p *Part) []orb.Point {
	pts := make([]orb.Point, len(p.x))
	for i := range p.x {
		pts[i] = orb.Point{p.x[i], p.y[i]}
	}
	return pts
}

// Orb converts every geometry in c. When any member is multipart all
// members are returned as Multi* geometries, so the result has a single
// geometry type.
func (c *Container) Orb() []orb.Geometry {
	multi := c.multipart
	out := make([]orb.Geometry, len(c.geoms))
	for i, g := range c.geoms {
		out[i] = g.orb(multi)
	}
	return out
}

// Bound returns the x/y bounding box of every node in c.
func (c *Container) Bound() orb.Bound {
	var b orb.Bound
	first := true
	for _, g := range c.geoms {
		for _, p := range g.parts {
			for i := range p.x {
				pt := orb.Point{p.x[i], p.y[i]}
				if first {
					b = pt.Bound()
					first = false
					continue
				}
				b = b.Extend(pt)
			}
		}
	}
	return b
}
