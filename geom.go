package cfgeom

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// FromGeomT converts a go-geom geometry to a Geometry. Z values are kept
// when the layout has a Z axis; M values are dropped.
func FromGeomT(t geom.T) (*Geometry, error) {
	if t == nil {
		return nil, invalidf("go-geom geometry is nil")
	}
	// GeometryCollection has no flat coordinates of its own.
	if _, ok := t.(*geom.GeometryCollection); ok {
		return nil, &UnsupportedError{Op: "go-geom conversion", Type: "GeometryCollection"}
	}
	layout := t.Layout()
	r := flatReader{flat: t.FlatCoords(), stride: layout.Stride(), zIndex: layout.ZIndex()}

	switch v := t.(type) {
	case *geom.Point:
		p, err := r.part(0, len(r.flat), false)
		if err != nil {
			return nil, err
		}
		return NewGeometry(Point, p)

	case *geom.MultiPoint:
		parts := make([]*Part, 0, v.NumPoints())
		for i := 0; i < len(r.flat); i += r.stride {
			p, err := r.part(i, i+r.stride, false)
			if err != nil {
				return nil, err
			}
			parts = append(parts, p)
		}
		return NewGeometry(Point, parts...)

	case *geom.LineString:
		p, err := r.part(0, len(r.flat), false)
		if err != nil {
			return nil, err
		}
		return NewGeometry(Line, p)

	case *geom.MultiLineString:
		parts, err := r.parts(v.Ends(), func(int) bool { return false })
		if err != nil {
			return nil, err
		}
		return NewGeometry(Line, parts...)

	case *geom.LinearRing:
		p, err := r.part(0, len(r.flat), false)
		if err != nil {
			return nil, err
		}
		return NewGeometry(Polygon, p)

	case *geom.Polygon:
		parts, err := r.parts(v.Ends(), func(i int) bool { return i > 0 })
		if err != nil {
			return nil, err
		}
		return NewGeometry(Polygon, parts...)

	case *geom.MultiPolygon:
		var parts []*Part
		for _, ends := range v.Endss() {
			pp, err := r.parts(ends, func(i int) bool { return i > 0 })
			if err != nil {
				return nil, err
			}
			parts = append(parts, pp...)
			if len(ends) > 0 {
				r.offset = ends[len(ends)-1]
			}
		}
		return NewGeometry(Polygon, parts...)

	default:
		return nil, &UnsupportedError{Op: "go-geom conversion", Type: strings.TrimPrefix(typeName(t), "*geom.")}
	}
}

func typeName(t geom.T) string {
	return fmt.Sprintf("%T", t)
}

// flatReader slices parts out of go-geom flat coordinates.
type flatReader struct {
	flat   []float64
	stride int
	zIndex int
	// offset is where the next parts call starts.
	offset int
}

func (r *flatReader) part(start, end int, hole bool) (*Part, error) {
	n := (end - start) / r.stride
	x := make([]float64, n)
	y := make([]float64, n)
	var z []float64
	if r.zIndex >= 0 {
		z = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		c := r.flat[start+i*r.stride : start+(i+1)*r.stride]
		x[i], y[i] = c[0], c[1]
		if z != nil {
			z[i] = c[r.zIndex]
		}
	}
	if z != nil && allNaN(z) {
		z = nil
	}
	return NewPart(x, y, z, hole)
}

// parts reads one part per end offset, starting at r.offset.
func (r *flatReader) parts(ends []int, hole func(int) bool) ([]*Part, error) {
	parts := make([]*Part, 0, len(ends))
	start := r.offset
	for i, end := range ends {
		p, err := r.part(start, end, hole(i))
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
		start = end
	}
	return parts, nil
}

// ContainerFromGeomT converts each go-geom geometry and collects them into
// a Container.
func ContainerFromGeomT(ts ...geom.T) (*Container, error) {
	out := make([]*Geometry, 0, len(ts))
	for _, t := range ts {
		g, err := FromGeomT(t)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return NewContainer(out...)
}

// GeomT converts g to a go-geom geometry with an XY layout, or XYZ when g
// has z. Parts without z get NaN z values in an XYZ layout.
func (g *Geometry) GeomT() geom.T {
	return g.geomT(layoutFor(g.hasZ), strings.HasPrefix(g.WKTType(), "Multi"))
}

// GeomT converts every geometry in c with a shared layout and, when any
// member is multipart, Multi* types throughout.
func (c *Container) GeomT() []geom.T {
	layout := layoutFor(c.hasZ)
	out := make([]geom.T, len(c.geoms))
	for i, g := range c.geoms {
		out[i] = g.geomT(layout, c.multipart)
	}
	return out
}

func layoutFor(hasZ bool) geom.Layout {
	if hasZ {
		return geom.XYZ
	}
	return geom.XY
}

func (g *Geometry) geomT(layout geom.Layout, multi bool) geom.T {
	var flat []float64
	var ends []int
	for _, p := range g.parts {
		flat = appendFlat(flat, p, layout)
		ends = append(ends, len(flat))
	}

	switch g.geomType {
	case Point:
		if !multi && len(g.parts) == 1 {
			return geom.NewPointFlat(layout, flat)
		}
		return geom.NewMultiPointFlat(layout, flat)

	case Line:
		if !multi && len(g.parts) == 1 {
			return geom.NewLineStringFlat(layout, flat)
		}
		return geom.NewMultiLineStringFlat(layout, flat, ends)

	default:
		// A new polygon starts at every exterior.
		var endss [][]int
		for i, p := range g.parts {
			if !p.isHole || len(endss) == 0 {
				endss = append(endss, nil)
			}
			endss[len(endss)-1] = append(endss[len(endss)-1], ends[i])
		}
		if !multi && len(endss) == 1 {
			return geom.NewPolygonFlat(layout, flat, endss[0])
		}
		return geom.NewMultiPolygonFlat(layout, flat, endss)
	}
}

func appendFlat(dst []float64, p *Part, layout geom.Layout) []float64 {
	hasZ := layout.ZIndex() >= 0
	for i := range p.x {
		dst = append(dst, p.x[i], p.y[i])
		if !hasZ {
			continue
		}
		if p.HasZ() {
			dst = append(dst, p.z[i])
		} else {
			dst = append(dst, math.NaN())
		}
	}
	return dst
}

// ParseWKT parses a Well-Known Text geometry.
func ParseWKT(s string) (*Geometry, error) {
	t, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, invalidf("parsing WKT: %v", err)
	}
	return FromGeomT(t)
}

// WKT returns g as Well-Known Text.
func (g *Geometry) WKT() (string, error) {
	s, err := wkt.Marshal(g.GeomT())
	return s, errors.Wrap(err, "cfgeom: encoding WKT")
}
