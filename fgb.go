package cfgeom

import (
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/pkg/errors"
)

// ErrNoIndex is returned when reading a whole FlatGeobuf file that has no
// spatial index; the reader can only reach features through the index.
var ErrNoIndex = errors.New("cfgeom: FlatGeobuf file has no spatial index")

// ErrNoFeatures is returned when a FlatGeobuf search matches no features.
var ErrNoFeatures = errors.New("cfgeom: no FlatGeobuf features in search area")

// CRS represents a coordinate reference system.
type CRS struct {
	Code        int    // EPSG code (e.g., 4326 for WGS84)
	Name        string // CRS name
	Description string // CRS description
	WKT         string // Well-Known Text representation
}

// WGS84 returns the standard WGS84 CRS (EPSG:4326).
func WGS84() *CRS {
	return &CRS{
		Code: 4326,
		Name: "WGS 84",
	}
}

// FGBOptions configures FlatGeobuf writing.
type FGBOptions struct {
	Name         string // Layer name
	Description  string // Layer description
	IncludeIndex bool   // Include spatial index (default: true)
	CRS          *CRS   // Coordinate reference system (optional)
}

// DefaultFGBOptions returns default options for writing FlatGeobuf files.
func DefaultFGBOptions() *FGBOptions {
	return &FGBOptions{
		IncludeIndex: true,
	}
}

// FGBColumn describes a property column in a FlatGeobuf file.
type FGBColumn struct {
	Name     string // Column name
	Type     string // Column type ("Int", "ULong", "Double", "String", etc.)
	Nullable bool
}

// FGBHeader contains metadata about a FlatGeobuf file.
type FGBHeader struct {
	Name          string      // Layer name
	Description   string      // Layer description
	GeometryType  string      // Geometry type ("Point", "Polygon", "Unknown", etc.)
	FeaturesCount uint64      // Number of features in the file
	Envelope      [4]float64  // Bounding box [minX, minY, maxX, maxY]
	CRS           *CRS        // Coordinate reference system
	HasIndex      bool        // Whether the file has a spatial index
	Columns       []FGBColumn // Property column schema
}

// fgbGeometryType returns the FlatGeobuf type for a container's WKT type.
func fgbGeometryType(c *Container) flattypes.GeometryType {
	switch c.WKTType() {
	case "Point":
		return flattypes.GeometryTypePoint
	case "MultiPoint":
		return flattypes.GeometryTypeMultiPoint
	case "LineString":
		return flattypes.GeometryTypeLineString
	case "MultiLineString":
		return flattypes.GeometryTypeMultiLineString
	case "Polygon":
		return flattypes.GeometryTypePolygon
	case "MultiPolygon":
		return flattypes.GeometryTypeMultiPolygon
	default:
		return flattypes.GeometryTypeUnknown
	}
}

// geometryToFGB converts g to a FlatGeobuf writer.Geometry. With hasZ,
// parts without z are written with NaN z values; with multi, a Multi*
// type is written even for a single part.
func geometryToFGB(g *Geometry, hasZ, multi bool, builder *flatbuffers.Builder) *writer.Geometry {
	fg := writer.NewGeometry(builder)

	switch g.geomType {
	case Point:
		xy, z, _ := flattenParts(g.parts, hasZ)
		if multi || len(g.parts) > 1 {
			fg.SetType(flattypes.GeometryTypeMultiPoint)
		} else {
			fg.SetType(flattypes.GeometryTypePoint)
		}
		fg.SetXY(xy)
		if hasZ {
			fg.SetZ(z)
		}

	case Line:
		xy, z, ends := flattenParts(g.parts, hasZ)
		if multi || len(g.parts) > 1 {
			fg.SetType(flattypes.GeometryTypeMultiLineString)
			fg.SetEnds(ends)
		} else {
			fg.SetType(flattypes.GeometryTypeLineString)
		}
		fg.SetXY(xy)
		if hasZ {
			fg.SetZ(z)
		}

	default:
		polys := g.polygons()
		if !multi && len(polys) == 1 {
			setPolygon(fg, polys[0], hasZ)
			break
		}
		fg.SetType(flattypes.GeometryTypeMultiPolygon)
		parts := make([]writer.Geometry, 0, len(polys))
		for _, rings := range polys {
			pg := writer.NewGeometry(builder)
			setPolygon(pg, rings, hasZ)
			parts = append(parts, *pg)
		}
		fg.SetParts(parts)
	}

	return fg
}

func setPolygon(fg *writer.Geometry, rings []*Part, hasZ bool) {
	xy, z, ends := flattenParts(rings, hasZ)
	fg.SetType(flattypes.GeometryTypePolygon)
	fg.SetXY(xy)
	fg.SetEnds(ends)
	if hasZ {
		fg.SetZ(z)
	}
}

// flattenParts interleaves x and y, collects z (NaN where a part has
// none) and records the cumulative node count at the end of each part.
func flattenParts(parts []*Part, hasZ bool) (xy, z []float64, ends []uint32) {
	total := 0
	for _, p := range parts {
		total += p.Len()
	}
	xy = make([]float64, 0, total*2)
	if hasZ {
		z = make([]float64, 0, total)
	}
	ends = make([]uint32, 0, len(parts))

	cumulative := uint32(0)
	for _, p := range parts {
		for i := range p.x {
			xy = append(xy, p.x[i], p.y[i])
		}
		if hasZ {
			z = appendZ(z, p)
		}
		cumulative += uint32(p.Len())
		ends = append(ends, cumulative)
	}
	return xy, z, ends
}

// geometryFromFGB converts a FlatGeobuf geometry to a Geometry.
func geometryFromFGB(fg *flattypes.Geometry) (*Geometry, error) {
	if fg == nil {
		return nil, invalidf("FlatGeobuf feature has no geometry")
	}

	switch t := fg.Type(); t {
	case flattypes.GeometryTypePoint:
		p, err := fgbPart(fg, 0, 1, false)
		if err != nil {
			return nil, err
		}
		return NewGeometry(Point, p)

	case flattypes.GeometryTypeMultiPoint:
		n := fg.XyLength() / 2
		parts := make([]*Part, 0, n)
		for i := 0; i < n; i++ {
			p, err := fgbPart(fg, i, i+1, false)
			if err != nil {
				return nil, err
			}
			parts = append(parts, p)
		}
		return NewGeometry(Point, parts...)

	case flattypes.GeometryTypeLineString, flattypes.GeometryTypeMultiLineString:
		parts, err := fgbParts(fg, func(int) bool { return false })
		if err != nil {
			return nil, err
		}
		return NewGeometry(Line, parts...)

	case flattypes.GeometryTypePolygon:
		parts, err := fgbParts(fg, func(i int) bool { return i > 0 })
		if err != nil {
			return nil, err
		}
		return NewGeometry(Polygon, parts...)

	case flattypes.GeometryTypeMultiPolygon:
		partsLen := fg.PartsLength()
		if partsLen == 0 {
			// Fallback: treat as single polygon
			parts, err := fgbParts(fg, func(i int) bool { return i > 0 })
			if err != nil {
				return nil, err
			}
			return NewGeometry(Polygon, parts...)
		}
		var parts []*Part
		for i := 0; i < partsLen; i++ {
			var poly flattypes.Geometry
			if !fg.Parts(&poly, i) {
				continue
			}
			pp, err := fgbParts(&poly, func(i int) bool { return i > 0 })
			if err != nil {
				return nil, err
			}
			parts = append(parts, pp...)
		}
		return NewGeometry(Polygon, parts...)

	default:
		return nil, &UnsupportedError{Op: "FlatGeobuf conversion", Type: flattypes.EnumNamesGeometryType[t]}
	}
}

// fgbParts splits fg's nodes at its ends; with no ends all nodes form one
// part.
func fgbParts(fg *flattypes.Geometry, hole func(int) bool) ([]*Part, error) {
	n := fg.XyLength() / 2
	endsLen := fg.EndsLength()
	if endsLen == 0 {
		p, err := fgbPart(fg, 0, n, hole(0))
		if err != nil {
			return nil, err
		}
		return []*Part{p}, nil
	}

	parts := make([]*Part, 0, endsLen)
	start := 0
	for i := 0; i < endsLen; i++ {
		end := int(fg.Ends(i))
		if end > n || end < start {
			return nil, invalidf("FlatGeobuf ring end %d outside %d nodes", end, n)
		}
		p, err := fgbPart(fg, start, end, hole(i))
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
		start = end
	}
	return parts, nil
}

// fgbPart copies nodes [start, end) of fg into a Part.
func fgbPart(fg *flattypes.Geometry, start, end int, hole bool) (*Part, error) {
	if end*2 > fg.XyLength() {
		return nil, invalidf("FlatGeobuf geometry has %d coordinates, need %d", fg.XyLength(), end*2)
	}
	n := end - start
	x := make([]float64, n)
	y := make([]float64, n)
	var z []float64
	if fg.ZLength() >= end {
		z = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		x[i] = fg.Xy((start + i) * 2)
		y[i] = fg.Xy((start+i)*2 + 1)
		if z != nil {
			z[i] = fg.Z(start + i)
		}
	}
	if z != nil && allNaN(z) {
		z = nil
	}
	return NewPart(x, y, z, hole)
}
