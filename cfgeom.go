// Package cfgeom encodes point, line and polygon geometries as the flat
// arrays defined by the Climate and Forecast (CF) conventions for simple
// geometries, and decodes them again.
//
// Geometries are held in a small model (Part, Geometry, Container). A
// Container can be flattened into contiguous ragged arrays (CRA) or
// variable-length arrays (VLEN), written to a typed-array store such as a
// netCDF file, and converted to and from orb, go-geom and FlatGeobuf
// geometries.
package cfgeom

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	ErrValidation  = errors.New("cfgeom: invalid geometry")
	ErrUnsupported = errors.New("cfgeom: unsupported operation")
	ErrFormat      = errors.New("cfgeom: invalid store format")
	ErrNotFound    = errors.New("cfgeom: geometry container not found")
)

// ValidationError reports a malformed Part, Geometry or Container.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "cfgeom: invalid geometry: " + e.Reason
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalidf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// UnsupportedError reports an operation applied to a geometry kind that
// does not support it.
type UnsupportedError struct {
	Op   string
	Type string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("cfgeom: %s is not supported for %s geometries", e.Op, e.Type)
}

// Is reports whether target is ErrUnsupported.
func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

// FormatError reports an inconsistency between a store and the CF
// geometry encoding.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cfgeom: %s: %v", e.Reason, e.Err)
	}
	return "cfgeom: " + e.Reason
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// Unwrap returns the underlying store error, if any.
func (e *FormatError) Unwrap() error { return e.Err }

func formatf(format string, args ...interface{}) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that a store holds no geometry container variable.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("cfgeom: geometry container %q not found", e.Name)
	}
	return "cfgeom: no geometry container variable found"
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// GeomType is the CF geometry type shared by all parts of a Geometry.
type GeomType int

// Geometry types.
const (
	Point GeomType = iota + 1
	Line
	Polygon
)

// String returns the CF attribute value: "point", "line" or "polygon".
func (t GeomType) String() string {
	switch t {
	case Point:
		return "point"
	case Line:
		return "line"
	case Polygon:
		return "polygon"
	default:
		return fmt.Sprintf("GeomType(%d)", int(t))
	}
}

// wkt returns the single-part Well-Known Text type name.
func (t GeomType) wkt() string {
	switch t {
	case Point:
		return "Point"
	case Line:
		return "LineString"
	case Polygon:
		return "Polygon"
	default:
		return ""
	}
}

// minNodes is the smallest node count a part of this type may have.
func (t GeomType) minNodes() int {
	switch t {
	case Polygon:
		return 3
	case Line:
		return 2
	default:
		return 1
	}
}

func (t GeomType) valid() bool {
	return t == Point || t == Line || t == Polygon
}

// ParseGeomType parses a CF geometry_type attribute value. Matching is
// case-insensitive.
func ParseGeomType(s string) (GeomType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "point":
		return Point, nil
	case "line":
		return Line, nil
	case "polygon":
		return Polygon, nil
	}
	return 0, invalidf("geometry type must be point, line, or polygon, got %q", s)
}

// Ring types stored in the interior_ring array.
const (
	RingOuter = 0
	RingInner = 1
)

// Encoding selects the array layout used by the exporter and store adapter.
type Encoding int

const (
	// CRA stores all nodes in single contiguous ragged arrays.
	CRA Encoding = iota
	// VLEN stores one variable-length array per geometry.
	VLEN
)

func (e Encoding) String() string {
	switch e {
	case CRA:
		return "cra"
	case VLEN:
		return "vlen"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// ParseEncoding parses "cra" or "vlen", case-insensitive.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "cra":
		return CRA, nil
	case "vlen":
		return VLEN, nil
	}
	return 0, errors.Errorf("cfgeom: unknown encoding %q", s)
}
