package cfgeom

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// Records are indented JSON objects with keys in lexical order. Derived
// fields are written with a leading underscore; on decode they are
// recomputed and must agree with the stored values.

const recordIndent = "    "

type partRecord struct {
	IsClockwise *bool      `json:"_is_clockwise"`
	IsHole      bool       `json:"is_hole"`
	X           jsonFloats `json:"x"`
	Y           jsonFloats `json:"y"`
	Z           jsonFloats `json:"z"`
}

type geometryRecord struct {
	HasHole     bool          `json:"_has_hole"`
	HasZ        bool          `json:"_has_z"`
	IsMultipart bool          `json:"_is_multipart"`
	GeomType    string        `json:"geom_type"`
	Parts       []*partRecord `json:"parts"`
}

type containerRecord struct {
	HasHole     bool              `json:"_has_hole"`
	HasZ        bool              `json:"_has_z"`
	IsMultipart bool              `json:"_is_multipart"`
	WKTType     string            `json:"_wkt_type"`
	GeomType    string            `json:"geom_type"`
	Geoms       []*geometryRecord `json:"geoms"`
}

// jsonFloats encodes NaN as null, and a nil slice as null.
type jsonFloats []float64

func (f jsonFloats) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}
	out := make([]*float64, len(f))
	for i := range f {
		if !math.IsNaN(f[i]) {
			out[i] = &f[i]
		}
	}
	return json.Marshal(out)
}

func (f *jsonFloats) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = nil
		return nil
	}
	var in []*float64
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := make([]float64, len(in))
	for i, v := range in {
		if v == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *v
		}
	}
	*f = out
	return nil
}

func encodeRecord(v interface{}) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", recordIndent)
	return b, errors.Wrap(err, "cfgeom: encoding record")
}

func decodeRecord(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return invalidf("decoding record: %v", err)
	}
	return nil
}

func partToRecord(p *Part) *partRecord {
	cw := p.IsClockwise()
	r := &partRecord{IsClockwise: &cw, IsHole: p.IsHole(), X: p.X(), Y: p.Y()}
	if p.HasZ() {
		r.Z = p.Z()
	}
	return r
}

func partFromRecord(r *partRecord) (*Part, error) {
	if r == nil {
		return nil, invalidf("part record is null")
	}
	p, err := NewPart(r.X, r.Y, r.Z, r.IsHole)
	if err != nil {
		return nil, err
	}
	if r.IsClockwise != nil && *r.IsClockwise != p.IsClockwise() {
		return nil, invalidf("_is_clockwise is %t but the nodes are %s", *r.IsClockwise, orientationName(p.IsClockwise()))
	}
	return p, nil
}

func orientationName(clockwise bool) string {
	if clockwise {
		return "clockwise"
	}
	return "anticlockwise"
}

func geometryToRecord(g *Geometry) *geometryRecord {
	r := &geometryRecord{
		HasHole:     g.HasHole(),
		HasZ:        g.HasZ(),
		IsMultipart: g.IsMultipart(),
		GeomType:    g.Type().String(),
		Parts:       make([]*partRecord, len(g.Parts())),
	}
	for i, p := range g.Parts() {
		r.Parts[i] = partToRecord(p)
	}
	return r
}

func geometryFromRecord(r *geometryRecord) (*Geometry, error) {
	if r == nil {
		return nil, invalidf("geometry record is null")
	}
	t, err := ParseGeomType(r.GeomType)
	if err != nil {
		return nil, err
	}
	parts := make([]*Part, len(r.Parts))
	for i, pr := range r.Parts {
		if parts[i], err = partFromRecord(pr); err != nil {
			return nil, errors.Wrapf(err, "part %d", i)
		}
	}
	g, err := NewGeometry(t, parts...)
	if err != nil {
		return nil, err
	}
	if err := checkDerived(r.HasHole, r.HasZ, r.IsMultipart, g.HasHole(), g.HasZ(), g.IsMultipart()); err != nil {
		return nil, err
	}
	return g, nil
}

func checkDerived(hole, z, multi, wantHole, wantZ, wantMulti bool) error {
	switch {
	case hole != wantHole:
		return invalidf("_has_hole is %t, computed %t", hole, wantHole)
	case z != wantZ:
		return invalidf("_has_z is %t, computed %t", z, wantZ)
	case multi != wantMulti:
		return invalidf("_is_multipart is %t, computed %t", multi, wantMulti)
	}
	return nil
}

// MarshalPart encodes p as a JSON record.
func MarshalPart(p *Part) ([]byte, error) {
	return encodeRecord(partToRecord(p))
}

// UnmarshalPart decodes a record written by MarshalPart.
func UnmarshalPart(data []byte) (*Part, error) {
	var r partRecord
	if err := decodeRecord(data, &r); err != nil {
		return nil, err
	}
	return partFromRecord(&r)
}

// MarshalGeometry encodes g as a JSON record.
func MarshalGeometry(g *Geometry) ([]byte, error) {
	return encodeRecord(geometryToRecord(g))
}

// UnmarshalGeometry decodes a record written by MarshalGeometry.
func UnmarshalGeometry(data []byte) (*Geometry, error) {
	var r geometryRecord
	if err := decodeRecord(data, &r); err != nil {
		return nil, err
	}
	return geometryFromRecord(&r)
}

// MarshalContainer encodes c as a JSON record. Re-encoding a decoded
// record yields identical bytes.
func MarshalContainer(c *Container) ([]byte, error) {
	r := &containerRecord{
		HasHole:     c.HasHole(),
		HasZ:        c.HasZ(),
		IsMultipart: c.IsMultipart(),
		WKTType:     c.WKTType(),
		GeomType:    c.GeomType().String(),
		Geoms:       make([]*geometryRecord, c.Len()),
	}
	for i, g := range c.Geometries() {
		r.Geoms[i] = geometryToRecord(g)
	}
	return encodeRecord(r)
}

// UnmarshalContainer decodes a record written by MarshalContainer. The
// geometries are rebuilt through NewGeometry and NewContainer, and a
// *ValidationError is returned when a stored derived field disagrees with
// the recomputed one.
func UnmarshalContainer(data []byte) (*Container, error) {
	var r containerRecord
	if err := decodeRecord(data, &r); err != nil {
		return nil, err
	}
	t, err := ParseGeomType(r.GeomType)
	if err != nil {
		return nil, err
	}
	geoms := make([]*Geometry, len(r.Geoms))
	for i, gr := range r.Geoms {
		if geoms[i], err = geometryFromRecord(gr); err != nil {
			return nil, errors.Wrapf(err, "geometry %d", i)
		}
	}
	c, err := NewContainer(geoms...)
	if err != nil {
		return nil, err
	}
	if c.GeomType() != t {
		return nil, invalidf("geom_type is %s but the geometries are %s", t, c.GeomType())
	}
	if err := checkDerived(r.HasHole, r.HasZ, r.IsMultipart, c.HasHole(), c.HasZ(), c.IsMultipart()); err != nil {
		return nil, err
	}
	if r.WKTType != c.WKTType() {
		return nil, invalidf("_wkt_type is %q, computed %q", r.WKTType, c.WKTType())
	}
	return c, nil
}
