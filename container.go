package cfgeom

// Container is a non-empty collection of geometries of one type. It is the
// unit written to and read from a store.
type Container struct {
	geomType GeomType
	geoms    []*Geometry

	hasHole   bool
	multipart bool
	hasZ      bool
}

// NewContainer groups geometries into a Container. All geometries must
// share one geometry type.
func NewContainer(geoms ...*Geometry) (*Container, error) {
	if len(geoms) == 0 {
		return nil, invalidf("geometry must be provided")
	}
	c := &Container{geoms: append([]*Geometry(nil), geoms...)}
	for i, g := range geoms {
		if g == nil {
			return nil, invalidf("geometry %d is nil", i)
		}
		if i == 0 {
			c.geomType = g.Type()
		} else if g.Type() != c.geomType {
			return nil, invalidf("geometry container can only store one type, got %s and %s", c.geomType, g.Type())
		}
		c.hasHole = c.hasHole || g.HasHole()
		c.multipart = c.multipart || g.IsMultipart()
		c.hasZ = c.hasZ || g.HasZ()
	}
	return c, nil
}

// GeomType returns the geometry type shared by all members.
func (c *Container) GeomType() GeomType { return c.geomType }

// Len returns the number of geometries.
func (c *Container) Len() int { return len(c.geoms) }

// Geometry returns the i'th geometry.
func (c *Container) Geometry(i int) *Geometry { return c.geoms[i] }

// Geometries returns the geometries in order. The slice must not be
// modified.
func (c *Container) Geometries() []*Geometry { return c.geoms }

// HasHole reports whether any geometry has polygon holes.
func (c *Container) HasHole() bool { return c.hasHole }

// IsMultipart reports whether any geometry is multipart.
func (c *Container) IsMultipart() bool { return c.multipart }

// HasZ reports whether any geometry carries z values.
func (c *Container) HasZ() bool { return c.hasZ }

// WKTType returns the Well-Known Text type able to represent every member.
// A multipart type is returned when any member is multipart.
func (c *Container) WKTType() string {
	if c.multipart {
		return "Multi" + c.geomType.wkt()
	}
	return c.geomType.wkt()
}

// Orient orients every member; see Geometry.Orient.
func (c *Container) Orient(holesClockwise bool) error {
	for _, g := range c.geoms {
		if err := g.Orient(holesClockwise); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports whether two containers hold equal geometries in the same
// order.
func (c *Container) Equal(o *Container) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.geomType != o.geomType || len(c.geoms) != len(o.geoms) {
		return false
	}
	for i := range c.geoms {
		if !c.geoms[i].Equal(o.geoms[i]) {
			return false
		}
	}
	return true
}
