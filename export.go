package cfgeom

import "math"

// CRAArrays is the contiguous ragged array form of a Container. A nil
// slice means the array is omitted because it can be inferred on decode.
type CRAArrays struct {
	GeomType GeomType

	X, Y []float64
	// Z holds NaN for nodes of parts without z. Nil when no part has z.
	Z []float64

	// NodeCount is the number of nodes per geometry.
	NodeCount []int
	// PartNodeCount is the number of nodes per part.
	PartNodeCount []int
	// RingType is RingOuter or RingInner per part.
	RingType []int
}

// VLENArrays is the variable-length array form of a Container: one
// sequence per geometry in every array. A nil slice means the array is
// omitted.
type VLENArrays struct {
	GeomType GeomType

	X, Y [][]float64
	Z    [][]float64

	PartNodeCount [][]int
	RingType      [][]int
}

// arrayLayout records which optional arrays a container needs.
type arrayLayout struct {
	hasZ          bool
	nodeCount     bool
	partNodeCount bool
	ringType      bool
}

func layoutOf(c *Container) arrayLayout {
	return arrayLayout{
		hasZ: c.HasZ(),
		// Single points always have one node per geometry.
		nodeCount: c.WKTType() != Point.wkt(),
		// Multipoint parts are always one node each.
		partNodeCount: c.HasHole() || (c.IsMultipart() && c.GeomType() != Point),
		ringType:      c.HasHole(),
	}
}

// canonicalize orients polygon containers so the stored node order is
// always anticlockwise exteriors and clockwise holes.
func canonicalize(c *Container) error {
	if c.GeomType() != Polygon {
		return nil
	}
	return c.Orient(true)
}

// ExportCRA flattens c into contiguous ragged arrays. Polygon containers
// are oriented in place first.
func ExportCRA(c *Container) (*CRAArrays, error) {
	if err := canonicalize(c); err != nil {
		return nil, err
	}
	l := layoutOf(c)

	nodes, parts := 0, 0
	for _, g := range c.Geometries() {
		nodes += g.NumNodes()
		parts += len(g.Parts())
	}

	a := &CRAArrays{
		GeomType: c.GeomType(),
		X:        make([]float64, 0, nodes),
		Y:        make([]float64, 0, nodes),
	}
	if l.hasZ {
		a.Z = make([]float64, 0, nodes)
	}
	if l.nodeCount {
		a.NodeCount = make([]int, 0, c.Len())
	}
	if l.partNodeCount {
		a.PartNodeCount = make([]int, 0, parts)
	}
	if l.ringType {
		a.RingType = make([]int, 0, parts)
	}

	for _, g := range c.Geometries() {
		count := 0
		for _, p := range g.Parts() {
			a.X = append(a.X, p.X()...)
			a.Y = append(a.Y, p.Y()...)
			if l.hasZ {
				a.Z = appendZ(a.Z, p)
			}
			if l.partNodeCount {
				a.PartNodeCount = append(a.PartNodeCount, p.Len())
			}
			if l.ringType {
				a.RingType = append(a.RingType, ringTypeOf(p))
			}
			count += p.Len()
		}
		if l.nodeCount {
			a.NodeCount = append(a.NodeCount, count)
		}
	}
	return a, nil
}

// ExportVLEN flattens c into one variable-length sequence per geometry.
// Polygon containers are oriented in place first.
func ExportVLEN(c *Container) (*VLENArrays, error) {
	if err := canonicalize(c); err != nil {
		return nil, err
	}
	l := layoutOf(c)

	n := c.Len()
	a := &VLENArrays{
		GeomType: c.GeomType(),
		X:        make([][]float64, n),
		Y:        make([][]float64, n),
	}
	if l.hasZ {
		a.Z = make([][]float64, n)
	}
	if l.partNodeCount {
		a.PartNodeCount = make([][]int, n)
	}
	if l.ringType {
		a.RingType = make([][]int, n)
	}

	for i, g := range c.Geometries() {
		nodes := g.NumNodes()
		x := make([]float64, 0, nodes)
		y := make([]float64, 0, nodes)
		var z []float64
		if l.hasZ {
			z = make([]float64, 0, nodes)
		}
		var counts, rings []int
		for _, p := range g.Parts() {
			x = append(x, p.X()...)
			y = append(y, p.Y()...)
			if l.hasZ {
				z = appendZ(z, p)
			}
			counts = append(counts, p.Len())
			rings = append(rings, ringTypeOf(p))
		}
		a.X[i], a.Y[i] = x, y
		if l.hasZ {
			a.Z[i] = z
		}
		if l.partNodeCount {
			a.PartNodeCount[i] = counts
		}
		if l.ringType {
			a.RingType[i] = rings
		}
	}
	return a, nil
}

// appendZ appends p's z values, or one NaN per node when p has none.
func appendZ(dst []float64, p *Part) []float64 {
	if p.HasZ() {
		return append(dst, p.Z()...)
	}
	for i := 0; i < p.Len(); i++ {
		dst = append(dst, math.NaN())
	}
	return dst
}

func ringTypeOf(p *Part) int {
	if p.IsHole() {
		return RingInner
	}
	return RingOuter
}
