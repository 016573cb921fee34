package cfgeom

// ImportCRA rebuilds a Container from contiguous ragged arrays. Omitted
// count arrays are inferred:
//
//   - no NodeCount: one node per geometry (single points);
//   - no PartNodeCount: one node per part for point geometries with node
//     counts (multipoints), otherwise one part per geometry;
//   - no RingType: every part is an exterior.
func ImportCRA(a *CRAArrays) (*Container, error) {
	if a == nil {
		return nil, formatf("no arrays to import")
	}
	if !a.GeomType.valid() {
		return nil, formatf("unrecognized geometry type %d", int(a.GeomType))
	}
	if len(a.X) != len(a.Y) {
		return nil, formatf("x and y arrays differ in length (%d != %d)", len(a.X), len(a.Y))
	}
	if a.Z != nil && len(a.Z) != len(a.X) {
		return nil, formatf("z array length %d does not match %d nodes", len(a.Z), len(a.X))
	}

	multipoint := a.GeomType == Point && a.NodeCount != nil

	nodeCounts := a.NodeCount
	if nodeCounts == nil {
		nodeCounts = repeatInt(1, len(a.X))
	}
	partCounts := a.PartNodeCount
	if partCounts == nil {
		if multipoint {
			partCounts = repeatInt(1, sumInts(nodeCounts))
		} else {
			partCounts = nodeCounts
		}
	}
	ringTypes := a.RingType
	if ringTypes == nil {
		ringTypes = repeatInt(RingOuter, len(partCounts))
	}
	if len(ringTypes) != len(partCounts) {
		return nil, formatf("%d ring types for %d parts", len(ringTypes), len(partCounts))
	}
	if i, ok := badRingType(ringTypes); ok {
		return nil, formatf("part %d: ring type %d is neither %d nor %d", i, ringTypes[i], RingOuter, RingInner)
	}

	geoms := make([]*Geometry, 0, len(nodeCounts))
	start, partIdx := 0, 0
	for gi, count := range nodeCounts {
		if count <= 0 {
			return nil, formatf("geometry %d: node count %d", gi, count)
		}
		var parts []*Part
		tally := 0
		for tally < count {
			if partIdx >= len(partCounts) {
				return nil, formatf("geometry %d: ran out of part node counts", gi)
			}
			n := partCounts[partIdx]
			end := start + n
			if n <= 0 || end > len(a.X) {
				return nil, formatf("geometry %d: part %d with %d nodes exceeds the node arrays", gi, partIdx, n)
			}
			p, err := sliceToPart(a.X[start:end], a.Y[start:end], sliceOrNil(a.Z, start, end), ringTypes[partIdx])
			if err != nil {
				return nil, err
			}
			parts = append(parts, p)
			start = end
			tally += n
			partIdx++
		}
		if tally != count {
			return nil, formatf("geometry %d: part node counts sum to %d, node count is %d", gi, tally, count)
		}
		g, err := NewGeometry(a.GeomType, parts...)
		if err != nil {
			return nil, err
		}
		geoms = append(geoms, g)
	}
	if start != len(a.X) {
		return nil, formatf("%d nodes left over after the last geometry", len(a.X)-start)
	}
	return NewContainer(geoms...)
}

// ImportVLEN rebuilds a Container from per-geometry variable-length
// arrays. Omitted arrays are inferred as for ImportCRA, per geometry.
func ImportVLEN(a *VLENArrays) (*Container, error) {
	if a == nil {
		return nil, formatf("no arrays to import")
	}
	if !a.GeomType.valid() {
		return nil, formatf("unrecognized geometry type %d", int(a.GeomType))
	}
	n := len(a.X)
	if len(a.Y) != n {
		return nil, formatf("x and y arrays differ in length (%d != %d)", n, len(a.Y))
	}
	for name, arr := range map[string]int{"z": len(a.Z), "part_node_count": len(a.PartNodeCount), "interior_ring": len(a.RingType)} {
		if arr != 0 && arr != n {
			return nil, formatf("%s array has %d geometries, expected %d", name, arr, n)
		}
	}

	geoms := make([]*Geometry, 0, n)
	for gi := 0; gi < n; gi++ {
		x, y := a.X[gi], a.Y[gi]
		if len(x) != len(y) {
			return nil, formatf("geometry %d: x and y differ in length (%d != %d)", gi, len(x), len(y))
		}
		if len(x) == 0 {
			return nil, formatf("geometry %d has no nodes", gi)
		}
		var z []float64
		if a.Z != nil {
			z = a.Z[gi]
			if len(z) != len(x) {
				return nil, formatf("geometry %d: z length %d does not match %d nodes", gi, len(z), len(x))
			}
		}

		var counts []int
		switch {
		case a.PartNodeCount != nil:
			counts = a.PartNodeCount[gi]
		case a.GeomType == Point:
			counts = repeatInt(1, len(x))
		default:
			counts = []int{len(x)}
		}
		var rings []int
		if a.RingType != nil {
			rings = a.RingType[gi]
		} else {
			rings = repeatInt(RingOuter, len(counts))
		}
		if len(rings) != len(counts) {
			return nil, formatf("geometry %d: %d ring types for %d parts", gi, len(rings), len(counts))
		}
		if i, ok := badRingType(rings); ok {
			return nil, formatf("geometry %d: part %d: ring type %d is neither %d nor %d", gi, i, rings[i], RingOuter, RingInner)
		}

		parts := make([]*Part, 0, len(counts))
		start := 0
		for pi, c := range counts {
			end := start + c
			if c <= 0 || end > len(x) {
				return nil, formatf("geometry %d: part %d with %d nodes exceeds the node arrays", gi, pi, c)
			}
			p, err := sliceToPart(x[start:end], y[start:end], sliceOrNil(z, start, end), rings[pi])
			if err != nil {
				return nil, err
			}
			parts = append(parts, p)
			start = end
		}
		if start != len(x) {
			return nil, formatf("geometry %d: %d nodes not covered by part node counts", gi, len(x)-start)
		}
		g, err := NewGeometry(a.GeomType, parts...)
		if err != nil {
			return nil, err
		}
		geoms = append(geoms, g)
	}
	return NewContainer(geoms...)
}

// badRingType returns the index of the first ring type that is neither
// RingOuter nor RingInner.
func badRingType(rings []int) (int, bool) {
	for i, r := range rings {
		if r != RingOuter && r != RingInner {
			return i, true
		}
	}
	return 0, false
}

// sliceToPart builds a Part, dropping z when every value is NaN.
func sliceToPart(x, y, z []float64, ring int) (*Part, error) {
	if z != nil && allNaN(z) {
		z = nil
	}
	return NewPart(x, y, z, ring == RingInner)
}

func sliceOrNil(s []float64, start, end int) []float64 {
	if s == nil {
		return nil
	}
	return s[start:end]
}

func repeatInt(v, n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func sumInts(s []int) int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}
