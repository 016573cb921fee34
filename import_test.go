package cfgeom

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCRAPolygonWithHole(t *testing.T) {
	c, err := ImportCRA(&CRAArrays{
		GeomType:      Polygon,
		X:             []float64{10, 5, 0, 1, 5, 9},
		Y:             []float64{0, 5, 0, 1, 4, 1},
		NodeCount:     []int{6},
		PartNodeCount: []int{3, 3},
		RingType:      []int{0, 1},
	})
	require.NoError(t, err)

	want := polygonWithHole(t)
	require.NoError(t, want.Orient(true))
	require.Equal(t, 1, c.Len())
	assert.True(t, want.Equal(c.Geometry(0)))
	assert.True(t, c.HasHole())
	assert.False(t, c.IsMultipart())
}

func TestImportInference(t *testing.T) {
	t.Run("points", func(t *testing.T) {
		c, err := ImportCRA(&CRAArrays{GeomType: Point, X: []float64{1, 2, 3}, Y: []float64{4, 5, 6}})
		require.NoError(t, err)
		assert.Equal(t, 3, c.Len())
		assert.Equal(t, "Point", c.WKTType())
	})
	t.Run("multipoints", func(t *testing.T) {
		c, err := ImportCRA(&CRAArrays{GeomType: Point, X: []float64{1, 2, 3}, Y: []float64{4, 5, 6}, NodeCount: []int{2, 1}})
		require.NoError(t, err)
		require.Equal(t, 2, c.Len())
		assert.Len(t, c.Geometry(0).Parts(), 2)
		assert.Equal(t, "MultiPoint", c.WKTType())
	})
	t.Run("single lines", func(t *testing.T) {
		c, err := ImportCRA(&CRAArrays{GeomType: Line, X: []float64{0, 1, 2, 3, 4}, Y: []float64{0, 1, 2, 3, 4}, NodeCount: []int{2, 3}})
		require.NoError(t, err)
		require.Equal(t, 2, c.Len())
		assert.Equal(t, 3, c.Geometry(1).Parts()[0].Len())
	})
	t.Run("vlen points", func(t *testing.T) {
		c, err := ImportVLEN(&VLENArrays{GeomType: Point, X: [][]float64{{1, 2}, {3}}, Y: [][]float64{{4, 5}, {6}}})
		require.NoError(t, err)
		assert.Len(t, c.Geometry(0).Parts(), 2)
	})
	t.Run("all NaN z is no z", func(t *testing.T) {
		nan := math.NaN()
		c, err := ImportCRA(&CRAArrays{
			GeomType:  Line,
			X:         []float64{0, 1, 2, 3},
			Y:         []float64{0, 1, 2, 3},
			Z:         []float64{1, 2, nan, nan},
			NodeCount: []int{2, 2},
		})
		require.NoError(t, err)
		assert.True(t, c.Geometry(0).HasZ())
		assert.False(t, c.Geometry(1).HasZ())
		assert.True(t, c.HasZ())
	})
}

func TestImportFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		in   *CRAArrays
	}{
		{"nil", nil},
		{"bad type", &CRAArrays{GeomType: 0, X: []float64{1}, Y: []float64{1}}},
		{"x y length", &CRAArrays{GeomType: Point, X: []float64{1, 2}, Y: []float64{1}}},
		{"z length", &CRAArrays{GeomType: Point, X: []float64{1}, Y: []float64{1}, Z: []float64{1, 2}}},
		{"leftover nodes", &CRAArrays{GeomType: Line, X: []float64{0, 1, 2}, Y: []float64{0, 1, 2}, NodeCount: []int{2}}},
		{"node count overrun", &CRAArrays{GeomType: Line, X: []float64{0, 1}, Y: []float64{0, 1}, NodeCount: []int{3}}},
		{"part counts disagree", &CRAArrays{GeomType: Line, X: []float64{0, 1, 2, 3, 4}, Y: []float64{0, 1, 2, 3, 4}, NodeCount: []int{4}, PartNodeCount: []int{2, 3}}},
		{"too few ring types", &CRAArrays{GeomType: Polygon, X: make([]float64, 6), Y: make([]float64, 6), NodeCount: []int{6}, PartNodeCount: []int{3, 3}, RingType: []int{0}}},
		{"too many ring types", &CRAArrays{GeomType: Polygon, X: []float64{0, 1, 1}, Y: []float64{0, 0, 1}, NodeCount: []int{3}, RingType: []int{0, 1, 1}}},
		{"unknown ring type", &CRAArrays{GeomType: Polygon, X: []float64{0, 1, 1}, Y: []float64{0, 0, 1}, NodeCount: []int{3}, RingType: []int{7}}},
		{"zero node count", &CRAArrays{GeomType: Line, X: []float64{0, 1}, Y: []float64{0, 1}, NodeCount: []int{0, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImportCRA(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat), "got %v", err)
		})
	}
}

func TestImportVLENFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		in   *VLENArrays
	}{
		{"nil", nil},
		{"geometry counts", &VLENArrays{GeomType: Line, X: [][]float64{{0, 1}}, Y: [][]float64{{0, 1}, {2, 3}}}},
		{"node counts", &VLENArrays{GeomType: Line, X: [][]float64{{0, 1}}, Y: [][]float64{{0}}}},
		{"z array", &VLENArrays{GeomType: Line, X: [][]float64{{0, 1}}, Y: [][]float64{{0, 1}}, Z: [][]float64{{0}}}},
		{"uncovered nodes", &VLENArrays{GeomType: Line, X: [][]float64{{0, 1, 2}}, Y: [][]float64{{0, 1, 2}}, PartNodeCount: [][]int{{2}}}},
		{"part array length", &VLENArrays{GeomType: Line, X: [][]float64{{0, 1}}, Y: [][]float64{{0, 1}}, PartNodeCount: [][]int{{2}, {2}}}},
		{"no nodes", &VLENArrays{GeomType: Point, X: [][]float64{{}}, Y: [][]float64{{}}}},
		{"too many ring types", &VLENArrays{GeomType: Polygon, X: [][]float64{{0, 1, 1}}, Y: [][]float64{{0, 0, 1}}, RingType: [][]int{{0, 1, 1}}}},
		{"unknown ring type", &VLENArrays{GeomType: Polygon, X: [][]float64{{0, 1, 1}}, Y: [][]float64{{0, 0, 1}}, RingType: [][]int{{7}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImportVLEN(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat), "got %v", err)
		})
	}
}

func TestImportInvalidGeometry(t *testing.T) {
	// Counts are consistent but a polygon ring has two nodes.
	_, err := ImportCRA(&CRAArrays{GeomType: Polygon, X: []float64{0, 1}, Y: []float64{0, 1}, NodeCount: []int{2}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

// roundTripContainers covers every optional array combination.
func roundTripContainers(t testing.TB) map[string]*Container {
	square := func(x0, y0, size float64, hole bool, z []float64) *Part {
		return mustPart(t,
			[]float64{x0, x0 + size, x0 + size, x0},
			[]float64{y0, y0, y0 + size, y0 + size}, z, hole)
	}
	return map[string]*Container{
		"points": mustContainer(t, pointGeom(t, 1, 2), pointGeom(t, 3, 4)),
		"points with z": mustContainer(t,
			mustGeometry(t, Point, mustPart(t, []float64{1}, []float64{2}, []float64{3}, false)),
			pointGeom(t, 4, 5)),
		"multipoints": mustContainer(t, pointGeom(t, 1, 2, 3, 4), pointGeom(t, 5, 6)),
		"lines": mustContainer(t,
			mustGeometry(t, Line, mustPart(t, []float64{0, 1}, []float64{0, 1}, nil, false)),
			mustGeometry(t, Line, mustPart(t, []float64{2, 3, 4}, []float64{2, 3, 4}, nil, false))),
		"multilines with z": mustContainer(t,
			mustGeometry(t, Line,
				mustPart(t, []float64{0, 1}, []float64{0, 1}, []float64{5, 6}, false),
				mustPart(t, []float64{2, 3}, []float64{2, 3}, nil, false)),
			mustGeometry(t, Line, mustPart(t, []float64{4, 5}, []float64{4, 5}, nil, false))),
		"polygons":           mustContainer(t, mustGeometry(t, Polygon, square(0, 0, 1, false, nil))),
		"polygon with hole":  mustContainer(t, polygonWithHole(t)),
		"mixed multipolygon": mustContainer(t,
			mustGeometry(t, Polygon, square(0, 0, 10, false, nil), square(1, 1, 2, true, nil), square(20, 0, 5, false, nil)),
			mustGeometry(t, Polygon, square(0, 0, 3, false, []float64{1, 1, 1, 1}))),
	}
}

func TestRoundTrip(t *testing.T) {
	for name, c := range roundTripContainers(t) {
		t.Run(name+"/cra", func(t *testing.T) {
			a, err := ExportCRA(c)
			require.NoError(t, err)
			got, err := ImportCRA(a)
			require.NoError(t, err)
			assert.True(t, c.Equal(got))
			assert.Equal(t, c.WKTType(), got.WKTType())
			assert.Equal(t, c.HasZ(), got.HasZ())
		})
		t.Run(name+"/vlen", func(t *testing.T) {
			a, err := ExportVLEN(c)
			require.NoError(t, err)
			got, err := ImportVLEN(a)
			require.NoError(t, err)
			assert.True(t, c.Equal(got))
			assert.Equal(t, c.HasHole(), got.HasHole())
		})
	}
}
