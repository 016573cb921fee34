package cfgeom

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestParseWKT(t *testing.T) {
	tests := []struct {
		wkt   string
		typ   GeomType
		parts int
		hasZ  bool
		multi bool
	}{
		{"POINT (1 2)", Point, 1, false, false},
		{"POINT Z (1 2 3)", Point, 1, true, false},
		{"MULTIPOINT ((1 2), (3 4))", Point, 2, false, true},
		{"LINESTRING (0 0, 1 1, 2 0)", Line, 1, false, false},
		{"MULTILINESTRING ((0 0, 1 1), (2 2, 3 3))", Line, 2, false, true},
		{"POLYGON ((0 0, 10 0, 10 10, 0 0), (1 1, 2 2, 2 1, 1 1))", Polygon, 2, false, false},
		{"MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5), (5.2 5.1, 5.8 5.7, 5.8 5.1, 5.2 5.1)))", Polygon, 3, false, true},
		{"POLYGON Z ((0 0 1, 10 0 1, 10 10 1, 0 0 1))", Polygon, 1, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.wkt, func(t *testing.T) {
			g, err := ParseWKT(tt.wkt)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, g.Type())
			assert.Len(t, g.Parts(), tt.parts)
			assert.Equal(t, tt.hasZ, g.HasZ())
			assert.Equal(t, tt.multi, g.IsMultipart())

			out, err := g.WKT()
			require.NoError(t, err)
			again, err := ParseWKT(out)
			require.NoError(t, err)
			assert.True(t, g.Equal(again), "%s re-parsed from %s", tt.wkt, out)
		})
	}
}

func TestParseWKTErrors(t *testing.T) {
	_, err := ParseWKT("POINT (1")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = FromGeomT(geom.NewGeometryCollection())
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestFromGeomTMultiPolygonOffsets(t *testing.T) {
	mp := geom.NewMultiPolygonFlat(geom.XY,
		[]float64{0, 0, 1, 0, 1, 1, 5, 5, 6, 5, 6, 6, 5.5, 5.2, 5.8, 5.5, 5.8, 5.2},
		[][]int{{6}, {12, 18}})

	g, err := FromGeomT(mp)
	require.NoError(t, err)
	require.Len(t, g.Parts(), 3)
	assert.Equal(t, []float64{0, 1, 1}, g.Parts()[0].X())
	assert.Equal(t, []float64{5, 6, 6}, g.Parts()[1].X())
	assert.Equal(t, []float64{5.5, 5.8, 5.8}, g.Parts()[2].X())
	assert.True(t, g.Parts()[2].IsHole())
}

func TestGeomTLayout(t *testing.T) {
	withZ := mustGeometry(t, Line, mustPart(t, []float64{0, 1}, []float64{0, 1}, []float64{3, 4}, false))
	flat := mustGeometry(t, Line,
		mustPart(t, []float64{2, 3}, []float64{2, 3}, nil, false),
		mustPart(t, []float64{4, 5}, []float64{4, 5}, nil, false))
	c := mustContainer(t, withZ, flat)

	ts := c.GeomT()
	require.Len(t, ts, 2)
	for _, gt := range ts {
		assert.Equal(t, geom.XYZ, gt.Layout())
		_, ok := gt.(*geom.MultiLineString)
		assert.True(t, ok, "got %T", gt)
	}
	assert.True(t, math.IsNaN(ts[1].FlatCoords()[2]))

	back, err := ContainerFromGeomT(ts...)
	require.NoError(t, err)
	assert.True(t, c.Equal(back))
}
