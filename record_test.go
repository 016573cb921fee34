package cfgeom

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalPart(t *testing.T) {
	p := mustPart(t, []float64{0, 5, 10}, []float64{0, 5, 0}, nil, false)
	b, err := MarshalPart(p)
	require.NoError(t, err)

	want := `{
    "_is_clockwise": true,
    "is_hole": false,
    "x": [
        0,
        5,
        10
    ],
    "y": [
        0,
        5,
        0
    ],
    "z": null
}`
	assert.Equal(t, want, string(b))

	got, err := UnmarshalPart(b)
	require.NoError(t, err)
	assert.True(t, p.Equal(got))
}

func TestMarshalPartNaNZ(t *testing.T) {
	p := mustPart(t, []float64{1, 2}, []float64{3, 4}, []float64{math.NaN(), 7}, false)
	b, err := MarshalPart(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "null,")

	got, err := UnmarshalPart(b)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got.Z()[0]))
	assert.Equal(t, 7.0, got.Z()[1])
}

func TestContainerRecordStable(t *testing.T) {
	for name, c := range roundTripContainers(t) {
		t.Run(name, func(t *testing.T) {
			first, err := MarshalContainer(c)
			require.NoError(t, err)

			decoded, err := UnmarshalContainer(first)
			require.NoError(t, err)
			assert.True(t, c.Equal(decoded))

			second, err := MarshalContainer(decoded)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(first, second), "re-encoding changed the record:\n%s\n%s", first, second)
		})
	}
}

func TestGeometryRecord(t *testing.T) {
	g := polygonWithHole(t)
	b, err := MarshalGeometry(g)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"geom_type": "polygon"`)
	assert.Contains(t, string(b), `"_has_hole": true`)

	got, err := UnmarshalGeometry(b)
	require.NoError(t, err)
	assert.True(t, g.Equal(got))
}

func TestRecordDerivedMismatch(t *testing.T) {
	c := mustContainer(t, polygonWithHole(t))
	b, err := MarshalContainer(c)
	require.NoError(t, err)

	tests := []struct {
		name     string
		old, new string
	}{
		{"container has_hole", `"_has_hole": true,
    "_has_z"`, `"_has_hole": false,
    "_has_z"`},
		{"wkt type", `"_wkt_type": "Polygon"`, `"_wkt_type": "MultiPolygon"`},
		{"geometry multipart", `"_is_multipart": false,
            "geom_type"`, `"_is_multipart": true,
            "geom_type"`},
		{"part clockwise", `"_is_clockwise": false`, `"_is_clockwise": true`},
		{"geom type", `"geom_type": "polygon",
    "geoms"`, `"geom_type": "line",
    "geoms"`},
		{"unknown field", `"geom_type": "polygon",
    "geoms"`, `"geom_type": "polygon",
    "extra": 1,
    "geoms"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Contains(t, string(b), tt.old)
			data := strings.Replace(string(b), tt.old, tt.new, 1)
			_, err := UnmarshalContainer([]byte(data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}
}

func TestUnmarshalMalformed(t *testing.T) {
	for _, in := range []string{"", "{", `{"geoms": 5}`, `{"geom_type": "polygon", "geoms": []}`} {
		_, err := UnmarshalContainer([]byte(in))
		assert.True(t, errors.Is(err, ErrValidation), "input %q: got %v", in, err)
	}
}
