package cfgeom

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartClockwise(t *testing.T) {
	p, err := NewPart([]float64{0, 5, 10}, []float64{0, 5, 0}, nil, false)
	require.NoError(t, err)

	assert.True(t, p.IsClockwise())
	assert.Equal(t, 25.0, p.Area())
	assert.Equal(t, 25.0, p.SignedArea())
}

func TestPartAreaSign(t *testing.T) {
	tests := []struct {
		name      string
		x, y      []float64
		clockwise bool
		area      float64
	}{
		{"square cw", []float64{0, 0, 1, 1}, []float64{0, 1, 1, 0}, true, 1},
		{"square ccw", []float64{0, 1, 1, 0}, []float64{0, 0, 1, 1}, false, 1},
		{"triangle ccw", []float64{10, 5, 0}, []float64{0, 5, 0}, false, 25},
		{"two nodes", []float64{0, 1}, []float64{0, 1}, false, 0},
		{"one node", []float64{3}, []float64{4}, false, 0},
		{"collinear", []float64{0, 1, 2}, []float64{0, 1, 2}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPart(tt.x, tt.y, nil, false)
			require.NoError(t, err)
			assert.Equal(t, tt.clockwise, p.IsClockwise())
			assert.InDelta(t, tt.area, p.Area(), 1e-12)
			if tt.clockwise {
				assert.Greater(t, p.SignedArea(), 0.0)
			}
		})
	}
}

func TestPartReverse(t *testing.T) {
	p, err := NewPart([]float64{0, 5, 10}, []float64{0, 5, 0}, []float64{1, 2, 3}, false)
	require.NoError(t, err)
	require.True(t, p.IsClockwise())

	p.Reverse()
	assert.Equal(t, []float64{10, 5, 0}, p.X())
	assert.Equal(t, []float64{0, 5, 0}, p.Y())
	assert.Equal(t, []float64{3, 2, 1}, p.Z())
	assert.False(t, p.IsClockwise(), "orientation must be recomputed after Reverse")
	assert.Equal(t, 25.0, p.Area())

	p.Reverse()
	assert.True(t, p.IsClockwise())
}

func TestPartCopiesInput(t *testing.T) {
	x := []float64{1, 2}
	y := []float64{3, 4}
	p, err := NewPart(x, y, nil, false)
	require.NoError(t, err)
	x[0] = 99
	assert.Equal(t, 1.0, p.X()[0])
}

func TestNewPartValidation(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z []float64
	}{
		{"no x", nil, []float64{1}, nil},
		{"no y", []float64{1}, nil, nil},
		{"x y mismatch", []float64{1, 2}, []float64{1}, nil},
		{"z mismatch", []float64{1, 2}, []float64{1, 2}, []float64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPart(tt.x, tt.y, tt.z, false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
			var verr *ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}
}

func TestPartHasZ(t *testing.T) {
	p, err := NewPart([]float64{1}, []float64{2}, nil, false)
	require.NoError(t, err)
	assert.False(t, p.HasZ())
	assert.Nil(t, p.Z())

	p, err = NewPart([]float64{1}, []float64{2}, []float64{3}, false)
	require.NoError(t, err)
	assert.True(t, p.HasZ())
}

func TestPartEqual(t *testing.T) {
	nan := math.NaN()
	a, _ := NewPart([]float64{1, 2}, []float64{3, 4}, []float64{nan, 1}, false)
	b, _ := NewPart([]float64{1, 2}, []float64{3, 4}, []float64{nan, 1}, false)
	c, _ := NewPart([]float64{1, 2}, []float64{3, 4}, []float64{nan, 1}, true)

	assert.True(t, a.Equal(b), "NaN z values compare equal")
	assert.False(t, a.Equal(c), "hole flag differs")
	assert.False(t, a.Equal(nil))
}
