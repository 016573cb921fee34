package store

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDimensions(t *testing.T) {
	m := NewMemory()
	d, err := m.CreateDimension("node", 4)
	require.NoError(t, err)
	assert.Equal(t, Dimension{Name: "node", Len: 4}, d)

	// Same definition is a no-op.
	_, err = m.CreateDimension("node", 4)
	require.NoError(t, err)
	assert.Len(t, m.Dimensions(), 1)

	_, err = m.CreateDimension("node", 5)
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "dimension", conflict.Kind)

	_, err = m.CreateDimension("empty", 0)
	assert.Error(t, err)
}

func TestMemoryVLTypes(t *testing.T) {
	m := NewMemory()
	vt, err := m.CreateVLType("node_VLType", Float64)
	require.NoError(t, err)
	again, err := m.CreateVLType("node_VLType", Float64)
	require.NoError(t, err)
	assert.Same(t, vt, again)

	_, err = m.CreateVLType("node_VLType", Int32)
	var conflict *ConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestMemoryVariables(t *testing.T) {
	m := NewMemory()
	_, err := m.CreateDimension("node", 3)
	require.NoError(t, err)

	v, err := m.CreateVariable("x", Scalar(Float64), "node")
	require.NoError(t, err)
	assert.Equal(t, 3, v.Size())
	assert.Nil(t, v.Values())

	require.NoError(t, v.SetValues([]float64{1, 2, 3}))
	got, err := v.Float64s()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, got)

	assert.True(t, errors.Is(v.SetValues([]float64{1}), ErrTypeMismatch), "wrong length")
	assert.True(t, errors.Is(v.SetValues([]int32{1, 2, 3}), ErrTypeMismatch), "wrong type")

	_, err = m.CreateVariable("x", Scalar(Float64), "node")
	var conflict *ConflictError
	assert.True(t, errors.As(err, &conflict))

	_, err = m.CreateVariable("y", Scalar(Float64), "missing")
	assert.True(t, errors.Is(err, ErrUnknownDimension))

	_, err = m.CreateVariable("z", VarLen(&VLType{Name: "undefined", Base: Float64}), "node")
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	scalar, err := m.CreateVariable("container", Scalar(Int32))
	require.NoError(t, err)
	assert.Equal(t, 1, scalar.Size())
	assert.Empty(t, scalar.Dims())
}

func TestVariableConversions(t *testing.T) {
	m := NewMemory()
	_, err := m.CreateDimension("instance", 2)
	require.NoError(t, err)
	vt, err := m.CreateVLType("part_node_VLType", Int32)
	require.NoError(t, err)

	counts, err := m.CreateVariable("counts", Scalar(Int32), "instance")
	require.NoError(t, err)
	require.NoError(t, counts.SetValues([]int32{3, 4}))
	ints, err := counts.Ints()
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, ints)
	floats, err := counts.Float64s()
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, floats)
	_, err = counts.VLenInts()
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	parts, err := m.CreateVariable("parts", VarLen(vt), "instance")
	require.NoError(t, err)
	require.NoError(t, parts.SetValues([][]int32{{3, 3}, {4}}))
	nested, err := parts.VLenInts()
	require.NoError(t, err)
	assert.Equal(t, [][]int{{3, 3}, {4}}, nested)
	_, err = parts.Ints()
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestAttributes(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.SetAttr("Conventions", "CF-1.8"))
	require.NoError(t, m.SetAttr("Conventions", "CF-1.8"))
	require.NoError(t, m.SetAttr("count", 3))
	require.NoError(t, m.SetAttr("count", int32(3)), "int and int32 normalize alike")

	err := m.SetAttr("Conventions", "CF-1.7")
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "attribute", conflict.Kind)

	assert.True(t, errors.Is(m.SetAttr("bad", struct{}{}), ErrTypeMismatch))
	assert.Equal(t, []string{"Conventions", "count"}, m.AttrNames())

	v, _ := m.Attr("count")
	assert.Equal(t, []int32{3}, v)
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{Float64, Int32, Int64} {
		got, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	_, err := ParseType("float")
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}
