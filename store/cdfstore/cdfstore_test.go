package cdfstore

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tingold/orb-cfgeom/store"
)

func TestCreateOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.nc")

	f, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, f.SetAttr("Conventions", "CF-1.8"))
	_, err = f.CreateDimension("instance", 2)
	require.NoError(t, err)
	_, err = f.CreateDimension("node", 5)
	require.NoError(t, err)

	gc, err := f.CreateVariable("geometry_container", store.Scalar(store.Int32))
	require.NoError(t, err)
	require.NoError(t, gc.SetAttr("geometry_type", "line"))
	require.NoError(t, gc.SetAttr("node_coordinates", "x y"))

	x, err := f.CreateVariable("x", store.Scalar(store.Float64), "node")
	require.NoError(t, err)
	require.NoError(t, x.SetAttr("axis", "X"))
	require.NoError(t, x.SetValues([]float64{0, 1, 2, math.NaN(), 4}))

	nc, err := f.CreateVariable("node_count", store.Scalar(store.Int32), "instance")
	require.NoError(t, err)
	require.NoError(t, nc.SetValues([]int32{2, 3}))

	require.NoError(t, f.Close())
	require.NoError(t, f.Close(), "second Close is a no-op")

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	conv, ok := r.Attr("Conventions")
	require.True(t, ok)
	assert.Equal(t, "CF-1.8", conv)

	node, ok := r.Dimension("node")
	require.True(t, ok)
	assert.Equal(t, 5, node.Len)

	v, ok := r.Variable("geometry_container")
	require.True(t, ok)
	gt, _ := v.StringAttr("geometry_type")
	assert.Equal(t, "line", gt)
	assert.Empty(t, v.Dims())

	v, ok = r.Variable("x")
	require.True(t, ok)
	axis, _ := v.StringAttr("axis")
	assert.Equal(t, "X", axis)
	if diff := cmp.Diff([]float64{0, 1, 2, math.NaN(), 4}, v.Values(), cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("x mismatch (-want +got):\n%s", diff)
	}

	v, ok = r.Variable("node_count")
	require.True(t, ok)
	ints, err := v.Ints()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, ints)
}

func TestClassicModelLimits(t *testing.T) {
	f, err := Create(filepath.Join(t.TempDir(), "limits.nc"))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.CreateVLType("node_VLType", store.Float64)
	assert.True(t, errors.Is(err, store.ErrVLenUnsupported))

	_, err = f.CreateDimension("instance", 1)
	require.NoError(t, err)
	_, err = f.CreateVariable("ids", store.Scalar(store.Int64), "instance")
	assert.True(t, errors.Is(err, store.ErrTypeMismatch))

	_, err = f.CreateVariable("x", store.VarLen(&store.VLType{Name: "node_VLType", Base: store.Float64}), "instance")
	assert.True(t, errors.Is(err, store.ErrVLenUnsupported))
}

func TestCloseWithoutVariables(t *testing.T) {
	f, err := Create(filepath.Join(t.TempDir(), "empty.nc"))
	require.NoError(t, err)
	_, err = f.CreateDimension("instance", 1)
	require.NoError(t, err)
	require.NoError(t, f.SetAttr("Conventions", "CF-1.8"))

	err = f.Close()
	assert.True(t, errors.Is(err, ErrNoVariables), "got %v", err)
	assert.NoError(t, f.Close())
}

func TestAbort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aborted.nc")
	f, err := Create(path)
	require.NoError(t, err)
	_, err = f.CreateDimension("instance", 1)
	require.NoError(t, err)
	v, err := f.CreateVariable("x", store.Scalar(store.Float64), "instance")
	require.NoError(t, err)
	require.NoError(t, v.SetValues([]float64{1}))

	require.NoError(t, f.Abort())
	assert.NoError(t, f.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.nc"))
	assert.Error(t, err)
}

func TestOpenNotNetCDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.nc")
	f, err := Create(path)
	require.NoError(t, err)
	_, err = f.f.WriteString("not a netCDF file")
	require.NoError(t, err)
	require.NoError(t, f.f.Close())

	_, err = Open(path)
	assert.Error(t, err)
}
