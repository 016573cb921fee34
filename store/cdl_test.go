package store

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.SetAttr("Conventions", "CF-1.8"))
	_, err := m.CreateDimension("instance", 2)
	require.NoError(t, err)
	vt, err := m.CreateVLType("node_VLType", Float64)
	require.NoError(t, err)

	x, err := m.CreateVariable("x", VarLen(vt), "instance")
	require.NoError(t, err)
	require.NoError(t, x.SetAttr("axis", "X"))
	require.NoError(t, x.SetValues([][]float64{{1, 2.5}, {math.NaN()}}))

	c, err := m.CreateVariable("c", Scalar(Int32))
	require.NoError(t, err)
	require.NoError(t, c.SetAttr("count", 3))

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, "test", m))

	want := `netcdf test {
types:
  double(*) node_VLType ;
dimensions:
	instance = 2 ;
variables:
	node_VLType x(instance) ;
		x:axis = "X" ;
	int c ;
		c:count = 3 ;

// global attributes:
		:Conventions = "CF-1.8" ;
data:

 x = {1, 2.5}, {NaN} ;
}
`
	assert.Equal(t, want, buf.String())
}

func TestDumpEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, "empty", NewMemory()))
	assert.Equal(t, "netcdf empty {\n}\n", buf.String())
}
