package store

import (
	"github.com/pkg/errors"
)

// Variable is a named, typed array over zero or more dimensions.
type Variable struct {
	name  string
	typ   DataType
	dims  []string
	size  int
	attrs attributes

	values interface{}
}

// Name returns the variable name.
func (v *Variable) Name() string { return v.name }

// Type returns the element type.
func (v *Variable) Type() DataType { return v.typ }

// Dims returns the dimension names.
func (v *Variable) Dims() []string { return append([]string(nil), v.dims...) }

// Size returns the number of elements implied by the dimensions; 1 for
// scalar variables.
func (v *Variable) Size() int { return v.size }

// Attr returns a variable attribute.
func (v *Variable) Attr(name string) (interface{}, bool) { return v.attrs.get(name) }

// StringAttr returns a string attribute, or false if it is missing or not
// a string.
func (v *Variable) StringAttr(name string) (string, bool) {
	a, ok := v.attrs.get(name)
	if !ok {
		return "", false
	}
	s, ok := a.(string)
	return s, ok
}

// SetAttr sets an attribute. Setting an existing attribute to the same
// value is a no-op; a different value is a *ConflictError. Values may be
// string, float64, int, int32, int64 or slices of the numeric types.
func (v *Variable) SetAttr(name string, value interface{}) error {
	return v.attrs.set(name, value)
}

// AttrNames returns attribute names in definition order.
func (v *Variable) AttrNames() []string { return v.attrs.list() }

// Values returns the stored values, or nil if none were set. The concrete
// type is []float64, []int32 or []int64, or a slice of those for VLEN
// variables.
func (v *Variable) Values() interface{} { return v.values }

// SetValues stores values, checking the Go type against the element type
// and the length against the dimensions.
func (v *Variable) SetValues(values interface{}) error {
	n, err := checkValues(v.typ, values)
	if err != nil {
		return errors.Wrapf(err, "variable %q", v.name)
	}
	if n != v.size {
		return errors.Wrapf(ErrTypeMismatch, "variable %q: %d values for %d elements", v.name, n, v.size)
	}
	v.values = values
	return nil
}

// Float64s returns the values of a non-VLEN variable as float64s.
func (v *Variable) Float64s() ([]float64, error) {
	switch vals := v.values.(type) {
	case []float64:
		return vals, nil
	case []int32:
		out := make([]float64, len(vals))
		for i, x := range vals {
			out[i] = float64(x)
		}
		return out, nil
	case []int64:
		out := make([]float64, len(vals))
		for i, x := range vals {
			out[i] = float64(x)
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "variable %q holds %T, not numbers", v.name, v.values)
}

// Ints returns the values of a non-VLEN integer variable as ints.
func (v *Variable) Ints() ([]int, error) {
	switch vals := v.values.(type) {
	case []int32:
		return int32sToInts(vals), nil
	case []int64:
		return int64sToInts(vals), nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "variable %q holds %T, not integers", v.name, v.values)
}

// VLenFloat64s returns the values of a VLEN floating-point variable.
func (v *Variable) VLenFloat64s() ([][]float64, error) {
	if vals, ok := v.values.([][]float64); ok {
		return vals, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "variable %q holds %T, not variable-length floats", v.name, v.values)
}

// VLenInts returns the values of a VLEN integer variable as ints.
func (v *Variable) VLenInts() ([][]int, error) {
	switch vals := v.values.(type) {
	case [][]int32:
		out := make([][]int, len(vals))
		for i, s := range vals {
			out[i] = int32sToInts(s)
		}
		return out, nil
	case [][]int64:
		out := make([][]int, len(vals))
		for i, s := range vals {
			out[i] = int64sToInts(s)
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "variable %q holds %T, not variable-length integers", v.name, v.values)
}

// checkValues returns the element count of values if its Go type matches t.
func checkValues(t DataType, values interface{}) (int, error) {
	var ok bool
	var n int
	switch vals := values.(type) {
	case []float64:
		ok, n = !t.IsVLen() && t.Base == Float64, len(vals)
	case []int32:
		ok, n = !t.IsVLen() && t.Base == Int32, len(vals)
	case []int64:
		ok, n = !t.IsVLen() && t.Base == Int64, len(vals)
	case [][]float64:
		ok, n = t.IsVLen() && t.Base == Float64, len(vals)
	case [][]int32:
		ok, n = t.IsVLen() && t.Base == Int32, len(vals)
	case [][]int64:
		ok, n = t.IsVLen() && t.Base == Int64, len(vals)
	}
	if !ok {
		return 0, errors.Wrapf(ErrTypeMismatch, "%T values for %s elements", values, t)
	}
	return n, nil
}

func int32sToInts(s []int32) []int {
	out := make([]int, len(s))
	for i, x := range s {
		out[i] = int(x)
	}
	return out
}

func int64sToInts(s []int64) []int {
	out := make([]int, len(s))
	for i, x := range s {
		out[i] = int(x)
	}
	return out
}

// Memory is an in-memory Store supporting every element type, including
// variable-length types.
type Memory struct {
	attrs attributes

	dims     []Dimension
	dimIndex map[string]int

	vltypes []*VLType
	vlIndex map[string]*VLType

	vars     []*Variable
	varIndex map[string]*Variable
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		dimIndex: make(map[string]int),
		vlIndex:  make(map[string]*VLType),
		varIndex: make(map[string]*Variable),
	}
}

var _ Store = (*Memory)(nil)

// Attr implements Store.
func (m *Memory) Attr(name string) (interface{}, bool) { return m.attrs.get(name) }

// SetAttr implements Store.
func (m *Memory) SetAttr(name string, value interface{}) error { return m.attrs.set(name, value) }

// AttrNames implements Store.
func (m *Memory) AttrNames() []string { return m.attrs.list() }

// Dimension implements Store.
func (m *Memory) Dimension(name string) (Dimension, bool) {
	i, ok := m.dimIndex[name]
	if !ok {
		return Dimension{}, false
	}
	return m.dims[i], true
}

// CreateDimension implements Store.
func (m *Memory) CreateDimension(name string, length int) (Dimension, error) {
	if length <= 0 {
		return Dimension{}, errors.Errorf("store: dimension %q must have a positive length, got %d", name, length)
	}
	if d, ok := m.Dimension(name); ok {
		if d.Len != length {
			return Dimension{}, &ConflictError{Kind: "dimension", Name: name, Existing: d.Len, Requested: length}
		}
		return d, nil
	}
	d := Dimension{Name: name, Len: length}
	m.dimIndex[name] = len(m.dims)
	m.dims = append(m.dims, d)
	return d, nil
}

// Dimensions implements Store.
func (m *Memory) Dimensions() []Dimension { return append([]Dimension(nil), m.dims...) }

// VLType implements Store.
func (m *Memory) VLType(name string) (*VLType, bool) {
	vt, ok := m.vlIndex[name]
	return vt, ok
}

// CreateVLType implements Store.
func (m *Memory) CreateVLType(name string, base Type) (*VLType, error) {
	if vt, ok := m.vlIndex[name]; ok {
		if vt.Base != base {
			return nil, &ConflictError{Kind: "vltype", Name: name, Existing: vt.Base, Requested: base}
		}
		return vt, nil
	}
	vt := &VLType{Name: name, Base: base}
	m.vlIndex[name] = vt
	m.vltypes = append(m.vltypes, vt)
	return vt, nil
}

// VLTypes implements Store.
func (m *Memory) VLTypes() []*VLType { return append([]*VLType(nil), m.vltypes...) }

// Variable implements Store.
func (m *Memory) Variable(name string) (*Variable, bool) {
	v, ok := m.varIndex[name]
	return v, ok
}

// CreateVariable implements Store.
func (m *Memory) CreateVariable(name string, typ DataType, dims ...string) (*Variable, error) {
	if _, ok := m.varIndex[name]; ok {
		return nil, &ConflictError{Kind: "variable", Name: name}
	}
	if typ.VLen != nil {
		if vt, ok := m.vlIndex[typ.VLen.Name]; !ok || vt.Base != typ.Base {
			return nil, errors.Wrapf(ErrTypeMismatch, "variable %q uses undefined vltype %q", name, typ.VLen.Name)
		}
	}
	switch typ.Base {
	case Float64, Int32, Int64:
	default:
		return nil, errors.Wrapf(ErrTypeMismatch, "variable %q has unknown element type %v", name, typ.Base)
	}
	size := 1
	for _, d := range dims {
		dim, ok := m.Dimension(d)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownDimension, "variable %q: %q", name, d)
		}
		size *= dim.Len
	}
	v := &Variable{
		name: name,
		typ:  typ,
		dims: append([]string(nil), dims...),
		size: size,
	}
	m.varIndex[name] = v
	m.vars = append(m.vars, v)
	return v, nil
}

// Variables implements Store.
func (m *Memory) Variables() []*Variable { return append([]*Variable(nil), m.vars...) }
