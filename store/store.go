// Package store defines the typed-array store used to persist CF geometry
// arrays: named dimensions, typed variables with attributes, and named
// variable-length element types.
package store

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownDimension is returned when a variable names a dimension the
	// store does not define.
	ErrUnknownDimension = errors.New("store: unknown dimension")
	// ErrTypeMismatch is returned when values or attributes have an
	// unsupported or mismatched Go type.
	ErrTypeMismatch = errors.New("store: type mismatch")
	// ErrVLenUnsupported is returned by stores whose data model has no
	// variable-length types.
	ErrVLenUnsupported = errors.New("store: variable-length types are not supported by this data model")
)

// ConflictError is returned when a dimension, variable, attribute or VLEN
// type is re-defined differently from its existing definition.
type ConflictError struct {
	Kind      string // "dimension", "variable", "attribute" or "vltype"
	Name      string
	Existing  interface{}
	Requested interface{}
}

func (e *ConflictError) Error() string {
	if e.Kind == "variable" {
		return fmt.Sprintf("store: variable %q already exists", e.Name)
	}
	return fmt.Sprintf("store: %s %q already exists with %v, requested %v",
		e.Kind, e.Name, e.Existing, e.Requested)
}

// Type is a numeric element type.
type Type int

// Element types.
const (
	Float64 Type = iota + 1
	Int32
	Int64
)

// String returns the CDL name of the type.
func (t Type) String() string {
	switch t {
	case Float64:
		return "double"
	case Int32:
		return "int"
	case Int64:
		return "int64"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType is the inverse of Type.String.
func ParseType(s string) (Type, error) {
	switch s {
	case "double":
		return Float64, nil
	case "int":
		return Int32, nil
	case "int64":
		return Int64, nil
	}
	return 0, errors.Wrapf(ErrTypeMismatch, "unknown type %q", s)
}

// VLType is a named variable-length element type.
type VLType struct {
	Name string
	Base Type
}

// DataType is the element type of a variable. VLen is set for
// variable-length element arrays, whose elements are sequences of VLen.Base.
type DataType struct {
	Base Type
	VLen *VLType
}

// Scalar returns the DataType for plain elements of t.
func Scalar(t Type) DataType { return DataType{Base: t} }

// VarLen returns the DataType for elements of the variable-length type vt.
func VarLen(vt *VLType) DataType { return DataType{Base: vt.Base, VLen: vt} }

// IsVLen reports whether elements are variable-length sequences.
func (d DataType) IsVLen() bool { return d.VLen != nil }

// String returns the CDL type name.
func (d DataType) String() string {
	if d.VLen != nil {
		return d.VLen.Name
	}
	return d.Base.String()
}

// Dimension is a named fixed-length axis.
type Dimension struct {
	Name string
	Len  int
}

// Store is a typed-array store. Attributes, dimensions, VLEN types and
// variables are get-or-create: re-creating one with the same definition is
// a no-op for dimensions, VLEN types and attributes and an error for
// variables.
type Store interface {
	// Attr returns a global attribute.
	Attr(name string) (interface{}, bool)
	// SetAttr sets a global attribute once. See Variable.SetAttr.
	SetAttr(name string, value interface{}) error
	// AttrNames returns global attribute names in definition order.
	AttrNames() []string

	Dimension(name string) (Dimension, bool)
	// CreateDimension defines a dimension, or returns the existing one if
	// it has the same length.
	CreateDimension(name string, length int) (Dimension, error)
	// Dimensions returns all dimensions in definition order.
	Dimensions() []Dimension

	VLType(name string) (*VLType, bool)
	// CreateVLType defines a VLEN type, or returns the existing one if it
	// has the same base type.
	CreateVLType(name string, base Type) (*VLType, error)
	// VLTypes returns all VLEN types in definition order.
	VLTypes() []*VLType

	Variable(name string) (*Variable, bool)
	// CreateVariable defines a new variable over existing dimensions.
	CreateVariable(name string, typ DataType, dims ...string) (*Variable, error)
	// Variables returns all variables in definition order.
	Variables() []*Variable
}

// attributes is an insertion-ordered attribute set.
type attributes struct {
	names  []string
	values map[string]interface{}
}

func (a *attributes) get(name string) (interface{}, bool) {
	v, ok := a.values[name]
	return v, ok
}

func (a *attributes) set(name string, value interface{}) error {
	v, err := normalizeAttr(value)
	if err != nil {
		return errors.Wrapf(err, "attribute %q", name)
	}
	if old, ok := a.values[name]; ok {
		if !reflect.DeepEqual(old, v) {
			return &ConflictError{Kind: "attribute", Name: name, Existing: old, Requested: v}
		}
		return nil
	}
	if a.values == nil {
		a.values = make(map[string]interface{})
	}
	a.names = append(a.names, name)
	a.values[name] = v
	return nil
}

func (a *attributes) list() []string {
	return append([]string(nil), a.names...)
}

// normalizeAttr converts scalar attribute values to one-element slices so
// equal values compare equal regardless of how they were given.
func normalizeAttr(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string, []float64, []int32, []int64:
		return v, nil
	case float64:
		return []float64{v}, nil
	case int32:
		return []int32{v}, nil
	case int64:
		return []int64{v}, nil
	case int:
		return []int32{int32(v)}, nil
	default:
		return nil, errors.Wrapf(ErrTypeMismatch, "unsupported attribute type %T", value)
	}
}
