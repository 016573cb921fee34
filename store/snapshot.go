package store

import (
	"encoding/json"
	"io"
	"math"

	"github.com/pkg/errors"
)

// The JSON snapshot keeps a whole store, VLEN types included, in one
// document. NaN floats are written as null.

type snapshot struct {
	Attributes []snapshotAttr `json:"attributes,omitempty"`
	Dimensions []snapshotDim  `json:"dimensions,omitempty"`
	VLTypes    []snapshotVL   `json:"vltypes,omitempty"`
	Variables  []snapshotVar  `json:"variables,omitempty"`
}

type snapshotAttr struct {
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type snapshotDim struct {
	Name   string `json:"name"`
	Length int    `json:"length"`
}

type snapshotVL struct {
	Name string `json:"name"`
	Base string `json:"base"`
}

type snapshotVar struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	VLType     string          `json:"vltype,omitempty"`
	Dimensions []string        `json:"dimensions,omitempty"`
	Attributes []snapshotAttr  `json:"attributes,omitempty"`
	Values     json.RawMessage `json:"values,omitempty"`
}

// nullableFloats marshals NaN as null and null as NaN.
type nullableFloats []float64

func (f nullableFloats) MarshalJSON() ([]byte, error) {
	out := make([]*float64, len(f))
	for i := range f {
		if !math.IsNaN(f[i]) {
			out[i] = &f[i]
		}
	}
	return json.Marshal(out)
}

func (f *nullableFloats) UnmarshalJSON(data []byte) error {
	var in []*float64
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := make([]float64, len(in))
	for i, v := range in {
		if v == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *v
		}
	}
	*f = out
	return nil
}

// WriteJSON writes a JSON snapshot of s.
func WriteJSON(w io.Writer, s Store) error {
	var snap snapshot
	var err error
	if snap.Attributes, err = snapshotAttrs(s.AttrNames(), s.Attr); err != nil {
		return err
	}
	for _, d := range s.Dimensions() {
		snap.Dimensions = append(snap.Dimensions, snapshotDim{Name: d.Name, Length: d.Len})
	}
	for _, vt := range s.VLTypes() {
		snap.VLTypes = append(snap.VLTypes, snapshotVL{Name: vt.Name, Base: vt.Base.String()})
	}
	for _, v := range s.Variables() {
		sv := snapshotVar{
			Name:       v.Name(),
			Type:       v.Type().Base.String(),
			Dimensions: v.Dims(),
		}
		if v.Type().VLen != nil {
			sv.VLType = v.Type().VLen.Name
		}
		if sv.Attributes, err = snapshotAttrs(v.AttrNames(), v.Attr); err != nil {
			return errors.Wrapf(err, "variable %q", v.Name())
		}
		if v.Values() != nil {
			if sv.Values, err = marshalValues(v.Values()); err != nil {
				return errors.Wrapf(err, "variable %q", v.Name())
			}
		}
		snap.Variables = append(snap.Variables, sv)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&snap)
}

func snapshotAttrs(names []string, get func(string) (interface{}, bool)) ([]snapshotAttr, error) {
	var out []snapshotAttr
	for _, name := range names {
		val, _ := get(name)
		typ := "string"
		switch val.(type) {
		case []float64:
			typ = Float64.String()
		case []int32:
			typ = Int32.String()
		case []int64:
			typ = Int64.String()
		}
		raw, err := marshalValues(val)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %q", name)
		}
		out = append(out, snapshotAttr{Name: name, Type: typ, Value: raw})
	}
	return out, nil
}

func marshalValues(v interface{}) (json.RawMessage, error) {
	switch vals := v.(type) {
	case []float64:
		return json.Marshal(nullableFloats(vals))
	case [][]float64:
		nested := make([]nullableFloats, len(vals))
		for i, s := range vals {
			nested[i] = s
		}
		return json.Marshal(nested)
	}
	return json.Marshal(v)
}

// ReadJSON reads a JSON snapshot into a new Memory store.
func ReadJSON(r io.Reader) (*Memory, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, errors.Wrap(err, "store: decoding snapshot")
	}

	m := NewMemory()
	for _, a := range snap.Attributes {
		val, err := unmarshalAttr(a)
		if err != nil {
			return nil, err
		}
		if err := m.SetAttr(a.Name, val); err != nil {
			return nil, err
		}
	}
	for _, d := range snap.Dimensions {
		if _, err := m.CreateDimension(d.Name, d.Length); err != nil {
			return nil, err
		}
	}
	for _, vt := range snap.VLTypes {
		base, err := ParseType(vt.Base)
		if err != nil {
			return nil, err
		}
		if _, err := m.CreateVLType(vt.Name, base); err != nil {
			return nil, err
		}
	}
	for _, sv := range snap.Variables {
		base, err := ParseType(sv.Type)
		if err != nil {
			return nil, err
		}
		typ := Scalar(base)
		if sv.VLType != "" {
			vt, ok := m.VLType(sv.VLType)
			if !ok {
				return nil, errors.Wrapf(ErrTypeMismatch, "variable %q uses undefined vltype %q", sv.Name, sv.VLType)
			}
			typ = VarLen(vt)
		}
		v, err := m.CreateVariable(sv.Name, typ, sv.Dimensions...)
		if err != nil {
			return nil, err
		}
		for _, a := range sv.Attributes {
			val, err := unmarshalAttr(a)
			if err != nil {
				return nil, errors.Wrapf(err, "variable %q", sv.Name)
			}
			if err := v.SetAttr(a.Name, val); err != nil {
				return nil, err
			}
		}
		if len(sv.Values) == 0 {
			continue
		}
		vals, err := unmarshalValues(typ, sv.Values)
		if err != nil {
			return nil, errors.Wrapf(err, "variable %q", sv.Name)
		}
		if err := v.SetValues(vals); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func unmarshalAttr(a snapshotAttr) (interface{}, error) {
	if a.Type == "string" {
		var s string
		err := json.Unmarshal(a.Value, &s)
		return s, errors.Wrapf(err, "attribute %q", a.Name)
	}
	t, err := ParseType(a.Type)
	if err != nil {
		return nil, errors.Wrapf(err, "attribute %q", a.Name)
	}
	v, err := unmarshalValues(Scalar(t), a.Value)
	return v, errors.Wrapf(err, "attribute %q", a.Name)
}

func unmarshalValues(t DataType, raw json.RawMessage) (interface{}, error) {
	var dst interface{}
	switch {
	case t.IsVLen() && t.Base == Float64:
		var nested []nullableFloats
		if err := json.Unmarshal(raw, &nested); err != nil {
			return nil, err
		}
		out := make([][]float64, len(nested))
		for i, s := range nested {
			out[i] = s
		}
		return out, nil
	case t.Base == Float64:
		var f nullableFloats
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, err
		}
		return []float64(f), nil
	case t.IsVLen() && t.Base == Int32:
		dst = new([][]int32)
	case t.IsVLen() && t.Base == Int64:
		dst = new([][]int64)
	case t.Base == Int32:
		dst = new([]int32)
	case t.Base == Int64:
		dst = new([]int64)
	default:
		return nil, errors.Wrapf(ErrTypeMismatch, "unknown element type %v", t)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, err
	}
	switch d := dst.(type) {
	case *[][]int32:
		return *d, nil
	case *[][]int64:
		return *d, nil
	case *[]int32:
		return *d, nil
	default:
		return *(d.(*[]int64)), nil
	}
}
