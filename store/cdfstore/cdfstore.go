// Package cdfstore is a store.Store backed by a netCDF classic file.
//
// Definitions and data are held in memory and written to the file on
// Close, because the classic format needs the full header before any data.
// The classic data model has neither variable-length types nor 64-bit
// integers; both are rejected at definition time.
package cdfstore

import (
	"os"

	"github.com/ctessum/cdf"
	"github.com/pkg/errors"

	"github.com/tingold/orb-cfgeom/store"
)

// ErrNoVariables is returned by Close when a created file defines no
// variables.
var ErrNoVariables = errors.New("cdfstore: no variables to write")

// File is a netCDF classic file opened for reading or created for writing.
type File struct {
	*store.Memory

	f        *os.File
	writable bool
	closed   bool
}

var _ store.Store = (*File)(nil)

// Create creates or truncates the file at path. Nothing is written until
// Close.
func Create(path string) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "cdfstore: creating file")
	}
	return &File{Memory: store.NewMemory(), f: f, writable: true}, nil
}

// Open reads the netCDF classic file at path. Every variable is loaded into
// memory.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cdfstore: opening file")
	}
	m, err := load(f)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "cdfstore: reading %s", path)
	}
	return &File{Memory: m, f: f}, nil
}

// CreateVLType always fails: the classic data model has no VLEN types.
func (f *File) CreateVLType(name string, base store.Type) (*store.VLType, error) {
	return nil, errors.Wrapf(store.ErrVLenUnsupported, "cdfstore: vltype %q", name)
}

// CreateVariable implements store.Store, rejecting types the classic
// format cannot hold.
func (f *File) CreateVariable(name string, typ store.DataType, dims ...string) (*store.Variable, error) {
	if typ.IsVLen() {
		return nil, errors.Wrapf(store.ErrVLenUnsupported, "cdfstore: variable %q", name)
	}
	if typ.Base == store.Int64 {
		return nil, errors.Wrapf(store.ErrTypeMismatch, "cdfstore: variable %q: 64-bit integers need the NETCDF4 data model", name)
	}
	return f.Memory.CreateVariable(name, typ, dims...)
}

// Close writes the file if it was created, then closes it. Calling Close
// more than once is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	var err error
	if f.writable {
		err = flush(f.f, f.Memory)
	}
	if cerr := f.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Abort closes the file without writing anything. A created file is left
// empty. Calling Close after Abort is a no-op.
func (f *File) Abort() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.f.Close()
}

// flush writes the header and every variable's data.
func flush(ff *os.File, m *store.Memory) error {
	vars := m.Variables()
	// cdf cannot lay out a header without at least one variable.
	if len(vars) == 0 {
		return ErrNoVariables
	}
	dims := m.Dimensions()
	names := make([]string, len(dims))
	lengths := make([]int, len(dims))
	for i, d := range dims {
		names[i], lengths[i] = d.Name, d.Len
	}
	h := cdf.NewHeader(names, lengths)

	for _, a := range m.AttrNames() {
		val, _ := m.Attr(a)
		h.AddAttribute("", a, val)
	}
	for _, v := range vars {
		h.AddVariable(v.Name(), v.Dims(), zeroOf(v.Type().Base))
		for _, a := range v.AttrNames() {
			val, _ := v.Attr(a)
			h.AddAttribute(v.Name(), a, val)
		}
	}
	h.Define()
	for _, err := range h.Check() {
		return errors.Wrap(err, "cdfstore: invalid header")
	}

	cf, err := cdf.Create(ff, h) // writes the header to ff
	if err != nil {
		return errors.Wrap(err, "cdfstore: writing header")
	}
	for _, v := range vars {
		if v.Values() == nil || len(v.Dims()) == 0 {
			continue
		}
		end := cf.Header.Lengths(v.Name())
		start := make([]int, len(end))
		w := cf.Writer(v.Name(), start, end)
		if _, err := w.Write(v.Values()); err != nil {
			return errors.Wrapf(err, "cdfstore: writing variable %s", v.Name())
		}
	}
	return nil
}

func zeroOf(t store.Type) interface{} {
	if t == store.Int32 {
		return []int32{0}
	}
	return []float64{0}
}

// load reads a whole netCDF classic file into memory.
func load(r cdf.ReaderWriterAt) (*store.Memory, error) {
	cf, err := cdf.Open(r)
	if err != nil {
		return nil, err
	}
	m := store.NewMemory()

	for _, a := range cf.Header.Attributes("") {
		if err := m.SetAttr(a, convertAttr(cf.Header.GetAttribute("", a))); err != nil {
			return nil, err
		}
	}

	for _, name := range cf.Header.Variables() {
		dims := cf.Header.Dimensions(name)
		lengths := cf.Header.Lengths(name)
		for i, d := range dims {
			if _, err := m.CreateDimension(d, lengths[i]); err != nil {
				return nil, err
			}
		}

		// Scalar variables carry only attributes.
		buf := cf.Header.ZeroValue(name, 1)
		if len(dims) > 0 {
			r := cf.Reader(name, nil, nil)
			buf = r.Zero(-1)
			if _, err := r.Read(buf); err != nil {
				return nil, errors.Wrapf(err, "reading variable %s", name)
			}
		}
		values, typ := convertValues(buf)

		v, err := m.CreateVariable(name, store.Scalar(typ), dims...)
		if err != nil {
			return nil, err
		}
		for _, a := range cf.Header.Attributes(name) {
			if err := v.SetAttr(a, convertAttr(cf.Header.GetAttribute(name, a))); err != nil {
				return nil, err
			}
		}
		if len(dims) > 0 {
			if err := v.SetValues(values); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// convertValues widens classic-format slices to the store's element types.
func convertValues(buf interface{}) (interface{}, store.Type) {
	switch vals := buf.(type) {
	case []float64:
		return vals, store.Float64
	case []float32:
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = float64(v)
		}
		return out, store.Float64
	case []int32:
		return vals, store.Int32
	case []int16:
		out := make([]int32, len(vals))
		for i, v := range vals {
			out[i] = int32(v)
		}
		return out, store.Int32
	case []int8:
		out := make([]int32, len(vals))
		for i, v := range vals {
			out[i] = int32(v)
		}
		return out, store.Int32
	case []uint8:
		out := make([]int32, len(vals))
		for i, v := range vals {
			out[i] = int32(v)
		}
		return out, store.Int32
	}
	return nil, store.Float64
}

func convertAttr(v interface{}) interface{} {
	switch vals := v.(type) {
	case []float32:
		out := make([]float64, len(vals))
		for i, x := range vals {
			out[i] = float64(x)
		}
		return out
	case []int16:
		out := make([]int32, len(vals))
		for i, x := range vals {
			out[i] = int32(x)
		}
		return out
	}
	return v
}
