package cfgeom

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/tingold/orb-cfgeom/store"
	"github.com/tingold/orb-cfgeom/store/cdfstore"
)

// CF attribute names linking a geometry container to its arrays.
const (
	attrGeometryType    = "geometry_type"
	attrNodeCoordinates = "node_coordinates"
	attrNodeCount       = "node_count"
	attrPartNodeCount   = "part_node_count"
	attrInteriorRing    = "interior_ring"
	attrAxis            = "axis"
	attrLongName        = "long_name"
	attrConventions     = "Conventions"
)

// long_name values of the count arrays.
const (
	longNameNodeCount     = "count of coordinates in each instance geometry"
	longNamePartNodeCount = "count of nodes in each geometry part"
	longNameInteriorRing  = "type of each polygon geometry part"
)

// Names holds the store names used when writing a container.
type Names struct {
	NodeVLType     string
	PartNodeVLType string

	Instance string
	Node     string
	Part     string

	X, Y, Z string

	Container     string
	NodeCount     string
	PartNodeCount string
	InteriorRing  string

	Conventions string
}

// DefaultNames returns the names used by Write when none are given.
func DefaultNames() *Names {
	return &Names{
		NodeVLType:     "node_VLType",
		PartNodeVLType: "part_node_VLType",
		Instance:       "instance",
		Node:           "node",
		Part:           "part",
		X:              "x",
		Y:              "y",
		Z:              "z",
		Container:      "geometry_container",
		NodeCount:      "node_count",
		PartNodeCount:  "part_node_count",
		InteriorRing:   "interior_ring",
		Conventions:    "CF-1.8",
	}
}

// SetPrefix prefixes the node and part dimensions and every variable name,
// so several containers can share one store. The instance dimension and
// the VLEN types are shared and left alone.
func (n *Names) SetPrefix(prefix string) {
	for _, s := range []*string{
		&n.Node, &n.Part,
		&n.X, &n.Y, &n.Z,
		&n.Container, &n.NodeCount, &n.PartNodeCount, &n.InteriorRing,
	} {
		*s = prefix + *s
	}
}

// Options configures Write.
type Options struct {
	// Names are the store names to write; nil means DefaultNames.
	Names *Names
	// Encoding selects CRA or VLEN arrays.
	Encoding Encoding
}

// DefaultOptions returns CRA encoding with the default names.
func DefaultOptions() *Options {
	return &Options{Names: DefaultNames(), Encoding: CRA}
}

// storeErr wraps a store failure as a *FormatError.
func storeErr(err error, what string) error {
	return &FormatError{Reason: what, Err: err}
}

// Write exports c and writes its arrays to s. Polygon containers are
// oriented in place first. The write is not transactional: on error s may
// hold some of the variables.
func Write(s store.Store, c *Container, opts *Options) error {
	if c == nil {
		return invalidf("container is nil")
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	names := opts.Names
	if names == nil {
		names = DefaultNames()
	}

	switch opts.Encoding {
	case CRA:
		a, err := ExportCRA(c)
		if err != nil {
			return err
		}
		return writeCRA(s, a, c.Len(), names)
	case VLEN:
		a, err := ExportVLEN(c)
		if err != nil {
			return err
		}
		return writeVLEN(s, a, layoutOf(c), names)
	default:
		return errors.Errorf("cfgeom: unknown encoding %v", opts.Encoding)
	}
}

// writeHeader sets the Conventions attribute, the instance dimension and
// the container variable, returning the container variable.
func writeHeader(s store.Store, t GeomType, instances int, coords []string, n *Names) (*store.Variable, error) {
	if err := s.SetAttr(attrConventions, n.Conventions); err != nil {
		return nil, storeErr(err, "setting Conventions")
	}
	if _, err := s.CreateDimension(n.Instance, instances); err != nil {
		return nil, storeErr(err, "creating instance dimension")
	}
	v, err := s.CreateVariable(n.Container, store.Scalar(store.Int32))
	if err != nil {
		return nil, storeErr(err, "creating container variable")
	}
	if err := v.SetAttr(attrGeometryType, t.String()); err != nil {
		return nil, storeErr(err, "setting geometry_type")
	}
	if err := v.SetAttr(attrNodeCoordinates, strings.Join(coords, " ")); err != nil {
		return nil, storeErr(err, "setting node_coordinates")
	}
	return v, nil
}

// link creates a count variable and points the container at it.
func link(s store.Store, container *store.Variable, attr, name, longName string, typ store.DataType, dim string, values interface{}) error {
	v, err := s.CreateVariable(name, typ, dim)
	if err != nil {
		return storeErr(err, "creating "+attr+" variable")
	}
	if err := v.SetAttr(attrLongName, longName); err != nil {
		return storeErr(err, "setting "+attr+" long_name")
	}
	if err := v.SetValues(values); err != nil {
		return storeErr(err, "writing "+attr)
	}
	if err := container.SetAttr(attr, name); err != nil {
		return storeErr(err, "linking "+attr)
	}
	return nil
}

// writeCoord creates one coordinate variable with its axis attribute.
func writeCoord(s store.Store, name, axis string, typ store.DataType, dim string, values interface{}) error {
	v, err := s.CreateVariable(name, typ, dim)
	if err != nil {
		return storeErr(err, "creating "+axis+" coordinate variable")
	}
	if err := v.SetAttr(attrAxis, axis); err != nil {
		return storeErr(err, "setting "+axis+" axis")
	}
	if err := v.SetValues(values); err != nil {
		return storeErr(err, "writing "+axis+" coordinates")
	}
	return nil
}

func coordNames(hasZ bool, n *Names) []string {
	if hasZ {
		return []string{n.X, n.Y, n.Z}
	}
	return []string{n.X, n.Y}
}

func writeCRA(s store.Store, a *CRAArrays, instances int, n *Names) error {
	container, err := writeHeader(s, a.GeomType, instances, coordNames(a.Z != nil, n), n)
	if err != nil {
		return err
	}

	nodeDim := n.Instance
	if a.NodeCount != nil {
		nodeDim = n.Node
		if _, err := s.CreateDimension(n.Node, len(a.X)); err != nil {
			return storeErr(err, "creating node dimension")
		}
	}
	f64 := store.Scalar(store.Float64)
	if err := writeCoord(s, n.X, "X", f64, nodeDim, a.X); err != nil {
		return err
	}
	if err := writeCoord(s, n.Y, "Y", f64, nodeDim, a.Y); err != nil {
		return err
	}
	if a.Z != nil {
		if err := writeCoord(s, n.Z, "Z", f64, nodeDim, a.Z); err != nil {
			return err
		}
	}

	i32 := store.Scalar(store.Int32)
	if a.NodeCount != nil {
		if err := link(s, container, attrNodeCount, n.NodeCount, longNameNodeCount, i32, n.Instance, toInt32s(a.NodeCount)); err != nil {
			return err
		}
	}
	if a.PartNodeCount == nil {
		return nil
	}
	if _, err := s.CreateDimension(n.Part, len(a.PartNodeCount)); err != nil {
		return storeErr(err, "creating part dimension")
	}
	if err := link(s, container, attrPartNodeCount, n.PartNodeCount, longNamePartNodeCount, i32, n.Part, toInt32s(a.PartNodeCount)); err != nil {
		return err
	}
	if a.RingType != nil {
		if err := link(s, container, attrInteriorRing, n.InteriorRing, longNameInteriorRing, i32, n.Part, toInt32s(a.RingType)); err != nil {
			return err
		}
	}
	return nil
}

func writeVLEN(s store.Store, a *VLENArrays, l arrayLayout, n *Names) error {
	container, err := writeHeader(s, a.GeomType, len(a.X), coordNames(a.Z != nil, n), n)
	if err != nil {
		return err
	}

	// Single points have one node per geometry and need no VLEN type.
	if !l.nodeCount {
		f64 := store.Scalar(store.Float64)
		coords := [][][]float64{a.X, a.Y, a.Z}
		for i, axis := range []string{"X", "Y", "Z"} {
			if coords[i] == nil {
				continue
			}
			if err := writeCoord(s, coordNames(true, n)[i], axis, f64, n.Instance, firstOfEach(coords[i])); err != nil {
				return err
			}
		}
	} else {
		vt, err := s.CreateVLType(n.NodeVLType, store.Float64)
		if err != nil {
			return storeErr(err, "creating node VLEN type")
		}
		typ := store.VarLen(vt)
		if err := writeCoord(s, n.X, "X", typ, n.Instance, a.X); err != nil {
			return err
		}
		if err := writeCoord(s, n.Y, "Y", typ, n.Instance, a.Y); err != nil {
			return err
		}
		if a.Z != nil {
			if err := writeCoord(s, n.Z, "Z", typ, n.Instance, a.Z); err != nil {
				return err
			}
		}
	}

	if a.PartNodeCount == nil {
		return nil
	}
	vt, err := s.CreateVLType(n.PartNodeVLType, store.Int32)
	if err != nil {
		return storeErr(err, "creating part node VLEN type")
	}
	typ := store.VarLen(vt)
	if err := link(s, container, attrPartNodeCount, n.PartNodeCount, longNamePartNodeCount, typ, n.Instance, toVLenInt32s(a.PartNodeCount)); err != nil {
		return err
	}
	if a.RingType != nil {
		if err := link(s, container, attrInteriorRing, n.InteriorRing, longNameInteriorRing, typ, n.Instance, toVLenInt32s(a.RingType)); err != nil {
			return err
		}
	}
	return nil
}

// FindContainers returns the names of the variables in s carrying both a
// recognized geometry_type and a node_coordinates attribute, in definition
// order.
func FindContainers(s store.Store) []string {
	var out []string
	for _, v := range s.Variables() {
		gt, ok := v.StringAttr(attrGeometryType)
		if !ok {
			continue
		}
		if _, err := ParseGeomType(gt); err != nil {
			continue
		}
		if _, ok := v.StringAttr(attrNodeCoordinates); !ok {
			continue
		}
		out = append(out, v.Name())
	}
	return out
}

// Read decodes the named geometry containers from s. With no names, every
// container found by FindContainers is read, and a *NotFoundError is
// returned when there are none.
func Read(s store.Store, names ...string) (map[string]*Container, error) {
	if len(names) == 0 {
		names = FindContainers(s)
		if len(names) == 0 {
			return nil, &NotFoundError{}
		}
	}
	out := make(map[string]*Container, len(names))
	for _, name := range names {
		c, err := readContainer(s, name)
		if err != nil {
			return nil, errors.Wrapf(err, "container %q", name)
		}
		out[name] = c
	}
	return out, nil
}

func readContainer(s store.Store, name string) (*Container, error) {
	v, ok := s.Variable(name)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	gt, ok := v.StringAttr(attrGeometryType)
	if !ok {
		return nil, formatf("missing %s attribute", attrGeometryType)
	}
	t, err := ParseGeomType(gt)
	if err != nil {
		return nil, &FormatError{Reason: "bad geometry_type", Err: err}
	}
	nc, ok := v.StringAttr(attrNodeCoordinates)
	if !ok {
		return nil, formatf("missing %s attribute", attrNodeCoordinates)
	}

	x, y, z, err := resolveCoords(s, strings.Fields(nc))
	if err != nil {
		return nil, err
	}

	nodeCount, err := linked(s, v, attrNodeCount)
	if err != nil {
		return nil, err
	}
	partNodeCount, err := linked(s, v, attrPartNodeCount)
	if err != nil {
		return nil, err
	}
	ringType, err := linked(s, v, attrInteriorRing)
	if err != nil {
		return nil, err
	}

	if x.Type().IsVLen() {
		return readVLEN(t, x, y, z, partNodeCount, ringType)
	}
	return readCRA(t, x, y, z, nodeCount, partNodeCount, ringType)
}

// resolveCoords maps node_coordinates to X, Y and optional Z variables by
// their axis attribute. Variables without an axis take the role of their
// position in the list.
func resolveCoords(s store.Store, coords []string) (x, y, z *store.Variable, err error) {
	roles := map[string]*store.Variable{}
	positional := []string{"X", "Y", "Z"}
	for i, name := range coords {
		v, ok := s.Variable(name)
		if !ok {
			return nil, nil, nil, formatf("coordinate variable %q not found", name)
		}
		axis, ok := v.StringAttr(attrAxis)
		if !ok && i < len(positional) {
			axis = positional[i]
		}
		axis = strings.ToUpper(axis)
		if _, dup := roles[axis]; dup {
			return nil, nil, nil, formatf("more than one %s coordinate variable", axis)
		}
		roles[axis] = v
	}
	x, y, z = roles["X"], roles["Y"], roles["Z"]
	if x == nil || y == nil {
		return nil, nil, nil, formatf("cannot resolve X and Y coordinates from %q", strings.Join(coords, " "))
	}
	if x.Type().IsVLen() != y.Type().IsVLen() || (z != nil && z.Type().IsVLen() != x.Type().IsVLen()) {
		return nil, nil, nil, formatf("coordinate variables mix VLEN and plain arrays")
	}
	return x, y, z, nil
}

// linked returns the variable named by the container's attr attribute, or
// nil when the attribute is absent.
func linked(s store.Store, container *store.Variable, attr string) (*store.Variable, error) {
	name, ok := container.StringAttr(attr)
	if !ok {
		return nil, nil
	}
	v, ok := s.Variable(name)
	if !ok {
		return nil, formatf("%s variable %q not found", attr, name)
	}
	return v, nil
}

func readCRA(t GeomType, x, y, z, nodeCount, partNodeCount, ringType *store.Variable) (*Container, error) {
	a := &CRAArrays{GeomType: t}
	var err error
	if a.X, err = x.Float64s(); err != nil {
		return nil, storeErr(err, "reading x")
	}
	if a.Y, err = y.Float64s(); err != nil {
		return nil, storeErr(err, "reading y")
	}
	if z != nil {
		if a.Z, err = z.Float64s(); err != nil {
			return nil, storeErr(err, "reading z")
		}
	}
	for _, c := range []struct {
		v   *store.Variable
		dst *[]int
	}{
		{nodeCount, &a.NodeCount},
		{partNodeCount, &a.PartNodeCount},
		{ringType, &a.RingType},
	} {
		if c.v == nil {
			continue
		}
		if *c.dst, err = c.v.Ints(); err != nil {
			return nil, storeErr(err, "reading "+c.v.Name())
		}
	}
	return ImportCRA(a)
}

func readVLEN(t GeomType, x, y, z, partNodeCount, ringType *store.Variable) (*Container, error) {
	a := &VLENArrays{GeomType: t}
	var err error
	if a.X, err = x.VLenFloat64s(); err != nil {
		return nil, storeErr(err, "reading x")
	}
	if a.Y, err = y.VLenFloat64s(); err != nil {
		return nil, storeErr(err, "reading y")
	}
	if z != nil {
		if a.Z, err = z.VLenFloat64s(); err != nil {
			return nil, storeErr(err, "reading z")
		}
	}
	if partNodeCount != nil {
		if a.PartNodeCount, err = partNodeCount.VLenInts(); err != nil {
			return nil, storeErr(err, "reading part_node_count")
		}
	}
	if ringType != nil {
		if a.RingType, err = ringType.VLenInts(); err != nil {
			return nil, storeErr(err, "reading interior_ring")
		}
	}
	return ImportVLEN(a)
}

// File extensions selecting the store backend in WriteFile and ReadFile.
const (
	ExtNetCDF   = ".nc"
	ExtSnapshot = ".ncjson"
)

// WriteFile writes c to a new file at path. A ".nc" path is written as a
// netCDF classic file, which cannot hold VLEN arrays; a ".ncjson" path is
// written as a JSON store snapshot.
func WriteFile(path string, c *Container, opts *Options) (err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtNetCDF:
		f, err := cdfstore.Create(path)
		if err != nil {
			return err
		}
		if err := Write(f, c, opts); err != nil {
			_ = f.Abort()
			return err
		}
		return f.Close()
	case ExtSnapshot:
		m := store.NewMemory()
		if err := Write(m, c, opts); err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "cfgeom: creating snapshot")
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		return store.WriteJSON(f, m)
	default:
		return errors.Errorf("cfgeom: unknown store file extension %q", filepath.Ext(path))
	}
}

// OpenFile opens the store at path, choosing the backend by extension as
// WriteFile does.
func OpenFile(path string) (store.Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtNetCDF:
		f, err := cdfstore.Open(path)
		if err != nil {
			return nil, err
		}
		// Everything is in memory once opened.
		if err := f.Close(); err != nil {
			return nil, err
		}
		return f, nil
	case ExtSnapshot:
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "cfgeom: opening snapshot")
		}
		defer f.Close()
		return store.ReadJSON(f)
	default:
		return nil, errors.Errorf("cfgeom: unknown store file extension %q", filepath.Ext(path))
	}
}

// ReadFile reads the named containers, or all containers, from the store
// file at path.
func ReadFile(path string, names ...string) (map[string]*Container, error) {
	s, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	return Read(s, names...)
}

func toInt32s(s []int) []int32 {
	out := make([]int32, len(s))
	for i, v := range s {
		out[i] = int32(v)
	}
	return out
}

func toVLenInt32s(s [][]int) [][]int32 {
	out := make([][]int32, len(s))
	for i, v := range s {
		out[i] = toInt32s(v)
	}
	return out
}

func firstOfEach(s [][]float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = v[0]
	}
	return out
}
