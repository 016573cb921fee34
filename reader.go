package cfgeom

import (
	"sort"

	flatgeobuf "github.com/flatgeobuf/flatgeobuf/src/go"
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// FGBReader provides read access to a FlatGeobuf file.
type FGBReader struct {
	fgb *flatgeobuf.FlatGeoBuf
}

// OpenFlatGeobuf creates a reader from a file path.
// The file is memory-mapped for efficient access.
func OpenFlatGeobuf(path string) (*FGBReader, error) {
	fgb, err := flatgeobuf.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cfgeom: opening %s", path)
	}

	return &FGBReader{fgb: fgb}, nil
}

// NewFGBReaderFromData creates a reader from byte data.
func NewFGBReaderFromData(data []byte) (*FGBReader, error) {
	fgb, err := flatgeobuf.NewWithData(data)
	if err != nil {
		return nil, errors.Wrap(err, "cfgeom: reading FlatGeobuf data")
	}

	return &FGBReader{fgb: fgb}, nil
}

// ReadFlatGeobuf reads the whole FlatGeobuf file at path as a Container.
func ReadFlatGeobuf(path string) (*Container, *FGBHeader, error) {
	r, err := OpenFlatGeobuf(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = r.Close() }()

	c, err := r.ReadContainer()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", path)
	}
	return c, r.Header(), nil
}

// Header returns metadata about the FlatGeobuf file.
func (r *FGBReader) Header() *FGBHeader {
	h := r.fgb.Header()
	if h == nil {
		return nil
	}

	header := &FGBHeader{
		Name:          string(h.Name()),
		Description:   string(h.Description()),
		FeaturesCount: h.FeaturesCount(),
		HasIndex:      h.IndexNodeSize() > 0,
		GeometryType:  flattypes.EnumNamesGeometryType[h.GeometryType()],
	}

	if h.EnvelopeLength() >= 4 {
		header.Envelope = [4]float64{
			h.Envelope(0),
			h.Envelope(1),
			h.Envelope(2),
			h.Envelope(3),
		}
	}

	var crs flattypes.Crs
	if h.Crs(&crs) != nil {
		header.CRS = &CRS{
			Code:        int(crs.Code()),
			Name:        string(crs.Name()),
			Description: string(crs.Description()),
		}
	}

	colLen := h.ColumnsLength()
	if colLen > 0 {
		header.Columns = make([]FGBColumn, 0, colLen)
		for i := 0; i < colLen; i++ {
			var col flattypes.Column
			if h.Columns(&col, i) {
				header.Columns = append(header.Columns, FGBColumn{
					Name:     string(col.Name()),
					Type:     flattypes.EnumNamesColumnType[col.Type()],
					Nullable: col.Nullable(),
				})
			}
		}
	}

	return header
}

// ReadContainer reads every feature into a Container, in the order they
// were written when the file carries a cf_index column. Features are
// reached through the spatial index, so files without one give ErrNoIndex.
func (r *FGBReader) ReadContainer() (*Container, error) {
	h := r.fgb.Header()
	if h.IndexNodeSize() == 0 || h.EnvelopeLength() < 4 {
		return nil, ErrNoIndex
	}
	return r.search(h.Envelope(0), h.Envelope(1), h.Envelope(2), h.Envelope(3))
}

// Search reads the features whose bounding boxes intersect bounds. A
// container cannot be empty, so a search with no hits gives ErrNoFeatures.
func (r *FGBReader) Search(bounds orb.Bound) (*Container, error) {
	if r.fgb.Header().IndexNodeSize() == 0 {
		return nil, ErrNoIndex
	}
	return r.search(bounds.Min[0], bounds.Min[1], bounds.Max[0], bounds.Max[1])
}

func (r *FGBReader) search(minX, minY, maxX, maxY float64) (*Container, error) {
	h := r.fgb.Header()
	features, err := r.fgb.Search(minX, minY, maxX, maxY)
	if err != nil {
		return nil, errors.Wrap(err, "cfgeom: searching FlatGeobuf index")
	}
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}
	cols := headerColumns(h)

	type indexed struct {
		geom  *Geometry
		index int
	}
	geoms := make([]indexed, 0, len(features))
	for i, f := range features {
		var geomObj flattypes.Geometry
		g, err := geometryFromFGB(f.Geometry(&geomObj))
		if err != nil {
			return nil, errors.Wrapf(err, "feature %d", i)
		}
		idx, ok := featureIndex(f, cols)
		if !ok {
			idx = i
		}
		geoms = append(geoms, indexed{geom: g, index: idx})
	}
	sort.SliceStable(geoms, func(i, j int) bool { return geoms[i].index < geoms[j].index })

	out := make([]*Geometry, len(geoms))
	for i, g := range geoms {
		out[i] = g.geom
	}
	return NewContainer(out...)
}

// Close releases resources associated with the reader.
func (r *FGBReader) Close() error {
	// The FlatGeoBuf type doesn't expose a public Close method,
	// but the finalizer will clean up when garbage collected.
	r.fgb = nil
	return nil
}
