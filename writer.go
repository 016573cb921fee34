package cfgeom

import (
	"io"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/pkg/errors"
)

// WriteFlatGeobuf writes every geometry of c as a FlatGeobuf feature. The
// header geometry type is the container's WKT type; when the container is
// multipart every feature is written as a Multi* geometry. Z values are
// written when the container has z.
func WriteFlatGeobuf(w io.Writer, c *Container, opts *FGBOptions) error {
	if opts == nil {
		opts = DefaultFGBOptions()
	}
	if c == nil || c.Len() == 0 {
		return invalidf("container is empty")
	}

	gen := &containerFeatureGenerator{container: c}
	return writeWithGenerator(w, gen, fgbGeometryType(c), opts)
}

// writeWithGenerator handles the common writing logic.
func writeWithGenerator(
	w io.Writer,
	gen writer.FeatureGenerator,
	geomType flattypes.GeometryType,
	opts *FGBOptions,
) error {
	builder := flatbuffers.NewBuilder(4096)

	header := writer.NewHeader(builder)
	header.SetGeometryType(geomType)

	if opts.Name != "" {
		header.SetName(opts.Name)
	}
	if opts.Description != "" {
		header.SetDescription(opts.Description)
	}
	header.SetColumns(indexColumns(builder))

	if opts.CRS != nil {
		crs := writer.NewCrs(builder)
		crs.SetOrg("EPSG") // Default organization
		if opts.CRS.Code > 0 {
			crs.SetCode(int32(opts.CRS.Code))
		}
		if opts.CRS.Name != "" {
			crs.SetName(opts.CRS.Name)
		}
		if opts.CRS.Description != "" {
			crs.SetDescription(opts.CRS.Description)
		}
		// WKT can be stored in description if needed
		if opts.CRS.WKT != "" && opts.CRS.Description == "" {
			crs.SetDescription(opts.CRS.WKT)
		}
		header.SetCrs(crs)
	}

	fgbWriter := writer.NewWriter(header, opts.IncludeIndex, gen, nil)

	_, err := fgbWriter.Write(w)
	return errors.Wrap(err, "cfgeom: writing FlatGeobuf")
}

// containerFeatureGenerator generates one feature per container geometry.
type containerFeatureGenerator struct {
	container *Container
	index     int
}

func (g *containerFeatureGenerator) Generate() *writer.Feature {
	if g.index >= g.container.Len() {
		return nil
	}

	i := g.index
	g.index++

	builder := flatbuffers.NewBuilder(1024)
	fgbGeom := geometryToFGB(g.container.Geometry(i), g.container.HasZ(), g.container.IsMultipart(), builder)

	feature := writer.NewFeature(builder)
	feature.SetGeometry(fgbGeom)
	feature.SetProperties(encodeIndex(i))

	return feature
}
