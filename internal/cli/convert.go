package cli

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	cfgeom "github.com/tingold/orb-cfgeom"
)

// Converter converts every geometry layer in a directory.
type Converter struct {
	Input, Output string
	// Encodings lists the outputs per layer: "cra", "vlen" or "fgb".
	Encodings []string
	// Prefix is prepended to store variable names.
	Prefix string
	// Jobs bounds the number of layers converted at once.
	Jobs int
	Log  logrus.FieldLogger
}

// layerExts are the input extensions LoadContainer understands.
var layerExts = map[string]bool{".wkt": true, ".geojson": true, ".fgb": true, ".json": true}

// Layers returns the convertible files in the input directory, sorted.
func (c *Converter) Layers() ([]string, error) {
	entries, err := os.ReadDir(c.Input)
	if err != nil {
		return nil, errors.Wrap(err, "cfgeom: listing input")
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !layerExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		out = append(out, filepath.Join(c.Input, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Run converts each layer. Layers share no state, so they run in
// parallel; the first error cancels the layers not yet started.
func (c *Converter) Run(ctx context.Context) error {
	if c.Input == "" || c.Output == "" {
		return errors.New("cfgeom: both --input and --output are required")
	}
	if c.Log == nil {
		c.Log = logrus.StandardLogger()
	}
	layers, err := c.Layers()
	if err != nil {
		return err
	}
	if len(layers) == 0 {
		return errors.Errorf("cfgeom: no geometry layers in %s", c.Input)
	}
	if err := os.MkdirAll(c.Output, 0o755); err != nil {
		return errors.Wrap(err, "cfgeom: creating output directory")
	}

	g, ctx := errgroup.WithContext(ctx)
	if c.Jobs > 0 {
		g.SetLimit(c.Jobs)
	}
	for _, path := range layers {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return c.convertLayer(path)
		})
	}
	return g.Wait()
}

func (c *Converter) convertLayer(path string) error {
	container, err := LoadContainer(path)
	if err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	for _, enc := range c.Encodings {
		var out string
		switch enc {
		case outCRA:
			out = filepath.Join(c.Output, base+"_cra"+cfgeom.ExtNetCDF)
			err = cfgeom.WriteFile(out, container, c.storeOptions(cfgeom.CRA))
		case outVLEN:
			out = filepath.Join(c.Output, base+"_vlen"+cfgeom.ExtSnapshot)
			err = cfgeom.WriteFile(out, container, c.storeOptions(cfgeom.VLEN))
		case outFGB:
			out = filepath.Join(c.Output, base+".fgb")
			err = writeFGB(out, base, container)
		default:
			err = errors.Errorf("cfgeom: unknown encoding %q", enc)
		}
		if err != nil {
			return errors.Wrapf(err, "converting %s", path)
		}
		if enc != outFGB {
			if err := writeDump(out); err != nil {
				return err
			}
		}
		c.Log.WithFields(logrus.Fields{
			"file":       path,
			"encoding":   enc,
			"geometries": container.Len(),
			"output":     out,
		}).Info("converted layer")
	}
	return nil
}

func (c *Converter) storeOptions(enc cfgeom.Encoding) *cfgeom.Options {
	names := cfgeom.DefaultNames()
	if c.Prefix != "" {
		names.SetPrefix(c.Prefix)
	}
	return &cfgeom.Options{Names: names, Encoding: enc}
}

func writeFGB(path, name string, c *cfgeom.Container) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "cfgeom: creating FlatGeobuf file")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	opts := cfgeom.DefaultFGBOptions()
	opts.Name = name
	return cfgeom.WriteFlatGeobuf(f, c, opts)
}

// writeDump writes the CDL rendering of the store file at path to
// path+".cdl".
func writeDump(path string) (err error) {
	f, err := os.Create(path + ".cdl")
	if err != nil {
		return errors.Wrap(err, "cfgeom: creating CDL dump")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return dumpFile(f, path)
}

// LoadContainer reads a geometry layer, choosing the format by extension:
// .wkt holds one WKT geometry per line (blank lines and lines starting
// with # are skipped), .geojson a GeoJSON feature collection or geometry,
// .fgb a FlatGeobuf file and .json a container record.
func LoadContainer(path string) (*cfgeom.Container, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wkt":
		return loadWKT(path)
	case ".geojson":
		return loadGeoJSON(path)
	case ".fgb":
		c, _, err := cfgeom.ReadFlatGeobuf(path)
		return c, err
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return cfgeom.UnmarshalContainer(data)
	default:
		return nil, errors.Errorf("cfgeom: unsupported layer format %q", filepath.Ext(path))
	}
}

func loadWKT(path string) (*cfgeom.Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var geoms []*cfgeom.Geometry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		g, err := cfgeom.ParseWKT(text)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		geoms = append(geoms, g)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return cfgeom.NewContainer(geoms...)
}

func loadGeoJSON(path string) (*cfgeom.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil && len(fc.Features) > 0 {
		geoms := make([]orb.Geometry, 0, len(fc.Features))
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
		return cfgeom.ContainerFromOrb(geoms...)
	}
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, errors.Wrap(err, "cfgeom: decoding GeoJSON")
	}
	return cfgeom.ContainerFromOrb(g.Geometry())
}
