package main

import (
	"bytes"
	"net/http"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	cfgeom "github.com/tingold/orb-cfgeom"
	"github.com/tingold/orb-cfgeom/store"
)

type City struct {
	Name      string
	Longitude float64
	Latitude  float64
}

var cities = []City{
	{"Tokyo", 139.6917, 35.6895},
	{"New York", -73.9857, 40.7484},
	{"London", -0.1276, 51.5074},
	{"Paris", 2.3522, 48.8566},
	{"Beijing", 116.4074, 39.9042},
	{"Moscow", 37.6173, 55.7558},
	{"São Paulo", -46.6333, -23.5505},
	{"Mumbai", 72.8777, 19.0760},
	{"Los Angeles", -118.2437, 34.0522},
	{"Shanghai", 121.4737, 31.2304},
	{"Istanbul", 28.9784, 41.0082},
	{"Buenos Aires", -58.3816, -34.6037},
	{"Cairo", 31.2357, 30.0444},
	{"Sydney", 151.2093, -33.8688},
	{"Berlin", 13.4050, 52.5200},
}

// encoded holds one rendering of the demo container.
type encoded struct {
	path, contentType string
	data              []byte
}

func main() {
	log := logrus.StandardLogger()

	geoms := make([]orb.Geometry, 0, len(cities))
	for _, city := range cities {
		geoms = append(geoms, orb.Point{city.Longitude, city.Latitude})
	}
	c, err := cfgeom.ContainerFromOrb(geoms...)
	if err != nil {
		log.WithError(err).Fatal("building container")
	}

	var outputs []encoded

	// FlatGeobuf
	var buf bytes.Buffer
	opts := &cfgeom.FGBOptions{
		Name:         "world_cities",
		Description:  "Major world cities",
		IncludeIndex: true,
		CRS:          cfgeom.WGS84(),
	}
	if err := cfgeom.WriteFlatGeobuf(&buf, c, opts); err != nil {
		log.WithError(err).Fatal("writing FlatGeobuf")
	}
	outputs = append(outputs, encoded{"/cities.fgb", "application/octet-stream", buf.Bytes()})

	// CF arrays, one store per encoding, as CDL and as a store snapshot.
	for _, enc := range []cfgeom.Encoding{cfgeom.CRA, cfgeom.VLEN} {
		m := store.NewMemory()
		if err := cfgeom.Write(m, c, &cfgeom.Options{Encoding: enc}); err != nil {
			log.WithError(err).WithField("encoding", enc).Fatal("writing store")
		}
		var cdl, snap bytes.Buffer
		if err := store.Dump(&cdl, "cities_"+enc.String(), m); err != nil {
			log.WithError(err).Fatal("dumping store")
		}
		if err := store.WriteJSON(&snap, m); err != nil {
			log.WithError(err).Fatal("writing snapshot")
		}
		outputs = append(outputs,
			encoded{"/cities_" + enc.String() + ".cdl", "text/plain; charset=utf-8", cdl.Bytes()},
			encoded{"/cities_" + enc.String() + ".ncjson", "application/json", snap.Bytes()},
		)
	}

	record, err := cfgeom.MarshalContainer(c)
	if err != nil {
		log.WithError(err).Fatal("encoding record")
	}
	outputs = append(outputs, encoded{"/cities.json", "application/json", record})

	for _, o := range outputs {
		http.HandleFunc(o.path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", o.contentType)
			w.Header().Set("Access-Control-Allow-Origin", "*")
			_, _ = w.Write(o.data)
		})
		log.WithField("path", o.path).Info("serving")
	}

	log.Info("Server starting on http://localhost:8080")
	log.Fatal(http.ListenAndServe(":8080", nil))
}
