package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/cyclemap/stationmap/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Clustering operates directly in degree space: at city scale the planar
// Euclidean distance between coordinates is a good enough proximity measure,
// and it is what the threshold formula below is calibrated against. Web
// Mercator (3857) conversion exists only for map-widget adapters, which need
// projected coordinates for pixel math.

// ErrInvalidCoordinates is returned when a coordinate string cannot be parsed.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Distance returns the planar Euclidean distance between two coordinates in
// degree space.
func Distance(a, b core.LatLng) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lng-b.Lng)
}

// ClusterThreshold returns the grouping distance (in degrees) for a zoom
// level. The threshold shrinks as zoom increases, so zooming in splits
// clusters apart. Above zoom 16 the value goes negative and nothing merges,
// which is fine: individual mode takes over well before that.
func ClusterThreshold(zoom float64) float64 {
	return (15-zoom)*0.006 + 0.006
}

// LatLngFromString parses a "lat,lng" string into a coordinate. Components
// beyond the first two are ignored.
func LatLngFromString(s string) (core.LatLng, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return core.LatLng{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return core.LatLng{}, ErrInvalidCoordinates
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return core.LatLng{}, ErrInvalidCoordinates
	}
	return core.LatLng{Lat: lat, Lng: lng}, nil
}

// Point3857 projects a WGS84 coordinate to Web Mercator and returns it as a
// geometry point. This is the coordinate-conversion primitive exposed to map
// widget adapters.
func Point3857(pos core.LatLng) geom.Point {
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := f(pos.Lng, pos.Lat, 0)
	return geom.NewPoint(geom.Coordinates{
		XY: geom.XY{X: x, Y: y},
	})
}
