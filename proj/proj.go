// Package proj converts between WGS84 coordinates and web-mercator
// tile space.
package proj

import "math"

// MaxLatitude is the web-mercator latitude limit, atan(sinh(pi)) in
// degrees. Inputs are clamped to it.
const MaxLatitude = 85.0511

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

// LatLonToTile converts a coordinate to fractional tile coordinates at
// the given zoom level.
func LatLonToTile(lat, lon float64, zoom int) (x, y float64) {
	lat = math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))

	n := float64(uint64(1) << zoom)
	x = (lon + 180) / 360 * n

	latRad := lat * degToRad
	y = (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n
	return x, y
}

// TileToLatLon is the inverse of LatLonToTile.
func TileToLatLon(x, y float64, zoom int) (lat, lon float64) {
	n := float64(uint64(1) << zoom)
	lon = x/n*360 - 180
	lat = math.Atan(math.Sinh(math.Pi*(1-2*y/n))) * radToDeg
	return lat, lon
}
