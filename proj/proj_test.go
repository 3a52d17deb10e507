package proj_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdeck-os/go-tdmap/proj"
)

func TestLatLonToTileAnchors(t *testing.T) {
	x, y := proj.LatLonToTile(0, 0, 0)
	require.InDelta(t, 0.5, x, 1e-9)
	require.InDelta(t, 0.5, y, 1e-9)

	x, y = proj.LatLonToTile(0, 0, 4)
	require.InDelta(t, 8, x, 1e-9)
	require.InDelta(t, 8, y, 1e-9)

	// The north-west corner of the projection is tile (0, 0).
	x, y = proj.LatLonToTile(proj.MaxLatitude, -180, 5)
	require.InDelta(t, 0, x, 1e-9)
	require.InDelta(t, 0, y, 1e-3)
}

func TestProjectionRoundtrip(t *testing.T) {
	coords := []struct{ lat, lon float64 }{
		{0, 0},
		{55.7558, 37.6173},
		{-33.8688, 151.2093},
		{84.9, -179.5},
		{-84.9, 179.5},
	}
	for _, c := range coords {
		for _, zoom := range []int{0, 5, 12, 18} {
			x, y := proj.LatLonToTile(c.lat, c.lon, zoom)
			lat, lon := proj.TileToLatLon(x, y, zoom)
			require.InDeltaf(t, c.lat, lat, 1e-4, "lat %v z%d", c, zoom)
			require.InDeltaf(t, c.lon, lon, 1e-4, "lon %v z%d", c, zoom)
		}
	}
}

func TestLatitudeClamp(t *testing.T) {
	_, yPole := proj.LatLonToTile(90, 0, 8)
	_, yLimit := proj.LatLonToTile(proj.MaxLatitude, 0, 8)
	require.Equal(t, yLimit, yPole)
	require.GreaterOrEqual(t, yPole, 0.0)
}
