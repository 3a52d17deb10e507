package viewer

import (
	"math"

	"github.com/tdeck-os/go-tdmap/proj"
	"github.com/tdeck-os/go-tdmap/tile"
)

// Viewport is the visible window over the tile pyramid: a fractional
// center in tile units (sub-tile precision gives smooth panning), an
// integer zoom level and the screen size in pixels.
type Viewport struct {
	CenterX float64
	CenterY float64
	Zoom    int
	Width   int
	Height  int
}

// VisibleTile is one tile of the grid covering the screen, with its
// pixel-aligned screen position.
type VisibleTile struct {
	ID      tile.ID
	ScreenX int
	ScreenY int
}

// Clamp keeps the center inside [0, 2^zoom] on both axes.
func (v *Viewport) Clamp() {
	limit := float64(uint64(1) << v.Zoom)
	v.CenterX = math.Max(0, math.Min(limit, v.CenterX))
	v.CenterY = math.Max(0, math.Min(limit, v.CenterY))
}

// Pan moves the center by (dx, dy) tile units and re-clamps.
func (v *Viewport) Pan(dx, dy float64) {
	v.CenterX += dx
	v.CenterY += dy
	v.Clamp()
}

// ZoomTo switches to a new zoom level, rescaling the center so the
// geographic point under the viewport center is preserved.
func (v *Viewport) ZoomTo(zoom int) {
	for v.Zoom < zoom {
		v.CenterX *= 2
		v.CenterY *= 2
		v.Zoom++
	}
	for v.Zoom > zoom {
		v.CenterX /= 2
		v.CenterY /= 2
		v.Zoom--
	}
	v.Clamp()
}

// CenterOn moves the viewport center to a geographic coordinate.
func (v *Viewport) CenterOn(lat, lon float64) {
	v.CenterX, v.CenterY = proj.LatLonToTile(lat, lon, v.Zoom)
	v.Clamp()
}

// CenterLatLon returns the geographic coordinate under the viewport
// center.
func (v *Viewport) CenterLatLon() (lat, lon float64) {
	return proj.TileToLatLon(v.CenterX, v.CenterY, v.Zoom)
}

// topLeftWorld returns the world pixel coordinate at the screen's
// top-left corner.
func (v *Viewport) topLeftWorld(tileSize int) (float64, float64) {
	return v.CenterX*float64(tileSize) - float64(v.Width)/2,
		v.CenterY*float64(tileSize) - float64(v.Height)/2
}

// VisibleTiles returns the tile grid covering the screen. The
// fractional part of the center becomes a sub-tile pixel offset, so
// panning scrolls smoothly instead of jumping at tile boundaries.
// Coordinates outside the pyramid are skipped.
func (v *Viewport) VisibleTiles(tileSize int) []VisibleTile {
	worldX, worldY := v.topLeftWorld(tileSize)

	firstX := int(math.Floor(worldX / float64(tileSize)))
	firstY := int(math.Floor(worldY / float64(tileSize)))
	offsetX := firstX*tileSize - int(math.Floor(worldX))
	offsetY := firstY*tileSize - int(math.Floor(worldY))

	cols := (v.Width - offsetX + tileSize - 1) / tileSize
	rows := (v.Height - offsetY + tileSize - 1) / tileSize
	limit := 1 << v.Zoom

	tiles := make([]VisibleTile, 0, cols*rows)
	for row := range rows {
		for col := range cols {
			tx, ty := firstX+col, firstY+row
			if tx < 0 || ty < 0 || tx >= limit || ty >= limit {
				continue
			}
			tiles = append(tiles, VisibleTile{
				ID:      tile.ID{X: uint32(tx), Y: uint32(ty), Z: uint32(v.Zoom)},
				ScreenX: offsetX + col*tileSize,
				ScreenY: offsetY + row*tileSize,
			})
		}
	}
	return tiles
}

// distanceToCenter returns the squared distance from a tile's center to
// the viewport center, in tile units. Load requests are issued in this
// order so the visually important tiles complete first.
func (v *Viewport) distanceToCenter(tileID tile.ID) float64 {
	dx := float64(tileID.X) + 0.5 - v.CenterX
	dy := float64(tileID.Y) + 0.5 - v.CenterY
	return dx*dx + dy*dy
}
