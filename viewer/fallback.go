package viewer

import "github.com/tdeck-os/go-tdmap/tile"

// maxFallbackLevels bounds how far up the pyramid the resolver searches
// for a cached ancestor.
const maxFallbackLevels = 3

type fallbackTile struct {
	pix     []byte
	srcRect Rect // sub-region of the ancestor covering the requested tile
	scale   int  // 2^dz
}

// resolveFallback searches cached ancestors of a missing tile, nearest
// level first, never below the archive's minimum zoom. On a hit it
// returns the ancestor raster plus the quadrant sub-rectangle to
// upscale. The boolean is false when no ancestor is cached.
func resolveFallback(cache *Cache, tileID tile.ID, minZoom, tileSize int) (fallbackTile, bool) {
	for dz := uint32(1); dz <= maxFallbackLevels; dz++ {
		if dz > tileID.Z || int(tileID.Z-dz) < minZoom {
			break
		}

		pix := cache.Get(tileID.Ancestor(dz))
		if pix == nil {
			continue
		}

		scale := 1 << dz
		sub := tileSize / scale
		return fallbackTile{
			pix: pix,
			srcRect: Rect{
				X: int(tileID.X) % scale * sub,
				Y: int(tileID.Y) % scale * sub,
				W: sub,
				H: sub,
			},
			scale: scale,
		}, true
	}
	return fallbackTile{}, false
}
