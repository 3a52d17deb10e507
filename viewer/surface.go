package viewer

// Rect is a pixel rectangle in tile raster space.
type Rect struct {
	X, Y, W, H int
}

// Bitmap is an unpacked palette-indexed raster: one index byte per
// pixel, row-major.
type Bitmap struct {
	Pix  []byte
	W, H int
}

// At returns the palette index at (x, y). Out-of-range coordinates
// return 0.
func (b *Bitmap) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return 0
	}
	return b.Pix[y*b.W+x]
}

// Surface is the render target for one frame. Implementations must not
// retain the bitmaps passed to them: the cache may evict the backing
// storage after the draw call returns.
//
// Scaled blitting is a required method, not a probed capability; targets
// without native scaling wrap themselves in a ScaleAdapter.
type Surface interface {
	Size() (width, height int)

	// Blit draws a tile raster with its top-left corner at (x, y).
	Blit(x, y int, src *Bitmap)

	// BlitScaled draws the srcRect sub-region of src upscaled to
	// w by h pixels at (x, y).
	BlitScaled(x, y, w, h int, src *Bitmap, srcRect Rect)

	// DrawText draws label text with its top-left corner at (x, y).
	DrawText(x, y int, text string)

	// TextSize measures the bounding box DrawText would cover.
	TextSize(text string) (width, height int)

	// Placeholder fills a tile-sized region that has no drawable data.
	// missing distinguishes confirmed-absent tiles from loads still in
	// flight.
	Placeholder(x, y, w, h int, missing bool)
}

// PlainSurface is a target that only supports unscaled blits.
type PlainSurface interface {
	Size() (width, height int)
	Blit(x, y int, src *Bitmap)
	DrawText(x, y int, text string)
	TextSize(text string) (width, height int)
	Placeholder(x, y, w, h int, missing bool)
}

// ScaleAdapter completes a PlainSurface to a full Surface with a
// software nearest-neighbor upscale.
type ScaleAdapter struct {
	PlainSurface
}

func (s ScaleAdapter) BlitScaled(x, y, w, h int, src *Bitmap, srcRect Rect) {
	if srcRect.W <= 0 || srcRect.H <= 0 || w <= 0 || h <= 0 {
		return
	}
	scaled := Bitmap{Pix: make([]byte, w*h), W: w, H: h}
	for dy := range h {
		sy := srcRect.Y + dy*srcRect.H/h
		for dx := range w {
			sx := srcRect.X + dx*srcRect.W/w
			scaled.Pix[dy*w+dx] = src.At(sx, sy)
		}
	}
	s.PlainSurface.Blit(x, y, &scaled)
}
