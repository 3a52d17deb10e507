// Package render provides an image-backed Surface for the viewer,
// used by snapshot tooling and tests.
package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/tdeck-os/go-tdmap/td/spec"
	"github.com/tdeck-os/go-tdmap/viewer"
)

// Canvas implements viewer.Surface on top of an RGBA image. Palette
// indices are resolved through the engine's fixed palette; text and
// placeholder hatching go through gg.
type Canvas struct {
	ctx     *gg.Context
	img     *image.RGBA
	palette [spec.PaletteSize]color.RGBA
}

func NewCanvas(width, height int) *Canvas {
	ctx := gg.NewContext(width, height)
	ctx.SetRGB255(255, 255, 255)
	ctx.Clear()

	c := &Canvas{
		ctx: ctx,
		img: ctx.Image().(*image.RGBA),
	}
	for i, rgb := range spec.PaletteRGB {
		c.palette[i] = color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
	}
	return c
}

// Image returns the rendered frame.
func (c *Canvas) Image() image.Image {
	return c.ctx.Image()
}

func (c *Canvas) Size() (int, int) {
	return c.img.Rect.Dx(), c.img.Rect.Dy()
}

func (c *Canvas) Blit(x, y int, src *viewer.Bitmap) {
	width, height := c.Size()
	for sy := range src.H {
		dy := y + sy
		if dy < 0 || dy >= height {
			continue
		}
		for sx := range src.W {
			dx := x + sx
			if dx < 0 || dx >= width {
				continue
			}
			c.img.SetRGBA(dx, dy, c.palette[src.Pix[sy*src.W+sx]&0x07])
		}
	}
}

func (c *Canvas) BlitScaled(x, y, w, h int, src *viewer.Bitmap, srcRect viewer.Rect) {
	if srcRect.W <= 0 || srcRect.H <= 0 || w <= 0 || h <= 0 {
		return
	}
	width, height := c.Size()
	for dy := range h {
		ty := y + dy
		if ty < 0 || ty >= height {
			continue
		}
		sy := srcRect.Y + dy*srcRect.H/h
		for dx := range w {
			tx := x + dx
			if tx < 0 || tx >= width {
				continue
			}
			sx := srcRect.X + dx*srcRect.W/w
			c.img.SetRGBA(tx, ty, c.palette[src.At(sx, sy)&0x07])
		}
	}
}

func (c *Canvas) DrawText(x, y int, text string) {
	c.ctx.SetColor(c.palette[spec.ColorRoad])
	c.ctx.DrawString(text, float64(x), float64(y)+c.ctx.FontHeight())
}

func (c *Canvas) TextSize(text string) (int, int) {
	w, _ := c.ctx.MeasureString(text)
	return int(w + 0.5), int(c.ctx.FontHeight() + 0.5)
}

// Placeholder fills unready tiles with the land tone; confirmed-missing
// tiles get a hatched cross so gaps in the archive read as "no data"
// rather than "still loading".
func (c *Canvas) Placeholder(x, y, w, h int, missing bool) {
	c.ctx.SetColor(c.palette[spec.ColorLand])
	c.ctx.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	c.ctx.Fill()

	if !missing {
		return
	}
	c.ctx.SetColor(c.palette[spec.ColorDetail])
	c.ctx.SetLineWidth(1)
	c.ctx.DrawLine(float64(x), float64(y), float64(x+w), float64(y+h))
	c.ctx.DrawLine(float64(x+w), float64(y), float64(x), float64(y+h))
	c.ctx.Stroke()
}
