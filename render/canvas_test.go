package render_test

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdeck-os/go-tdmap/render"
	"github.com/tdeck-os/go-tdmap/td/spec"
	"github.com/tdeck-os/go-tdmap/viewer"
)

func paletteColor(index uint8) color.RGBA {
	rgb := spec.PaletteRGB[index]
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
}

func solidBitmap(size int, index uint8) *viewer.Bitmap {
	pix := make([]byte, size*size)
	for i := range pix {
		pix[i] = index
	}
	return &viewer.Bitmap{Pix: pix, W: size, H: size}
}

func TestCanvasBlit(t *testing.T) {
	canvas := render.NewCanvas(32, 32)
	canvas.Blit(8, 8, solidBitmap(16, spec.ColorWater))

	img := canvas.Image()
	require.Equal(t, paletteColor(spec.ColorWater), img.At(8, 8))
	require.Equal(t, paletteColor(spec.ColorWater), img.At(23, 23))
	// Outside the blit the white clear survives.
	require.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.At(0, 0))
}

func TestCanvasBlitClipped(t *testing.T) {
	canvas := render.NewCanvas(16, 16)
	// Partially off-screen blits clip instead of panicking.
	canvas.Blit(-8, -8, solidBitmap(16, spec.ColorWater))
	canvas.Blit(12, 12, solidBitmap(16, spec.ColorWater))

	img := canvas.Image()
	require.Equal(t, paletteColor(spec.ColorWater), img.At(0, 0))
	require.Equal(t, paletteColor(spec.ColorWater), img.At(15, 15))
}

func TestCanvasBlitScaled(t *testing.T) {
	// A 2x2 source quadrant upscaled to fill a 16x16 region.
	src := &viewer.Bitmap{
		Pix: []byte{
			1, 2,
			3, 4,
		},
		W: 2, H: 2,
	}
	canvas := render.NewCanvas(16, 16)
	canvas.BlitScaled(0, 0, 16, 16, src, viewer.Rect{X: 0, Y: 0, W: 2, H: 2})

	img := canvas.Image()
	require.Equal(t, paletteColor(1), img.At(0, 0))
	require.Equal(t, paletteColor(2), img.At(15, 0))
	require.Equal(t, paletteColor(3), img.At(0, 15))
	require.Equal(t, paletteColor(4), img.At(15, 15))
}

func TestCanvasPlaceholder(t *testing.T) {
	canvas := render.NewCanvas(16, 16)
	canvas.Placeholder(0, 0, 16, 16, false)
	require.Equal(t, paletteColor(spec.ColorLand), canvas.Image().At(8, 8))
}

func TestCanvasTextSize(t *testing.T) {
	canvas := render.NewCanvas(64, 64)
	w, h := canvas.TextSize("label")
	require.Positive(t, w)
	require.Positive(t, h)

	wider, _ := canvas.TextSize("much longer label")
	require.Greater(t, wider, w)
}

func TestCanvasIsViewerSurface(t *testing.T) {
	var _ viewer.Surface = render.NewCanvas(1, 1)
}
