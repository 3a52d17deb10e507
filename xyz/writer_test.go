package xyz_test

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdeck-os/go-tdmap/td/spec"
	"github.com/tdeck-os/go-tdmap/tile"
	"github.com/tdeck-os/go-tdmap/xyz"
)

func TestWriterPattern(t *testing.T) {
	_, err := xyz.NewWriter("/tmp/{x}/{y}.png", 16)
	require.ErrorIs(t, err, xyz.ErrInvalidPattern)

	_, err = xyz.NewWriter("/tmp/{z}/{x}/{y}.png", 16)
	require.NoError(t, err)
}

func TestWriterWritesPNG(t *testing.T) {
	pattern := filepath.Join(t.TempDir(), "{z}", "{x}", "{y}.png")
	writer, err := xyz.NewWriter(pattern, 16)
	require.NoError(t, err)

	raster := make([]byte, 16*16)
	for i := range raster {
		raster[i] = spec.ColorWater
	}
	require.NoError(t, writer.WriteTile(tile.ID{X: 3, Y: 5, Z: 7}, raster))
	require.NoError(t, writer.Finalize())

	filePath := filepath.Join(filepath.Dir(filepath.Dir(filepath.Dir(pattern))), "7", "3", "5.png")
	file, err := os.Open(filePath)
	require.NoError(t, err)
	defer file.Close()

	img, err := png.Decode(file)
	require.NoError(t, err)
	require.Equal(t, 16, img.Bounds().Dx())
	require.Equal(t, 16, img.Bounds().Dy())

	rgb := spec.PaletteRGB[spec.ColorWater]
	r, g, b, a := img.At(8, 8).RGBA()
	want := color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
	wr, wg, wb, wa := want.RGBA()
	require.Equal(t, []uint32{wr, wg, wb, wa}, []uint32{r, g, b, a})
}

func TestWriterBadRaster(t *testing.T) {
	pattern := filepath.Join(t.TempDir(), "{z}", "{x}", "{y}.png")
	writer, err := xyz.NewWriter(pattern, 16)
	require.NoError(t, err)

	require.ErrorIs(t, writer.WriteTile(tile.ID{Z: 1}, make([]byte, 7)), xyz.ErrBadRaster)
}
