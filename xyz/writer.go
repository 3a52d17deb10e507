// Package xyz exports archive tiles as individual PNG files in an XYZ
// directory tree, with paths like "/z/x/y.png". Used by preview
// tooling; the handheld viewer itself only consumes TDMAP archives.
package xyz

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdeck-os/go-tdmap/td/spec"
	"github.com/tdeck-os/go-tdmap/tile"
)

var (
	ErrInvalidPattern = errors.New("invalid file pattern")
	ErrBadRaster      = errors.New("raster length does not match tile size")
)

// Writer implements tile.Writer for unpacked palette-indexed rasters,
// encoding each as a paletted PNG under the file pattern
// (e.g. "/home/user/tiles/{z}/{x}/{y}.png").
type Writer struct {
	filePattern string
	tileSize    int
	palette     color.Palette
}

func NewWriter(filePattern string, tileSize int) (*Writer, error) {
	if err := validatePattern(filePattern); err != nil {
		return nil, err
	}

	palette := make(color.Palette, spec.PaletteSize)
	for i, rgb := range spec.PaletteRGB {
		palette[i] = color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
	}

	return &Writer{filePattern: filePattern, tileSize: tileSize, palette: palette}, nil
}

func (w *Writer) WriteTile(tileID tile.ID, raster []byte) error {
	if len(raster) != spec.RawTileLength(w.tileSize) {
		return fmt.Errorf("%w: got %d bytes for tile size %d", ErrBadRaster, len(raster), w.tileSize)
	}

	img := image.NewPaletted(image.Rect(0, 0, w.tileSize, w.tileSize), w.palette)
	for i, index := range raster {
		img.Pix[i] = index & 0x07
	}

	filePath := formatPattern(w.filePattern, tileID)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

func (w *Writer) Finalize() error {
	return nil
}

func validatePattern(pattern string) error {
	for _, p := range []string{"{x}", "{y}", "{z}"} {
		if !strings.Contains(pattern, p) {
			return fmt.Errorf("%w: placeholder %v not found", ErrInvalidPattern, p)
		}
	}
	return nil
}

func formatPattern(pattern string, tileID tile.ID) string {
	result := pattern
	result = strings.ReplaceAll(result, "{x}", fmt.Sprintf("%d", tileID.X))
	result = strings.ReplaceAll(result, "{y}", fmt.Sprintf("%d", tileID.Y))
	result = strings.ReplaceAll(result, "{z}", fmt.Sprintf("%d", tileID.Z))
	return result
}
