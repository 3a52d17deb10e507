// Package internal synthesizes TDMAP archives for tests.
package internal

import (
	"github.com/tdeck-os/go-tdmap/td"
	"github.com/tdeck-os/go-tdmap/td/spec"
	"github.com/tdeck-os/go-tdmap/tile"
)

// SolidRaster returns an unpacked raster filled with one palette index.
func SolidRaster(tileSize int, value uint8) []byte {
	raster := make([]byte, spec.RawTileLength(tileSize))
	for i := range raster {
		raster[i] = value & 0x07
	}
	return raster
}

// QuadRaster returns a raster split into four quadrants with the given
// palette indices (top-left, top-right, bottom-left, bottom-right).
// Distinct quadrants make fallback sub-rectangles observable.
func QuadRaster(tileSize int, values [4]uint8) []byte {
	raster := make([]byte, spec.RawTileLength(tileSize))
	half := tileSize / 2
	for y := range tileSize {
		for x := range tileSize {
			q := 0
			if x >= half {
				q++
			}
			if y >= half {
				q += 2
			}
			raster[y*tileSize+x] = values[q] & 0x07
		}
	}
	return raster
}

// CreateArchive writes a TDMAP archive with the given tiles and labels.
func CreateArchive(
	filePath string,
	tileSize int,
	compression spec.Compression,
	tiles map[tile.ID][]byte,
	labels []spec.Label,
) error {
	writer, err := td.NewWriter(
		filePath,
		td.WithTileSize(tileSize),
		td.WithCompression(compression),
	)
	if err != nil {
		return err
	}
	defer writer.Close()

	for tileID, raster := range tiles {
		if err := writer.WriteTile(tileID, raster); err != nil {
			return err
		}
	}
	for _, label := range labels {
		writer.AddLabel(label)
	}

	return writer.Finalize()
}
