// Package td provides reading and writing of TDMAP archives: compact
// random-access tile/label stores for offline map viewers on small
// devices.
package td

import (
	"cmp"
	"fmt"
	"os"
	"slices"

	"github.com/tdeck-os/go-tdmap/td/spec"
	"github.com/tdeck-os/go-tdmap/tile"
)

// FileAccessFunc reads length bytes at offset. On a short read it
// returns the prefix that was read together with a non-nil error.
type FileAccessFunc = func(offset, length uint64) ([]byte, error)

// labelChunkLength bounds single allocations while streaming the label
// section.
const labelChunkLength = 8192

// Reader provides access to one TDMAP archive. The tile index is read
// once at open time and kept resident; one index record is 11 bytes, so
// it is small next to the tile data it locates.
//
// If the index section reads short, the reader enters a degraded
// fail-closed mode: the entries that fully decoded stay usable and
// every other coordinate behaves as not present in the archive.
// IndexComplete reports which mode the reader is in.
type Reader struct {
	fileAccess FileAccessFunc
	fileCloser func() error

	header        *spec.Header
	entries       []spec.IndexEntry
	index         map[tile.ID]tile.Location
	indexComplete bool
}

func NewFileReader(filePath string) (*Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	fileAccess := func(offset, length uint64) ([]byte, error) {
		buffer := make([]byte, length)
		n, err := file.ReadAt(buffer, int64(offset))
		return buffer[:n], err
	}
	reader, err := NewReader(fileAccess)
	if err != nil {
		file.Close()
		return nil, err
	}
	reader.fileCloser = func() error { return file.Close() }
	return reader, nil
}

func NewReader(fileAccess FileAccessFunc) (*Reader, error) {
	headerData, err := fileAccess(0, spec.HeaderLength)
	if err != nil && len(headerData) < spec.HeaderLengthV1 {
		return nil, fmt.Errorf("%w: %w", spec.ErrInvalidHeader, err)
	}
	header, err := spec.DeserializeHeader(headerData)
	if err != nil {
		return nil, err
	}

	reader := &Reader{
		fileAccess: fileAccess,
		fileCloser: func() error { return nil },
		header:     header,
	}
	reader.buildIndex()
	return reader, nil
}

func (r *Reader) buildIndex() {
	indexData, err := r.fileAccess(
		uint64(r.header.IndexOffset),
		uint64(r.header.TileCount)*spec.IndexEntryLength,
	)

	r.entries = spec.DecodeIndex(indexData)
	r.indexComplete = err == nil && uint32(len(r.entries)) == r.header.TileCount

	r.index = make(map[tile.ID]tile.Location, len(r.entries))
	for _, entry := range r.entries {
		r.index[entry.TileID()] = entry.TileLocation()
	}
}

func (r *Reader) Close() error {
	return r.fileCloser()
}

func (r *Reader) Header() spec.Header {
	return *r.header
}

func (r *Reader) TileSize() int {
	return int(r.header.TileSize)
}

// IndexComplete reports whether the whole tile index decoded at open
// time. When false the reader operates fail-closed on the decoded prefix.
func (r *Reader) IndexComplete() bool {
	return r.indexComplete
}

// FindTile looks up a tile's location within the data section.
func (r *Reader) FindTile(tileID tile.ID) (tile.Location, bool) {
	location, found := r.index[tileID]
	return location, found
}

// ReadTileData reads the compressed payload for a tile and decompresses
// it to the 3-bit packed raster form. If the tile is not in the index
// it returns an empty slice with no error.
func (r *Reader) ReadTileData(tileID tile.ID) ([]byte, error) {
	location, found := r.index[tileID]
	if !found {
		return make([]byte, 0), nil
	}
	payload, err := r.fileAccess(uint64(r.header.DataOffset)+location.Offset, location.Length)
	if err != nil {
		return nil, err
	}
	return spec.Decompress(payload, r.header.Compression)
}

// ReadTile reads a tile and unpacks it to one palette index byte per
// pixel (TileSize squared bytes). If the tile is not in the index it
// returns an empty slice with no error.
func (r *Reader) ReadTile(tileID tile.ID) ([]byte, error) {
	packed, err := r.ReadTileData(tileID)
	if err != nil || len(packed) == 0 {
		return packed, err
	}
	return spec.UnpackPixels(packed, spec.RawTileLength(r.TileSize())), nil
}

// VisitLocations visits all indexed tiles in (zoom, x, y) order.
func (r *Reader) VisitLocations(visitor func(tile.ID, tile.Location) error) error {
	sorted := slices.SortedFunc(slices.Values(r.entries), func(a, b spec.IndexEntry) int {
		return cmp.Or(
			cmp.Compare(a.Zoom, b.Zoom),
			cmp.Compare(a.X, b.X),
			cmp.Compare(a.Y, b.Y),
		)
	})
	for _, entry := range sorted {
		if err := visitor(entry.TileID(), entry.TileLocation()); err != nil {
			return err
		}
	}
	return nil
}

// VisitTiles visits all indexed tiles in (zoom, x, y) order with their
// unpacked rasters.
func (r *Reader) VisitTiles(visitor func(tile.ID, []byte) error) error {
	return r.VisitLocations(func(tileID tile.ID, _ tile.Location) error {
		raster, err := r.ReadTile(tileID)
		if err != nil {
			return err
		}
		return visitor(tileID, raster)
	})
}

// Labels loads the flat label section in bounded chunks. maxCount <= 0
// loads every record the header declares; a positive cap stops the load
// there and reports truncation. Records whose text straddles a chunk
// boundary are carried over between reads.
func (r *Reader) Labels(maxCount int) (labels []spec.Label, truncated bool, err error) {
	if r.header.Version < spec.VersionLabels || r.header.LabelCount == 0 {
		return nil, false, nil
	}

	total := int(r.header.LabelCount)
	capacity := total
	if maxCount > 0 && maxCount < capacity {
		capacity = maxCount
	}
	labels = make([]spec.Label, 0, capacity)

	emit := func(label spec.Label) bool {
		labels = append(labels, label)
		return len(labels) < capacity
	}

	decoder := spec.LabelDecoder{}
	offset := uint64(r.header.LabelOffset)
	for len(labels) < capacity {
		chunk, readErr := r.fileAccess(offset, labelChunkLength)
		if len(chunk) == 0 {
			if readErr != nil && len(labels) == 0 {
				return nil, false, fmt.Errorf("label section: %w", readErr)
			}
			break
		}
		offset += uint64(len(chunk))

		if !decoder.Feed(chunk, emit) {
			break
		}
		if readErr != nil {
			break
		}
	}

	return labels, len(labels) < total, nil
}
