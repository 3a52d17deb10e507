package td

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/tdeck-os/go-tdmap/td/spec"
	"github.com/tdeck-os/go-tdmap/tile"
)

var (
	ErrNoTiles       = errors.New("no tiles to write")
	ErrDuplicateTile = errors.New("duplicate tile")
	ErrTileTooLarge  = errors.New("compressed tile exceeds index length field")
	ErrBadRaster     = errors.New("raster length does not match tile size")
)

// Writer authors a TDMAP archive. Tiles and labels are buffered in
// memory (compressed) and laid out on Finalize: the index sorted by
// (zoom, x, y) for predictable lookup, the data section clustered in
// hilbert order for read locality on sequential media.
type Writer struct {
	logger      *slog.Logger
	file        *os.File
	compression spec.Compression
	tileSize    int

	tiles   []writerTile
	seen    map[tile.ID]struct{}
	labels  []byte
	nLabels uint32
	minZoom int8
	maxZoom int8
}

type writerTile struct {
	id      tile.ID
	payload []byte // compressed
}

type writerConfig struct {
	Compression spec.Compression
	TileSize    int
	Logger      *slog.Logger
}

type WriterOption func(*writerConfig)

func WithCompression(compression spec.Compression) WriterOption {
	return func(c *writerConfig) { c.Compression = compression }
}

func WithTileSize(tileSize int) WriterOption {
	return func(c *writerConfig) { c.TileSize = tileSize }
}

func WithLogger(logger *slog.Logger) WriterOption {
	return func(c *writerConfig) { c.Logger = logger }
}

// NewWriter creates a Writer for the given output path. The default
// configuration matches the archives the handheld viewer consumes:
// 256 pixel tiles, RLE compression.
func NewWriter(filePath string, opts ...WriterOption) (*Writer, error) {
	config := writerConfig{
		Compression: spec.CompressionRLE,
		TileSize:    256,
		Logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, err
	}

	return &Writer{
		logger:      config.Logger,
		file:        file,
		compression: config.Compression,
		tileSize:    config.TileSize,
		seen:        make(map[tile.ID]struct{}),
		minZoom:     math.MaxInt8,
		maxZoom:     math.MinInt8,
	}, nil
}

// WriteTile adds a tile given its unpacked raster (one palette index
// byte per pixel, TileSize squared bytes).
func (w *Writer) WriteTile(tileID tile.ID, raster []byte) error {
	if len(raster) != spec.RawTileLength(w.tileSize) {
		return fmt.Errorf("%w: got %d bytes for tile size %d", ErrBadRaster, len(raster), w.tileSize)
	}
	payload, err := spec.Compress(spec.PackPixels(raster), w.compression)
	if err != nil {
		return err
	}
	return w.writePayload(tileID, payload)
}

// WriteCompressedTile adds a tile whose payload is already packed and
// compressed with the writer's codec. Used when repacking archives.
func (w *Writer) WriteCompressedTile(tileID tile.ID, payload []byte) error {
	return w.writePayload(tileID, slices.Clone(payload))
}

func (w *Writer) writePayload(tileID tile.ID, payload []byte) error {
	if !tileID.Valid() {
		return fmt.Errorf("invalid tile id %v", tileID)
	}
	if _, exists := w.seen[tileID]; exists {
		return fmt.Errorf("%w: %v", ErrDuplicateTile, tileID)
	}
	if len(payload) > math.MaxUint16 {
		return fmt.Errorf("%w: %v is %d bytes", ErrTileTooLarge, tileID, len(payload))
	}

	w.seen[tileID] = struct{}{}
	w.tiles = append(w.tiles, writerTile{id: tileID, payload: payload})
	w.minZoom = min(w.minZoom, int8(tileID.Z))
	w.maxZoom = max(w.maxZoom, int8(tileID.Z))
	return nil
}

// AddLabel appends a label record. Empty text is skipped; text longer
// than 255 bytes is truncated.
func (w *Writer) AddLabel(label spec.Label) {
	label.Text = strings.TrimSpace(label.Text)
	if label.Text == "" {
		return
	}
	w.labels = spec.AppendLabel(w.labels, label)
	w.nLabels++
}

// Finalize lays out and writes the archive, then closes the file.
func (w *Writer) Finalize() error {
	if w.file == nil {
		panic("tdmap: finalize called twice")
	}
	if len(w.tiles) == 0 {
		return ErrNoTiles
	}

	w.logger.Debug("tdmap: cluster data section")
	dataOrder := slices.Clone(w.tiles)
	slices.SortFunc(dataOrder, func(a, b writerTile) int {
		return cmp.Compare(spec.EncodeTileCode(a.id), spec.EncodeTileCode(b.id))
	})

	offsets := make(map[tile.ID]uint32, len(dataOrder))
	dataLength := uint32(0)
	for _, t := range dataOrder {
		offsets[t.id] = dataLength
		dataLength += uint32(len(t.payload))
	}

	w.logger.Debug("tdmap: build index")
	entries := make([]spec.IndexEntry, 0, len(w.tiles))
	for _, t := range w.tiles {
		entries = append(entries, spec.IndexEntry{
			Zoom:   uint8(t.id.Z),
			X:      uint16(t.id.X),
			Y:      uint16(t.id.Y),
			Offset: offsets[t.id],
			Length: uint16(len(t.payload)),
		})
	}
	slices.SortFunc(entries, func(a, b spec.IndexEntry) int {
		return cmp.Or(
			cmp.Compare(a.Zoom, b.Zoom),
			cmp.Compare(a.X, b.X),
			cmp.Compare(a.Y, b.Y),
		)
	})

	indexOffset := uint32(spec.HeaderLength + spec.PaletteBlockLength)
	dataOffset := indexOffset + uint32(len(entries))*spec.IndexEntryLength

	header := spec.Header{
		Version:      spec.VersionLabels,
		Compression:  w.compression,
		TileSize:     uint16(w.tileSize),
		PaletteCount: spec.PaletteSize,
		TileCount:    uint32(len(entries)),
		IndexOffset:  indexOffset,
		DataOffset:   dataOffset,
		MinZoom:      w.minZoom,
		MaxZoom:      w.maxZoom,
		LabelOffset:  dataOffset + dataLength,
		LabelCount:   w.nLabels,
	}

	w.logger.Debug("tdmap: write sections",
		"tiles", len(entries), "labels", w.nLabels, "data_bytes", dataLength)

	out := bufio.NewWriter(w.file)
	out.Write(spec.SerializeHeader(&header))

	palette := make([]byte, 0, spec.PaletteBlockLength)
	for _, value := range spec.PaletteRGB565 {
		palette = append(palette, byte(value), byte(value>>8))
	}
	out.Write(palette)

	indexData := make([]byte, 0, len(entries)*spec.IndexEntryLength)
	for _, entry := range entries {
		indexData = spec.AppendIndexEntry(indexData, entry)
	}
	out.Write(indexData)

	for _, t := range dataOrder {
		out.Write(t.payload)
	}
	if _, err := out.Write(w.labels); err != nil {
		return err
	}

	if err := out.Flush(); err != nil {
		return err
	}

	err := w.file.Close()
	w.file = nil
	if err != nil {
		return err
	}

	w.logger.Debug("tdmap: done")
	return nil
}

func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}
