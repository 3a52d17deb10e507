// Package spec implements the TDMAP wire format: header, tile index,
// label records, tile payload compression and pixel packing.
package spec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// Magic identifies a TDMAP archive.
	Magic = "TDMAP"

	// VersionTiles archives carry tiles only.
	VersionTiles = 1
	// VersionLabels adds the flat label section.
	VersionLabels = 2

	// HeaderLengthV1 is the header length before the label section fields.
	HeaderLengthV1 = 24
	// HeaderLength is the full v2 header length.
	HeaderLength = 32

	// PaletteBlockLength is the size of the RGB565 palette block written
	// after the header. Readers skip it: the engine palette is fixed.
	PaletteBlockLength = 16
)

var (
	ErrInvalidHeader      = errors.New("invalid archive header")
	ErrUnsupportedVersion = errors.New("unsupported archive version")
)

// Header describes the fixed-size region at the start of a TDMAP archive.
// All multi-byte fields are little-endian on disk.
type Header struct {
	Version      uint8
	Compression  Compression
	TileSize     uint16
	PaletteCount uint8
	TileCount    uint32
	IndexOffset  uint32
	DataOffset   uint32
	MinZoom      int8
	MaxZoom      int8
	LabelOffset  uint32 // zero before VersionLabels
	LabelCount   uint32
}

// Length returns the on-disk header length for the header's version.
func (h *Header) Length() int {
	if h.Version < VersionLabels {
		return HeaderLengthV1
	}
	return HeaderLength
}

func SerializeHeader(header *Header) []byte {
	buffer := make([]byte, 0, HeaderLength)
	buffer = append(buffer, Magic...)
	buffer = append(buffer, header.Version, uint8(header.Compression))
	buffer = binary.LittleEndian.AppendUint16(buffer, header.TileSize)
	buffer = append(buffer, header.PaletteCount)
	buffer = binary.LittleEndian.AppendUint32(buffer, header.TileCount)
	buffer = binary.LittleEndian.AppendUint32(buffer, header.IndexOffset)
	buffer = binary.LittleEndian.AppendUint32(buffer, header.DataOffset)
	buffer = append(buffer, byte(header.MinZoom), byte(header.MaxZoom))
	if header.Version >= VersionLabels {
		buffer = binary.LittleEndian.AppendUint32(buffer, header.LabelOffset)
		buffer = binary.LittleEndian.AppendUint32(buffer, header.LabelCount)
	}
	return buffer
}

func DeserializeHeader(buffer []byte) (*Header, error) {
	if len(buffer) < HeaderLengthV1 {
		return nil, fmt.Errorf("%w: short read (%d bytes)", ErrInvalidHeader, len(buffer))
	}
	if string(buffer[:len(Magic)]) != Magic {
		return nil, ErrInvalidHeader
	}

	header := Header{
		Version:      buffer[5],
		Compression:  Compression(buffer[6]),
		TileSize:     binary.LittleEndian.Uint16(buffer[7:]),
		PaletteCount: buffer[9],
		TileCount:    binary.LittleEndian.Uint32(buffer[10:]),
		IndexOffset:  binary.LittleEndian.Uint32(buffer[14:]),
		DataOffset:   binary.LittleEndian.Uint32(buffer[18:]),
		MinZoom:      int8(buffer[22]),
		MaxZoom:      int8(buffer[23]),
	}

	switch header.Version {
	case VersionTiles:
	case VersionLabels:
		if len(buffer) < HeaderLength {
			return nil, fmt.Errorf("%w: short read (%d bytes)", ErrInvalidHeader, len(buffer))
		}
		header.LabelOffset = binary.LittleEndian.Uint32(buffer[24:])
		header.LabelCount = binary.LittleEndian.Uint32(buffer[28:])
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header.Version)
	}

	if header.TileSize == 0 {
		return nil, fmt.Errorf("%w: zero tile size", ErrInvalidHeader)
	}

	return &header, nil
}
