package spec

import (
	"encoding/binary"

	"github.com/tdeck-os/go-tdmap/tile"
)

// IndexEntryLength is the on-disk size of one tile index record.
const IndexEntryLength = 11

// IndexEntry maps tile coordinates to the location of the compressed
// payload inside the data section. Record layout: zoom(1) x(2) y(2)
// offset(4) length(2), little-endian.
type IndexEntry struct {
	Zoom   uint8
	X      uint16
	Y      uint16
	Offset uint32
	Length uint16
}

func (e IndexEntry) TileID() tile.ID {
	return tile.ID{X: uint32(e.X), Y: uint32(e.Y), Z: uint32(e.Zoom)}
}

func (e IndexEntry) TileLocation() tile.Location {
	return tile.Location{Offset: uint64(e.Offset), Length: uint64(e.Length)}
}

func AppendIndexEntry(buffer []byte, entry IndexEntry) []byte {
	buffer = append(buffer, entry.Zoom)
	buffer = binary.LittleEndian.AppendUint16(buffer, entry.X)
	buffer = binary.LittleEndian.AppendUint16(buffer, entry.Y)
	buffer = binary.LittleEndian.AppendUint32(buffer, entry.Offset)
	buffer = binary.LittleEndian.AppendUint16(buffer, entry.Length)
	return buffer
}

// DecodeIndex decodes as many complete entries as the buffer holds.
// A trailing partial record is ignored; callers detect a short index by
// comparing the result length against the header tile count.
func DecodeIndex(data []byte) []IndexEntry {
	entries := make([]IndexEntry, 0, len(data)/IndexEntryLength)
	for len(data) >= IndexEntryLength {
		entries = append(entries, IndexEntry{
			Zoom:   data[0],
			X:      binary.LittleEndian.Uint16(data[1:]),
			Y:      binary.LittleEndian.Uint16(data[3:]),
			Offset: binary.LittleEndian.Uint32(data[5:]),
			Length: binary.LittleEndian.Uint16(data[9:]),
		})
		data = data[IndexEntryLength:]
	}
	return entries
}
