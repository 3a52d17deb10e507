// Package tile provides common tile types and storage interfaces.
package tile

// ID represents tile coordinates in the XYZ scheme (Tiled web map).
// It is a comparable value type and can be used directly as a map key.
type ID struct {
	X uint32
	Y uint32
	Z uint32
}

func (t ID) Valid() bool {
	return t.Z < 32 && t.X < (1<<t.Z) && t.Y < (1<<t.Z)
}

// Ancestor returns the tile the given number of zoom levels above t
// whose geographic footprint contains t. Levels beyond Z clamp to the
// root tile.
func (t ID) Ancestor(levels uint32) ID {
	if levels > t.Z {
		levels = t.Z
	}
	return ID{X: t.X >> levels, Y: t.Y >> levels, Z: t.Z - levels}
}

// Writer defines an interface for writing tiles to a tileset.
type Writer interface {
	// WriteTile writes a single tile to the tileset.
	WriteTile(tileID ID, tileData []byte) error

	// Finalize completes the writing process: flushes buffers, writes header and indices.
	// It must be called before closing the Writer.
	Finalize() error
}

type Reader interface {
	// ReadTile reads a single tile from the tileset.
	// It returns the tile data or an error if the tile cannot be read.
	// If the tile does not exist, it returns an empty slice with no error.
	ReadTile(tileID ID) ([]byte, error)
}

type Visitor interface {
	// VisitTiles visits all tiles in the tileset, calling the visitor for each.
	// It returns an error if visiting fails.
	// Order of tiles, upfront cpu and memory consumption are implementation-defined.
	VisitTiles(visitor func(ID, []byte) error) error
}

// Location represents the absolute location of tile data inside a tileset file.
type Location struct {
	Offset uint64
	Length uint64
}

type LocationVisitor interface {
	VisitLocations(visitor func(ID, Location) error) error
}
