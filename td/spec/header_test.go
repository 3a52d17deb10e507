package spec_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdeck-os/go-tdmap/td/spec"
)

func TestHeaderLength(t *testing.T) {
	header := spec.Header{Version: spec.VersionLabels, TileSize: 256}
	require.Equal(t, spec.HeaderLength, len(spec.SerializeHeader(&header)))

	header.Version = spec.VersionTiles
	require.Equal(t, spec.HeaderLengthV1, len(spec.SerializeHeader(&header)))
}

func TestHeaderSerializer(t *testing.T) {
	header1 := spec.Header{
		Version:      spec.VersionLabels,
		Compression:  spec.CompressionRLE,
		TileSize:     256,
		PaletteCount: spec.PaletteSize,
		TileCount:    100500,
		IndexOffset:  48,
		DataOffset:   48 + 100500*spec.IndexEntryLength,
		MinZoom:      3,
		MaxZoom:      14,
		LabelOffset:  123456789,
		LabelCount:   4242,
	}
	header2, err := spec.DeserializeHeader(spec.SerializeHeader(&header1))
	require.NoError(t, err)
	require.Equal(t, header1, *header2)
}

func TestHeaderSerializerV1(t *testing.T) {
	header1 := spec.Header{
		Version:     spec.VersionTiles,
		Compression: spec.CompressionNone,
		TileSize:    128,
		TileCount:   7,
		IndexOffset: 48,
		DataOffset:  48 + 7*spec.IndexEntryLength,
		MinZoom:     0,
		MaxZoom:     5,
	}
	header2, err := spec.DeserializeHeader(spec.SerializeHeader(&header1))
	require.NoError(t, err)
	require.Equal(t, header1, *header2)
}

func TestHeaderErrors(t *testing.T) {
	_, err := spec.DeserializeHeader([]byte("foobar"))
	require.Truef(t, errors.Is(err, spec.ErrInvalidHeader), "%v", err)

	_, err = spec.DeserializeHeader([]byte("NOTMAP0123456789012345678901234567"))
	require.Truef(t, errors.Is(err, spec.ErrInvalidHeader), "%v", err)

	bad := spec.Header{Version: spec.VersionLabels, TileSize: 256}
	buffer := spec.SerializeHeader(&bad)
	buffer[5] = 99
	_, err = spec.DeserializeHeader(buffer)
	require.Truef(t, errors.Is(err, spec.ErrUnsupportedVersion), "%v", err)

	zeroSize := spec.Header{Version: spec.VersionLabels}
	_, err = spec.DeserializeHeader(spec.SerializeHeader(&zeroSize))
	require.Truef(t, errors.Is(err, spec.ErrInvalidHeader), "%v", err)
}
