package spec_test

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/tdeck-os/go-tdmap/td/spec"
)

func TestPackPixelsVector(t *testing.T) {
	// 8 pixels pack into 3 bytes, low bits first.
	indices := []byte{1, 2, 3, 4, 5, 6, 7, 0}
	packed := spec.PackPixels(indices)
	require.Equal(t, []byte{
		1 | 2<<3 | (3&0x03)<<6,
		(3>>2)&0x01 | 4<<1 | 5<<4 | (6&0x01)<<7,
		(6>>1)&0x03 | 7<<2 | 0<<5,
	}, packed)
	require.Equal(t, indices, spec.UnpackPixels(packed, len(indices)))
}

func TestPackPixelsRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, tileSize := range []int{8, 16, 64, 256} {
		indices := make([]byte, spec.RawTileLength(tileSize))
		for i := range indices {
			indices[i] = byte(rng.Intn(8))
		}

		packed := spec.PackPixels(indices)
		require.Equal(t, spec.PackedTileLength(tileSize), len(packed))

		result := spec.UnpackPixels(packed, len(indices))
		if diff := cmp.Diff(indices, result); diff != "" {
			t.Errorf("tileSize %d mismatch (-want +got):\n%s", tileSize, diff)
		}
	}
}

func TestPackPixelsPadding(t *testing.T) {
	// Counts that are not a multiple of 8 pad with zero pixels.
	indices := []byte{7, 7, 7}
	packed := spec.PackPixels(indices)
	require.Equal(t, 3, len(packed))
	require.Equal(t, indices, spec.UnpackPixels(packed, 3))

	// Unpacking past the packed payload yields zeros.
	require.Equal(t, []byte{7, 7, 7, 0, 0, 0, 0, 0, 0, 0}, spec.UnpackPixels(packed, 10))
}
