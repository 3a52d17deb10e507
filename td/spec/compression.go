package spec

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionRLE
	CompressionZstd
)

var ErrUnknownCompression = errors.New("unknown compression")

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionRLE:
		return "rle"
	case CompressionZstd:
		return "zstd"
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

// ParseCompression maps a codec name to its compression flag value.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "rle":
		return CompressionRLE, nil
	case "zstd":
		return CompressionZstd, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
}

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
)

func Compress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return data, nil
	case CompressionRLE:
		return rleCompress(data), nil
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, compression)
}

func Decompress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return data, nil
	case CompressionRLE:
		return rleDecompress(data), nil
	case CompressionZstd:
		result, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress: %w", err)
		}
		return result, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, compression)
}

// rleEscape marks an encoded run: [rleEscape, count, value].
const rleEscape = 0xFF

// rleCompress run-length encodes data. Runs longer than two bytes and
// any occurrence of the escape byte become [0xFF, count, value]; pairs
// and single bytes are emitted literally. Runs cap at 255.
func rleCompress(data []byte) []byte {
	result := make([]byte, 0, len(data)/2)

	for i := 0; i < len(data); {
		value := data[i]
		count := 1
		for i+count < len(data) && data[i+count] == value && count < 255 {
			count++
		}

		switch {
		case count > 2 || value == rleEscape:
			result = append(result, rleEscape, byte(count), value)
		case count == 2:
			result = append(result, value, value)
		default:
			result = append(result, value)
		}

		i += count
	}

	return result
}

func rleDecompress(data []byte) []byte {
	result := make([]byte, 0, len(data)*2)

	for i := 0; i < len(data); {
		// A trailing escape byte without a full run is literal.
		if data[i] == rleEscape && i+2 < len(data) {
			count := int(data[i+1])
			value := data[i+2]
			for range count {
				result = append(result, value)
			}
			i += 3
		} else {
			result = append(result, data[i])
			i++
		}
	}

	return result
}
