package spec

// Tile rasters are palette-indexed, 3 bits per pixel, 8 pixels packed
// into 3 bytes. The unpacked form is one index byte per pixel.

// RawTileLength returns the byte length of an unpacked square tile raster.
func RawTileLength(tileSize int) int {
	return tileSize * tileSize
}

// PackedTileLength returns the byte length of a 3-bit packed tile raster.
func PackedTileLength(tileSize int) int {
	return (tileSize*tileSize*3 + 7) / 8
}

// PackPixels packs palette indices (values 0-7) into the 3-bit wire
// form. The pixel count is padded to a multiple of 8 with zeros.
func PackPixels(indices []byte) []byte {
	result := make([]byte, 0, (len(indices)*3+7)/8)

	var group [8]byte
	for i := 0; i < len(indices); i += 8 {
		for j := range 8 {
			if i+j < len(indices) {
				group[j] = indices[i+j] & 0x07
			} else {
				group[j] = 0
			}
		}
		result = append(result,
			group[0]|group[1]<<3|(group[2]&0x03)<<6,
			(group[2]>>2)&0x01|group[3]<<1|group[4]<<4|(group[5]&0x01)<<7,
			(group[5]>>1)&0x03|group[6]<<2|group[7]<<5,
		)
	}

	return result
}

// UnpackPixels expands 3-bit packed pixels to one byte per pixel,
// producing exactly count indices.
func UnpackPixels(packed []byte, count int) []byte {
	result := make([]byte, 0, count)

	for i := 0; i+2 < len(packed) && len(result) < count; i += 3 {
		b0, b1, b2 := packed[i], packed[i+1], packed[i+2]
		result = append(result,
			b0&0x07,
			(b0>>3)&0x07,
			(b0>>6)&0x03|(b1&0x01)<<2,
			(b1>>1)&0x07,
			(b1>>4)&0x07,
			(b1>>7)&0x01|(b2&0x03)<<1,
			(b2>>2)&0x07,
			(b2>>5)&0x07,
		)
	}

	if len(result) > count {
		result = result[:count]
	}
	for len(result) < count {
		result = append(result, 0)
	}
	return result
}
