package spec

// PaletteSize is the number of semantic palette entries.
const PaletteSize = 8

// Palette indices by semantic role. The engine applies this fixed
// palette; palette bytes declared in the file are ignored.
const (
	ColorRoad      uint8 = iota // pure black: roads, text, borders
	ColorRoadMinor              // near black: secondary roads
	ColorDetail                 // dark gray: tertiary features
	ColorOutline                // medium dark: parks, water outlines
	ColorBuilding               // medium gray: building fill
	ColorLand                   // light gray: land areas
	ColorWater                  // near white: water areas
	ColorBack                   // pure white: background
)

// PaletteRGB is the engine's grayscale palette, one {R, G, B} per index.
var PaletteRGB = [PaletteSize][3]uint8{
	{0, 0, 0},
	{40, 40, 40},
	{80, 80, 80},
	{120, 120, 120},
	{160, 160, 160},
	{200, 200, 200},
	{230, 230, 230},
	{255, 255, 255},
}

// RGB565 converts 8-bit RGB to the 16-bit format stored in the
// archive's palette block.
func RGB565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// PaletteRGB565 is the palette in archive block form.
var PaletteRGB565 = func() (p [PaletteSize]uint16) {
	for i, c := range PaletteRGB {
		p[i] = RGB565(c[0], c[1], c[2])
	}
	return p
}()
