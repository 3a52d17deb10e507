package spec

import "encoding/binary"

// LabelType classifies a place label. Lower values carry higher
// placement priority.
type LabelType uint8

const (
	LabelCity LabelType = iota
	LabelTown
	LabelVillage
	LabelSuburb
	LabelRoad
	LabelWater
)

func (t LabelType) String() string {
	switch t {
	case LabelCity:
		return "city"
	case LabelTown:
		return "town"
	case LabelVillage:
		return "village"
	case LabelSuburb:
		return "suburb"
	case LabelRoad:
		return "road"
	case LabelWater:
		return "water"
	}
	return "unknown"
}

const (
	// MaxLabelTextLength bounds the length-prefixed UTF-8 text.
	MaxLabelTextLength = 255

	// labelFixedLength covers lat(4) lon(4) zoomMin(1) zoomMax(1)
	// type(1) textLen(1).
	labelFixedLength = 12

	// coordScale converts between fixed-point degrees on disk and
	// floating-point degrees in memory.
	coordScale = 1e6
)

// Label is one geo-tagged text record from the flat label section.
type Label struct {
	Lat     float64
	Lon     float64
	MinZoom uint8
	MaxZoom uint8
	Type    LabelType
	Text    string
}

func AppendLabel(buffer []byte, label Label) []byte {
	text := label.Text
	if len(text) > MaxLabelTextLength {
		text = text[:MaxLabelTextLength]
	}
	buffer = binary.LittleEndian.AppendUint32(buffer, uint32(int32(label.Lat*coordScale)))
	buffer = binary.LittleEndian.AppendUint32(buffer, uint32(int32(label.Lon*coordScale)))
	buffer = append(buffer, label.MinZoom, label.MaxZoom, uint8(label.Type), uint8(len(text)))
	buffer = append(buffer, text...)
	return buffer
}

// LabelDecoder decodes the flat label section incrementally. Feed may
// be called with arbitrarily sized chunks; a record whose text straddles
// a chunk boundary is carried over and completed by the next call.
type LabelDecoder struct {
	carry []byte
}

// Feed decodes complete records from the carried-over bytes plus chunk,
// calling emit for each. It stops early when emit returns false and
// reports whether decoding should continue.
func (d *LabelDecoder) Feed(chunk []byte, emit func(Label) bool) bool {
	data := chunk
	if len(d.carry) > 0 {
		data = append(d.carry, chunk...)
		d.carry = nil
	}

	for {
		if len(data) < labelFixedLength {
			break
		}
		total := labelFixedLength + int(data[11])
		if len(data) < total {
			break
		}

		label := Label{
			Lat:     float64(int32(binary.LittleEndian.Uint32(data))) / coordScale,
			Lon:     float64(int32(binary.LittleEndian.Uint32(data[4:]))) / coordScale,
			MinZoom: data[8],
			MaxZoom: data[9],
			Type:    LabelType(data[10]),
			Text:    string(data[labelFixedLength:total]),
		}
		data = data[total:]

		if !emit(label) {
			return false
		}
	}

	if len(data) > 0 {
		d.carry = append([]byte(nil), data...)
	}
	return true
}
