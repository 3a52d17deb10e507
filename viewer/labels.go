package viewer

import (
	"cmp"
	"slices"
	"strings"

	"github.com/tdeck-os/go-tdmap/proj"
	"github.com/tdeck-os/go-tdmap/td/spec"
)

// labelMargin is the pixel gap greedy placement keeps between accepted
// label boxes.
const labelMargin = 2

// labelCandidate is a label that passed zoom and viewport filtering,
// projected to screen pixels.
type labelCandidate struct {
	label spec.Label
	x, y  int
	dist2 float64
}

// PlacedLabel is a label accepted for drawing this frame.
type PlacedLabel struct {
	Text string
	Type spec.LabelType
	X, Y int
}

// visibleLabels scans the label store for records whose zoom window
// contains the current zoom and whose projected position lands on
// screen (with a one-tile margin, so labels anchored just off-screen
// can still claim space).
func visibleLabels(labels []spec.Label, v *Viewport, tileSize int) []labelCandidate {
	worldX, worldY := v.topLeftWorld(tileSize)

	candidates := make([]labelCandidate, 0, 32)
	for _, label := range labels {
		if v.Zoom < int(label.MinZoom) || v.Zoom > int(label.MaxZoom) {
			continue
		}

		tx, ty := proj.LatLonToTile(label.Lat, label.Lon, v.Zoom)
		x := int(tx*float64(tileSize) - worldX)
		y := int(ty*float64(tileSize) - worldY)
		if x < -tileSize || y < -tileSize || x > v.Width+tileSize || y > v.Height+tileSize {
			continue
		}

		dx := tx - v.CenterX
		dy := ty - v.CenterY
		candidates = append(candidates, labelCandidate{
			label: label,
			x:     x,
			y:     y,
			dist2: dx*dx + dy*dy,
		})
	}
	return candidates
}

// placeLabels orders candidates by category priority then distance from
// the screen center, and greedily accepts each one whose text box does
// not overlap an already-accepted box. The ordering is fully
// deterministic for a given candidate set.
func placeLabels(candidates []labelCandidate, surface Surface) []PlacedLabel {
	slices.SortFunc(candidates, func(a, b labelCandidate) int {
		return cmp.Or(
			cmp.Compare(a.label.Type, b.label.Type),
			cmp.Compare(a.dist2, b.dist2),
			strings.Compare(a.label.Text, b.label.Text),
		)
	})

	placed := make([]PlacedLabel, 0, len(candidates))
	boxes := make([]Rect, 0, len(candidates))

	for _, c := range candidates {
		w, h := surface.TextSize(c.label.Text)
		box := Rect{X: c.x - w/2, Y: c.y - h/2, W: w, H: h}

		if overlapsAny(box, boxes) {
			continue
		}

		boxes = append(boxes, box)
		placed = append(placed, PlacedLabel{
			Text: c.label.Text,
			Type: c.label.Type,
			X:    box.X,
			Y:    box.Y,
		})
	}
	return placed
}

func overlapsAny(box Rect, boxes []Rect) bool {
	for _, other := range boxes {
		if box.X < other.X+other.W+labelMargin &&
			other.X < box.X+box.W+labelMargin &&
			box.Y < other.Y+other.H+labelMargin &&
			other.Y < box.Y+box.H+labelMargin {
			return true
		}
	}
	return false
}
