package viewer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdeck-os/go-tdmap/internal"
	"github.com/tdeck-os/go-tdmap/td"
	"github.com/tdeck-os/go-tdmap/td/spec"
	"github.com/tdeck-os/go-tdmap/tile"
)

// fakeSurface records draw calls for assertions. Text boxes measure
// 6 pixels per byte by 10 pixels high.
type fakeSurface struct {
	w, h         int
	blits        []Rect
	scaled       []Rect
	placeholders []Rect
	missing      int
	texts        []string
}

func newFakeSurface(w, h int) *fakeSurface {
	return &fakeSurface{w: w, h: h}
}

func (s *fakeSurface) Size() (int, int) { return s.w, s.h }

func (s *fakeSurface) Blit(x, y int, src *Bitmap) {
	s.blits = append(s.blits, Rect{X: x, Y: y, W: src.W, H: src.H})
}

func (s *fakeSurface) BlitScaled(x, y, w, h int, src *Bitmap, srcRect Rect) {
	s.scaled = append(s.scaled, Rect{X: x, Y: y, W: w, H: h})
}

func (s *fakeSurface) DrawText(x, y int, text string) {
	s.texts = append(s.texts, text)
}

func (s *fakeSurface) TextSize(text string) (int, int) {
	return 6 * len(text), 10
}

func (s *fakeSurface) Placeholder(x, y, w, h int, missing bool) {
	s.placeholders = append(s.placeholders, Rect{X: x, Y: y, W: w, H: h})
	if missing {
		s.missing++
	}
}

func (s *fakeSurface) reset() {
	s.blits = s.blits[:0]
	s.scaled = s.scaled[:0]
	s.placeholders = s.placeholders[:0]
	s.missing = 0
	s.texts = s.texts[:0]
}

const viewerTileSize = 16

// viewerTestArchive holds the full z0 tile, three of the four z1 tiles
// ((1,1,1) is absent) and one label.
func viewerTestArchive(t *testing.T) *td.Reader {
	t.Helper()
	tiles := map[tile.ID][]byte{
		{X: 0, Y: 0, Z: 0}: internal.QuadRaster(viewerTileSize, [4]uint8{1, 2, 3, 4}),
		{X: 0, Y: 0, Z: 1}: internal.SolidRaster(viewerTileSize, 1),
		{X: 1, Y: 0, Z: 1}: internal.SolidRaster(viewerTileSize, 2),
		{X: 0, Y: 1, Z: 1}: internal.SolidRaster(viewerTileSize, 3),
	}
	labels := []spec.Label{
		{Lat: 0, Lon: 0, MinZoom: 0, MaxZoom: 14, Type: spec.LabelCity, Text: "Null Island"},
	}
	filePath := filepath.Join(t.TempDir(), "viewer.tdmap")
	require.NoError(t, internal.CreateArchive(
		filePath, viewerTileSize, spec.CompressionRLE, tiles, labels))

	reader, err := td.NewFileReader(filePath)
	require.NoError(t, err)
	t.Cleanup(func() { reader.Close() })
	return reader
}

func settle(t *testing.T, v *Viewer, surface *fakeSurface) {
	t.Helper()
	for range 16 {
		surface.reset()
		v.Draw(surface)
		if v.Pending() == 0 {
			return
		}
		for v.Pending() > 0 {
			v.AwaitLoads()
		}
	}
	t.Fatal("viewer did not settle")
}

func TestViewerLoadsThenBlits(t *testing.T) {
	v, err := New(viewerTestArchive(t), 32, 32)
	require.NoError(t, err)
	surface := newFakeSurface(32, 32)

	// First frame: nothing cached yet, the visible tile is a
	// placeholder and its load is requested.
	v.Draw(surface)
	require.Empty(t, surface.blits)
	require.NotEmpty(t, surface.placeholders)
	require.Equal(t, 1, v.Pending())

	require.True(t, v.AwaitLoads())
	surface.reset()
	v.Draw(surface)
	require.Len(t, surface.blits, 1)
	require.Empty(t, surface.placeholders)
	require.Zero(t, v.Pending())

	stats := v.Stats()
	require.Equal(t, 1, stats.CacheLen)
	require.Positive(t, stats.CacheHits)
}

func TestViewerFallbackWhileZoomedTileLoads(t *testing.T) {
	v, err := New(viewerTestArchive(t), 64, 64)
	require.NoError(t, err)
	surface := newFakeSurface(64, 64)
	settle(t, v, surface)

	// Zoom keeps the z0 tile as a fallback ancestor. The next frame
	// upscales it for every z1 coordinate while loads are in flight.
	require.True(t, v.ZoomIn())
	surface.reset()
	v.Draw(surface)
	require.Empty(t, surface.blits)
	require.Len(t, surface.scaled, 4)

	settle(t, v, surface)
	require.Len(t, surface.blits, 3)
	// (1,1,1) is not in the archive: fallback keeps covering it.
	require.Len(t, surface.scaled, 1)
	require.Zero(t, surface.missing)
}

func TestViewerMissingTileStability(t *testing.T) {
	v, err := New(viewerTestArchive(t), 64, 64)
	require.NoError(t, err)
	surface := newFakeSurface(64, 64)
	settle(t, v, surface)
	require.True(t, v.ZoomIn())
	settle(t, v, surface)

	// The absent coordinate is confirmed missing; repeated frames must
	// not re-touch the index for it.
	lookups := v.Stats().IndexLookups
	for range 5 {
		surface.reset()
		v.Draw(surface)
		require.Zero(t, v.Pending())
	}
	require.Equal(t, lookups, v.Stats().IndexLookups)
	require.Equal(t, 1, v.Stats().Missing)
}

func TestViewerZoomOutPrunesState(t *testing.T) {
	v, err := New(viewerTestArchive(t), 64, 64)
	require.NoError(t, err)
	surface := newFakeSurface(64, 64)
	settle(t, v, surface)
	require.True(t, v.ZoomIn())
	settle(t, v, surface)
	require.Equal(t, 1, v.Stats().Missing)

	// Zoom bounds: the archive spans z0-z1 only.
	require.False(t, v.ZoomIn())

	require.True(t, v.ZoomOut())
	stats := v.Stats()
	require.Zero(t, stats.Missing)
	require.Zero(t, stats.CacheLen)

	settle(t, v, surface)
	require.Len(t, surface.blits, 1)
}

func TestViewerLabels(t *testing.T) {
	v, err := New(viewerTestArchive(t), 64, 64)
	require.NoError(t, err)
	surface := newFakeSurface(64, 64)
	settle(t, v, surface)

	// The viewport starts centered on (0, 0), where the label anchors.
	require.Equal(t, []string{"Null Island"}, surface.texts)

	require.False(t, v.ToggleLabels())
	surface.reset()
	v.Draw(surface)
	require.Empty(t, surface.texts)

	require.True(t, v.ToggleLabels())
}

func TestViewerPanRequestsNewTiles(t *testing.T) {
	v, err := New(viewerTestArchive(t), 32, 32, WithPanSpeed(0.25))
	require.NoError(t, err)
	surface := newFakeSurface(32, 32)
	settle(t, v, surface)
	require.True(t, v.ZoomIn())

	// Pan south-east by half a tile; the view now spans all four z1
	// coordinates.
	v.Pan(2, 2)
	settle(t, v, surface)
	require.Len(t, surface.blits, 3)

	lat, lon := v.Center()
	require.Positive(t, lon)
	require.Negative(t, lat)
}

func TestViewerUpdateSignalsRedraw(t *testing.T) {
	redraws := 0
	v, err := New(viewerTestArchive(t), 32, 32, WithRedraw(func() { redraws++ }))
	require.NoError(t, err)

	surface := newFakeSurface(32, 32)
	v.Draw(surface)
	require.Equal(t, 1, v.Pending())

	// Update is the frame-loop poll: it fires the redraw hook exactly
	// when a completed load entered the cache.
	require.False(t, redraws > 0)
	for v.Pending() > 0 {
		v.Update()
	}
	require.Equal(t, 1, redraws)

	// Nothing new completed: no redraw signal.
	require.False(t, v.Update())
	require.Equal(t, 1, redraws)
}
