// Package viewer implements the offline map engine: a bounded LRU tile
// cache fed by asynchronous archive loads, ancestor fallback for tiles
// that are not ready, viewport geometry and label placement.
//
// A Viewer owns all of its state and is constructed fresh per archive;
// nothing is shared between instances. Its methods must be called from
// a single goroutine (the frame/input loop). Load completions are
// applied only inside Update and AwaitLoads, so a Draw never observes a
// half-inserted cache entry.
package viewer

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/tdeck-os/go-tdmap/td"
	"github.com/tdeck-os/go-tdmap/td/spec"
	"github.com/tdeck-os/go-tdmap/tile"
)

const (
	DefaultCacheCapacity = 32
	DefaultMaxPending    = 4
	DefaultMaxLabels     = 4000
	DefaultPanSpeed      = 0.25
)

type Viewer struct {
	logger *slog.Logger
	reader *td.Reader
	cache  *Cache
	loader *loader

	viewport Viewport
	tileSize int
	minZoom  int
	maxZoom  int
	panSpeed float64

	labels          []spec.Label
	labelsTruncated bool
	showLabels      bool

	redraw func()

	cacheHits   uint64
	cacheMisses uint64
}

// Stats exposes diagnostic counters for the engine.
type Stats struct {
	CacheLen        int
	Pending         int
	Missing         int
	CacheHits       uint64
	CacheMisses     uint64
	IndexLookups    uint64
	LabelsLoaded    int
	LabelsTruncated bool
}

type viewerConfig struct {
	CacheCapacity int
	MaxPending    int
	MaxLabels     int
	PanSpeed      float64
	Logger        *slog.Logger
	Redraw        func()
}

type Option func(*viewerConfig)

// WithCacheCapacity bounds the number of decompressed tiles kept
// resident.
func WithCacheCapacity(capacity int) Option {
	return func(c *viewerConfig) { c.CacheCapacity = capacity }
}

// WithMaxPending bounds concurrent in-flight tile loads.
func WithMaxPending(maxPending int) Option {
	return func(c *viewerConfig) { c.MaxPending = maxPending }
}

// WithMaxLabels caps the label store; records beyond the cap are not
// loaded and Stats reports the truncation.
func WithMaxLabels(maxLabels int) Option {
	return func(c *viewerConfig) { c.MaxLabels = maxLabels }
}

// WithPanSpeed sets the pan step in tile units.
func WithPanSpeed(speed float64) Option {
	return func(c *viewerConfig) { c.PanSpeed = speed }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *viewerConfig) { c.Logger = logger }
}

// WithRedraw registers the host's "redraw needed" signal, invoked when
// completed loads change what a frame would show.
func WithRedraw(redraw func()) Option {
	return func(c *viewerConfig) { c.Redraw = redraw }
}

// New creates a viewer over an open archive. The label section (when
// present) is loaded up front; tiles load on demand as frames request
// them.
func New(reader *td.Reader, width, height int, opts ...Option) (*Viewer, error) {
	config := viewerConfig{
		CacheCapacity: DefaultCacheCapacity,
		MaxPending:    DefaultMaxPending,
		MaxLabels:     DefaultMaxLabels,
		PanSpeed:      DefaultPanSpeed,
		Logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	header := reader.Header()
	minZoom := max(int(header.MinZoom), 0)
	maxZoom := int(header.MaxZoom)

	labels, truncated, err := reader.Labels(config.MaxLabels)
	if err != nil {
		return nil, err
	}
	if truncated {
		config.Logger.Warn("tdmap: label store truncated",
			"loaded", len(labels), "declared", header.LabelCount)
	}

	v := &Viewer{
		logger:   config.Logger,
		reader:   reader,
		cache:    NewCache(config.CacheCapacity),
		loader:   newLoader(reader, config.MaxPending),
		tileSize: reader.TileSize(),
		minZoom:  minZoom,
		maxZoom:  maxZoom,
		panSpeed: config.PanSpeed,

		labels:          labels,
		labelsTruncated: truncated,
		showLabels:      true,

		redraw: config.Redraw,
	}
	v.viewport = Viewport{
		CenterX: float64(uint64(1)<<minZoom) / 2,
		CenterY: float64(uint64(1)<<minZoom) / 2,
		Zoom:    minZoom,
		Width:   width,
		Height:  height,
	}
	return v, nil
}

// Update applies completed loads to the cache and reports whether a
// redraw is needed. Call once per frame before drawing.
func (v *Viewer) Update() bool {
	applied := v.loader.drain(v.cache)
	if applied > 0 && v.redraw != nil {
		v.redraw()
	}
	return applied > 0
}

// AwaitLoads blocks until at least one in-flight load completes, then
// applies everything that finished. It returns false when nothing was
// in flight. Batch renderers use this instead of a frame loop.
func (v *Viewer) AwaitLoads() bool {
	return v.loader.await(v.cache) > 0
}

// Pending reports the number of in-flight tile loads.
func (v *Viewer) Pending() int {
	return len(v.loader.pending)
}

// Draw renders one frame: every visible tile from cache, fallback or
// placeholder, then the visible labels. Missing or unready tiles never
// fail the frame. Loads for uncached visible tiles are requested
// nearest-to-center first, so the in-flight cap favors what the user is
// looking at.
func (v *Viewer) Draw(surface Surface) {
	visible := v.viewport.VisibleTiles(v.tileSize)

	wanted := make([]tile.ID, 0, len(visible))
	for _, vt := range visible {
		pix := v.cache.Get(vt.ID)
		if pix != nil {
			v.cacheHits++
			surface.Blit(vt.ScreenX, vt.ScreenY, &Bitmap{Pix: pix, W: v.tileSize, H: v.tileSize})
			continue
		}
		v.cacheMisses++
		wanted = append(wanted, vt.ID)

		if fb, ok := resolveFallback(v.cache, vt.ID, v.minZoom, v.tileSize); ok {
			surface.BlitScaled(
				vt.ScreenX, vt.ScreenY, v.tileSize, v.tileSize,
				&Bitmap{Pix: fb.pix, W: v.tileSize, H: v.tileSize},
				fb.srcRect,
			)
		} else {
			surface.Placeholder(vt.ScreenX, vt.ScreenY, v.tileSize, v.tileSize, v.loader.isMissing(vt.ID))
		}
	}

	slices.SortFunc(wanted, func(a, b tile.ID) int {
		return cmp.Compare(v.viewport.distanceToCenter(a), v.viewport.distanceToCenter(b))
	})
	for _, id := range wanted {
		v.loader.request(id)
	}

	if v.showLabels && len(v.labels) > 0 {
		candidates := visibleLabels(v.labels, &v.viewport, v.tileSize)
		for _, label := range placeLabels(candidates, surface) {
			surface.DrawText(label.X, label.Y, label.Text)
		}
	}
}

// Pan moves the view by the given number of directional steps, scaled
// by the configured pan speed.
func (v *Viewer) Pan(stepsX, stepsY int) {
	v.viewport.Pan(float64(stepsX)*v.panSpeed, float64(stepsY)*v.panSpeed)
}

// ZoomIn steps one zoom level deeper, keeping the geographic point
// under the viewport center. It reports whether the zoom changed.
func (v *Viewer) ZoomIn() bool {
	return v.zoomTo(v.viewport.Zoom + 1)
}

// ZoomOut steps one zoom level out, keeping the geographic point under
// the viewport center. It reports whether the zoom changed.
func (v *Viewer) ZoomOut() bool {
	return v.zoomTo(v.viewport.Zoom - 1)
}

func (v *Viewer) zoomTo(zoom int) bool {
	if zoom < v.minZoom || zoom > v.maxZoom || zoom == v.viewport.Zoom {
		return false
	}
	v.viewport.ZoomTo(zoom)

	// Before the first redraw at the new level: drop stale tiles, keep
	// usable ancestors, and forget missing keys (their zoom changed).
	v.cache.PruneForZoom(zoom)
	v.loader.clearMissing()
	return true
}

// CenterOn moves the view to a geographic coordinate at the current
// zoom.
func (v *Viewer) CenterOn(lat, lon float64) {
	v.viewport.CenterOn(lat, lon)
}

// Center returns the geographic coordinate under the viewport center,
// for coordinate readouts.
func (v *Viewer) Center() (lat, lon float64) {
	return v.viewport.CenterLatLon()
}

func (v *Viewer) Zoom() int {
	return v.viewport.Zoom
}

// ToggleLabels flips label drawing and returns the new state.
func (v *Viewer) ToggleLabels() bool {
	v.showLabels = !v.showLabels
	return v.showLabels
}

func (v *Viewer) Stats() Stats {
	return Stats{
		CacheLen:        v.cache.Len(),
		Pending:         len(v.loader.pending),
		Missing:         len(v.loader.missing),
		CacheHits:       v.cacheHits,
		CacheMisses:     v.cacheMisses,
		IndexLookups:    v.loader.indexLookups,
		LabelsLoaded:    len(v.labels),
		LabelsTruncated: v.labelsTruncated,
	}
}
