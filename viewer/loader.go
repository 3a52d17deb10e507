package viewer

import (
	"github.com/tdeck-os/go-tdmap/td"
	"github.com/tdeck-os/go-tdmap/tile"
)

// loader coordinates asynchronous tile loads. All of its maps are
// mutated only from the viewer's frame loop (request, drain); the load
// goroutines communicate exclusively through the results channel, so no
// locking is needed and the cache never observes a half-applied load.
type loader struct {
	reader     *td.Reader
	maxPending int

	pending map[tile.ID]struct{}
	missing map[tile.ID]struct{}
	results chan loadResult

	indexLookups uint64
}

type loadResult struct {
	id  tile.ID
	pix []byte
	err error
}

func newLoader(reader *td.Reader, maxPending int) *loader {
	if maxPending <= 0 {
		maxPending = 1
	}
	return &loader{
		reader:     reader,
		maxPending: maxPending,
		pending:    make(map[tile.ID]struct{}),
		missing:    make(map[tile.ID]struct{}),
		// Buffered to maxPending: a load goroutine can always deliver
		// its result and exit without waiting for the next drain.
		results: make(chan loadResult, maxPending),
	}
}

// request starts an asynchronous load for a tile unless it is already
// confirmed missing, already in flight, or the in-flight cap is
// reached (the caller simply retries next frame). A coordinate absent
// from the index is memoized in the missing set so later frames skip
// the lookup entirely.
func (l *loader) request(tileID tile.ID) {
	if _, confirmed := l.missing[tileID]; confirmed {
		return
	}
	if _, inflight := l.pending[tileID]; inflight {
		return
	}
	if len(l.pending) >= l.maxPending {
		return
	}

	l.indexLookups++
	if _, found := l.reader.FindTile(tileID); !found {
		l.missing[tileID] = struct{}{}
		return
	}

	l.pending[tileID] = struct{}{}
	go func() {
		pix, err := l.reader.ReadTile(tileID)
		l.results <- loadResult{id: tileID, pix: pix, err: err}
	}()
}

// drain applies every completed load without blocking and reports how
// many rasters entered the cache. Failed reads just leave the pending
// set; the next frame's request retries them.
func (l *loader) drain(cache *Cache) (applied int) {
	for {
		select {
		case result := <-l.results:
			if l.apply(cache, result) {
				applied++
			}
		default:
			return applied
		}
	}
}

// await blocks for one completion when loads are in flight, then drains
// the rest. Used by batch renderers that have no frame loop to idle in.
func (l *loader) await(cache *Cache) (applied int) {
	if len(l.pending) == 0 {
		return 0
	}
	if l.apply(cache, <-l.results) {
		applied++
	}
	return applied + l.drain(cache)
}

func (l *loader) apply(cache *Cache, result loadResult) bool {
	delete(l.pending, result.id)
	if result.err != nil || len(result.pix) == 0 {
		return false
	}
	cache.Insert(result.id, result.pix)
	return true
}

func (l *loader) isMissing(tileID tile.ID) bool {
	_, confirmed := l.missing[tileID]
	return confirmed
}

// clearMissing forgets confirmed-missing coordinates. Called on zoom
// changes: the keys change with the zoom level, so the set would only
// pin stale entries.
func (l *loader) clearMissing() {
	clear(l.missing)
}
