package viewer

import "github.com/tdeck-os/go-tdmap/tile"

// Cache is a bounded tile cache with least-recently-used eviction.
// A global access counter ranks entries; ties (possible only for
// entries never touched after insert) break by insertion order.
//
// Eviction removes the cache's reference to a raster but never mutates
// it, so a draw call keeps whatever snapshot Get returned.
type Cache struct {
	capacity int
	ticks    uint64
	seq      uint64
	entries  map[tile.ID]*cacheEntry
}

type cacheEntry struct {
	pix        []byte
	lastAccess uint64
	inserted   uint64
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[tile.ID]*cacheEntry, capacity),
	}
}

// Get returns the cached raster for a tile and bumps its access
// counter, or nil on a miss.
func (c *Cache) Get(tileID tile.ID) []byte {
	entry, ok := c.entries[tileID]
	if !ok {
		return nil
	}
	c.ticks++
	entry.lastAccess = c.ticks
	return entry.pix
}

// Contains reports presence without touching the access counter.
func (c *Cache) Contains(tileID tile.ID) bool {
	_, ok := c.entries[tileID]
	return ok
}

// Insert adds a raster to the cache, evicting least-recently-used
// entries until the population is back within capacity.
func (c *Cache) Insert(tileID tile.ID, pix []byte) {
	c.ticks++
	c.seq++
	c.entries[tileID] = &cacheEntry{pix: pix, lastAccess: c.ticks, inserted: c.seq}
	for len(c.entries) > c.capacity {
		c.evictOldest()
	}
}

func (c *Cache) evictOldest() {
	var victim tile.ID
	var victimEntry *cacheEntry
	for tileID, entry := range c.entries {
		if victimEntry == nil ||
			entry.lastAccess < victimEntry.lastAccess ||
			(entry.lastAccess == victimEntry.lastAccess && entry.inserted < victimEntry.inserted) {
			victim = tileID
			victimEntry = entry
		}
	}
	delete(c.entries, victim)
}

// PruneForZoom runs synchronously on a zoom change, before the first
// redraw at the new level. It keeps only ancestor tiles one to three
// levels below newZoom (usable for upscaled fallback), capped at half
// the cache capacity, and discards everything else.
func (c *Cache) PruneForZoom(newZoom int) {
	for tileID := range c.entries {
		dz := newZoom - int(tileID.Z)
		if dz < 1 || dz > 3 {
			delete(c.entries, tileID)
		}
	}
	for len(c.entries) > c.capacity/2 {
		c.evictOldest()
	}
}

func (c *Cache) Len() int {
	return len(c.entries)
}
