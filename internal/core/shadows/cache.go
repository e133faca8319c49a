package shadows

import "math"

// DefaultTransformEpsilon is the per-component tolerance used to decide that
// a dynamic caster has moved
const DefaultTransformEpsilon = 1e-4

// CacheRecord is the last known state of a caster's derived geometry
type CacheRecord struct {
	LastPosition    Point
	LastRotation    float64
	LastScale       Point
	IsCached        bool
	IsDirty         bool
	LastUpdateFrame uint64
}

// matches reports whether t equals the recorded transform within epsilon on
// every component
func (r *CacheRecord) matches(t Transform, epsilon float64) bool {
	return math.Abs(t.Position.X-r.LastPosition.X) <= epsilon &&
		math.Abs(t.Position.Y-r.LastPosition.Y) <= epsilon &&
		math.Abs(t.Rotation-r.LastRotation) <= epsilon &&
		math.Abs(t.Scale.X-r.LastScale.X) <= epsilon &&
		math.Abs(t.Scale.Y-r.LastScale.Y) <= epsilon
}

// CacheStats is a snapshot of the cache's hit/miss counters
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Records int
	Pending int
}

// HitRate returns hits / (hits + misses), or 0 before any check
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache decides, once per frame and per caster, whether derived geometry must
// be regenerated. It is not safe for concurrent use.
type Cache struct {
	records map[CasterID]*CacheRecord
	pending []CasterID
	epsilon float64

	hits   uint64
	misses uint64
}

// NewCache creates an empty cache. A non-positive epsilon selects
// DefaultTransformEpsilon.
func NewCache(epsilon float64) *Cache {
	if epsilon <= 0 {
		epsilon = DefaultTransformEpsilon
	}
	return &Cache{
		records: make(map[CasterID]*CacheRecord),
		epsilon: epsilon,
	}
}

// Check runs the staleness test for one caster and reports whether its
// geometry must be regenerated this frame. A miss stores the new transform,
// clears the dirty flag and records the frame.
func (c *Cache) Check(caster Caster, t Transform, frame uint64) bool {
	rec, ok := c.records[caster.ID]
	if !ok {
		rec = &CacheRecord{}
		c.records[caster.ID] = rec
	}

	stale := !caster.EnableCache || !rec.IsCached || rec.IsDirty
	if !stale && !caster.IsStatic {
		stale = !rec.matches(t, c.epsilon)
	}

	if !stale {
		c.hits++
		return false
	}

	rec.LastPosition = t.Position
	rec.LastRotation = t.Rotation
	rec.LastScale = t.Scale
	rec.IsCached = true
	rec.IsDirty = false
	rec.LastUpdateFrame = frame
	c.misses++
	return true
}

// Invalidate queues a caster for regeneration. The request takes effect at the
// start of the next frame.
func (c *Cache) Invalidate(id CasterID) {
	c.pending = append(c.pending, id)
}

// ProcessInvalidations applies queued requests. Requests for casters without
// a record are dropped. It returns the number of records marked dirty.
func (c *Cache) ProcessInvalidations() int {
	applied := 0
	for _, id := range c.pending {
		if rec, ok := c.records[id]; ok {
			rec.IsDirty = true
			applied++
		}
	}
	c.pending = c.pending[:0]
	return applied
}

// InvalidateAll marks every record dirty immediately and resets the counters
func (c *Cache) InvalidateAll() {
	for _, rec := range c.records {
		rec.IsDirty = true
	}
	c.ResetStats()
}

// ResetStats zeroes the hit and miss counters
func (c *Cache) ResetStats() {
	c.hits = 0
	c.misses = 0
}

// Forget drops the record of a caster that left the scene
func (c *Cache) Forget(id CasterID) {
	delete(c.records, id)
}

// Prune drops every record whose caster is not in alive and returns the
// removed IDs
func (c *Cache) Prune(alive map[CasterID]struct{}) []CasterID {
	var removed []CasterID
	for id := range c.records {
		if _, ok := alive[id]; !ok {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		delete(c.records, id)
	}
	return removed
}

// Record returns a copy of a caster's record
func (c *Cache) Record(id CasterID) (CacheRecord, bool) {
	rec, ok := c.records[id]
	if !ok {
		return CacheRecord{}, false
	}
	return *rec, true
}

// Stats returns the current counters
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Records: len(c.records),
		Pending: len(c.pending),
	}
}
