package shadows

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Config holds the engine's tunables. Zero fields take the DefaultConfig value.
type Config struct {
	Method              Method
	ShadowMapResolution int     // Side of the combined shadow-result surface
	Softness            float64 // GPU penumbra softness in [0, 1]
	Bias                float64 // Receiver bias, as a fraction of the ray length
	SDFSoftness         float64 // CPU sphere-trace penumbra factor (higher = harder)
	MaxCasters          int
	MaxSDFResolution    int
	TransformEpsilon    float64
	Viewport            r2.Box // World region covered by the screen-space mask
	MaskResolution      int    // Texels along the viewport's longer side
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		Method:              MethodBasic,
		ShadowMapResolution: 1024,
		Softness:            0.5,
		Bias:                0.005,
		SDFSoftness:         8,
		MaxCasters:          64,
		MaxSDFResolution:    MaxSDFResolution,
		TransformEpsilon:    DefaultTransformEpsilon,
		Viewport:            r2.Box{Min: Point{X: -512, Y: -512}, Max: Point{X: 512, Y: 512}},
		MaskResolution:      256,
	}
}

// withDefaults fills zero fields from DefaultConfig
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ShadowMapResolution <= 0 {
		c.ShadowMapResolution = d.ShadowMapResolution
	}
	if c.SDFSoftness <= 0 {
		c.SDFSoftness = d.SDFSoftness
	}
	if c.MaxCasters <= 0 {
		c.MaxCasters = d.MaxCasters
	}
	if c.MaxSDFResolution <= 0 {
		c.MaxSDFResolution = d.MaxSDFResolution
	}
	if c.TransformEpsilon <= 0 {
		c.TransformEpsilon = d.TransformEpsilon
	}
	if size := c.Viewport.Size(); size.X <= 0 || size.Y <= 0 {
		c.Viewport = d.Viewport
	}
	if c.MaskResolution <= 0 {
		c.MaskResolution = d.MaskResolution
	}
	return c
}

// casterState is the engine-owned derived state of one caster
type casterState struct {
	snap    CasterSnapshot
	polygon WorldPolygon
	edges   []Edge
	sdf     SDFGrid
}

// FrameStats summarises the work done by one Update
type FrameStats struct {
	Casters     int
	Truncated   int // Casters dropped by the MaxCasters cap
	Regenerated int
	Reused      int
	Invalidated int // Queued invalidations applied this frame
	Cache       CacheStats
}

// Frame is the result of one Update. Its slices are owned by the engine and
// rebuilt by the next Update.
type Frame struct {
	Index   uint64
	Method  Method
	Edges   []Edge
	Buffers *Buffers
	Mask    *OccluderMask // Only populated for MethodScreenSpace
	Lights  []Light
	Stats   FrameStats
}

// Engine is the per-scene shadow pass. Create one per active scene; it is not
// safe for concurrent use.
type Engine struct {
	cfg     Config
	frame   uint64
	cache   *Cache
	methods *MethodController
	states  map[CasterID]*casterState
	order   []CasterID
	edges   []Edge
	packer  *packer
	mask    *OccluderMask
	current Frame
}

// NewEngine creates an engine with the given configuration
func NewEngine(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	cache := NewCache(cfg.TransformEpsilon)

	size := cfg.Viewport.Size()
	maskW, maskH := cfg.MaskResolution, cfg.MaskResolution
	if size.X > size.Y {
		maskH = max(1, int(math.Round(float64(cfg.MaskResolution)*size.Y/size.X)))
	} else if size.Y > size.X {
		maskW = max(1, int(math.Round(float64(cfg.MaskResolution)*size.X/size.Y)))
	}

	return &Engine{
		cfg:     cfg,
		cache:   cache,
		methods: NewMethodController(cfg.Method, cache),
		states:  make(map[CasterID]*casterState),
		packer:  newPacker(cfg.MaxCasters, cfg.MaxSDFResolution),
		mask:    NewOccluderMask(cfg.Viewport, maskW, maskH),
	}
}

// Config returns the effective configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Method returns the active shadow method
func (e *Engine) Method() Method {
	return e.methods.Method()
}

// SetMethod switches the shadow method, invalidating every cached caster
func (e *Engine) SetMethod(m Method) bool {
	return e.methods.SetMethod(m)
}

// Invalidate queues a caster for regeneration at the start of the next frame
func (e *Engine) Invalidate(id CasterID) {
	e.cache.Invalidate(id)
}

// CacheStats returns the cache counters
func (e *Engine) CacheStats() CacheStats {
	return e.cache.Stats()
}

// FrameIndex returns the index of the last processed frame
func (e *Engine) FrameIndex() uint64 {
	return e.frame
}

// Frame returns the result of the last Update
func (e *Engine) Frame() *Frame {
	return &e.current
}

// Polygon returns the world polygon last generated for a caster
func (e *Engine) Polygon(id CasterID) (WorldPolygon, bool) {
	st, ok := e.states[id]
	if !ok {
		return nil, false
	}
	return st.polygon, true
}

// SDF returns the distance field last generated for a caster
func (e *Engine) SDF(id CasterID) (*SDFGrid, bool) {
	st, ok := e.states[id]
	if !ok || !st.sdf.Valid {
		return nil, false
	}
	return &st.sdf, true
}

// Update runs one frame of the shadow pass: apply queued invalidations,
// collect casters, regenerate stale geometry for the active method and pack
// the output buffers.
func (e *Engine) Update(scene Scene) *Frame {
	e.frame++
	method := e.methods.Method()
	stats := FrameStats{Invalidated: e.cache.ProcessInvalidations()}

	snaps := scene.Casters()
	if len(snaps) > e.cfg.MaxCasters {
		stats.Truncated = len(snaps) - e.cfg.MaxCasters
		Logger().Warn("too many shadow casters, truncating",
			"casters", len(snaps), "max", e.cfg.MaxCasters)
		snaps = snaps[:e.cfg.MaxCasters]
	}
	stats.Casters = len(snaps)

	alive := make(map[CasterID]struct{}, len(snaps))
	for _, s := range snaps {
		alive[s.Caster.ID] = struct{}{}
	}
	for _, id := range e.cache.Prune(alive) {
		delete(e.states, id)
	}

	e.order = e.order[:0]
	e.edges = e.edges[:0]
	e.packer.reset()

	for _, snap := range snaps {
		id := snap.Caster.ID
		st, ok := e.states[id]
		if !ok {
			st = &casterState{}
			e.states[id] = st
		}
		st.snap = snap

		if e.cache.Check(snap.Caster, snap.Transform, e.frame) {
			e.regenerate(st, method)
			stats.Regenerated++
		} else {
			stats.Reused++
		}

		e.order = append(e.order, id)
		e.edges = append(e.edges, st.edges...)
		e.packer.addCaster(snap.Caster, st.polygon, st.edges)
		if method == MethodSDF {
			e.packer.addSDF(&st.sdf)
		}
	}

	var mask *OccluderMask
	if method == MethodScreenSpace {
		e.mask.Clear()
		for _, id := range e.order {
			st := e.states[id]
			e.mask.AddPolygon(st.polygon, st.snap.Caster.Opacity)
		}
		mask = e.mask
	}

	stats.Cache = e.cache.Stats()
	e.current = Frame{
		Index:   e.frame,
		Method:  method,
		Edges:   e.edges,
		Buffers: e.packer.finish(method, e.cfg.Softness, e.cfg.Bias),
		Mask:    mask,
		Lights:  scene.Lights(),
		Stats:   stats,
	}

	Logger().Debug("shadow frame",
		"frame", e.frame,
		"method", method.String(),
		"casters", stats.Casters,
		"regenerated", stats.Regenerated,
		"reused", stats.Reused)

	return &e.current
}

// regenerate rebuilds the caster's polygon, edges and, for the SDF method,
// its distance field
func (e *Engine) regenerate(st *casterState, method Method) {
	c := st.snap.Caster
	st.polygon = GenerateVerticesFor(st.snap)
	st.edges = nil
	if CastsShadow(st.polygon) {
		st.edges = extractEdgesFor(c.ID, st.polygon)
	}

	st.sdf = SDFGrid{Caster: c.ID}
	if method == MethodSDF && c.EnableSDF {
		grid, clamped := generateSDF(c, st.polygon, e.cfg.MaxSDFResolution)
		if clamped {
			Logger().Warn("sdf resolution clamped",
				"caster", uint64(c.ID), "requested", c.SDFResolution, "max", e.cfg.MaxSDFResolution)
		}
		st.sdf = grid
	}
}

// ShadowAt returns how strongly a point is shadowed from a light position, in
// [0, 1], using the active method and the geometry of the last Update.
func (e *Engine) ShadowAt(point, lightPos Point) float64 {
	switch e.methods.Method() {
	case MethodScreenSpace:
		if e.current.Mask == nil {
			return 0
		}
		return SampleScreenSpace(point, lightPos, e.current.Mask, e.cfg.Bias)
	case MethodSDF:
		return e.sdfShadow(point, lightPos)
	default:
		return e.basicShadow(point, lightPos)
	}
}

// Shadowed reports whether a point is at least half shadowed from a light
func (e *Engine) Shadowed(point, lightPos Point) bool {
	return e.ShadowAt(point, lightPos) >= 0.5
}

// LightAt returns the unshadowed fraction of every light at a point, in the
// order of the last frame's lights
func (e *Engine) LightAt(point Point) []float64 {
	out := make([]float64, len(e.current.Lights))
	for i, l := range e.current.Lights {
		out[i] = 1 - e.ShadowAt(point, l.Position)
	}
	return out
}

// basicShadow is the hard-shadow query. The strongest blocking caster's
// opacity is reported.
func (e *Engine) basicShadow(point, lightPos Point) float64 {
	shadow := 0.0
	for _, id := range e.order {
		st := e.states[id]
		if e.skipsSelf(st, point) {
			continue
		}
		if IsPointInShadow(point, lightPos, st.edges) {
			shadow = math.Max(shadow, clamp01(st.snap.Caster.Opacity))
			if shadow >= 1 {
				break
			}
		}
	}
	return shadow
}

// sdfShadow combines per-caster soft shadows. Casters without a distance
// field fall back to the hard edge test.
func (e *Engine) sdfShadow(point, lightPos Point) float64 {
	shadow := 0.0
	for _, id := range e.order {
		st := e.states[id]
		if e.skipsSelf(st, point) {
			continue
		}
		var s float64
		if st.sdf.Valid {
			s = SampleShadow(point, lightPos, &st.sdf, e.cfg.SDFSoftness)
		} else if IsPointInShadow(point, lightPos, st.edges) {
			s = 1
		}
		shadow = math.Max(shadow, s*clamp01(st.snap.Caster.Opacity))
		if shadow >= 1 {
			break
		}
	}
	return shadow
}

// skipsSelf reports whether a caster must not shadow a point lying inside it
func (e *Engine) skipsSelf(st *casterState, point Point) bool {
	return !st.snap.Caster.SelfShadow && len(st.edges) > 0 && PointInPolygon(point, st.polygon)
}
