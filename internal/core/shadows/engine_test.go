package shadows

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

type testScene struct {
	casters []CasterSnapshot
	lights  []Light
}

func (s *testScene) Casters() []CasterSnapshot { return s.casters }
func (s *testScene) Lights() []Light           { return s.lights }

func rectSnapshot(id CasterID, pos Point, static bool) CasterSnapshot {
	return CasterSnapshot{
		Caster: Caster{
			ID:          id,
			Shape:       Shape{Kind: ShapeRectangle, Size: Point{X: 2, Y: 2}},
			Opacity:     1,
			IsStatic:    static,
			EnableCache: true,
		},
		Transform: Transform{Position: pos, Scale: Point{X: 1, Y: 1}},
	}
}

func circleSnapshot(id CasterID) CasterSnapshot {
	return CasterSnapshot{
		Caster: Caster{
			ID:            id,
			Shape:         Shape{Kind: ShapeCircle, Radius: 1},
			Opacity:       1,
			EnableCache:   true,
			EnableSDF:     true,
			SDFResolution: 32,
			SDFPadding:    0.5,
		},
		Transform: IdentityTransform(),
	}
}

func TestEngineBasicScenario(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	scene := &testScene{
		casters: []CasterSnapshot{rectSnapshot(1, Point{}, true)},
		lights:  []Light{{ID: "sun", Position: Point{X: 0, Y: -10}, Radius: 50, Intensity: 1}},
	}

	frame := engine.Update(scene)

	if len(frame.Edges) != 4 {
		t.Fatalf("Expected 4 edges, got %d", len(frame.Edges))
	}
	light := Point{X: 0, Y: -10}
	if s := engine.ShadowAt(Point{X: 0, Y: 10}, light); s != 1 {
		t.Errorf("Expected full shadow behind the rectangle, got %v", s)
	}
	if s := engine.ShadowAt(Point{X: 10, Y: 10}, light); s != 0 {
		t.Errorf("Expected no shadow to the side, got %v", s)
	}

	lit := engine.LightAt(Point{X: 0, Y: 10})
	if len(lit) != 1 || lit[0] != 0 {
		t.Errorf("Expected the only light to be fully blocked, got %v", lit)
	}
}

func TestEngineStaticCasterReused(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	scene := &testScene{casters: []CasterSnapshot{rectSnapshot(1, Point{}, true)}}

	first := engine.Update(scene)
	if first.Stats.Regenerated != 1 {
		t.Errorf("Expected first frame to regenerate 1 caster, got %d", first.Stats.Regenerated)
	}

	second := engine.Update(scene)
	if second.Stats.Regenerated != 0 || second.Stats.Reused != 1 {
		t.Errorf("Expected second frame to reuse, got %d regenerated and %d reused",
			second.Stats.Regenerated, second.Stats.Reused)
	}
	if len(second.Edges) != 4 {
		t.Errorf("Expected cached edges to be emitted, got %d", len(second.Edges))
	}
	if engine.FrameIndex() != 2 {
		t.Errorf("Expected frame index 2, got %d", engine.FrameIndex())
	}
}

func TestEngineDynamicCasterMoves(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	scene := &testScene{casters: []CasterSnapshot{rectSnapshot(1, Point{}, false)}}
	engine.Update(scene)

	scene.casters[0].Transform.Position = Point{X: 20, Y: 0}
	frame := engine.Update(scene)

	if frame.Stats.Regenerated != 1 {
		t.Errorf("Expected moved caster to regenerate, got %d", frame.Stats.Regenerated)
	}
	poly, ok := engine.Polygon(1)
	if !ok {
		t.Fatal("Expected a polygon for caster 1")
	}
	if c := Bounds(poly).Center(); !pointsClose(c, Point{X: 20, Y: 0}, 1e-9) {
		t.Errorf("Expected polygon centred at (20,0), got %v", c)
	}
}

func TestEngineInvalidationAppliesNextFrame(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	scene := &testScene{casters: []CasterSnapshot{rectSnapshot(1, Point{}, true)}}
	engine.Update(scene)

	// Shape edited between frames
	scene.casters[0].Caster.Shape.Size = Point{X: 4, Y: 4}
	engine.Invalidate(1)
	engine.Invalidate(99)
	frame := engine.Update(scene)

	if frame.Stats.Invalidated != 1 {
		t.Errorf("Expected 1 applied invalidation, got %d", frame.Stats.Invalidated)
	}
	if frame.Stats.Regenerated != 1 {
		t.Errorf("Expected invalidated caster to regenerate, got %d", frame.Stats.Regenerated)
	}
	poly, _ := engine.Polygon(1)
	if size := Bounds(poly).Size(); !pointsClose(size, Point{X: 4, Y: 4}, 1e-9) {
		t.Errorf("Expected regenerated 4x4 polygon, got %v", size)
	}
}

func TestEngineMethodSwitch(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	scene := &testScene{casters: []CasterSnapshot{rectSnapshot(1, Point{X: 10}, true), circleSnapshot(2)}}
	engine.Update(scene)
	engine.Update(scene)

	if !engine.SetMethod(MethodSDF) {
		t.Fatal("Expected a method transition")
	}
	if stats := engine.CacheStats(); stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("Expected counters reset, got %d hits and %d misses", stats.Hits, stats.Misses)
	}

	frame := engine.Update(scene)
	if frame.Method != MethodSDF {
		t.Errorf("Expected SDF frame, got %v", frame.Method)
	}
	if frame.Stats.Regenerated != 2 {
		t.Errorf("Expected every caster to regenerate, got %d", frame.Stats.Regenerated)
	}
	if _, ok := engine.SDF(2); !ok {
		t.Error("Expected an SDF for the SDF-enabled caster")
	}
	if _, ok := engine.SDF(1); ok {
		t.Error("Expected no SDF for a caster with SDF disabled")
	}
	if len(frame.Buffers.SDF.Headers) != 1 {
		t.Errorf("Expected 1 packed SDF, got %d", len(frame.Buffers.SDF.Headers))
	}
}

func TestEngineSDFScenario(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Method = MethodSDF
	engine := NewEngine(cfg)
	engine.Update(&testScene{casters: []CasterSnapshot{circleSnapshot(1)}})

	light := Point{X: 0, Y: -10}
	if s := engine.ShadowAt(Point{X: 0, Y: 10}, light); s <= 0.5 {
		t.Errorf("Expected point behind the circle to be mostly shadowed, got %v", s)
	}
	if s := engine.ShadowAt(Point{X: 10, Y: -10}, light); s != 0 {
		t.Errorf("Expected point to the side to be lit, got %v", s)
	}
	if !engine.Shadowed(Point{X: 0, Y: 10}, light) {
		t.Error("Expected Shadowed to agree with ShadowAt")
	}
}

func TestEngineScreenSpaceScenario(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Method = MethodScreenSpace
	cfg.Viewport = r2.Box{Min: Point{X: -16, Y: -16}, Max: Point{X: 16, Y: 16}}
	cfg.MaskResolution = 128
	engine := NewEngine(cfg)

	frame := engine.Update(&testScene{casters: []CasterSnapshot{rectSnapshot(1, Point{}, true)}})
	if frame.Mask == nil {
		t.Fatal("Expected an occluder mask for the screen-space method")
	}

	light := Point{X: 0, Y: -10}
	if s := engine.ShadowAt(Point{X: 0, Y: 10}, light); s < 0.99 {
		t.Errorf("Expected full shadow behind the rectangle, got %v", s)
	}
	if s := engine.ShadowAt(Point{X: 10, Y: 10}, light); s != 0 {
		t.Errorf("Expected no shadow to the side, got %v", s)
	}
}

func TestEngineTruncatesCasters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCasters = 2
	engine := NewEngine(cfg)
	scene := &testScene{casters: []CasterSnapshot{
		rectSnapshot(1, Point{X: -10}, true),
		rectSnapshot(2, Point{X: 0}, true),
		rectSnapshot(3, Point{X: 10}, true),
	}}

	frame := engine.Update(scene)

	if frame.Stats.Casters != 2 || frame.Stats.Truncated != 1 {
		t.Errorf("Expected 2 casters and 1 truncated, got %d and %d", frame.Stats.Casters, frame.Stats.Truncated)
	}
	if len(frame.Edges) != 8 {
		t.Errorf("Expected 8 edges, got %d", len(frame.Edges))
	}
	if _, ok := engine.Polygon(3); ok {
		t.Error("Expected truncated caster to have no polygon")
	}
}

func TestEnginePrunesRemovedCasters(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	scene := &testScene{casters: []CasterSnapshot{rectSnapshot(1, Point{}, true), rectSnapshot(2, Point{X: 10}, true)}}
	engine.Update(scene)

	scene.casters = scene.casters[:1]
	engine.Invalidate(2)
	frame := engine.Update(scene)

	if _, ok := engine.Polygon(2); ok {
		t.Error("Expected removed caster's polygon to be dropped")
	}
	if frame.Stats.Cache.Records != 1 {
		t.Errorf("Expected 1 cache record, got %d", frame.Stats.Cache.Records)
	}
	if frame.Stats.Invalidated != 1 {
		// Invalidations run before pruning, so the record still existed
		t.Errorf("Expected invalidation to apply before pruning, got %d", frame.Stats.Invalidated)
	}

	engine.Update(scene)
	engine.Invalidate(2)
	frame = engine.Update(scene)
	if frame.Stats.Invalidated != 0 {
		t.Errorf("Expected invalidation of a removed caster to be dropped, got %d", frame.Stats.Invalidated)
	}
}

func TestEngineSelfShadowAndOpacity(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	snap := rectSnapshot(1, Point{}, true)
	scene := &testScene{casters: []CasterSnapshot{snap}}
	engine.Update(scene)

	light := Point{X: 0, Y: -10}
	if s := engine.ShadowAt(Point{}, light); s != 0 {
		t.Errorf("Expected caster without self-shadow not to shadow its interior, got %v", s)
	}

	scene.casters[0].Caster.SelfShadow = true
	scene.casters[0].Caster.Opacity = 0.5
	engine.Update(scene)
	if s := engine.ShadowAt(Point{}, light); math.Abs(s-0.5) > 1e-12 {
		t.Errorf("Expected self-shadowed interior at opacity 0.5, got %v", s)
	}
}

func TestEngineDegenerateCasterCastsNothing(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	snap := CasterSnapshot{
		Caster: Caster{
			ID:          1,
			Shape:       Shape{Kind: ShapePolygon, Vertices: []Point{{X: -5, Y: 0}, {X: 5, Y: 0}}},
			Opacity:     1,
			EnableCache: true,
		},
		Transform: IdentityTransform(),
	}

	frame := engine.Update(&testScene{casters: []CasterSnapshot{snap}})

	if len(frame.Edges) != 0 {
		t.Errorf("Expected no edges from a degenerate polygon, got %d", len(frame.Edges))
	}
	if s := engine.ShadowAt(Point{X: 0, Y: 10}, Point{X: 0, Y: -10}); s != 0 {
		t.Errorf("Expected degenerate caster not to shadow, got %v", s)
	}
}

func TestConfigDefaultsApplied(t *testing.T) {
	engine := NewEngine(Config{})
	cfg := engine.Config()

	if cfg.MaxCasters != 64 || cfg.MaxSDFResolution != MaxSDFResolution || cfg.ShadowMapResolution != 1024 {
		t.Errorf("Expected defaults for zero config, got %+v", cfg)
	}
}
