package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"chosenoffset.com/shadowcast/internal/core/shadows"
)

type bakeScene struct {
	casters []shadows.CasterSnapshot
	lights  []shadows.Light
}

func (s *bakeScene) Casters() []shadows.CasterSnapshot { return s.casters }
func (s *bakeScene) Lights() []shadows.Light           { return s.lights }

// wallScene puts a light at the top of a 20x20 viewport with a wide wall
// across the middle
func wallScene() *bakeScene {
	return &bakeScene{
		casters: []shadows.CasterSnapshot{{
			Caster: shadows.Caster{
				ID:          1,
				Shape:       shadows.Shape{Kind: shadows.ShapeRectangle, Size: shadows.Point{X: 16, Y: 2}},
				Opacity:     1,
				IsStatic:    true,
				EnableCache: true,
			},
			Transform: shadows.Transform{Position: shadows.Point{X: 10, Y: 10}, Scale: shadows.Point{X: 1, Y: 1}},
		}},
		lights: []shadows.Light{{
			ID:        "lamp",
			Position:  shadows.Point{X: 10, Y: 2},
			Radius:    100,
			Intensity: 1,
			Color:     color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		}},
	}
}

func viewport20() r2.Box {
	return r2.Box{Max: r2.Vec{X: 20, Y: 20}}
}

func TestBakeShadowsBehindWall(t *testing.T) {
	engine := shadows.NewEngine(shadows.DefaultConfig())
	engine.Update(wallScene())

	s := Bake(engine, viewport20(), 20, 20, 0.1)

	if got := s.ShadowAt(10, 4); got != 0 {
		t.Errorf("Expected texel in front of the wall to be lit, got shadow %v", got)
	}
	if got := s.ShadowAt(10, 16); got != 1 {
		t.Errorf("Expected texel behind the wall to be shadowed, got %v", got)
	}

	lit, dark := s.At(10, 4), s.At(10, 16)
	if lit.R <= dark.R {
		t.Errorf("Expected lit texel brighter than shadowed one, got %v and %v", lit, dark)
	}
	if dark.R != channel(0.1) {
		t.Errorf("Expected shadowed texel at ambient level, got %v", dark)
	}
}

func TestBakeWithoutLights(t *testing.T) {
	engine := shadows.NewEngine(shadows.DefaultConfig())
	engine.Update(&bakeScene{})

	s := Bake(engine, viewport20(), 4, 4, 0)

	for i, v := range s.Shadow {
		if v != 1 {
			t.Fatalf("Expected texel %d fully shadowed, got %v", i, v)
		}
	}
	if c := s.At(0, 0); c != (color.NRGBA{A: 255}) {
		t.Errorf("Expected opaque black, got %v", c)
	}
}

func TestTexelCenter(t *testing.T) {
	s := NewSurface(r2.Box{Min: r2.Vec{X: -10, Y: 0}, Max: r2.Vec{X: 10, Y: 10}}, 4, 2)

	if p := s.TexelCenter(0, 0); p != (shadows.Point{X: -7.5, Y: 2.5}) {
		t.Errorf("Expected (-7.5,2.5), got %v", p)
	}
	if p := s.TexelCenter(3, 1); p != (shadows.Point{X: 7.5, Y: 7.5}) {
		t.Errorf("Expected (7.5,7.5), got %v", p)
	}
}

func TestSurfaceSize(t *testing.T) {
	tests := []struct {
		name       string
		resolution int
		viewport   r2.Box
		w, h       int
	}{
		{"wide", 1024, r2.Box{Max: r2.Vec{X: 640, Y: 400}}, 1024, 640},
		{"tall", 100, r2.Box{Max: r2.Vec{X: 10, Y: 40}}, 25, 100},
		{"square", 64, viewport20(), 64, 64},
		{"sliver", 10, r2.Box{Max: r2.Vec{X: 1000, Y: 1}}, 10, 1},
		{"no resolution", 0, viewport20(), 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := SurfaceSize(tt.resolution, tt.viewport)
			if w != tt.w || h != tt.h {
				t.Errorf("Expected %dx%d, got %dx%d", tt.w, tt.h, w, h)
			}
		})
	}
}

func TestFalloff(t *testing.T) {
	if Falloff(0, 10) != 1 {
		t.Error("Expected full light at the source")
	}
	if Falloff(5, 10) != 0.25 {
		t.Errorf("Expected 0.25 at half radius, got %v", Falloff(5, 10))
	}
	if Falloff(10, 10) != 0 || Falloff(1, 0) != 0 {
		t.Error("Expected no light at or beyond the radius")
	}
}

func TestWritePNGScaled(t *testing.T) {
	engine := shadows.NewEngine(shadows.DefaultConfig())
	engine.Update(wallScene())
	s := Bake(engine, viewport20(), 20, 20, 0.1)

	var buf bytes.Buffer
	if err := s.WritePNG(&buf, 40, 0); err != nil {
		t.Fatalf("Failed to write PNG: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 40 {
		t.Errorf("Expected 40x40 image, got %dx%d", b.Dx(), b.Dy())
	}
}
