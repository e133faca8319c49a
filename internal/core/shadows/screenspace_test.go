package shadows

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func testMask() *OccluderMask {
	return NewOccluderMask(r2.Box{Min: Point{X: -16, Y: -16}, Max: Point{X: 16, Y: 16}}, 128, 128)
}

func TestOccluderMaskCoverage(t *testing.T) {
	mask := testMask()
	caster := Caster{Shape: Shape{Kind: ShapeRectangle, Size: Point{X: 4, Y: 4}}}
	mask.AddPolygon(GenerateVertices(caster, Point{}, Point{X: 1, Y: 1}, 0), 1)

	if c := mask.Coverage(Point{X: 0.1, Y: 0.1}); c != 1 {
		t.Errorf("Expected full coverage inside, got %v", c)
	}
	if c := mask.Coverage(Point{X: 8, Y: 8}); c != 0 {
		t.Errorf("Expected no coverage outside, got %v", c)
	}
	if c := mask.Coverage(Point{X: 100, Y: 0}); c != 0 {
		t.Errorf("Expected no coverage outside the viewport, got %v", c)
	}

	mask.Clear()
	if c := mask.Coverage(Point{X: 0.1, Y: 0.1}); c != 0 {
		t.Errorf("Expected cleared mask, got %v", c)
	}
}

func TestOccluderMaskOpacity(t *testing.T) {
	mask := testMask()
	caster := Caster{Shape: Shape{Kind: ShapeRectangle, Size: Point{X: 4, Y: 4}}}
	mask.AddPolygon(GenerateVertices(caster, Point{}, Point{X: 1, Y: 1}, 0), 0.5)

	if c := mask.Coverage(Point{X: 0.1, Y: 0.1}); math.Abs(c-0.5) > 0.01 {
		t.Errorf("Expected half coverage, got %v", c)
	}

	// Degenerate or transparent polygons leave the mask untouched
	mask.Clear()
	mask.AddPolygon(WorldPolygon{{X: 0, Y: 0}, {X: 1, Y: 1}}, 1)
	mask.AddPolygon(GenerateVertices(caster, Point{}, Point{X: 1, Y: 1}, 0), 0)
	if c := mask.Coverage(Point{X: 0.1, Y: 0.1}); c != 0 {
		t.Errorf("Expected empty mask, got %v", c)
	}
}

func TestSampleScreenSpace(t *testing.T) {
	mask := testMask()
	caster := Caster{Shape: Shape{Kind: ShapeRectangle, Size: Point{X: 2, Y: 2}}}
	mask.AddPolygon(GenerateVertices(caster, Point{}, Point{X: 1, Y: 1}, 0), 1)
	light := Point{X: 0, Y: -10}

	if s := SampleScreenSpace(Point{X: 0, Y: 10}, light, mask, 0.005); s != 1 {
		t.Errorf("Expected point behind the occluder to be shadowed, got %v", s)
	}
	if s := SampleScreenSpace(Point{X: 10, Y: 10}, light, mask, 0.005); s != 0 {
		t.Errorf("Expected point to the side to be lit, got %v", s)
	}
	if s := SampleScreenSpace(light, light, mask, 0.005); s != 0 {
		t.Errorf("Expected point at the light to be lit, got %v", s)
	}
	if s := SampleScreenSpace(Point{X: 0, Y: 10}, light, nil, 0.005); s != 0 {
		t.Errorf("Expected nil mask to never shadow, got %v", s)
	}
}
