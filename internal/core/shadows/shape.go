package shadows

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// DefaultCircleSegments is the point count used for circles that do not
	// specify one
	DefaultCircleSegments = 16
	// MinCircleSegments keeps circles from collapsing into lines
	MinCircleSegments = 3
)

// LocalVertices builds the caster's outline in local space, before the offset
// and world transform are applied
func LocalVertices(shape Shape) []Point {
	switch shape.Kind {
	case ShapeCircle:
		return circleVertices(shape.Radius, shape.Segments)
	case ShapePolygon:
		vertices := make([]Point, len(shape.Vertices))
		copy(vertices, shape.Vertices)
		return vertices
	default:
		// Rectangle, and Auto until silhouette inference exists
		return rectangleVertices(shape.Size)
	}
}

// rectangleVertices returns the four corners of a rectangle centred at the origin
func rectangleVertices(size Point) []Point {
	hw, hh := size.X/2, size.Y/2
	return []Point{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	}
}

// circleVertices returns n equally spaced points on a circle of the given radius
func circleVertices(radius float64, n int) []Point {
	if n == 0 {
		n = DefaultCircleSegments
	}
	if n < MinCircleSegments {
		n = MinCircleSegments
	}

	vertices := make([]Point, n)
	step := 2 * math.Pi / float64(n)
	for i := range vertices {
		angle := float64(i) * step
		vertices[i] = Point{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
	}
	return vertices
}

// GenerateVertices produces the caster's world-space polygon.
// Each local vertex is offset, scaled, rotated and translated in that order;
// changing the order changes results for non-uniform scale with rotation.
func GenerateVertices(caster Caster, worldPosition, worldScale Point, worldRotation float64) WorldPolygon {
	local := LocalVertices(caster.Shape)

	polygon := make(WorldPolygon, len(local))
	for i, v := range local {
		p := r2.Add(v, caster.Offset)
		p = Point{X: p.X * worldScale.X, Y: p.Y * worldScale.Y}
		p = r2.Rotate(p, worldRotation, Point{})
		polygon[i] = r2.Add(p, worldPosition)
	}
	return polygon
}

// GenerateVerticesFor is GenerateVertices driven by a snapshot's transform
func GenerateVerticesFor(snap CasterSnapshot) WorldPolygon {
	t := snap.Transform
	return GenerateVertices(snap.Caster, t.Position, t.Scale, t.Rotation)
}
