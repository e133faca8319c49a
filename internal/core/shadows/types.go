package shadows

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point represents a 2D point in world space
type Point = r2.Vec

// Coord represents a tile coordinate
type Coord struct {
	X, Y int
}

// CasterID identifies a caster across frames. The scene owns the value; the
// engine only uses it as a key.
type CasterID uint64

// ShapeKind selects how a caster's local polygon is built
type ShapeKind int

const (
	ShapeRectangle ShapeKind = iota
	ShapeCircle
	ShapePolygon
	ShapeAuto // Falls back to Rectangle using Shape.Size
)

// String returns the lower-case name of the shape kind
func (k ShapeKind) String() string {
	switch k {
	case ShapeRectangle:
		return "rectangle"
	case ShapeCircle:
		return "circle"
	case ShapePolygon:
		return "polygon"
	case ShapeAuto:
		return "auto"
	}
	return "unknown"
}

// Shape describes a caster's outline in local space
type Shape struct {
	Kind     ShapeKind
	Size     Point   // Rectangle / Auto: full width and height
	Radius   float64 // Circle radius
	Segments int     // Circle point count (0 = DefaultCircleSegments)
	Vertices []Point // Polygon vertices, used verbatim
}

// Caster is a 2D shape that can block light. It is a read-only descriptor from
// the engine's point of view; all derived state lives in the engine.
type Caster struct {
	ID         CasterID
	Shape      Shape
	Offset     Point   // Local offset applied before scale/rotation
	Opacity    float64 // 0.0 (transparent) to 1.0 (fully opaque)
	SelfShadow bool    // Whether the caster shadows its own interior

	IsStatic    bool // Static casters only regenerate when dirty
	EnableCache bool // Disabled cache = regenerate every frame

	EnableSDF     bool
	SDFResolution int     // Cells along the longest bounds axis (0 = DefaultSDFResolution)
	SDFPadding    float64 // World units added around the polygon bounds
}

// Transform is the world transform of a caster, supplied fresh every frame
type Transform struct {
	Position Point
	Rotation float64 // Radians, counter-clockwise
	Scale    Point
}

// IdentityTransform returns a transform at the origin with unit scale
func IdentityTransform() Transform {
	return Transform{Scale: Point{X: 1, Y: 1}}
}

// CasterSnapshot pairs a caster descriptor with its transform for one frame
type CasterSnapshot struct {
	Caster    Caster
	Transform Transform
}

// Light is a point light supplied by the scene
type Light struct {
	ID        string
	Position  Point
	Radius    float64     // Light radius (in world units)
	Intensity float64     // Light intensity (0.0 to 1.0)
	Color     color.NRGBA // Light color
}

// WorldPolygon is an ordered, implicitly closed loop of world-space vertices
type WorldPolygon []Point

// Edge is a directed polygon edge that can block light
type Edge struct {
	Start, End Point
	Caster     CasterID
}

// Scene supplies caster and light snapshots to the engine every frame
type Scene interface {
	Casters() []CasterSnapshot
	Lights() []Light
}
