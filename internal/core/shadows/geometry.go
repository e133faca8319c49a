package shadows

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// PointInPolygon tests if a point is inside a polygon using the even-odd rule
// with a horizontal ray
func PointInPolygon(point Point, polygon []Point) bool {
	inside := false
	j := len(polygon) - 1

	for i := 0; i < len(polygon); i++ {
		xi, yi := polygon[i].X, polygon[i].Y
		xj, yj := polygon[j].X, polygon[j].Y

		if ((yi > point.Y) != (yj > point.Y)) &&
			(point.X < (xj-xi)*(point.Y-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}

	return inside
}

// Distance calculates the Euclidean distance between two points
func Distance(a, b Point) float64 {
	return r2.Norm(r2.Sub(b, a))
}

// DistanceToSegment returns the distance from p to the closest point of the
// segment a-b, clamping the projection parameter to [0, 1]
func DistanceToSegment(p, a, b Point) float64 {
	ab := r2.Sub(b, a)
	lenSq := r2.Dot(ab, ab)
	if lenSq == 0 {
		return Distance(p, a)
	}

	t := r2.Dot(r2.Sub(p, a), ab) / lenSq
	t = math.Max(0, math.Min(1, t))

	closest := r2.Add(a, r2.Scale(t, ab))
	return Distance(p, closest)
}

// Bounds returns the axis-aligned bounding box of the polygon. An empty
// polygon yields the zero box.
func Bounds(polygon []Point) r2.Box {
	if len(polygon) == 0 {
		return r2.Box{}
	}

	box := r2.Box{Min: polygon[0], Max: polygon[0]}
	for _, p := range polygon[1:] {
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Max.X = math.Max(box.Max.X, p.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y)
	}
	return box
}

// clamp01 limits v to the [0, 1] interval
func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
