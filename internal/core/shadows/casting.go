package shadows

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// ParallelEpsilon is the determinant magnitude below which a ray and an
	// edge are treated as parallel. Exact collinear overlap falls in the same
	// bucket and reports no hit.
	ParallelEpsilon = 1e-6
	// CoincidentEpsilon is the distance below which a point sits on the light
	CoincidentEpsilon = 1e-6
	// OcclusionEpsilon keeps a point's own edge from shadowing it
	OcclusionEpsilon = 1e-4
)

// Intersect casts a ray from origin along dir against an edge.
// Ray: P = origin + t*dir, t > 0. Edge: Q = start + u*(end-start), 0 <= u <= 1.
// Returns the ray parameter t and whether a valid hit exists.
func Intersect(origin, dir Point, edge Edge) (float64, bool) {
	e := r2.Sub(edge.End, edge.Start)

	det := dir.X*e.Y - dir.Y*e.X
	if math.Abs(det) < ParallelEpsilon {
		// Parallel or collinear
		return 0, false
	}

	diff := r2.Sub(edge.Start, origin)
	t := (diff.X*e.Y - diff.Y*e.X) / det
	u := (diff.X*dir.Y - diff.Y*dir.X) / det

	if t > 0 && u >= 0 && u <= 1 {
		return t, true
	}
	return 0, false
}

// IsPointInShadow reports whether any edge blocks the straight path from the
// light to the point. There is no partial shadow: the first blocking edge wins.
func IsPointInShadow(point, lightPos Point, edges []Edge) bool {
	toPoint := r2.Sub(point, lightPos)
	dist := r2.Norm(toPoint)
	if dist < CoincidentEpsilon {
		return false
	}

	dir := r2.Scale(1/dist, toPoint)
	limit := dist - OcclusionEpsilon
	for _, edge := range edges {
		if t, ok := Intersect(lightPos, dir, edge); ok && t < limit {
			return true
		}
	}
	return false
}

// ComputeVisibilityPolygon calculates the region lit by a light at lightPos
// Returns a polygon representing the lit area (everything outside is in shadow)
func ComputeVisibilityPolygon(lightPos Point, edges []Edge, maxDistance float64) []Point {
	// Collect all unique endpoints (vertices) from the edges
	vertices := collectVertices(edges)

	// Cast rays toward every vertex, with small angular offsets so rays
	// graze past corners onto whatever lies behind them
	epsilon := 0.0001
	var angles []float64
	for _, vertex := range vertices {
		angle := math.Atan2(vertex.Y-lightPos.Y, vertex.X-lightPos.X)
		angles = append(angles,
			angle-epsilon,
			angle,
			angle+epsilon,
		)
	}

	// Remove duplicate angles and sort
	angleMap := make(map[float64]bool)
	var uniqueAngles []float64
	for _, angle := range angles {
		// Normalize angle to [0, 2π)
		normalized := math.Mod(angle, 2.0*math.Pi)
		if normalized < 0 {
			normalized += 2.0 * math.Pi
		}
		if !angleMap[normalized] {
			angleMap[normalized] = true
			uniqueAngles = append(uniqueAngles, normalized)
		}
	}

	sort.Float64s(uniqueAngles)

	// For each angle, cast a ray and find the closest intersection
	visiblePoints := make([]Point, 0, len(uniqueAngles))
	for _, angle := range uniqueAngles {
		dir := Point{X: math.Cos(angle), Y: math.Sin(angle)}

		closest := maxDistance
		for _, edge := range edges {
			if t, ok := Intersect(lightPos, dir, edge); ok && t < closest {
				closest = t
			}
		}

		visiblePoints = append(visiblePoints, r2.Add(lightPos, r2.Scale(closest, dir)))
	}

	return visiblePoints
}

// collectVertices extracts all unique endpoint vertices from edges
func collectVertices(edges []Edge) []Point {
	vertexMap := make(map[Point]bool)
	vertices := make([]Point, 0, len(edges))

	for _, edge := range edges {
		for _, v := range [2]Point{edge.Start, edge.End} {
			if !vertexMap[v] {
				vertexMap[v] = true
				vertices = append(vertices, v)
			}
		}
	}

	return vertices
}
