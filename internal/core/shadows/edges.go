package shadows

// ExtractEdges converts a closed vertex loop into directed edges. The last
// vertex connects back to the first. Fewer than two vertices yields no edges.
func ExtractEdges(polygon WorldPolygon) []Edge {
	return extractEdgesFor(0, polygon)
}

// extractEdgesFor is ExtractEdges with the owning caster recorded on each edge
func extractEdgesFor(id CasterID, polygon WorldPolygon) []Edge {
	n := len(polygon)
	if n < 2 {
		return nil
	}

	edges := make([]Edge, n)
	for i := 0; i < n; i++ {
		edges[i] = Edge{
			Start:  polygon[i],
			End:    polygon[(i+1)%n],
			Caster: id,
		}
	}
	return edges
}

// CastsShadow reports whether a polygon has enough edges to occlude anything
func CastsShadow(polygon WorldPolygon) bool {
	return len(polygon) >= 3
}
