package shadows

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// DefaultSDFResolution is used when a caster leaves SDFResolution at zero
	DefaultSDFResolution = 32
	// MaxSDFResolution bounds the grid size along either axis
	MaxSDFResolution = 256
)

// SDFGrid is a caster's signed distance field sampled at cell centres.
// Distance[y*Width+x] is negative iff the cell centre lies inside the polygon.
type SDFGrid struct {
	Caster   CasterID
	Width    int
	Height   int
	CellSize float64
	Origin   Point // World position of the grid's minimum corner
	Distance []float64
	Valid    bool
}

// Bounds returns the world-space box covered by the grid
func (g *SDFGrid) Bounds() r2.Box {
	return r2.Box{
		Min: g.Origin,
		Max: r2.Add(g.Origin, Point{X: float64(g.Width) * g.CellSize, Y: float64(g.Height) * g.CellSize}),
	}
}

// CellCenter returns the world position of the centre of cell (x, y)
func (g *SDFGrid) CellCenter(x, y int) Point {
	return Point{
		X: g.Origin.X + (float64(x)+0.5)*g.CellSize,
		Y: g.Origin.Y + (float64(y)+0.5)*g.CellSize,
	}
}

// At returns the stored distance of cell (x, y), clamping the indices to the grid
func (g *SDFGrid) At(x, y int) float64 {
	x = max(0, min(g.Width-1, x))
	y = max(0, min(g.Height-1, y))
	return g.Distance[y*g.Width+x]
}

// GenerateSDF rasterizes the caster's polygon into a signed distance grid
// using the package resolution cap
func GenerateSDF(caster Caster, polygon WorldPolygon) SDFGrid {
	grid, _ := generateSDF(caster, polygon, MaxSDFResolution)
	return grid
}

// generateSDF builds the grid over the polygon's padded bounds. It reports
// whether the requested resolution had to be clamped to maxResolution.
func generateSDF(caster Caster, polygon WorldPolygon, maxResolution int) (SDFGrid, bool) {
	grid := SDFGrid{Caster: caster.ID}
	if !CastsShadow(polygon) {
		return grid, false
	}

	bounds := Bounds(polygon)
	pad := Point{X: caster.SDFPadding, Y: caster.SDFPadding}
	bounds.Min = r2.Sub(bounds.Min, pad)
	bounds.Max = r2.Add(bounds.Max, pad)
	size := bounds.Size()

	extent := math.Max(size.X, size.Y)
	if extent <= 0 {
		return grid, false
	}

	resolution := caster.SDFResolution
	if resolution <= 0 {
		resolution = DefaultSDFResolution
	}
	clamped := false
	if resolution > maxResolution {
		resolution = maxResolution
		clamped = true
	}

	grid.CellSize = extent / float64(resolution)
	grid.Width = max(1, min(maxResolution, int(math.Ceil(size.X/grid.CellSize))))
	grid.Height = max(1, min(maxResolution, int(math.Ceil(size.Y/grid.CellSize))))
	grid.Origin = bounds.Min
	grid.Distance = make([]float64, grid.Width*grid.Height)

	edges := ExtractEdges(polygon)
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			p := grid.CellCenter(x, y)
			grid.Distance[y*grid.Width+x] = signedDistance(p, polygon, edges)
		}
	}

	grid.Valid = true
	return grid, clamped
}

// signedDistance is the distance from p to the nearest polygon edge, negated
// when p is inside the polygon
func signedDistance(p Point, polygon WorldPolygon, edges []Edge) float64 {
	minDistance := math.Inf(1)
	for _, e := range edges {
		minDistance = math.Min(minDistance, DistanceToSegment(p, e.Start, e.End))
	}

	if PointInPolygon(p, polygon) {
		return -minDistance
	}
	return minDistance
}

// Sample returns the bilinearly interpolated signed distance at a world point.
// Points outside the grid add their distance to the grid box to the nearest
// border sample, so exterior queries stay positive.
func (g *SDFGrid) Sample(p Point) float64 {
	if !g.Valid {
		return math.Inf(1)
	}

	gx := (p.X-g.Origin.X)/g.CellSize - 0.5
	gy := (p.Y-g.Origin.Y)/g.CellSize - 0.5

	maxX := float64(g.Width - 1)
	maxY := float64(g.Height - 1)
	cx := math.Max(0, math.Min(maxX, gx))
	cy := math.Max(0, math.Min(maxY, gy))

	x0, y0 := int(math.Floor(cx)), int(math.Floor(cy))
	fx, fy := cx-float64(x0), cy-float64(y0)

	d00 := g.At(x0, y0)
	d10 := g.At(x0+1, y0)
	d01 := g.At(x0, y0+1)
	d11 := g.At(x0+1, y0+1)

	top := d00 + (d10-d00)*fx
	bottom := d01 + (d11-d01)*fx
	d := top + (bottom-top)*fy

	if outside := g.outsideDistance(p); outside > 0 {
		return math.Max(d, 0) + outside
	}
	return d
}

// SampleNearest returns the distance of the cell containing p, clamped to the grid
func (g *SDFGrid) SampleNearest(p Point) float64 {
	if !g.Valid {
		return math.Inf(1)
	}
	x := int(math.Floor((p.X - g.Origin.X) / g.CellSize))
	y := int(math.Floor((p.Y - g.Origin.Y) / g.CellSize))
	return g.At(x, y) + g.outsideDistance(p)
}

// outsideDistance is the distance from p to the grid box, 0 inside it
func (g *SDFGrid) outsideDistance(p Point) float64 {
	b := g.Bounds()
	dx := math.Max(0, math.Max(b.Min.X-p.X, p.X-b.Max.X))
	dy := math.Max(0, math.Max(b.Min.Y-p.Y, p.Y-b.Max.Y))
	return math.Hypot(dx, dy)
}
