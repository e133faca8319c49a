package shadows

import "sort"

// TileGrid is a tile map that knows which tiles block light
type TileGrid interface {
	Width() int
	Height() int
	BlocksSight(x, y int) bool
}

// tileRun is a horizontal run of blocking tiles [x0, x1) spanning rows [y0, y1)
type tileRun struct {
	x0, x1 int
	y0, y1 int
}

// CastersFromTiles turns the blocking tiles of a grid into static rectangle
// casters. Each contiguous region is split into row runs, and runs with the
// same horizontal extent on consecutive rows are merged, so a solid block of
// walls becomes a single caster. IDs are assigned from firstID upward.
func CastersFromTiles(grid TileGrid, tileSize float64, firstID CasterID) []CasterSnapshot {
	// Step 1: Find all contiguous regions of blocking tiles
	regions := findContiguousRegions(grid)

	// Step 2: Split each region into row runs and merge them vertically
	var runs []tileRun
	for _, region := range regions {
		runs = append(runs, mergeRuns(rowRuns(region))...)
	}

	// Step 3: Emit one static rectangle per merged run
	casters := make([]CasterSnapshot, 0, len(runs))
	for i, run := range runs {
		w := float64(run.x1-run.x0) * tileSize
		h := float64(run.y1-run.y0) * tileSize
		casters = append(casters, CasterSnapshot{
			Caster: Caster{
				ID:          firstID + CasterID(i),
				Shape:       Shape{Kind: ShapeRectangle, Size: Point{X: w, Y: h}},
				Opacity:     1,
				IsStatic:    true,
				EnableCache: true,
			},
			Transform: Transform{
				Position: Point{
					X: float64(run.x0)*tileSize + w/2,
					Y: float64(run.y0)*tileSize + h/2,
				},
				Scale: Point{X: 1, Y: 1},
			},
		})
	}
	return casters
}

// findContiguousRegions identifies all connected regions of blocking tiles
func findContiguousRegions(grid TileGrid) [][]Coord {
	width, height := grid.Width(), grid.Height()
	visited := make(map[Coord]bool)
	var regions [][]Coord

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			coord := Coord{X: x, Y: y}
			if visited[coord] || !grid.BlocksSight(x, y) {
				continue
			}

			region := floodFill(grid, coord, visited)
			if len(region) > 0 {
				regions = append(regions, region)
			}
		}
	}

	return regions
}

// floodFill performs BFS to find all 4-connected blocking tiles
func floodFill(grid TileGrid, start Coord, visited map[Coord]bool) []Coord {
	width, height := grid.Width(), grid.Height()
	var region []Coord
	queue := []Coord{start}
	visited[start] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		region = append(region, current)

		neighbors := [4]Coord{
			{X: current.X, Y: current.Y - 1}, // North
			{X: current.X + 1, Y: current.Y}, // East
			{X: current.X, Y: current.Y + 1}, // South
			{X: current.X - 1, Y: current.Y}, // West
		}

		for _, n := range neighbors {
			if n.X < 0 || n.X >= width || n.Y < 0 || n.Y >= height {
				continue
			}
			if visited[n] || !grid.BlocksSight(n.X, n.Y) {
				continue
			}

			visited[n] = true
			queue = append(queue, n)
		}
	}

	return region
}

// rowRuns splits a region into maximal horizontal runs, ordered by row then column
func rowRuns(region []Coord) []tileRun {
	sorted := make([]Coord, len(region))
	copy(sorted, region)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var runs []tileRun
	for _, c := range sorted {
		if n := len(runs); n > 0 && runs[n-1].y0 == c.Y && runs[n-1].x1 == c.X {
			runs[n-1].x1++
			continue
		}
		runs = append(runs, tileRun{x0: c.X, x1: c.X + 1, y0: c.Y, y1: c.Y + 1})
	}
	return runs
}

// mergeRuns joins runs with identical horizontal extent on consecutive rows
func mergeRuns(runs []tileRun) []tileRun {
	var result []tileRun
	for _, run := range runs {
		merged := false
		for i := range result {
			r := &result[i]
			if r.x0 == run.x0 && r.x1 == run.x1 && r.y1 == run.y0 {
				r.y1 = run.y1
				merged = true
				break
			}
		}
		if !merged {
			result = append(result, run)
		}
	}
	return result
}
