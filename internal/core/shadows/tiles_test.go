package shadows

import "testing"

// stringGrid is a TileGrid where '#' blocks sight
type stringGrid []string

func (g stringGrid) Width() int  { return len(g[0]) }
func (g stringGrid) Height() int { return len(g) }
func (g stringGrid) BlocksSight(x, y int) bool {
	return g[y][x] == '#'
}

func TestCastersFromTilesMergesBlocks(t *testing.T) {
	grid := stringGrid{
		"##..",
		"##.#",
		"...#",
	}

	casters := CastersFromTiles(grid, 10, 100)

	if len(casters) != 2 {
		t.Fatalf("Expected 2 casters, got %d", len(casters))
	}

	block := casters[0]
	if block.Caster.ID != 100 {
		t.Errorf("Expected first ID 100, got %d", block.Caster.ID)
	}
	if block.Caster.Shape.Size != (Point{X: 20, Y: 20}) || block.Transform.Position != (Point{X: 10, Y: 10}) {
		t.Errorf("Expected 20x20 block at (10,10), got %v at %v", block.Caster.Shape.Size, block.Transform.Position)
	}
	if !block.Caster.IsStatic || !block.Caster.EnableCache {
		t.Error("Expected tile casters to be static and cached")
	}

	column := casters[1]
	if column.Caster.ID != 101 {
		t.Errorf("Expected second ID 101, got %d", column.Caster.ID)
	}
	if column.Caster.Shape.Size != (Point{X: 10, Y: 20}) || column.Transform.Position != (Point{X: 35, Y: 20}) {
		t.Errorf("Expected 10x20 column at (35,20), got %v at %v", column.Caster.Shape.Size, column.Transform.Position)
	}
}

func TestCastersFromTilesLShape(t *testing.T) {
	grid := stringGrid{
		"#.",
		"##",
	}

	casters := CastersFromTiles(grid, 1, 0)

	if len(casters) != 2 {
		t.Fatalf("Expected L-shape to split into 2 casters, got %d", len(casters))
	}
}

func TestCastersFromTilesEmpty(t *testing.T) {
	if casters := CastersFromTiles(stringGrid{"...", "..."}, 16, 0); len(casters) != 0 {
		t.Errorf("Expected no casters, got %d", len(casters))
	}
}
