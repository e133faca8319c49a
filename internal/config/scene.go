package config

import (
	"fmt"
	"strings"

	"chosenoffset.com/shadowcast/internal/core/shadows"
	"chosenoffset.com/shadowcast/internal/render/lighting"
)

// parseShapeKind converts a config shape name into a ShapeKind
func parseShapeKind(name string) (shadows.ShapeKind, error) {
	switch strings.ToLower(name) {
	case "rectangle", "rect", "":
		return shadows.ShapeRectangle, nil
	case "circle":
		return shadows.ShapeCircle, nil
	case "polygon":
		return shadows.ShapePolygon, nil
	case "auto":
		return shadows.ShapeAuto, nil
	}
	return shadows.ShapeRectangle, fmt.Errorf("unknown shape %q", name)
}

// Snapshot builds a caster descriptor and its initial transform. The caster ID
// is left for the scene to assign.
func (cc CasterConfig) Snapshot(defaults CasterDefaults) shadows.CasterSnapshot {
	kind, _ := parseShapeKind(cc.Shape)

	vertices := make([]shadows.Point, len(cc.Vertices))
	for i, v := range cc.Vertices {
		vertices[i] = shadows.Point{X: v[0], Y: v[1]}
	}

	caster := shadows.Caster{
		Shape: shadows.Shape{
			Kind:     kind,
			Size:     shadows.Point{X: cc.Size[0], Y: cc.Size[1]},
			Radius:   cc.Radius,
			Segments: cc.Segments,
			Vertices: vertices,
		},
		Offset:        shadows.Point{X: cc.Offset[0], Y: cc.Offset[1]},
		Opacity:       1,
		SelfShadow:    cc.SelfShadow,
		IsStatic:      defaults.IsStatic,
		EnableCache:   defaults.EnableCache,
		EnableSDF:     defaults.EnableSDF,
		SDFResolution: defaults.SDFResolution,
		SDFPadding:    defaults.SDFPadding,
	}
	if cc.Opacity != nil {
		caster.Opacity = *cc.Opacity
	}
	if cc.Static != nil {
		caster.IsStatic = *cc.Static
	}
	if cc.SDF != nil {
		caster.EnableSDF = *cc.SDF
	}
	if cc.Cache != nil {
		caster.EnableCache = *cc.Cache
	}
	if cc.SDFResolution != nil {
		caster.SDFResolution = *cc.SDFResolution
	}
	if cc.SDFPadding != nil {
		caster.SDFPadding = *cc.SDFPadding
	}

	scale := shadows.Point{X: 1, Y: 1}
	if cc.Scale != nil {
		scale = shadows.Point{X: cc.Scale[0], Y: cc.Scale[1]}
	}

	return shadows.CasterSnapshot{
		Caster: caster,
		Transform: shadows.Transform{
			Position: shadows.Point{X: cc.Position[0], Y: cc.Position[1]},
			Rotation: cc.Rotation,
			Scale:    scale,
		},
	}
}

// Light converts the config into an engine light
func (lc LightConfig) Light() shadows.Light {
	lightColor := lighting.DefaultColor
	if c, err := lighting.ParseColor(lc.Color); err == nil {
		lightColor = c
	}
	return shadows.Light{
		ID:        lc.ID,
		Position:  shadows.Point{X: lc.Position[0], Y: lc.Position[1]},
		Radius:    lc.Radius,
		Intensity: lc.Intensity,
		Color:     lightColor,
	}
}

// TileGrid is the scene's tile rows as a shadows.TileGrid
type TileGrid []string

func (g TileGrid) Width() int {
	w := 0
	for _, row := range g {
		w = max(w, len(row))
	}
	return w
}

func (g TileGrid) Height() int { return len(g) }

// BlocksSight reports whether the tile at (x, y) is a wall. Short rows are
// padded with open tiles.
func (g TileGrid) BlocksSight(x, y int) bool {
	if y < 0 || y >= len(g) || x < 0 || x >= len(g[y]) {
		return false
	}
	return g[y][x] == '#'
}
