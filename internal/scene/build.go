package scene

import (
	"fmt"

	"chosenoffset.com/shadowcast/internal/config"
	"chosenoffset.com/shadowcast/internal/core/shadows"
	"chosenoffset.com/shadowcast/internal/render/lighting"
)

// FromConfig builds a scene from the config's tile map, casters and lights.
// Tile casters take the lowest IDs.
func FromConfig(cfg *config.Config) (*Scene, error) {
	lights := lighting.NewManager()
	lights.SetAmbientLight(cfg.Scene.Ambient)
	for i, lc := range cfg.Scene.Lights {
		if len(lc.Properties) == 0 {
			lights.AddLight(lc.Light())
			continue
		}
		light := lc.Light()
		if err := lights.AddPropertyLight(light.ID, light.Position, lc.Properties); err != nil {
			return nil, fmt.Errorf("failed to add light %d: %w", i, err)
		}
	}

	s := New(lights)

	if len(cfg.Scene.Tiles) > 0 && cfg.Scene.TileSize > 0 {
		tiles := shadows.CastersFromTiles(config.TileGrid(cfg.Scene.Tiles), cfg.Scene.TileSize, 1)
		for _, snap := range tiles {
			snap.Caster.EnableSDF = cfg.CasterDefaults.EnableSDF
			snap.Caster.SDFResolution = cfg.CasterDefaults.SDFResolution
			snap.Caster.SDFPadding = cfg.CasterDefaults.SDFPadding
			if _, err := s.AddCaster(snap.Caster, snap.Transform); err != nil {
				return nil, fmt.Errorf("failed to add tile caster: %w", err)
			}
		}
	}

	for i, cc := range cfg.Scene.Casters {
		snap := cc.Snapshot(cfg.CasterDefaults)
		if _, err := s.AddCaster(snap.Caster, snap.Transform); err != nil {
			return nil, fmt.Errorf("failed to add caster %d: %w", i, err)
		}
	}

	shadows.Logger().Info("scene built", "casters", s.Len(), "lights", len(s.Lights()))
	return s, nil
}

// Ambient returns the scene's ambient light level
func (s *Scene) Ambient() float64 {
	return s.lights.GetAmbientLight()
}
