package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"chosenoffset.com/shadowcast/internal/core/shadows"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}

	sc := cfg.ShadowConfig()
	if sc.Method != shadows.MethodBasic {
		t.Errorf("Expected basic method, got %v", sc.Method)
	}
	if sc.Bias != 0.005 {
		t.Errorf("Expected bias 0.005, got %v", sc.Bias)
	}
	if sc.ShadowMapResolution != 1024 {
		t.Errorf("Expected shadow map resolution 1024, got %d", sc.ShadowMapResolution)
	}
	if size := sc.Viewport.Size(); size.X != 640 || size.Y != 400 {
		t.Errorf("Expected 640x400 viewport, got %v", size)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	jsonData := `{
		"shadow": {"method": "sdf", "softness": 0.25},
		"scene": {
			"casters": [
				{"shape": "polygon", "vertices": [[0,0],[4,0],[2,3]], "position": [10, 20], "static": false, "opacity": 0.5}
			],
			"lights": [{"id": "torch", "position": [1, 2], "radius": 100, "intensity": 0.8, "color": "FF0000"}]
		}
	}`

	cfg, err := Parse([]byte(jsonData))
	if err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if cfg.Shadow.Method != "sdf" || cfg.Shadow.Softness != 0.25 {
		t.Errorf("Expected method sdf softness 0.25, got %s %v", cfg.Shadow.Method, cfg.Shadow.Softness)
	}
	if cfg.Shadow.Bias != 0.005 {
		t.Errorf("Expected default bias to survive, got %v", cfg.Shadow.Bias)
	}
	if len(cfg.Scene.Casters) != 1 {
		t.Fatalf("Expected 1 caster, got %d", len(cfg.Scene.Casters))
	}

	snap := cfg.Scene.Casters[0].Snapshot(cfg.CasterDefaults)
	if snap.Caster.Shape.Kind != shadows.ShapePolygon || len(snap.Caster.Shape.Vertices) != 3 {
		t.Errorf("Expected 3-vertex polygon, got %v with %d vertices", snap.Caster.Shape.Kind, len(snap.Caster.Shape.Vertices))
	}
	if snap.Caster.IsStatic {
		t.Error("Expected static override to be false")
	}
	if !snap.Caster.EnableCache || !snap.Caster.EnableSDF {
		t.Error("Expected cache and SDF defaults to apply")
	}
	if snap.Caster.Opacity != 0.5 {
		t.Errorf("Expected opacity 0.5, got %v", snap.Caster.Opacity)
	}
	if snap.Transform.Position != (shadows.Point{X: 10, Y: 20}) || snap.Transform.Scale != (shadows.Point{X: 1, Y: 1}) {
		t.Errorf("Expected position (10,20) unit scale, got %v %v", snap.Transform.Position, snap.Transform.Scale)
	}

	light := cfg.Scene.Lights[0].Light()
	if light.ID != "torch" || light.Color.R != 255 || light.Color.G != 0 {
		t.Errorf("Expected red torch light, got %+v", light)
	}
}

func TestCasterOverrides(t *testing.T) {
	jsonData := `{
		"scene": {
			"casters": [
				{"shape": "circle", "radius": 4, "cache": false, "sdf_resolution": 64, "sdf_padding": 2},
				{"shape": "circle", "radius": 4}
			]
		}
	}`

	cfg, err := Parse([]byte(jsonData))
	if err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	custom := cfg.Scene.Casters[0].Snapshot(cfg.CasterDefaults).Caster
	if custom.EnableCache {
		t.Error("Expected cache override to disable caching")
	}
	if custom.SDFResolution != 64 || custom.SDFPadding != 2 {
		t.Errorf("Expected SDF resolution 64 padding 2, got %d %v", custom.SDFResolution, custom.SDFPadding)
	}

	plain := cfg.Scene.Casters[1].Snapshot(cfg.CasterDefaults).Caster
	if !plain.EnableCache || plain.SDFResolution != cfg.CasterDefaults.SDFResolution || plain.SDFPadding != cfg.CasterDefaults.SDFPadding {
		t.Errorf("Expected defaults without overrides, got cache=%v resolution=%d padding=%v",
			plain.EnableCache, plain.SDFResolution, plain.SDFPadding)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"unknown method", `{"shadow": {"method": "voxel"}}`},
		{"softness range", `{"shadow": {"softness": 2}}`},
		{"shadow map resolution", `{"shadow": {"shadow_map_resolution": -1}}`},
		{"sdf resolution", `{"shadow": {"max_sdf_resolution": 1024}}`},
		{"empty viewport", `{"screen_space": {"viewport": [0, 0, 0, 10]}}`},
		{"unknown shape", `{"scene": {"casters": [{"shape": "star"}]}}`},
		{"bad color", `{"scene": {"lights": [{"color": "red"}]}}`},
		{"caster sdf resolution", `{"scene": {"casters": [{"shape": "circle", "radius": 4, "sdf_resolution": 100000}]}}`},
		{"caster sdf padding", `{"scene": {"casters": [{"shape": "circle", "radius": 4, "sdf_padding": -1}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if _, err := Parse([]byte(`{not json`)); err == nil {
		t.Error("Expected a parse error for malformed JSON")
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Expected defaults for a missing file, got %v", err)
	}
	if cfg.Shadow.Method != "basic" {
		t.Errorf("Expected default method, got %s", cfg.Shadow.Method)
	}

	path := filepath.Join(t.TempDir(), "scene.json")
	if err := os.WriteFile(path, []byte(`{"shadow": {"method": "screenspace"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.ShadowConfig().Method != shadows.MethodScreenSpace {
		t.Errorf("Expected screen-space method, got %v", cfg.ShadowConfig().Method)
	}
}

func TestTileGrid(t *testing.T) {
	grid := TileGrid{"##", "#"}

	if grid.Width() != 2 || grid.Height() != 2 {
		t.Errorf("Expected 2x2 grid, got %dx%d", grid.Width(), grid.Height())
	}
	if !grid.BlocksSight(1, 0) || grid.BlocksSight(1, 1) || grid.BlocksSight(-1, 0) {
		t.Error("Expected short rows to read as open tiles")
	}
}
