// Package config provides configuration for the shadow engine and the scene
// the bundled tools render. Values are loaded from JSON files so each scene
// can tune its own shadow quality.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r2"

	"chosenoffset.com/shadowcast/internal/core/shadows"
	"chosenoffset.com/shadowcast/internal/render/lighting"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all settings for one shadow scene
type Config struct {
	// Engine tunables
	Shadow ShadowConfig `json:"shadow"`

	// Screen-space occluder mask
	ScreenSpace ScreenSpaceConfig `json:"screen_space"`

	// Applied to casters that do not override them
	CasterDefaults CasterDefaults `json:"caster_defaults"`

	// Scene content for the bundled tools
	Scene SceneConfig `json:"scene"`
}

// ShadowConfig defines the engine-wide shadow settings
type ShadowConfig struct {
	Method              string  `json:"method"`                // "basic", "sdf" or "screenspace"
	ShadowMapResolution int     `json:"shadow_map_resolution"` // Side of the shadow-result surface
	Softness            float64 `json:"softness"`              // GPU penumbra softness, 0.0 to 1.0
	Bias                float64 `json:"bias"`                  // Receiver bias (fraction of ray length)
	SDFSoftness         float64 `json:"sdf_softness"`          // CPU sphere-trace factor, higher = harder
	MaxCasters          int     `json:"max_casters"`
	MaxSDFResolution    int     `json:"max_sdf_resolution"`
	TransformEpsilon    float64 `json:"transform_epsilon"`
}

// ScreenSpaceConfig defines the region rasterized for the screen-space method
type ScreenSpaceConfig struct {
	Viewport       [4]float64 `json:"viewport"` // min x, min y, max x, max y
	MaskResolution int        `json:"mask_resolution"`
}

// CasterDefaults are the per-caster toggles used when a caster leaves them unset
type CasterDefaults struct {
	EnableCache   bool    `json:"enable_cache"`
	IsStatic      bool    `json:"is_static"`
	EnableSDF     bool    `json:"enable_sdf"`
	SDFResolution int     `json:"sdf_resolution"`
	SDFPadding    float64 `json:"sdf_padding"`
}

// SceneConfig describes the lights and casters of a scene
type SceneConfig struct {
	Ambient  float64        `json:"ambient"`   // 0.0 = pitch black, 1.0 = fully lit
	TileSize float64        `json:"tile_size"` // World size of one tile in Tiles
	Tiles    []string       `json:"tiles"`     // Rows of tiles, '#' blocks light
	Casters  []CasterConfig `json:"casters"`
	Lights   []LightConfig  `json:"lights"`
}

// CasterConfig describes one caster. Pointer fields fall back to CasterDefaults.
type CasterConfig struct {
	Shape         string       `json:"shape"` // "rectangle", "circle", "polygon" or "auto"
	Size          [2]float64   `json:"size"`
	Radius        float64      `json:"radius"`
	Segments      int          `json:"segments"`
	Vertices      [][2]float64 `json:"vertices"`
	Offset        [2]float64   `json:"offset"`
	Position      [2]float64   `json:"position"`
	Rotation      float64      `json:"rotation"` // Radians
	Scale         *[2]float64  `json:"scale"`
	Opacity       *float64     `json:"opacity"`
	SelfShadow    bool         `json:"self_shadow"`
	Static        *bool        `json:"static"`
	SDF           *bool        `json:"sdf"`
	Cache         *bool        `json:"cache"`
	SDFResolution *int         `json:"sdf_resolution"`
	SDFPadding    *float64     `json:"sdf_padding"`
}

// LightConfig describes one point light
type LightConfig struct {
	ID        string     `json:"id"`
	Position  [2]float64 `json:"position"`
	Radius    float64    `json:"radius"`
	Intensity float64    `json:"intensity"`
	Color     string     `json:"color"` // Hex "RRGGBB"

	// Map-object style light properties ("light_radius", "light_intensity",
	// "light_color"). When set they replace Radius, Intensity and Color.
	Properties map[string]string `json:"properties,omitempty"`
}

// DefaultConfig returns sensible defaults and a small demo scene
func DefaultConfig() *Config {
	opaque := 1.0
	dynamic := false
	return &Config{
		Shadow: ShadowConfig{
			Method:              "basic",
			ShadowMapResolution: 1024,
			Softness:            0.5,
			Bias:                0.005,
			SDFSoftness:         8,
			MaxCasters:          64,
			MaxSDFResolution:    shadows.MaxSDFResolution,
			TransformEpsilon:    shadows.DefaultTransformEpsilon,
		},
		ScreenSpace: ScreenSpaceConfig{
			Viewport:       [4]float64{0, 0, 640, 400},
			MaskResolution: 320,
		},
		CasterDefaults: CasterDefaults{
			EnableCache:   true,
			IsStatic:      true,
			EnableSDF:     true,
			SDFResolution: 32,
			SDFPadding:    8,
		},
		Scene: SceneConfig{
			Ambient:  0.15,
			TileSize: 40,
			Tiles: []string{
				"################",
				"#..............#",
				"#..##......#...#",
				"#..##......#...#",
				"#..............#",
				"#.......##.....#",
				"#..............#",
				"#..............#",
				"#..............#",
				"################",
			},
			Casters: []CasterConfig{
				{Shape: "circle", Radius: 24, Position: [2]float64{480, 280}, Opacity: &opaque, Static: &dynamic},
				{Shape: "rectangle", Size: [2]float64{60, 20}, Position: [2]float64{220, 300}, Rotation: 0.4, Opacity: &opaque, Static: &dynamic},
			},
			Lights: []LightConfig{
				{ID: "player", Position: [2]float64{320, 160}, Radius: 360, Intensity: 1, Color: "FFC864"},
			},
		},
	}
}

// LoadConfig loads config from a JSON file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return defaults if file doesn't exist
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read shadow config: %w", err)
	}

	return Parse(data)
}

// Parse decodes JSON on top of the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	config := DefaultConfig() // Start with defaults
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse shadow config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks ranges and names
func (c *Config) Validate() error {
	if _, err := shadows.ParseMethod(c.Shadow.Method); err != nil {
		return fmt.Errorf("%w: shadow.method: %v", ErrInvalidConfig, err)
	}
	if c.Shadow.Softness < 0 || c.Shadow.Softness > 1 {
		return fmt.Errorf("%w: shadow.softness must be in [0,1], got %v", ErrInvalidConfig, c.Shadow.Softness)
	}
	if c.Shadow.Bias < 0 || c.Shadow.Bias >= 1 {
		return fmt.Errorf("%w: shadow.bias must be in [0,1), got %v", ErrInvalidConfig, c.Shadow.Bias)
	}
	if c.Shadow.ShadowMapResolution < 0 {
		return fmt.Errorf("%w: shadow.shadow_map_resolution must not be negative", ErrInvalidConfig)
	}
	if c.Shadow.MaxCasters < 0 {
		return fmt.Errorf("%w: shadow.max_casters must not be negative", ErrInvalidConfig)
	}
	if c.Shadow.MaxSDFResolution < 0 || c.Shadow.MaxSDFResolution > shadows.MaxSDFResolution {
		return fmt.Errorf("%w: shadow.max_sdf_resolution must be in [0,%d], got %d",
			ErrInvalidConfig, shadows.MaxSDFResolution, c.Shadow.MaxSDFResolution)
	}

	vp := c.ScreenSpace.Viewport
	if vp[2] <= vp[0] || vp[3] <= vp[1] {
		return fmt.Errorf("%w: screen_space.viewport must have positive area, got %v", ErrInvalidConfig, vp)
	}

	for i, cc := range c.Scene.Casters {
		if _, err := parseShapeKind(cc.Shape); err != nil {
			return fmt.Errorf("%w: scene.casters[%d]: %v", ErrInvalidConfig, i, err)
		}
		if cc.Opacity != nil && (*cc.Opacity < 0 || *cc.Opacity > 1) {
			return fmt.Errorf("%w: scene.casters[%d].opacity must be in [0,1]", ErrInvalidConfig, i)
		}
		if cc.SDFResolution != nil && (*cc.SDFResolution < 0 || *cc.SDFResolution > shadows.MaxSDFResolution) {
			return fmt.Errorf("%w: scene.casters[%d].sdf_resolution must be in [0,%d]",
				ErrInvalidConfig, i, shadows.MaxSDFResolution)
		}
		if cc.SDFPadding != nil && *cc.SDFPadding < 0 {
			return fmt.Errorf("%w: scene.casters[%d].sdf_padding must not be negative", ErrInvalidConfig, i)
		}
	}
	for i, lc := range c.Scene.Lights {
		if lc.Color != "" {
			if _, err := lighting.ParseColor(lc.Color); err != nil {
				return fmt.Errorf("%w: scene.lights[%d]: %v", ErrInvalidConfig, i, err)
			}
		}
	}
	return nil
}

// Viewport returns the screen-space viewport as a box
func (c *Config) Viewport() r2.Box {
	vp := c.ScreenSpace.Viewport
	return r2.Box{Min: r2.Vec{X: vp[0], Y: vp[1]}, Max: r2.Vec{X: vp[2], Y: vp[3]}}
}

// ShadowConfig converts the file settings into engine settings
func (c *Config) ShadowConfig() shadows.Config {
	method, _ := shadows.ParseMethod(c.Shadow.Method)
	return shadows.Config{
		Method:              method,
		ShadowMapResolution: c.Shadow.ShadowMapResolution,
		Softness:            c.Shadow.Softness,
		Bias:                c.Shadow.Bias,
		SDFSoftness:         c.Shadow.SDFSoftness,
		MaxCasters:          c.Shadow.MaxCasters,
		MaxSDFResolution:    c.Shadow.MaxSDFResolution,
		TransformEpsilon:    c.Shadow.TransformEpsilon,
		Viewport:            c.Viewport(),
		MaskResolution:      c.ScreenSpace.MaskResolution,
	}
}
