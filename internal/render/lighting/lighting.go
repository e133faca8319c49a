package lighting

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"

	"chosenoffset.com/shadowcast/internal/core/shadows"
)

// PlayerLightID names the light that follows the controlled entity
const PlayerLightID = "player"

// DefaultColor is a warm torch light
var DefaultColor = color.NRGBA{R: 255, G: 200, B: 100, A: 255}

// Manager handles all light sources in a scene
type Manager struct {
	lights        map[string]*shadows.Light
	ambientLight  float64 // Global ambient light level (0.0 = pitch black, 1.0 = fully lit)
	playerLight   *shadows.Light
	playerLightOn bool
}

// NewManager creates a new lighting manager
func NewManager() *Manager {
	return &Manager{
		lights:       make(map[string]*shadows.Light),
		ambientLight: 0.15,
	}
}

// SetAmbientLight sets the global ambient light level
func (m *Manager) SetAmbientLight(level float64) {
	m.ambientLight = min(max(level, 0), 1)
}

// GetAmbientLight returns the current ambient light level
func (m *Manager) GetAmbientLight() float64 {
	return m.ambientLight
}

// SetPlayerLight configures the player's light source and turns it on
func (m *Manager) SetPlayerLight(position shadows.Point, radius, intensity float64, col color.NRGBA) {
	if m.playerLight == nil {
		m.playerLight = &shadows.Light{ID: PlayerLightID}
	}
	m.playerLight.Position = position
	m.playerLight.Radius = radius
	m.playerLight.Intensity = intensity
	m.playerLight.Color = col
	m.playerLightOn = true
}

// EnablePlayerLight turns on/off the player's light source
func (m *Manager) EnablePlayerLight(enabled bool) {
	m.playerLightOn = enabled
}

// IsPlayerLightOn returns whether the player's light is currently on
func (m *Manager) IsPlayerLightOn() bool {
	return m.playerLightOn && m.playerLight != nil
}

// PlayerLight returns the player's light, if configured
func (m *Manager) PlayerLight() (shadows.Light, bool) {
	if m.playerLight == nil {
		return shadows.Light{}, false
	}
	return *m.playerLight, true
}

// UpdatePlayerLightPosition updates the player's light position (called each frame)
func (m *Manager) UpdatePlayerLightPosition(position shadows.Point) {
	if m.playerLight != nil {
		m.playerLight.Position = position
	}
}

// AddLight registers a light, replacing any light with the same ID. A light
// named PlayerLightID becomes the player light.
func (m *Manager) AddLight(light shadows.Light) {
	if light.ID == PlayerLightID {
		m.SetPlayerLight(light.Position, light.Radius, light.Intensity, light.Color)
		return
	}
	l := light
	m.lights[light.ID] = &l
}

// AddPropertyLight adds a light described by string properties, as found on
// map objects tagged as light sources. Missing radius or intensity skips it.
func (m *Manager) AddPropertyLight(id string, position shadows.Point, props map[string]string) error {
	radiusStr, hasRadius := props["light_radius"]
	intensityStr, hasIntensity := props["light_intensity"]
	if !hasRadius || !hasIntensity {
		return fmt.Errorf("light %s: missing light_radius or light_intensity", id)
	}

	radius, err := strconv.ParseFloat(radiusStr, 64)
	if err != nil {
		return fmt.Errorf("light %s: failed to parse light_radius: %w", id, err)
	}
	intensity, err := strconv.ParseFloat(intensityStr, 64)
	if err != nil {
		return fmt.Errorf("light %s: failed to parse light_intensity: %w", id, err)
	}

	lightColor := DefaultColor
	if colorStr, hasColor := props["light_color"]; hasColor {
		c, err := ParseColor(colorStr)
		if err != nil {
			return fmt.Errorf("light %s: %w", id, err)
		}
		lightColor = c
	}

	m.AddLight(shadows.Light{
		ID:        id,
		Position:  position,
		Radius:    radius,
		Intensity: intensity,
		Color:     lightColor,
	})
	shadows.Logger().Debug("added light", "id", id, "x", position.X, "y", position.Y,
		"radius", radius, "intensity", intensity)
	return nil
}

// MoveLight repositions a named light. Returns false if the light is unknown.
func (m *Manager) MoveLight(id string, position shadows.Point) bool {
	if id == PlayerLightID && m.playerLight != nil {
		m.playerLight.Position = position
		return true
	}
	light, ok := m.lights[id]
	if !ok {
		return false
	}
	light.Position = position
	return true
}

// RemoveLight removes a light source (e.g., if its object is destroyed)
func (m *Manager) RemoveLight(id string) {
	if id == PlayerLightID {
		m.playerLight = nil
		m.playerLightOn = false
		return
	}
	delete(m.lights, id)
}

// GetAllLights returns all active light sources, player light first and the
// rest ordered by ID
func (m *Manager) GetAllLights() []shadows.Light {
	lights := make([]shadows.Light, 0, len(m.lights)+1)

	if m.IsPlayerLightOn() {
		lights = append(lights, *m.playerLight)
	}

	ids := make([]string, 0, len(m.lights))
	for id := range m.lights {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		lights = append(lights, *m.lights[id])
	}

	return lights
}

// ParseColor parses a hex color (format: "RRGGBB")
func ParseColor(hex string) (color.NRGBA, error) {
	var r, g, b uint8
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("color %q is not RRGGBB", hex)
	}
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q is not RRGGBB: %w", hex, err)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
