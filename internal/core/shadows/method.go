package shadows

import (
	"fmt"
	"strings"
)

// Method selects the shadow algorithm
type Method int

const (
	MethodBasic       Method = iota // Edge ray casting, hard shadows
	MethodSDF                       // Sphere tracing through per-caster distance fields
	MethodScreenSpace               // Marching a rasterized occluder mask
)

// String returns the config name of the method
func (m Method) String() string {
	switch m {
	case MethodBasic:
		return "basic"
	case MethodSDF:
		return "sdf"
	case MethodScreenSpace:
		return "screenspace"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod converts a config name into a Method
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "basic", "":
		return MethodBasic, nil
	case "sdf":
		return MethodSDF, nil
	case "screenspace", "screen_space", "screen-space":
		return MethodScreenSpace, nil
	}
	return MethodBasic, fmt.Errorf("unknown shadow method %q", name)
}

// MethodController holds the active method. Every transition invalidates all
// cache records, since edges and distance fields are not interchangeable.
type MethodController struct {
	method Method
	cache  *Cache
}

// NewMethodController creates a controller bound to a cache
func NewMethodController(initial Method, cache *Cache) *MethodController {
	return &MethodController{method: initial, cache: cache}
}

// Method returns the active method
func (mc *MethodController) Method() Method {
	return mc.method
}

// SetMethod switches the active method. Selecting the current method again is
// a no-op; any other transition invalidates the whole cache and resets its
// counters. Reports whether a transition happened.
func (mc *MethodController) SetMethod(m Method) bool {
	if m == mc.method {
		return false
	}
	Logger().Debug("shadow method changed", "from", mc.method.String(), "to", m.String())
	mc.method = m
	mc.cache.InvalidateAll()
	return true
}
