package shadows

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// MaxTraceSteps bounds the number of sphere-tracing iterations per query
const MaxTraceSteps = 64

// SampleShadow sphere-traces from the light toward the point through a
// caster's distance field and returns a shadow factor in [0, 1], where 1 is
// fully shadowed.
//
// The penumbra estimate is the minimum of softness*distance/t along the ray,
// so larger softness values produce harder shadows. The march itself does not
// depend on softness, which makes the result non-increasing in softness: small
// positive values darken even points well clear of the caster, while zero or
// less switches soft shadows off and never shadows.
func SampleShadow(point, lightPos Point, grid *SDFGrid, softness float64) float64 {
	if grid == nil || !grid.Valid || softness <= 0 {
		return 0
	}

	toPoint := r2.Sub(point, lightPos)
	rayLength := r2.Norm(toPoint)
	if rayLength < CoincidentEpsilon {
		return 0
	}
	dir := r2.Scale(1/rayLength, toPoint)
	minStep := grid.CellSize * 0.5

	shadow := 1.0
	t := 0.0
	for i := 0; i < MaxTraceSteps && t < rayLength; i++ {
		d := grid.Sample(r2.Add(lightPos, r2.Scale(t, dir)))
		if d < 0 {
			return 1
		}
		if t > 0 {
			shadow = math.Min(shadow, softness*d/t)
		}
		t += math.Max(d, minStep)
	}

	return 1 - clamp01(shadow)
}
