package shadows

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"
)

// MaxScreenSpaceSteps bounds the march length of a screen-space query
const MaxScreenSpaceSteps = 1024

// OccluderMask is a coverage raster of all active casters over a viewport.
// Each texel holds the accumulated caster opacity covering it.
type OccluderMask struct {
	Viewport r2.Box
	Width    int
	Height   int
	Alpha    *image.Alpha

	rast *vector.Rasterizer
}

// NewOccluderMask allocates an empty mask. The viewport must have a positive area.
func NewOccluderMask(viewport r2.Box, width, height int) *OccluderMask {
	return &OccluderMask{
		Viewport: viewport,
		Width:    width,
		Height:   height,
		Alpha:    image.NewAlpha(image.Rect(0, 0, width, height)),
		rast:     vector.NewRasterizer(width, height),
	}
}

// Clear resets every texel to zero coverage
func (m *OccluderMask) Clear() {
	clear(m.Alpha.Pix)
}

// TexelSize returns the world size of one texel along its shorter side
func (m *OccluderMask) TexelSize() float64 {
	size := m.Viewport.Size()
	return math.Min(size.X/float64(m.Width), size.Y/float64(m.Height))
}

// toMask converts a world point into fractional texel coordinates
func (m *OccluderMask) toMask(p Point) (float64, float64) {
	size := m.Viewport.Size()
	return (p.X - m.Viewport.Min.X) / size.X * float64(m.Width),
		(p.Y - m.Viewport.Min.Y) / size.Y * float64(m.Height)
}

// AddPolygon rasterizes a polygon into the mask with the given opacity,
// compositing over whatever is already there
func (m *OccluderMask) AddPolygon(polygon WorldPolygon, opacity float64) {
	if !CastsShadow(polygon) || opacity <= 0 {
		return
	}

	m.rast.Reset(m.Width, m.Height)
	m.rast.DrawOp = draw.Over
	x, y := m.toMask(polygon[0])
	m.rast.MoveTo(float32(x), float32(y))
	for _, p := range polygon[1:] {
		x, y = m.toMask(p)
		m.rast.LineTo(float32(x), float32(y))
	}
	m.rast.ClosePath()

	src := image.NewUniform(color.Alpha{A: uint8(math.Round(clamp01(opacity) * 255))})
	m.rast.Draw(m.Alpha, m.Alpha.Bounds(), src, image.Point{})
}

// Coverage returns the occluder coverage in [0, 1] at a world point.
// Points outside the viewport are unoccluded.
func (m *OccluderMask) Coverage(p Point) float64 {
	fx, fy := m.toMask(p)
	x, y := int(math.Floor(fx)), int(math.Floor(fy))
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return float64(m.Alpha.AlphaAt(x, y).A) / 255
}

// SampleScreenSpace marches texel-sized steps from the light toward the point
// and returns the strongest occluder coverage crossed. The first and last
// texels are skipped, and bias shortens the ray by that fraction of its length
// to keep receivers from shadowing themselves.
func SampleScreenSpace(point, lightPos Point, mask *OccluderMask, bias float64) float64 {
	if mask == nil {
		return 0
	}

	toPoint := r2.Sub(point, lightPos)
	rayLength := r2.Norm(toPoint)
	if rayLength < CoincidentEpsilon {
		return 0
	}
	dir := r2.Scale(1/rayLength, toPoint)

	step := mask.TexelSize()
	end := rayLength*(1-bias) - step
	if end <= step {
		return 0
	}
	if n := (end - step) / step; n > MaxScreenSpaceSteps {
		step = (end - step) / MaxScreenSpaceSteps
	}

	shadow := 0.0
	for t := step; t <= end; t += step {
		shadow = math.Max(shadow, mask.Coverage(r2.Add(lightPos, r2.Scale(t, dir))))
		if shadow >= 1 {
			break
		}
	}
	return shadow
}
