package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r2"

	"chosenoffset.com/shadowcast/internal/core/shadows"
)

// Surface is the combined shadow result of one frame, sampled on a regular
// grid over a world-space viewport
type Surface struct {
	Viewport r2.Box
	Width    int
	Height   int

	// Shadow holds, per texel, how shadowed the texel is from the least
	// occluded light in range. Texels reached by no light are 1.
	Shadow []float64

	img *image.NRGBA
}

// NewSurface creates a black, fully shadowed surface
func NewSurface(viewport r2.Box, width, height int) *Surface {
	width, height = max(width, 1), max(height, 1)
	s := &Surface{
		Viewport: viewport,
		Width:    width,
		Height:   height,
		Shadow:   make([]float64, width*height),
		img:      image.NewNRGBA(image.Rect(0, 0, width, height)),
	}
	for i := range s.Shadow {
		s.Shadow[i] = 1
		s.img.Pix[i*4+3] = 255
	}
	return s
}

// SurfaceSize fits a surface of the given resolution to a viewport. The
// longer side gets resolution texels and the other keeps the aspect ratio.
func SurfaceSize(resolution int, viewport r2.Box) (int, int) {
	resolution = max(resolution, 1)
	size := viewport.Size()
	if size.X <= 0 || size.Y <= 0 {
		return resolution, resolution
	}
	if size.X >= size.Y {
		return resolution, max(1, int(float64(resolution)*size.Y/size.X))
	}
	return max(1, int(float64(resolution)*size.X/size.Y)), resolution
}

// TexelCenter returns the world position sampled by texel (x, y)
func (s *Surface) TexelCenter(x, y int) shadows.Point {
	size := s.Viewport.Size()
	return shadows.Point{
		X: s.Viewport.Min.X + (float64(x)+0.5)*size.X/float64(s.Width),
		Y: s.Viewport.Min.Y + (float64(y)+0.5)*size.Y/float64(s.Height),
	}
}

// Falloff is the light attenuation at a distance from a light, 1 at the
// light and 0 at its radius
func Falloff(dist, radius float64) float64 {
	if radius <= 0 || dist >= radius {
		return 0
	}
	f := 1 - dist/radius
	return f * f
}

// Bake samples the engine's last frame over a viewport. Each texel gets the
// ambient level plus every light's color scaled by falloff, intensity and the
// unshadowed fraction the engine reports.
func Bake(engine *shadows.Engine, viewport r2.Box, width, height int, ambient float64) *Surface {
	s := NewSurface(viewport, width, height)
	lights := engine.Frame().Lights

	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			p := s.TexelCenter(x, y)
			r, g, b := ambient, ambient, ambient
			shadow := 1.0

			for _, l := range lights {
				f := Falloff(shadows.Distance(p, l.Position), l.Radius)
				if f == 0 {
					continue
				}
				sh := engine.ShadowAt(p, l.Position)
				shadow = min(shadow, sh)

				k := f * l.Intensity * (1 - sh)
				r += k * float64(l.Color.R) / 255
				g += k * float64(l.Color.G) / 255
				b += k * float64(l.Color.B) / 255
			}

			i := y*s.Width + x
			s.Shadow[i] = shadow
			s.img.SetNRGBA(x, y, color.NRGBA{R: channel(r), G: channel(g), B: channel(b), A: 255})
		}
	}

	shadows.Logger().Debug("surface baked", "width", s.Width, "height", s.Height, "lights", len(lights))
	return s
}

func channel(v float64) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}

// ShadowAt returns the shadow value of texel (x, y)
func (s *Surface) ShadowAt(x, y int) float64 {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return 1
	}
	return s.Shadow[y*s.Width+x]
}

// At returns the lit color of texel (x, y)
func (s *Surface) At(x, y int) color.NRGBA {
	return s.img.NRGBAAt(x, y)
}

// Image returns the lit colors. The image is owned by the surface.
func (s *Surface) Image() *image.NRGBA {
	return s.img
}

// Pixels returns premultiplied RGBA bytes suitable for uploading to a GPU
// texture. Every texel is opaque, so these are the image's own bytes.
func (s *Surface) Pixels() []byte {
	return s.img.Pix
}

// Scaled returns the lit colors resized to width x height with bilinear
// filtering. A zero dimension keeps the aspect ratio.
func (s *Surface) Scaled(width, height int) image.Image {
	if width == s.Width && height == s.Height {
		return s.img
	}
	return resize.Resize(uint(max(width, 0)), uint(max(height, 0)), s.img, resize.Bilinear)
}

// WritePNG encodes the surface, scaled to width x height, as PNG
func (s *Surface) WritePNG(w io.Writer, width, height int) error {
	if err := png.Encode(w, s.Scaled(width, height)); err != nil {
		return fmt.Errorf("failed to encode surface: %w", err)
	}
	return nil
}

// SavePNG writes the surface to a PNG file
func (s *Surface) SavePNG(path string, width, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := s.WritePNG(f, width, height); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
