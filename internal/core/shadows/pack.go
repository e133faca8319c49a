package shadows

import (
	"github.com/chewxy/math32"
)

// MaxEdgesPerCaster is the per-caster share of the edge buffer
const MaxEdgesPerCaster = 8

// EdgeEntry is one edge as laid out for the GPU edge buffer
type EdgeEntry struct {
	Start      [2]float32
	End        [2]float32
	BoundsMin  [2]float32 // Owning caster's world bounds
	BoundsMax  [2]float32
	SelfShadow float32 // 1 when the caster shadows itself
	Opacity    float32
	Padding    [2]float32
}

// EdgeEntryFloats is the number of float32 values per packed edge
const EdgeEntryFloats = 12

// ParamBlock is the shadow parameter block uploaded alongside the edges
type ParamBlock struct {
	EdgeCount uint32
	Softness  float32
	Bias      float32
	Method    uint32
}

// SDFHeader locates one caster's distances inside SDFBlock.Data
type SDFHeader struct {
	Caster   CasterID
	Offset   uint32 // Index of the first value in Data
	Width    uint32
	Height   uint32
	CellSize float32
	Origin   [2]float32
}

// SDFBlock holds the raw distance arrays of every caster using SDF shadows
type SDFBlock struct {
	Headers []SDFHeader
	Data    []float32
}

// Buffers is the per-frame output handed to the rendering backend. It is
// rebuilt wholesale every frame.
type Buffers struct {
	Edges  []EdgeEntry
	Params ParamBlock
	SDF    SDFBlock
}

// packer fills Buffers while enforcing the configured caps
type packer struct {
	maxEdges  int
	maxFloats int
	buf       Buffers

	droppedEdges int
	droppedSDFs  int
}

func newPacker(maxCasters, maxSDFResolution int) *packer {
	return &packer{
		maxEdges:  maxCasters * MaxEdgesPerCaster,
		maxFloats: maxCasters * maxSDFResolution * maxSDFResolution,
	}
}

// reset empties the buffers, keeping their backing arrays
func (p *packer) reset() {
	p.buf.Edges = p.buf.Edges[:0]
	p.buf.SDF.Headers = p.buf.SDF.Headers[:0]
	p.buf.SDF.Data = p.buf.SDF.Data[:0]
	p.buf.Params = ParamBlock{}
	p.droppedEdges = 0
	p.droppedSDFs = 0
}

// addCaster appends a caster's edges, truncating at the buffer cap
func (p *packer) addCaster(c Caster, polygon WorldPolygon, edges []Edge) {
	bounds := Bounds(polygon)
	boundsMin := vec32(bounds.Min)
	boundsMax := vec32(bounds.Max)
	opacity := math32.Max(0, math32.Min(1, float32(c.Opacity)))
	var self float32
	if c.SelfShadow {
		self = 1
	}

	for _, e := range edges {
		if len(p.buf.Edges) >= p.maxEdges {
			p.droppedEdges++
			continue
		}
		p.buf.Edges = append(p.buf.Edges, EdgeEntry{
			Start:      vec32(e.Start),
			End:        vec32(e.End),
			BoundsMin:  boundsMin,
			BoundsMax:  boundsMax,
			SelfShadow: self,
			Opacity:    opacity,
		})
	}
}

// addSDF appends a grid's distances if they fit in the remaining space
func (p *packer) addSDF(grid *SDFGrid) {
	if grid == nil || !grid.Valid {
		return
	}
	if len(p.buf.SDF.Data)+len(grid.Distance) > p.maxFloats {
		p.droppedSDFs++
		return
	}

	p.buf.SDF.Headers = append(p.buf.SDF.Headers, SDFHeader{
		Caster:   grid.Caster,
		Offset:   uint32(len(p.buf.SDF.Data)),
		Width:    uint32(grid.Width),
		Height:   uint32(grid.Height),
		CellSize: float32(grid.CellSize),
		Origin:   vec32(grid.Origin),
	})
	for _, d := range grid.Distance {
		v := float32(d)
		if math32.IsInf(v, 0) {
			v = math32.Copysign(math32.MaxFloat32, v)
		}
		p.buf.SDF.Data = append(p.buf.SDF.Data, v)
	}
}

// finish fills the parameter block and logs anything that did not fit
func (p *packer) finish(method Method, softness, bias float64) *Buffers {
	p.buf.Params = ParamBlock{
		EdgeCount: uint32(len(p.buf.Edges)),
		Softness:  float32(softness),
		Bias:      float32(bias),
		Method:    uint32(method),
	}
	if p.droppedEdges > 0 {
		Logger().Warn("edge buffer full, edges dropped", "dropped", p.droppedEdges, "capacity", p.maxEdges)
	}
	if p.droppedSDFs > 0 {
		Logger().Warn("sdf buffer full, grids dropped", "dropped", p.droppedSDFs, "capacity", p.maxFloats)
	}
	return &p.buf
}

// Flatten returns the edge buffer as a flat float32 slice, EdgeEntryFloats
// values per edge, ready for upload as a uniform or storage array
func (b *Buffers) Flatten() []float32 {
	out := make([]float32, 0, len(b.Edges)*EdgeEntryFloats)
	for _, e := range b.Edges {
		out = append(out,
			e.Start[0], e.Start[1], e.End[0], e.End[1],
			e.BoundsMin[0], e.BoundsMin[1], e.BoundsMax[0], e.BoundsMax[1],
			e.SelfShadow, e.Opacity, e.Padding[0], e.Padding[1],
		)
	}
	return out
}

func vec32(p Point) [2]float32 {
	return [2]float32{float32(p.X), float32(p.Y)}
}
