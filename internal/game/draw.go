package game

import (
	"fmt"
	"image/color"

	"chosenoffset.com/shadowcast/internal/core/shadows"
	"chosenoffset.com/shadowcast/internal/render"
)

var (
	edgeColor     = color.RGBA{80, 200, 255, 255}
	selectedColor = color.RGBA{255, 220, 60, 255}
	lightColor    = color.RGBA{255, 255, 180, 255}
)

// Draw renders the baked shadow surface and debug overlays to the screen.
func (g *Game) Draw(screen render.Image) {
	// Step 1: Bake the shadow result at surface resolution and upload it
	scale := max(g.SurfaceScale, 1)
	w, h := max(g.ScreenWidth/scale, 1), max(g.ScreenHeight/scale, 1)
	surface := render.Bake(g.Engine, g.Viewport, w, h, g.Scene.Ambient())

	if g.surfaceImg == nil || needsResize(g.surfaceImg, w, h) {
		if g.surfaceImg != nil {
			g.surfaceImg.Dispose()
		}
		g.surfaceImg = g.Renderer.NewImage(w, h)
	}
	g.surfaceImg.WritePixels(surface.Pixels())

	// Step 2: Stretch it over the screen
	opts := &render.DrawImageOptions{Linear: true}
	opts.GeoM = render.NewGeoM()
	opts.GeoM.Scale(float64(g.ScreenWidth)/float64(w), float64(g.ScreenHeight)/float64(h))
	screen.DrawImage(g.surfaceImg, opts)

	// Step 3: Overlays
	if g.ShowVisibility {
		g.drawVisibility(screen)
	}
	if g.ShowEdges {
		g.drawEdges(screen)
	}
	g.drawSelected(screen)
	g.drawLights(screen)
	g.drawUI(screen)
}

func needsResize(img render.Image, w, h int) bool {
	bounds := img.Bounds()
	return bounds.Dx() != w || bounds.Dy() != h
}

// worldToScreen maps a world position into screen pixels
func (g *Game) worldToScreen(p shadows.Point) (float32, float32) {
	size := g.Viewport.Size()
	x := (p.X - g.Viewport.Min.X) * float64(g.ScreenWidth) / size.X
	y := (p.Y - g.Viewport.Min.Y) * float64(g.ScreenHeight) / size.Y
	return float32(x), float32(y)
}

// screenToWorld maps screen pixels back into the viewport
func (g *Game) screenToWorld(x, y int) shadows.Point {
	size := g.Viewport.Size()
	return shadows.Point{
		X: g.Viewport.Min.X + float64(x)*size.X/float64(g.ScreenWidth),
		Y: g.Viewport.Min.Y + float64(y)*size.Y/float64(g.ScreenHeight),
	}
}

func (g *Game) drawEdges(screen render.Image) {
	for _, e := range g.Engine.Frame().Edges {
		x0, y0 := g.worldToScreen(e.Start)
		x1, y1 := g.worldToScreen(e.End)
		g.Renderer.StrokeLine(screen, x0, y0, x1, y1, 1, edgeColor)
	}
}

func (g *Game) drawSelected(screen render.Image) {
	id, ok := g.SelectedCaster()
	if !ok {
		return
	}
	poly, ok := g.Engine.Polygon(id)
	if !ok {
		return
	}
	for i := range poly {
		x0, y0 := g.worldToScreen(poly[i])
		x1, y1 := g.worldToScreen(poly[(i+1)%len(poly)])
		g.Renderer.StrokeLine(screen, x0, y0, x1, y1, 2, selectedColor)
	}
}

func (g *Game) drawLights(screen render.Image) {
	for _, l := range g.Engine.Frame().Lights {
		x, y := g.worldToScreen(l.Position)
		g.Renderer.FillCircle(screen, x, y, 5, lightColor)
		g.Renderer.StrokeCircle(screen, x, y, 5, 1, l.Color)
	}
}

// drawVisibility fills the region the player light reaches as a triangle fan
func (g *Game) drawVisibility(screen render.Image) {
	light, ok := g.Scene.LightManager().PlayerLight()
	if !ok || !g.Scene.LightManager().IsPlayerLightOn() {
		return
	}
	poly := shadows.ComputeVisibilityPolygon(light.Position, g.Engine.Frame().Edges, light.Radius)
	if len(poly) < 2 || len(poly)+1 > 1<<16 {
		return
	}

	if g.whiteImg == nil {
		g.whiteImg = g.Renderer.NewImage(3, 3)
		g.whiteImg.Fill(color.White)
	}

	vertices := make([]render.Vertex, 0, len(poly)+1)
	indices := make([]uint16, 0, len(poly)*3)
	for _, p := range append([]shadows.Point{light.Position}, poly...) {
		x, y := g.worldToScreen(p)
		vertices = append(vertices, render.Vertex{
			DstX: x, DstY: y,
			SrcX: 1, SrcY: 1,
			ColorR: 1, ColorG: 1, ColorB: 0.6, ColorA: 0.15,
		})
	}
	for i := 1; i <= len(poly); i++ {
		next := i%len(poly) + 1
		indices = append(indices, 0, uint16(i), uint16(next))
	}

	screen.DrawTriangles(vertices, indices, g.whiteImg, &render.DrawTrianglesOptions{AntiAlias: true})
}

func (g *Game) drawUI(screen render.Image) {
	frame := g.Engine.Frame()
	stats := frame.Stats
	g.Renderer.DrawText(screen, fmt.Sprintf("method %s  casters %d  regen %d  cache %.0f%%",
		frame.Method, stats.Casters, stats.Regenerated, stats.Cache.HitRate()*100), 8, 4)
	g.Renderer.DrawText(screen, "WASD/drag light  1/2/3 method  Tab select  QE rotate  T static  Space edges  V visibility  R reload", 8, g.ScreenHeight-18)

	// Draw on-screen messages
	y := 24
	for _, msg := range g.Messages {
		g.Renderer.DrawText(screen, msg.Text, 8, y)
		y += 16
	}
}
