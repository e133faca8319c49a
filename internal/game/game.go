package game

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/spatial/r2"

	"chosenoffset.com/shadowcast/internal/config"
	"chosenoffset.com/shadowcast/internal/core/shadows"
	"chosenoffset.com/shadowcast/internal/render"
	"chosenoffset.com/shadowcast/internal/render/lighting"
	"chosenoffset.com/shadowcast/internal/scene"
)

const (
	defaultPlayerSpeed = 180.0 // World units per second
	rotateSpeed        = 1.5   // Radians per second
	casterSpeed        = 120.0 // World units per second
	defaultScale       = 4     // Screen pixels per surface texel
)

// Game is the interactive shadow viewer: one scene, one engine, and the
// controls to move lights and casters around.
type Game struct {
	ScreenWidth  int
	ScreenHeight int
	Viewport     r2.Box

	Config   *config.Config
	Scene    *scene.Scene
	Engine   *shadows.Engine
	Renderer render.Renderer
	InputMgr render.InputManager

	Player Player

	// Casters the viewer can move, in scene order
	Movable  []shadows.CasterID
	Selected int

	// Screen pixels per baked surface texel
	SurfaceScale int

	ShowEdges      bool
	ShowVisibility bool

	// UI state
	Messages []Message

	surfaceImg render.Image
	whiteImg   render.Image

	// Debug
	FrameCount int
}

// New builds the viewer for a config's scene
func New(cfg *config.Config, r render.Renderer, input render.InputManager) (*Game, error) {
	s, err := scene.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build scene: %w", err)
	}

	engine := shadows.NewEngine(cfg.ShadowConfig())
	s.SetInvalidator(engine)

	vp := cfg.Viewport()
	size := vp.Size()
	g := &Game{
		ScreenWidth:  int(size.X),
		ScreenHeight: int(size.Y),
		Viewport:     vp,
		Config:       cfg,
		Scene:        s,
		Engine:       engine,
		Renderer:     r,
		InputMgr:     input,
		Player:       Player{Pos: vp.Center(), Speed: defaultPlayerSpeed},
		SurfaceScale: defaultScale,
		ShowEdges:    true,
	}

	lights := s.LightManager()
	if light, ok := lights.PlayerLight(); ok {
		g.Player.Pos = light.Position
	} else {
		lights.SetPlayerLight(g.Player.Pos, max(size.X, size.Y)/2, 1, lighting.DefaultColor)
	}

	for _, snap := range s.Casters() {
		if !snap.Caster.IsStatic {
			g.Movable = append(g.Movable, snap.Caster.ID)
		}
	}

	engine.Update(s)
	log.Printf("Scene loaded: %d casters, %d lights, method %s",
		s.Len(), len(s.Lights()), engine.Method())
	return g, nil
}

// Update handles input and runs one shadow frame.
func (g *Game) Update() error {
	// Delta time for timers (assuming 60 FPS)
	dt := 1.0 / 60.0

	g.updateMessages(dt)
	g.updatePlayer(dt)
	g.updateMethod()
	g.updateSelected(dt)

	if g.InputMgr.IsKeyJustPressed(render.KeySpace) {
		g.ShowEdges = !g.ShowEdges
	}
	if g.InputMgr.IsKeyJustPressed(render.KeyV) {
		g.ShowVisibility = !g.ShowVisibility
	}

	g.Engine.Update(g.Scene)
	g.FrameCount++
	return nil
}

// Layout returns the viewer's logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.ScreenWidth, g.ScreenHeight
}

func (g *Game) updatePlayer(dt float64) {
	lights := g.Scene.LightManager()
	if g.InputMgr.IsKeyJustPressed(render.KeyL) {
		lights.EnablePlayerLight(!lights.IsPlayerLightOn())
	}

	// Holding the left button drags the light to the cursor
	if g.InputMgr.IsMouseButtonPressed(render.MouseButtonLeft) {
		g.Player.Pos = g.clampToViewport(g.screenToWorld(g.InputMgr.GetCursorPosition()))
		lights.UpdatePlayerLightPosition(g.Player.Pos)
		return
	}

	step := g.Player.Speed * dt
	var move shadows.Point
	if g.InputMgr.IsKeyPressed(render.KeyW) {
		move.Y -= step
	}
	if g.InputMgr.IsKeyPressed(render.KeyS) {
		move.Y += step
	}
	if g.InputMgr.IsKeyPressed(render.KeyA) {
		move.X -= step
	}
	if g.InputMgr.IsKeyPressed(render.KeyD) {
		move.X += step
	}
	if move == (shadows.Point{}) {
		return
	}

	g.Player.Pos = g.clampToViewport(r2.Add(g.Player.Pos, move))
	lights.UpdatePlayerLightPosition(g.Player.Pos)
}

func (g *Game) updateMethod() {
	keys := []struct {
		key    render.Key
		method shadows.Method
	}{
		{render.Key1, shadows.MethodBasic},
		{render.Key2, shadows.MethodSDF},
		{render.Key3, shadows.MethodScreenSpace},
	}
	for _, k := range keys {
		if g.InputMgr.IsKeyJustPressed(k.key) && g.Engine.SetMethod(k.method) {
			g.ShowMessage(fmt.Sprintf("Shadow method: %s", k.method))
		}
	}
}

// SelectedCaster returns the caster the viewer currently controls
func (g *Game) SelectedCaster() (shadows.CasterID, bool) {
	if len(g.Movable) == 0 {
		return 0, false
	}
	return g.Movable[g.Selected%len(g.Movable)], true
}

func (g *Game) updateSelected(dt float64) {
	if g.InputMgr.IsKeyJustPressed(render.KeyTab) && len(g.Movable) > 0 {
		g.Selected = (g.Selected + 1) % len(g.Movable)
	}

	id, ok := g.SelectedCaster()
	if !ok {
		return
	}
	snap, ok := g.Scene.Get(id)
	if !ok {
		return
	}

	if g.InputMgr.IsKeyJustPressed(render.KeyT) {
		static := !snap.Caster.IsStatic
		g.Scene.UpdateCaster(id, func(c *shadows.Caster) { c.IsStatic = static })
		g.ShowMessage(fmt.Sprintf("Caster %d static: %v", id, static))
	}

	t := snap.Transform
	if g.InputMgr.IsKeyPressed(render.KeyQ) {
		t.Rotation -= rotateSpeed * dt
	}
	if g.InputMgr.IsKeyPressed(render.KeyE) {
		t.Rotation += rotateSpeed * dt
	}

	step := casterSpeed * dt
	if g.InputMgr.IsKeyPressed(render.KeyUp) {
		t.Position.Y -= step
	}
	if g.InputMgr.IsKeyPressed(render.KeyDown) {
		t.Position.Y += step
	}
	if g.InputMgr.IsKeyPressed(render.KeyLeft) {
		t.Position.X -= step
	}
	if g.InputMgr.IsKeyPressed(render.KeyRight) {
		t.Position.X += step
	}
	t.Position = g.clampToViewport(t.Position)

	if t != snap.Transform {
		g.Scene.SetTransform(id, t)
	}
}

func (g *Game) clampToViewport(p shadows.Point) shadows.Point {
	return shadows.Point{
		X: min(max(p.X, g.Viewport.Min.X), g.Viewport.Max.X),
		Y: min(max(p.Y, g.Viewport.Min.Y), g.Viewport.Max.Y),
	}
}

func (g *Game) updateMessages(dt float64) {
	var active []Message
	for _, msg := range g.Messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	g.Messages = active
}

// ShowMessage adds a new message to be displayed on screen.
func (g *Game) ShowMessage(text string) {
	g.Messages = append(g.Messages, Message{
		Text:     text,
		TimeLeft: 3.0,
		MaxTime:  3.0,
	})

	log.Printf("Message: %s", text)
}
