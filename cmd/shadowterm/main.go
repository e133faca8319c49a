package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"

	"chosenoffset.com/shadowcast/internal/config"
	"chosenoffset.com/shadowcast/internal/core/shadows"
	"chosenoffset.com/shadowcast/internal/render"
	"chosenoffset.com/shadowcast/internal/render/lighting"
	"chosenoffset.com/shadowcast/internal/scene"
)

// Viewer draws the shadow surface into the terminal, two texels per cell
type Viewer struct {
	screen tcell.Screen
	cfg    *config.Config
	scene  *scene.Scene
	engine *shadows.Engine
	light  shadows.Point
	step   float64
}

func NewViewer(cfg *config.Config) (*Viewer, error) {
	s, err := scene.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	engine := shadows.NewEngine(cfg.ShadowConfig())
	s.SetInvalidator(engine)

	vp := cfg.Viewport()
	v := &Viewer{
		cfg:    cfg,
		scene:  s,
		engine: engine,
		light:  vp.Center(),
		step:   vp.Size().X / 64,
	}
	lights := s.LightManager()
	if l, ok := lights.PlayerLight(); ok {
		v.light = l.Position
	} else {
		lights.SetPlayerLight(v.light, vp.Size().X/2, 1, lighting.DefaultColor)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	v.screen = screen
	return v, nil
}

func (v *Viewer) draw() {
	frame := v.engine.Update(v.scene)

	w, h := v.screen.Size()
	if w <= 0 || h <= 1 {
		return
	}
	// Last row is the status line
	surface := render.Bake(v.engine, v.cfg.Viewport(), w, (h-1)*2, v.scene.Ambient())

	for y := 0; y < h-1; y++ {
		for x := 0; x < w; x++ {
			top, bottom := surface.At(x, y*2), surface.At(x, y*2+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			v.screen.SetContent(x, y, '▀', nil, style)
		}
	}

	status := []rune(frameStatus(frame))
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(status) {
			r = status[x]
		}
		v.screen.SetContent(x, h-1, r, nil, tcell.StyleDefault.Reverse(true))
	}
	v.screen.Show()
}

func frameStatus(frame *shadows.Frame) string {
	return " " + frame.Method.String() + "  wasd/arrows light  1/2/3 method  esc quit"
}

// handleInput applies one event and reports whether the viewer keeps running
func (v *Viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		var move shadows.Point
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			move.Y = -v.step
		case tcell.KeyDown:
			move.Y = v.step
		case tcell.KeyLeft:
			move.X = -v.step
		case tcell.KeyRight:
			move.X = v.step
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'w':
				move.Y = -v.step
			case 's':
				move.Y = v.step
			case 'a':
				move.X = -v.step
			case 'd':
				move.X = v.step
			case '1':
				v.engine.SetMethod(shadows.MethodBasic)
			case '2':
				v.engine.SetMethod(shadows.MethodSDF)
			case '3':
				v.engine.SetMethod(shadows.MethodScreenSpace)
			}
		}
		v.light.X += move.X
		v.light.Y += move.Y
		v.scene.LightManager().UpdatePlayerLightPosition(v.light)
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *Viewer) run() {
	defer v.screen.Fini()
	v.draw()
	for {
		if !v.handleInput(v.screen.PollEvent()) {
			return
		}
		v.draw()
	}
}

func main() {
	configPath := flag.String("config", "shadowcast.json", "scene config file (defaults are used if missing)")
	logPath := flag.String("log", "", "write engine logs to this file")
	flag.Parse()

	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		shadows.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	viewer, err := NewViewer(cfg)
	if err != nil {
		log.Fatalf("Failed to start viewer: %v", err)
	}
	viewer.run()
}
