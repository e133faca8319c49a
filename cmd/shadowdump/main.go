package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"chosenoffset.com/shadowcast/internal/config"
	"chosenoffset.com/shadowcast/internal/core/shadows"
	"chosenoffset.com/shadowcast/internal/render"
	"chosenoffset.com/shadowcast/internal/scene"
)

func main() {
	configPath := flag.String("config", "shadowcast.json", "scene config file (defaults are used if missing)")
	out := flag.String("out", "shadows.png", "output PNG path")
	width := flag.Int("width", 0, "surface width in texels (0 uses shadow.shadow_map_resolution)")
	height := flag.Int("height", 0, "surface height in texels (0 keeps the viewport aspect)")
	outWidth := flag.Int("scale-width", 0, "resize the PNG to this width (0 keeps the surface size)")
	method := flag.String("method", "", "override the shadow method: basic, sdf or screenspace")
	verbose := flag.Bool("v", false, "log engine debug output")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	shadows.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *method != "" {
		cfg.Shadow.Method = *method
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid method: %v", err)
		}
	}

	s, err := scene.FromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to build scene: %v", err)
	}
	engine := shadows.NewEngine(cfg.ShadowConfig())
	frame := engine.Update(s)

	vp := cfg.Viewport()
	w, h := render.SurfaceSize(engine.Config().ShadowMapResolution, vp)
	if *width > 0 {
		size := vp.Size()
		w, h = *width, max(1, int(float64(*width)*size.Y/size.X))
	}
	if *height > 0 {
		h = *height
	}
	surface := render.Bake(engine, vp, w, h, s.Ambient())

	outW, outH := surface.Width, surface.Height
	if *outWidth > 0 {
		outW, outH = *outWidth, 0
	}
	if err := surface.SavePNG(*out, outW, outH); err != nil {
		log.Fatalf("Failed to write PNG: %v", err)
	}

	log.Printf("Wrote %s: method %s, %d casters, %d edges, %dx%d texels",
		*out, frame.Method, frame.Stats.Casters, len(frame.Edges), surface.Width, surface.Height)
}
