package main

import (
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"chosenoffset.com/shadowcast/internal/core/shadows"
	"chosenoffset.com/shadowcast/internal/game"
	ebitenrender "chosenoffset.com/shadowcast/internal/render/ebiten"
)

func main() {
	configPath := flag.String("config", "shadowcast.json", "scene config file (defaults are used if missing)")
	scale := flag.Int("scale", 4, "screen pixels per shadow surface texel")
	verbose := flag.Bool("v", false, "log engine debug output")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	shadows.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	engine := ebitenrender.NewEngine()

	manager, err := game.NewManager(renderer, inputMgr, *configPath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}
	manager.Game.SurfaceScale = *scale

	// Set up the window
	w, h := manager.Game.Layout(0, 0)
	engine.SetWindowSize(w, h)
	engine.SetWindowTitle("Shadowlab")
	engine.SetWindowResizable(true)

	log.Println("Starting viewer...")
	if err := engine.RunGame(manager); err != nil && !errors.Is(err, game.ErrQuit) {
		log.Fatal(err)
	}
}
