package game

import (
	"errors"
	"log"

	"chosenoffset.com/shadowcast/internal/config"
	"chosenoffset.com/shadowcast/internal/render"
)

// ErrQuit is returned from Update when the user asks to leave
var ErrQuit = errors.New("quit")

// Manager owns the running viewer and reloads it from its config file on request.
type Manager struct {
	ConfigPath string
	Game       *Game
	Renderer   render.Renderer
	InputMgr   render.InputManager
}

// NewManager loads the config at path and creates the viewer.
func NewManager(r render.Renderer, input render.InputManager, configPath string) (*Manager, error) {
	m := &Manager{
		ConfigPath: configPath,
		Renderer:   r,
		InputMgr:   input,
	}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload rebuilds the viewer from the config file. The previous viewer keeps
// running if the file is invalid.
func (m *Manager) Reload() error {
	cfg, err := config.LoadConfig(m.ConfigPath)
	if err != nil {
		return err
	}
	g, err := New(cfg, m.Renderer, m.InputMgr)
	if err != nil {
		return err
	}
	if m.Game != nil {
		g.Engine.SetMethod(m.Game.Engine.Method())
		g.surfaceImg, g.whiteImg = m.Game.surfaceImg, m.Game.whiteImg
	}
	m.Game = g
	return nil
}

// Update updates the viewer state.
func (m *Manager) Update() error {
	if m.InputMgr.IsKeyPressed(render.KeyEscape) {
		return ErrQuit
	}
	if m.InputMgr.IsKeyJustPressed(render.KeyR) {
		if err := m.Reload(); err != nil {
			log.Printf("Failed to reload scene: %v", err)
			m.Game.ShowMessage("Reload failed, see log")
		} else {
			m.Game.ShowMessage("Scene reloaded")
		}
	}
	return m.Game.Update()
}

// Draw draws the current viewer.
func (m *Manager) Draw(screen render.Image) {
	m.Game.Draw(screen)
}

// Layout reports the viewer's logical size.
func (m *Manager) Layout(outsideWidth, outsideHeight int) (int, int) {
	return m.Game.Layout(outsideWidth, outsideHeight)
}
