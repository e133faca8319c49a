package game

import (
	"chosenoffset.com/shadowcast/internal/core/shadows"
)

// Player is the controllable light carrier.
type Player struct {
	Pos   shadows.Point
	Speed float64 // World units per second
}

// Message represents an on-screen message that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}
