package motion

import (
	"time"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
)

// Position is a fractional grid position used for smooth rendering.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Lerp interpolates linearly between two grid cells. t is clamped to [0, 1].
func Lerp(from, to facility.Point, t float64) Position {
	t = clamp01(t)
	return Position{
		X: float64(from.X) + (float64(to.X)-float64(from.X))*t,
		Y: float64(from.Y) + (float64(to.Y)-float64(from.Y))*t,
	}
}

// Step is the segment walked during one tick.
type Step struct {
	From     facility.Point `json:"from"`
	To       facility.Point `json:"to"`
	Started  time.Time      `json:"started"`
	Duration time.Duration  `json:"duration"`
}

// At returns the interpolated position at time now.
func (s Step) At(now time.Time) Position {
	if s.Duration <= 0 {
		return Lerp(s.From, s.To, 1)
	}
	return Lerp(s.From, s.To, float64(now.Sub(s.Started))/float64(s.Duration))
}

func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
