// Package viewport keeps a camera over a floor grid and animates it in
// response to navigation snapshots. It only reads navigation state.
package viewport

import (
	"math"
	"time"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
)

const (
	InitialScale      = 0.6
	MinScale          = 0.4
	MaxScale          = 3.0
	FollowScale       = 1.2
	AnimationDuration = 500 * time.Millisecond

	// fitMargin leaves room around a fitted path.
	fitMargin = 0.9
)

// Camera is the view transform: the grid point at the center of the screen
// and the zoom factor.
type Camera struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Scale   float64 `json:"scale"`
}

// Clamp keeps scale within [MinScale, MaxScale] and the center on the grid.
func (c Camera) Clamp() Camera {
	c.Scale = math.Min(math.Max(c.Scale, MinScale), MaxScale)
	c.CenterX = math.Min(math.Max(c.CenterX, 0), facility.GridSize)
	c.CenterY = math.Min(math.Max(c.CenterY, 0), facility.GridSize)
	return c
}

// Screen describes the drawing surface. UnitX and UnitY are the screen
// units one grid cell takes at scale 1.
type Screen struct {
	Width  int
	Height int
	UnitX  float64
	UnitY  float64
}

func (s Screen) units() (float64, float64) {
	ux, uy := s.UnitX, s.UnitY
	if ux <= 0 {
		ux = 1
	}
	if uy <= 0 {
		uy = 1
	}
	return ux, uy
}

// WorldToScreen maps a fractional grid position to screen coordinates.
func (c Camera) WorldToScreen(s Screen, x, y float64) (float64, float64) {
	ux, uy := s.units()
	return (x-c.CenterX)*c.Scale*ux + float64(s.Width)/2,
		(y-c.CenterY)*c.Scale*uy + float64(s.Height)/2
}

// ScreenToWorld maps a screen coordinate back to a grid cell.
func (c Camera) ScreenToWorld(s Screen, sx, sy int) facility.Point {
	ux, uy := s.units()
	x := (float64(sx)+0.5-float64(s.Width)/2)/(c.Scale*ux) + c.CenterX
	y := (float64(sy)+0.5-float64(s.Height)/2)/(c.Scale*uy) + c.CenterY
	return facility.Point{X: int(math.Floor(x)), Y: int(math.Floor(y))}
}

// CenteredOn returns the camera moved so p is in the middle of the cell.
func (c Camera) CenteredOn(p facility.Point) Camera {
	c.CenterX = float64(p.X) + 0.5
	c.CenterY = float64(p.Y) + 0.5
	return c.Clamp()
}

// Fit returns a camera that shows every point, clamped to the zoom range.
func Fit(s Screen, points []facility.Point) Camera {
	if len(points) == 0 {
		return Camera{CenterX: facility.GridSize / 2, CenterY: facility.GridSize / 2, Scale: InitialScale}
	}

	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	ux, uy := s.units()
	w := float64(maxX-minX+1) * ux
	h := float64(maxY-minY+1) * uy
	scale := math.Min(float64(s.Width)/w, float64(s.Height)/h) * fitMargin

	return Camera{
		CenterX: float64(minX+maxX+1) / 2,
		CenterY: float64(minY+maxY+1) / 2,
		Scale:   scale,
	}.Clamp()
}

// Animation moves the camera linearly from one state to another.
type Animation struct {
	From     Camera
	To       Camera
	Start    time.Time
	Duration time.Duration
}

// At returns the camera at now.
func (a Animation) At(now time.Time) Camera {
	if a.Duration <= 0 || !now.Before(a.Start.Add(a.Duration)) {
		return a.To
	}
	t := float64(now.Sub(a.Start)) / float64(a.Duration)
	if t < 0 {
		return a.From
	}
	return Camera{
		CenterX: a.From.CenterX + (a.To.CenterX-a.From.CenterX)*t,
		CenterY: a.From.CenterY + (a.To.CenterY-a.From.CenterY)*t,
		Scale:   a.From.Scale + (a.To.Scale-a.From.Scale)*t,
	}
}

// Done reports whether the animation has finished at now.
func (a Animation) Done(now time.Time) bool {
	return !now.Before(a.Start.Add(a.Duration))
}
