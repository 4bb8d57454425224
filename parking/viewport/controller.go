package viewport

import (
	"sync"
	"time"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
	"github.com/wricardo/mcp-training/parkingnav/parking/navigation"
)

// Controller follows navigation snapshots with camera moves:
//   - entering route preview zooms out to fit the pending path
//   - starting to walk zooms in on the traveler
//   - every step while walking recentres on the traveler
//
// Manual panning or zooming stops following until the next phase change.
type Controller struct {
	mu        sync.Mutex
	screen    Screen
	anim      Animation
	phase     navigation.Phase
	traveler  facility.Location
	following bool
}

// NewController creates a controller with the camera over the middle of the
// grid at InitialScale.
func NewController(screen Screen) *Controller {
	cam := Camera{CenterX: facility.GridSize / 2, CenterY: facility.GridSize / 2, Scale: InitialScale}
	return &Controller{
		screen: screen,
		anim:   Animation{From: cam, To: cam},
		phase:  navigation.PhaseIdle,
	}
}

// Resize updates the drawing surface.
func (c *Controller) Resize(screen Screen) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screen = screen
}

// Screen returns the drawing surface.
func (c *Controller) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// Camera returns the camera at now, mid-animation if one is running.
func (c *Controller) Camera(now time.Time) Camera {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.anim.At(now)
}

// Animating reports whether a camera move is still in progress at now.
func (c *Controller) Animating(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.anim.Done(now)
}

func (c *Controller) animateLocked(to Camera, now time.Time) {
	c.anim = Animation{
		From:     c.anim.At(now),
		To:       to.Clamp(),
		Start:    now,
		Duration: AnimationDuration,
	}
}

func (c *Controller) jumpLocked(to Camera, now time.Time) {
	to = to.Clamp()
	c.anim = Animation{From: to, To: to, Start: now}
}

// Pan moves the camera by whole grid cells without animation.
func (c *Controller) Pan(dx, dy float64, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cam := c.anim.At(now)
	cam.CenterX += dx
	cam.CenterY += dy
	c.jumpLocked(cam, now)
	c.following = false
}

// Zoom multiplies the scale by factor.
func (c *Controller) Zoom(factor float64, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cam := c.anim.At(now)
	cam.Scale *= factor
	c.jumpLocked(cam, now)
	c.following = false
}

// RecenterOn animates the camera to p, keeping the current zoom.
func (c *Controller) RecenterOn(p facility.Point, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.animateLocked(c.anim.To.CenteredOn(p), now)
}

// ZoomToFit animates the camera to show the whole path.
func (c *Controller) ZoomToFit(path []facility.Point, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.animateLocked(Fit(c.screen, path), now)
}

// Observe reacts to a snapshot. It never changes the snapshot.
func (c *Controller) Observe(snap navigation.Snapshot, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	phaseChanged := snap.Phase != c.phase
	moved := snap.Traveler != c.traveler
	c.phase = snap.Phase
	c.traveler = snap.Traveler

	// Nothing to follow on a floor the user is not looking at.
	if snap.ViewFloor != snap.Traveler.Floor {
		return
	}

	if phaseChanged {
		switch {
		case snap.Phase == navigation.PhaseRoutePreview:
			c.following = false
			c.animateLocked(Fit(c.screen, snap.PendingPath), now)
		case snap.Phase.IsNavigating():
			c.following = true
			cam := c.anim.To.CenteredOn(snap.Traveler.Position)
			cam.Scale = FollowScale
			c.animateLocked(cam, now)
		case snap.Phase == navigation.PhaseArrived && snap.Target != nil:
			c.following = false
			c.animateLocked(c.anim.To.CenteredOn(snap.Target.Point), now)
		case snap.Phase == navigation.PhaseIdle:
			c.following = false
		}
		return
	}

	if c.following && moved {
		c.animateLocked(c.anim.To.CenteredOn(snap.Traveler.Position), now)
	}
}
