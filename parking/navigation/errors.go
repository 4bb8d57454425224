package navigation

import "errors"

var (
	// ErrNoRoute means the planner could not reach the target.
	ErrNoRoute = errors.New("no route found")

	// ErrNoStairs means a cross-floor route needs stairs that a floor lacks.
	ErrNoStairs = errors.New("no stairs on floor")

	// ErrInvalidSpot means the selected spot is not in the facility snapshot.
	ErrInvalidSpot = errors.New("invalid spot")

	// ErrOutOfBounds means a route endpoint lies outside the grid.
	ErrOutOfBounds = errors.New("route request out of bounds")

	// ErrInvalidTransition means the command does not apply in the current phase.
	ErrInvalidTransition = errors.New("invalid transition")
)
