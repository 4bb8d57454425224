// Package navigation is the session state machine that walks a traveler to
// a parking spot, possibly across floors via stairs.
//
// A Session is a plain value. Navigator.Apply takes a session and a Command
// and returns the next session plus the events the transition produced:
//
//	Idle -> RoutePreview -> NavigatingSameFloor -> Arrived -> Idle
//	Idle -> RoutePreview -> NavigatingToStairs -> ChangingFloor
//	     -> NavigatingToSpot -> Arrived -> Idle
//
// CancelRoute returns any phase to Idle and never fails.
package navigation
