package navigation

// Phase is the navigation session state.
type Phase string

const (
	PhaseIdle                Phase = "idle"
	PhaseRoutePreview        Phase = "route_preview"
	PhaseNavigatingSameFloor Phase = "navigating_same_floor"
	PhaseNavigatingToStairs  Phase = "navigating_to_stairs"
	PhaseChangingFloor       Phase = "changing_floor"
	PhaseNavigatingToSpot    Phase = "navigating_to_spot"
	PhaseArrived             Phase = "arrived"
)

// IsNavigating reports whether the traveler is walking a leg.
func (p Phase) IsNavigating() bool {
	switch p {
	case PhaseNavigatingSameFloor, PhaseNavigatingToStairs, PhaseNavigatingToSpot:
		return true
	}
	return false
}

// IsActive reports whether a route is being previewed or followed.
func (p Phase) IsActive() bool {
	return p != PhaseIdle
}

// Label is the short user-facing status for the phase.
func (p Phase) Label() string {
	switch p {
	case PhaseIdle:
		return "Ready"
	case PhaseRoutePreview:
		return "Route preview"
	case PhaseNavigatingSameFloor:
		return "Navigating"
	case PhaseNavigatingToStairs:
		return "Heading to stairs"
	case PhaseChangingFloor:
		return "Changing floor"
	case PhaseNavigatingToSpot:
		return "Heading to spot"
	case PhaseArrived:
		return "You have arrived"
	}
	return string(p)
}
