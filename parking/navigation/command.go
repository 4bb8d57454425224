package navigation

import "github.com/wricardo/mcp-training/parkingnav/parking/facility"

// Command is an input to the session state machine. The set of commands is
// closed; Navigator.Apply switches over every variant.
type Command interface {
	command()
	Name() string
}

// SelectSpot asks for a route to a spot, cancelling any active route.
type SelectSpot struct {
	Floor  facility.Level
	SpotID string
}

// SelectFloor changes the floor being viewed. It never moves the traveler.
type SelectFloor struct {
	Floor facility.Level
}

// PlaceTraveler moves an idle traveler to a new location.
type PlaceTraveler struct {
	Location facility.Location
}

// ConfirmRoute starts walking the previewed route.
type ConfirmRoute struct{}

// CancelRoute abandons the current route. It is always safe.
type CancelRoute struct{}

// DismissArrival acknowledges arrival and returns to idle.
type DismissArrival struct{}

// Advance moves the traveler one step along the active leg.
type Advance struct{}

// CompleteFloorChange ends the stairs transition and plans the final leg.
type CompleteFloorChange struct{}

// FacilityReplaced tells the session a new facility snapshot is in effect.
type FacilityReplaced struct{}

func (SelectSpot) command()          {}
func (SelectFloor) command()         {}
func (PlaceTraveler) command()       {}
func (ConfirmRoute) command()        {}
func (CancelRoute) command()         {}
func (DismissArrival) command()      {}
func (Advance) command()             {}
func (CompleteFloorChange) command() {}
func (FacilityReplaced) command()    {}

func (SelectSpot) Name() string          { return "select_spot" }
func (SelectFloor) Name() string         { return "select_floor" }
func (PlaceTraveler) Name() string       { return "place_traveler" }
func (ConfirmRoute) Name() string        { return "confirm_route" }
func (CancelRoute) Name() string         { return "cancel_route" }
func (DismissArrival) Name() string      { return "dismiss_arrival" }
func (Advance) Name() string             { return "advance" }
func (CompleteFloorChange) Name() string { return "complete_floor_change" }
func (FacilityReplaced) Name() string    { return "facility_replaced" }
