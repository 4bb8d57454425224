package navigation

import (
	"context"
	"errors"
	"testing"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
	"github.com/wricardo/mcp-training/parkingnav/parking/route"
)

func zone(id string, b facility.Bounds, spots ...facility.Spot) *facility.Section {
	return &facility.Section{ID: id, Title: id, Kind: facility.ParkingSection, Bounds: b, Spots: spots}
}

func stairwell(id string, b facility.Bounds, p facility.Point) *facility.Section {
	return &facility.Section{ID: id, Title: "Stairs", Kind: facility.MarkerSection, Bounds: b, Stairs: []facility.Point{p}}
}

// createTestFacility builds the A/B example floor plus a second floor
// reachable by stairs and a third floor with no stairs at all.
func createTestFacility() *facility.Facility {
	return &facility.Facility{
		Name: "test",
		Floors: map[facility.Level]*facility.Floor{
			1: {
				Level: 1,
				Sections: []*facility.Section{
					zone("zone-a", facility.Bounds{X: 1, Y: 1, Width: 3, Height: 10},
						facility.Spot{ID: "A1", X: 2, Y: 2},
						facility.Spot{ID: "A2", X: 2, Y: 3, Occupied: true}),
					zone("zone-b", facility.Bounds{X: 5, Y: 1, Width: 3, Height: 10}),
					stairwell("stairs", facility.Bounds{X: 30, Y: 30, Width: 3, Height: 3}, facility.Point{X: 31, Y: 31}),
				},
			},
			2: {
				Level: 2,
				Sections: []*facility.Section{
					zone("zone-a", facility.Bounds{X: 1, Y: 1, Width: 3, Height: 10},
						facility.Spot{ID: "2A1", X: 2, Y: 2}),
					stairwell("stairs", facility.Bounds{X: 30, Y: 30, Width: 3, Height: 3}, facility.Point{X: 31, Y: 31}),
				},
			},
			3: {
				Level: 3,
				Sections: []*facility.Section{
					zone("zone-a", facility.Bounds{X: 1, Y: 1, Width: 3, Height: 10},
						facility.Spot{ID: "3A1", X: 2, Y: 2}),
				},
			},
		},
	}
}

func createTestNavigator() *Navigator {
	return NewNavigator(createTestFacility(), route.NewPlanner(nil))
}

func travelerAt(x, y int) Session {
	return NewSession(facility.Location{Floor: 1, Position: facility.Point{X: x, Y: y}})
}

func mustApply(t *testing.T, nav *Navigator, s Session, cmd Command) (Session, []Event) {
	t.Helper()
	next, events, err := nav.Apply(context.Background(), s, cmd)
	if err != nil {
		t.Fatalf("%s failed in phase %s: %v", cmd.Name(), s.Phase, err)
	}
	return next, events
}

// walkLeg advances until the session leaves its navigating phase and
// returns the number of Advance commands used.
func walkLeg(t *testing.T, nav *Navigator, s Session) (Session, int) {
	t.Helper()
	steps := 0
	for s.Phase.IsNavigating() {
		s, _ = mustApply(t, nav, s, Advance{})
		steps++
		if steps > facility.GridSize*facility.GridSize {
			t.Fatalf("Leg did not complete after %d steps", steps)
		}
	}
	return s, steps
}

func assertIdle(t *testing.T, s Session) {
	t.Helper()
	if s.Phase != PhaseIdle {
		t.Errorf("Expected phase idle, got %s", s.Phase)
	}
	if len(s.ActivePath) != 0 {
		t.Errorf("Expected empty active path, got %d points", len(s.ActivePath))
	}
	if len(s.PendingPath) != 0 {
		t.Errorf("Expected empty pending path, got %d points", len(s.PendingPath))
	}
	if s.Cursor != 0 {
		t.Errorf("Expected cursor 0, got %d", s.Cursor)
	}
	if s.Target != nil || s.CrossFloor != nil {
		t.Errorf("Expected target and cross-floor state cleared, got %+v %+v", s.Target, s.CrossFloor)
	}
}

func TestSameFloorScenario(t *testing.T) {
	nav := createTestNavigator()
	s := travelerAt(20, 20)
	var phases []Phase

	s, _ = mustApply(t, nav, s, SelectSpot{Floor: 1, SpotID: "A1"})
	phases = append(phases, s.Phase)

	if len(s.PendingPath) != 37 {
		t.Fatalf("Expected 37 point preview, got %d", len(s.PendingPath))
	}
	if s.Target == nil || s.Target.SectionID != "zone-a" || s.Target.Point != (facility.Point{X: 2, Y: 2}) {
		t.Errorf("Unexpected target %+v", s.Target)
	}
	if s.CrossFloor != nil {
		t.Errorf("Expected same-floor route, got cross-floor %+v", s.CrossFloor)
	}

	s, _ = mustApply(t, nav, s, ConfirmRoute{})
	phases = append(phases, s.Phase)

	if len(s.ActivePath) != 37 || len(s.PendingPath) != 0 {
		t.Errorf("Expected pending path promoted to active, got active=%d pending=%d", len(s.ActivePath), len(s.PendingPath))
	}
	if s.RemainingDistance() != 37 {
		t.Errorf("Expected remaining distance 37, got %d", s.RemainingDistance())
	}

	s, steps := walkLeg(t, nav, s)
	phases = append(phases, s.Phase)

	if steps != 36 {
		t.Errorf("Expected 36 steps, got %d", steps)
	}
	if s.Traveler.Position != (facility.Point{X: 2, Y: 2}) {
		t.Errorf("Expected traveler at spot, got %v", s.Traveler.Position)
	}
	if s.RemainingDistance() != 1 {
		t.Errorf("Expected remaining distance 1 at arrival, got %d", s.RemainingDistance())
	}

	want := []Phase{PhaseRoutePreview, PhaseNavigatingSameFloor, PhaseArrived}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("Phase %d: expected %s, got %s", i, want[i], phases[i])
		}
	}

	s, events := mustApply(t, nav, s, DismissArrival{})
	assertIdle(t, s)
	if len(events) != 1 || events[0].To != PhaseIdle {
		t.Errorf("Expected one phase change to idle, got %+v", events)
	}
}

func TestCrossFloorComposition(t *testing.T) {
	nav := createTestNavigator()
	s := travelerAt(20, 20)
	var phases []Phase

	s, _ = mustApply(t, nav, s, SelectSpot{Floor: 2, SpotID: "2A1"})
	phases = append(phases, s.Phase)

	if s.CrossFloor == nil {
		t.Fatal("Expected cross-floor route")
	}
	if s.CrossFloor.StagingPoint != (facility.Point{X: 31, Y: 31}) {
		t.Errorf("Expected staging at stairs (31,31), got %v", s.CrossFloor.StagingPoint)
	}
	leg1 := s.PendingPath
	if len(leg1) != 23 || leg1[len(leg1)-1] != s.CrossFloor.StagingPoint {
		t.Fatalf("Expected 23 point leg ending at stairs, got %d points", len(leg1))
	}

	s, _ = mustApply(t, nav, s, ConfirmRoute{})
	phases = append(phases, s.Phase)

	s, steps := walkLeg(t, nav, s)
	phases = append(phases, s.Phase)
	if steps != 22 {
		t.Errorf("Expected 22 steps on first leg, got %d", steps)
	}
	if s.Traveler != (facility.Location{Floor: 1, Position: facility.Point{X: 31, Y: 31}}) {
		t.Errorf("Expected traveler on floor 1 stairs, got %+v", s.Traveler)
	}

	s, events := mustApply(t, nav, s, CompleteFloorChange{})
	phases = append(phases, s.Phase)

	if s.Traveler != (facility.Location{Floor: 2, Position: facility.Point{X: 31, Y: 31}}) {
		t.Errorf("Expected traveler on floor 2 stairs, got %+v", s.Traveler)
	}
	if s.ViewFloor != 2 {
		t.Errorf("Expected view to follow to floor 2, got %s", s.ViewFloor)
	}
	if len(s.ActivePath) != 59 || s.ActivePath[0] != (facility.Point{X: 31, Y: 31}) {
		t.Errorf("Expected 59 point second leg from stairs, got %d", len(s.ActivePath))
	}
	if events[0].Type != EventFloorChanged {
		t.Errorf("Expected floor change event first, got %+v", events)
	}

	s, _ = walkLeg(t, nav, s)
	phases = append(phases, s.Phase)

	want := []Phase{PhaseRoutePreview, PhaseNavigatingToStairs, PhaseChangingFloor, PhaseNavigatingToSpot, PhaseArrived}
	if len(phases) != len(want) {
		t.Fatalf("Expected %d phases, got %v", len(want), phases)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("Phase %d: expected %s, got %s", i, want[i], phases[i])
		}
	}
	if s.Traveler != (facility.Location{Floor: 2, Position: facility.Point{X: 2, Y: 2}}) {
		t.Errorf("Expected traveler at 2A1, got %+v", s.Traveler)
	}
}

// sessionIn drives a fresh session into the requested phase.
func sessionIn(t *testing.T, nav *Navigator, phase Phase) Session {
	t.Helper()
	s := travelerAt(20, 20)
	spot := SelectSpot{Floor: 1, SpotID: "A1"}
	if phase == PhaseNavigatingToStairs || phase == PhaseChangingFloor || phase == PhaseNavigatingToSpot {
		spot = SelectSpot{Floor: 2, SpotID: "2A1"}
	}

	s, _ = mustApply(t, nav, s, spot)
	for s.Phase != phase {
		switch {
		case s.Phase == PhaseRoutePreview:
			s, _ = mustApply(t, nav, s, ConfirmRoute{})
		case s.Phase.IsNavigating():
			s, _ = walkLeg(t, nav, s)
		case s.Phase == PhaseChangingFloor:
			s, _ = mustApply(t, nav, s, CompleteFloorChange{})
		default:
			t.Fatalf("Cannot reach %s from %s", phase, s.Phase)
		}
	}
	return s
}

func TestCancelFromEveryPhase(t *testing.T) {
	nav := createTestNavigator()
	phases := []Phase{
		PhaseRoutePreview,
		PhaseNavigatingSameFloor,
		PhaseNavigatingToStairs,
		PhaseChangingFloor,
		PhaseNavigatingToSpot,
		PhaseArrived,
	}

	for _, phase := range phases {
		t.Run(string(phase), func(t *testing.T) {
			s := sessionIn(t, nav, phase)
			if s.Phase.IsNavigating() {
				s, _ = mustApply(t, nav, s, Advance{})
			}
			before := s.Traveler

			s, events := mustApply(t, nav, s, CancelRoute{})
			assertIdle(t, s)
			if s.Traveler != before {
				t.Errorf("Expected traveler to stay at %+v, got %+v", before, s.Traveler)
			}
			if len(events) != 1 || events[0].Type != EventCancelled || events[0].From != phase {
				t.Errorf("Expected one cancelled event from %s, got %+v", phase, events)
			}

			again, events := mustApply(t, nav, s, CancelRoute{})
			assertIdle(t, again)
			if len(events) != 0 {
				t.Errorf("Expected cancel from idle to be silent, got %+v", events)
			}
		})
	}
}

func TestSelectSpot_Failures(t *testing.T) {
	nav := createTestNavigator()

	t.Run("unknown spot", func(t *testing.T) {
		s, events, err := nav.Apply(context.Background(), travelerAt(20, 20), SelectSpot{Floor: 1, SpotID: "Z9"})
		if !errors.Is(err, ErrInvalidSpot) || !errors.Is(err, facility.ErrSpotNotFound) {
			t.Errorf("Expected ErrInvalidSpot wrapping ErrSpotNotFound, got %v", err)
		}
		assertIdle(t, s)
		if len(events) != 1 || events[0].Type != EventRouteFailed {
			t.Errorf("Expected a route_failed event, got %+v", events)
		}
	})

	t.Run("unknown floor", func(t *testing.T) {
		_, _, err := nav.Apply(context.Background(), travelerAt(20, 20), SelectSpot{Floor: 9, SpotID: "A1"})
		if !errors.Is(err, ErrInvalidSpot) || !errors.Is(err, facility.ErrFloorNotFound) {
			t.Errorf("Expected ErrInvalidSpot wrapping ErrFloorNotFound, got %v", err)
		}
	})

	t.Run("no stairs on source floor", func(t *testing.T) {
		start := NewSession(facility.Location{Floor: 3, Position: facility.Point{X: 20, Y: 20}})
		s, _, err := nav.Apply(context.Background(), start, SelectSpot{Floor: 1, SpotID: "A1"})
		if !errors.Is(err, ErrNoStairs) || !errors.Is(err, facility.ErrNoStairs) {
			t.Errorf("Expected ErrNoStairs, got %v", err)
		}
		assertIdle(t, s)
	})

	t.Run("traveler out of bounds", func(t *testing.T) {
		s, _, err := nav.Apply(context.Background(), travelerAt(-1, 50), SelectSpot{Floor: 1, SpotID: "A1"})
		if !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Expected ErrOutOfBounds, got %v", err)
		}
		assertIdle(t, s)
	})
}

func TestSelectSpot_NoRoute(t *testing.T) {
	f := &facility.Facility{
		Name: "walled",
		Floors: map[facility.Level]*facility.Floor{
			1: {
				Level: 1,
				Sections: []*facility.Section{
					zone("wall-east", facility.Bounds{X: 1, Y: 0, Width: 2, Height: 2}),
					zone("wall-south", facility.Bounds{X: 0, Y: 1, Width: 1, Height: 2}),
					zone("zone-z", facility.Bounds{X: 10, Y: 10, Width: 3, Height: 3},
						facility.Spot{ID: "Z1", X: 11, Y: 11}),
				},
			},
		},
	}
	nav := NewNavigator(f, nil)

	s, events, err := nav.Apply(context.Background(), travelerAt(0, 0), SelectSpot{Floor: 1, SpotID: "Z1"})
	if !errors.Is(err, ErrNoRoute) || !errors.Is(err, route.ErrNotFound) {
		t.Fatalf("Expected ErrNoRoute wrapping route.ErrNotFound, got %v", err)
	}
	assertIdle(t, s)
	if len(events) == 0 || events[len(events)-1].Type != EventRouteFailed {
		t.Errorf("Expected route_failed event, got %+v", events)
	}
}

func TestCompleteFloorChange_NoStairsOnTarget(t *testing.T) {
	nav := createTestNavigator()
	s := travelerAt(20, 20)

	s, _ = mustApply(t, nav, s, SelectSpot{Floor: 3, SpotID: "3A1"})
	s, _ = mustApply(t, nav, s, ConfirmRoute{})
	s, _ = walkLeg(t, nav, s)
	if s.Phase != PhaseChangingFloor {
		t.Fatalf("Expected changing floor, got %s", s.Phase)
	}

	s, events, err := nav.Apply(context.Background(), s, CompleteFloorChange{})
	if !errors.Is(err, ErrNoStairs) {
		t.Errorf("Expected ErrNoStairs, got %v", err)
	}
	assertIdle(t, s)
	if s.Traveler.Floor != 1 {
		t.Errorf("Expected traveler to stay on floor 1, got %s", s.Traveler.Floor)
	}
	if events[len(events)-1].Type != EventRouteFailed {
		t.Errorf("Expected route_failed event, got %+v", events)
	}
}

func TestCompleteFloorChange_NoRouteOnTarget(t *testing.T) {
	f := createTestFacility()
	// W1 is boxed in by the perimeters of four neighbouring sections.
	f.Floors[2].Sections = append(f.Floors[2].Sections,
		zone("zone-w", facility.Bounds{X: 10, Y: 10, Width: 3, Height: 3},
			facility.Spot{ID: "W1", X: 11, Y: 11}),
		zone("north", facility.Bounds{X: 9, Y: 7, Width: 5, Height: 3}),
		zone("south", facility.Bounds{X: 9, Y: 13, Width: 5, Height: 3}),
		zone("west", facility.Bounds{X: 7, Y: 10, Width: 3, Height: 3}),
		zone("east", facility.Bounds{X: 13, Y: 10, Width: 3, Height: 3}),
	)
	nav := NewNavigator(f, route.NewPlanner(nil))

	s, _ := mustApply(t, nav, travelerAt(20, 20), SelectSpot{Floor: 2, SpotID: "W1"})
	s, _ = mustApply(t, nav, s, ConfirmRoute{})
	s, _ = walkLeg(t, nav, s)
	if s.Phase != PhaseChangingFloor {
		t.Fatalf("Expected changing floor, got %s", s.Phase)
	}

	s, events, err := nav.Apply(context.Background(), s, CompleteFloorChange{})
	if !errors.Is(err, ErrNoRoute) || !errors.Is(err, route.ErrNotFound) {
		t.Fatalf("Expected ErrNoRoute wrapping route.ErrNotFound, got %v", err)
	}
	assertIdle(t, s)

	// The stairs were taken before the second leg was planned.
	expected := facility.Location{Floor: 2, Position: facility.Point{X: 31, Y: 31}}
	if s.Traveler != expected {
		t.Errorf("Expected traveler at %+v, got %+v", expected, s.Traveler)
	}
	if len(events) == 0 || events[0].Type != EventFloorChanged {
		t.Errorf("Expected floor_changed first, got %+v", events)
	}
	if events[len(events)-1].Type != EventRouteFailed {
		t.Errorf("Expected route_failed event, got %+v", events)
	}
}

func TestSelectSpot_ImplicitCancel(t *testing.T) {
	nav := createTestNavigator()
	s := sessionIn(t, nav, PhaseNavigatingSameFloor)
	s, _ = mustApply(t, nav, s, Advance{})
	s, _ = mustApply(t, nav, s, Advance{})
	here := s.Traveler.Position

	s, events := mustApply(t, nav, s, SelectSpot{Floor: 2, SpotID: "2A1"})

	if s.Phase != PhaseRoutePreview {
		t.Fatalf("Expected route preview, got %s", s.Phase)
	}
	if len(events) != 2 || events[0].Type != EventCancelled || events[1].Type != EventPhaseChanged {
		t.Errorf("Expected cancel then phase change, got %+v", events)
	}
	if s.PendingPath[0] != here {
		t.Errorf("Expected new route to start at %v, got %v", here, s.PendingPath[0])
	}
	if len(s.ActivePath) != 0 || s.Cursor != 0 {
		t.Errorf("Expected old leg cleared, got active=%d cursor=%d", len(s.ActivePath), s.Cursor)
	}
	if s.Target.SpotID != "2A1" {
		t.Errorf("Expected new target 2A1, got %s", s.Target.SpotID)
	}
}

func TestInvalidTransitions(t *testing.T) {
	nav := createTestNavigator()

	tests := []struct {
		name  string
		phase Phase
		cmd   Command
	}{
		{"confirm while idle", PhaseIdle, ConfirmRoute{}},
		{"advance while idle", PhaseIdle, Advance{}},
		{"advance in preview", PhaseRoutePreview, Advance{}},
		{"dismiss while navigating", PhaseNavigatingSameFloor, DismissArrival{}},
		{"floor change while navigating", PhaseNavigatingToStairs, CompleteFloorChange{}},
		{"confirm twice", PhaseNavigatingSameFloor, ConfirmRoute{}},
		{"place traveler while navigating", PhaseNavigatingSameFloor, PlaceTraveler{}},
		{"nil command", PhaseIdle, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := travelerAt(20, 20)
			if tt.phase != PhaseIdle {
				s = sessionIn(t, nav, tt.phase)
			}

			got, events, err := nav.Apply(context.Background(), s, tt.cmd)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Expected ErrInvalidTransition, got %v", err)
			}
			if got.Phase != s.Phase || got.Cursor != s.Cursor || len(got.ActivePath) != len(s.ActivePath) {
				t.Errorf("Expected session unchanged, got phase=%s cursor=%d", got.Phase, got.Cursor)
			}
			if len(events) != 0 {
				t.Errorf("Expected no events, got %+v", events)
			}
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	nav := createTestNavigator()
	preview := sessionIn(t, nav, PhaseRoutePreview)
	pending := len(preview.PendingPath)

	navigating, _ := mustApply(t, nav, preview, ConfirmRoute{})
	navigating.ActivePath[0] = facility.Point{X: 99, Y: 99}

	if preview.Phase != PhaseRoutePreview || len(preview.PendingPath) != pending {
		t.Errorf("Expected original preview untouched, got phase=%s pending=%d", preview.Phase, len(preview.PendingPath))
	}
	if preview.PendingPath[0] == (facility.Point{X: 99, Y: 99}) {
		t.Error("Expected paths not to be shared between sessions")
	}
}

func TestSelectFloor(t *testing.T) {
	nav := createTestNavigator()
	s := sessionIn(t, nav, PhaseNavigatingSameFloor)

	next, _ := mustApply(t, nav, s, SelectFloor{Floor: 2})
	if next.ViewFloor != 2 {
		t.Errorf("Expected view floor 2, got %s", next.ViewFloor)
	}
	if next.Traveler != s.Traveler || next.Phase != s.Phase {
		t.Error("Expected floor selection to leave traveler and phase alone")
	}

	if _, _, err := nav.Apply(context.Background(), s, SelectFloor{Floor: 7}); !errors.Is(err, facility.ErrFloorNotFound) {
		t.Errorf("Expected ErrFloorNotFound, got %v", err)
	}
}

func TestPlaceTraveler(t *testing.T) {
	nav := createTestNavigator()
	loc := facility.Location{Floor: 2, Position: facility.Point{X: 5, Y: 30}}

	s, _ := mustApply(t, nav, travelerAt(0, 0), PlaceTraveler{Location: loc})
	if s.Traveler != loc || s.ViewFloor != 2 {
		t.Errorf("Expected traveler placed at %+v, got %+v (view %s)", loc, s.Traveler, s.ViewFloor)
	}

	_, _, err := nav.Apply(context.Background(), s, PlaceTraveler{Location: facility.Location{Floor: 1, Position: facility.Point{X: 40, Y: 0}}})
	if !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
}

func TestFacilityReplaced(t *testing.T) {
	nav := createTestNavigator()
	s := sessionIn(t, nav, PhaseNavigatingToStairs)

	replacement := &facility.Facility{
		Name:  "smaller",
		Entry: &facility.Location{Floor: 2, Position: facility.Point{X: 0, Y: 13}},
		Floors: map[facility.Level]*facility.Floor{
			2: createTestFacility().Floors[2],
		},
	}
	nav = NewNavigator(replacement, nil)

	s, events := mustApply(t, nav, s, FacilityReplaced{})
	assertIdle(t, s)
	if s.Traveler != *replacement.Entry {
		t.Errorf("Expected traveler reset to entry, got %+v", s.Traveler)
	}
	if s.ViewFloor != 2 {
		t.Errorf("Expected view floor 2, got %s", s.ViewFloor)
	}
	if events[len(events)-1].Type != EventFacilityReplaced {
		t.Errorf("Expected facility_replaced event, got %+v", events)
	}
}

func TestSnapshot(t *testing.T) {
	nav := createTestNavigator()

	preview := sessionIn(t, nav, PhaseRoutePreview).Snapshot()
	if preview.Preview == nil || preview.Preview.Distance != 37 || preview.Preview.CrossFloor {
		t.Errorf("Expected 37 point same-floor preview, got %+v", preview.Preview)
	}
	if len(preview.Instructions) == 0 {
		t.Error("Expected preview instructions")
	}

	s := sessionIn(t, nav, PhaseNavigatingSameFloor)
	s, _ = mustApply(t, nav, s, Advance{})
	snap := s.Snapshot()

	if snap.Cursor != 1 || snap.RemainingDistance != 36 || snap.RemainingTime != 36 {
		t.Errorf("Expected cursor 1 and 36 remaining, got %d/%d/%d", snap.Cursor, snap.RemainingDistance, snap.RemainingTime)
	}
	if snap.Hint != route.Hint(s.ActivePath, 1) || snap.Hint == route.DirectionNone {
		t.Errorf("Expected hint %q, got %q", route.Hint(s.ActivePath, 1), snap.Hint)
	}
	if snap.Progress != 1.0/36 {
		t.Errorf("Expected progress 1/36, got %f", snap.Progress)
	}
	if snap.Status != PhaseNavigatingSameFloor.Label() {
		t.Errorf("Expected status %q, got %q", PhaseNavigatingSameFloor.Label(), snap.Status)
	}

	snap.ActivePath[0] = facility.Point{X: 99, Y: 99}
	if s.ActivePath[0] == (facility.Point{X: 99, Y: 99}) {
		t.Error("Expected snapshot to own its path")
	}
}
