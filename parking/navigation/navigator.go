package navigation

import (
	"context"
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
	"github.com/wricardo/mcp-training/parkingnav/parking/route"
)

// EventType classifies what a transition did.
type EventType string

const (
	EventPhaseChanged     EventType = "phase_changed"
	EventRouteFailed      EventType = "route_failed"
	EventCancelled        EventType = "cancelled"
	EventArrived          EventType = "arrived"
	EventFloorChanged     EventType = "floor_changed"
	EventFacilityReplaced EventType = "facility_replaced"
)

// Event is emitted by a transition for observers such as the UI or a log.
type Event struct {
	Type    EventType `json:"type"`
	From    Phase     `json:"from,omitempty"`
	To      Phase     `json:"to,omitempty"`
	Message string    `json:"message,omitempty"`
}

// Navigator applies commands to sessions against one facility snapshot.
// It holds no session state itself.
type Navigator struct {
	facility *facility.Facility
	planner  *route.Planner
}

// NewNavigator creates a navigator. A nil planner plans without a cache.
func NewNavigator(f *facility.Facility, planner *route.Planner) *Navigator {
	if planner == nil {
		planner = route.NewPlanner(nil)
	}
	return &Navigator{facility: f, planner: planner}
}

// Facility returns the snapshot the navigator routes on.
func (n *Navigator) Facility() *facility.Facility {
	return n.facility
}

// Apply runs one transition. The input session is never modified. On an
// invalid transition the original session is returned with
// ErrInvalidTransition; on a routing failure the returned session is the
// state the machine fell back to, alongside the error.
func (n *Navigator) Apply(ctx context.Context, s Session, cmd Command) (Session, []Event, error) {
	s = s.Clone()

	switch c := cmd.(type) {
	case SelectSpot:
		return n.selectSpot(ctx, s, c)
	case SelectFloor:
		return n.selectFloor(s, c)
	case PlaceTraveler:
		return n.placeTraveler(s, c)
	case ConfirmRoute:
		return n.confirmRoute(s)
	case CancelRoute:
		next, events := cancel(s, "route cancelled")
		return next, events, nil
	case DismissArrival:
		return n.dismissArrival(s)
	case Advance:
		return n.advance(s)
	case CompleteFloorChange:
		return n.completeFloorChange(ctx, s)
	case FacilityReplaced:
		return n.facilityReplaced(s)
	case nil:
		return s, nil, fmt.Errorf("%w: nil command", ErrInvalidTransition)
	default:
		return s, nil, fmt.Errorf("%w: unknown command %s", ErrInvalidTransition, cmd.Name())
	}
}

func invalid(s Session, cmd Command) (Session, []Event, error) {
	return s, nil, fmt.Errorf("%w: %s in phase %s", ErrInvalidTransition, cmd.Name(), s.Phase)
}

func phaseChanged(from, to Phase) Event {
	return Event{Type: EventPhaseChanged, From: from, To: to, Message: to.Label()}
}

// cancel clears all route state and returns to Idle. The traveler stays put.
func cancel(s Session, message string) (Session, []Event) {
	if s.Phase == PhaseIdle {
		return s, nil
	}
	from := s.Phase
	s.Phase = PhaseIdle
	s.ActivePath = nil
	s.PendingPath = nil
	s.Cursor = 0
	s.Target = nil
	s.CrossFloor = nil
	return s, []Event{
		{Type: EventCancelled, From: from, To: PhaseIdle, Message: message},
	}
}

func failed(s Session, events []Event, err error) (Session, []Event, error) {
	from := s.Phase
	s, cancelEvents := cancel(s, "route aborted")
	events = append(events, cancelEvents...)
	events = append(events, Event{Type: EventRouteFailed, From: from, To: PhaseIdle, Message: err.Error()})
	return s, events, err
}

// planError maps planner errors onto navigation errors while keeping both
// sentinels reachable through errors.Is.
func planError(err error) error {
	switch {
	case errors.Is(err, route.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNoRoute, err)
	case errors.Is(err, route.ErrOutOfBounds):
		return fmt.Errorf("%w: %w", ErrOutOfBounds, err)
	default:
		return err
	}
}

func (n *Navigator) selectSpot(ctx context.Context, s Session, c SelectSpot) (Session, []Event, error) {
	var events []Event
	if s.Phase != PhaseIdle {
		var cancelled []Event
		s, cancelled = cancel(s, "replaced by new selection")
		events = append(events, cancelled...)
	}

	spot, section, err := n.facility.FindSpot(c.Floor, c.SpotID)
	if err != nil {
		return failed(s, events, fmt.Errorf("%w: %w", ErrInvalidSpot, err))
	}

	from := s.Traveler
	if !from.Position.InGrid() || !spot.Point().InGrid() {
		return failed(s, events, fmt.Errorf("%w: %v -> %v", ErrOutOfBounds, from.Position, spot.Point()))
	}

	target := &Target{
		Floor:     c.Floor,
		SectionID: section.ID,
		SpotID:    spot.ID,
		Point:     spot.Point(),
	}

	floor, err := n.facility.Floor(from.Floor)
	if err != nil {
		return failed(s, events, fmt.Errorf("%w: traveler floor: %w", ErrInvalidSpot, err))
	}

	var (
		path       route.Path
		crossFloor *CrossFloor
	)
	if from.Floor == c.Floor {
		path, err = n.planner.PlanLeg(ctx, floor, from.Position, target.Point)
	} else {
		stairs, stairsErr := n.facility.FindNearestStairs(from.Floor)
		if stairsErr != nil {
			return failed(s, events, fmt.Errorf("%w: %w", ErrNoStairs, stairsErr))
		}
		crossFloor = &CrossFloor{
			SourceFloor:  from.Floor,
			TargetFloor:  c.Floor,
			StagingPoint: stairs,
		}
		path, err = n.planner.PlanLeg(ctx, floor, from.Position, stairs)
	}
	if err != nil {
		return failed(s, events, planError(err))
	}

	prev := s.Phase
	s.Phase = PhaseRoutePreview
	s.PendingPath = path
	s.ActivePath = nil
	s.Cursor = 0
	s.Target = target
	s.CrossFloor = crossFloor
	events = append(events, phaseChanged(prev, s.Phase))
	return s, events, nil
}

func (n *Navigator) selectFloor(s Session, c SelectFloor) (Session, []Event, error) {
	if _, err := n.facility.Floor(c.Floor); err != nil {
		return s, nil, err
	}
	s.ViewFloor = c.Floor
	return s, nil, nil
}

func (n *Navigator) placeTraveler(s Session, c PlaceTraveler) (Session, []Event, error) {
	if s.Phase != PhaseIdle {
		return invalid(s, c)
	}
	if _, err := n.facility.Floor(c.Location.Floor); err != nil {
		return s, nil, err
	}
	if !c.Location.Position.InGrid() {
		return s, nil, fmt.Errorf("%w: %v", ErrOutOfBounds, c.Location.Position)
	}
	s.Traveler = c.Location
	s.ViewFloor = c.Location.Floor
	return s, nil, nil
}

func (n *Navigator) confirmRoute(s Session) (Session, []Event, error) {
	if s.Phase != PhaseRoutePreview || len(s.PendingPath) == 0 {
		return invalid(s, ConfirmRoute{})
	}

	prev := s.Phase
	s.ActivePath = s.PendingPath
	s.PendingPath = nil
	s.Cursor = 0
	s.Traveler.Position = s.ActivePath[0]
	s.ViewFloor = s.Traveler.Floor
	if s.CrossFloor != nil {
		s.Phase = PhaseNavigatingToStairs
	} else {
		s.Phase = PhaseNavigatingSameFloor
	}
	return s, []Event{phaseChanged(prev, s.Phase)}, nil
}

func (n *Navigator) dismissArrival(s Session) (Session, []Event, error) {
	if s.Phase != PhaseArrived {
		return invalid(s, DismissArrival{})
	}
	s.Phase = PhaseIdle
	s.ActivePath = nil
	s.PendingPath = nil
	s.Cursor = 0
	s.Target = nil
	s.CrossFloor = nil
	return s, []Event{phaseChanged(PhaseArrived, PhaseIdle)}, nil
}

// advance moves one step. Reaching the last point completes the leg.
func (n *Navigator) advance(s Session) (Session, []Event, error) {
	if !s.Phase.IsNavigating() || len(s.ActivePath) == 0 {
		return invalid(s, Advance{})
	}

	if s.Cursor < len(s.ActivePath)-1 {
		s.Cursor++
		s.Traveler.Position = s.ActivePath[s.Cursor]
	}
	if !s.AtLegEnd() {
		return s, nil, nil
	}

	prev := s.Phase
	switch prev {
	case PhaseNavigatingToStairs:
		s.Phase = PhaseChangingFloor
		return s, []Event{phaseChanged(prev, s.Phase)}, nil
	default:
		s.Phase = PhaseArrived
		return s, []Event{
			phaseChanged(prev, s.Phase),
			{Type: EventArrived, From: prev, To: PhaseArrived, Message: arrivalMessage(s.Target)},
		}, nil
	}
}

func arrivalMessage(t *Target) string {
	if t == nil {
		return "arrived"
	}
	return fmt.Sprintf("arrived at %s on floor %s", t.SpotID, t.Floor)
}

func (n *Navigator) completeFloorChange(ctx context.Context, s Session) (Session, []Event, error) {
	if s.Phase != PhaseChangingFloor || s.CrossFloor == nil || s.Target == nil {
		return invalid(s, CompleteFloorChange{})
	}

	targetFloor := s.CrossFloor.TargetFloor
	stairs, err := n.facility.FindNearestStairs(targetFloor)
	if err != nil {
		return failed(s, nil, fmt.Errorf("%w: %w", ErrNoStairs, err))
	}
	floor, err := n.facility.Floor(targetFloor)
	if err != nil {
		return failed(s, nil, fmt.Errorf("%w: %w", ErrInvalidSpot, err))
	}

	prev := s.Phase
	s.Traveler = facility.Location{Floor: targetFloor, Position: stairs}
	s.ViewFloor = targetFloor
	events := []Event{{
		Type:    EventFloorChanged,
		From:    prev,
		To:      prev,
		Message: fmt.Sprintf("now on floor %s", targetFloor),
	}}

	path, err := n.planner.PlanLeg(ctx, floor, stairs, s.Target.Point)
	if err != nil {
		return failed(s, events, planError(err))
	}

	s.Phase = PhaseNavigatingToSpot
	s.ActivePath = path
	s.Cursor = 0
	events = append(events, phaseChanged(prev, s.Phase))

	// Stairs directly on the spot leaves nothing to walk.
	if s.AtLegEnd() {
		s.Phase = PhaseArrived
		events = append(events,
			phaseChanged(PhaseNavigatingToSpot, PhaseArrived),
			Event{Type: EventArrived, From: PhaseNavigatingToSpot, To: PhaseArrived, Message: arrivalMessage(s.Target)},
		)
	}
	return s, events, nil
}

// facilityReplaced cancels any route planned on the old snapshot and keeps
// the traveler on a floor that still exists.
func (n *Navigator) facilityReplaced(s Session) (Session, []Event, error) {
	s, events := cancel(s, "facility data replaced")

	if _, err := n.facility.Floor(s.Traveler.Floor); err != nil || !s.Traveler.Position.InGrid() {
		s.Traveler = n.facility.DefaultEntry()
	}
	if _, err := n.facility.Floor(s.ViewFloor); err != nil {
		s.ViewFloor = s.Traveler.Floor
	}
	events = append(events, Event{Type: EventFacilityReplaced, To: s.Phase, Message: n.facility.Name})
	return s, events, nil
}
