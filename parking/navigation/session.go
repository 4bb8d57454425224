package navigation

import (
	"github.com/brunoga/deep"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
	"github.com/wricardo/mcp-training/parkingnav/parking/route"
)

// Target is the spot a session is routing to.
type Target struct {
	Floor     facility.Level `json:"floor"`
	SectionID string         `json:"section_id"`
	SpotID    string         `json:"spot_id"`
	Point     facility.Point `json:"point"`
}

// CrossFloor describes a route that changes floors via stairs. StagingPoint
// is the stairs cell on the traveler's starting floor.
type CrossFloor struct {
	SourceFloor  facility.Level `json:"source_floor"`
	TargetFloor  facility.Level `json:"target_floor"`
	StagingPoint facility.Point `json:"staging_point"`
}

// Session is the navigation state of one traveler. It is a value: the
// Navigator returns a new Session for every transition and never mutates
// the one it was given.
type Session struct {
	Phase       Phase             `json:"phase"`
	Traveler    facility.Location `json:"traveler"`
	ViewFloor   facility.Level    `json:"view_floor"`
	ActivePath  route.Path        `json:"active_path"`
	PendingPath route.Path        `json:"pending_path,omitempty"`
	Cursor      int               `json:"cursor"`
	Target      *Target           `json:"target,omitempty"`
	CrossFloor  *CrossFloor       `json:"cross_floor,omitempty"`
}

// NewSession creates an idle session with the traveler at start.
func NewSession(start facility.Location) Session {
	return Session{
		Phase:     PhaseIdle,
		Traveler:  start,
		ViewFloor: start.Floor,
	}
}

// Clone returns a deep copy that shares no slices or pointers with s.
func (s Session) Clone() Session {
	return deep.MustCopy(s)
}

// RemainingDistance is the number of path points left on the active leg,
// counted as len(path) - cursor.
func (s Session) RemainingDistance() int {
	if len(s.ActivePath) == 0 {
		return 0
	}
	return len(s.ActivePath) - s.Cursor
}

// RemainingTime is modeled one time unit per remaining step.
func (s Session) RemainingTime() int {
	return s.RemainingDistance()
}

// Hint returns the direction of the next step on the active leg.
func (s Session) Hint() route.Direction {
	if !s.Phase.IsNavigating() {
		return route.DirectionNone
	}
	return route.Hint(s.ActivePath, s.Cursor)
}

// Progress is the fraction of the active leg already walked.
func (s Session) Progress() float64 {
	n := len(s.ActivePath) - 1
	if n <= 0 {
		if s.Phase == PhaseArrived {
			return 1
		}
		return 0
	}
	return float64(s.Cursor) / float64(n)
}

// AtLegEnd reports whether the cursor sits on the last point of the leg.
func (s Session) AtLegEnd() bool {
	return len(s.ActivePath) > 0 && s.Cursor >= len(s.ActivePath)-1
}

// Snapshot is a self-contained, render-ready view of a session.
type Snapshot struct {
	Phase             Phase               `json:"phase"`
	Status            string              `json:"status"`
	Traveler          facility.Location   `json:"traveler"`
	ViewFloor         facility.Level      `json:"view_floor"`
	ActivePath        route.Path          `json:"active_path"`
	PendingPath       route.Path          `json:"pending_path,omitempty"`
	Cursor            int                 `json:"cursor"`
	Target            *Target             `json:"target,omitempty"`
	CrossFloor        *CrossFloor         `json:"cross_floor,omitempty"`
	RemainingDistance int                 `json:"remaining_distance"`
	RemainingTime     int                 `json:"remaining_time"`
	Hint              route.Direction     `json:"hint,omitempty"`
	Progress          float64             `json:"progress"`
	Preview           *Preview            `json:"preview,omitempty"`
	Instructions      []route.Instruction `json:"instructions,omitempty"`
}

// Preview summarizes a pending route before confirmation.
type Preview struct {
	Distance   int  `json:"distance"`
	Time       int  `json:"time"`
	CrossFloor bool `json:"cross_floor"`
}

// Snapshot builds a deep-copied view of the session.
func (s Session) Snapshot() Snapshot {
	c := s.Clone()

	snap := Snapshot{
		Phase:             c.Phase,
		Status:            c.Phase.Label(),
		Traveler:          c.Traveler,
		ViewFloor:         c.ViewFloor,
		ActivePath:        c.ActivePath,
		PendingPath:       c.PendingPath,
		Cursor:            c.Cursor,
		Target:            c.Target,
		CrossFloor:        c.CrossFloor,
		RemainingDistance: c.RemainingDistance(),
		RemainingTime:     c.RemainingTime(),
		Hint:              c.Hint(),
		Progress:          c.Progress(),
	}

	if c.Phase == PhaseRoutePreview && len(c.PendingPath) > 0 {
		snap.Preview = &Preview{
			Distance:   len(c.PendingPath),
			Time:       len(c.PendingPath),
			CrossFloor: c.CrossFloor != nil,
		}
		snap.Instructions = route.Instructions(c.PendingPath)
	} else if c.Phase.IsNavigating() {
		snap.Instructions = route.Instructions(c.ActivePath[c.Cursor:])
	}

	return snap
}
