package service

import (
	"time"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
	"github.com/wricardo/mcp-training/parkingnav/parking/motion"
	"github.com/wricardo/mcp-training/parkingnav/parking/navigation"
)

// Session is one traveler navigating one facility.
type Session struct {
	ID             string
	FacilityName   string
	Facility       *facility.Facility
	Simulator      *motion.Simulator
	Car            *facility.SpotLocation
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// SessionInfo provides information about a navigation session
type SessionInfo struct {
	ID             string                 `json:"id"`
	Facility       string                 `json:"facility"`
	CreatedAt      time.Time              `json:"created_at"`
	LastAccessedAt time.Time              `json:"last_accessed_at"`
	Car            *facility.SpotLocation `json:"car,omitempty"`
	Snapshot       navigation.Snapshot    `json:"snapshot"`
}

// CommandResult is the outcome of a session command. Routing failures are
// reported with Success false and a machine-friendly Code.
type CommandResult struct {
	Success  bool                   `json:"success"`
	Message  string                 `json:"message,omitempty"`
	Code     string                 `json:"code,omitempty"`
	Snapshot navigation.Snapshot    `json:"snapshot"`
	Events   []navigation.Event     `json:"events,omitempty"`
	Spot     *facility.SpotLocation `json:"spot,omitempty"`
}

// FacilityInfo describes a facility snapshot available to sessions
type FacilityInfo struct {
	Filename       string                `json:"filename"`
	FacilityID     string                `json:"facility_id"` // The identifier to use for session creation
	Format         facility.Format       `json:"format"`
	Name           string                `json:"name"` // Display name
	Address        string                `json:"address,omitempty"`
	OpenHours      string                `json:"open_hours,omitempty"`
	Floors         []facility.FloorStats `json:"floors"`
	TotalSpots     int                   `json:"total_spots"`
	AvailableSpots int                   `json:"available_spots"`
}

// RefreshResult reports what a facility reload did
type RefreshResult struct {
	Facility      string `json:"facility"`
	Changed       bool   `json:"changed"`
	SessionsReset int    `json:"sessions_reset"`
}
