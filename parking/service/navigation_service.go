package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
	"github.com/wricardo/mcp-training/parkingnav/parking/motion"
	"github.com/wricardo/mcp-training/parkingnav/parking/navigation"
	"github.com/wricardo/mcp-training/parkingnav/parking/route"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrFacilityNotFound = errors.New("facility not found")
)

// NavigationService defines all navigation operations exposed to transports
type NavigationService interface {
	// Session Management
	CreateSession(ctx context.Context, facilityName string, start *facility.Location) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	CleanupExpiredSessions(ctx context.Context, maxAge time.Duration) int
	Shutdown()

	// Navigation
	SelectFloor(ctx context.Context, sessionID string, floor facility.Level) (*CommandResult, error)
	SelectSpot(ctx context.Context, sessionID string, floor facility.Level, spotID string) (*CommandResult, error)
	ConfirmRoute(ctx context.Context, sessionID string) (*CommandResult, error)
	CancelRoute(ctx context.Context, sessionID string) (*CommandResult, error)
	DismissArrival(ctx context.Context, sessionID string) (*CommandResult, error)
	FindMyCar(ctx context.Context, sessionID string) (*CommandResult, error)
	FindFreeSpot(ctx context.Context, sessionID string) (*CommandResult, error)
	GetSnapshot(ctx context.Context, sessionID string) (*navigation.Snapshot, error)

	// Facilities
	ListFacilities(ctx context.Context) ([]*FacilityInfo, error)
	GetFacility(ctx context.Context, name string) (*facility.Facility, error)
	RefreshFacility(ctx context.Context, name string) (*RefreshResult, error)
	CacheStats() route.CacheStats
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, facilityName string, f *facility.Facility, sim *motion.Simulator) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	ByFacility(name string) []*Session
	CleanupExpiredSessions(maxAge time.Duration) []*Session
}

// FacilityStore loads facility snapshots
type FacilityStore interface {
	Load(name string) (*facility.Facility, error)
	List() ([]*FacilityInfo, error)
	Default() *facility.Facility
	DefaultName() string
	Refresh(name string) (*facility.Facility, bool, error)
}

// Publisher receives every frame a session's simulator produces. Publish
// must not block.
type Publisher interface {
	Publish(sessionID string, frame motion.Frame)
}

// ErrorCode maps navigation errors to stable codes for clients.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, navigation.ErrNoRoute):
		return "no_route"
	case errors.Is(err, navigation.ErrNoStairs):
		return "no_stairs"
	case errors.Is(err, navigation.ErrInvalidSpot):
		return "invalid_spot"
	case errors.Is(err, navigation.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, navigation.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, facility.ErrNoFreeSpot):
		return "no_free_spot"
	case errors.Is(err, facility.ErrNoOccupiedSpot):
		return "no_car"
	case errors.Is(err, facility.ErrFloorNotFound):
		return "floor_not_found"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrFacilityNotFound):
		return "facility_not_found"
	}
	return "internal"
}
