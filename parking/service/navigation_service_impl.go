package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/parkingnav/logging"
	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
	"github.com/wricardo/mcp-training/parkingnav/parking/motion"
	"github.com/wricardo/mcp-training/parkingnav/parking/navigation"
	"github.com/wricardo/mcp-training/parkingnav/parking/route"
)

// Options configures a navigation service. Zero values pick real timers, a
// default-sized route cache and no publisher.
type Options struct {
	Motion    motion.Config
	Scheduler motion.Scheduler
	Planner   *route.Planner
	Publisher Publisher
	Logger    *logging.Logger
	Rand      *rand.Rand
}

// navigationServiceImpl implements the NavigationService interface
type navigationServiceImpl struct {
	sessions   SessionManager
	facilities FacilityStore
	planner    *route.Planner
	scheduler  motion.Scheduler
	motion     motion.Config
	publisher  Publisher
	logger     *logging.Logger
	rng        *rand.Rand
	mu         sync.RWMutex
}

// NewNavigationService creates a new navigation service instance
func NewNavigationService(sessions SessionManager, facilities FacilityStore, opts Options) NavigationService {
	if opts.Scheduler == nil {
		opts.Scheduler = motion.RealScheduler{}
	}
	if opts.Planner == nil {
		opts.Planner = route.NewPlanner(route.MustCache(route.DefaultCacheSize))
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &navigationServiceImpl{
		sessions:   sessions,
		facilities: facilities,
		planner:    opts.Planner,
		scheduler:  opts.Scheduler,
		motion:     opts.Motion,
		publisher:  opts.Publisher,
		logger:     opts.Logger,
		rng:        opts.Rand,
	}
}

func (s *navigationServiceImpl) info(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		Facility:       sess.FacilityName,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Car:            sess.Car,
		Snapshot:       sess.Simulator.Snapshot(),
	}
}

// loadFacility resolves a facility by name, listing the alternatives when it
// does not exist.
func (s *navigationServiceImpl) loadFacility(name string) (string, *facility.Facility, error) {
	if name == "" {
		return s.facilities.DefaultName(), s.facilities.Default(), nil
	}

	f, err := s.facilities.Load(name)
	if err == nil {
		return name, f, nil
	}
	if !errors.Is(err, ErrFacilityNotFound) {
		return "", nil, fmt.Errorf("failed to load facility %s: %w", name, err)
	}

	available, listErr := s.facilities.List()
	if listErr == nil && len(available) > 0 {
		var ids []string
		for _, info := range available {
			ids = append(ids, info.FacilityID)
		}
		return "", nil, fmt.Errorf("facility '%s' not found, available facilities: %v: %w", name, ids, ErrFacilityNotFound)
	}
	return "", nil, fmt.Errorf("facility '%s' not found: %w", name, ErrFacilityNotFound)
}

// CreateSession creates a new navigation session. A nil start places the
// traveler at the facility's entry.
func (s *navigationServiceImpl) CreateSession(ctx context.Context, facilityName string, start *facility.Location) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, f, err := s.loadFacility(facilityName)
	if err != nil {
		return nil, err
	}

	nav := navigation.NewNavigator(f, s.planner)
	sim := motion.NewSimulator(nav, navigation.NewSession(f.DefaultEntry()), s.scheduler, s.motion, s.logger)

	if start != nil {
		if _, _, err := sim.Dispatch(ctx, navigation.PlaceTraveler{Location: *start}); err != nil {
			sim.Stop()
			return nil, fmt.Errorf("invalid start location: %w", err)
		}
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", name, f, sim)
	if err != nil {
		sim.Stop()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.publisher != nil {
		id, publisher := sess.ID, s.publisher
		sim.OnFrame(func(frame motion.Frame) {
			publisher.Publish(id, frame)
		})
	}

	s.logger.Info("session created", "session", sess.ID, "facility", name,
		"floor", sim.Session().Traveler.Floor.String())
	return s.info(sess), nil
}

// GetSession retrieves session information
func (s *navigationServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *navigationServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession stops a session's simulator and removes it
func (s *navigationServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	sess.Simulator.Stop()

	s.logger.Info("session deleted", "session", sess.ID)
	return s.sessions.Delete(sess.ID)
}

// CleanupExpiredSessions drops sessions idle for longer than maxAge and
// returns how many were removed.
func (s *navigationServiceImpl) CleanupExpiredSessions(ctx context.Context, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := s.sessions.CleanupExpiredSessions(maxAge)
	for _, sess := range expired {
		sess.Simulator.Stop()
	}
	if len(expired) > 0 {
		s.logger.Info("expired sessions removed", "count", len(expired))
	}
	return len(expired)
}

// Shutdown stops every session's timers.
func (s *navigationServiceImpl) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions.List() {
		sess.Simulator.Stop()
	}
}

// dispatch runs one command on a session's simulator. Navigation failures
// come back in the result; only a missing session is an error.
func (s *navigationServiceImpl) dispatch(ctx context.Context, sessionID string, cmd navigation.Command) (*CommandResult, *Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	next, events, err := sess.Simulator.Dispatch(ctx, cmd)
	return commandResult(next, events, err), sess, nil
}

func commandResult(next navigation.Session, events []navigation.Event, err error) *CommandResult {
	result := &CommandResult{
		Success:  err == nil,
		Snapshot: next.Snapshot(),
		Events:   events,
	}
	if err != nil {
		result.Message = err.Error()
		result.Code = ErrorCode(err)
	}
	return result
}

// SelectFloor changes the floor being viewed
func (s *navigationServiceImpl) SelectFloor(ctx context.Context, sessionID string, floor facility.Level) (*CommandResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, _, err := s.dispatch(ctx, sessionID, navigation.SelectFloor{Floor: floor})
	return result, err
}

// SelectSpot plans a route to a spot and shows it as a preview
func (s *navigationServiceImpl) SelectSpot(ctx context.Context, sessionID string, floor facility.Level, spotID string) (*CommandResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selectSpot(ctx, sessionID, floor, spotID)
}

func (s *navigationServiceImpl) selectSpot(ctx context.Context, sessionID string, floor facility.Level, spotID string) (*CommandResult, error) {
	result, sess, err := s.dispatch(ctx, sessionID, navigation.SelectSpot{Floor: floor, SpotID: spotID})
	if err != nil {
		return nil, err
	}
	if result.Success {
		f := sess.Simulator.Navigator().Facility()
		if spot, section, err := f.FindSpot(floor, spotID); err == nil {
			result.Spot = &facility.SpotLocation{Floor: floor, SectionID: section.ID, Spot: spot}
		}
	}
	return result, nil
}

// ConfirmRoute starts walking the previewed route
func (s *navigationServiceImpl) ConfirmRoute(ctx context.Context, sessionID string) (*CommandResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, _, err := s.dispatch(ctx, sessionID, navigation.ConfirmRoute{})
	return result, err
}

// CancelRoute abandons the current route
func (s *navigationServiceImpl) CancelRoute(ctx context.Context, sessionID string) (*CommandResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, _, err := s.dispatch(ctx, sessionID, navigation.CancelRoute{})
	return result, err
}

// DismissArrival returns an arrived session to idle
func (s *navigationServiceImpl) DismissArrival(ctx context.Context, sessionID string) (*CommandResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, _, err := s.dispatch(ctx, sessionID, navigation.DismissArrival{})
	return result, err
}

// FindMyCar previews a route to the session's parked car. The car is picked
// once per session from the occupied spots, preferring the traveler's
// current floor.
func (s *navigationServiceImpl) FindMyCar(ctx context.Context, sessionID string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Car == nil {
		current := sess.Simulator.Session()
		car, err := s.pickCar(sess.Simulator.Navigator().Facility(), current.Traveler.Floor)
		if err != nil {
			return &CommandResult{
				Message:  err.Error(),
				Code:     ErrorCode(err),
				Snapshot: current.Snapshot(),
			}, nil
		}
		sess.Car = &car
		s.logger.Info("car assigned", "session", sess.ID, "floor", car.Floor.String(), "spot", car.Spot.ID)
	}

	result, err := s.selectSpot(ctx, sessionID, sess.Car.Floor, sess.Car.Spot.ID)
	if err != nil {
		return nil, err
	}
	result.Spot = sess.Car
	return result, nil
}

func (s *navigationServiceImpl) pickCar(f *facility.Facility, floor facility.Level) (facility.SpotLocation, error) {
	if car, err := f.PickRandomOccupiedSpot(floor, s.rng); err == nil {
		return car, nil
	}
	for _, level := range f.Levels() {
		if level == floor {
			continue
		}
		if car, err := f.PickRandomOccupiedSpot(level, s.rng); err == nil {
			return car, nil
		}
	}
	return facility.SpotLocation{}, facility.ErrNoOccupiedSpot
}

// FindFreeSpot previews a route to the cheapest free spot
func (s *navigationServiceImpl) FindFreeSpot(ctx context.Context, sessionID string) (*CommandResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	current := sess.Simulator.Session()
	spot, err := sess.Simulator.Navigator().Facility().FindNearestFreeSpot(current.Traveler)
	if err != nil {
		return &CommandResult{
			Message:  err.Error(),
			Code:     ErrorCode(err),
			Snapshot: current.Snapshot(),
		}, nil
	}

	result, err := s.selectSpot(ctx, sessionID, spot.Floor, spot.Spot.ID)
	if err != nil {
		return nil, err
	}
	result.Spot = &spot
	return result, nil
}

// GetSnapshot returns the session's current navigation snapshot
func (s *navigationServiceImpl) GetSnapshot(ctx context.Context, sessionID string) (*navigation.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	snap := sess.Simulator.Snapshot()
	return &snap, nil
}

// ListFacilities returns all available facility snapshots
func (s *navigationServiceImpl) ListFacilities(ctx context.Context) ([]*FacilityInfo, error) {
	return s.facilities.List()
}

// GetFacility loads a facility snapshot by name
func (s *navigationServiceImpl) GetFacility(ctx context.Context, name string) (*facility.Facility, error) {
	_, f, err := s.loadFacility(name)
	return f, err
}

// RefreshFacility reloads a facility from disk. When the snapshot changed,
// every session using it has its route cancelled and continues on the new
// snapshot.
func (s *navigationServiceImpl) RefreshFacility(ctx context.Context, name string) (*RefreshResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		name = s.facilities.DefaultName()
	}

	f, changed, err := s.facilities.Refresh(name)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh facility %s: %w", name, err)
	}

	result := &RefreshResult{Facility: name, Changed: changed}
	if !changed {
		return result, nil
	}

	nav := navigation.NewNavigator(f, s.planner)
	for _, sess := range s.sessions.ByFacility(name) {
		sess.Facility = f
		sess.Car = nil
		if _, _, err := sess.Simulator.Replace(ctx, nav); err != nil {
			s.logger.Warn("facility replace failed", "session", sess.ID, "error", err)
			continue
		}
		result.SessionsReset++
	}

	s.logger.Info("facility refreshed", "facility", name, "sessions", result.SessionsReset)
	return result, nil
}

// CacheStats reports route cache effectiveness
func (s *navigationServiceImpl) CacheStats() route.CacheStats {
	if cache := s.planner.Cache(); cache != nil {
		return cache.Stats()
	}
	return route.CacheStats{}
}
