package motion

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/parkingnav/logging"
	"github.com/wricardo/mcp-training/parkingnav/parking/navigation"
)

const (
	DefaultTickInterval     = 500 * time.Millisecond
	DefaultFloorChangeDelay = 2 * time.Second
)

// Config controls simulator timing.
type Config struct {
	TickInterval     time.Duration
	FloorChangeDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.FloorChangeDelay <= 0 {
		c.FloorChangeDelay = DefaultFloorChangeDelay
	}
	return c
}

// Frame is what the simulator publishes after every change.
type Frame struct {
	Snapshot navigation.Snapshot `json:"snapshot"`
	Events   []navigation.Event  `json:"events,omitempty"`
	Error    string              `json:"error,omitempty"`
	Step     Step                `json:"step"`
}

// Listener receives frames. It is called with the simulator lock held and
// must not call back into the simulator.
type Listener func(Frame)

// Simulator drives one navigation session over time. It owns the session,
// feeds Advance on every tick while navigating and CompleteFloorChange once
// the floor change delay has passed. At most one timer is pending at a time.
type Simulator struct {
	mu        sync.Mutex
	nav       *navigation.Navigator
	session   navigation.Session
	scheduler Scheduler
	cfg       Config
	timer     Timer
	gen       uint64
	step      Step
	listener  Listener
	stopped   bool
	logger    *logging.Logger
}

// NewSimulator creates a simulator for session. A nil scheduler uses the
// real clock.
func NewSimulator(nav *navigation.Navigator, session navigation.Session, scheduler Scheduler, cfg Config, logger *logging.Logger) *Simulator {
	if scheduler == nil {
		scheduler = RealScheduler{}
	}
	pos := session.Traveler.Position
	return &Simulator{
		nav:       nav,
		session:   session.Clone(),
		scheduler: scheduler,
		cfg:       cfg.withDefaults(),
		step:      Step{From: pos, To: pos, Started: scheduler.Now()},
		logger:    logger,
	}
}

// OnFrame registers the frame listener, replacing any previous one.
func (s *Simulator) OnFrame(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// Session returns a copy of the current session.
func (s *Simulator) Session() navigation.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

// Snapshot returns the current render-ready view.
func (s *Simulator) Snapshot() navigation.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Snapshot()
}

// Navigator returns the navigator in use.
func (s *Simulator) Navigator() *navigation.Navigator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav
}

// Position returns the traveler's interpolated position at now.
func (s *Simulator) Position(now time.Time) Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step.At(now)
}

// Pending reports whether a tick or floor change is scheduled.
func (s *Simulator) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Dispatch applies a command and reschedules the timer for the resulting
// phase. A command rejected for the current phase leaves the pending tick
// where it was.
func (s *Simulator) Dispatch(ctx context.Context, cmd navigation.Command) (navigation.Session, []navigation.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, events, err := s.applyLocked(ctx, cmd)

	// Changing the viewed floor never touches the walk in progress.
	_, viewOnly := cmd.(navigation.SelectFloor)
	if !viewOnly && !errors.Is(err, navigation.ErrInvalidTransition) {
		// The lock is held, so a callback already waiting on it sees the
		// new generation and is dropped.
		s.cancelTimerLocked()
		s.scheduleLocked()
	}
	s.emitLocked(events, err)
	return next.Clone(), events, err
}

// Replace swaps the navigator for one built on a new facility snapshot and
// cancels whatever the session was doing.
func (s *Simulator) Replace(ctx context.Context, nav *navigation.Navigator) (navigation.Session, []navigation.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelTimerLocked()
	s.nav = nav
	next, events, err := s.applyLocked(ctx, navigation.FacilityReplaced{})
	s.scheduleLocked()
	s.emitLocked(events, err)
	return next.Clone(), events, err
}

// Stop cancels any pending timer. A stopped simulator still accepts
// commands but never schedules again.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.cancelTimerLocked()
}

func (s *Simulator) applyLocked(ctx context.Context, cmd navigation.Command) (navigation.Session, []navigation.Event, error) {
	prev := s.session.Traveler
	next, events, err := s.nav.Apply(ctx, s.session, cmd)
	s.session = next

	if to := next.Traveler; to != prev {
		s.step = Step{From: to.Position, To: to.Position, Started: s.scheduler.Now()}
		if _, ok := cmd.(navigation.Advance); ok && to.Floor == prev.Floor {
			s.step.From = prev.Position
			s.step.Duration = s.cfg.TickInterval
		}
	}

	if err != nil {
		s.logger.Debug("navigation command failed",
			slog.String("command", cmd.Name()),
			slog.String("phase", string(next.Phase)),
			slog.Any("error", err))
	}
	for _, ev := range events {
		s.logger.Debug("navigation event",
			slog.String("type", string(ev.Type)),
			slog.String("from", string(ev.From)),
			slog.String("to", string(ev.To)))
	}
	return next, events, err
}

func (s *Simulator) cancelTimerLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Simulator) scheduleLocked() {
	if s.stopped || s.timer != nil {
		return
	}

	gen := s.gen
	switch {
	case s.session.Phase.IsNavigating():
		s.timer = s.scheduler.AfterFunc(s.cfg.TickInterval, func() {
			s.fire(gen, navigation.Advance{})
		})
	case s.session.Phase == navigation.PhaseChangingFloor:
		s.timer = s.scheduler.AfterFunc(s.cfg.FloorChangeDelay, func() {
			s.fire(gen, navigation.CompleteFloorChange{})
		})
	}
}

// fire runs a timer callback. Callbacks from an older generation lost a race
// with Dispatch or Stop and are dropped.
func (s *Simulator) fire(gen uint64, cmd navigation.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.stopped {
		return
	}
	s.timer = nil

	_, events, err := s.applyLocked(context.Background(), cmd)
	s.scheduleLocked()
	s.emitLocked(events, err)
}

func (s *Simulator) emitLocked(events []navigation.Event, err error) {
	if s.listener == nil {
		return
	}
	frame := Frame{
		Snapshot: s.session.Snapshot(),
		Events:   events,
		Step:     s.step,
	}
	if err != nil {
		frame.Error = err.Error()
	}
	s.listener(frame)
}
