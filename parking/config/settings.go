package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/parkingnav/logging"
	"github.com/wricardo/mcp-training/parkingnav/parking/motion"
	"github.com/wricardo/mcp-training/parkingnav/parking/route"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the runtime knobs shared by every command.
type Settings struct {
	FacilityDir      string
	DefaultFacility  string
	TickInterval     time.Duration
	FloorChangeDelay time.Duration
	CacheSize        int
	SessionTTL       time.Duration
	CleanupInterval  time.Duration
	LogLevel         string
	LogDir           string
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		FacilityDir:      "configs",
		DefaultFacility:  DefaultFacilityName,
		TickInterval:     motion.DefaultTickInterval,
		FloorChangeDelay: motion.DefaultFloorChangeDelay,
		CacheSize:        route.DefaultCacheSize,
		SessionTTL:       24 * time.Hour,
		CleanupInterval:  10 * time.Minute,
		LogLevel:         "info",
		LogDir:           logging.DefaultDir,
	}
}

// Validate reports the first setting that cannot be used.
func (s Settings) Validate() error {
	switch {
	case s.FacilityDir == "":
		return fmt.Errorf("%w: facility directory is required", ErrInvalidSettings)
	case s.TickInterval <= 0:
		return fmt.Errorf("%w: tick interval must be positive, got %s", ErrInvalidSettings, s.TickInterval)
	case s.FloorChangeDelay <= 0:
		return fmt.Errorf("%w: floor change delay must be positive, got %s", ErrInvalidSettings, s.FloorChangeDelay)
	case s.CacheSize <= 0:
		return fmt.Errorf("%w: cache size must be positive, got %d", ErrInvalidSettings, s.CacheSize)
	case s.SessionTTL <= 0:
		return fmt.Errorf("%w: session TTL must be positive, got %s", ErrInvalidSettings, s.SessionTTL)
	case s.CleanupInterval <= 0:
		return fmt.Errorf("%w: cleanup interval must be positive, got %s", ErrInvalidSettings, s.CleanupInterval)
	}
	if _, ok := logging.ParseLevel(s.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidSettings, s.LogLevel)
	}
	return nil
}

// Motion returns the simulator timing.
func (s Settings) Motion() motion.Config {
	return motion.Config{TickInterval: s.TickInterval, FloorChangeDelay: s.FloorChangeDelay}
}

// Planner builds a route planner with a cache of CacheSize legs.
func (s Settings) Planner() (*route.Planner, error) {
	cache, err := route.NewCache(s.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return route.NewPlanner(cache), nil
}
