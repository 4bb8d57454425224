// Command parkingnav runs the parking facility navigator.
//
// Commands:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "walk" – navigates a facility interactively in the terminal
//  4. "route" – prints the route from a starting point to a spot
//  5. "inspect" – dumps a facility, floor or spot for debugging
//  6. "validate" – checks every facility snapshot in the facility directory
//
// Every flag can also be set from the environment or a .env file, and ngrok
// tunneling is available for easy external access during development.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/parkingnav/logging"
	"github.com/wricardo/mcp-training/parkingnav/parking/config"
	"github.com/wricardo/mcp-training/parkingnav/parking/service"
	"github.com/wricardo/mcp-training/parkingnav/parking/session"
	"github.com/wricardo/mcp-training/parkingnav/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Parking Navigator"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Global flags are visible to every command.
func newApp() *cli.Command {
	defaults := config.DefaultSettings()

	return &cli.Command{
		Name:    "parkingnav",
		Usage:   "indoor navigation for parking facilities",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   defaults.FacilityDir,
				Usage:   "directory containing facility snapshots",
				Sources: cli.EnvVars("CONFIG_DIR", "FACILITY_DIR"),
			},
			&cli.StringFlag{
				Name:    "facility",
				Value:   defaults.DefaultFacility,
				Usage:   "default facility name",
				Sources: cli.EnvVars("DEFAULT_FACILITY"),
			},
			&cli.DurationFlag{
				Name:    "tick",
				Value:   defaults.TickInterval,
				Usage:   "time the traveler takes per grid step",
				Sources: cli.EnvVars("TICK_INTERVAL"),
			},
			&cli.DurationFlag{
				Name:    "floor-change-delay",
				Value:   defaults.FloorChangeDelay,
				Usage:   "time spent on the stairs between floors",
				Sources: cli.EnvVars("FLOOR_CHANGE_DELAY"),
			},
			&cli.IntFlag{
				Name:    "cache-size",
				Value:   defaults.CacheSize,
				Usage:   "number of planned legs kept in the route cache",
				Sources: cli.EnvVars("ROUTE_CACHE_SIZE"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Value:   defaults.SessionTTL,
				Usage:   "idle time after which sessions are removed",
				Sources: cli.EnvVars("SESSION_TTL"),
			},
			&cli.DurationFlag{
				Name:    "cleanup-interval",
				Value:   defaults.CleanupInterval,
				Usage:   "how often expired sessions are removed",
				Sources: cli.EnvVars("CLEANUP_INTERVAL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   defaults.LogLevel,
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-dir",
				Value:   defaults.LogDir,
				Usage:   "directory for rotated log files",
				Sources: cli.EnvVars("LOG_DIR"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			walkCommand(),
			routeCommand(),
			inspectCommand(),
			validateCommand(),
		},
		DefaultCommand: "serve",
	}
}

// settingsFromCommand reads the global flags into validated settings.
func settingsFromCommand(cmd *cli.Command) (config.Settings, error) {
	s := config.Settings{
		FacilityDir:      cmd.String("config-dir"),
		DefaultFacility:  cmd.String("facility"),
		TickInterval:     cmd.Duration("tick"),
		FloorChangeDelay: cmd.Duration("floor-change-delay"),
		CacheSize:        cmd.Int("cache-size"),
		SessionTTL:       cmd.Duration("session-ttl"),
		CleanupInterval:  cmd.Duration("cleanup-interval"),
		LogLevel:         cmd.String("log-level"),
		LogDir:           cmd.String("log-dir"),
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// loadFacilities opens the facility directory and selects the default
// facility when one is named and present.
func loadFacilities(s config.Settings, logger *logging.Logger) (*config.Manager, error) {
	manager, err := config.NewManager(s.FacilityDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create facility manager: %w", err)
	}
	if s.DefaultFacility != "" && s.DefaultFacility != manager.DefaultName() {
		if err := manager.SetDefault(s.DefaultFacility); err != nil {
			logger.Warn("default facility unavailable", "facility", s.DefaultFacility, "error", err)
		}
	}
	return manager, nil
}

// initializeServices wires the facility store, session manager and the
// navigation service. A nil hub leaves snapshots unpublished.
func initializeServices(s config.Settings, hub *websocket.Hub, logger *logging.Logger) (service.NavigationService, error) {
	facilities, err := loadFacilities(s, logger)
	if err != nil {
		return nil, err
	}

	planner, err := s.Planner()
	if err != nil {
		return nil, err
	}

	opts := service.Options{
		Motion:  s.Motion(),
		Planner: planner,
		Logger:  logger,
	}
	if hub != nil {
		opts.Publisher = hub
	}

	return service.NewNavigationService(session.NewManager(), facilities, opts), nil
}
