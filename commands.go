package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/goforj/godump"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/parkingnav/logging"
	"github.com/wricardo/mcp-training/parkingnav/parking/config"
	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
	"github.com/wricardo/mcp-training/parkingnav/parking/floormap"
	"github.com/wricardo/mcp-training/parkingnav/parking/motion"
	"github.com/wricardo/mcp-training/parkingnav/parking/navigation"
	"github.com/wricardo/mcp-training/parkingnav/parking/route"
	"github.com/wricardo/mcp-training/parkingnav/terminal"
	"github.com/wricardo/mcp-training/parkingnav/validate"
)

// startFlags pick where the traveler starts. Unset flags fall back to the
// facility entry.
func startFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "floor", Usage: "starting floor, e.g. 1 or B1"},
		&cli.IntFlag{Name: "x", Usage: "starting column"},
		&cli.IntFlag{Name: "y", Usage: "starting row"},
	}
}

func startLocation(cmd *cli.Command, f *facility.Facility) (facility.Location, error) {
	start := f.DefaultEntry()
	if cmd.IsSet("floor") {
		level, err := facility.ParseLevel(cmd.String("floor"))
		if err != nil {
			return start, err
		}
		start.Floor = level
	}
	if cmd.IsSet("x") {
		start.Position.X = cmd.Int("x")
	}
	if cmd.IsSet("y") {
		start.Position.Y = cmd.Int("y")
	}

	if _, err := f.Floor(start.Floor); err != nil {
		return start, err
	}
	if !start.Position.InGrid() {
		return start, fmt.Errorf("start (%d, %d) is outside the %dx%d grid",
			start.Position.X, start.Position.Y, facility.GridSize, facility.GridSize)
	}
	return start, nil
}

// openFacility loads the facility named by the first argument, or the
// default facility.
func openFacility(cmd *cli.Command, settings config.Settings, logger *logging.Logger) (*facility.Facility, error) {
	facilities, err := loadFacilities(settings, logger)
	if err != nil {
		return nil, err
	}
	if name := cmd.Args().First(); name != "" {
		return facilities.Load(name)
	}
	return facilities.Default(), nil
}

func walkCommand() *cli.Command {
	return &cli.Command{
		Name:      "walk",
		Usage:     "navigate a facility interactively in the terminal",
		ArgsUsage: "[facility]",
		Flags:     startFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := settingsFromCommand(cmd)
			if err != nil {
				return err
			}
			// The screen owns the terminal, so logs go to the file only.
			logger := logging.New(settings.LogLevel, settings.LogDir, false)

			f, err := openFacility(cmd, settings, logger)
			if err != nil {
				return err
			}
			start, err := startLocation(cmd, f)
			if err != nil {
				return err
			}
			planner, err := settings.Planner()
			if err != nil {
				return err
			}

			nav := navigation.NewNavigator(f, planner)
			sim := motion.NewSimulator(nav, navigation.NewSession(start), nil, settings.Motion(), logger)
			defer sim.Stop()

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("failed to open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("failed to initialize terminal: %w", err)
			}
			defer screen.Fini()

			app := terminal.New(screen, sim, terminal.Options{Logger: logger})
			return app.Run(ctx)
		},
	}
}

func routeCommand() *cli.Command {
	flags := append(startFlags(),
		&cli.StringFlag{Name: "to-floor", Usage: "floor of the destination spot (defaults to the starting floor)"},
		&cli.BoolFlag{Name: "map", Value: true, Usage: "draw the route on the floor map"},
	)

	return &cli.Command{
		Name:      "route",
		Usage:     "print the walking route to a spot",
		ArgsUsage: "<spot-id> [facility]",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			spotID := cmd.Args().Get(0)
			if spotID == "" {
				return errors.New("a spot id is required")
			}

			settings, err := settingsFromCommand(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewWriter(os.Stderr, settings.LogLevel)

			facilities, err := loadFacilities(settings, logger)
			if err != nil {
				return err
			}
			f := facilities.Default()
			if name := cmd.Args().Get(1); name != "" {
				if f, err = facilities.Load(name); err != nil {
					return err
				}
			}

			start, err := startLocation(cmd, f)
			if err != nil {
				return err
			}
			target := start.Floor
			if cmd.IsSet("to-floor") {
				if target, err = facility.ParseLevel(cmd.String("to-floor")); err != nil {
					return err
				}
			}

			planner, err := settings.Planner()
			if err != nil {
				return err
			}
			return printRoute(ctx, os.Stdout, f, planner, start, target, spotID, cmd.Bool("map"))
		},
	}
}

// printRoute previews the route to a spot. Cross-floor routes also show the
// leg from the target floor's stairs.
func printRoute(ctx context.Context, w io.Writer, f *facility.Facility, planner *route.Planner, start facility.Location, level facility.Level, spotID string, withMap bool) error {
	nav := navigation.NewNavigator(f, planner)
	s, _, err := nav.Apply(ctx, navigation.NewSession(start), navigation.SelectSpot{Floor: level, SpotID: spotID})
	if err != nil {
		return err
	}
	snap := s.Snapshot()
	target := snap.Target

	fmt.Fprintf(w, "Route from floor %s (%d, %d) to %s on floor %s\n",
		start.Floor, start.Position.X, start.Position.Y, target.SpotID, target.Floor)
	fmt.Fprintf(w, "Distance: %d m, time: %d s\n", snap.Preview.Distance, snap.Preview.Time)

	cf := snap.CrossFloor
	if cf == nil {
		printLeg(w, f, start.Floor, snap.PendingPath, &start.Position, &target.Point, withMap)
		return nil
	}

	printLeg(w, f, start.Floor, snap.PendingPath, &start.Position, nil, withMap)
	fmt.Fprintf(w, "\nTake the stairs at (%d, %d) to floor %s\n", cf.StagingPoint.X, cf.StagingPoint.Y, cf.TargetFloor)

	floor, err := f.Floor(cf.TargetFloor)
	if err != nil {
		return err
	}
	stairs, err := f.FindNearestStairs(cf.TargetFloor)
	if err != nil {
		return fmt.Errorf("%w: %w", navigation.ErrNoStairs, err)
	}
	leg, err := planner.PlanLeg(ctx, floor, stairs, target.Point)
	if err != nil {
		return fmt.Errorf("%w: %w", navigation.ErrNoRoute, err)
	}
	fmt.Fprintf(w, "Then %d m on floor %s\n", len(leg), cf.TargetFloor)
	printLeg(w, f, cf.TargetFloor, leg, &stairs, &target.Point, withMap)
	return nil
}

func printLeg(w io.Writer, f *facility.Facility, level facility.Level, path route.Path, from, to *facility.Point, withMap bool) {
	for i, in := range route.Instructions(path) {
		fmt.Fprintf(w, "  %d. %s %d\n", i+1, in.Direction, in.Distance)
	}
	if !withMap {
		return
	}
	floor, err := f.Floor(level)
	if err != nil {
		return
	}
	grid := floormap.Build(floor, floormap.Overlay{Traveler: from, Target: to, Path: path})
	fmt.Fprintln(w, grid.String())
	fmt.Fprintln(w, floormap.Legend())
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "dump a facility, floor or spot",
		ArgsUsage: "[facility]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "floor", Usage: "floor to dump, e.g. 1 or B1"},
			&cli.StringFlag{Name: "spot", Usage: "spot id to dump (requires --floor)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := settingsFromCommand(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewWriter(os.Stderr, settings.LogLevel)

			f, err := openFacility(cmd, settings, logger)
			if err != nil {
				return err
			}
			return inspectFacility(os.Stdout, f, cmd.String("floor"), cmd.String("spot"))
		},
	}
}

func inspectFacility(w io.Writer, f *facility.Facility, floorName, spotID string) error {
	if floorName == "" {
		if spotID != "" {
			return errors.New("--spot requires --floor")
		}
		godump.Fdump(w, f.Info, f.Entry, f.Stats())
		return nil
	}

	level, err := facility.ParseLevel(floorName)
	if err != nil {
		return err
	}
	floor, err := f.Floor(level)
	if err != nil {
		return err
	}

	if spotID == "" {
		godump.Fdump(w, floor.Stats(), floor.Sections)
		return nil
	}

	spot, section, ok := floor.FindSpot(spotID)
	if !ok {
		return fmt.Errorf("%w: %s on floor %s", facility.ErrSpotNotFound, spotID, level)
	}
	godump.Fdump(w, section.ID, spot)
	return nil
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "validate every facility snapshot in the facility directory",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := settingsFromCommand(cmd)
			if err != nil {
				return err
			}
			planner, err := settings.Planner()
			if err != nil {
				return err
			}

			results, err := validate.Dir(ctx, settings.FacilityDir, planner)
			if err != nil {
				return err
			}
			if !validate.Report(os.Stdout, results) {
				return errors.New("some facilities have errors")
			}
			return nil
		},
	}
}
