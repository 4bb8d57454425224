// Command analyze prints a quick, human-readable summary of the facility
// snapshots in a directory: per-floor occupancy, stairs, sections and
// markers, and a check of the advertised spot counts against the floors.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
)

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "summarize facility snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "configs",
				Usage:   "directory containing facility snapshots",
				Sources: cli.EnvVars("FACILITY_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return analyzeDir(os.Stdout, cmd.String("dir"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func analyzeDir(w io.Writer, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read facility directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if _, ok := facility.FormatFromPath(entry.Name()); ok && !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", file)
		f, err := facility.LoadFile(filepath.Join(dir, file))
		if err != nil {
			fmt.Fprintf(w, "Error loading file: %v\n", err)
			continue
		}
		analyzeFacility(w, f)
	}
	return nil
}

func analyzeFacility(w io.Writer, f *facility.Facility) {
	fmt.Fprintf(w, "Name: %s\n", f.Name)
	if f.Info.Name != "" {
		fmt.Fprintf(w, "Title: %s\n", f.Info.Name)
	}
	if f.Info.Address != "" {
		fmt.Fprintf(w, "Address: %s\n", f.Info.Address)
	}
	entry := f.DefaultEntry()
	fmt.Fprintf(w, "Entry: floor %s at (%d, %d)\n", entry.Floor, entry.Position.X, entry.Position.Y)

	capacity, occupied := 0, 0
	for _, level := range f.Levels() {
		floor := f.Floors[level]
		stats := floor.Stats()
		capacity += stats.Capacity
		occupied += stats.Occupied

		fmt.Fprintf(w, "\nFloor %s %q: %d/%d occupied (%d%%, %s)\n",
			level, floor.Title, stats.Occupied, stats.Capacity, stats.Percent, stats.Band)

		var stairs []string
		for _, section := range floor.Sections {
			for _, p := range section.Stairs {
				stairs = append(stairs, fmt.Sprintf("(%d, %d)", p.X, p.Y))
			}
		}
		if len(stairs) == 0 {
			fmt.Fprintf(w, "  ⚠️  No stairs: floor %s cannot be reached from other floors\n", level)
		} else {
			fmt.Fprintf(w, "  Stairs: %s\n", strings.Join(stairs, ", "))
		}

		for _, section := range floor.Sections {
			fmt.Fprintf(w, "  %s\n", describeSection(section))
		}
	}

	free := capacity - occupied
	fmt.Fprintf(w, "\nTotal: %d spots, %d free\n", capacity, free)
	if f.Info.TotalSpots != 0 && f.Info.TotalSpots != capacity {
		fmt.Fprintf(w, "⚠️  Advertised total %d does not match %d mapped spots\n", f.Info.TotalSpots, capacity)
	}
	if f.Info.AvailableSpots != 0 && f.Info.AvailableSpots != free {
		fmt.Fprintf(w, "⚠️  Advertised availability %d does not match %d free spots\n", f.Info.AvailableSpots, free)
	}
}

func describeSection(section *facility.Section) string {
	b := section.Bounds
	name := section.ID
	if section.Title != "" {
		name = fmt.Sprintf("%s %q", section.ID, section.Title)
	}

	if section.IsMarker() {
		line := fmt.Sprintf("Marker %s at (%d, %d) %dx%d", name, b.X, b.Y, b.Width, b.Height)
		if section.Icon != "" {
			line += " icon " + section.Icon
		}
		return line
	}

	free := 0
	for _, spot := range section.Spots {
		if !spot.Occupied {
			free++
		}
	}
	return fmt.Sprintf("Section %s at (%d, %d) %dx%d: %d spots, %d free", name, b.X, b.Y, b.Width, b.Height, len(section.Spots), free)
}
