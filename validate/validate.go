// Package validate checks facility snapshot files. Beyond the structural
// rules enforced when a snapshot is decoded, it verifies that:
//   - every floor has an origin: the facility entry or a stairs cell
//   - every spot is reachable on foot from that origin
//   - floors of a multi-floor facility all carry stairs
package validate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
	"github.com/wricardo/mcp-training/parkingnav/parking/route"
)

// Result captures the outcome of validating a single file.
// If Valid is true, Messages holds informational lines; otherwise it
// accumulates the problems that were found.
type Result struct {
	File     string
	Valid    bool
	Messages []string
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

func (r *Result) info(format string, args ...interface{}) {
	r.Messages = append(r.Messages, "✓ "+fmt.Sprintf(format, args...))
}

// File loads and checks one snapshot file.
func File(ctx context.Context, path string, planner *route.Planner) Result {
	f, err := facility.LoadFile(path)
	if err != nil {
		result := Result{File: filepath.Base(path)}
		result.fail("Failed to load: %v", err)
		return result
	}
	result := Facility(ctx, f, planner)
	result.File = filepath.Base(path)
	return result
}

// Facility checks an already decoded facility.
func Facility(ctx context.Context, f *facility.Facility, planner *route.Planner) Result {
	result := Result{File: f.Name, Valid: true}
	if err := f.Validate(); err != nil {
		result.fail("%v", err)
		return result
	}
	if planner == nil {
		planner = route.NewPlanner(nil)
	}

	levels := f.Levels()
	spots, unreachable := 0, 0
	for _, level := range levels {
		floor := f.Floors[level]

		if len(levels) > 1 {
			if _, ok := floor.FirstStairs(); !ok {
				result.fail("Floor %s has no stairs", level)
			}
		}

		origin, ok := floorOrigin(f, floor)
		if !ok {
			result.fail("Floor %s has neither an entry nor stairs to start from", level)
			continue
		}

		for _, section := range floor.Sections {
			for _, spot := range section.Spots {
				spots++
				if _, err := planner.PlanLeg(ctx, floor, origin, spot.Point()); err != nil {
					unreachable++
					result.fail("Unreachable: spot %s on floor %s at (%d,%d): %v", spot.ID, level, spot.X, spot.Y, err)
				}
			}
		}
	}

	if unreachable > 0 {
		result.fail("Connectivity failure: %d/%d spots unreachable", unreachable, spots)
	}

	if result.Valid {
		stats := f.Stats()
		occupied := 0
		for _, s := range stats {
			occupied += s.Occupied
		}
		result.info("Name: %s", f.Name)
		result.info("Floors: %d", len(levels))
		result.info("Spots: %d (%d occupied)", spots, occupied)
		result.info("Connectivity: all %d spots reachable", spots)
	}
	return result
}

// floorOrigin is where walks on a floor start: the entry on its own floor,
// otherwise the floor's first stairs.
func floorOrigin(f *facility.Facility, floor *facility.Floor) (facility.Point, bool) {
	if f.Entry != nil && f.Entry.Floor == floor.Level {
		return f.Entry.Position, true
	}
	return floor.FirstStairs()
}

// Dir validates every snapshot file in dir, in name order.
func Dir(ctx context.Context, dir string, planner *route.Planner) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read facility directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := facility.FormatFromPath(entry.Name()); ok {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	results := make([]Result, 0, len(files))
	for _, file := range files {
		results = append(results, File(ctx, file, planner))
	}
	return results, nil
}

// Report prints results and reports whether all of them passed.
func Report(w io.Writer, results []Result) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, msg := range result.Messages {
				fmt.Fprintln(w, "  "+msg)
			}
			continue
		}

		fmt.Fprintln(w, "❌ INVALID")
		allValid = false
		for _, msg := range result.Messages {
			if !strings.HasPrefix(msg, "✓") {
				fmt.Fprintln(w, "  ❌ "+msg)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All facilities are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some facilities have errors")
	}
	return allValid
}
