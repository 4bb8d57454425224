// Package facility models a multi-floor parking facility as an immutable
// snapshot of floors, sections, spots and stairs on a fixed-size grid.
//
// The facility package provides:
//   - The spatial data model (Point, Spot, Section, Floor, Facility)
//   - Floor levels with basement support (Level, ParseLevel)
//   - Read-only queries used by navigation (FindSpot, FindSection,
//     FindNearestStairs, PickRandomOccupiedSpot, FindNearestFreeSpot)
//   - Snapshot validation and JSON / msgpack / zstd codecs
//
// Grid:
//
// Every floor is an independent GridSize x GridSize grid. Sections are
// axis-aligned rectangles that never overlap; parking sections own spots,
// marker sections (entrance, exit, stairwell) carry none.
//
// Usage:
//
//	f, err := facility.LoadFile("configs/forum-istanbul.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	spot, section, err := f.FindSpot(1, "A2")
//	stairs, err := f.FindNearestStairs(facility.Level(-1))
//
// Stairs:
//
// FindNearestStairs returns the first stairs point registered on a floor in
// section order. It does not search for the geometrically closest stairwell.
package facility
