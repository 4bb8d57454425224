package facility

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

var (
	ErrFloorNotFound   = errors.New("floor not found")
	ErrSpotNotFound    = errors.New("spot not found")
	ErrNoStairs        = errors.New("no stairs on floor")
	ErrNoOccupiedSpot  = errors.New("no occupied spot on floor")
	ErrNoFreeSpot      = errors.New("no free spot reachable")
	ErrInvalidLevel    = errors.New("invalid floor level")
	ErrInvalidFacility = errors.New("invalid facility")
)

// Manhattan returns the 4-neighbour grid distance between two points.
func Manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Floor returns the floor registered under level.
func (f *Facility) Floor(level Level) (*Floor, error) {
	floor, ok := f.Floors[level]
	if !ok || floor == nil {
		return nil, fmt.Errorf("%w: %s", ErrFloorNotFound, level)
	}
	return floor, nil
}

// Levels returns all floor levels in ascending order.
func (f *Facility) Levels() []Level {
	levels := make([]Level, 0, len(f.Floors))
	for level := range f.Floors {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	return levels
}

// DefaultEntry returns where a new traveler appears: the configured entry,
// or the origin of the lowest floor.
func (f *Facility) DefaultEntry() Location {
	if f.Entry != nil {
		return *f.Entry
	}
	levels := f.Levels()
	if len(levels) == 0 {
		return Location{}
	}
	return Location{Floor: levels[0]}
}

// FindSpot resolves a spot id on a floor.
func (f *Facility) FindSpot(level Level, spotID string) (Spot, *Section, error) {
	floor, err := f.Floor(level)
	if err != nil {
		return Spot{}, nil, err
	}
	spot, section, ok := floor.FindSpot(spotID)
	if !ok {
		return Spot{}, nil, fmt.Errorf("%w: %s on floor %s", ErrSpotNotFound, spotID, level)
	}
	return spot, section, nil
}

// FindSection returns the section containing p on the given floor, or nil.
func (f *Facility) FindSection(level Level, p Point) *Section {
	floor, err := f.Floor(level)
	if err != nil {
		return nil
	}
	return floor.FindSection(p)
}

// FindNearestStairs returns the first stairs point registered on a floor.
func (f *Facility) FindNearestStairs(level Level) (Point, error) {
	floor, err := f.Floor(level)
	if err != nil {
		return Point{}, err
	}
	p, ok := floor.FirstStairs()
	if !ok {
		return Point{}, fmt.Errorf("%w: %s", ErrNoStairs, level)
	}
	return p, nil
}

// PickRandomOccupiedSpot returns a uniformly chosen occupied spot on a floor.
func (f *Facility) PickRandomOccupiedSpot(level Level, rng *rand.Rand) (SpotLocation, error) {
	floor, err := f.Floor(level)
	if err != nil {
		return SpotLocation{}, err
	}

	var occupied []SpotLocation
	for _, section := range floor.Sections {
		for _, spot := range section.Spots {
			if spot.Occupied {
				occupied = append(occupied, SpotLocation{Floor: level, SectionID: section.ID, Spot: spot})
			}
		}
	}
	if len(occupied) == 0 {
		return SpotLocation{}, fmt.Errorf("%w: %s", ErrNoOccupiedSpot, level)
	}

	var idx int
	if rng != nil {
		idx = rng.Intn(len(occupied))
	} else {
		idx = rand.Intn(len(occupied))
	}
	return occupied[idx], nil
}

// FindNearestFreeSpot scans every floor for the cheapest free spot. Spots on
// the traveler's floor cost their Manhattan distance; spots elsewhere cost
// the walk to the current floor's stairs plus the walk from the other
// floor's stairs. Floors without stairs are skipped for cross-floor
// candidates. Ties keep the first candidate in floor, then section order.
func (f *Facility) FindNearestFreeSpot(from Location) (SpotLocation, error) {
	best := SpotLocation{Cost: -1}

	fromStairs, fromErr := f.FindNearestStairs(from.Floor)

	for _, level := range f.Levels() {
		floor := f.Floors[level]

		var toStairs Point
		if level != from.Floor {
			if fromErr != nil {
				continue
			}
			p, ok := floor.FirstStairs()
			if !ok {
				continue
			}
			toStairs = p
		}

		for _, section := range floor.Sections {
			for _, spot := range section.Spots {
				if spot.Occupied {
					continue
				}

				var cost int
				if level == from.Floor {
					cost = Manhattan(from.Position, spot.Point())
				} else {
					cost = Manhattan(from.Position, fromStairs) + Manhattan(toStairs, spot.Point())
				}

				if best.Cost < 0 || cost < best.Cost {
					best = SpotLocation{Floor: level, SectionID: section.ID, Spot: spot, Cost: cost}
				}
			}
		}
	}

	if best.Cost < 0 {
		return SpotLocation{}, ErrNoFreeSpot
	}
	return best, nil
}

// Stats returns occupancy statistics for every floor in level order.
func (f *Facility) Stats() []FloorStats {
	stats := make([]FloorStats, 0, len(f.Floors))
	for _, level := range f.Levels() {
		stats = append(stats, f.Floors[level].Stats())
	}
	return stats
}

// FindSpot resolves a spot id on this floor.
func (fl *Floor) FindSpot(spotID string) (Spot, *Section, bool) {
	for _, section := range fl.Sections {
		for _, spot := range section.Spots {
			if spot.ID == spotID {
				return spot, section, true
			}
		}
	}
	return Spot{}, nil, false
}

// FindSection returns the section whose bounds contain p.
func (fl *Floor) FindSection(p Point) *Section {
	for _, section := range fl.Sections {
		if section.Bounds.Contains(p) {
			return section
		}
	}
	return nil
}

// Section returns the section registered under id.
func (fl *Floor) Section(id string) (*Section, bool) {
	for _, section := range fl.Sections {
		if section.ID == id {
			return section, true
		}
	}
	return nil, false
}

// FirstStairs returns the first stairs point in section registration order.
func (fl *Floor) FirstStairs() (Point, bool) {
	for _, section := range fl.Sections {
		if len(section.Stairs) > 0 {
			return section.Stairs[0], true
		}
	}
	return Point{}, false
}

// Stats computes spot occupancy for the floor.
func (fl *Floor) Stats() FloorStats {
	stats := FloorStats{Level: fl.Level, Title: fl.Title}
	for _, section := range fl.Sections {
		for _, spot := range section.Spots {
			stats.Capacity++
			if spot.Occupied {
				stats.Occupied++
			}
		}
	}
	if stats.Capacity > 0 {
		stats.Percent = stats.Occupied * 100 / stats.Capacity
	}
	stats.Band = occupancyBand(stats.Percent)
	return stats
}

// occupancyBand mirrors the floor button colouring: green up to half full,
// orange up to 80%, red above.
func occupancyBand(percent int) string {
	switch {
	case percent <= 50:
		return "green"
	case percent <= 80:
		return "orange"
	default:
		return "red"
	}
}
