package facility

import "fmt"

// Validate checks the structural invariants of a facility snapshot:
// sections lie on the grid and do not overlap, every spot and stairs point
// lies inside its section, spot ids and positions are unique per floor and
// marker sections hold no spots.
func (f *Facility) Validate() error {
	if f.Name == "" {
		return invalid("name is required")
	}
	if len(f.Floors) == 0 {
		return invalid("at least one floor is required")
	}

	for _, level := range f.Levels() {
		floor := f.Floors[level]
		if floor == nil {
			return invalid("floor %s is empty", level)
		}
		if err := floor.validate(level); err != nil {
			return err
		}
	}

	if f.Entry != nil {
		if _, ok := f.Floors[f.Entry.Floor]; !ok {
			return invalid("entry floor %s does not exist", f.Entry.Floor)
		}
		if !f.Entry.Position.InGrid() {
			return invalid("entry (%d, %d) is outside the grid", f.Entry.Position.X, f.Entry.Position.Y)
		}
	}

	return nil
}

func (fl *Floor) validate(level Level) error {
	sectionIDs := make(map[string]bool, len(fl.Sections))
	spotIDs := make(map[string]bool)
	spotCells := make(map[Point]string)

	for i, section := range fl.Sections {
		if section.ID == "" {
			return invalid("floor %s: section %d has no id", level, i+1)
		}
		if sectionIDs[section.ID] {
			return invalid("floor %s: duplicate section %q", level, section.ID)
		}
		sectionIDs[section.ID] = true

		b := section.Bounds
		if b.Width <= 0 || b.Height <= 0 {
			return invalid("floor %s: section %q has empty bounds", level, section.ID)
		}
		if !(Point{b.X, b.Y}).InGrid() || !(Point{b.X + b.Width - 1, b.Y + b.Height - 1}).InGrid() {
			return invalid("floor %s: section %q bounds exceed the %dx%d grid", level, section.ID, GridSize, GridSize)
		}

		for _, other := range fl.Sections[:i] {
			if b.Overlaps(other.Bounds) {
				return invalid("floor %s: sections %q and %q overlap", level, other.ID, section.ID)
			}
		}

		switch section.Kind {
		case ParkingSection, "":
		case MarkerSection:
			if len(section.Spots) > 0 {
				return invalid("floor %s: marker section %q cannot hold spots", level, section.ID)
			}
		default:
			return invalid("floor %s: section %q has unknown kind %q", level, section.ID, section.Kind)
		}

		for _, spot := range section.Spots {
			if spot.ID == "" {
				return invalid("floor %s: section %q has a spot without id", level, section.ID)
			}
			if spotIDs[spot.ID] {
				return invalid("floor %s: duplicate spot id %q", level, spot.ID)
			}
			spotIDs[spot.ID] = true

			if !b.Contains(spot.Point()) {
				return invalid("floor %s: spot %q at (%d, %d) is outside section %q", level, spot.ID, spot.X, spot.Y, section.ID)
			}
			if prev, ok := spotCells[spot.Point()]; ok {
				return invalid("floor %s: spots %q and %q share cell (%d, %d)", level, prev, spot.ID, spot.X, spot.Y)
			}
			spotCells[spot.Point()] = spot.ID
		}

		for _, stairs := range section.Stairs {
			if !b.Contains(stairs) {
				return invalid("floor %s: stairs (%d, %d) are outside section %q", level, stairs.X, stairs.Y, section.ID)
			}
		}
	}

	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidFacility, fmt.Sprintf(format, args...))
}
