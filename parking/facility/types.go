package facility

import "time"

const (
	// GridSize is the width and height of every floor grid.
	GridSize = 40
)

// SectionKind distinguishes spot-holding sections from pure markers.
type SectionKind string

const (
	ParkingSection SectionKind = "parking"
	MarkerSection  SectionKind = "marker"
)

// Point is an integer grid coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InGrid reports whether p lies inside the floor grid.
func (p Point) InGrid() bool {
	return p.X >= 0 && p.X < GridSize && p.Y >= 0 && p.Y < GridSize
}

// Bounds is the rectangle covered by a section.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether p falls inside the rectangle.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.X && p.X < b.X+b.Width &&
		p.Y >= b.Y && p.Y < b.Y+b.Height
}

// Overlaps reports whether two rectangles share at least one cell.
func (b Bounds) Overlaps(o Bounds) bool {
	return b.X < o.X+o.Width && o.X < b.X+b.Width &&
		b.Y < o.Y+o.Height && o.Y < b.Y+b.Height
}

// Center returns the cell nearest the middle of the rectangle.
func (b Bounds) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Spot is a single parking space.
type Spot struct {
	ID           string     `json:"id"`
	X            int        `json:"x"`
	Y            int        `json:"y"`
	Occupied     bool       `json:"occupied"`
	LicensePlate string     `json:"license_plate,omitempty"`
	EntryTime    *time.Time `json:"entry_time,omitempty"`
	Image        string     `json:"image,omitempty"`
}

// Point returns the grid cell of the spot.
func (s Spot) Point() Point {
	return Point{X: s.X, Y: s.Y}
}

// Section is a rectangular zone on a floor. The ID is the key the section
// is registered under on its floor.
type Section struct {
	ID     string      `json:"-" msgpack:"id"`
	Title  string      `json:"title"`
	Color  string      `json:"color,omitempty"`
	Kind   SectionKind `json:"kind,omitempty"`
	Bounds Bounds      `json:"bounds"`
	Spots  []Spot      `json:"spots,omitempty"`
	Icon   string      `json:"icon,omitempty"`
	Stairs []Point     `json:"stairs,omitempty"`
}

// IsMarker reports whether the section is a non-parking marker.
func (s *Section) IsMarker() bool {
	return s.Kind == MarkerSection
}

// Floor is one level of the facility. Sections keep their registration
// order, which several queries depend on.
type Floor struct {
	Level    Level      `json:"-" msgpack:"-"`
	Title    string     `json:"title"`
	Sections []*Section `json:"-" msgpack:"sections"`
}

// Info is descriptive data about the facility.
type Info struct {
	Name           string `json:"name"`
	Address        string `json:"address,omitempty"`
	OpenHours      string `json:"open_hours,omitempty"`
	TotalSpots     int    `json:"total_spots"`
	AvailableSpots int    `json:"available_spots"`
	Image          string `json:"image,omitempty"`
}

// Location is a position on a specific floor.
type Location struct {
	Floor    Level `json:"floor"`
	Position Point `json:"position"`
}

// SpotLocation is a spot together with the floor and section holding it.
type SpotLocation struct {
	Floor     Level  `json:"floor"`
	SectionID string `json:"section_id"`
	Spot      Spot   `json:"spot"`
	Cost      int    `json:"cost"`
}

// FloorStats summarizes spot occupancy on a floor.
type FloorStats struct {
	Level    Level  `json:"level"`
	Title    string `json:"title"`
	Capacity int    `json:"capacity"`
	Occupied int    `json:"occupied"`
	Percent  int    `json:"percent"`
	Band     string `json:"band"`
}

// Facility is a read-only snapshot of a parking facility.
type Facility struct {
	Name   string           `json:"name"`
	Info   Info             `json:"info"`
	Entry  *Location        `json:"entry,omitempty"`
	Floors map[Level]*Floor `json:"floors"`
}
