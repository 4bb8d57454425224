// Package floormap renders a facility floor as a character grid.
package floormap

import (
	"strings"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
	"github.com/wricardo/mcp-training/parkingnav/parking/route"
)

// Cell characters.
const (
	Aisle    = '.'
	Wall     = '#'
	Free     = 'o'
	Occupied = 'x'
	Stairs   = 'S'
	Path     = '*'
	Target   = 'T'
	Traveler = '@'
)

// Overlay marks navigation state on top of the floor plan.
type Overlay struct {
	Traveler *facility.Point
	Target   *facility.Point
	Path     []facility.Point
}

// Grid is a rendered floor, indexed [y][x].
type Grid [facility.GridSize][facility.GridSize]rune

// Build renders a floor. Section perimeters are the same cells the route
// planner treats as walls when neither endpoint is inside the section.
func Build(floor *facility.Floor, ov Overlay) *Grid {
	var g Grid
	for y := range g {
		for x := range g[y] {
			g[y][x] = Aisle
		}
	}
	if floor == nil {
		return &g
	}

	walls := route.BuildObstacles(floor.Sections, nil, nil)
	for _, p := range walls.Points() {
		g.set(p, Wall)
	}

	for _, section := range floor.Sections {
		for _, p := range section.Stairs {
			g.set(p, Stairs)
		}
		for _, spot := range section.Spots {
			if spot.Occupied {
				g.set(spot.Point(), Occupied)
			} else {
				g.set(spot.Point(), Free)
			}
		}
	}

	for _, p := range ov.Path {
		g.set(p, Path)
	}
	if ov.Target != nil {
		g.set(*ov.Target, Target)
	}
	if ov.Traveler != nil {
		g.set(*ov.Traveler, Traveler)
	}
	return &g
}

func (g *Grid) set(p facility.Point, r rune) {
	if p.InGrid() {
		g[p.Y][p.X] = r
	}
}

// At returns the character at p, or 0 outside the grid.
func (g *Grid) At(p facility.Point) rune {
	if !p.InGrid() {
		return 0
	}
	return g[p.Y][p.X]
}

// Rows returns the grid as one string per row.
func (g *Grid) Rows() []string {
	rows := make([]string, 0, facility.GridSize)
	for y := range g {
		rows = append(rows, string(g[y][:]))
	}
	return rows
}

// Crop returns the rows inside b, clipped to the grid.
func (g *Grid) Crop(b facility.Bounds) []string {
	x0, y0 := max(b.X, 0), max(b.Y, 0)
	x1, y1 := min(b.X+b.Width, facility.GridSize), min(b.Y+b.Height, facility.GridSize)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	rows := make([]string, 0, y1-y0)
	for y := y0; y < y1; y++ {
		rows = append(rows, string(g[y][x0:x1]))
	}
	return rows
}

func (g *Grid) String() string {
	return strings.Join(g.Rows(), "\n")
}

// Legend describes the cell characters.
func Legend() string {
	return "@ you  T destination  * route  o free spot  x occupied spot  S stairs  # section wall  . aisle"
}
