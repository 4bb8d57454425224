package route

import (
	"math/bits"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
)

const obstacleWords = (facility.GridSize*facility.GridSize + 63) / 64

// ObstacleSet is a bitmap of blocked cells on one floor grid. It is a plain
// comparable value: copies are independent and it can key a map.
type ObstacleSet struct {
	bits [obstacleWords]uint64
}

func cellIndex(p facility.Point) int {
	return p.Y*facility.GridSize + p.X
}

// Add blocks p. Points outside the grid are ignored.
func (o *ObstacleSet) Add(p facility.Point) {
	if !p.InGrid() {
		return
	}
	i := cellIndex(p)
	o.bits[i/64] |= 1 << (uint(i) % 64)
}

// Has reports whether p is blocked.
func (o *ObstacleSet) Has(p facility.Point) bool {
	if !p.InGrid() {
		return false
	}
	i := cellIndex(p)
	return o.bits[i/64]&(1<<(uint(i)%64)) != 0
}

// Len returns the number of blocked cells.
func (o *ObstacleSet) Len() int {
	n := 0
	for _, w := range o.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// Points lists blocked cells in row-major order.
func (o *ObstacleSet) Points() []facility.Point {
	points := make([]facility.Point, 0, o.Len())
	for y := 0; y < facility.GridSize; y++ {
		for x := 0; x < facility.GridSize; x++ {
			p := facility.Point{X: x, Y: y}
			if o.Has(p) {
				points = append(points, p)
			}
		}
	}
	return points
}

// BuildObstacles blocks the rectangular perimeter of every section except
// the start and target sections. Interiors and free floor stay passable.
// Either of start or target may be nil when the point lies on free floor.
func BuildObstacles(sections []*facility.Section, start, target *facility.Section) ObstacleSet {
	var obstacles ObstacleSet

	for _, section := range sections {
		if section == start || section == target {
			continue
		}
		addPerimeter(&obstacles, section.Bounds)
	}

	return obstacles
}

func addPerimeter(o *ObstacleSet, b facility.Bounds) {
	for x := b.X; x < b.X+b.Width; x++ {
		o.Add(facility.Point{X: x, Y: b.Y})
		o.Add(facility.Point{X: x, Y: b.Y + b.Height - 1})
	}
	for y := b.Y; y < b.Y+b.Height; y++ {
		o.Add(facility.Point{X: b.X, Y: y})
		o.Add(facility.Point{X: b.X + b.Width - 1, Y: y})
	}
}
