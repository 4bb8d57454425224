package route

import "github.com/wricardo/mcp-training/parkingnav/parking/facility"

// Direction is a screen-relative walking direction. The grid's y axis grows
// downward.
type Direction string

const (
	DirectionNone  Direction = ""
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Instruction is one straight run of a turn-by-turn route.
type Instruction struct {
	Direction Direction `json:"direction"`
	Distance  int       `json:"distance"`
}

// DirectionBetween compares two points: a larger horizontal delta gives
// left/right, otherwise up/down.
func DirectionBetween(from, to facility.Point) Direction {
	dx := to.X - from.X
	dy := to.Y - from.Y

	if dx == 0 && dy == 0 {
		return DirectionNone
	}
	if abs(dx) > abs(dy) {
		if dx > 0 {
			return DirectionRight
		}
		return DirectionLeft
	}
	if dy > 0 {
		return DirectionDown
	}
	return DirectionUp
}

// Hint returns the direction of the next step from cursor.
func Hint(path Path, cursor int) Direction {
	if cursor < 0 || cursor+1 >= len(path) {
		return DirectionNone
	}
	return DirectionBetween(path[cursor], path[cursor+1])
}

// Instructions collapses a path into straight runs.
func Instructions(path Path) []Instruction {
	var out []Instruction
	for i := 0; i+1 < len(path); i++ {
		dir := DirectionBetween(path[i], path[i+1])
		if n := len(out); n > 0 && out[n-1].Direction == dir {
			out[n-1].Distance++
			continue
		}
		out = append(out, Instruction{Direction: dir, Distance: 1})
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
