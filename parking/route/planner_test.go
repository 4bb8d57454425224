package route

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
)

func pt(x, y int) facility.Point {
	return facility.Point{X: x, Y: y}
}

// obstaclesFromMap reads an ASCII map where '#' marks a blocked cell. The
// map is anchored at the grid origin.
func obstaclesFromMap(rows []string) ObstacleSet {
	var o ObstacleSet
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				o.Add(pt(x, y))
			}
		}
	}
	return o
}

func assertConnected(t *testing.T, path Path, obstacles ObstacleSet) {
	t.Helper()
	for i := 1; i < len(path); i++ {
		if facility.Manhattan(path[i-1], path[i]) != 1 {
			t.Fatalf("Points %d and %d are not adjacent: %+v -> %+v", i-1, i, path[i-1], path[i])
		}
	}
	for i := 1; i < len(path)-1; i++ {
		if obstacles.Has(path[i]) {
			t.Fatalf("Path crosses obstacle at %+v", path[i])
		}
	}
}

func TestFindPath_OpenGridIsOptimal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		start := pt(rng.Intn(facility.GridSize), rng.Intn(facility.GridSize))
		target := pt(rng.Intn(facility.GridSize), rng.Intn(facility.GridSize))

		path, err := FindPath(context.Background(), Request{Start: start, Target: target})
		if err != nil {
			t.Fatalf("%+v -> %+v: unexpected error %v", start, target, err)
		}
		if want := facility.Manhattan(start, target) + 1; len(path) != want {
			t.Fatalf("%+v -> %+v: expected %d points, got %d", start, target, want, len(path))
		}
		if path[0] != start || path[len(path)-1] != target {
			t.Fatalf("Path does not span start and target: %+v", path)
		}
		assertConnected(t, path, ObstacleSet{})
	}
}

func TestFindPath_StartEqualsTarget(t *testing.T) {
	path, err := FindPath(context.Background(), Request{Start: pt(4, 4), Target: pt(4, 4)})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(path) != 1 || path[0] != pt(4, 4) {
		t.Errorf("Expected single-point path, got %+v", path)
	}
}

func TestFindPath_AroundWall(t *testing.T) {
	obstacles := obstaclesFromMap([]string{
		".....",
		"####.",
		".....",
		".####",
		".....",
	})

	path, err := FindPath(context.Background(), Request{Start: pt(0, 0), Target: pt(0, 4), Obstacles: obstacles})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	assertConnected(t, path, obstacles)

	// Right along row 0, through the gap at x=4, back left along row 2 and
	// down the gap at x=0.
	if len(path) != 13 {
		t.Errorf("Expected 13 points, got %d: %+v", len(path), path)
	}
}

func TestFindPath_UnreachableTarget(t *testing.T) {
	var obstacles ObstacleSet
	for _, p := range []facility.Point{pt(10, 9), pt(11, 10), pt(10, 11), pt(9, 10)} {
		obstacles.Add(p)
	}

	_, err := FindPath(context.Background(), Request{Start: pt(0, 0), Target: pt(10, 10), Obstacles: obstacles})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFindPath_OutOfBounds(t *testing.T) {
	tests := []Request{
		{Start: pt(-1, 0), Target: pt(1, 1)},
		{Start: pt(0, 0), Target: pt(facility.GridSize, 1)},
		{Start: pt(0, facility.GridSize), Target: pt(1, 1)},
	}
	for _, req := range tests {
		if _, err := FindPath(context.Background(), req); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("%+v: expected ErrOutOfBounds, got %v", req, err)
		}
	}
}

func TestFindPath_Deterministic(t *testing.T) {
	obstacles := obstaclesFromMap([]string{
		"..........",
		"..####....",
		"..#..#....",
		"..#..####.",
		"..........",
	})
	req := Request{Start: pt(0, 0), Target: pt(3, 2), Obstacles: obstacles}

	first, err := FindPath(context.Background(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := FindPath(context.Background(), req)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("Run %d: length %d differs from %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("Run %d: point %d differs: %+v vs %+v", i, j, again[j], first[j])
			}
		}
	}
}

// linearFindPath is A* over a plain open list: stable sort by f, take the
// first node, append new nodes and lower g in place.
func linearFindPath(req Request) (Path, bool) {
	type node struct {
		point  facility.Point
		g, f   int
		parent *node
	}

	open := []*node{{point: req.Start, f: facility.Manhattan(req.Start, req.Target)}}
	closed := make(map[facility.Point]bool)

	for len(open) > 0 {
		sort.SliceStable(open, func(i, j int) bool { return open[i].f < open[j].f })
		current := open[0]
		open = open[1:]

		if current.point == req.Target {
			var path Path
			for n := current; n != nil; n = n.parent {
				path = append(Path{n.point}, path...)
			}
			return path, true
		}
		closed[current.point] = true

		for _, offset := range neighborOffsets {
			next := facility.Point{X: current.point.X + offset.X, Y: current.point.Y + offset.Y}
			if !next.InGrid() || req.Obstacles.Has(next) || closed[next] {
				continue
			}
			g := current.g + 1

			var existing *node
			for _, n := range open {
				if n.point == next {
					existing = n
					break
				}
			}
			if existing == nil {
				open = append(open, &node{point: next, g: g, f: g + facility.Manhattan(next, req.Target), parent: current})
			} else if g < existing.g {
				existing.g = g
				existing.f = g + facility.Manhattan(next, req.Target)
				existing.parent = current
			}
		}
	}
	return nil, false
}

func TestFindPath_MatchesLinearOpenList(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 150; i++ {
		var obstacles ObstacleSet
		for j := 0; j < 400; j++ {
			obstacles.Add(pt(rng.Intn(facility.GridSize), rng.Intn(facility.GridSize)))
		}
		req := Request{
			Start:     pt(rng.Intn(facility.GridSize), rng.Intn(facility.GridSize)),
			Target:    pt(rng.Intn(facility.GridSize), rng.Intn(facility.GridSize)),
			Obstacles: obstacles,
		}

		expected, found := linearFindPath(req)
		got, err := FindPath(context.Background(), req)
		if !found {
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("Map %d: expected ErrNotFound, got %v", i, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Map %d: unexpected error: %v", i, err)
		}
		if len(got) != len(expected) {
			t.Fatalf("Map %d: expected %d points, got %d", i, len(expected), len(got))
		}
		for j := range expected {
			if got[j] != expected[j] {
				t.Fatalf("Map %d: point %d expected %+v, got %+v", i, j, expected[j], got[j])
			}
		}
	}
}

func TestFindPath_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var obstacles ObstacleSet
	for _, p := range []facility.Point{pt(30, 29), pt(31, 30), pt(30, 31), pt(29, 30)} {
		obstacles.Add(p)
	}

	_, err := FindPath(ctx, Request{Start: pt(0, 0), Target: pt(30, 30), Obstacles: obstacles})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

// exampleFloor is floor 1 with section A holding spot A1 and section B
// standing between A and the traveler.
func exampleFloor() *facility.Floor {
	return &facility.Floor{
		Level: 1,
		Sections: []*facility.Section{
			{
				ID:     "zone-a",
				Kind:   facility.ParkingSection,
				Bounds: facility.Bounds{X: 1, Y: 1, Width: 3, Height: 10},
				Spots:  []facility.Spot{{ID: "A1", X: 2, Y: 2}},
			},
			{
				ID:     "zone-b",
				Kind:   facility.ParkingSection,
				Bounds: facility.Bounds{X: 5, Y: 1, Width: 3, Height: 10},
			},
		},
	}
}

func TestPlanLeg_ExampleScenario(t *testing.T) {
	floor := exampleFloor()
	start, target := pt(20, 20), pt(2, 2)

	obstacles := BuildObstacles(floor.Sections, floor.FindSection(start), floor.FindSection(target))
	for _, p := range []facility.Point{pt(5, 1), pt(7, 1), pt(5, 10), pt(7, 10), pt(5, 5), pt(7, 5), pt(6, 1), pt(6, 10)} {
		if !obstacles.Has(p) {
			t.Errorf("Expected B perimeter cell %+v to be blocked", p)
		}
	}
	if obstacles.Has(pt(6, 5)) {
		t.Error("B interior should stay passable")
	}
	if obstacles.Has(pt(1, 1)) || obstacles.Has(pt(3, 10)) {
		t.Error("Target section perimeter should stay open")
	}
	if obstacles.Len() != 2*3+2*10-4 {
		t.Errorf("Expected %d blocked cells, got %d", 2*3+2*10-4, obstacles.Len())
	}

	path, err := NewPlanner(nil).PlanLeg(context.Background(), floor, start, target)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(path) != 37 {
		t.Errorf("Expected 37 points, got %d", len(path))
	}
	assertConnected(t, path, obstacles)
}

func TestBuildObstacles_Pure(t *testing.T) {
	floor := exampleFloor()
	floor.Sections = append(floor.Sections, &facility.Section{
		ID:     "zone-c",
		Bounds: facility.Bounds{X: 9, Y: 1, Width: 3, Height: 10},
	})
	a, b, c := floor.Sections[0], floor.Sections[1], floor.Sections[2]

	first := BuildObstacles(floor.Sections, nil, a)

	// Interleave other queries and path searches.
	_ = BuildObstacles(floor.Sections, b, c)
	if _, err := FindPath(context.Background(), Request{Start: pt(20, 20), Target: pt(2, 2), Obstacles: first}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	reordered := []*facility.Section{c, a, b}
	second := BuildObstacles(reordered, nil, a)

	if first != second {
		t.Error("Obstacle set changed with call order or history")
	}
}

func TestBuildObstacles_StartAndTargetOpen(t *testing.T) {
	floor := exampleFloor()
	a, b := floor.Sections[0], floor.Sections[1]

	o := BuildObstacles(floor.Sections, b, a)
	if o.Len() != 0 {
		t.Errorf("Expected no obstacles when both sections are excluded, got %d", o.Len())
	}
}

func TestPlanner_UsesCache(t *testing.T) {
	cache, err := NewCache(8)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	planner := NewPlanner(cache)
	floor := exampleFloor()

	first, err := planner.PlanLeg(context.Background(), floor, pt(20, 20), pt(2, 2))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := planner.PlanLeg(context.Background(), floor, pt(20, 20), pt(2, 2))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %+v", stats)
	}
	if len(first) != len(second) {
		t.Fatalf("Cached path differs in length")
	}

	// Mutating a returned path must not leak into the cache.
	second[0] = pt(39, 39)
	third, _ := planner.PlanLeg(context.Background(), floor, pt(20, 20), pt(2, 2))
	if third[0] != pt(20, 20) {
		t.Error("Cache returned a shared slice")
	}
}

func TestPlanner_CachesNotFound(t *testing.T) {
	cache := MustCache(4)
	planner := NewPlanner(cache)

	var obstacles ObstacleSet
	for _, p := range []facility.Point{pt(1, 0), pt(0, 1)} {
		obstacles.Add(p)
	}
	req := Request{Start: pt(5, 5), Target: pt(0, 0), Obstacles: obstacles}

	for i := 0; i < 2; i++ {
		if _, err := planner.Plan(context.Background(), req); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Attempt %d: expected ErrNotFound, got %v", i, err)
		}
	}
	if stats := cache.Stats(); stats.Hits != 1 {
		t.Errorf("Expected second lookup to hit the cache, got %+v", stats)
	}
}

func TestMustCache(t *testing.T) {
	if c := MustCache(DefaultCacheSize); c == nil {
		t.Fatal("Expected a cache for the default size")
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for a zero size")
		}
	}()
	MustCache(0)
}

func TestNewCache_InvalidSize(t *testing.T) {
	if _, err := NewCache(0); err == nil {
		t.Error("Expected error for zero-sized cache")
	}
}

func TestObstacleSet(t *testing.T) {
	var o ObstacleSet
	o.Add(pt(0, 0))
	o.Add(pt(39, 39))
	o.Add(pt(-1, 5))
	o.Add(pt(0, 0))

	if o.Len() != 2 {
		t.Errorf("Expected 2 cells, got %d", o.Len())
	}
	if !o.Has(pt(39, 39)) || o.Has(pt(1, 0)) || o.Has(pt(40, 0)) {
		t.Error("Unexpected membership result")
	}
	points := o.Points()
	if len(points) != 2 || points[0] != pt(0, 0) || points[1] != pt(39, 39) {
		t.Errorf("Unexpected points %+v", points)
	}
}
