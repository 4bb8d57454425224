package route

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
)

var (
	// ErrNotFound means the search space was exhausted without reaching
	// the target. It is an expected outcome, not a failure of the planner.
	ErrNotFound = errors.New("no route found")

	// ErrOutOfBounds means start or target lies outside the floor grid.
	ErrOutOfBounds = errors.New("point outside grid")
)

// cancelCheckInterval is how many expansions run between context checks.
const cancelCheckInterval = 256

// Path is an ordered list of 4-adjacent grid cells, start and target
// inclusive.
type Path []facility.Point

// Len returns the number of points in the path.
func (p Path) Len() int {
	return len(p)
}

// Steps returns the number of moves needed to walk the path.
func (p Path) Steps() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Request is a single path query on one floor.
type Request struct {
	Start     facility.Point
	Target    facility.Point
	Obstacles ObstacleSet
}

// searchNode is one grid cell in the A* open set.
type searchNode struct {
	point  facility.Point
	g      int
	f      int
	seq    int // position among open nodes with equal f
	parent *searchNode
	index  int // position in the heap
}

// relaxedNode remembers where a node ranked before its g was lowered.
type relaxedNode struct {
	node *searchNode
	f    int
	seq  int
}

// nodeQueue orders nodes by f, then by seq.
type nodeQueue []*searchNode

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}

func (q nodeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *nodeQueue) Push(x interface{}) {
	node := x.(*searchNode)
	node.index = len(*q)
	*q = append(*q, node)
}

func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*q = old[:n-1]
	return node
}

// neighborOffsets is the fixed expansion order: down, right, up, left.
var neighborOffsets = [4]facility.Point{
	{X: 0, Y: 1},
	{X: 1, Y: 0},
	{X: 0, Y: -1},
	{X: -1, Y: 0},
}

// FindPath runs A* over the floor grid with unit step costs and a Manhattan
// heuristic. Ties on f pop in the same order as a stably sorted open list
// where new nodes are appended and relaxed nodes stay in place, so identical
// requests always produce identical paths.
func FindPath(ctx context.Context, req Request) (Path, error) {
	if !req.Start.InGrid() {
		return nil, fmt.Errorf("%w: start (%d, %d)", ErrOutOfBounds, req.Start.X, req.Start.Y)
	}
	if !req.Target.InGrid() {
		return nil, fmt.Errorf("%w: target (%d, %d)", ErrOutOfBounds, req.Target.X, req.Target.Y)
	}

	open := &nodeQueue{}
	heap.Init(open)

	nodes := make(map[facility.Point]*searchNode)
	closed := make(map[facility.Point]bool)
	seq := 0

	start := &searchNode{
		point: req.Start,
		f:     facility.Manhattan(req.Start, req.Target),
		seq:   seq,
	}
	heap.Push(open, start)
	nodes[req.Start] = start

	expanded := 0
	for open.Len() > 0 {
		expanded++
		if expanded%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		current := heap.Pop(open).(*searchNode)
		if current.point == req.Target {
			return reconstructPath(current), nil
		}
		closed[current.point] = true

		// Nodes relaxed in this expansion rank after every node already
		// open and before the ones discovered now, in their previous order.
		relaxBase := seq
		seq += len(neighborOffsets)
		var relaxed []relaxedNode

		for _, offset := range neighborOffsets {
			next := facility.Point{X: current.point.X + offset.X, Y: current.point.Y + offset.Y}
			if !next.InGrid() || req.Obstacles.Has(next) || closed[next] {
				continue
			}

			g := current.g + 1
			existing, seen := nodes[next]
			if !seen {
				seq++
				node := &searchNode{
					point:  next,
					g:      g,
					f:      g + facility.Manhattan(next, req.Target),
					seq:    seq,
					parent: current,
				}
				heap.Push(open, node)
				nodes[next] = node
				continue
			}

			if g < existing.g {
				relaxed = append(relaxed, relaxedNode{node: existing, f: existing.f, seq: existing.seq})
				existing.g = g
				existing.f = g + facility.Manhattan(next, req.Target)
				existing.parent = current
				heap.Fix(open, existing.index)
			}
		}

		sort.Slice(relaxed, func(i, j int) bool {
			if relaxed[i].f != relaxed[j].f {
				return relaxed[i].f < relaxed[j].f
			}
			return relaxed[i].seq < relaxed[j].seq
		})
		for i, r := range relaxed {
			r.node.seq = relaxBase + 1 + i
			heap.Fix(open, r.node.index)
		}
	}

	return nil, ErrNotFound
}

// reconstructPath walks parent links back to the start.
func reconstructPath(node *searchNode) Path {
	var reversed Path
	for n := node; n != nil; n = n.parent {
		reversed = append(reversed, n.point)
	}

	path := make(Path, len(reversed))
	for i, p := range reversed {
		path[len(reversed)-1-i] = p
	}
	return path
}

// Planner builds obstacle sets for a floor and plans legs on it, reusing
// results through an optional cache.
type Planner struct {
	cache *Cache
}

// NewPlanner creates a planner. A nil cache disables result caching.
func NewPlanner(cache *Cache) *Planner {
	return &Planner{cache: cache}
}

// Cache returns the planner's result cache, which may be nil.
func (p *Planner) Cache() *Cache {
	return p.cache
}

// Plan answers a single request, consulting the cache first.
func (p *Planner) Plan(ctx context.Context, req Request) (Path, error) {
	if p.cache != nil {
		if path, found, ok := p.cache.Get(req); ok {
			if !found {
				return nil, ErrNotFound
			}
			return path, nil
		}
	}

	path, err := FindPath(ctx, req)
	switch {
	case err == nil:
		if p.cache != nil {
			p.cache.Put(req, path, true)
		}
		return path, nil
	case errors.Is(err, ErrNotFound):
		if p.cache != nil {
			p.cache.Put(req, nil, false)
		}
		return nil, err
	default:
		return nil, err
	}
}

// PlanLeg plans a walk between two points on a floor. The sections holding
// start and target are left open; every other section's perimeter blocks.
func (p *Planner) PlanLeg(ctx context.Context, floor *facility.Floor, start, target facility.Point) (Path, error) {
	obstacles := BuildObstacles(floor.Sections, floor.FindSection(start), floor.FindSection(target))
	return p.Plan(ctx, Request{Start: start, Target: target, Obstacles: obstacles})
}
