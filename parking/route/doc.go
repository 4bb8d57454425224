// Package route computes walking routes on a single floor grid.
//
// Routing is split into two pure steps. BuildObstacles derives the blocked
// cells for one query from section perimeters, leaving the sections that
// hold the start and target open. FindPath then runs a 4-neighbour A*
// search with a Manhattan heuristic over the 40x40 grid.
//
// Usage:
//
//	floor, _ := f.Floor(1)
//	planner := route.NewPlanner(cache)
//
//	path, err := planner.PlanLeg(ctx, floor, start, spot.Point())
//	if errors.Is(err, route.ErrNotFound) {
//		// target is walled in; not an internal failure
//	}
//
// Determinism:
//
// Neighbours are expanded in a fixed order (down, right, up, left) and
// open-set ties on f are resolved by discovery order, so the same request
// always yields the same path.
package route
