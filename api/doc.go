// Package api provides HTTP REST API handlers for the parking navigator.
//
// The api package implements:
//   - Session management endpoints
//   - Navigation commands (floor, spot selection, confirm, cancel)
//   - Facility listing, inspection and reload
//   - WebSocket upgrade handling for live frames
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session
//   - GET /api/sessions - List sessions (sort, order, limit, facility)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Navigation:
//   - GET /api/sessions/{id}/snapshot - Current navigation snapshot
//   - POST /api/sessions/{id}/floor - View another floor
//   - POST /api/sessions/{id}/select - Select a destination spot
//   - POST /api/sessions/{id}/confirm - Start walking the previewed route
//   - POST /api/sessions/{id}/cancel - Drop the active or previewed route
//   - POST /api/sessions/{id}/dismiss - Acknowledge arrival
//   - POST /api/sessions/{id}/find-car - Route to the session's parked car
//   - POST /api/sessions/{id}/find-free - Route to the nearest free spot
//
// Facilities:
//   - GET /api/facilities - List available facilities with occupancy
//   - GET /api/facilities/{name} - Full facility model
//   - POST /api/facilities/{name}/refresh - Reload from disk
//
// Floors are given as labels ("B1", "2") or numbers:
//
//	{"floor": "1", "spot_id": "A1"}
//
// Command Results:
//
// Navigation commands always return a result with the session snapshot.
// A failed command carries success false and a code:
//
//	invalid_transition               409
//	no_route, no_stairs, no_car,
//	no_free_spot                     422
//	invalid_spot, out_of_bounds,
//	floor_not_found                  400
//
// Usage:
//
//	server := api.NewServer(svc, hub, logger)
//	http.Handle("/", server)
//
// Error Handling:
//
// Other errors are returned as JSON with an HTTP status code:
//
//	{
//	  "error": "error message"
//	}
package api
