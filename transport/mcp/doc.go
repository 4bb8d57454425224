// Package mcp provides a Model Context Protocol server for the parking
// navigator.
//
// The server is a thin proxy: every tool call becomes a request to the REST
// API at the client's base URL, so an agent sees exactly what the web and
// WebSocket clients see.
//
// MCP Tools:
//
// Sessions:
//   - create_session: Start a traveler in a facility, optionally at a given floor and cell
//   - list_sessions, get_session, delete_session
//
// Navigation:
//   - navigation_state: Phase, target and progress, optionally with a floor map
//   - select_floor: Change the viewed floor
//   - select_spot: Preview a route to a spot
//   - confirm_route, cancel_route, dismiss_arrival
//   - find_my_car: Route to the traveler's parked car
//   - find_free_spot: Route to the nearest free spot
//   - navigation_instructions: Turn-by-turn list for the current route
//
// Facilities:
//   - list_facilities, describe_floor, refresh_facility
//
// Failed navigation commands are reported as tool errors carrying the
// failure code (no_route, no_stairs, invalid_transition, ...).
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
