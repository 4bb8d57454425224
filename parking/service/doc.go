// Package service provides the business logic layer for parking navigation.
//
// The service package implements:
//   - Multi-session navigation, one simulated traveler per session
//   - Facility snapshot loading and refresh
//   - Route selection helpers (find my car, nearest free spot)
//   - Session lifecycle management
//
// Core Interfaces:
//
// NavigationService is the main service interface behind the REST API, which
// the MCP tools call in turn. SessionManager stores sessions and
// FacilityStore loads facility snapshots. Publisher receives every frame a
// session's simulator produces; the WebSocket hub implements it.
//
// Usage:
//
//	facilities, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	svc := service.NewNavigationService(session.NewManager(), facilities, service.Options{})
//
//	info, err := svc.CreateSession(ctx, "forum-istanbul", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := svc.SelectSpot(ctx, info.ID, 1, "A1")
//
// Navigation failures (no route, missing stairs, unknown spot) are not Go
// errors at this layer: the command result carries Success false and a Code
// from ErrorCode. Errors are reserved for unknown sessions and facilities.
package service
