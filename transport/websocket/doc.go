// Package websocket streams navigation frames to browser clients.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - A snapshot on connect, then one frame per simulator change
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub owns every connection. Each client has a read goroutine that
// only watches for disconnects and a write goroutine that drains its send
// queue. The Hub implements service.Publisher, so the navigation service
// hands it every frame its simulators produce. Publish never blocks the
// simulator: frames are queued and dropped if the hub falls behind.
//
// Message Protocol:
//
// Outgoing messages are JSON objects:
//   - {"event": "snapshot", "session_id": "ab12", "snapshot": {...}}
//   - {"event": "frame", "session_id": "ab12", "snapshot": {...}, "events": [...], "step": {...}}
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	svc := service.NewNavigationService(sessions, facilities, service.Options{Publisher: hub})
//	hub.ServeWS(w, r, sessionID, websocket.SnapshotMessage(sessionID, snap))
package websocket
