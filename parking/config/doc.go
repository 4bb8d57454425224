// Package config provides facility snapshot management and runtime settings.
//
// The config package handles:
//   - Loading facility snapshots from the configs directory
//   - Default facility management with a built-in fallback
//   - Facility discovery and listing with occupancy statistics
//   - Reloading a facility and detecting whether it changed
//
// Snapshot Formats:
//
// A facility named "forum-istanbul" may be stored as forum-istanbul.json,
// forum-istanbul.msgpack or forum-istanbul.msgpack.zst. JSON is looked up
// first. Sections are an object keyed by section id whose key order is the
// section order on the floor.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	f, err := manager.Load("forum-istanbul")
//
//	// Pick up an edited file
//	f, changed, err := manager.Refresh("forum-istanbul")
//
// Settings carries the tick interval, floor change delay, route cache size
// and session TTL. main.go fills it from CLI flags and environment variables.
package config
