// Package session provides session management for parking navigation.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//   - Lookup of every session using a given facility
//
// Core Types:
//
// Manager stores service.Session values. Each session carries its own
// motion.Simulator; the manager never drives it, it only hands sessions back
// to the navigation service.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookup is
// case-insensitive and the manager retries generation on collision.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", "forum-istanbul", facility, simulator)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Sessions live in memory only. Expired sessions are returned from
// CleanupExpiredSessions so the caller can stop their simulators.
package session
