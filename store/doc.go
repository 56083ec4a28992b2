// Package store persists the session token pair under a small set of well-known keys.
//
// # Backends
//
//   - [MemoryStore]: process-local map, used in tests and short-lived tools.
//   - [RedisStore]: keys namespaced by a profile prefix in a shared Redis.
//   - [BadgerStore]: on-disk profile directory that survives restarts.
//
// All backends report a missing key as ("", false, nil) and treat Remove of a missing
// key as success. Backend faults are wrapped with [ErrStoreUnavailable].
//
// # Architecture boundaries
//
// This package stores opaque strings. It does NOT parse, verify, or mint tokens;
// that belongs to package token and the session Manager.
//
// # What this package must NOT do
//
//   - Import goSession or token (no upward imports).
//   - Interpret stored values.
package store
