// Package goSession manages a client-held session made of two signed tokens: a
// short-lived access token carrying the caller's claims and a long-lived refresh
// token carrying only userId. Tokens are JWT-shaped (HS256) and are minted, verified,
// refreshed and discarded locally, with no server round-trip.
//
// A [Manager] is built with [Builder.Build] and persists the pair through a
// [store.TokenStore] (memory, Redis or Badger). Methods are safe for concurrent use,
// but two Managers writing the same keys race with last-writer-wins semantics.
//
// # Trust caveat
//
// The signing secret lives with the client that mints and verifies tokens. Signatures
// therefore detect accidental corruption and naive edits, but anyone who can read the
// client's code or memory can forge tokens. A session held by this package must never
// be treated as server-side authorization.
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Manager], [Builder], [Config] and value
// types ([TokenPair], [MetricsSnapshot], [AuditEvent]). Token mechanics live in the token
// package, persistence in the store package, and flow orchestration under internal/.
//
// # What this package must NOT do
//
//   - Log or audit token strings or the secret; only fingerprints.
//   - Surface token verification failures as errors; they mean "no session".
//   - Mutate session keys outside Manager methods.
package goSession
