// Package flows contains the orchestration behind every Manager operation.
//
// Each flow function (RunLogin, RunCurrent, RunRefresh, RunLogout) accepts a typed
// dependency struct and returns a result carrying a failure kind. The Manager maps
// failure kinds onto metrics, audit events and log lines, and collapses them into the
// soft "session present / session absent" answers its callers see.
//
// # Architecture boundaries
//
// Flow functions coordinate the token codec and the token store. They do NOT own
// either; ownership stays with the Manager.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goSession (to avoid import cycles).
//   - Log, count, or audit; that is the Manager's job.
package flows
