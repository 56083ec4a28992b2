// Package prometheus exposes Manager metrics as a client_golang [prometheus.Collector].
//
// [NewCollector] reads [goSession.Manager.MetricsSnapshot] on every scrape. Counter
// names are gosession_*_total; the single histogram is gosession_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register with the global default registry; callers register the Collector or
//     mount [Collector.Handler].
//   - Mutate manager state.
package prometheus
