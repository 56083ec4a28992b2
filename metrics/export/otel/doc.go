// Package otel publishes Manager metrics through OpenTelemetry observable instruments.
//
// [NewOTelExporter] creates one Int64ObservableCounter per Manager counter and one
// Int64ObservableGauge per latency bucket, all fed by a single callback that reads
// [goSession.Manager.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider; callers supply the Meter.
//   - Mutate manager state.
package otel
