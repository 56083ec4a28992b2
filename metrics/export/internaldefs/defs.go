package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef binds a Manager counter to its exported name.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef binds a Manager histogram to its exported name.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

const (
	// AuditDroppedName is the counter for audit events lost to backpressure.
	AuditDroppedName = "gosession_audit_dropped_total"
	// AuditDroppedHelp describes AuditDroppedName.
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

var CounterDefs = []CounterDef{
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Sessions created by Login."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Login calls that returned an error."},
	{ID: goSession.MetricSessionActive, Name: "gosession_session_active_total", Help: "Reads that found a valid access token."},
	{ID: goSession.MetricSessionAbsent, Name: "gosession_session_absent_total", Help: "Reads that found no stored access token."},
	{ID: goSession.MetricTokenRejected, Name: "gosession_token_rejected_total", Help: "Stored access tokens that failed verification."},
	{ID: goSession.MetricRefreshNotNeeded, Name: "gosession_refresh_not_needed_total", Help: "Refresh checks that kept the current access token."},
	{ID: goSession.MetricRefreshSuccess, Name: "gosession_refresh_success_total", Help: "Access tokens re-minted from a refresh token."},
	{ID: goSession.MetricRefreshFailure, Name: "gosession_refresh_failure_total", Help: "Refresh checks that left the session stale."},
	{ID: goSession.MetricRefreshWrongType, Name: "gosession_refresh_wrong_type_total", Help: "Non-refresh tokens found in the refresh slot."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Completed logouts."},
	{ID: goSession.MetricStoreFailure, Name: "gosession_store_failure_total", Help: "Token store faults."},
}

var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricVerifyLatency, Name: "gosession_verify_latency_seconds", Help: "Access token verification latency."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds; the eighth bucket is +Inf.
var HistogramUpperBounds = []float64{
	0.00001,
	0.000025,
	0.00005,
	0.0001,
	0.00025,
	0.0005,
	0.001,
}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters that flatten
// buckets into separate instruments.
var HistogramBoundSuffix = []string{
	"10us",
	"25us",
	"50us",
	"100us",
	"250us",
	"500us",
	"1ms",
	"inf",
}

// NormalizeBuckets pads or truncates raw to eight buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
