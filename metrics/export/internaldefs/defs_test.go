package internaldefs

import (
	"testing"

	goSession "github.com/MrEthical07/goSession"
)

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNormalizeBucketsTruncates(t *testing.T) {
	got := NormalizeBuckets([]uint64{1, 1, 1, 1, 1, 1, 1, 1, 9})
	if got[7] != 1 {
		t.Fatalf("expected extra buckets to be ignored, got %v", got)
	}
}

func TestDefsCoverEveryCounterOnce(t *testing.T) {
	seenIDs := map[goSession.MetricID]bool{}
	seenNames := map[string]bool{}
	for _, def := range CounterDefs {
		if seenIDs[def.ID] || seenNames[def.Name] {
			t.Fatalf("duplicate definition %+v", def)
		}
		seenIDs[def.ID] = true
		seenNames[def.Name] = true
	}
	if seenIDs[goSession.MetricVerifyLatency] {
		t.Fatal("histogram id must not be exported as a counter")
	}
	if len(CounterDefs) != int(goSession.MetricVerifyLatency) {
		t.Fatalf("expected %d counter definitions, got %d", goSession.MetricVerifyLatency, len(CounterDefs))
	}
	if len(HistogramUpperBounds)+1 != len(HistogramBoundSuffix) {
		t.Fatal("bounds and suffixes disagree")
	}
}
