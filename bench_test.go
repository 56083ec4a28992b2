package goSession

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goSession/store"
	"github.com/MrEthical07/goSession/token"
)

func BenchmarkMetricsInc(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricSessionActive)
	}
}

func BenchmarkMetricsIncDisabledParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Inc(MetricSessionActive)
		}
	})
}

func BenchmarkMetricsObserveLatencyParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	d := 40 * time.Microsecond
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Observe(MetricVerifyLatency, d)
		}
	})
}

func BenchmarkCurrentPayloadMemory(b *testing.B) {
	m := newBenchmarkManager(b, store.NewMemoryStore())
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := m.CurrentPayload(ctx); !ok {
			b.Fatal("no session")
		}
	}
}

func BenchmarkCurrentPayloadRedis(b *testing.B) {
	mr := miniredis.RunT(b)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b.Cleanup(func() { _ = client.Close() })

	m := newBenchmarkManager(b, store.NewRedisStore(client, "bench", 0))
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := m.CurrentPayload(ctx); !ok {
			b.Fatal("no session")
		}
	}
}

func BenchmarkRefreshMint(b *testing.B) {
	st := store.NewMemoryStore()
	m := newBenchmarkManager(b, st)
	ctx := context.Background()
	access := m.Keys().Access

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = st.Remove(ctx, access)
		if _, ok := m.RefreshIfNeeded(ctx); !ok {
			b.Fatal("refresh failed")
		}
	}
}

func newBenchmarkManager(b *testing.B, st store.TokenStore) *Manager {
	b.Helper()
	m, err := New().
		WithSecret("bench-secret").
		WithStore(st).
		Build()
	if err != nil {
		b.Fatalf("build failed: %v", err)
	}
	b.Cleanup(func() { _ = m.Close() })

	if _, err := m.Login(context.Background(), token.Payload{token.ClaimUserID: "bench-user", "role": "member"}); err != nil {
		b.Fatalf("login failed: %v", err)
	}
	return m
}
