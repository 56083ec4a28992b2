package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/store"
	"github.com/MrEthical07/goSession/token"
)

type profileState struct {
	manager *goSession.Manager
	store   *store.RedisStore
	mu      sync.Mutex
}

func main() {
	var (
		profiles    = flag.Int("profiles", 1000, "number of profiles to log in")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "operations per phase (current + refresh)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "lt", "profile key prefix")
		latency     = flag.Bool("latency", false, "record verify latency histograms")
	)
	flag.Parse()

	if *profiles <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "profiles, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	states := make([]*profileState, *profiles)
	fmt.Printf("logging in %d profiles...\n", *profiles)
	startSeed := time.Now()
	for i := range states {
		st := store.NewRedisStore(client, fmt.Sprintf("%s-%d", *prefix, i), 0)
		m, err := goSession.New().
			WithSecret("loadtest-secret").
			WithStore(st).
			WithLatencyHistograms(*latency).
			Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
			os.Exit(1)
		}
		defer m.Close()

		claims := token.Payload{token.ClaimUserID: fmt.Sprintf("user-%d", i), "role": "member"}
		if _, err := m.Login(ctx, claims); err != nil {
			fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
			os.Exit(1)
		}
		states[i] = &profileState{manager: m, store: st}
	}
	fmt.Printf("logged in in %s\n", time.Since(startSeed).Round(time.Millisecond))

	currentStats := runPhase(states, *ops, *concurrency, 7919, func(s *profileState) bool {
		_, ok := s.manager.CurrentPayload(ctx)
		return ok
	})
	refreshStats := runPhase(states, *ops, *concurrency, 6151, func(s *profileState) bool {
		// Drop the access token so every call takes the mint path.
		keys := s.manager.Keys()
		if err := s.store.Remove(ctx, keys.Access); err != nil {
			return false
		}
		_, ok := s.manager.RefreshIfNeeded(ctx)
		return ok
	})

	fmt.Println("---- results ----")
	printStats("current", currentStats)
	printStats("refresh", refreshStats)

	var rejected, storeFailures uint64
	for _, s := range states {
		snap := s.manager.MetricsSnapshot()
		rejected += snap.Counters[goSession.MetricTokenRejected]
		storeFailures += snap.Counters[goSession.MetricStoreFailure]
	}
	fmt.Printf("manager counters: token_rejected=%d store_failure=%d\n", rejected, storeFailures)
}

// runPhase spreads ops random-profile calls over concurrency workers. Calls on
// the same profile are serialized.
func runPhase(states []*profileState, ops, concurrency int, seed int64, op func(*profileState) bool) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				state := states[r.Intn(len(states))]

				state.mu.Lock()
				t0 := time.Now()
				ok := op(state)
				d := time.Since(t0)
				state.mu.Unlock()
				if !ok {
					atomic.AddInt64(&failures, 1)
				}

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
