package goSession_test

import (
	"context"
	"fmt"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/store"
	"github.com/MrEthical07/goSession/token"
)

// ExampleNew builds a manager over an in-process store.
func ExampleNew() {
	m, err := goSession.New().
		WithSecret("example-secret").
		WithStore(store.NewMemoryStore()).
		Build()
	if err != nil {
		panic(err)
	}
	defer m.Close()

	fmt.Println(m.Codec().Issuer())
	// Output: gosession
}

// ExampleManager_Login shows the login, read, logout cycle.
func ExampleManager_Login() {
	ctx := context.Background()
	m, _ := goSession.New().
		WithSecret("example-secret").
		WithStore(store.NewMemoryStore()).
		Build()
	defer m.Close()

	if _, err := m.Login(ctx, token.Payload{"userId": "u-42", "role": "admin"}); err != nil {
		panic(err)
	}

	payload, ok := m.CurrentPayload(ctx)
	fmt.Println(ok, payload.UserID(), payload["role"], payload.Type())

	_ = m.Logout(ctx)
	_, ok = m.CurrentPayload(ctx)
	fmt.Println(ok)
	// Output:
	// true u-42 admin access
	// false
}

// ExampleManager_MetricsSnapshot reads in-process counters.
func ExampleManager_MetricsSnapshot() {
	ctx := context.Background()
	m, _ := goSession.New().
		WithSecret("example-secret").
		WithStore(store.NewMemoryStore()).
		Build()
	defer m.Close()

	_, _ = m.CurrentPayload(ctx)
	snap := m.MetricsSnapshot()
	fmt.Println(snap.Counters[goSession.MetricSessionAbsent])
	// Output: 1
}
