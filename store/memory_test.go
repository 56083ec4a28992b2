package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/goSession/store"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseTokenStore(t, store.NewMemoryStore())
}

func TestMemoryStoreSnapshotIsCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(ctx, "k", "v"))

	snap := s.Snapshot()
	snap["k"] = "changed"

	v, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = s.SetMany(ctx, map[string]string{"a": "1", "b": "2"})
				_, _, _ = s.Get(ctx, "a")
				_ = s.RemoveMany(ctx, "a", "b")
			}
		}()
	}
	wg.Wait()
}
