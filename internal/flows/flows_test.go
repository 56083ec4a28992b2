package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/goSession/store"
	"github.com/MrEthical07/goSession/token"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

// faultStore fails the operations named in failGet/failSet/failRemove. It does not
// implement store.PairWriter, so batch helpers fall back to per-key calls.
type faultStore struct {
	inner      *store.MemoryStore
	failGet    map[string]bool
	failSet    bool
	failRemove bool
	// afterGet runs after each successful Get, e.g. to interleave another caller.
	afterGet func(key string)
}

var errFault = errors.New("disk on fire")

func (s *faultStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failGet[key] {
		return "", false, errFault
	}
	value, ok, err := s.inner.Get(ctx, key)
	if err == nil && s.afterGet != nil {
		s.afterGet(key)
	}
	return value, ok, err
}

func (s *faultStore) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return errFault
	}
	return s.inner.Set(ctx, key, value)
}

func (s *faultStore) Remove(ctx context.Context, key string) error {
	if s.failRemove {
		return errFault
	}
	return s.inner.Remove(ctx, key)
}

type fixture struct {
	clock *stepClock
	codec *token.Codec
	store *store.MemoryStore
	keys  store.Keys
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &stepClock{now: time.Unix(1_700_000_000, 0)}
	codec, err := token.NewCodec(token.Config{Secret: "flow-secret", Clock: clock})
	require.NoError(t, err)
	return &fixture{clock: clock, codec: codec, store: store.NewMemoryStore(), keys: store.DefaultKeys()}
}

func (f *fixture) loginDeps(s store.TokenStore) LoginDeps {
	return LoginDeps{
		Keys:        f.keys,
		Store:       s,
		MintAccess:  f.codec.MintAccess,
		MintRefresh: f.codec.MintRefresh,
	}
}

func (f *fixture) refreshDeps(s store.TokenStore) RefreshDeps {
	return RefreshDeps{
		Keys:         f.keys,
		Store:        s,
		ParseAccess:  f.codec.Parse,
		ParseRefresh: f.codec.VerifyRefresh,
		MintAccess:   f.codec.MintAccess,
	}
}

func TestRunLoginPersistsPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := RunLogin(ctx, token.Payload{"userId": "u1", "role": "admin"}, f.loginDeps(f.store))
	require.Equal(t, LoginFailureNone, res.Failure)
	assert.Equal(t, "u1", res.UserID)

	access, ok, err := f.store.Get(ctx, f.keys.Access)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res.AccessToken, access)

	refresh, ok, err := f.store.Get(ctx, f.keys.Refresh)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res.RefreshToken, refresh)

	_, ok, err = f.store.Get(ctx, f.keys.User)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunLoginRequiresUserID(t *testing.T) {
	f := newFixture(t)
	for _, claims := range []token.Payload{nil, {}, {"userId": ""}, {"userId": 42}} {
		res := RunLogin(context.Background(), claims, f.loginDeps(f.store))
		assert.Equal(t, LoginFailureUserID, res.Failure)
		assert.ErrorIs(t, res.Err, token.ErrMissingUserID)
	}
	assert.Zero(t, f.store.Len())
}

func TestRunLoginCachesUserSnapshot(t *testing.T) {
	f := newFixture(t)
	deps := f.loginDeps(f.store)
	deps.CacheUser = true
	deps.EncodeUser = f.codec.Seal

	res := RunLogin(context.Background(), token.Payload{"userId": "u1", "name": "Ada"}, deps)
	require.Equal(t, LoginFailureNone, res.Failure)

	raw, ok, err := f.store.Get(context.Background(), f.keys.User)
	require.NoError(t, err)
	require.True(t, ok)
	snapshot, err := f.codec.Open(raw)
	require.NoError(t, err)
	assert.Equal(t, "Ada", snapshot["name"])
}

func TestRunLoginPersistFailureLeavesNoSession(t *testing.T) {
	f := newFixture(t)
	fs := &faultStore{inner: f.store, failSet: true}

	res := RunLogin(context.Background(), token.Payload{"userId": "u1"}, f.loginDeps(fs))
	assert.Equal(t, LoginFailurePersist, res.Failure)
	assert.ErrorIs(t, res.Err, errFault)
	assert.Zero(t, f.store.Len())
}

func TestRunLoginReportsFailedCleanup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, f.keys.Access, "stale"))
	fs := &faultStore{inner: f.store, failSet: true, failRemove: true}
	deps := f.loginDeps(fs)
	deps.CacheUser = true
	deps.EncodeUser = f.codec.Seal

	res := RunLogin(ctx, token.Payload{"userId": "u1"}, deps)
	assert.Equal(t, LoginFailurePersist, res.Failure)
	assert.ErrorIs(t, res.Err, errFault)
	assert.ErrorIs(t, res.CleanupErr, errFault)

	fs.failRemove = false
	res = RunLogin(ctx, token.Payload{"userId": "u1"}, deps)
	assert.Equal(t, LoginFailurePersist, res.Failure)
	assert.NoError(t, res.CleanupErr)
	assert.Zero(t, f.store.Len())
}

func TestRunCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deps := CurrentDeps{AccessKey: f.keys.Access, Store: f.store, Parse: f.codec.Parse}

	assert.Equal(t, CurrentFailureAbsent, RunCurrent(ctx, deps).Failure)

	require.NoError(t, f.store.Set(ctx, f.keys.Access, "garbage"))
	assert.Equal(t, CurrentFailureRejected, RunCurrent(ctx, deps).Failure)

	tok, err := f.codec.MintAccess(token.Payload{"userId": "u1"})
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, f.keys.Access, tok))
	res := RunCurrent(ctx, deps)
	require.Equal(t, CurrentFailureNone, res.Failure)
	assert.Equal(t, "u1", res.Payload.UserID())

	deps.Store = &faultStore{inner: f.store, failGet: map[string]bool{f.keys.Access: true}}
	assert.Equal(t, CurrentFailureStoreRead, RunCurrent(ctx, deps).Failure)
}

func TestRunRefreshKeepsValidAccessToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	login := RunLogin(ctx, token.Payload{"userId": "u1"}, f.loginDeps(f.store))
	require.Equal(t, LoginFailureNone, login.Failure)

	res := RunRefresh(ctx, f.refreshDeps(f.store))
	require.Equal(t, RefreshFailureNone, res.Failure)
	assert.False(t, res.Refreshed)
	assert.Equal(t, login.AccessToken, res.AccessToken)
}

func TestRunRefreshMintsAfterAccessExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	login := RunLogin(ctx, token.Payload{"userId": "u1", "role": "admin"}, f.loginDeps(f.store))
	require.Equal(t, LoginFailureNone, login.Failure)

	f.clock.now = f.clock.now.Add(token.DefaultAccessTTL + time.Second)
	res := RunRefresh(ctx, f.refreshDeps(f.store))
	require.Equal(t, RefreshFailureNone, res.Failure)
	assert.True(t, res.Refreshed)
	assert.ErrorIs(t, res.AccessErr, token.ErrExpired)
	assert.NotEqual(t, login.AccessToken, res.AccessToken)

	payload, err := f.codec.Parse(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", payload.UserID())
	assert.NotContains(t, payload, "role")

	refresh, _, err := f.store.Get(ctx, f.keys.Refresh)
	require.NoError(t, err)
	assert.Equal(t, login.RefreshToken, refresh)
}

func TestRunRefreshDoesNotRestoreLoggedOutSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.Equal(t, LoginFailureNone, RunLogin(ctx, token.Payload{"userId": "u1"}, f.loginDeps(f.store)).Failure)
	f.clock.now = f.clock.now.Add(token.DefaultAccessTTL + time.Second)

	// Logout lands right after the refresh token has been read.
	fs := &faultStore{inner: f.store}
	fs.afterGet = func(key string) {
		if key == f.keys.Refresh {
			require.NoError(t, RunLogout(ctx, LogoutDeps{Keys: f.keys, Store: f.store}))
		}
	}

	res := RunRefresh(ctx, f.refreshDeps(fs))
	require.Equal(t, RefreshFailureNone, res.Failure)
	assert.True(t, res.Refreshed)

	_, ok, err := f.store.Get(ctx, f.keys.Refresh)
	require.NoError(t, err)
	assert.False(t, ok, "logged-out refresh token written back")
}

func TestRunRefreshClaimSources(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.Equal(t, LoginFailureNone, RunLogin(ctx, token.Payload{"userId": "u1"}, f.loginDeps(f.store)).Failure)
	f.clock.now = f.clock.now.Add(token.DefaultAccessTTL + time.Second)

	t.Run("cached snapshot for same user", func(t *testing.T) {
		deps := f.refreshDeps(f.store)
		deps.CachedClaims = func(context.Context) (token.Payload, bool) {
			return token.Payload{"userId": "u1", "role": "admin"}, true
		}
		res := RunRefresh(ctx, deps)
		require.Equal(t, RefreshFailureNone, res.Failure)
		payload, err := f.codec.Parse(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "admin", payload["role"])
	})

	t.Run("cached snapshot for another user is ignored", func(t *testing.T) {
		require.NoError(t, f.store.Remove(ctx, f.keys.Access))
		deps := f.refreshDeps(f.store)
		deps.CachedClaims = func(context.Context) (token.Payload, bool) {
			return token.Payload{"userId": "u2", "role": "admin"}, true
		}
		res := RunRefresh(ctx, deps)
		require.Equal(t, RefreshFailureNone, res.Failure)
		payload, err := f.codec.Parse(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", payload.UserID())
		assert.NotContains(t, payload, "role")
	})

	t.Run("resolver wins and cannot change userId", func(t *testing.T) {
		require.NoError(t, f.store.Remove(ctx, f.keys.Access))
		deps := f.refreshDeps(f.store)
		deps.ResolveClaims = func(_ context.Context, userID string) (token.Payload, error) {
			assert.Equal(t, "u1", userID)
			return token.Payload{"userId": "mallory", "plan": "pro"}, nil
		}
		res := RunRefresh(ctx, deps)
		require.Equal(t, RefreshFailureNone, res.Failure)
		payload, err := f.codec.Parse(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", payload.UserID())
		assert.Equal(t, "pro", payload["plan"])
	})

	t.Run("resolver error fails refresh", func(t *testing.T) {
		require.NoError(t, f.store.Remove(ctx, f.keys.Access))
		deps := f.refreshDeps(f.store)
		deps.ResolveClaims = func(context.Context, string) (token.Payload, error) {
			return nil, errFault
		}
		res := RunRefresh(ctx, deps)
		assert.Equal(t, RefreshFailureResolveClaims, res.Failure)
		assert.ErrorIs(t, res.Err, errFault)
	})
}

func TestRunRefreshFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("absent", func(t *testing.T) {
		f := newFixture(t)
		res := RunRefresh(ctx, f.refreshDeps(f.store))
		assert.Equal(t, RefreshFailureAbsent, res.Failure)
	})

	t.Run("refresh expired", func(t *testing.T) {
		f := newFixture(t)
		require.Equal(t, LoginFailureNone, RunLogin(ctx, token.Payload{"userId": "u1"}, f.loginDeps(f.store)).Failure)
		f.clock.now = f.clock.now.Add(token.DefaultRefreshTTL + time.Second)
		res := RunRefresh(ctx, f.refreshDeps(f.store))
		assert.Equal(t, RefreshFailureRejected, res.Failure)
		assert.ErrorIs(t, res.Err, token.ErrExpired)
	})

	t.Run("access token in refresh slot", func(t *testing.T) {
		f := newFixture(t)
		tok, err := f.codec.Mint(token.Payload{"userId": "u1"}, time.Hour)
		require.NoError(t, err)
		require.NoError(t, f.store.Set(ctx, f.keys.Refresh, tok))
		res := RunRefresh(ctx, f.refreshDeps(f.store))
		assert.Equal(t, RefreshFailureWrongType, res.Failure)
	})

	t.Run("store read", func(t *testing.T) {
		f := newFixture(t)
		fs := &faultStore{inner: f.store, failGet: map[string]bool{f.keys.Refresh: true}}
		res := RunRefresh(ctx, f.refreshDeps(fs))
		assert.Equal(t, RefreshFailureStoreRead, res.Failure)
	})

	t.Run("store write", func(t *testing.T) {
		f := newFixture(t)
		require.Equal(t, LoginFailureNone, RunLogin(ctx, token.Payload{"userId": "u1"}, f.loginDeps(f.store)).Failure)
		f.clock.now = f.clock.now.Add(token.DefaultAccessTTL + time.Second)
		fs := &faultStore{inner: f.store, failSet: true}
		res := RunRefresh(ctx, f.refreshDeps(fs))
		assert.Equal(t, RefreshFailureStoreWrite, res.Failure)
		assert.Empty(t, res.AccessToken)
	})
}

func TestRunLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deps := LogoutDeps{Keys: f.keys, Store: f.store}

	require.NoError(t, RunLogout(ctx, deps))
	require.Equal(t, LoginFailureNone, RunLogin(ctx, token.Payload{"userId": "u1"}, f.loginDeps(f.store)).Failure)
	require.NoError(t, RunLogout(ctx, deps))
	assert.Zero(t, f.store.Len())

	deps.Store = &faultStore{inner: f.store, failRemove: true}
	assert.ErrorIs(t, RunLogout(ctx, deps), errFault)
}
