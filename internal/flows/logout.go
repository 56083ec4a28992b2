package flows

import (
	"context"

	"github.com/MrEthical07/goSession/store"
)

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Keys  store.Keys
	Store store.TokenStore
}

// RunLogout removes every session key. It is safe on an empty store.
func RunLogout(ctx context.Context, deps LogoutDeps) error {
	return store.RemoveAll(ctx, deps.Store, deps.Keys.All()...)
}
