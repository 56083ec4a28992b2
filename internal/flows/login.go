package flows

import (
	"context"
	"strings"

	"github.com/MrEthical07/goSession/store"
	"github.com/MrEthical07/goSession/token"
)

// LoginFailureKind classifies login failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureUserID
	LoginFailureMint
	LoginFailureEncodeUser
	LoginFailurePersist
)

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	Keys        store.Keys
	Store       store.TokenStore
	MintAccess  func(token.Payload) (string, error)
	MintRefresh func(string) (string, error)
	CacheUser   bool
	EncodeUser  func(token.Payload) (string, error)
}

// LoginResult carries either the minted pair or failure metadata.
type LoginResult struct {
	Failure      LoginFailureKind
	Err          error
	UserID       string
	AccessToken  string
	RefreshToken string
	// CleanupErr is set when removing keys after a failed write also failed; a
	// partial session may remain in the store.
	CleanupErr error
}

// RunLogin mints an access/refresh pair for claims and persists it as one unit.
// A failed write removes every session key so no partial session survives.
func RunLogin(ctx context.Context, claims token.Payload, deps LoginDeps) LoginResult {
	userID, _ := claims.String(token.ClaimUserID)
	if strings.TrimSpace(userID) == "" {
		return LoginResult{Failure: LoginFailureUserID, Err: token.ErrMissingUserID}
	}

	access, err := deps.MintAccess(claims)
	if err != nil {
		return LoginResult{Failure: LoginFailureMint, Err: err, UserID: userID}
	}
	refresh, err := deps.MintRefresh(userID)
	if err != nil {
		return LoginResult{Failure: LoginFailureMint, Err: err, UserID: userID}
	}

	values := map[string]string{
		deps.Keys.Access:  access,
		deps.Keys.Refresh: refresh,
	}
	if deps.Keys.User != "" && deps.CacheUser && deps.EncodeUser != nil {
		snapshot, err := deps.EncodeUser(claims)
		if err != nil {
			return LoginResult{Failure: LoginFailureEncodeUser, Err: err, UserID: userID}
		}
		values[deps.Keys.User] = snapshot
	} else if deps.Keys.User != "" {
		// A snapshot from a previous login must not outlive it.
		if err := deps.Store.Remove(ctx, deps.Keys.User); err != nil {
			return LoginResult{Failure: LoginFailurePersist, Err: err, UserID: userID}
		}
	}

	if err := store.SetAll(ctx, deps.Store, values); err != nil {
		cleanupErr := store.RemoveAll(ctx, deps.Store, deps.Keys.All()...)
		return LoginResult{Failure: LoginFailurePersist, Err: err, UserID: userID, CleanupErr: cleanupErr}
	}

	return LoginResult{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
	}
}
