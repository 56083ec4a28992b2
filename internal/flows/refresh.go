package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goSession/store"
	"github.com/MrEthical07/goSession/token"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureStoreRead
	RefreshFailureAbsent
	RefreshFailureRejected
	RefreshFailureWrongType
	RefreshFailureResolveClaims
	RefreshFailureMint
	RefreshFailureStoreWrite
)

// RefreshDeps captures refresh flow dependencies. ResolveClaims and CachedClaims
// are optional.
type RefreshDeps struct {
	Keys          store.Keys
	Store         store.TokenStore
	ParseAccess   func(string) (token.Payload, error)
	ParseRefresh  func(string) (token.Payload, error)
	ResolveClaims func(ctx context.Context, userID string) (token.Payload, error)
	CachedClaims  func(ctx context.Context) (token.Payload, bool)
	MintAccess    func(token.Payload) (string, error)
}

// RefreshResult carries the usable access token or failure metadata.
type RefreshResult struct {
	Failure     RefreshFailureKind
	Err         error
	Refreshed   bool
	AccessToken string
	UserID      string
	// AccessErr records why the stored access token was not usable.
	AccessErr error
}

// RunRefresh returns the stored access token while it verifies. Otherwise it checks
// the stored refresh token and, when that is a valid refresh token, mints and stores a
// replacement access token. The refresh token itself is neither rotated nor rewritten.
func RunRefresh(ctx context.Context, deps RefreshDeps) RefreshResult {
	current := RunCurrent(ctx, CurrentDeps{
		AccessKey: deps.Keys.Access,
		Store:     deps.Store,
		Parse:     deps.ParseAccess,
	})
	switch current.Failure {
	case CurrentFailureNone:
		return RefreshResult{AccessToken: current.Token, UserID: current.Payload.UserID()}
	case CurrentFailureStoreRead:
		return RefreshResult{Failure: RefreshFailureStoreRead, Err: current.Err}
	}
	accessErr := current.Err

	refreshTok, ok, err := deps.Store.Get(ctx, deps.Keys.Refresh)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureStoreRead, Err: err, AccessErr: accessErr}
	}
	if !ok || refreshTok == "" {
		return RefreshResult{Failure: RefreshFailureAbsent, AccessErr: accessErr}
	}

	payload, err := deps.ParseRefresh(refreshTok)
	if err != nil {
		kind := RefreshFailureRejected
		if errors.Is(err, token.ErrWrongTokenType) {
			kind = RefreshFailureWrongType
		}
		return RefreshResult{Failure: kind, Err: err, AccessErr: accessErr}
	}
	userID := payload.UserID()

	claims, err := refreshClaims(ctx, userID, deps)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureResolveClaims, Err: err, UserID: userID, AccessErr: accessErr}
	}

	access, err := deps.MintAccess(claims)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureMint, Err: err, UserID: userID, AccessErr: accessErr}
	}

	// Only the access key is written: rewriting the refresh token would restore a
	// session removed by a Logout running between the read above and this write.
	if err := deps.Store.Set(ctx, deps.Keys.Access, access); err != nil {
		return RefreshResult{Failure: RefreshFailureStoreWrite, Err: err, UserID: userID, AccessErr: accessErr}
	}

	return RefreshResult{
		Refreshed:   true,
		AccessToken: access,
		UserID:      userID,
		AccessErr:   accessErr,
	}
}

// refreshClaims picks the claim set for a re-minted access token: the resolver when
// configured, else the cached snapshot when it belongs to the same user, else userId
// alone. userId always comes from the refresh token.
func refreshClaims(ctx context.Context, userID string, deps RefreshDeps) (token.Payload, error) {
	var claims token.Payload
	switch {
	case deps.ResolveClaims != nil:
		resolved, err := deps.ResolveClaims(ctx, userID)
		if err != nil {
			return nil, err
		}
		claims = resolved.Clone()
	case deps.CachedClaims != nil:
		if cached, ok := deps.CachedClaims(ctx); ok && cached.UserID() == userID {
			claims = cached.Clone()
		}
	}
	if claims == nil {
		claims = token.Payload{}
	}
	claims[token.ClaimUserID] = userID
	return claims, nil
}
