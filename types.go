package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/token"
)

// TokenPair is the result of a successful Login.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ClaimsResolver re-derives the claim set for a user when an access token is
// re-minted from a refresh token. The returned userId claim is always overwritten
// with the refresh token's userId.
type ClaimsResolver interface {
	ResolveClaims(ctx context.Context, userID string) (token.Payload, error)
}

// ClaimsResolverFunc adapts a function to ClaimsResolver.
type ClaimsResolverFunc func(ctx context.Context, userID string) (token.Payload, error)

// ResolveClaims calls f.
func (f ClaimsResolverFunc) ResolveClaims(ctx context.Context, userID string) (token.Payload, error) {
	return f(ctx, userID)
}
