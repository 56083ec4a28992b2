package flows

import (
	"context"

	"github.com/MrEthical07/goSession/store"
	"github.com/MrEthical07/goSession/token"
)

// CurrentFailureKind classifies why no active session was found.
type CurrentFailureKind int

const (
	CurrentFailureNone CurrentFailureKind = iota
	CurrentFailureAbsent
	CurrentFailureStoreRead
	CurrentFailureRejected
)

// CurrentDeps captures dependencies for reading the active session.
type CurrentDeps struct {
	AccessKey string
	Store     store.TokenStore
	Parse     func(string) (token.Payload, error)
}

// CurrentResult carries the verified access payload or failure metadata.
type CurrentResult struct {
	Failure CurrentFailureKind
	Err     error
	Token   string
	Payload token.Payload
}

// RunCurrent loads the stored access token and verifies it.
func RunCurrent(ctx context.Context, deps CurrentDeps) CurrentResult {
	tok, ok, err := deps.Store.Get(ctx, deps.AccessKey)
	if err != nil {
		return CurrentResult{Failure: CurrentFailureStoreRead, Err: err}
	}
	if !ok || tok == "" {
		return CurrentResult{Failure: CurrentFailureAbsent}
	}

	payload, err := deps.Parse(tok)
	if err != nil {
		return CurrentResult{Failure: CurrentFailureRejected, Err: err, Token: tok}
	}
	return CurrentResult{Token: tok, Payload: payload}
}
