package goSession

import (
	"errors"

	"github.com/MrEthical07/goSession/store"
	"github.com/MrEthical07/goSession/token"
)

var (
	// ErrManagerNotReady is returned by operations on a nil or closed Manager.
	ErrManagerNotReady = errors.New("session manager not ready")
	// ErrSessionCreationFailed is returned by Login when the token pair could not be persisted.
	ErrSessionCreationFailed = errors.New("session creation failed")
	// ErrSessionInvalidationFailed is returned by Logout when a session key could not be removed.
	ErrSessionInvalidationFailed = errors.New("session invalidation failed")
	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrClaimsUnavailable wraps ClaimsResolver failures during refresh.
	ErrClaimsUnavailable = errors.New("claims unavailable")
	// ErrBuilderUsed is returned when Build is called twice on the same Builder.
	ErrBuilderUsed = errors.New("builder already used")

	// ErrMissingUserID is returned by Login when claims carry no string userId.
	ErrMissingUserID = token.ErrMissingUserID
	// ErrStoreUnavailable is wrapped by store backends on I/O faults.
	ErrStoreUnavailable = store.ErrStoreUnavailable
)
