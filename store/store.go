package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStoreUnavailable wraps backend I/O faults.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("store closed")
	// ErrInvalidKey is returned for empty keys.
	ErrInvalidKey = errors.New("invalid store key")
)

// TokenStore is the key-value surface the session manager persists through.
type TokenStore interface {
	// Get returns the stored value and true, or ("", false, nil) when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// PairWriter is implemented by stores that can apply several writes as one unit.
type PairWriter interface {
	SetMany(ctx context.Context, values map[string]string) error
	RemoveMany(ctx context.Context, keys ...string) error
}

// Keys names the entries a session occupies in a store.
type Keys struct {
	Access  string `env:"ACCESS_KEY"`
	Refresh string `env:"REFRESH_KEY"`
	User    string `env:"USER_KEY"`
}

// DefaultKeys returns the standard key names.
func DefaultKeys() Keys {
	return Keys{
		Access:  "accessToken",
		Refresh: "refreshToken",
		User:    "user",
	}
}

// All returns every non-empty key in a fixed order.
func (k Keys) All() []string {
	out := make([]string, 0, 3)
	for _, key := range []string{k.Access, k.Refresh, k.User} {
		if key != "" {
			out = append(out, key)
		}
	}
	return out
}

// Validate requires non-empty, distinct access and refresh keys. User is optional
// but must differ from both when set.
func (k Keys) Validate() error {
	if strings.TrimSpace(k.Access) == "" {
		return fmt.Errorf("%w: access key is empty", ErrInvalidKey)
	}
	if strings.TrimSpace(k.Refresh) == "" {
		return fmt.Errorf("%w: refresh key is empty", ErrInvalidKey)
	}
	if k.Access == k.Refresh {
		return fmt.Errorf("%w: access and refresh keys must differ", ErrInvalidKey)
	}
	if k.User != "" && (k.User == k.Access || k.User == k.Refresh) {
		return fmt.Errorf("%w: user key collides with a token key", ErrInvalidKey)
	}
	return nil
}

// SetAll writes values through PairWriter when s supports it, otherwise key by key.
func SetAll(ctx context.Context, s TokenStore, values map[string]string) error {
	if pw, ok := s.(PairWriter); ok {
		return pw.SetMany(ctx, values)
	}
	for key, value := range values {
		if err := s.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAll removes keys through PairWriter when s supports it, otherwise key by key.
// Every key is attempted; the first error is returned.
func RemoveAll(ctx context.Context, s TokenStore, keys ...string) error {
	if pw, ok := s.(PairWriter); ok {
		return pw.RemoveMany(ctx, keys...)
	}
	var first error
	for _, key := range keys {
		if err := s.Remove(ctx, key); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func checkKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}
