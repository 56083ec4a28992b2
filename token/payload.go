package token

import (
	"encoding/json"
	"maps"
	"math"

	"github.com/golang-jwt/jwt/v5"
)

// Reserved claim names.
const (
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
	ClaimIssuer    = "iss"
	ClaimType      = "type"
	ClaimUserID    = "userId"
	ClaimID        = "jti"
)

// Values carried in the type claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Payload is an open claim set. Values decoded from a token are JSON-native except
// numbers, which come back as json.Number.
type Payload map[string]any

// Clone returns a shallow copy. A nil payload clones to an empty one.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	maps.Copy(out, p)
	return out
}

// String returns a string claim.
func (p Payload) String(name string) (string, bool) {
	v, ok := p[name].(string)
	return v, ok
}

// Int64 returns a numeric claim truncated to an integer.
func (p Payload) Int64(name string) (int64, bool) {
	switch v := p[name].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return n, true
	default:
		return 0, false
	}
}

// IssuedAt returns iat in epoch seconds.
func (p Payload) IssuedAt() (int64, bool) {
	return p.numericDate(ClaimIssuedAt, jwt.MapClaims(p).GetIssuedAt)
}

// ExpiresAt returns exp in epoch seconds.
func (p Payload) ExpiresAt() (int64, bool) {
	return p.numericDate(ClaimExpiresAt, jwt.MapClaims(p).GetExpirationTime)
}

// Issuer returns the iss claim.
func (p Payload) Issuer() string {
	iss, err := jwt.MapClaims(p).GetIssuer()
	if err != nil {
		return ""
	}
	return iss
}

// Type returns the type claim, or "" when absent.
func (p Payload) Type() string {
	t, _ := p.String(ClaimType)
	return t
}

// UserID returns the userId claim, or "" when absent or not a string.
func (p Payload) UserID() string {
	id, _ := p.String(ClaimUserID)
	return id
}

// IsRefresh reports whether the payload is marked as a refresh token.
func (p Payload) IsRefresh() bool {
	return p.Type() == TypeRefresh
}

func (p Payload) numericDate(name string, get func() (*jwt.NumericDate, error)) (int64, bool) {
	d, err := get()
	if err == nil && d != nil {
		return d.Unix(), true
	}
	// MapClaims only understands float64 and json.Number; Int64 also takes ints.
	return p.Int64(name)
}
