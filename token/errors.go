package token

import "errors"

var (
	// ErrMalformedEncoding is returned when a segment is not base64url JSON object data.
	ErrMalformedEncoding = errors.New("token: malformed encoding")
	// ErrStructuralMismatch is returned when a token does not split into three non-empty segments.
	ErrStructuralMismatch = errors.New("token: structural mismatch")
	// ErrSignatureMismatch is returned when the recomputed tag differs from the presented one.
	ErrSignatureMismatch = errors.New("token: signature mismatch")
	// ErrExpired is returned when exp is earlier than the current clock second.
	ErrExpired = errors.New("token: expired")
	// ErrWrongTokenType is returned when a refresh-only path is handed another kind of token.
	ErrWrongTokenType = errors.New("token: wrong token type")
	// ErrMissingSecret is returned when a signer is built without a secret.
	ErrMissingSecret = errors.New("token: missing secret")
	// ErrInvalidTTL is returned for negative lifetimes.
	ErrInvalidTTL = errors.New("token: invalid ttl")
	// ErrMissingUserID is returned when a refresh token is requested or presented without userId.
	ErrMissingUserID = errors.New("token: missing user id")
	// ErrUnsupportedAlgorithm is returned when the header names an algorithm other than HS256.
	ErrUnsupportedAlgorithm = errors.New("token: unsupported algorithm")
)
