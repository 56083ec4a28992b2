package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// Delimiter joins the three token segments.
	Delimiter = "."

	// DefaultAccessTTL is the lifetime of tokens minted by MintAccess.
	DefaultAccessTTL = 24 * time.Hour
	// DefaultRefreshTTL is the lifetime of tokens minted by MintRefresh.
	DefaultRefreshTTL = 7 * 24 * time.Hour
	// DefaultIssuer is stamped into iss when Config.Issuer is empty.
	DefaultIssuer = "gosession"

	headerType = "JWT"
)

// Config configures a [Codec].
type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Clock      Clock
}

// Codec mints and verifies tokens for one secret and issuer.
type Codec struct {
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      Clock
	encoder    *Encoder
	signer     *Signer
	header     string
}

// NewCodec validates cfg, fills defaults, and precomputes the constant header segment.
func NewCodec(cfg Config) (*Codec, error) {
	signer, err := NewSigner([]byte(cfg.Secret))
	if err != nil {
		return nil, err
	}
	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 {
		return nil, ErrInvalidTTL
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}

	encoder := NewEncoder()
	header, err := encoder.Encode(Payload{"alg": signer.Alg(), "typ": headerType})
	if err != nil {
		return nil, err
	}

	return &Codec{
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		clock:      cfg.Clock,
		encoder:    encoder,
		signer:     signer,
		header:     header,
	}, nil
}

// Issuer returns the iss value stamped into every token.
func (c *Codec) Issuer() string { return c.issuer }

// AccessTTL returns the access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// Mint stamps iat, exp, iss and jti onto a copy of claims and returns the signed token.
// Caller-supplied values for the stamped claims are discarded.
func (c *Codec) Mint(claims Payload, ttl time.Duration) (string, error) {
	if ttl < 0 {
		return "", ErrInvalidTTL
	}

	iat := c.clock.Now().Unix()
	stamped := claims.Clone()
	stamped[ClaimIssuedAt] = iat
	stamped[ClaimExpiresAt] = iat + int64(ttl/time.Second)
	stamped[ClaimIssuer] = c.issuer
	stamped[ClaimID] = uuid.NewString()

	body, err := c.encoder.Encode(stamped)
	if err != nil {
		return "", err
	}

	signingString := c.header + Delimiter + body
	sig, err := c.signer.Sign(signingString)
	if err != nil {
		return "", err
	}
	return signingString + Delimiter + sig, nil
}

// MintAccess mints an access token. The type claim is forced to "access" so an access
// token can never pass as a refresh token.
func (c *Codec) MintAccess(claims Payload) (string, error) {
	stamped := claims.Clone()
	stamped[ClaimType] = TypeAccess
	return c.Mint(stamped, c.accessTTL)
}

// MintRefresh mints a refresh token carrying only userId and type.
func (c *Codec) MintRefresh(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrMissingUserID
	}
	return c.Mint(Payload{ClaimUserID: userID, ClaimType: TypeRefresh}, c.refreshTTL)
}

// Parse verifies tokenStr and returns its payload, or an error wrapping one of
// ErrStructuralMismatch, ErrSignatureMismatch, ErrMalformedEncoding or ErrExpired.
func (c *Codec) Parse(tokenStr string) (Payload, error) {
	parts := strings.Split(tokenStr, Delimiter)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %d segments", ErrStructuralMismatch, len(parts))
	}
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: empty segment", ErrStructuralMismatch)
		}
	}

	if err := c.signer.Verify(parts[0]+Delimiter+parts[1], parts[2]); err != nil {
		return nil, err
	}

	header, err := c.encoder.Decode(parts[0])
	if err != nil {
		return nil, err
	}
	if alg, _ := header.String("alg"); alg != c.signer.Alg() {
		return nil, ErrUnsupportedAlgorithm
	}

	payload, err := c.encoder.Decode(parts[1])
	if err != nil {
		return nil, err
	}

	exp, ok := payload.ExpiresAt()
	if !ok {
		return nil, fmt.Errorf("%w: missing exp", ErrMalformedEncoding)
	}
	if exp < c.clock.Now().Unix() {
		return nil, ErrExpired
	}

	return payload, nil
}

// Verify is the soft-fail form of Parse: every rejection collapses to (nil, false).
func (c *Codec) Verify(tokenStr string) (Payload, bool) {
	payload, err := c.Parse(tokenStr)
	if err != nil {
		return nil, false
	}
	return payload, true
}

// VerifyRefresh parses tokenStr and additionally requires type "refresh" and a userId.
func (c *Codec) VerifyRefresh(tokenStr string) (Payload, error) {
	payload, err := c.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if !payload.IsRefresh() {
		return nil, ErrWrongTokenType
	}
	if payload.UserID() == "" {
		return nil, ErrMissingUserID
	}
	return payload, nil
}

// VerifyAccess parses tokenStr and rejects refresh tokens with ErrWrongTokenType, so a
// refresh token copied into the access slot never reads as an active session.
func (c *Codec) VerifyAccess(tokenStr string) (Payload, error) {
	payload, err := c.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if payload.IsRefresh() {
		return nil, ErrWrongTokenType
	}
	return payload, nil
}

// sealLabel prefixes the signing input of sealed values so their tags never match a
// token's header.payload signing input.
const sealLabel = "sealed"

// Seal encodes p as "payload.tag", signed with the codec secret. Unlike a token it
// carries no iat, exp or iss.
func (c *Codec) Seal(p Payload) (string, error) {
	body, err := c.encoder.Encode(p)
	if err != nil {
		return "", err
	}
	tag, err := c.signer.Sign(sealLabel + Delimiter + body)
	if err != nil {
		return "", err
	}
	return body + Delimiter + tag, nil
}

// Open verifies a value produced by Seal and returns its payload. Edited values fail
// with ErrSignatureMismatch; anything not shaped "payload.tag" fails with
// ErrStructuralMismatch.
func (c *Codec) Open(sealed string) (Payload, error) {
	body, tag, ok := strings.Cut(sealed, Delimiter)
	if !ok || body == "" || tag == "" || strings.Contains(tag, Delimiter) {
		return nil, fmt.Errorf("%w: sealed value", ErrStructuralMismatch)
	}
	if err := c.signer.Verify(sealLabel+Delimiter+body, tag); err != nil {
		return nil, err
	}
	return c.encoder.Decode(body)
}

// IsRejection reports whether err is one of the token classification errors.
func IsRejection(err error) bool {
	return errors.Is(err, ErrStructuralMismatch) ||
		errors.Is(err, ErrSignatureMismatch) ||
		errors.Is(err, ErrMalformedEncoding) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrWrongTokenType) ||
		errors.Is(err, ErrMissingUserID) ||
		errors.Is(err, ErrUnsupportedAlgorithm)
}
