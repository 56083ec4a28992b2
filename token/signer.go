package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer produces HMAC-SHA256 tags over "header.payload" signing strings.
type Signer struct {
	key     []byte
	method  *jwt.SigningMethodHMAC
	encoder *Encoder
}

// NewSigner copies secret and returns a Signer bound to it.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Signer{
		key:     key,
		method:  jwt.SigningMethodHS256,
		encoder: NewEncoder(),
	}, nil
}

// Alg returns the JOSE algorithm name, "HS256".
func (s *Signer) Alg() string {
	return s.method.Alg()
}

// Sign returns the base64url tag for message.
func (s *Signer) Sign(message string) (string, error) {
	sig, err := s.method.Sign(message, s.key)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return s.encoder.EncodeBytes(sig), nil
}

// Verify recomputes the tag for message and compares it with tag.
func (s *Signer) Verify(message, tag string) error {
	sig, err := s.encoder.DecodeBytes(tag)
	if err != nil {
		return fmt.Errorf("%w: undecodable tag", ErrSignatureMismatch)
	}
	if err := s.method.Verify(message, sig, s.key); err != nil {
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return ErrSignatureMismatch
		}
		return fmt.Errorf("%w: %v", ErrSignatureMismatch, err)
	}
	return nil
}
