package token

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/golang-jwt/jwt/v5"
)

// Encoder maps payloads to compact base64url JSON segments.
//
// Decoding is strict: padding, non-canonical trailing bits and anything that is not
// a JSON object are rejected with [ErrMalformedEncoding].
type Encoder struct {
	parser *jwt.Parser
	token  *jwt.Token
}

// NewEncoder returns an Encoder using unpadded base64url.
func NewEncoder() *Encoder {
	return &Encoder{
		parser: jwt.NewParser(jwt.WithStrictDecoding()),
		token:  &jwt.Token{},
	}
}

// Encode serializes p. Map keys are emitted in sorted order so equal payloads
// produce equal segments.
func (e *Encoder) Encode(p Payload) (string, error) {
	if p == nil {
		p = Payload{}
	}
	raw, err := json.Marshal(map[string]any(p))
	if err != nil {
		return "", fmt.Errorf("token: encode payload: %w", err)
	}
	return e.EncodeBytes(raw), nil
}

// EncodeBytes base64url-encodes raw bytes as a single segment.
func (e *Encoder) EncodeBytes(raw []byte) string {
	return e.token.EncodeSegment(raw)
}

// Decode is the inverse of Encode. Numbers decode as json.Number so integers beyond
// 2^53 keep every digit.
func (e *Encoder) Decode(seg string) (Payload, error) {
	raw, err := e.DecodeBytes(seg)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformedEncoding)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: not a json object", ErrMalformedEncoding)
	}
	return Payload(out), nil
}

// DecodeBytes reverses EncodeBytes.
func (e *Encoder) DecodeBytes(seg string) ([]byte, error) {
	if seg == "" {
		return nil, fmt.Errorf("%w: empty segment", ErrMalformedEncoding)
	}
	raw, err := e.parser.DecodeSegment(seg)
	if err != nil {
		return nil, errors.Join(ErrMalformedEncoding, err)
	}
	return raw, nil
}
