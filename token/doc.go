// Package token mints and verifies the three-segment session credential
// (base64url(header).base64url(payload).base64url(hmac-sha256)).
//
// # Components
//
//   - [Encoder] maps a [Payload] to a base64url JSON segment and back.
//   - [Signer] computes and checks the HMAC-SHA256 tag over "header.payload".
//   - [Codec] composes both, stamps iat/exp/iss on mint and enforces expiry on parse.
//
// # Trust model
//
// The signing secret ships with the client and the same party mints and verifies.
// The tag gives tamper-evidence against accidental corruption and naive edits only;
// anyone able to read the client's source or memory can forge tokens. Nothing in this
// package is a substitute for server-side authorization.
//
// # What this package must NOT do
//
//   - Persist tokens or touch any storage backend.
//   - Import goSession or store (no upward imports).
//   - Make authorization decisions from claims.
package token
