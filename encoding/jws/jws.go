// Package jws represents content secured with digital signatures
// using JSON-based data structures as specified by rfc7515.
package jws

import (
	"errors"
	"fmt"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"

	"github.com/pomerium/sessions/encoding"
)

var (
	// ErrMalformedToken is the error for a token that is not a structurally
	// valid compact JWS.
	ErrMalformedToken = errors.New("encoding/jws: malformed token")
	// ErrUnexpectedAlgorithm is the error for a token whose header names a
	// signature algorithm other than the one the verifier is pinned to,
	// "none" included.
	ErrUnexpectedAlgorithm = errors.New("encoding/jws: unexpected signature algorithm")
	// ErrInvalidSignature is the error for a token whose signature does not
	// verify under the configured key.
	ErrInvalidSignature = errors.New("encoding/jws: invalid signature")
)

// JSONWebSigner signs and verifies JWTs with a symmetric key.
// https://tools.ietf.org/html/rfc7519
type JSONWebSigner struct {
	Signer jose.Signer

	key []byte
}

// NewHS256Signer creates an HMAC-SHA256 JWT signer from a secret key.
// The key must be non-empty and must be kept secret.
func NewHS256Signer(key []byte) (encoding.MarshalUnmarshaler, error) {
	if len(key) == 0 {
		return nil, errors.New("encoding/jws: signing key cannot be empty")
	}
	sig, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return nil, err
	}
	return &JSONWebSigner{Signer: sig, key: key}, nil
}

// Marshal signs, and serializes a JWT.
func (c *JSONWebSigner) Marshal(x any) ([]byte, error) {
	s, err := jwt.Signed(c.Signer).Claims(x).CompactSerialize()
	return []byte(s), err
}

// Unmarshal parses and validates a signed JWT.
//
// Verification is pinned to HS256: a token claiming any other algorithm is
// rejected without consulting its signature. Signature comparison is
// constant time. Claim errors raised by the destination's own UnmarshalJSON
// are returned unchanged.
func (c *JSONWebSigner) Unmarshal(value []byte, s any) error {
	tok, err := jwt.ParseSigned(string(value))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if len(tok.Headers) != 1 || tok.Headers[0].Algorithm != string(jose.HS256) {
		return ErrUnexpectedAlgorithm
	}
	if err := tok.Claims(c.key, s); err != nil {
		if errors.Is(err, jose.ErrCryptoFailure) {
			return ErrInvalidSignature
		}
		return err
	}
	return nil
}
