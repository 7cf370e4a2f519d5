package sessions

import (
	"crypto/rand"
	"encoding/base64"
)

// DefaultKeySize is the default signing key size in bytes.
const DefaultKeySize = 32

// NewSigningKey generates a random 32-byte (256 bit) signing key.
//
// Panics if source of randomness fails.
func NewSigningKey() []byte {
	return randomBytes(DefaultKeySize)
}

// NewBase64SigningKey generates a random base64 encoded 32-byte signing key.
//
// Panics if source of randomness fails.
func NewBase64SigningKey() string {
	return base64.StdEncoding.EncodeToString(randomBytes(DefaultKeySize))
}

// randomBytes generates C number of random bytes suitable for cryptographic
// operations.
//
// Panics if source of randomness fails.
func randomBytes(c int) []byte {
	if c < 0 {
		c = DefaultKeySize
	}
	b := make([]byte, c)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}
