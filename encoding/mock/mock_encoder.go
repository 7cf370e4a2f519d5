// Package mock implements the encoding interfaces with canned responses
// for testing.
package mock

import (
	"github.com/pomerium/sessions/encoding"
)

var _ encoding.MarshalUnmarshaler = Encoder{}
var _ encoding.Marshaler = Encoder{}
var _ encoding.Unmarshaler = Encoder{}

// Encoder is a mock implementation of the encoding interfaces.
type Encoder struct {
	MarshalResponse []byte
	MarshalError    error
	UnmarshalError  error
}

// Marshal returns the mocked response and error.
func (mc Encoder) Marshal(any) ([]byte, error) {
	return mc.MarshalResponse, mc.MarshalError
}

// Unmarshal returns the mocked error.
func (mc Encoder) Unmarshal([]byte, any) error {
	return mc.UnmarshalError
}
