package sessions

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pomerium/sessions/encoding"
)

const (
	defaultAuthHeader = "Authorization"
	defaultAuthType   = "Bearer"
)

var _ SessionStore = (*HeaderStore)(nil)
var _ SessionLoader = (*HeaderStore)(nil)

// HeaderStore implements the session store interface using http
// authorization headers.
type HeaderStore struct {
	authHeader string
	authType   string
	encoder    encoding.Marshaler
	decoder    encoding.Unmarshaler
}

// NewHeaderStore returns a new header store for loading sessions from
// authorization headers as defined in rfc6750.
//
// NOTA BENE: While most servers do not log Authorization headers by default,
// you should ensure no other services are logging or leaking your auth headers.
func NewHeaderStore(encoder encoding.MarshalUnmarshaler) (*HeaderStore, error) {
	if encoder == nil {
		return nil, fmt.Errorf("sessions: encoder cannot be nil")
	}
	return &HeaderStore{
		authHeader: defaultAuthHeader,
		authType:   defaultAuthType,
		encoder:    encoder,
		decoder:    encoder,
	}, nil
}

// LoadSession tries to retrieve the token string from the Authorization header.
func (hs *HeaderStore) LoadSession(r *http.Request) (*State, error) {
	jwt := TokenFromHeader(r, hs.authHeader, hs.authType)
	if jwt == "" {
		return nil, ErrNoSessionFound
	}
	var session State
	if err := hs.decoder.Unmarshal([]byte(jwt), &session); err != nil {
		return nil, ErrMalformed
	}
	return &session, nil
}

// HeaderStoreResponse is the JSON struct returned to the client.
type HeaderStoreResponse struct {
	// Token is the signed session that can be used to programmatically
	// authenticate subsequent requests.
	Token string `json:"token"`
	// In addition to the token, non-sensitive meta data is returned to help
	// the client manage token renewals.
	Expiry time.Time `json:"expiry"`
}

// SaveSession returns the signed session to the client as a JSON object
// instead of a response header, because header sessions are stateless: the
// client holds the token and replays it on each request.
func (hs *HeaderStore) SaveSession(w http.ResponseWriter, _ *http.Request, state *State) error {
	token, err := hs.encoder.Marshal(state)
	if err != nil {
		return err
	}
	var expiry time.Time
	if state.Expiry != nil {
		expiry = state.Expiry.Time()
	}
	jsonBytes, err := json.Marshal(
		&HeaderStoreResponse{
			Token:  string(token),
			Expiry: expiry,
		})
	if err != nil {
		return fmt.Errorf("sessions: couldn't marshal token struct: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(jsonBytes)
	return nil
}

// ClearSession is a no-op for header sessions: the token is held by the
// client and cannot be retracted by the server.
func (hs *HeaderStore) ClearSession(_ http.ResponseWriter, _ *http.Request) {}

// TokenFromHeader retrieves the value of the authorization header from a given
// request, header key, and authentication type.
func TokenFromHeader(r *http.Request, authHeader, authType string) string {
	bearer := r.Header.Get(authHeader)
	prefix := authType + " "
	if len(bearer) > len(prefix) && strings.EqualFold(bearer[:len(prefix)], prefix) {
		return bearer[len(prefix):]
	}
	return ""
}
