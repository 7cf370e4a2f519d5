package sessions

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/google/uuid"
)

var (
	// ErrMissingSubject is the error for a session state that has no subject set.
	ErrMissingSubject = errors.New("sessions: state is missing subject")
	// ErrMissingExpiry is the error for a session state that has no expiry set.
	ErrMissingExpiry = errors.New("sessions: state is missing expiry")
)

// timeNow is time.Now but pulled out as a variable for tests.
var timeNow = time.Now

// registeredClaimNames are the RFC 7519 claims owned by the State struct
// fields. Extra claims may not shadow them.
var registeredClaimNames = map[string]struct{}{
	"iss": {}, "sub": {}, "aud": {}, "exp": {}, "nbf": {}, "iat": {}, "jti": {},
}

// State is the claims payload carried by a session token.
type State struct {
	// Registered claim values (as specified in RFC 7519).
	Issuer    string           `json:"iss,omitempty"`
	Subject   string           `json:"sub,omitempty"`
	Audience  jwt.Audience     `json:"aud,omitempty"`
	Expiry    *jwt.NumericDate `json:"exp,omitempty"`
	NotBefore *jwt.NumericDate `json:"nbf,omitempty"`
	IssuedAt  *jwt.NumericDate `json:"iat,omitempty"`
	ID        string           `json:"jti,omitempty"`

	// Extra holds any non-registered claims. Values are signed and
	// round-tripped with the token but never interpreted.
	Extra map[string]any `json:"-"`
}

// NewState creates session state for a subject. Expiry is stamped relative
// to the current time, issuance and not-before are the current time, and the
// token ID is a fresh UUID.
func NewState(issuer, subject string, expire time.Duration) *State {
	now := timeNow()
	return &State{
		Issuer:    issuer,
		Subject:   subject,
		Expiry:    jwt.NewNumericDate(now.Add(expire)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.New().String(),
	}
}

// IsExpired reports whether the state's expiry has passed. A state whose
// expiry equals the current time is already expired.
func (s *State) IsExpired() bool {
	return s.Expiry != nil && !timeNow().Before(s.Expiry.Time())
}

// Valid returns ErrExpired once the expiry is reached and ErrNotYetValid
// before the not-before time. No clock-skew leeway is applied.
func (s *State) Valid() error {
	if s.IsExpired() {
		return ErrExpired
	}
	if s.NotBefore != nil && timeNow().Before(s.NotBefore.Time()) {
		return ErrNotYetValid
	}
	return nil
}

// MarshalJSON writes the registered claims merged with any Extra claims.
// Extra values never shadow a registered claim.
func (s *State) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(s.Extra)+7)
	for k, v := range s.Extra {
		if _, ok := registeredClaimNames[k]; ok {
			continue
		}
		m[k] = v
	}
	if s.Issuer != "" {
		m["iss"] = s.Issuer
	}
	if s.Subject != "" {
		m["sub"] = s.Subject
	}
	if len(s.Audience) > 0 {
		m["aud"] = s.Audience
	}
	if s.Expiry != nil {
		m["exp"] = s.Expiry
	}
	if s.NotBefore != nil {
		m["nbf"] = s.NotBefore
	}
	if s.IssuedAt != nil {
		m["iat"] = s.IssuedAt
	}
	if s.ID != "" {
		m["jti"] = s.ID
	}
	return json.Marshal(m)
}

// UnmarshalJSON returns a State struct from JSON, capturing non-registered
// claims into Extra. A token must carry at minimum a subject and an expiry.
func (s *State) UnmarshalJSON(data []byte) error {
	type StateAlias State
	a := &struct {
		*StateAlias
	}{
		StateAlias: (*StateAlias)(s),
	}
	if err := json.Unmarshal(data, a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if _, ok := registeredClaimNames[k]; ok {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		if s.Extra == nil {
			s.Extra = make(map[string]any)
		}
		s.Extra[k] = val
	}

	if s.Subject == "" {
		return ErrMissingSubject
	}
	if s.Expiry == nil {
		return ErrMissingExpiry
	}
	return nil
}
