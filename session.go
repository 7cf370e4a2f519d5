package sessions

import (
	"fmt"
	"net/http"

	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/google/uuid"

	"github.com/pomerium/sessions/encoding/jws"
	"github.com/pomerium/sessions/internal/log"
)

// A Middleware issues, loads and clears session tokens based on the options.
type Middleware struct {
	options Options
	store   SessionStore
}

var _ SessionStore = (*Middleware)(nil)

// New creates session middleware from a signing key and a set of options.
//
// The signing key authenticates every token the middleware issues or
// accepts. It must be non-empty and must be kept secret: anyone holding it
// can mint sessions for arbitrary subjects. A nil opts selects the defaults,
// tokens in a cookie named "jwt" expiring after 24 hours.
func New(signingKey []byte, opts *Options) (*Middleware, error) {
	options := Options{}
	if opts != nil {
		options = *opts
	}
	if options.CookieName == "" {
		options.CookieName = DefaultCookieName
	}
	if options.Expire == 0 {
		options.Expire = DefaultExpire
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	encoder, err := jws.NewHS256Signer(signingKey)
	if err != nil {
		return nil, fmt.Errorf("sessions: invalid signing key: %w", err)
	}

	m := &Middleware{
		options: options,
	}
	switch options.Location {
	case TokenLocationCookie:
		m.store, err = NewCookieStore(&CookieStoreOptions{
			Name:     options.CookieName,
			Domain:   options.CookieDomain,
			Expire:   options.Expire,
			HTTPOnly: options.CookieHTTPOnly,
			Secure:   options.CookieSecure,
			SameSite: options.CookieSameSite,
		}, encoder)
	case TokenLocationAuthorizationHeader:
		m.store, err = NewHeaderStore(encoder)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// SetSession establishes a session for a subject: a fresh signed token is
// written to the response. Calling SetSession again reissues: the newly
// written token replaces the old one.
func (m *Middleware) SetSession(w http.ResponseWriter, r *http.Request, subject string) error {
	if subject == "" {
		return ErrMissingSubject
	}
	return m.store.SaveSession(w, r, NewState(m.options.Issuer, subject, m.options.Expire))
}

// SetSessionState establishes a session from caller supplied state, letting
// the caller attach Extra claims. A missing issuer, expiry, not-before,
// issuance time or token ID is stamped the same way SetSession stamps them;
// the subject must be set. The caller's state is not modified.
func (m *Middleware) SetSessionState(w http.ResponseWriter, r *http.Request, state *State) error {
	if state == nil || state.Subject == "" {
		return ErrMissingSubject
	}
	s := *state
	now := timeNow()
	if s.Issuer == "" {
		s.Issuer = m.options.Issuer
	}
	if s.Expiry == nil {
		s.Expiry = jwt.NewNumericDate(now.Add(m.options.Expire))
	}
	if s.NotBefore == nil {
		s.NotBefore = jwt.NewNumericDate(now)
	}
	if s.IssuedAt == nil {
		s.IssuedAt = jwt.NewNumericDate(now)
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return m.store.SaveSession(w, r, &s)
}

// SaveSession saves a session state to the response.
func (m *Middleware) SaveSession(w http.ResponseWriter, r *http.Request, state *State) error {
	return m.store.SaveSession(w, r, state)
}

// ClearSession removes the session from the response. For cookie sessions an
// already-expired empty cookie replaces the session cookie; for header
// sessions this is a no-op. An absent session is not an error.
func (m *Middleware) ClearSession(w http.ResponseWriter, r *http.Request) {
	m.store.ClearSession(w, r)
}

// LoadSession loads the session state from a request without checking its
// validity times. Most callers want LoadSessionState or AuthorizedUser.
func (m *Middleware) LoadSession(r *http.Request) (*State, error) {
	return m.store.LoadSession(r)
}

// LoadSessionState loads the session state from a request and checks its
// validity times.
func (m *Middleware) LoadSessionState(r *http.Request) (*State, error) {
	state, err := m.store.LoadSession(r)
	if err != nil {
		return nil, err
	}
	if err := state.Valid(); err != nil {
		// a little unusual but we want to return the expired state too
		return state, err
	}
	return state, nil
}

// AuthorizedUser returns the subject of the request's session and reports
// whether the request carries a valid one. All failures look alike to the
// caller: a missing, malformed, tampered or expired session is analogous to
// an anonymous request. The reason is logged at debug level.
//
// AuthorizedUser only reads from the request, so it is safe to call any
// number of times.
func (m *Middleware) AuthorizedUser(r *http.Request) (user string, ok bool) {
	state, err := m.LoadSessionState(r)
	if err != nil {
		log.FromRequest(r).Debug().Err(err).Msg("sessions: reject session")
		return "", false
	}
	if state.Subject == "" {
		return "", false
	}
	return state.Subject, true
}

// RetrieveSession is http middleware that loads the request's session and
// makes the result available downstream through the request context.
func (m *Middleware) RetrieveSession(next http.Handler) http.Handler {
	return RetrieveSession(m.store)(next)
}
