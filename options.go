package sessions

import (
	"fmt"
	"net/http"
	"time"
)

// A TokenLocation is the transport channel a session token travels on
// between client and server.
type TokenLocation int

const (
	// TokenLocationCookie carries the session token in a named cookie.
	// This is the default.
	TokenLocationCookie TokenLocation = iota
	// TokenLocationAuthorizationHeader reads the session token from the
	// Authorization request header as an rfc6750 bearer token. Tokens are
	// issued to the client through the response body, and clearing a
	// session is a no-op: bearer credentials are client-held.
	TokenLocationAuthorizationHeader
)

// String implements fmt.Stringer.
func (l TokenLocation) String() string {
	switch l {
	case TokenLocationCookie:
		return "cookie"
	case TokenLocationAuthorizationHeader:
		return "authorization-header"
	default:
		return fmt.Sprintf("TokenLocation(%d)", int(l))
	}
}

const (
	// DefaultCookieName is the name of the session cookie when none is
	// configured.
	DefaultCookieName = "jwt"
	// DefaultExpire is how long an issued token remains valid when no
	// duration is configured.
	DefaultExpire = 24 * time.Hour
)

// Options configure session middleware. Options are read once by New and
// never afterwards; the zero value means a cookie named "jwt" expiring
// after 24 hours.
type Options struct {
	// Location selects where session tokens are read from and written to.
	Location TokenLocation

	// CookieName is the name of the session cookie. Ignored for the
	// authorization-header location.
	CookieName string
	// CookieDomain is the optional domain scope of the session cookie.
	CookieDomain string
	// CookieHTTPOnly makes the session cookie invisible to scripts.
	CookieHTTPOnly bool
	// CookieSecure restricts the session cookie to TLS connections.
	CookieSecure bool
	// CookieSameSite is the SameSite mode of the session cookie.
	CookieSameSite http.SameSite

	// Expire is how long issued tokens remain valid. Zero means
	// DefaultExpire; negative durations are a configuration error.
	Expire time.Duration

	// Issuer is an optional value for the iss claim of issued tokens.
	Issuer string
}

func (o *Options) validate() error {
	if o.Expire < 0 {
		return fmt.Errorf("sessions: expire must be positive: %v", o.Expire)
	}
	switch o.Location {
	case TokenLocationCookie, TokenLocationAuthorizationHeader:
	default:
		return fmt.Errorf("sessions: unknown token location: %d", int(o.Location))
	}
	return nil
}
