package sessions

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pomerium/sessions/encoding"
)

const (
	// ChunkedCanaryByte is the byte value used as a canary prefix to distinguish if
	// the cookie is multi-part or not. This constant *should not* be valid
	// base64. It's important this byte is ASCII to avoid UTF-8 variable sized runes.
	// https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/Set-Cookie#Directives
	ChunkedCanaryByte byte = '%'
	// MaxChunkSize sets the upper bound on a cookie chunks payload value.
	// Note, this should be lower than the actual cookie's max size (4096 bytes)
	// which includes metadata.
	MaxChunkSize = 3800
	// MaxNumChunks limits the number of chunks to iterate through. Conservatively
	// set to prevent any abuse.
	MaxNumChunks = 5
)

var _ SessionStore = (*CookieStore)(nil)
var _ SessionLoader = (*CookieStore)(nil)

// CookieStore implements the session store interface for session cookies.
type CookieStore struct {
	Name     string
	Domain   string
	Expire   time.Duration
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite

	encoder encoding.Marshaler
	decoder encoding.Unmarshaler
}

// CookieStoreOptions holds options for CookieStore.
type CookieStoreOptions struct {
	Name     string
	Domain   string
	Expire   time.Duration
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
}

// NewCookieStore creates a cookie session store from a set of options and a
// token encoder.
func NewCookieStore(opts *CookieStoreOptions, encoder encoding.MarshalUnmarshaler) (*CookieStore, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("sessions: cookie name cannot be empty")
	}
	if encoder == nil {
		return nil, fmt.Errorf("sessions: encoder cannot be nil")
	}
	return &CookieStore{
		Name:     opts.Name,
		Domain:   opts.Domain,
		Expire:   opts.Expire,
		HTTPOnly: opts.HTTPOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
		encoder:  encoder,
		decoder:  encoder,
	}, nil
}

func (cs *CookieStore) makeCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     cs.Name,
		Value:    value,
		Path:     "/",
		Domain:   cs.Domain,
		HttpOnly: cs.HTTPOnly,
		Secure:   cs.Secure,
		SameSite: cs.SameSite,
		Expires:  timeNow().Add(cs.Expire),
	}
}

// ClearSession clears the session cookie from a request.
func (cs *CookieStore) ClearSession(w http.ResponseWriter, _ *http.Request) {
	c := cs.makeCookie("")
	c.MaxAge = -1
	c.Expires = timeNow().Add(-time.Hour)
	http.SetCookie(w, c)
}

func getCookies(r *http.Request, name string) []*http.Cookie {
	allCookies := r.Cookies()
	matchedCookies := make([]*http.Cookie, 0, len(allCookies))
	for _, c := range allCookies {
		if strings.EqualFold(c.Name, name) {
			matchedCookies = append(matchedCookies, c)
		}
	}
	return matchedCookies
}

// LoadSession returns a State from the cookie in the request.
func (cs *CookieStore) LoadSession(r *http.Request) (*State, error) {
	cookies := getCookies(r, cs.Name)
	if len(cookies) == 0 {
		return nil, ErrNoSessionFound
	}
	for _, c := range cookies {
		data := loadChunkedCookie(r, c)

		state := &State{}
		if err := cs.decoder.Unmarshal([]byte(data), state); err == nil {
			return state, nil
		}
	}
	return nil, ErrMalformed
}

// SaveSession saves a session state to a request's cookie store.
func (cs *CookieStore) SaveSession(w http.ResponseWriter, _ *http.Request, state *State) error {
	data, err := cs.encoder.Marshal(state)
	if err != nil {
		return err
	}
	cs.setCookie(w, cs.makeCookie(string(data)))
	return nil
}

func (cs *CookieStore) setCookie(w http.ResponseWriter, cookie *http.Cookie) {
	if len(cookie.String()) <= MaxChunkSize {
		http.SetCookie(w, cookie)
		return
	}
	for i, c := range chunk(cookie.Value, MaxChunkSize) {
		// start with a copy of our original cookie
		nc := *cookie
		if i == 0 {
			// if this is the first cookie, add our canary byte
			nc.Value = fmt.Sprintf("%s%s", string(ChunkedCanaryByte), c)
		} else {
			// subsequent parts will be postfixed with their part number
			nc.Name = fmt.Sprintf("%s_%d", cookie.Name, i)
			nc.Value = c
		}
		http.SetCookie(w, &nc)
	}
}

func loadChunkedCookie(r *http.Request, c *http.Cookie) string {
	if len(c.Value) == 0 {
		return ""
	}
	if c.Value[0] != ChunkedCanaryByte {
		return c.Value
	}

	// the first byte is our canary byte, so reassemble the multipart cookie
	var b strings.Builder
	b.WriteString(c.Value[1:])
	for i := 1; i <= MaxNumChunks; i++ {
		next, err := r.Cookie(fmt.Sprintf("%s_%d", c.Name, i))
		if err != nil {
			break // break if we can't find the next cookie
		}
		b.WriteString(next.Value)
	}
	return b.String()
}

func chunk(s string, size int) []string {
	ss := make([]string, 0, len(s)/size+1)
	for len(s) > 0 {
		if len(s) < size {
			size = len(s)
		}
		ss, s = append(ss, s[:size]), s[size:]
	}
	return ss
}
