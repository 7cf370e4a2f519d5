package sessions

import (
	"context"
	"net/http"

	"github.com/pomerium/sessions/internal/log"
)

// Context keys
var (
	sessionCtxKey = &contextKey{"Session"}
	errorCtxKey   = &contextKey{"Error"}
)

// RetrieveSession is http middleware that loads and validates the session
// from an incoming request and makes the result available to downstream
// handlers through the request context.
//
// The middleware never rejects a request: downstream handlers decide what an
// absent or invalid session means for them. See FromContext.
func RetrieveSession(l SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			state, err := loadFromRequest(l, r)
			if err != nil {
				log.FromRequest(r).Debug().Err(err).Msg("sessions: load session")
			}
			ctx = NewContext(ctx, state, err)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func loadFromRequest(l SessionLoader, r *http.Request) (*State, error) {
	state, err := l.LoadSession(r)
	if err != nil {
		return nil, err
	}
	if err := state.Valid(); err != nil {
		// a little unusual but we want to return the expired state too
		return state, err
	}
	return state, nil
}

// NewContext sets context values for the user session state and error.
func NewContext(ctx context.Context, t *State, err error) context.Context {
	ctx = context.WithValue(ctx, sessionCtxKey, t)
	ctx = context.WithValue(ctx, errorCtxKey, err)
	return ctx
}

// FromContext retrieves context values for the user session state and error.
func FromContext(ctx context.Context) (*State, error) {
	state, _ := ctx.Value(sessionCtxKey).(*State)
	err, _ := ctx.Value(errorCtxKey).(error)
	return state, err
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation. This technique
// for defining context keys was copied from Go 1.7's new use of context in net/http.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "SessionStore context value " + k.name
}
