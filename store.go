package sessions

import (
	"errors"
	"net/http"
)

var (
	// ErrExpired is the error for an expired session.
	ErrExpired = errors.New("sessions: session is expired")
	// ErrNotYetValid is the error for a session used before its not-before time.
	ErrNotYetValid = errors.New("sessions: session is not yet valid")
	// ErrNoSessionFound is the error for when no session is found.
	ErrNoSessionFound = errors.New("sessions: session is not found")
	// ErrMalformed is the error for when a session is found but is malformed.
	ErrMalformed = errors.New("sessions: session is malformed")
)

// SessionStore has the functions for setting, getting, and clearing the
// session token on a request/response pair.
type SessionStore interface {
	ClearSession(http.ResponseWriter, *http.Request)
	LoadSession(*http.Request) (*State, error)
	SaveSession(http.ResponseWriter, *http.Request, *State) error
}

// SessionLoader is implemented by any struct that loads a session from a
// request and returns the user state.
type SessionLoader interface {
	LoadSession(*http.Request) (*State, error)
}
