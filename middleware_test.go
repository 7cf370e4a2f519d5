package sessions

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/pomerium/sessions/encoding/jws"
)

func testAuthorizer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := FromContext(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func TestRetrieveSession(t *testing.T) {
	fnh := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, http.StatusText(http.StatusOK))
	})

	encoder, err := jws.NewHS256Signer(NewSigningKey())
	if err != nil {
		t.Fatal(err)
	}
	store, err := NewHeaderStore(encoder)
	if err != nil {
		t.Fatal(err)
	}

	mustSign := func(state *State) string {
		raw, err := encoder.Marshal(state)
		if err != nil {
			t.Fatal(err)
		}
		return string(raw)
	}

	tests := []struct {
		name       string
		token      string
		wantBody   string
		wantStatus int
	}{
		{"good session", mustSign(&State{Subject: "user", Expiry: jwt.NewNumericDate(time.Now().Add(10 * time.Minute))}), http.StatusText(http.StatusOK), http.StatusOK},
		{"expired session", mustSign(&State{Subject: "user", Expiry: jwt.NewNumericDate(time.Now().Add(-10 * time.Minute))}), "sessions: session is expired\n", http.StatusUnauthorized},
		{"malformed session", "malformed", "sessions: session is malformed\n", http.StatusUnauthorized},
		{"no session", "", "sessions: session is not found\n", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				r.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()

			got := RetrieveSession(store)(testAuthorizer(fnh))
			got.ServeHTTP(w, r)

			if diff := cmp.Diff(w.Body.String(), tt.wantBody); diff != "" {
				t.Errorf("RetrieveSession() = %v", diff)
			}
			if diff := cmp.Diff(w.Result().StatusCode, tt.wantStatus); diff != "" {
				t.Errorf("RetrieveSession() = %v", diff)
			}
		})
	}
}

func TestRetrieveSession_ExpiredStateInContext(t *testing.T) {
	encoder, err := jws.NewHS256Signer(NewSigningKey())
	if err != nil {
		t.Fatal(err)
	}
	store, err := NewHeaderStore(encoder)
	if err != nil {
		t.Fatal(err)
	}

	raw, err := encoder.Marshal(&State{Subject: "user", Expiry: jwt.NewNumericDate(time.Now().Add(-10 * time.Minute))})
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+string(raw))
	w := httptest.NewRecorder()

	h := RetrieveSession(store)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		state, err := FromContext(r.Context())
		assert.ErrorIs(t, err, ErrExpired)
		// the expired state still comes through for callers that want it
		if assert.NotNil(t, state) {
			assert.Equal(t, "user", state.Subject)
		}
	}))
	h.ServeHTTP(w, r)
}

func TestRetrieveSession_MockStore(t *testing.T) {
	fnh := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, _ := FromContext(r.Context())
		fmt.Fprint(w, state.Subject)
	})

	t.Run("good", func(t *testing.T) {
		ms := &MockSessionStore{Session: &State{Subject: "user", Expiry: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
		w := httptest.NewRecorder()
		RetrieveSession(ms)(testAuthorizer(fnh)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user", w.Body.String())
	})

	t.Run("load error", func(t *testing.T) {
		ms := &MockSessionStore{LoadError: ErrNoSessionFound}
		w := httptest.NewRecorder()
		RetrieveSession(ms)(testAuthorizer(fnh)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestNewContext_FromContext(t *testing.T) {
	state := &State{Subject: "user"}
	ctx := NewContext(context.Background(), state, ErrExpired)

	got, err := FromContext(ctx)
	if got != state {
		t.Errorf("FromContext() state = %v, want %v", got, state)
	}
	assert.ErrorIs(t, err, ErrExpired)

	got, err = FromContext(context.Background())
	assert.Nil(t, got)
	assert.NoError(t, err)
}
