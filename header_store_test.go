package sessions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomerium/sessions/encoding/jws"
)

func TestNewHeaderStore(t *testing.T) {
	encoder, err := jws.NewHS256Signer(NewSigningKey())
	require.NoError(t, err)

	got, err := NewHeaderStore(encoder)
	require.NoError(t, err)
	assert.NotNil(t, got)

	_, err = NewHeaderStore(nil)
	assert.Error(t, err)
}

func TestHeaderStore_LoadSession(t *testing.T) {
	encoder, err := jws.NewHS256Signer(NewSigningKey())
	require.NoError(t, err)
	store, err := NewHeaderStore(encoder)
	require.NoError(t, err)

	raw, err := encoder.Marshal(&State{Subject: "user", Expiry: jwt.NewNumericDate(time.Now().Add(10 * time.Minute))})
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		wantErr       error
	}{
		{"good bearer", "Bearer " + string(raw), nil},
		{"lowercase scheme", "bearer " + string(raw), nil},
		{"basic scheme", "Basic dXNlcjpwYXNz", ErrNoSessionFound},
		{"absent", "", ErrNoSessionFound},
		{"no space after scheme", "Bearer" + string(raw), ErrNoSessionFound},
		{"garbage token", "Bearer garbage", ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authorization != "" {
				r.Header.Set("Authorization", tt.authorization)
			}
			got, err := store.LoadSession(r)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user", got.Subject)
		})
	}
}

func TestHeaderStore_SaveSession(t *testing.T) {
	encoder, err := jws.NewHS256Signer(NewSigningKey())
	require.NoError(t, err)
	store, err := NewHeaderStore(encoder)
	require.NoError(t, err)

	state := &State{Subject: "user", Expiry: jwt.NewNumericDate(time.Now().Add(10 * time.Minute))}
	w := httptest.NewRecorder()
	require.NoError(t, store.SaveSession(w, httptest.NewRequest(http.MethodPost, "/login", nil), state))

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp HeaderStoreResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Expiry.Equal(state.Expiry.Time()), "Expiry = %v, want %v", resp.Expiry, state.Expiry.Time())

	// the returned token authenticates a followup request
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+resp.Token)
	got, err := store.LoadSession(r)
	require.NoError(t, err)
	assert.Equal(t, "user", got.Subject)
}

func TestHeaderStore_ClearSession(t *testing.T) {
	encoder, err := jws.NewHS256Signer(NewSigningKey())
	require.NoError(t, err)
	store, err := NewHeaderStore(encoder)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	store.ClearSession(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header())
	assert.Zero(t, w.Body.Len())
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		name          string
		authorization string
		authType      string
		want          string
	}{
		{"bearer", "Bearer JWT", "Bearer", "JWT"},
		{"case insensitive", "bearer JWT", "Bearer", "JWT"},
		{"custom type", "Pomerium JWT", "Pomerium", "JWT"},
		{"no space after scheme", "BearerJWT", "Bearer", ""},
		{"wrong type", "Basic JWT", "Bearer", ""},
		{"empty token", "Bearer ", "Bearer", ""},
		{"empty header", "", "Bearer", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://localhost/some/url", nil)
			if tt.authorization != "" {
				r.Header.Set("Authorization", tt.authorization)
			}
			if got := TokenFromHeader(r, "Authorization", tt.authType); got != tt.want {
				t.Errorf("TokenFromHeader() = %q, want %q", got, tt.want)
			}
		})
	}
}
