package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeledger/superadmin/internal/models"
)

// fakeServer mimics the login/verify/logout surface with a TOTP-backed
// fixed identity.
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			TOTPCode string `json:"totpCode"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		if req.Username != "superadmin" || req.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"error": "invalid_credentials"})
			return
		}
		if req.TOTPCode == "" {
			json.NewEncoder(w).Encode(map[string]any{
				"requires2FA": true, "token": "pending", "expiresIn": 7200,
			})
			return
		}
		if req.TOTPCode != "123456" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"error": "invalid_credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true, "token": "verified", "expiresIn": 7200,
		})
	})
	mux.HandleFunc("/verify", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") == "Bearer verified" {
			json.NewEncoder(w).Encode(map[string]any{
				"valid": true,
				"user":  map[string]any{"username": "superadmin", "role": "superadmin"},
			})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"valid": false})
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_TwoStepLogin(t *testing.T) {
	srv := fakeServer(t)
	c := New(srv.URL, srv.Client())

	assert.Equal(t, StateLoggedOut, c.State())

	err := c.Login(context.Background(), "superadmin", "pw")
	assert.ErrorIs(t, err, models.ErrSecondFactorRequired)
	assert.Equal(t, StateAwaitingSecondFactor, c.State())
	assert.Equal(t, "pending", c.Token())

	require.NoError(t, c.CompleteLogin(context.Background(), "123456"))
	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "verified", c.Token())
	assert.False(t, c.ExpiresAt().IsZero())
}

func TestClient_WrongPassword(t *testing.T) {
	srv := fakeServer(t)
	c := New(srv.URL, srv.Client())

	err := c.Login(context.Background(), "superadmin", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Equal(t, StateLoggedOut, c.State())
	assert.Empty(t, c.Token())
}

func TestClient_WrongCodeKeepsAwaitingState(t *testing.T) {
	srv := fakeServer(t)
	c := New(srv.URL, srv.Client())

	_ = c.Login(context.Background(), "superadmin", "pw")
	require.Equal(t, StateAwaitingSecondFactor, c.State())

	err := c.CompleteLogin(context.Background(), "999999")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	// A fresh code can still be submitted.
	assert.Equal(t, StateAwaitingSecondFactor, c.State())
	require.NoError(t, c.CompleteLogin(context.Background(), "123456"))
	assert.Equal(t, StateAuthenticated, c.State())
}

func TestClient_CompleteLoginWithoutPendingStep(t *testing.T) {
	srv := fakeServer(t)
	c := New(srv.URL, srv.Client())

	err := c.CompleteLogin(context.Background(), "123456")
	assert.Error(t, err)
}

func TestClient_Resume(t *testing.T) {
	srv := fakeServer(t)
	c := New(srv.URL, srv.Client())

	require.NoError(t, c.Resume(context.Background(), "verified"))
	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "verified", c.Token())

	c2 := New(srv.URL, srv.Client())
	err := c2.Resume(context.Background(), "stale-or-tampered")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
	assert.Equal(t, StateLoggedOut, c2.State())
}

func TestClient_Logout(t *testing.T) {
	srv := fakeServer(t)
	c := New(srv.URL, srv.Client())

	_ = c.Login(context.Background(), "superadmin", "pw")
	require.NoError(t, c.CompleteLogin(context.Background(), "123456"))

	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, StateLoggedOut, c.State())
	assert.Empty(t, c.Token())
}
