package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeledger/superadmin/internal/models"
)

type fakeOpener struct {
	OpenFunc func(token string) (*models.SessionClaims, error)
}

func (f *fakeOpener) Open(token string) (*models.SessionClaims, error) {
	return f.OpenFunc(token)
}

type recordedFailure struct {
	Reason    string
	IP        string
	UserAgent string
}

type fakeRecorder struct {
	Failures []recordedFailure
}

func (f *fakeRecorder) RecordVerifyFailure(ctx context.Context, reason, ip, userAgent string) {
	f.Failures = append(f.Failures, recordedFailure{Reason: reason, IP: ip, UserAgent: userAgent})
}

func acceptToken(valid string) *fakeOpener {
	return &fakeOpener{OpenFunc: func(token string) (*models.SessionClaims, error) {
		if token == valid {
			return &models.SessionClaims{Role: models.RoleSuperAdmin, TwoFactorVerified: true}, nil
		}
		return nil, models.ErrInvalidToken
	}}
}

func runRequireSession(t *testing.T, opener SessionOpener, recorder VerifyFailureRecorder, mutate func(*http.Request)) (*httptest.ResponseRecorder, *models.SessionClaims) {
	t.Helper()

	var seen *models.SessionClaims
	handler := RequireSession(opener, recorder, func(r *http.Request) string { return "203.0.113.9" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetSessionFromContext(r)
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/admin-data", nil)
	req.Header.Set("User-Agent", "middleware-test")
	if mutate != nil {
		mutate(req)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func TestRequireSession_BearerHeader(t *testing.T) {
	rec, claims := runRequireSession(t, acceptToken("good"), &fakeRecorder{}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer good")
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	assert.Equal(t, models.RoleSuperAdmin, claims.Role)
	assert.True(t, claims.TwoFactorVerified)
}

func TestRequireSession_CookieFallback(t *testing.T) {
	rec, claims := runRequireSession(t, acceptToken("good"), &fakeRecorder{}, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good"})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, claims)
}

func TestRequireSession_MissingToken(t *testing.T) {
	recorder := &fakeRecorder{}
	rec, claims := runRequireSession(t, acceptToken("good"), recorder, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, claims)
	require.Len(t, recorder.Failures, 1)
	assert.Equal(t, "missing token", recorder.Failures[0].Reason)
	assert.Equal(t, "203.0.113.9", recorder.Failures[0].IP)
	assert.Equal(t, "middleware-test", recorder.Failures[0].UserAgent)
}

func TestRequireSession_RejectedToken(t *testing.T) {
	recorder := &fakeRecorder{}
	rec, claims := runRequireSession(t, acceptToken("good"), recorder, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer tampered")
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, claims)
	assert.Len(t, recorder.Failures, 1)
}

func TestRequireSession_MalformedAuthorizationHeader(t *testing.T) {
	recorder := &fakeRecorder{}

	// A non-Bearer Authorization header does not fall through to the
	// cookie; it is treated as a missing token.
	rec, _ := runRequireSession(t, acceptToken("good"), recorder, func(r *http.Request) {
		r.Header.Set("Authorization", "Basic dXNlcjpwdw==")
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good"})
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Len(t, recorder.Failures, 1)
	assert.Equal(t, "missing token", recorder.Failures[0].Reason)
}

func TestRequireSession_NilRecorderDoesNotPanic(t *testing.T) {
	rec, _ := runRequireSession(t, acceptToken("good"), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
