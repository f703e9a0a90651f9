package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/tradeledger/superadmin/internal/models"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// SessionContextKey is the key for storing session claims in context
	SessionContextKey contextKey = "session"
)

// SessionOpener is the subset of SessionManager the middleware needs.
type SessionOpener interface {
	Open(token string) (*models.SessionClaims, error)
}

// VerifyFailureRecorder receives a notification for every rejected
// token so the event lands in the audit trail.
type VerifyFailureRecorder interface {
	RecordVerifyFailure(ctx context.Context, reason, ip, userAgent string)
}

// RequireSession validates the session token from the Authorization
// header or the session cookie and injects the claims into context.
// Both transports verify identically; the header wins when both are
// present. Rejections are uniform 401s regardless of cause.
func RequireSession(opener SessionOpener, recorder VerifyFailureRecorder, clientIP func(*http.Request) string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				reject(w, r, recorder, "missing token", clientIP)
				return
			}

			claims, err := opener.Open(token)
			if err != nil {
				reject(w, r, recorder, err.Error(), clientIP)
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, recorder VerifyFailureRecorder, reason string, clientIP func(*http.Request) string) {
	if recorder != nil {
		ip := r.RemoteAddr
		if clientIP != nil {
			ip = clientIP(r)
		}
		recorder.RecordVerifyFailure(r.Context(), reason, ip, r.UserAgent())
	}
	http.Error(w, "invalid or expired token", http.StatusUnauthorized)
}

// ExtractToken pulls the bearer token from the Authorization header,
// falling back to the session cookie.
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	if token, err := GetSessionCookie(r); err == nil {
		return token
	}
	return ""
}

// GetSessionFromContext extracts session claims from request context
func GetSessionFromContext(r *http.Request) *models.SessionClaims {
	claims, ok := r.Context().Value(SessionContextKey).(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
