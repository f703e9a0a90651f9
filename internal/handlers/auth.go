package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tradeledger/superadmin/internal/auth"
	"github.com/tradeledger/superadmin/internal/models"
	"github.com/tradeledger/superadmin/internal/services"
	pkghttp "github.com/tradeledger/superadmin/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, username, password, totpCode, addr, userAgent string) (*services.LoginResult, error)
	Verify(ctx context.Context, token, addr, userAgent string) (*models.SessionClaims, error)
	Logout(ctx context.Context, addr, userAgent string)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service        AuthServiceInterface
	cookies        auth.CookieConfig
	trustedProxies []string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, cookies auth.CookieConfig, trustedProxies []string) *AuthHandler {
	return &AuthHandler{
		service:        service,
		cookies:        cookies,
		trustedProxies: trustedProxies,
	}
}

// LoginRequest represents the request body for login. The TOTP code is
// optional on the first step of a two-step login; its shape is checked
// by the verifier, not here, so a malformed code counts as a failed
// attempt instead of a schema error.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=256"`
	Password string `json:"password" validate:"required,max=256"`
	TOTPCode string `json:"totpCode" validate:"max=16"`
}

// LoginResponse represents a successful or pending login
type LoginResponse struct {
	Success     bool   `json:"success"`
	Requires2FA bool   `json:"requires2FA,omitempty"`
	Token       string `json:"token"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// SessionUser describes the authenticated identity in verify responses
type SessionUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VerifyResponse represents the outcome of a token check
type VerifyResponse struct {
	Valid bool         `json:"valid"`
	User  *SessionUser `json:"user,omitempty"`
	Error string       `json:"error,omitempty"`
}

// Login handles the single- or two-step privileged login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	addr := pkghttp.ExtractClientIP(r, h.trustedProxies)
	userAgent := r.Header.Get("User-Agent")

	result, err := h.service.Login(r.Context(), req.Username, req.Password, req.TOTPCode, addr, userAgent)
	if err != nil {
		var rateErr *services.RateLimitedError
		var credErr *services.InvalidCredentialsError
		switch {
		case errors.As(err, &rateErr):
			pkghttp.WriteRateLimited(w, rateErr.LockedUntil)
		case errors.As(err, &credErr):
			pkghttp.WriteInvalidCredentials(w, credErr.RemainingAttempts)
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	auth.SetSessionCookie(w, result.Token, int(result.ExpiresIn), h.cookies)

	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
		Success:     !result.Requires2FA,
		Requires2FA: result.Requires2FA,
		Token:       result.Token,
		ExpiresIn:   result.ExpiresIn,
	})
}

// Verify reports whether the presented session token is valid. The
// rejection body never says why.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	addr := pkghttp.ExtractClientIP(r, h.trustedProxies)
	userAgent := r.Header.Get("User-Agent")

	// An absent token goes through the same path as a bad one; the
	// response is indistinguishable.
	claims, err := h.service.Verify(r.Context(), auth.ExtractToken(r), addr, userAgent)
	if err != nil {
		pkghttp.WriteJSON(w, http.StatusUnauthorized, VerifyResponse{
			Valid: false,
			Error: "invalid or expired token",
		})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, VerifyResponse{
		Valid: true,
		User: &SessionUser{
			Username:  claims.Subject,
			Role:      claims.Role,
			ExpiresAt: claims.ExpiresAt.Time,
		},
	})
}

// Logout clears the session cookie. Tokens cannot be revoked
// server-side; the audit entry is the only durable effect.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	addr := pkghttp.ExtractClientIP(r, h.trustedProxies)
	h.service.Logout(r.Context(), addr, r.Header.Get("User-Agent"))

	auth.ClearSessionCookie(w, h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
