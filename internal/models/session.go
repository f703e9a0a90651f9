package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// RoleSuperAdmin is the single privileged role this service knows about.
const RoleSuperAdmin = "superadmin"

// SessionClaims is the signed payload carried inside a session token.
// It is fully self-contained: nothing about a session is stored
// server-side.
type SessionClaims struct {
	Role string `json:"role"`

	// TwoFactorVerified is false on tokens minted after password
	// verification but before TOTP completion. When a TOTP secret is
	// provisioned, token verification rejects claims with this unset,
	// so a stolen mid-login token grants nothing.
	TwoFactorVerified bool `json:"mfa"`

	jwt.RegisteredClaims
}
