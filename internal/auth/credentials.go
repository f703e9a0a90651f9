package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MaxCredentialLen caps every credential input before any processing.
const MaxCredentialLen = 256

// CredentialVerifier validates the single fixed privileged identity.
// The username is configuration, not a lookup table, but the code path
// is shaped like a one-row lookup so a real account store could slot in
// without rewriting callers.
type CredentialVerifier struct {
	username     string
	passwordHash string // bcrypt
}

// NewCredentialVerifier creates a verifier for the provisioned
// username/password-hash pair.
func NewCredentialVerifier(username, passwordHash string) *CredentialVerifier {
	return &CredentialVerifier{
		username:     username,
		passwordHash: passwordHash,
	}
}

// VerifyUsername reports whether username matches the fixed identity.
// Exact, case-sensitive, constant-time. Callers must treat a mismatch
// identically to a wrong password.
func (v *CredentialVerifier) VerifyUsername(username string) bool {
	// ConstantTimeCompare short-circuits on length, so compare
	// fixed-size digests of both values instead of the raw strings.
	return subtle.ConstantTimeCompare(pad(username), pad(v.username)) == 1
}

// VerifyPassword compares password against the provisioned bcrypt hash.
func (v *CredentialVerifier) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(v.passwordHash), []byte(password)) == nil
}

// BurnPassword runs a bcrypt comparison that is guaranteed to fail.
// Called on the wrong-username branch so both credential failures cost
// the same hash work.
func (v *CredentialVerifier) BurnPassword(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(v.passwordHash), []byte(password+"\x00burn"))
}

// Sanitize trims, length-caps, and strips markup-capable characters
// from a credential input. Defense in depth only; the hash comparison
// is the real boundary.
func Sanitize(input string) string {
	input = strings.TrimSpace(input)
	if len(input) > MaxCredentialLen {
		input = input[:MaxCredentialLen]
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'', '`', ';', '\\':
			return -1
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, input)
}

// pad right-pads s with NULs to a fixed width so comparisons do not
// leak length.
func pad(s string) []byte {
	buf := make([]byte, MaxCredentialLen)
	copy(buf, s)
	if len(s) > MaxCredentialLen {
		// Oversized input can never match the fixed identity; mangle
		// the first byte so the compare fails without branching early.
		buf[0] ^= 0xff
	}
	return buf
}
