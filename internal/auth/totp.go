package auth

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTPVerifier validates 6-digit time-based one-time codes against the
// provisioned shared secret. The secret is configuration-level (set out
// of band by cmd/provision), not a database entity.
type TOTPVerifier struct {
	secret string // base32
	now    func() time.Time
}

// NewTOTPVerifier creates a verifier for the provisioned secret. An
// empty secret means no second factor is provisioned.
func NewTOTPVerifier(secret string) *TOTPVerifier {
	return &TOTPVerifier{
		secret: secret,
		now:    time.Now,
	}
}

// Provisioned reports whether a second factor is configured.
func (v *TOTPVerifier) Provisioned() bool {
	return v.secret != ""
}

// Verify validates a 6-digit code with a ±1 time-step window for clock
// skew. Non-numeric or wrong-length input is rejected before any
// time-step comparison.
func (v *TOTPVerifier) Verify(code string) bool {
	if !v.Provisioned() {
		return false
	}
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}

	valid, err := totp.ValidateCustom(code, v.secret, v.now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return valid
}
