package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tradeledger/superadmin/internal/models"
)

// SessionManager mints and opens session tokens. A token is two
// independent layers: an HS256-signed claim (tamper/forgery evidence)
// wrapped in AES-256-GCM under a separate key (hides claim contents
// from the bearer and detects ciphertext tampering on its own). Both
// layers must hold for a token to open.
type SessionManager struct {
	signingSecret []byte
	encryptionKey []byte // 32-byte AES-256 key, distinct from signingSecret
	subject       string
	lifetime      time.Duration

	// requireTwoFactor mirrors whether a TOTP secret is provisioned.
	// When set, tokens minted before second-factor completion do not
	// open.
	requireTwoFactor bool

	now func() time.Time
}

// NewSessionManager creates a SessionManager.
// encryptionKey must be exactly 32 bytes.
func NewSessionManager(signingSecret string, encryptionKey []byte, subject string, lifetime time.Duration, requireTwoFactor bool) (*SessionManager, error) {
	if len(encryptionKey) != 32 {
		return nil, fmt.Errorf("encryption key must be exactly 32 bytes, got %d", len(encryptionKey))
	}
	if lifetime <= 0 {
		lifetime = 2 * time.Hour
	}

	return &SessionManager{
		signingSecret:    []byte(signingSecret),
		encryptionKey:    encryptionKey,
		subject:          subject,
		lifetime:         lifetime,
		requireTwoFactor: requireTwoFactor,
		now:              time.Now,
	}, nil
}

// Lifetime returns the fixed session lifetime.
func (sm *SessionManager) Lifetime() time.Duration {
	return sm.lifetime
}

// Issue mints an opaque bearer token. twoFactorVerified marks whether
// the login completed its second factor; expiry is always issuedAt +
// the fixed lifetime.
func (sm *SessionManager) Issue(twoFactorVerified bool) (string, error) {
	now := sm.now()

	claims := &models.SessionClaims{
		Role:              models.RoleSuperAdmin,
		TwoFactorVerified: twoFactorVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sm.subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sm.lifetime)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sm.signingSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session claim: %w", err)
	}

	sealed, err := sm.encrypt([]byte(signed))
	if err != nil {
		return "", fmt.Errorf("failed to seal session token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open reverses both layers and validates the claim: decrypt, verify
// signature and expiry, then check the role and second-factor flag.
// Every failure mode collapses to models.ErrInvalidToken for the
// caller; the wrapped detail is for audit logging only.
func (sm *SessionManager) Open(token string) (*models.SessionClaims, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed encoding", models.ErrInvalidToken)
	}

	signed, err := sm.decrypt(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext rejected", models.ErrInvalidToken)
	}

	claims := &models.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(string(signed), claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return sm.signingSecret, nil
	}, jwt.WithTimeFunc(sm.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidToken, err.Error())
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("%w: signature rejected", models.ErrInvalidToken)
	}

	if claims.Role != models.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: unexpected role", models.ErrInvalidToken)
	}
	if sm.requireTwoFactor && !claims.TwoFactorVerified {
		return nil, fmt.Errorf("%w: second factor incomplete", models.ErrInvalidToken)
	}

	return claims, nil
}

// encrypt seals plaintext with AES-256-GCM and prepends the nonce.
func (sm *SessionManager) encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(sm.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// decrypt reverses encrypt, authenticating the ciphertext.
func (sm *SessionManager) decrypt(sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(sm.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(sealed) < gcm.NonceSize() {
		return nil, fmt.Errorf("sealed token too short")
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
