package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tradeledger/superadmin/internal/auth"
	"github.com/tradeledger/superadmin/internal/models"
	"github.com/tradeledger/superadmin/internal/ratelimit"
)

// LoginRateLimiter is the rate-limiter surface the orchestrator needs.
type LoginRateLimiter interface {
	Check(addr string) ratelimit.Decision
	Record(addr string, success bool)
}

// CredentialChecker validates the fixed privileged identity.
type CredentialChecker interface {
	VerifyUsername(username string) bool
	VerifyPassword(password string) bool
	BurnPassword(password string)
}

// SecondFactorVerifier validates TOTP codes.
type SecondFactorVerifier interface {
	Provisioned() bool
	Verify(code string) bool
}

// SessionTokens mints and opens session tokens.
type SessionTokens interface {
	Issue(twoFactorVerified bool) (string, error)
	Open(token string) (*models.SessionClaims, error)
	Lifetime() time.Duration
}

// AuditRecorder appends audit entries, best-effort.
type AuditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

// FailureDelayer pads failed attempts to a minimum elapsed time.
type FailureDelayer interface {
	WaitFrom(start time.Time, success bool)
}

// RateLimitedError carries the lockout deadline alongside the generic
// rate-limit sentinel.
type RateLimitedError struct {
	LockedUntil *time.Time
}

func (e *RateLimitedError) Error() string { return models.ErrRateLimited.Error() }
func (e *RateLimitedError) Unwrap() error { return models.ErrRateLimited }

// InvalidCredentialsError carries the remaining-attempt count alongside
// the generic invalid-credentials sentinel. The message never says
// which part of the credentials was wrong.
type InvalidCredentialsError struct {
	RemainingAttempts int
}

func (e *InvalidCredentialsError) Error() string { return models.ErrInvalidCredentials.Error() }
func (e *InvalidCredentialsError) Unwrap() error { return models.ErrInvalidCredentials }

// LoginResult is the outcome of a successful (or half-successful)
// login: either a fully verified session, or a pending one awaiting the
// second factor.
type LoginResult struct {
	Token       string
	ExpiresIn   int64 // seconds
	Requires2FA bool
}

// AuthService orchestrates the login state machine. Checks run in a
// strict order: rate limit, username, password, TOTP. Each terminal
// branch emits exactly one audit entry.
type AuthService struct {
	limiter     LoginRateLimiter
	credentials CredentialChecker
	totp        SecondFactorVerifier
	sessions    SessionTokens
	audit       AuditRecorder
	delay       FailureDelayer
	logger      *slog.Logger

	now func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	limiter LoginRateLimiter,
	credentials CredentialChecker,
	totp SecondFactorVerifier,
	sessions SessionTokens,
	audit AuditRecorder,
	delay FailureDelayer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		limiter:     limiter,
		credentials: credentials,
		totp:        totp,
		sessions:    sessions,
		audit:       audit,
		delay:       delay,
		logger:      logger,
		now:         time.Now,
	}
}

// Login runs the full login sequence for one attempt from addr.
//
// The caller receives either a LoginResult or one of RateLimitedError,
// InvalidCredentialsError, models.ErrInternalServer. Which credential
// check failed is recorded in the audit trail only.
func (s *AuthService) Login(ctx context.Context, username, password, totpCode, addr, userAgent string) (*LoginResult, error) {
	start := s.now()

	decision := s.limiter.Check(addr)
	if !decision.Allowed {
		s.audit.Record(ctx, models.AuditEntry{
			Action:    models.AuditActionLoginBlockedRateLimit,
			Category:  models.AuditCategoryAuth,
			Details:   "login attempt while locked out",
			IPAddress: addr,
			UserAgent: userAgent,
			Success:   false,
		})
		s.delay.WaitFrom(start, false)
		return nil, &RateLimitedError{LockedUntil: decision.LockedUntil}
	}

	username = auth.Sanitize(username)
	totpCode = auth.Sanitize(totpCode)

	if !s.credentials.VerifyUsername(username) {
		// Burn a hash comparison so this branch costs the same as a
		// wrong password.
		s.credentials.BurnPassword(password)
		return nil, s.failCredentials(ctx, start, addr, userAgent,
			models.AuditActionLoginFailedUsername, "unknown username", decision)
	}

	if !s.credentials.VerifyPassword(password) {
		return nil, s.failCredentials(ctx, start, addr, userAgent,
			models.AuditActionLoginFailedPassword, "wrong password", decision)
	}

	if s.totp.Provisioned() {
		if totpCode == "" {
			// Password checked out; hand back a restricted token and
			// ask for the second factor. Not a failure, not counted
			// against the rate limit.
			token, err := s.sessions.Issue(false)
			if err != nil {
				s.logger.ErrorContext(ctx, "failed to issue pending session token", slog.Any("error", err))
				return nil, models.ErrInternalServer
			}

			s.audit.Record(ctx, models.AuditEntry{
				Action:    models.AuditActionLoginSecondFactorNeeded,
				Category:  models.AuditCategoryAuth,
				Details:   "password accepted, awaiting TOTP code",
				IPAddress: addr,
				UserAgent: userAgent,
				Success:   true,
			})

			return &LoginResult{
				Token:       token,
				ExpiresIn:   int64(s.sessions.Lifetime().Seconds()),
				Requires2FA: true,
			}, nil
		}

		if !s.totp.Verify(totpCode) {
			return nil, s.failCredentials(ctx, start, addr, userAgent,
				models.AuditActionLoginFailedTOTP, "invalid TOTP code", decision)
		}
	}

	s.limiter.Record(addr, true)

	token, err := s.sessions.Issue(true)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue session token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.Record(ctx, models.AuditEntry{
		Action:    models.AuditActionLoginSuccess,
		Category:  models.AuditCategoryAuth,
		Details:   "login completed",
		IPAddress: addr,
		UserAgent: userAgent,
		Success:   true,
	})

	return &LoginResult{
		Token:     token,
		ExpiresIn: int64(s.sessions.Lifetime().Seconds()),
	}, nil
}

// failCredentials is the shared tail of every credential-failure
// branch: count the failure, audit the specific reason, equalize
// timing, and hand back the generic error.
func (s *AuthService) failCredentials(ctx context.Context, start time.Time, addr, userAgent, action, details string, decision ratelimit.Decision) error {
	s.limiter.Record(addr, false)

	s.audit.Record(ctx, models.AuditEntry{
		Action:    action,
		Category:  models.AuditCategoryAuth,
		Details:   details,
		IPAddress: addr,
		UserAgent: userAgent,
		Success:   false,
	})

	remaining := decision.RemainingAttempts - 1
	if remaining < 0 {
		remaining = 0
	}

	s.delay.WaitFrom(start, false)
	return &InvalidCredentialsError{RemainingAttempts: remaining}
}

// Verify opens a session token. A rejection is audited; a valid token
// produces no audit entry.
func (s *AuthService) Verify(ctx context.Context, token, addr, userAgent string) (*models.SessionClaims, error) {
	claims, err := s.sessions.Open(token)
	if err != nil {
		s.RecordVerifyFailure(ctx, err.Error(), addr, userAgent)
		return nil, fmt.Errorf("session verification: %w", models.ErrInvalidToken)
	}
	return claims, nil
}

// RecordVerifyFailure audits a rejected session token. Also called by
// the session middleware for protected routes.
func (s *AuthService) RecordVerifyFailure(ctx context.Context, reason, addr, userAgent string) {
	s.audit.Record(ctx, models.AuditEntry{
		Action:    models.AuditActionSessionVerifyFailed,
		Category:  models.AuditCategoryAuth,
		Details:   reason,
		IPAddress: addr,
		UserAgent: userAgent,
		Success:   false,
	})
}

// Logout audits the logout. Tokens are not revocable server-side; the
// handler clears the cookie and the client discards its copy.
func (s *AuthService) Logout(ctx context.Context, addr, userAgent string) {
	s.audit.Record(ctx, models.AuditEntry{
		Action:    models.AuditActionLogout,
		Category:  models.AuditCategoryAuth,
		Details:   "session ended by client",
		IPAddress: addr,
		UserAgent: userAgent,
		Success:   true,
	})
}
