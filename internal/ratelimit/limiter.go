package ratelimit

import (
	"log/slog"
	"time"
)

// Config holds the lockout policy for login attempts.
type Config struct {
	MaxAttempts     int           // failed attempts before lockout
	LockoutDuration time.Duration // how long an address stays locked
}

// DefaultConfig returns the policy used when nothing is configured:
// 5 failures, 15 minute lockout.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     5,
		LockoutDuration: 15 * time.Minute,
	}
}

// Decision is the outcome of a rate-limit check for one address.
type Decision struct {
	Allowed           bool
	RemainingAttempts int
	LockedUntil       *time.Time
}

// Limiter tracks failed login attempts per client address and decides
// admit/deny. The Store is injected so tests run against a fresh map
// and a durable backend can be substituted without touching callers.
type Limiter struct {
	store  Store
	config Config
	logger *slog.Logger
	now    func() time.Time
}

// NewLimiter creates a Limiter over the given store.
func NewLimiter(store Store, config Config, logger *slog.Logger) *Limiter {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if config.LockoutDuration <= 0 {
		config.LockoutDuration = DefaultConfig().LockoutDuration
	}
	return &Limiter{
		store:  store,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Check reports whether a login attempt from addr may proceed. It must
// be called, and must pass, before any credential comparison happens:
// a locked-out address never costs a password hash.
func (l *Limiter) Check(addr string) Decision {
	var d Decision
	now := l.now()

	l.store.Update(addr, func(rec *Record) {
		if rec.LockedUntil != nil && now.Before(*rec.LockedUntil) {
			until := *rec.LockedUntil
			d = Decision{Allowed: false, RemainingAttempts: 0, LockedUntil: &until}
			return
		}

		// Lockout elapsed: the counter starts over.
		if rec.LockedUntil != nil {
			rec.FailureCount = 0
			rec.LockedUntil = nil
		}

		d = Decision{
			Allowed:           true,
			RemainingAttempts: l.config.MaxAttempts - rec.FailureCount,
		}
	})

	if !d.Allowed {
		l.logger.Warn("login attempt blocked by lockout",
			slog.String("address", addr),
			slog.Time("locked_until", *d.LockedUntil))
	}

	return d
}

// Record registers the outcome of an attempt from addr. Success clears
// the failure count and any lockout; failure increments the count and,
// at the threshold, locks the address out.
func (l *Limiter) Record(addr string, success bool) {
	now := l.now()

	if success {
		l.store.Update(addr, func(rec *Record) {
			rec.FailureCount = 0
			rec.LockedUntil = nil
		})
		return
	}

	var locked *time.Time
	l.store.Update(addr, func(rec *Record) {
		rec.FailureCount++
		if rec.FailureCount >= l.config.MaxAttempts {
			until := now.Add(l.config.LockoutDuration)
			rec.LockedUntil = &until
			locked = &until
		}
	})

	if locked != nil {
		l.logger.Warn("address locked out",
			slog.String("address", addr),
			slog.Time("locked_until", *locked))
	}
}
