package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tradeledger/superadmin/internal/models"
	"github.com/tradeledger/superadmin/internal/ratelimit"
)

// MockRateLimiter implements LoginRateLimiter for testing
type MockRateLimiter struct {
	CheckFunc  func(addr string) ratelimit.Decision
	RecordFunc func(addr string, success bool)
}

func (m *MockRateLimiter) Check(addr string) ratelimit.Decision {
	if m.CheckFunc != nil {
		return m.CheckFunc(addr)
	}
	return ratelimit.Decision{Allowed: true, RemainingAttempts: 5}
}

func (m *MockRateLimiter) Record(addr string, success bool) {
	if m.RecordFunc != nil {
		m.RecordFunc(addr, success)
	}
}

// MockCredentialChecker implements CredentialChecker for testing
type MockCredentialChecker struct {
	VerifyUsernameFunc func(username string) bool
	VerifyPasswordFunc func(password string) bool
	BurnCalls          int
}

func (m *MockCredentialChecker) VerifyUsername(username string) bool {
	if m.VerifyUsernameFunc != nil {
		return m.VerifyUsernameFunc(username)
	}
	return false
}

func (m *MockCredentialChecker) VerifyPassword(password string) bool {
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(password)
	}
	return false
}

func (m *MockCredentialChecker) BurnPassword(password string) {
	m.BurnCalls++
}

// MockSecondFactor implements SecondFactorVerifier for testing
type MockSecondFactor struct {
	ProvisionedFunc func() bool
	VerifyFunc      func(code string) bool
}

func (m *MockSecondFactor) Provisioned() bool {
	if m.ProvisionedFunc != nil {
		return m.ProvisionedFunc()
	}
	return false
}

func (m *MockSecondFactor) Verify(code string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(code)
	}
	return false
}

// MockSessionTokens implements SessionTokens for testing
type MockSessionTokens struct {
	IssueFunc func(twoFactorVerified bool) (string, error)
	OpenFunc  func(token string) (*models.SessionClaims, error)
}

func (m *MockSessionTokens) Issue(twoFactorVerified bool) (string, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(twoFactorVerified)
	}
	if twoFactorVerified {
		return "verified-token", nil
	}
	return "pending-token", nil
}

func (m *MockSessionTokens) Open(token string) (*models.SessionClaims, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(token)
	}
	return nil, models.ErrInvalidToken
}

func (m *MockSessionTokens) Lifetime() time.Duration {
	return 2 * time.Hour
}

// RecordingAudit implements AuditRecorder and captures every entry.
type RecordingAudit struct {
	mu      sync.Mutex
	Entries []models.AuditEntry
}

func (r *RecordingAudit) Record(ctx context.Context, entry models.AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, entry)
}

func (r *RecordingAudit) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		actions[i] = e.Action
	}
	return actions
}

// NoDelay implements FailureDelayer without sleeping.
type NoDelay struct{}

func (NoDelay) WaitFrom(start time.Time, success bool) {}

// MockDocumentStore implements DocumentStore for testing
type MockDocumentStore struct {
	ListByEntityFunc func(ctx context.Context, entity string) ([]*models.Document, error)
	CreateFunc       func(ctx context.Context, entity string, data json.RawMessage) (*models.Document, error)
	UpdateFunc       func(ctx context.Context, entity string, id uuid.UUID, data json.RawMessage) (*models.Document, error)
	DeleteFunc       func(ctx context.Context, entity string, id uuid.UUID) error
	Calls            int
}

func (m *MockDocumentStore) ListByEntity(ctx context.Context, entity string) ([]*models.Document, error) {
	m.Calls++
	if m.ListByEntityFunc != nil {
		return m.ListByEntityFunc(ctx, entity)
	}
	return []*models.Document{}, nil
}

func (m *MockDocumentStore) Create(ctx context.Context, entity string, data json.RawMessage) (*models.Document, error) {
	m.Calls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entity, data)
	}
	return &models.Document{ID: uuid.New(), Entity: entity, Data: data}, nil
}

func (m *MockDocumentStore) Update(ctx context.Context, entity string, id uuid.UUID, data json.RawMessage) (*models.Document, error) {
	m.Calls++
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, entity, id, data)
	}
	return &models.Document{ID: id, Entity: entity, Data: data}, nil
}

func (m *MockDocumentStore) Delete(ctx context.Context, entity string, id uuid.UUID) error {
	m.Calls++
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, entity, id)
	}
	return nil
}

// MockAuditLogRepository implements AuditLogRepository for testing
type MockAuditLogRepository struct {
	CreateFunc func(ctx context.Context, entry *models.AuditEntry) (*models.AuditEntry, error)
	ListFunc   func(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, error)
	CountFunc  func(ctx context.Context, filter models.AuditFilter) (int64, error)
}

func (m *MockAuditLogRepository) Create(ctx context.Context, entry *models.AuditEntry) (*models.AuditEntry, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	return entry, nil
}

func (m *MockAuditLogRepository) List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.AuditEntry{}, nil
}

func (m *MockAuditLogRepository) Count(ctx context.Context, filter models.AuditFilter) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, filter)
	}
	return 0, nil
}
