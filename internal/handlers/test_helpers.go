package handlers

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/tradeledger/superadmin/internal/models"
	"github.com/tradeledger/superadmin/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc  func(ctx context.Context, username, password, totpCode, addr, userAgent string) (*services.LoginResult, error)
	VerifyFunc func(ctx context.Context, token, addr, userAgent string) (*models.SessionClaims, error)
	LogoutFunc func(ctx context.Context, addr, userAgent string)
}

func (m *MockAuthService) Login(ctx context.Context, username, password, totpCode, addr, userAgent string) (*services.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password, totpCode, addr, userAgent)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockAuthService) Verify(ctx context.Context, token, addr, userAgent string) (*models.SessionClaims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, token, addr, userAgent)
	}
	return nil, models.ErrInvalidToken
}

func (m *MockAuthService) Logout(ctx context.Context, addr, userAgent string) {
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx, addr, userAgent)
	}
}

// MockAdminDataService implements AdminDataServiceInterface for testing
type MockAdminDataService struct {
	ListFunc   func(ctx context.Context, entity, addr, userAgent string) ([]*models.Document, error)
	CreateFunc func(ctx context.Context, entity string, data json.RawMessage, addr, userAgent string) (*models.Document, error)
	UpdateFunc func(ctx context.Context, entity string, id uuid.UUID, data json.RawMessage, addr, userAgent string) (*models.Document, error)
	DeleteFunc func(ctx context.Context, entity string, id uuid.UUID, addr, userAgent string) error
}

func (m *MockAdminDataService) List(ctx context.Context, entity, addr, userAgent string) ([]*models.Document, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, entity, addr, userAgent)
	}
	return []*models.Document{}, nil
}

func (m *MockAdminDataService) Create(ctx context.Context, entity string, data json.RawMessage, addr, userAgent string) (*models.Document, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entity, data, addr, userAgent)
	}
	return &models.Document{ID: uuid.New(), Entity: entity, Data: data}, nil
}

func (m *MockAdminDataService) Update(ctx context.Context, entity string, id uuid.UUID, data json.RawMessage, addr, userAgent string) (*models.Document, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, entity, id, data, addr, userAgent)
	}
	return &models.Document{ID: id, Entity: entity, Data: data}, nil
}

func (m *MockAdminDataService) Delete(ctx context.Context, entity string, id uuid.UUID, addr, userAgent string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, entity, id, addr, userAgent)
	}
	return nil
}

// MockAuditService implements AuditServiceInterface for testing
type MockAuditService struct {
	ListFunc func(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, int64, error)
}

func (m *MockAuditService) List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.AuditEntry{}, 0, nil
}
