package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tradeledger/superadmin/internal/models"
)

// DocumentStore is the privileged backing store behind the admin-data
// gateway. Entity names are opaque strings to this layer.
type DocumentStore interface {
	ListByEntity(ctx context.Context, entity string) ([]*models.Document, error)
	Create(ctx context.Context, entity string, data json.RawMessage) (*models.Document, error)
	Update(ctx context.Context, entity string, id uuid.UUID, data json.RawMessage) (*models.Document, error)
	Delete(ctx context.Context, entity string, id uuid.UUID) error
}

// AdminDataService is the gateway to privileged documents. Every call
// assumes the session middleware already verified the caller; here we
// only whitelist the entity, hit the store, and audit the access.
// Unlike login auditing, a store failure DOES fail the request.
type AdminDataService struct {
	store    DocumentStore
	audit    AuditRecorder
	entities map[string]bool
	logger   *slog.Logger
}

// NewAdminDataService creates a new AdminDataService. allowedEntities
// is the closed set of entity names the gateway will touch.
func NewAdminDataService(store DocumentStore, audit AuditRecorder, allowedEntities []string, logger *slog.Logger) *AdminDataService {
	entities := make(map[string]bool, len(allowedEntities))
	for _, e := range allowedEntities {
		entities[e] = true
	}
	return &AdminDataService{
		store:    store,
		audit:    audit,
		entities: entities,
		logger:   logger,
	}
}

// EntityAllowed reports whether entity is in the whitelist.
func (s *AdminDataService) EntityAllowed(entity string) bool {
	return s.entities[entity]
}

// List returns all documents for an entity.
func (s *AdminDataService) List(ctx context.Context, entity, addr, userAgent string) ([]*models.Document, error) {
	if !s.entities[entity] {
		return nil, fmt.Errorf("%w: unknown entity", models.ErrBadRequest)
	}

	docs, err := s.store.ListByEntity(ctx, entity)
	s.recordAccess(ctx, models.AuditActionDataRead, entity, addr, userAgent, err)
	if err != nil {
		s.logger.ErrorContext(ctx, "document list failed",
			slog.String("entity", entity), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %s", models.ErrPersistence, "list failed")
	}

	return docs, nil
}

// Create inserts a document under an entity.
func (s *AdminDataService) Create(ctx context.Context, entity string, data json.RawMessage, addr, userAgent string) (*models.Document, error) {
	if !s.entities[entity] {
		return nil, fmt.Errorf("%w: unknown entity", models.ErrBadRequest)
	}
	if len(data) == 0 || !json.Valid(data) {
		return nil, fmt.Errorf("%w: payload must be valid JSON", models.ErrBadRequest)
	}

	doc, err := s.store.Create(ctx, entity, data)
	s.recordAccess(ctx, models.AuditActionDataCreate, entity, addr, userAgent, err)
	if err != nil {
		s.logger.ErrorContext(ctx, "document create failed",
			slog.String("entity", entity), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %s", models.ErrPersistence, "create failed")
	}

	return doc, nil
}

// Update replaces a document's payload.
func (s *AdminDataService) Update(ctx context.Context, entity string, id uuid.UUID, data json.RawMessage, addr, userAgent string) (*models.Document, error) {
	if !s.entities[entity] {
		return nil, fmt.Errorf("%w: unknown entity", models.ErrBadRequest)
	}
	if len(data) == 0 || !json.Valid(data) {
		return nil, fmt.Errorf("%w: payload must be valid JSON", models.ErrBadRequest)
	}

	doc, err := s.store.Update(ctx, entity, id, data)
	s.recordAccess(ctx, models.AuditActionDataUpdate, entity, addr, userAgent, err)
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "document update failed",
			slog.String("entity", entity), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %s", models.ErrPersistence, "update failed")
	}

	return doc, nil
}

// Delete removes a document.
func (s *AdminDataService) Delete(ctx context.Context, entity string, id uuid.UUID, addr, userAgent string) error {
	if !s.entities[entity] {
		return fmt.Errorf("%w: unknown entity", models.ErrBadRequest)
	}

	err := s.store.Delete(ctx, entity, id)
	s.recordAccess(ctx, models.AuditActionDataDelete, entity, addr, userAgent, err)
	if err != nil {
		if isNotFound(err) {
			return models.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "document delete failed",
			slog.String("entity", entity), slog.Any("error", err))
		return fmt.Errorf("%w: %s", models.ErrPersistence, "delete failed")
	}

	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}

// recordAccess emits the single audit entry every gateway call gets,
// whether the store call succeeded or not.
func (s *AdminDataService) recordAccess(ctx context.Context, action, entity, addr, userAgent string, storeErr error) {
	details := "entity=" + entity
	if storeErr != nil {
		details += " store_error=true"
	}
	s.audit.Record(ctx, models.AuditEntry{
		Action:    action,
		Category:  models.AuditCategoryCRUD,
		Details:   details,
		IPAddress: addr,
		UserAgent: userAgent,
		Success:   storeErr == nil,
	})
}
