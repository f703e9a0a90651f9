package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tradeledger/superadmin/internal/models"
)

// AuditLogRepository defines the persistence surface the audit service
// needs. The table behind it is append-only.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditEntry) (*models.AuditEntry, error)
	List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, error)
	Count(ctx context.Context, filter models.AuditFilter) (int64, error)
}

// AuditService handles audit logging with dual-write pattern (slog +
// database). Persistence failures never propagate to the caller: the
// entry still lands in the structured log, and the security outcome of
// the request must not change because the audit table was unavailable.
type AuditService struct {
	repo   AuditLogRepository
	logger *slog.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(repo AuditLogRepository, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		logger: logger,
	}
}

// Record appends an audit entry. Best-effort: a failed database write is
// logged and swallowed.
func (s *AuditService) Record(ctx context.Context, entry models.AuditEntry) {
	// Dual-write: immediate slog output
	if entry.Success {
		s.logger.InfoContext(ctx, "audit event",
			slog.String("action", entry.Action),
			slog.String("category", entry.Category),
			slog.String("details", entry.Details),
			slog.String("ip", entry.IPAddress),
		)
	} else {
		s.logger.WarnContext(ctx, "audit event failed",
			slog.String("action", entry.Action),
			slog.String("category", entry.Category),
			slog.String("details", entry.Details),
			slog.String("ip", entry.IPAddress),
		)
	}

	if _, err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist audit entry",
			slog.String("action", entry.Action),
			slog.Any("error", err),
		)
	}
}

// List retrieves audit entries matching the filter, newest-first, plus
// the unpaginated total for the same filter.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, int64, error) {
	filter = filter.Normalize()

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	return entries, total, nil
}
