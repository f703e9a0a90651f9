package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tradeledger/superadmin/internal/database"
	"github.com/tradeledger/superadmin/internal/models"
)

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...any) error
}

// AuditLogRepository handles audit log data access. The table is
// append-only: no update or delete statements exist here.
type AuditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(db *database.DB) *AuditLogRepository {
	return &AuditLogRepository{pool: db.Pool}
}

func scanAuditEntryRow(row rowScanner) (*models.AuditEntry, error) {
	var entry models.AuditEntry

	err := row.Scan(
		&entry.ID, &entry.Action, &entry.Category, &entry.Details,
		&entry.IPAddress, &entry.UserAgent, &entry.Success, &entry.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &entry, nil
}

func scanAuditEntryRows(rows pgx.Rows) ([]*models.AuditEntry, error) {
	defer rows.Close()

	entries := make([]*models.AuditEntry, 0)

	for rows.Next() {
		entry, err := scanAuditEntryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entry rows: %w", err)
	}

	return entries, nil
}

// Create appends a new audit entry
func (r *AuditLogRepository) Create(ctx context.Context, entry *models.AuditEntry) (*models.AuditEntry, error) {
	query := `
		INSERT INTO audit_logs (action, category, details, ip_address, user_agent, success)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, action, category, details, ip_address, user_agent, success, created_at
	`

	result, err := scanAuditEntryRow(r.pool.QueryRow(
		ctx, query,
		entry.Action, entry.Category, entry.Details,
		entry.IPAddress, entry.UserAgent, entry.Success,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create audit entry: %w", err)
	}

	return result, nil
}

// buildFilterClauses translates an AuditFilter into WHERE clauses and
// ordered arguments, shared between List and Count.
func buildFilterClauses(filter models.AuditFilter) (string, []any) {
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if filter.Category != "" {
		args = append(args, filter.Category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Success != nil {
		args = append(args, *filter.Success)
		clauses = append(clauses, fmt.Sprintf("success = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(action ILIKE $%d OR details ILIKE $%d)", len(args), len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// List retrieves audit entries newest-first, optionally filtered by
// category, success flag, and a substring search over action/details.
func (r *AuditLogRepository) List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, error) {
	where, args := buildFilterClauses(filter)

	args = append(args, filter.Limit)
	limitArg := len(args)
	args = append(args, filter.Offset)
	offsetArg := len(args)

	query := fmt.Sprintf(`
		SELECT id, action, category, details, ip_address, user_agent, success, created_at
		FROM audit_logs
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, limitArg, offsetArg)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}

	return scanAuditEntryRows(rows)
}

// Count returns the total number of entries matching the filter,
// ignoring pagination.
func (r *AuditLogRepository) Count(ctx context.Context, filter models.AuditFilter) (int64, error) {
	where, args := buildFilterClauses(filter)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM audit_logs %s`, where)

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	return count, nil
}
