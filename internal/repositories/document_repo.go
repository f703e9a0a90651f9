package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tradeledger/superadmin/internal/database"
	"github.com/tradeledger/superadmin/internal/models"
)

// DocumentRepository handles privileged document data access. It backs
// the admin-data gateway; all authorization happens above this layer.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *database.DB) *DocumentRepository {
	return &DocumentRepository{pool: db.Pool}
}

func scanDocumentRow(row rowScanner) (*models.Document, error) {
	var doc models.Document

	err := row.Scan(&doc.ID, &doc.Entity, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &doc, nil
}

func scanDocumentRows(rows pgx.Rows) ([]*models.Document, error) {
	defer rows.Close()

	docs := make([]*models.Document, 0)

	for rows.Next() {
		doc, err := scanDocumentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	return docs, nil
}

// ListByEntity retrieves all documents for an entity, newest-first.
func (r *DocumentRepository) ListByEntity(ctx context.Context, entity string) ([]*models.Document, error) {
	query := `
		SELECT id, entity, data, created_at, updated_at
		FROM admin_documents
		WHERE entity = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, entity)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}

	return scanDocumentRows(rows)
}

// Create inserts a new document under an entity.
func (r *DocumentRepository) Create(ctx context.Context, entity string, data json.RawMessage) (*models.Document, error) {
	query := `
		INSERT INTO admin_documents (entity, data)
		VALUES ($1, $2)
		RETURNING id, entity, data, created_at, updated_at
	`

	doc, err := scanDocumentRow(r.pool.QueryRow(ctx, query, entity, data))
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	return doc, nil
}

// Update replaces a document's payload. The entity is part of the key
// so a document cannot be rewritten through another entity's URL.
func (r *DocumentRepository) Update(ctx context.Context, entity string, id uuid.UUID, data json.RawMessage) (*models.Document, error) {
	query := `
		UPDATE admin_documents
		SET data = $3, updated_at = CURRENT_TIMESTAMP
		WHERE entity = $1 AND id = $2
		RETURNING id, entity, data, created_at, updated_at
	`

	doc, err := scanDocumentRow(r.pool.QueryRow(ctx, query, entity, id, data))
	if err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	return doc, nil
}

// Delete removes a document.
func (r *DocumentRepository) Delete(ctx context.Context, entity string, id uuid.UUID) error {
	query := `DELETE FROM admin_documents WHERE entity = $1 AND id = $2`

	result, err := r.pool.Exec(ctx, query, entity, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
