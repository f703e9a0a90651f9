package integration

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeledger/superadmin/internal/models"
	"github.com/tradeledger/superadmin/internal/repositories"
)

func TestDocumentRepository_CreateAndList(t *testing.T) {
	freshTables(t)
	ctx := context.Background()
	repo := repositories.NewDocumentRepository(testDB.DB)

	created, err := repo.Create(ctx, "trades", json.RawMessage(`{"symbol":"AAPL","qty":10}`))
	require.NoError(t, err)
	assert.Equal(t, "trades", created.Entity)
	assert.JSONEq(t, `{"symbol":"AAPL","qty":10}`, string(created.Data))
	assert.False(t, created.CreatedAt.IsZero())

	_, err = repo.Create(ctx, "journal_entries", json.RawMessage(`{"note":"good entry"}`))
	require.NoError(t, err)

	trades, err := repo.ListByEntity(ctx, "trades")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, created.ID, trades[0].ID)

	journal, err := repo.ListByEntity(ctx, "journal_entries")
	require.NoError(t, err)
	assert.Len(t, journal, 1)

	empty, err := repo.ListByEntity(ctx, "settings")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDocumentRepository_Update(t *testing.T) {
	freshTables(t)
	ctx := context.Background()
	repo := repositories.NewDocumentRepository(testDB.DB)

	created, err := repo.Create(ctx, "settings", json.RawMessage(`{"theme":"dark"}`))
	require.NoError(t, err)

	updated, err := repo.Update(ctx, "settings", created.ID, json.RawMessage(`{"theme":"light"}`))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.JSONEq(t, `{"theme":"light"}`, string(updated.Data))
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestDocumentRepository_UpdateWrongEntityIsNotFound(t *testing.T) {
	freshTables(t)
	ctx := context.Background()
	repo := repositories.NewDocumentRepository(testDB.DB)

	created, err := repo.Create(ctx, "trades", json.RawMessage(`{"symbol":"MSFT"}`))
	require.NoError(t, err)

	// The entity is part of the key: a trades document is unreachable
	// through the settings entity.
	_, err = repo.Update(ctx, "settings", created.ID, json.RawMessage(`{"theme":"light"}`))
	assert.ErrorIs(t, err, models.ErrNotFound)

	docs, err := repo.ListByEntity(ctx, "trades")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.JSONEq(t, `{"symbol":"MSFT"}`, string(docs[0].Data))
}

func TestDocumentRepository_Delete(t *testing.T) {
	freshTables(t)
	ctx := context.Background()
	repo := repositories.NewDocumentRepository(testDB.DB)

	created, err := repo.Create(ctx, "trades", json.RawMessage(`{"symbol":"NVDA"}`))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "trades", created.ID))

	docs, err := repo.ListByEntity(ctx, "trades")
	require.NoError(t, err)
	assert.Empty(t, docs)

	err = repo.Delete(ctx, "trades", created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = repo.Delete(ctx, "trades", uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}
