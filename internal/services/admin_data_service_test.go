package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeledger/superadmin/internal/models"
)

func newAdminDataFixture(store *MockDocumentStore) (*AdminDataService, *RecordingAudit) {
	audit := &RecordingAudit{}
	svc := NewAdminDataService(store, audit, []string{"trades", "journal_entries", "settings"}, discardLogger())
	return svc, audit
}

func TestAdminDataService_RejectsUnknownEntity(t *testing.T) {
	store := &MockDocumentStore{}
	svc, audit := newAdminDataFixture(store)

	_, err := svc.List(context.Background(), "users", "10.0.0.1", "test-agent")
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = svc.Create(context.Background(), "users", json.RawMessage(`{}`), "10.0.0.1", "test-agent")
	assert.ErrorIs(t, err, models.ErrBadRequest)

	// The store is never touched for an entity outside the whitelist.
	assert.Zero(t, store.Calls)
	assert.Empty(t, audit.Entries)
}

func TestAdminDataService_List(t *testing.T) {
	docs := []*models.Document{{ID: uuid.New(), Entity: "trades"}}
	store := &MockDocumentStore{
		ListByEntityFunc: func(ctx context.Context, entity string) ([]*models.Document, error) {
			return docs, nil
		},
	}
	svc, audit := newAdminDataFixture(store)

	got, err := svc.List(context.Background(), "trades", "10.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.Equal(t, docs, got)

	require.Len(t, audit.Entries, 1)
	assert.Equal(t, models.AuditActionDataRead, audit.Entries[0].Action)
	assert.Equal(t, models.AuditCategoryCRUD, audit.Entries[0].Category)
	assert.True(t, audit.Entries[0].Success)
}

func TestAdminDataService_Create_RejectsInvalidJSON(t *testing.T) {
	store := &MockDocumentStore{}
	svc, _ := newAdminDataFixture(store)

	for _, payload := range []json.RawMessage{nil, json.RawMessage(``), json.RawMessage(`{not json`)} {
		_, err := svc.Create(context.Background(), "trades", payload, "10.0.0.1", "test-agent")
		assert.ErrorIs(t, err, models.ErrBadRequest)
	}
	assert.Zero(t, store.Calls)
}

func TestAdminDataService_StoreFailureFailsRequest(t *testing.T) {
	store := &MockDocumentStore{
		ListByEntityFunc: func(ctx context.Context, entity string) ([]*models.Document, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc, audit := newAdminDataFixture(store)

	// Unlike audit appends, a store failure is surfaced to the caller.
	_, err := svc.List(context.Background(), "trades", "10.0.0.1", "test-agent")
	assert.ErrorIs(t, err, models.ErrPersistence)

	// The failed access is still audited, marked unsuccessful.
	require.Len(t, audit.Entries, 1)
	assert.False(t, audit.Entries[0].Success)
}

func TestAdminDataService_Update(t *testing.T) {
	id := uuid.New()
	store := &MockDocumentStore{}
	svc, audit := newAdminDataFixture(store)

	doc, err := svc.Update(context.Background(), "settings", id, json.RawMessage(`{"theme":"dark"}`), "10.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	require.Len(t, audit.Entries, 1)
	assert.Equal(t, models.AuditActionDataUpdate, audit.Entries[0].Action)
}

func TestAdminDataService_Update_NotFound(t *testing.T) {
	store := &MockDocumentStore{
		UpdateFunc: func(ctx context.Context, entity string, id uuid.UUID, data json.RawMessage) (*models.Document, error) {
			return nil, models.ErrNotFound
		},
	}
	svc, _ := newAdminDataFixture(store)

	_, err := svc.Update(context.Background(), "trades", uuid.New(), json.RawMessage(`{}`), "10.0.0.1", "test-agent")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NotErrorIs(t, err, models.ErrPersistence)
}

func TestAdminDataService_Delete(t *testing.T) {
	store := &MockDocumentStore{}
	svc, audit := newAdminDataFixture(store)

	err := svc.Delete(context.Background(), "journal_entries", uuid.New(), "10.0.0.1", "test-agent")
	require.NoError(t, err)
	require.Len(t, audit.Entries, 1)
	assert.Equal(t, models.AuditActionDataDelete, audit.Entries[0].Action)
}
