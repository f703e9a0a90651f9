package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeledger/superadmin/internal/models"
)

func TestAdminDataHandler_List(t *testing.T) {
	docs := []*models.Document{{ID: uuid.New(), Entity: "trades", Data: json.RawMessage(`{"sym":"ES"}`)}}
	service := &MockAdminDataService{
		ListFunc: func(ctx context.Context, entity, addr, userAgent string) ([]*models.Document, error) {
			assert.Equal(t, "trades", entity)
			return docs, nil
		},
	}
	handler := NewAdminDataHandler(service, nil)

	req := httptest.NewRequest("GET", "/admin-data?entity=trades", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sym":"ES"`)
}

func TestAdminDataHandler_MissingEntity(t *testing.T) {
	called := false
	service := &MockAdminDataService{
		ListFunc: func(ctx context.Context, entity, addr, userAgent string) ([]*models.Document, error) {
			called = true
			return nil, nil
		},
	}
	handler := NewAdminDataHandler(service, nil)

	req := httptest.NewRequest("GET", "/admin-data", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}

func TestAdminDataHandler_UnknownEntity(t *testing.T) {
	service := &MockAdminDataService{
		ListFunc: func(ctx context.Context, entity, addr, userAgent string) ([]*models.Document, error) {
			return nil, models.ErrBadRequest
		},
	}
	handler := NewAdminDataHandler(service, nil)

	req := httptest.NewRequest("GET", "/admin-data?entity=users", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminDataHandler_Create(t *testing.T) {
	service := &MockAdminDataService{
		CreateFunc: func(ctx context.Context, entity string, data json.RawMessage, addr, userAgent string) (*models.Document, error) {
			assert.JSONEq(t, `{"note":"x"}`, string(data))
			return &models.Document{ID: uuid.New(), Entity: entity, Data: data}, nil
		},
	}
	handler := NewAdminDataHandler(service, nil)

	req := httptest.NewRequest("POST", "/admin-data?entity=journal_entries", strings.NewReader(`{"note":"x"}`))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAdminDataHandler_Update_RequiresValidID(t *testing.T) {
	handler := NewAdminDataHandler(&MockAdminDataService{}, nil)

	for _, url := range []string{
		"/admin-data?entity=trades",
		"/admin-data?entity=trades&id=not-a-uuid",
	} {
		req := httptest.NewRequest("PUT", url, strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		handler.Update(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "url %s", url)
	}
}

func TestAdminDataHandler_Update_NotFound(t *testing.T) {
	service := &MockAdminDataService{
		UpdateFunc: func(ctx context.Context, entity string, id uuid.UUID, data json.RawMessage, addr, userAgent string) (*models.Document, error) {
			return nil, models.ErrNotFound
		},
	}
	handler := NewAdminDataHandler(service, nil)

	req := httptest.NewRequest("PUT", "/admin-data?entity=trades&id="+uuid.NewString(), strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	handler.Update(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminDataHandler_StoreFailure(t *testing.T) {
	service := &MockAdminDataService{
		DeleteFunc: func(ctx context.Context, entity string, id uuid.UUID, addr, userAgent string) error {
			return models.ErrPersistence
		},
	}
	handler := NewAdminDataHandler(service, nil)

	req := httptest.NewRequest("DELETE", "/admin-data?entity=trades&id="+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	handler.Delete(w, req)

	// Store failures surface as 500, unlike audit-write failures.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAdminDataHandler_Delete(t *testing.T) {
	var gotID uuid.UUID
	service := &MockAdminDataService{
		DeleteFunc: func(ctx context.Context, entity string, id uuid.UUID, addr, userAgent string) error {
			gotID = id
			return nil
		},
	}
	handler := NewAdminDataHandler(service, nil)

	id := uuid.New()
	req := httptest.NewRequest("DELETE", "/admin-data?entity=settings&id="+id.String(), nil)
	w := httptest.NewRecorder()
	handler.Delete(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, gotID)
}
