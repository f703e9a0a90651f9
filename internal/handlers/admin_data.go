package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/tradeledger/superadmin/internal/models"
	pkghttp "github.com/tradeledger/superadmin/pkg/http"
)

// maxDocumentBytes caps privileged document payloads.
const maxDocumentBytes = 1 << 20

// AdminDataServiceInterface defines the interface for the privileged
// data gateway
type AdminDataServiceInterface interface {
	List(ctx context.Context, entity, addr, userAgent string) ([]*models.Document, error)
	Create(ctx context.Context, entity string, data json.RawMessage, addr, userAgent string) (*models.Document, error)
	Update(ctx context.Context, entity string, id uuid.UUID, data json.RawMessage, addr, userAgent string) (*models.Document, error)
	Delete(ctx context.Context, entity string, id uuid.UUID, addr, userAgent string) error
}

// AdminDataHandler fronts the privileged document store. The session
// middleware has already verified the caller by the time any of these
// run; nothing here re-checks credentials.
type AdminDataHandler struct {
	service        AdminDataServiceInterface
	trustedProxies []string
}

// NewAdminDataHandler creates a new AdminDataHandler
func NewAdminDataHandler(service AdminDataServiceInterface, trustedProxies []string) *AdminDataHandler {
	return &AdminDataHandler{
		service:        service,
		trustedProxies: trustedProxies,
	}
}

// List handles GET /admin-data?entity=...
func (h *AdminDataHandler) List(w http.ResponseWriter, r *http.Request) {
	entity := r.URL.Query().Get("entity")
	if entity == "" {
		pkghttp.WriteBadRequest(w, "entity query parameter is required")
		return
	}

	addr := pkghttp.ExtractClientIP(r, h.trustedProxies)

	docs, err := h.service.List(r.Context(), entity, addr, r.Header.Get("User-Agent"))
	if err != nil {
		h.writeDataError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// Create handles POST /admin-data?entity=...
func (h *AdminDataHandler) Create(w http.ResponseWriter, r *http.Request) {
	entity := r.URL.Query().Get("entity")
	if entity == "" {
		pkghttp.WriteBadRequest(w, "entity query parameter is required")
		return
	}

	data, err := readDocumentBody(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	addr := pkghttp.ExtractClientIP(r, h.trustedProxies)

	doc, err := h.service.Create(r.Context(), entity, data, addr, r.Header.Get("User-Agent"))
	if err != nil {
		h.writeDataError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, doc)
}

// Update handles PUT /admin-data?entity=...&id=...
func (h *AdminDataHandler) Update(w http.ResponseWriter, r *http.Request) {
	entity, id, ok := h.entityAndID(w, r)
	if !ok {
		return
	}

	data, err := readDocumentBody(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	addr := pkghttp.ExtractClientIP(r, h.trustedProxies)

	doc, err := h.service.Update(r.Context(), entity, id, data, addr, r.Header.Get("User-Agent"))
	if err != nil {
		h.writeDataError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, doc)
}

// Delete handles DELETE /admin-data?entity=...&id=...
func (h *AdminDataHandler) Delete(w http.ResponseWriter, r *http.Request) {
	entity, id, ok := h.entityAndID(w, r)
	if !ok {
		return
	}

	addr := pkghttp.ExtractClientIP(r, h.trustedProxies)

	if err := h.service.Delete(r.Context(), entity, id, addr, r.Header.Get("User-Agent")); err != nil {
		h.writeDataError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminDataHandler) entityAndID(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	entity := r.URL.Query().Get("entity")
	if entity == "" {
		pkghttp.WriteBadRequest(w, "entity query parameter is required")
		return "", uuid.Nil, false
	}

	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		pkghttp.WriteBadRequest(w, "id query parameter must be a valid UUID")
		return "", uuid.Nil, false
	}

	return entity, id, true
}

func (h *AdminDataHandler) writeDataError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Document not found")
	default:
		// ErrPersistence and anything unexpected fail the request.
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

func readDocumentBody(r *http.Request) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}
