package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tradeledger/superadmin/internal/models"
	pkghttp "github.com/tradeledger/superadmin/pkg/http"
)

// AuditServiceInterface defines the interface for audit trail reads
type AuditServiceInterface interface {
	List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, int64, error)
}

// AuditHandler serves the privileged audit trail listing.
type AuditHandler struct {
	service AuditServiceInterface
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service AuditServiceInterface) *AuditHandler {
	return &AuditHandler{service: service}
}

// AuditListResponse is the paginated audit listing body
type AuditListResponse struct {
	Entries []*models.AuditEntry `json:"entries"`
	Total   int64                `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

// List handles GET /audit-logs with optional category, success, q,
// limit, and offset query parameters. Entries come back newest-first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Normalize up front so the response echoes the window that was
	// actually applied, not whatever the caller asked for.
	filter := models.AuditFilter{
		Category: q.Get("category"),
		Search:   q.Get("q"),
		Limit:    parseIntParam(q.Get("limit"), 50),
		Offset:   parseIntParam(q.Get("offset"), 0),
	}.Normalize()

	if raw := q.Get("success"); raw != "" {
		success, err := strconv.ParseBool(raw)
		if err != nil {
			pkghttp.WriteBadRequest(w, "success must be true or false")
			return
		}
		filter.Success = &success
	}

	entries, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, AuditListResponse{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

func parseIntParam(raw string, defaultVal int) int {
	if raw == "" {
		return defaultVal
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return defaultVal
}
