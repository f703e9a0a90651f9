package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit categories
const (
	AuditCategoryAuth     = "auth"
	AuditCategoryCRUD     = "crud"
	AuditCategorySettings = "settings"
	AuditCategorySystem   = "system"
)

// Audit actions emitted by the auth orchestrator. Every branch of the
// login state machine maps to exactly one of these.
const (
	AuditActionLoginBlockedRateLimit   = "LOGIN_BLOCKED_RATE_LIMIT"
	AuditActionLoginFailedUsername     = "LOGIN_FAILED_INVALID_USERNAME"
	AuditActionLoginFailedPassword     = "LOGIN_FAILED_INVALID_PASSWORD"
	AuditActionLoginFailedTOTP         = "LOGIN_FAILED_INVALID_TOTP"
	AuditActionLoginSecondFactorNeeded = "LOGIN_2FA_REQUIRED"
	AuditActionLoginSuccess            = "LOGIN_SUCCESS"
	AuditActionLogout                  = "LOGOUT"
	AuditActionSessionVerifyFailed     = "SESSION_VERIFY_FAILED"
)

// Actions emitted by the privileged-data gateway.
const (
	AuditActionDataRead   = "ADMIN_DATA_READ"
	AuditActionDataCreate = "ADMIN_DATA_CREATE"
	AuditActionDataUpdate = "ADMIN_DATA_UPDATE"
	AuditActionDataDelete = "ADMIN_DATA_DELETE"
)

// AuditEntry is an append-only record of a security-relevant event.
// Entries are never updated or deleted by the application and are never
// consulted for authorization decisions.
type AuditEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Action    string    `json:"action" db:"action"`
	Category  string    `json:"category" db:"category"`
	Details   string    `json:"details" db:"details"`
	IPAddress string    `json:"ip_address" db:"ip_address"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	Success   bool      `json:"success" db:"success"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuditFilter narrows the paginated audit listing.
type AuditFilter struct {
	Category string
	Success  *bool
	Search   string
	Limit    int
	Offset   int
}

// Normalize clamps the pagination window to its effective values. The
// returned filter is what every layer applies and reports.
func (f AuditFilter) Normalize() AuditFilter {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
