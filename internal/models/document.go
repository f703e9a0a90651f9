package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Document is a privileged record held behind the admin-data gateway.
// The payload is opaque JSON; entity names partition the table but mean
// nothing to the security core.
type Document struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Entity    string          `json:"entity" db:"entity"`
	Data      json.RawMessage `json:"data" db:"data"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
