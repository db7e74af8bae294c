package models

import "time"

// AuditLog is one append-only record of a ledger-affecting action.
// Writes are best-effort: a failed audit write never blocks or rolls back
// the business transaction it describes.
type AuditLog struct {
	ID        int64     `json:"id" db:"id"`
	ActorID   *int64    `json:"actor_id,omitempty" db:"actor_id"`
	Action    string    `json:"action" db:"action"`
	Details   *string   `json:"details,omitempty" db:"details"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuditFilters defines the available filters for querying audit logs.
type AuditFilters struct {
	Action   *string `form:"action"`
	ActorID  *int64  `form:"actor_id"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
