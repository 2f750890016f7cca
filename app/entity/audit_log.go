package entity

import (
	"database/sql"
	"time"
)

// AuditLog rows are append-only. UserID is NULL when the attempt could not be tied to a user.
type AuditLog struct {
	ID        uint64
	Timestamp time.Time
	Action    string
	Status    string
	UserID    sql.NullInt64
}
