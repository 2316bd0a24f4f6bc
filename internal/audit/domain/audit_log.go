package domain

import "time"

// AuditLog represents one auth event (register, login, refresh outcomes).
type AuditLog struct {
	ID        string
	UserID    string // empty when the actor is unknown (e.g. failed login)
	Action    string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
