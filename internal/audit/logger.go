// Package audit records auth events (register, login, refresh) best-effort.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"task-forge/backend/internal/audit/domain"
	auditrepo "task-forge/backend/internal/audit/repository"
)

// Actions recorded by the auth handlers.
const (
	ActionRegisterSuccess = "register_success"
	ActionLoginSuccess    = "login_success"
	ActionLoginFailure    = "login_failure"
	ActionTokenRefresh    = "token_refresh"
)

// AuditLogger writes a single audit event. LogEvent is best-effort: failures
// are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, ip, metadata string)
}

// Logger implements AuditLogger using the audit repository.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns an AuditLogger that persists to repo.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, ip, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	if ip == "" {
		ip = "unknown"
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s: %v", action, err)
	}
}
