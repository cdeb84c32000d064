// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/contacthub/internal/app/store/audit"
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"go.uber.org/zap"
)

// Destinations accepted by Config fields.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// ValidMode reports whether s is an accepted destination setting.
func ValidMode(s string) bool {
	switch s {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Config holds audit logging configuration.
type Config struct {
	// Contact controls logging for contact mutations (create, update, delete, status, notes).
	Contact string
	// Role controls logging for role mutations.
	Role string
}

// Uniform returns a Config that sends every category to the same destination.
func Uniform(mode string) Config {
	return Config{Contact: mode, Role: mode}
}

// EventStore persists audit events. *audit.Store satisfies it.
type EventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via EventStore) and structured logs (via zap).
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store EventStore, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies); the left-most
	// entry is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.String("contact_id", event.ContactID),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.ActorSubject != "" {
		fields = append(fields, zap.String("actor", event.ActorSubject))
	}
	if event.RoleType != "" {
		fields = append(fields, zap.String("role_type", event.RoleType))
	}
	if event.RoleID != "" {
		fields = append(fields, zap.String("role_id", event.RoleID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryContact:
		setting = l.config.Contact
	case audit.CategoryRole:
		setting = l.config.Role
	}
	if setting == "" {
		setting = ModeAll
	}

	if setting == ModeOff {
		return
	}

	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}

	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// base fills the request-derived fields shared by every event.
func base(r *http.Request, category, eventType, contactID string) audit.Event {
	e := audit.Event{
		Category:  category,
		EventType: eventType,
		ContactID: contactID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		RequestID: r.Header.Get("X-Request-ID"),
		Success:   true,
	}
	if p, ok := auth.CurrentPrincipal(r); ok {
		e.ActorSubject = p.Subject
		e.ActorName = p.Name
	}
	return e
}

// --- Contact Events ---

// ContactCreated logs creation of a contact.
func (l *Logger) ContactCreated(ctx context.Context, r *http.Request, c models.Contact) {
	e := base(r, audit.CategoryContact, audit.EventContactCreated, c.ID)
	e.Details = map[string]string{
		"contact_type": string(c.ContactType),
		"display_name": c.DisplayName,
	}
	l.Log(ctx, e)
}

// ContactUpdated logs an edit of a contact's details.
func (l *Logger) ContactUpdated(ctx context.Context, r *http.Request, c models.Contact) {
	e := base(r, audit.CategoryContact, audit.EventContactUpdated, c.ID)
	e.Details = map[string]string{
		"display_name": c.DisplayName,
	}
	l.Log(ctx, e)
}

// ContactDeleted logs deletion of a contact.
func (l *Logger) ContactDeleted(ctx context.Context, r *http.Request, contactID, displayName string) {
	e := base(r, audit.CategoryContact, audit.EventContactDeleted, contactID)
	if displayName != "" {
		e.Details = map[string]string{"display_name": displayName}
	}
	l.Log(ctx, e)
}

// ContactStatusChanged logs an active/inactive toggle.
func (l *Logger) ContactStatusChanged(ctx context.Context, r *http.Request, contactID string, active bool) {
	e := base(r, audit.CategoryContact, audit.EventContactStatusChanged, contactID)
	e.Details = map[string]string{"is_active": strconv.FormatBool(active)}
	l.Log(ctx, e)
}

// NotesUpdated logs a notes auto-save.
func (l *Logger) NotesUpdated(ctx context.Context, r *http.Request, contactID string, length int) {
	e := base(r, audit.CategoryContact, audit.EventContactNotesUpdated, contactID)
	e.Details = map[string]string{"length": strconv.Itoa(length)}
	l.Log(ctx, e)
}

// --- Role Events ---

// RoleCreated logs assignment of a role to a contact.
func (l *Logger) RoleCreated(ctx context.Context, r *http.Request, role models.Role) {
	l.Log(ctx, roleEvent(r, audit.EventRoleCreated, role))
}

// RoleUpdated logs an edit of a role.
func (l *Logger) RoleUpdated(ctx context.Context, r *http.Request, role models.Role) {
	l.Log(ctx, roleEvent(r, audit.EventRoleUpdated, role))
}

// RoleDeleted logs removal of a role.
func (l *Logger) RoleDeleted(ctx context.Context, r *http.Request, contactID string, t models.RoleType, roleID string) {
	e := base(r, audit.CategoryRole, audit.EventRoleDeleted, contactID)
	e.RoleType = string(t)
	e.RoleID = roleID
	l.Log(ctx, e)
}

func roleEvent(r *http.Request, eventType string, role models.Role) audit.Event {
	e := base(r, audit.CategoryRole, eventType, role.ContactID)
	e.RoleType = string(role.Type)
	e.RoleID = role.ID
	if role.Status != "" {
		e.Details = map[string]string{"status": role.Status}
	}
	return e
}
