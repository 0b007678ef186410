package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent captures the who/where/outcome of a security-relevant action.
type AuditEvent struct {
	EventType     string
	UserID        string
	Email         string
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger emits structured audit records on top of slog. Failed events
// are logged at Warn so alerting can key off level alone.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LogLoginAttempt records the outcome of a credential check.
func (al *AuditLogger) LogLoginAttempt(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.Email != "" {
		attrs = append(attrs, slog.String("email", SanitizedEmail(event.Email)))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	al.log(event.Success, attrs)
}

// LogRateLimitBlock records an identifier crossing its attempt threshold.
func (al *AuditLogger) LogRateLimitBlock(identifier, actionType string, attempts int, blockedUntil time.Time) {
	al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit",
		slog.String("audit_type", "rate_limit"),
		slog.String("event_type", "blocked"),
		slog.String("identifier", identifier),
		slog.String("action_type", actionType),
		slog.Int("attempts", attempts),
		slog.String("blocked_until", blockedUntil.UTC().Format(time.RFC3339)),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)
}

// LogAccountAction records account lifecycle events (registration,
// verification, 2FA changes, deletion).
func (al *AuditLogger) LogAccountAction(eventType, userID, ipAddress string, metadata map[string]string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "account"),
		slog.String("event_type", eventType),
		slog.String("user_id", userID),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if ipAddress != "" {
		attrs = append(attrs, slog.String("ip_address", ipAddress))
	}

	for key, val := range metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
}

func (al *AuditLogger) log(success bool, attrs []slog.Attr) {
	level := slog.LevelWarn
	if success {
		level = slog.LevelInfo
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}
