package logging

import (
	"time"

	"go.uber.org/zap"
)

// AuditEventType names a state-changing action.
type AuditEventType string

const (
	AuditRecipeCreate AuditEventType = "recipe_create"
	AuditRecipeDelete AuditEventType = "recipe_delete"
	AuditReload       AuditEventType = "store_reload"
	AuditSessionSwap  AuditEventType = "session_change"
)

// AuditEvent is one structured audit record.
type AuditEvent struct {
	Type       AuditEventType
	UserID     int
	RecipeID   int
	RequestID  string
	Success    bool
	DurationMs int64
	Error      string
}

// Audit writes ev to the audit category. Failures are logged at warn level.
func Audit(ev AuditEvent) {
	fields := []interface{}{
		zap.String("event", string(ev.Type)),
		zap.Int("user_id", ev.UserID),
		zap.Bool("success", ev.Success),
		zap.Int64("duration_ms", ev.DurationMs),
	}
	if ev.RecipeID != 0 {
		fields = append(fields, zap.Int("recipe_id", ev.RecipeID))
	}
	if ev.RequestID != "" {
		fields = append(fields, zap.String("request_id", ev.RequestID))
	}

	l := Get(CategoryAudit)
	if ev.Success {
		l.Infow("audit", fields...)
		return
	}
	l.Warnw("audit", append(fields, zap.String("error", ev.Error))...)
}

// Since returns the elapsed milliseconds for AuditEvent.DurationMs.
func Since(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
