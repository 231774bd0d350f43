package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// AuditLogHandler writes every event to the structured log.
type AuditLogHandler struct {
	logger *slog.Logger
}

// NewAuditLogHandler creates an AuditLogHandler. A nil logger uses slog.Default().
func NewAuditLogHandler(l *slog.Logger) *AuditLogHandler {
	if l == nil {
		l = slog.Default()
	}
	return &AuditLogHandler{logger: l.With("component", "audit")}
}

// HandleEvent implements EventHandler.
func (h *AuditLogHandler) HandleEvent(ctx context.Context, event *Event) error {
	log := logger.FromContextOrDefault(ctx, h.logger)
	if log != h.logger {
		log = log.With("component", "audit")
	}

	attrs := []any{
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.Int64("task_id", event.TaskID),
		slog.Int64("actor_id", event.ActorID),
		slog.Time("occurred_at", event.OccurredAt),
	}
	if len(event.Payload) > 0 {
		attrs = append(attrs, slog.String("payload", string(event.Payload)))
	}

	log.InfoContext(ctx, "task event", attrs...)
	return nil
}
