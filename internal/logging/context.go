package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType names the machine-readable event behind a WARN or ERROR line.
	FieldEventType = "event_type"
	// FieldErrorHint is the operator-facing next step for a failure.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldEntityID identifies the card, product or FAQ a line refers to.
	FieldEntityID = "entity_id"
	// FieldTable names the cache collection a line refers to.
	FieldTable = "table"
	// FieldSweepID correlates every line emitted by one cleanup sweep.
	FieldSweepID = "sweep_id"
	// FieldSessionID correlates every line emitted by one CLI invocation.
	FieldSessionID = "session_id"
)

type sessionKey struct{}

// WithSessionID stores a session identifier on ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionIDFromContext returns the session identifier stored on ctx.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(sessionKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := SessionIDFromContext(ctx); ok {
		return logger.With(String(FieldSessionID, id))
	}
	return logger
}
