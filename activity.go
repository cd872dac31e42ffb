package session

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported session activity categories.
type ActivityEventType string

const (
	ActivityEventStartResolved   ActivityEventType = "session.start.resolved"
	ActivityEventLoginSuccess    ActivityEventType = "session.login.success"
	ActivityEventLoginFailure    ActivityEventType = "session.login.failure"
	ActivityEventRegisterSuccess ActivityEventType = "session.register.success"
	ActivityEventRegisterFailure ActivityEventType = "session.register.failure"
	ActivityEventRenewSuccess    ActivityEventType = "session.renew.success"
	ActivityEventExpired         ActivityEventType = "session.expired"
	ActivityEventLogout          ActivityEventType = "session.logout"
)

// ActivityEvent captures audit-friendly information about a lifecycle action.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     string
	FromStatus Status
	ToStatus   Status
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
// Sinks run best-effort; errors are logged, never propagated.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
