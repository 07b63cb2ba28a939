package auth

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventSignUpSuccess        ActivityEventType = "auth.signup.success"
	ActivityEventSignUpFailure        ActivityEventType = "auth.signup.failure"
	ActivityEventSignInSuccess        ActivityEventType = "auth.signin.success"
	ActivityEventSignInFailure        ActivityEventType = "auth.signin.failure"
	ActivityEventFederatedSuccess     ActivityEventType = "auth.federated.success"
	ActivityEventFederatedFailure     ActivityEventType = "auth.federated.failure"
	ActivityEventFederatedProvisioned ActivityEventType = "auth.federated.provisioned"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	Subject    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
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
