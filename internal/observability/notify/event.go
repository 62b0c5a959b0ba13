package notify

import (
	"context"
	"time"
)

// AccessRequestPayload describes a first sign-in that left an unauthorized record behind.
type AccessRequestPayload struct {
	Email       string
	SessionID   string
	RequestedAt time.Time
	Metadata    map[string]string
}

// Sink describes a destination that tells administrators about new access requests.
type Sink interface {
	SendAccessRequest(ctx context.Context, payload AccessRequestPayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload AccessRequestPayload) error

// SendAccessRequest implements the Sink interface.
func (f SinkFunc) SendAccessRequest(ctx context.Context, payload AccessRequestPayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}
