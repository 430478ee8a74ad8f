package messaging

import (
	"context"
	"log/slog"
	"time"
)

// Noop drops messages. It is used when no broker is configured.
type Noop struct{}

// NewNoop returns a Messaging that only logs at debug level.
func NewNoop() *Noop {
	return &Noop{}
}

func (*Noop) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	slog.DebugContext(ctx, "message dropped, no broker configured", "destination", destination, "bytes", len(msg.Body))
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

func (*Noop) Close() error {
	return nil
}
