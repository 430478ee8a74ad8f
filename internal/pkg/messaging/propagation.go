package messaging

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// WithTraceContext injects the active span context of each Publish call into
// the message headers using the global propagator.
func WithTraceContext(m Messaging) Messaging {
	return &traced{Messaging: m}
}

type traced struct {
	Messaging
}

func (t *traced) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	carrier := headerCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Headers = append(msg.Headers, Header{Key: k, Value: []byte(v)})
	}
	return t.Messaging.Publish(ctx, destination, msg)
}

// headerCarrier collects injected fields before they become Headers.
type headerCarrier map[string]string

var _ propagation.TextMapCarrier = headerCarrier{}

func (c headerCarrier) Get(key string) string { return c[key] }

func (c headerCarrier) Set(key, value string) { c[key] = value }

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
