package messaging

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type recordingBroker struct {
	Noop
	got OutgoingMessage
}

func (r *recordingBroker) Publish(_ context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	r.got = msg
	return PublishResult{Topic: destination}, nil
}

func TestWithTraceContext_InjectsTraceparent(t *testing.T) {

	// Arrange
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02},
		SpanID:     trace.SpanID{0x03},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	broker := &recordingBroker{}

	// Act
	_, err := WithTraceContext(broker).Publish(ctx, "auth.code.issued", OutgoingMessage{
		Headers: []Header{{Key: "cID", Value: []byte("c1")}},
	})

	// Assert
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	var traceparent string
	for _, h := range broker.got.Headers {
		if h.Key == "traceparent" {
			traceparent = string(h.Value)
		}
	}
	if traceparent == "" || traceparent[3:35] != sc.TraceID().String() {
		t.Fatalf("traceparent = %q, headers = %+v", traceparent, broker.got.Headers)
	}
	if broker.got.Headers[0].Key != "cID" {
		t.Fatal("existing headers must be kept first")
	}
}

func TestNewFromDriver(t *testing.T) {

	// Act
	none, errNone := NewFromDriver(context.Background(), "", FactoryOptions{})
	_, errUnknown := NewFromDriver(context.Background(), "rabbitmq", FactoryOptions{})

	// Assert
	if errNone != nil {
		t.Fatalf("empty driver: %v", errNone)
	}
	if _, ok := none.(*Noop); !ok {
		t.Fatalf("empty driver built %T, want *Noop", none)
	}
	if errUnknown == nil {
		t.Fatal("unknown driver must fail")
	}
}
