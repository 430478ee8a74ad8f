package messaging

import (
	"context"
	"io"
	"time"
)

// Messaging is a broker-agnostic publishing client.
type Messaging interface {
	io.Closer
	Publisher
}

// Publisher publishes messages to a destination (topic or subject).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage is one audit record on its way to a broker.
type OutgoingMessage struct {
	Body []byte
	// ID is unique per message. NATS sends it as Nats-Msg-Id, which
	// JetStream deduplicates on.
	ID string
	// Key groups related messages: the Kafka partition key and the Pub/Sub
	// ordering key.
	Key []byte
	// Headers may repeat a key. Brokers without native headers receive them
	// inside an Envelope.
	Headers []Header
}

type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries the broker's answer where it has one.
type PublishResult struct {
	MessageID string
	Topic     string
	Timestamp time.Time
}

// headerMap flattens headers; the last value of a repeated key wins and empty
// keys are dropped.
func headerMap(headers []Header) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	m := make(map[string]string, len(headers))
	for _, h := range headers {
		if h.Key != "" {
			m[h.Key] = string(h.Value)
		}
	}
	return m
}
