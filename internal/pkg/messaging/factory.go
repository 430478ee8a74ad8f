package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Drivers accepted by messaging.driver.
const (
	DriverNone         = "none"
	DriverNSQ          = "nsq"
	DriverNATS         = "nats"
	DriverKafka        = "kafka"
	DriverGooglePubSub = "google-pubsub"
)

var ErrUnknownDriver = errors.New("messaging: unknown driver")

type FactoryOptions struct {
	NSQ    NSQConfig
	Kafka  KafkaConfig
	NATS   NATSConfig
	PubSub PubSubConfig
}

// NewFromDriver builds the broker client for driver. Real brokers are wrapped
// so every message carries the W3C trace context of its publisher; "none" or
// an empty driver drops messages.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Messaging, error) {
	var (
		m   Messaging
		err error
	)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverNone, "":
		return NewNoop(), nil
	case DriverNSQ:
		m, err = NewNSQ(opts.NSQ)
	case DriverKafka:
		m, err = NewKafka(opts.Kafka)
	case DriverNATS:
		m, err = NewNATS(opts.NATS)
	case DriverGooglePubSub:
		m, err = NewPubSub(ctx, opts.PubSub)
	default:
		return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownDriver, driver,
			strings.Join([]string{DriverNone, DriverNSQ, DriverNATS, DriverKafka, DriverGooglePubSub}, ", "))
	}
	if err != nil {
		return nil, err
	}
	return WithTraceContext(m), nil
}
