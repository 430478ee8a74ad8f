// Package messaging provides a broker-agnostic API for publishing messages.
//
// Use-case code depends on the Publisher interface only, so the broker (Kafka,
// NATS, NSQ, Google Pub/Sub, or none) is picked by configuration. Real brokers
// receive the publisher's trace context in the message headers.
package messaging
