package messaging

import (
	"encoding/json"
	"fmt"
)

// Envelope wraps a body together with its headers for brokers that only move
// raw bytes. Consumers of such brokers decode it with OpenEnvelope.
type Envelope struct {
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body"`
}

func sealEnvelope(msg OutgoingMessage) ([]byte, error) {
	body := msg.Body
	if !json.Valid(body) {
		// keep non-JSON payloads as a JSON string
		quoted, err := json.Marshal(string(body))
		if err != nil {
			return nil, err
		}
		body = quoted
	}
	return json.Marshal(Envelope{Headers: headerMap(msg.Headers), Body: body})
}

// OpenEnvelope decodes a payload produced for a header-less broker.
func OpenEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("messaging: decode envelope: %w", err)
	}
	return env, nil
}
