package mail

import (
	"context"
	"io"
)

// Message is a single plain-text email.
type Message struct {
	// From overrides the configured sender when set.
	From    string
	To      []string
	Subject string
	// TextBody is sent as text/plain UTF-8.
	TextBody string
}

// Mail sends messages through some provider.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
