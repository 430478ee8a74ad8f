package entity

import (
	"fmt"
	"time"
)

// Notification is the message carrying a freshly issued code.
type Notification struct {
	IssuanceID int64
	Code       string
	TTL        time.Duration
}

// Subject is a short title used by channels that support one.
func (Notification) Subject() string {
	return "Dashboard Access Code"
}

// Markdown renders the message for Telegram's Markdown parse mode.
func (n Notification) Markdown() string {
	return fmt.Sprintf("🔐 *%s*\n\nYour one-time code: `%s`\n\nExpires in %s.", n.Subject(), n.Code, humanMinutes(n.TTL))
}

// Text renders the message as plain text.
func (n Notification) Text() string {
	return fmt.Sprintf("%s\n\nYour one-time code: %s\n\nExpires in %s.", n.Subject(), n.Code, humanMinutes(n.TTL))
}

func humanMinutes(d time.Duration) string {
	m := int(d / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
