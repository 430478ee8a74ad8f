package entity

import "time"

// Session is the current dashboard session. Only a digest of the secret
// handed to the browser is kept.
type Session struct {
	Digest    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer usable at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
