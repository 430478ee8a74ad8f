package entity

import (
	"crypto/subtle"
	"time"
)

// CodeLength is the exact number of characters of a one-time code.
const CodeLength = 6

// OTPRecord is the single outstanding one-time code.
type OTPRecord struct {
	ID        int64
	Code      string
	ExpiresAt time.Time
}

// Expired reports whether now is past ExpiresAt. Both sides are compared at
// millisecond precision, so a code is still valid at ExpiresAt itself.
func (r OTPRecord) Expired(now time.Time) bool {
	return now.UnixMilli() > r.ExpiresAt.UnixMilli()
}

// Matches reports whether code equals the stored code exactly.
func (r OTPRecord) Matches(code string) bool {
	return subtle.ConstantTimeCompare([]byte(r.Code), []byte(code)) == 1
}
