// Package uid generates identifiers: random UUIDs for request correlation,
// time-ordered UUIDs for audit events, snowflake numbers for issuances and
// opaque random secrets for bearer credentials.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}
