// Package hash provides keyed hashing for secrets that must be compared but
// never stored in plaintext.
//
// The session store keeps only the HMAC digest of the session secret and
// verifies presented cookies against it in constant time.
package hash
