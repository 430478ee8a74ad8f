package uid

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// MinSecretBytes is the smallest accepted secret size (128 bits).
const MinSecretBytes = 16

// ErrSecretTooShort is returned when a generator is configured below MinSecretBytes.
var ErrSecretTooShort = errors.New("uid: secret must be at least 16 bytes")

// Secret produces unguessable tokens from crypto/rand, base64url encoded without padding.
type Secret struct {
	size int
}

// NewSecret returns a generator of size random bytes per token.
func NewSecret(size int) (*Secret, error) {
	if size < MinSecretBytes {
		return nil, ErrSecretTooShort
	}
	return &Secret{size: size}, nil
}

// Generate returns a fresh token. crypto/rand.Read never fails on supported
// platforms; a failure there is unrecoverable, so it panics.
func (s *Secret) Generate() string {
	b := make([]byte, s.size)
	if _, err := rand.Read(b); err != nil {
		panic("uid: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
