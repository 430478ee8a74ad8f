package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HMACSHA256 keys SHA-256 with a server-side secret. Digests are lowercase hex.
type HMACSHA256 struct {
	key []byte
}

func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{key: []byte(secret)}
}

func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	sum := s.mac(str)
	return []byte(hex.EncodeToString(sum)), nil
}

// Verify decodes hashed and compares the raw MACs in constant time. A digest
// that is not valid hex never verifies.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	want, err := hex.DecodeString(strings.ToLower(hashed))
	if err != nil || len(want) != sha256.Size {
		return false
	}
	return hmac.Equal(want, s.mac(str))
}

func (s *HMACSHA256) mac(str string) []byte {
	m := hmac.New(sha256.New, s.key)
	m.Write([]byte(str))
	return m.Sum(nil)
}
