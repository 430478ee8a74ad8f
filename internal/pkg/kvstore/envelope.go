package kvstore

import (
	"encoding/json"
	"time"
)

// envelope is the on-disk/in-bucket form used by drivers without native expiry.
type envelope struct {
	Value     []byte `json:"value"`
	ExpiresAt int64  `json:"expires_at,omitempty"` // unix milliseconds, 0 = never
}

func newEnvelope(value []byte, ttl time.Duration, now time.Time) envelope {
	e := envelope{Value: value}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl).UnixMilli()
	}
	return e
}

func (e envelope) expired(now time.Time) bool {
	return e.ExpiresAt > 0 && now.UnixMilli() >= e.ExpiresAt
}

func encodeEnvelope(e envelope) ([]byte, error) {
	return json.Marshal(e)
}

func decodeEnvelope(b []byte) (envelope, error) {
	var e envelope
	err := json.Unmarshal(b, &e)
	return e, err
}
