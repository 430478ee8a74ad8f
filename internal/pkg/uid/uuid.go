package uid

import "github.com/google/uuid"

// UUID generates RFC 9562 UUID strings.
type UUID struct {
	ordered bool
}

// NewUUID returns a generator of random (version 4) UUIDs, used for
// correlation IDs.
func NewUUID() *UUID {
	return &UUID{}
}

// NewOrderedUUID returns a generator of time-ordered (version 7) UUIDs.
// Audit event IDs use it so consumers can sort by emission time.
func NewOrderedUUID() *UUID {
	return &UUID{ordered: true}
}

func (u *UUID) Generate() string {
	if !u.ordered {
		return uuid.NewString()
	}
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
