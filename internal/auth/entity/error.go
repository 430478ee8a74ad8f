package entity

import "errors"

var (
	ErrInvalidFormat   = errors.New("auth: invalid code format")
	ErrNoCodeRequested = errors.New("auth: no code requested")
	ErrCodeExpired     = errors.New("auth: code expired")
	ErrIncorrectCode   = errors.New("auth: incorrect code")
	ErrNotify          = errors.New("auth: notify failed")
	ErrUnauthenticated = errors.New("auth: unauthenticated")
)
