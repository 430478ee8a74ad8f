// Package config reads the dashboard settings. Keys are dotted paths such as
// "modules.auth.code_ttl_minutes"; missing keys return the zero value unless a
// default was registered.
package config

import (
	"io"
	"time"
)

type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetFloat64(key string) float64

	// GetSecond, GetMinute and GetDay read an integer and scale it to a
	// duration, so "code_ttl_minutes: 5" becomes 5*time.Minute.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetDay(key string) time.Duration

	// GetArray reads a comma separated string or a YAML list. Entries are
	// trimmed and blanks dropped; an absent key gives nil.
	GetArray(key string) []string
}
