package uid

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestUUID_Versions(t *testing.T) {

	// Act
	random := NewUUID().Generate()
	ordered := NewOrderedUUID().Generate()

	// Assert
	if v := uuid.MustParse(random).Version(); v != 4 {
		t.Fatalf("NewUUID version = %d, want 4", v)
	}
	if v := uuid.MustParse(ordered).Version(); v != 7 {
		t.Fatalf("NewOrderedUUID version = %d, want 7", v)
	}
}

func TestSecret(t *testing.T) {

	// Arrange
	s, err := NewSecret(32)
	if err != nil {
		t.Fatalf("NewSecret: %v", err)
	}

	// Act
	a, b := s.Generate(), s.Generate()

	// Assert
	raw, err := base64.RawURLEncoding.DecodeString(a)
	if err != nil || len(raw) != 32 {
		t.Fatalf("token %q decodes to %d bytes, err %v", a, len(raw), err)
	}
	if a == b {
		t.Fatal("two tokens collided")
	}
}

func TestNewSecret_TooShort(t *testing.T) {

	// Act
	_, err := NewSecret(MinSecretBytes - 1)

	// Assert
	if !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("err = %v, want ErrSecretTooShort", err)
	}
}

func TestSnowflake_Increasing(t *testing.T) {

	// Arrange
	s, err := NewSnowflake()
	if err != nil {
		t.Fatalf("NewSnowflake: %v", err)
	}

	// Act
	first, second := s.Generate(), s.Generate()

	// Assert
	if second <= first {
		t.Fatalf("ids not increasing: %d then %d", first, second)
	}
}
