package entity

import (
	"testing"
	"time"
)

func TestOTPRecord_Expired(t *testing.T) {

	// Arrange
	exp := time.UnixMilli(1_700_000_300_000)
	rec := OTPRecord{Code: "123456", ExpiresAt: exp}

	// Act & Assert
	if rec.Expired(exp) {
		t.Fatal("record must still be valid at expiresAt")
	}
	if !rec.Expired(exp.Add(time.Millisecond)) {
		t.Fatal("record must be expired one millisecond after expiresAt")
	}
	if rec.Expired(exp.Add(-time.Minute)) {
		t.Fatal("record must be valid before expiresAt")
	}
}

func TestOTPRecord_Matches(t *testing.T) {

	// Arrange
	rec := OTPRecord{Code: "123456"}

	// Act & Assert
	if !rec.Matches("123456") {
		t.Fatal("identical code must match")
	}
	for _, c := range []string{"123457", "12345", "1234567", " 123456", ""} {
		if rec.Matches(c) {
			t.Fatalf("code %q must not match", c)
		}
	}
}

func TestNotification_Markdown(t *testing.T) {

	// Arrange
	n := Notification{Code: "482913", TTL: 5 * time.Minute}

	// Act
	got := n.Markdown()

	// Assert
	want := "🔐 *Dashboard Access Code*\n\nYour one-time code: `482913`\n\nExpires in 5 minutes."
	if got != want {
		t.Fatalf("markdown = %q, want %q", got, want)
	}
}

func TestSession_Expired(t *testing.T) {

	// Arrange
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: now.Add(time.Hour)}

	// Act & Assert
	if s.Expired(now) {
		t.Fatal("session must be valid before expiry")
	}
	if !s.Expired(now.Add(time.Hour)) {
		t.Fatal("session must be expired at expiry")
	}
	if (Session{}).Expired(now) {
		t.Fatal("session without expiry never expires")
	}
}
