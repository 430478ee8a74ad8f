package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/entity"
)

func issue(t *testing.T, env *testEnv) *entity.OTPRecord {
	t.Helper()

	if err := env.uc.SendCode(context.Background(), SendCodeInput{}); err != nil {
		t.Fatalf("send code: %v", err)
	}
	return env.codes.current()
}

func TestVerifyCode_SuccessCreatesSessionAndConsumesCode(t *testing.T) {

	// Arrange
	env := newTestEnv(t, strictConfig)
	rec := issue(t, env)

	// Act
	out, err := env.uc.VerifyCode(context.Background(), VerifyCodeInput{Code: rec.Code})

	// Assert
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(out.Token) < 22 {
		t.Fatalf("token %q is shorter than 128 bits of entropy", out.Token)
	}
	if out.MaxAge != 7*24*time.Hour {
		t.Fatalf("max age = %v", out.MaxAge)
	}
	if env.codes.current() != nil {
		t.Fatal("code must be deleted after a successful verification")
	}
	sess, _ := env.sessions.GetSession(context.Background())
	if sess == nil {
		t.Fatal("expected stored session")
	}
	if sess.Digest == out.Token {
		t.Fatal("session secret must not be stored in plaintext")
	}
	if !env.hmac.Verify(sess.Digest, out.Token) {
		t.Fatal("stored digest must match the issued token")
	}
	if env.sessions.ttl != 7*24*time.Hour {
		t.Fatalf("session ttl = %v", env.sessions.ttl)
	}

	if err := env.goroutine.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(env.messaging.created) != 1 || env.messaging.created[0].IssuanceID != rec.ID {
		t.Fatalf("created events = %+v", env.messaging.created)
	}
}

func TestVerifyCode_SingleUse(t *testing.T) {

	// Arrange
	env := newTestEnv(t, strictConfig)
	rec := issue(t, env)
	if _, err := env.uc.VerifyCode(context.Background(), VerifyCodeInput{Code: rec.Code}); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	// Act
	_, err := env.uc.VerifyCode(context.Background(), VerifyCodeInput{Code: rec.Code})

	// Assert
	gerr := assertStatus(t, err, http.StatusBadRequest)
	if !errors.Is(err, entity.ErrNoCodeRequested) {
		t.Fatalf("expected ErrNoCodeRequested, got %v", err)
	}
	if gerr.Msg() != "No code requested. Please request a new code." {
		t.Fatalf("message = %q", gerr.Msg())
	}
}

func TestVerifyCode_ExpiryBoundary(t *testing.T) {

	// Arrange
	env := newTestEnv(t, strictConfig)
	rec := issue(t, env)

	// Act
	env.clock.Set(rec.ExpiresAt.Add(time.Millisecond))
	_, errExpired := env.uc.VerifyCode(context.Background(), VerifyCodeInput{Code: rec.Code})

	// Assert
	gerr := assertStatus(t, errExpired, http.StatusBadRequest)
	if !errors.Is(errExpired, entity.ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", errExpired)
	}
	if gerr.Msg() != "Code expired. Please request a new code." {
		t.Fatalf("message = %q", gerr.Msg())
	}
	if env.codes.current() == nil {
		t.Fatal("expired code must stay stored")
	}

	// Act
	env.clock.Set(rec.ExpiresAt)
	_, errAtExpiry := env.uc.VerifyCode(context.Background(), VerifyCodeInput{Code: rec.Code})

	// Assert
	if errAtExpiry != nil {
		t.Fatalf("code must be accepted at exactly expiresAt: %v", errAtExpiry)
	}
}

func TestVerifyCode_OverwriteInvalidatesPreviousCode(t *testing.T) {

	// Arrange
	env := newTestEnv(t, strictConfig, withOTP(&seqOTP{codes: []string{"111111", "222222"}}))
	first := issue(t, env)
	second := issue(t, env)

	// Act
	_, errFirst := env.uc.VerifyCode(context.Background(), VerifyCodeInput{Code: first.Code})
	_, errSecond := env.uc.VerifyCode(context.Background(), VerifyCodeInput{Code: second.Code})

	// Assert
	if !errors.Is(errFirst, entity.ErrIncorrectCode) {
		t.Fatalf("first code: expected ErrIncorrectCode, got %v", errFirst)
	}
	if errSecond != nil {
		t.Fatalf("second code: %v", errSecond)
	}
}

func TestVerifyCode_FormatGateSkipsStore(t *testing.T) {

	// Arrange
	env := newTestEnv(t, strictConfig)

	for _, code := range []string{"12345", "1234567", ""} {
		// Act
		_, err := env.uc.VerifyCode(context.Background(), VerifyCodeInput{Code: code})

		// Assert
		gerr := assertStatus(t, err, http.StatusBadRequest)
		if !errors.Is(err, entity.ErrInvalidFormat) {
			t.Fatalf("code %q: expected ErrInvalidFormat, got %v", code, err)
		}
		if gerr.Msg() != "Invalid code format" {
			t.Fatalf("message = %q", gerr.Msg())
		}
	}
	if env.codes.gets != 0 {
		t.Fatalf("store reads = %d, want 0", env.codes.gets)
	}
}

func TestVerifyCode_NonNumericSixCharactersIsIncorrect(t *testing.T) {

	// Arrange
	env := newTestEnv(t, strictConfig)
	issue(t, env)

	// Act
	_, err := env.uc.VerifyCode(context.Background(), VerifyCodeInput{Code: "abcdef"})

	// Assert
	if !errors.Is(err, entity.ErrIncorrectCode) {
		t.Fatalf("expected ErrIncorrectCode, got %v", err)
	}
}

func TestVerifyCode_IncorrectKeepsCodeForRetry(t *testing.T) {

	// Arrange
	env := newTestEnv(t, strictConfig)
	rec := issue(t, env)

	// Act
	for i := 0; i < 5; i++ {
		_, err := env.uc.VerifyCode(context.Background(), VerifyCodeInput{Code: "000000"})
		if !errors.Is(err, entity.ErrIncorrectCode) {
			t.Fatalf("attempt %d: expected ErrIncorrectCode, got %v", i, err)
		}
	}
	_, err := env.uc.VerifyCode(context.Background(), VerifyCodeInput{Code: rec.Code})

	// Assert
	if err != nil {
		t.Fatalf("correct code after failures: %v", err)
	}
}

func TestVerifyCode_StoreFailureIsInternal(t *testing.T) {

	// Arrange
	env := newTestEnv(t, strictConfig)
	env.codes.getErr = errStoreDown

	// Act
	_, err := env.uc.VerifyCode(context.Background(), VerifyCodeInput{Code: "123456"})

	// Assert
	gerr := assertStatus(t, err, http.StatusInternalServerError)
	if gerr.Msg() != "Internal server error" {
		t.Fatalf("message = %q", gerr.Msg())
	}
}

func TestVerifyCode_SessionSaveFailureKeepsCode(t *testing.T) {

	// Arrange
	env := newTestEnv(t, strictConfig)
	rec := issue(t, env)
	env.sessions.saveErr = errStoreDown

	// Act
	_, err := env.uc.VerifyCode(context.Background(), VerifyCodeInput{Code: rec.Code})

	// Assert
	assertStatus(t, err, http.StatusInternalServerError)
	if env.codes.current() == nil {
		t.Fatal("code must stay stored when no session was created")
	}
}
