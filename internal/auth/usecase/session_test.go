package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/entity"
)

func login(t *testing.T, env *testEnv) string {
	t.Helper()

	rec := issue(t, env)
	out, err := env.uc.VerifyCode(context.Background(), VerifyCodeInput{Code: rec.Code})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	return out.Token
}

func TestAuthorize_Strict(t *testing.T) {

	// Arrange
	env := newTestEnv(t, strictConfig)
	token := login(t, env)

	// Act & Assert
	if err := env.uc.Authorize(context.Background(), AuthorizeInput{Token: token}); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	for _, tok := range []string{"", "forged-cookie-value"} {
		err := env.uc.Authorize(context.Background(), AuthorizeInput{Token: tok})
		if !errors.Is(err, entity.ErrUnauthenticated) {
			t.Fatalf("token %q: expected ErrUnauthenticated, got %v", tok, err)
		}
	}
}

func TestAuthorize_StrictRejectsExpiredSession(t *testing.T) {

	// Arrange
	env := newTestEnv(t, strictConfig)
	token := login(t, env)
	env.clock.Set(env.clock.Now().Add(8 * 24 * time.Hour))

	// Act
	err := env.uc.Authorize(context.Background(), AuthorizeInput{Token: token})

	// Assert
	if !errors.Is(err, entity.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthorize_LenientAcceptsAnyNonEmptyToken(t *testing.T) {

	// Arrange
	env := newTestEnv(t, lenientConfig)

	// Act
	errAny := env.uc.Authorize(context.Background(), AuthorizeInput{Token: "anything"})
	errEmpty := env.uc.Authorize(context.Background(), AuthorizeInput{Token: ""})

	// Assert
	if errAny != nil {
		t.Fatalf("lenient gate rejected non-empty token: %v", errAny)
	}
	if !errors.Is(errEmpty, entity.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for empty token, got %v", errEmpty)
	}
}

func TestSession(t *testing.T) {

	// Arrange
	env := newTestEnv(t, lenientConfig)
	token := login(t, env)

	// Act
	out, err := env.uc.Session(context.Background(), SessionInput{Token: token})
	_, errForged := env.uc.Session(context.Background(), SessionInput{Token: "forged"})

	// Assert
	if err != nil || !out.Authenticated {
		t.Fatalf("session: out=%+v err=%v", out, err)
	}
	assertStatus(t, errForged, http.StatusUnauthorized)
}

func TestLogout_RevokesOnlyMatchingSession(t *testing.T) {

	// Arrange
	env := newTestEnv(t, strictConfig)
	token := login(t, env)

	// Act
	errForged := env.uc.Logout(context.Background(), LogoutInput{Token: "forged"})
	stillValid := env.uc.Authorize(context.Background(), AuthorizeInput{Token: token})
	errLogout := env.uc.Logout(context.Background(), LogoutInput{Token: token})
	afterLogout := env.uc.Authorize(context.Background(), AuthorizeInput{Token: token})
	errAgain := env.uc.Logout(context.Background(), LogoutInput{Token: token})

	// Assert
	if errForged != nil || errLogout != nil || errAgain != nil {
		t.Fatalf("logout errors: forged=%v logout=%v again=%v", errForged, errLogout, errAgain)
	}
	if stillValid != nil {
		t.Fatalf("forged logout must not revoke the session: %v", stillValid)
	}
	if !errors.Is(afterLogout, entity.ErrUnauthenticated) {
		t.Fatalf("expected session revoked, got %v", afterLogout)
	}

	if err := env.goroutine.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(env.messaging.revoked) != 1 {
		t.Fatalf("revoked events = %d, want 1", len(env.messaging.revoked))
	}
}
