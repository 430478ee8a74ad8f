package inbound

import (
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/usecase"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/router"
)

const headerIdempotencyKey = "Idempotency-Key"

// HTTPEndpoint exposes the dashboard login handlers.
type HTTPEndpoint struct {
	uc     uc
	cookie cookieSettings
}

// SendCode issues a new one-time code and delivers it to the operator.
// @Summary Request access code
// @Description Generates a 6-digit code valid for 5 minutes and sends it to the configured chat. Any earlier code is replaced.
// @Tags Auth
// @Produce json
// @Param Idempotency-Key header string false "Repeats with the same key inside the idempotency window do not issue a new code"
// @Success 200 {object} router.successResponse "Code sent"
// @Failure 409 {object} router.errorResponse "Request with this key in progress or failed"
// @Failure 422 {object} router.errorResponse "Invalid idempotency key"
// @Failure 500 {object} router.errorResponse "Failed to send access code"
// @Router /api/auth/send-code [post]
func (h *HTTPEndpoint) SendCode(r *router.Request) (any, error) {
	if err := h.uc.SendCode(r.Context(), usecase.SendCodeInput{
		IdempotencyKey: r.GetHeader(headerIdempotencyKey),
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// Verify exchanges a valid code for a session cookie.
// @Summary Verify access code
// @Description Checks the submitted code and sets the dashboard_auth session cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse "Authenticated; Set-Cookie carries the session"
// @Failure 400 {object} router.errorResponse "Invalid code format, no code requested, code expired or incorrect code"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/auth/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		// an unreadable body is reported as a malformed code
		req.Code = ""
	}

	resp, err := h.uc.VerifyCode(r.Context(), usecase.VerifyCodeInput{Code: req.Code})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{cookie: h.cookie.session(resp.Token, resp.MaxAge)}, nil
}

// Session reports whether the session cookie is valid.
// @Summary Check session
// @Tags Auth
// @Produce json
// @Success 200 {object} router.successResponse{data=SessionResponse} "Authenticated"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/auth/session [get]
func (h *HTTPEndpoint) Session(r *router.Request) (any, error) {
	resp, err := h.uc.Session(r.Context(), usecase.SessionInput{Token: r.GetCookie(h.cookie.name)})
	if err != nil {
		return nil, err
	}

	return SessionResponse{Authenticated: resp.Authenticated, ExpiresAt: resp.ExpiresAt}, nil
}

// Logout revokes the session and clears the cookie.
// @Summary Logout
// @Tags Auth
// @Produce json
// @Success 200 {object} router.successResponse "Logged out"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/auth/logout [post]
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	if err := h.uc.Logout(r.Context(), usecase.LogoutInput{Token: r.GetCookie(h.cookie.name)}); err != nil {
		return nil, err
	}

	return LogoutResponse{cookie: h.cookie.expired()}, nil
}

// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} router.successResponse
// @Router /health [get]
func (h *HTTPEndpoint) Health(*router.Request) (any, error) {
	return nil, nil
}
