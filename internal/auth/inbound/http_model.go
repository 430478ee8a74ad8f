package inbound

import (
	"net/http"
	"time"
)

type VerifyRequest struct {
	Code string `json:"code"`
}

type VerifyResponse struct {
	cookie *http.Cookie
}

func (v VerifyResponse) Cookies() []*http.Cookie {
	return []*http.Cookie{v.cookie}
}

func (VerifyResponse) Data() any {
	return nil
}

type SessionResponse struct {
	Authenticated bool      `json:"authenticated"`
	ExpiresAt     time.Time `json:"expires_at,omitzero"`
}

type LogoutResponse struct {
	cookie *http.Cookie
}

func (l LogoutResponse) Cookies() []*http.Cookie {
	return []*http.Cookie{l.cookie}
}

func (LogoutResponse) Data() any {
	return nil
}
