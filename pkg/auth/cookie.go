package auth

import (
	"net/http"
	"time"

	"github.com/shoplens/shoplens-backend/pkg/config"
)

// NewSessionCookie wraps the signed token in the configured cookie.
func NewSessionCookie(cfg config.SessionConfig, token string, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		Expires:  now.Add(cfg.TTL),
		MaxAge:   int(cfg.TTL.Seconds()),
		Secure:   cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie returns an expired cookie that removes the session cookie.
func ClearSessionCookie(cfg config.SessionConfig) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   cfg.CookieDomain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
