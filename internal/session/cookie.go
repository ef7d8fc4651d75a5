package session

import (
	"net/http"
	"time"
)

// CookieName is the session cookie. The gatekeeper and the auth handlers
// read and write the same name.
const CookieName = "token"

// Cookies writes and reads the session cookie. Secure is enabled in
// production so the token only travels over TLS there.
type Cookies struct {
	Secure bool
}

// Set places the token in an http-only cookie expiring with the token.
func (c Cookies) Set(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear deletes the session cookie.
func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest returns the raw token from the request cookie, or "" when the
// cookie is absent.
func FromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Current reads the request cookie and verifies it, returning nil rather
// than an error when the request carries no usable session. Call sites that
// only need "who is this, if anyone" use this instead of Verify.
func (m *Manager) Current(r *http.Request) *Claims {
	token := FromRequest(r)
	if token == "" {
		return nil
	}
	claims, err := m.Verify(token)
	if err != nil {
		return nil
	}
	return claims
}
