package auth

import (
	"net/http"
	"time"
)

// CookieName is the session cookie every gated endpoint reads.
const CookieName = "token"

// CookieOptions carries the attributes that differ between development and production.
type CookieOptions struct {
	Secure   bool
	SameSite http.SameSite
}

// CookieOptionsFor returns cross-site cookies in production and strict same-site ones elsewhere.
func CookieOptionsFor(production bool) CookieOptions {
	if production {
		return CookieOptions{Secure: true, SameSite: http.SameSiteNoneMode}
	}
	return CookieOptions{Secure: false, SameSite: http.SameSiteStrictMode}
}

func SetSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// TokenFromRequest returns the session token from the cookie jar, or "" when absent.
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
