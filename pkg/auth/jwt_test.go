package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestSessionToken_RoundTrip(t *testing.T) {
	tok, err := NewSessionToken(Identity{Email: "g@x.com", Name: "Guest"}, testSecret, 365*24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := Parse(tok, testSecret)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if got := claims.Identity(); got.Email != "g@x.com" || got.Name != "Guest" {
		t.Fatalf("unexpected identity %+v", got)
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 364*24*time.Hour {
		t.Fatalf("expected ~365d expiry, got %v", ttl)
	}
}

func TestParse_FailuresAreUndifferentiated(t *testing.T) {
	valid, _ := NewSessionToken(Identity{Email: "g@x.com"}, testSecret, time.Hour)
	expired, _ := NewSessionToken(Identity{Email: "g@x.com"}, testSecret, -time.Hour)
	foreign, _ := NewSessionToken(Identity{Email: "g@x.com"}, "other-secret", time.Hour)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong signature", foreign},
		{"tampered payload", tampered},
		{"malformed", "not-a-jwt"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := Parse(tt.token, testSecret)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
			if claims != nil {
				t.Fatal("expected nil claims")
			}
		})
	}
}

func TestSessionCookie_Attributes(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "abc", time.Now().Add(time.Hour), CookieOptionsFor(true))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != "token" || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteNoneMode {
		t.Fatalf("unexpected production cookie %+v", c)
	}

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec, CookieOptionsFor(false))
	c = rec.Result().Cookies()[0]
	if c.MaxAge >= 0 || c.Secure || c.SameSite != http.SameSiteStrictMode {
		t.Fatalf("unexpected cleared cookie %+v", c)
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if TokenFromRequest(r) != "" {
		t.Fatal("expected empty token")
	}
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "abc"})
	if got := TokenFromRequest(r); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}
