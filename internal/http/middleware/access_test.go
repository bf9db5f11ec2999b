package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/internal/http/response"
	"github.com/diagnosis/stayvista-server/pkg/auth"
)

const testSecret = "test-secret"

type mockResolver struct {
	roles map[string]domain.Role
	err   error
	calls int
}

func (m *mockResolver) Resolve(ctx context.Context, email string) (domain.Role, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	role, ok := m.roles[email]
	if !ok {
		return "", domain.ErrNoPrincipal
	}
	return role, nil
}

func requestWithToken(t *testing.T, email string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if email == "" {
		return req
	}
	tok, err := auth.NewSessionToken(auth.Identity{Email: email}, testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tok})
	return req
}

func TestRequire(t *testing.T) {
	resolver := &mockResolver{roles: map[string]domain.Role{
		"g@x.com": domain.RoleGuest,
		"h@x.com": domain.RoleHost,
	}}
	access := NewAccess(testSecret, resolver)

	tests := []struct {
		name     string
		email    string
		gates    []Gate
		wantCode int
		wantBody string
	}{
		{"no token", "", []Gate{access.Authenticated()}, http.StatusUnauthorized, response.CodeUnauthorized},
		{"authenticated", "g@x.com", []Gate{access.Authenticated()}, http.StatusOK, ""},
		{"wrong role", "g@x.com", []Gate{access.Authenticated(), access.HasRole(domain.RoleHost)}, http.StatusUnauthorized, response.CodeForbidden},
		{"right role", "h@x.com", []Gate{access.Authenticated(), access.HasRole(domain.RoleHost)}, http.StatusOK, ""},
		{"unknown principal", "ghost@x.com", []Gate{access.Authenticated(), access.HasRole(domain.RoleAdmin)}, http.StatusUnauthorized, response.CodeForbidden},
		{"role without identity", "", []Gate{access.HasRole(domain.RoleHost)}, http.StatusUnauthorized, response.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			h := Require(tt.gates...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				if _, ok := IdentityFrom(r.Context()); !ok {
					t.Error("expected identity in handler context")
				}
				w.WriteHeader(http.StatusOK)
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestWithToken(t, tt.email))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantCode != http.StatusOK {
				if reached {
					t.Fatal("handler must not run after a denial")
				}
				var body response.ErrorResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body.Code != tt.wantBody {
					t.Fatalf("expected code %s, got %s", tt.wantBody, body.Code)
				}
			}
		})
	}
}

func TestRequire_ShortCircuitsBeforeRoleLookup(t *testing.T) {
	resolver := &mockResolver{roles: map[string]domain.Role{}}
	access := NewAccess(testSecret, resolver)

	h := Require(access.Authenticated(), access.HasRole(domain.RoleAdmin))(http.NotFoundHandler())
	h.ServeHTTP(httptest.NewRecorder(), requestWithToken(t, ""))

	if resolver.calls != 0 {
		t.Fatalf("expected no role lookup without a token, got %d", resolver.calls)
	}
}

func TestRequire_StoreFailureIs500(t *testing.T) {
	resolver := &mockResolver{err: errors.New("db down")}
	access := NewAccess(testSecret, resolver)

	rec := httptest.NewRecorder()
	h := Require(access.Authenticated(), access.HasRole(domain.RoleAdmin))(http.NotFoundHandler())
	h.ServeHTTP(rec, requestWithToken(t, "a@x.com"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestAuthenticated_RejectsForeignSecret(t *testing.T) {
	access := NewAccess(testSecret, &mockResolver{})
	tok, _ := auth.NewSessionToken(auth.Identity{Email: "g@x.com"}, "other-secret", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tok})

	if _, err := access.Authenticated()(req); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRateLimit_ReturnsEnvelope(t *testing.T) {
	h := RateLimit(RateLimitConfig{Requests: 1, Window: time.Minute})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/jwt", nil))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/jwt", nil))

	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 200 then 429, got %d then %d", first.Code, second.Code)
	}
}
