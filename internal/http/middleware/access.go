package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/internal/http/response"
	"github.com/diagnosis/stayvista-server/pkg/auth"
	"github.com/diagnosis/stayvista-server/pkg/logger"
	"github.com/diagnosis/stayvista-server/pkg/metrics"
)

type ctxKey string

const ctxIdentity ctxKey = "identity"

// Gate checks one access condition. It may return an enriched context for the
// next gate and the handler.
type Gate func(r *http.Request) (context.Context, error)

type RoleResolver interface {
	Resolve(ctx context.Context, email string) (domain.Role, error)
}

type Access struct {
	secret string
	roles  RoleResolver
}

func NewAccess(secret string, roles RoleResolver) *Access {
	return &Access{secret: secret, roles: roles}
}

// Authenticated verifies the session cookie and attaches the identity.
func (a *Access) Authenticated() Gate {
	return func(r *http.Request) (context.Context, error) {
		raw := auth.TokenFromRequest(r)
		if raw == "" {
			return nil, domain.ErrUnauthorized
		}
		claims, err := auth.Parse(raw, a.secret)
		if err != nil {
			return nil, domain.ErrUnauthorized
		}
		id := claims.Identity()
		ctx := context.WithValue(r.Context(), ctxIdentity, id)
		ctx = context.WithValue(ctx, logger.UserEmailKey, id.Email)
		return ctx, nil
	}
}

// HasRole requires a prior Authenticated gate. The role is read from the store
// on every request.
func (a *Access) HasRole(role domain.Role) Gate {
	return func(r *http.Request) (context.Context, error) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			return nil, domain.ErrUnauthorized
		}
		got, err := a.roles.Resolve(r.Context(), id.Email)
		if errors.Is(err, domain.ErrNoPrincipal) {
			return nil, domain.ErrForbidden
		}
		if err != nil {
			return nil, err
		}
		if got != role {
			return nil, domain.ErrForbidden
		}
		return r.Context(), nil
	}
}

// Require runs gates in order and stops at the first failure. The handler is
// reached only when every gate passed.
func Require(gates ...Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, gate := range gates {
				ctx, err := gate(r)
				if err != nil {
					deny(w, r, err)
					return
				}
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		metrics.AccessDenied.WithLabelValues(response.CodeUnauthorized).Inc()
		response.Unauthorized(w, "unauthorized access")
	case errors.Is(err, domain.ErrForbidden):
		metrics.AccessDenied.WithLabelValues(response.CodeForbidden).Inc()
		logger.InfoContext(r.Context(), "Access denied", "path", r.URL.Path)
		response.Forbidden(w, "unauthorized access")
	default:
		logger.ErrorContext(r.Context(), "Access check failed", "error", err, "path", r.URL.Path)
		response.InternalError(w, "internal server error")
	}
}

func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(ctxIdentity).(auth.Identity)
	return id, ok
}
