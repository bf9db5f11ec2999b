package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/diagnosis/stayvista-server/internal/http/response"
	"github.com/diagnosis/stayvista-server/pkg/logger"
)

// RateLimitConfig defines rate limiting parameters
type RateLimitConfig struct {
	Requests int           // Max requests per window
	Window   time.Duration // Time window duration
	KeyFunc  httprate.KeyFunc
}

// RateLimit limits requests per key (client IP by default) and answers with
// the JSON error envelope when the limit is hit.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.WarnContext(r.Context(), "Rate limit exceeded", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			response.RateLimit(w, "Too many requests. Try again later.")
		}),
	)
}
