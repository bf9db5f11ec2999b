package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/diagnosis/stayvista-server/internal/repository"
	"github.com/diagnosis/stayvista-server/pkg/logger"
	"github.com/diagnosis/stayvista-server/pkg/metrics"
)

// Idempotency replays the first successful response for a repeated
// Idempotency-Key. Keys are scoped to the caller's identity, so it must run
// after the Authenticated gate. A nil store disables it.
func Idempotency(store repository.IdempotencyRepository, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}

			scope := ""
			if id, ok := IdentityFrom(r.Context()); ok {
				scope = id.Email
			}
			sum := sha256.Sum256([]byte(scope + "\x00" + key))
			hashed := hex.EncodeToString(sum[:])

			stored, err := store.Get(r.Context(), hashed)
			if err != nil {
				// cache unavailable: serve normally rather than fail the booking
				logger.WarnContext(r.Context(), "Idempotency lookup failed", "error", err)
			} else if stored != nil {
				metrics.IdempotentReplays.Inc()
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)
				return
			}

			var buf bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&buf)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status >= 200 && status < 300 {
				resp := repository.StoredResponse{Status: status, Body: buf.Bytes()}
				if err := store.Save(r.Context(), hashed, resp, ttl); err != nil {
					logger.WarnContext(r.Context(), "Failed to store idempotent response", "error", err)
				}
			}
		})
	}
}
