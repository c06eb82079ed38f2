package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gatewarden-labs/gatewarden/internal/auth"
	"github.com/gatewarden-labs/gatewarden/internal/logging"
)

func loggingMiddleware(log logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now().UTC()
		next.ServeHTTP(w, r)
		log.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"from", r.RemoteAddr,
			"dur", time.Since(start).String())
	})
}

// requireBearer guards the issue endpoints.  The token must verify under
// the configured secret; the principal is not threaded further because
// these handlers do not vary by caller.
func requireBearer(secret []byte, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "bearer token required")
			return
		}
		if _, err := auth.VerifyToken(token, secret); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "bearer token invalid")
			return
		}
		next(w, r)
	}
}
