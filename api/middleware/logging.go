package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/caec/caec-backend/pkg/logger"
)

// quietPrefixes are hit by health checks, scrapers and asset loads; a
// successful request under them logs at debug.
var quietPrefixes = []string{"/health/", "/metrics", "/static/"}

// Logging writes one request.complete line per request carrying the chi route
// pattern, status, response size, duration and the session user when a
// session middleware attached one. 5xx responses log at warn.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := recorderFor(w)
			start := time.Now()
			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})

			next.ServeHTTP(rec, r.WithContext(ctx))

			fields := map[string]any{
				"route":       routePattern(r),
				"status":      rec.code(),
				"bytes":       rec.bytes,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if rec.userID > 0 {
				fields["user_id"] = rec.userID
			}
			ctx = logg.WithFields(ctx, fields)

			switch {
			case rec.code() >= http.StatusInternalServerError:
				logg.Warn(ctx, "request.complete")
			case quiet(r.URL.Path):
				logg.Debug(ctx, "request.complete")
			default:
				logg.Info(ctx, "request.complete")
			}
		})
	}
}

func quiet(path string) bool {
	for _, prefix := range quietPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
