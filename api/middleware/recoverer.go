package middleware

import (
	"fmt"
	"net/http"

	"github.com/caec/caec-backend/api/responses"
	pkgerrors "github.com/caec/caec-backend/pkg/errors"
	"github.com/caec/caec-backend/pkg/logger"
)

// Recoverer turns a handler panic into a 500 envelope. If the handler had
// already started its response, only the log line is written.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := recorderFor(w)
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				err := pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("panic: %v", v), "panic")
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"method":     r.Method,
						"path":       r.URL.Path,
						"request_id": rec.Header().Get(requestIDHeader),
						"panic":      fmt.Sprint(v),
						"committed":  rec.started(),
					})
					logg.Error(ctx, "panic.recovered", err)
				}
				if rec.started() {
					return
				}
				responses.WriteError(ctx, nil, rec, err)
			}()
			next.ServeHTTP(rec, r)
		})
	}
}
