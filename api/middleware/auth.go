package middleware

import (
	"net/http"

	"github.com/caec/caec-backend/api/responses"
	"github.com/caec/caec-backend/pkg/auth/session"
	pkgerrors "github.com/caec/caec-backend/pkg/errors"
	"github.com/caec/caec-backend/pkg/logger"
)

const LoginPath = "/login"

// RequireSession rejects API requests without a session cookie with a 401
// envelope.
func RequireSession(sessions session.Reader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := current(sessions, r)
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session required"))
				return
			}
			next.ServeHTTP(w, attach(w, r, p, logg))
		})
	}
}

// RequirePageSession redirects page requests without a session to the login
// form.
func RequirePageSession(sessions session.Reader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := current(sessions, r)
			if !ok {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, attach(w, r, p, logg))
		})
	}
}

func current(sessions session.Reader, r *http.Request) (session.Principal, bool) {
	if sessions == nil {
		return session.Principal{}, false
	}
	return sessions.Current(r)
}

func attach(w http.ResponseWriter, r *http.Request, p session.Principal, logg *logger.Logger) *http.Request {
	noteUser(w, p.UserID)
	ctx := WithPrincipal(r.Context(), p)
	if logg != nil {
		ctx = logg.WithUserID(ctx, p.UserID)
	}
	return r.WithContext(ctx)
}
