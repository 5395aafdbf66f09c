package controllers

import (
	"net/http"

	"github.com/caec/caec-backend/api/responses"
	"github.com/caec/caec-backend/api/validators"
	"github.com/caec/caec-backend/internal/auth"
	"github.com/caec/caec-backend/internal/systems"
	"github.com/caec/caec-backend/internal/users"
	"github.com/caec/caec-backend/pkg/auth/session"
	pkgerrors "github.com/caec/caec-backend/pkg/errors"
	"github.com/caec/caec-backend/pkg/logger"
)

type loginResponse struct {
	User         *users.UserDTO     `json:"user"`
	ActiveSystem *systems.SystemDTO `json:"active_system,omitempty"`
	HasSystem    bool               `json:"has_system"`
	Redirect     string             `json:"redirect"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        int64  `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
}

// AuthLogin checks credentials and starts the session cookie.
func AuthLogin(svc auth.Service, sessions sessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || sessions == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("auth service"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, credentialError(err))
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		principal := session.Principal{UserID: result.User.ID, Email: result.User.Email}
		if err := sessions.Start(w, r, principal, body.Remember); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "start session"))
			return
		}

		responses.WriteSuccess(w, "login successful", loginResponse{
			User:         result.User,
			ActiveSystem: result.ActiveSystem,
			HasSystem:    result.HasSystem,
			Redirect:     result.Redirect(),
		})
	}
}

// AuthRegister creates the account and logs the new user in.
func AuthRegister(svc auth.RegisterService, sessions sessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || sessions == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("register service"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := sessions.Start(w, r, session.Principal{UserID: user.ID, Email: user.Email}, false); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "start session"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "user registered", user)
	}
}

func AuthLogout(sessions sessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("session manager"))
			return
		}
		if err := sessions.End(w, r); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "end session"))
			return
		}
		responses.WriteSuccess(w, "logged out", nil)
	}
}

// SessionStatus reports whether the request carries a session cookie.
func SessionStatus(sessions sessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp sessionResponse
		if sessions != nil {
			if p, ok := sessions.Current(r); ok {
				resp = sessionResponse{Authenticated: true, UserID: p.UserID, Email: p.Email}
			}
		}
		responses.WriteSuccess(w, "", resp)
	}
}
