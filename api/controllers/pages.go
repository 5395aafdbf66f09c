package controllers

import (
	"net/http"

	"github.com/caec/caec-backend/api/middleware"
	"github.com/caec/caec-backend/api/validators"
	"github.com/caec/caec-backend/internal/auth"
	"github.com/caec/caec-backend/internal/contacts"
	"github.com/caec/caec-backend/internal/systems"
	"github.com/caec/caec-backend/internal/users"
	"github.com/caec/caec-backend/pkg/auth/session"
	pkgerrors "github.com/caec/caec-backend/pkg/errors"
	"github.com/caec/caec-backend/pkg/logger"
	"github.com/caec/caec-backend/web"
)

type pageRenderer interface {
	Render(w http.ResponseWriter, status int, page string, data any) error
}

// PageDeps bundles what the server-rendered pages need.
type PageDeps struct {
	Renderer pageRenderer
	Sessions sessionStore
	Auth     auth.Service
	Register auth.RegisterService
	Systems  systems.Service
	Profiles contacts.Service
	Logger   *logger.Logger
}

type pageData struct {
	Error   string
	Email   string
	Form    auth.RegisterRequest
	Fields  map[string]string
	Code    string
	Name    string
	User    *users.UserDTO
	System  *systems.SystemDTO
	Systems []systems.SystemDTO
}

func render(d PageDeps, w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	if err := d.Renderer.Render(w, status, page, data); err != nil {
		d.Logger.Error(r.Context(), "page.render_failed", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// describe turns a service error into a status and a message safe to show.
func describe(err error) (int, string, map[string]string) {
	status, msg, details := pkgerrors.Public(err)
	fields, _ := details.(map[string]string)
	return status, msg, fields
}

func Landing(d PageDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(d, w, r, http.StatusOK, web.PageIndex, pageData{})
	}
}

func LoginPage(d PageDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := d.Sessions.Current(r); ok {
			http.Redirect(w, r, auth.RedirectDashboard, http.StatusFound)
			return
		}
		render(d, w, r, http.StatusOK, web.PageLogin, pageData{})
	}
}

// LoginSubmit re-renders the form with 401 on any credential failure.
func LoginSubmit(d PageDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form auth.LoginRequest
		err := credentialError(validators.DecodeForm(r, &form))
		var result *auth.LoginResult
		if err == nil {
			result, err = d.Auth.Login(r.Context(), form)
		}
		if err == nil {
			err = d.Sessions.Start(w, r, session.Principal{UserID: result.User.ID, Email: result.User.Email}, form.Remember)
		}
		if err != nil {
			status, msg, _ := describe(err)
			if status >= http.StatusInternalServerError {
				d.Logger.Error(r.Context(), "login.failed", err)
			}
			render(d, w, r, status, web.PageLogin, pageData{Error: msg, Email: form.Email})
			return
		}
		http.Redirect(w, r, result.Redirect(), http.StatusFound)
	}
}

func RegisterPage(d PageDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(d, w, r, http.StatusOK, web.PageRegister, pageData{})
	}
}

func RegisterSubmit(d PageDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form auth.RegisterRequest
		err := validators.DecodeForm(r, &form)
		var user *users.UserDTO
		if err == nil {
			user, err = d.Register.Register(r.Context(), form)
		}
		if err == nil {
			err = d.Sessions.Start(w, r, session.Principal{UserID: user.ID, Email: user.Email}, false)
		}
		if err != nil {
			status, msg, fields := describe(err)
			if status >= http.StatusInternalServerError {
				d.Logger.Error(r.Context(), "register.failed", err)
			}
			form.Password, form.ConfirmPassword = "", ""
			render(d, w, r, status, web.PageRegister, pageData{Error: msg, Fields: fields, Form: form})
			return
		}
		http.Redirect(w, r, auth.RedirectAddSystem, http.StatusFound)
	}
}

// Dashboard requires an active system; users without one are sent to link one.
func Dashboard(d PageDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		active, err := d.Systems.Active(r.Context(), userID)
		if err != nil {
			d.Logger.Error(r.Context(), "dashboard.active_system", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if active == nil {
			http.Redirect(w, r, auth.RedirectAddSystem, http.StatusFound)
			return
		}
		profile, err := d.Profiles.Get(r.Context(), userID)
		if err != nil {
			status, msg, _ := describe(err)
			if status == http.StatusNotFound {
				// the cookie outlived its user
				_ = d.Sessions.End(w, r)
				http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
				return
			}
			d.Logger.Error(r.Context(), "dashboard.profile", err)
			http.Error(w, msg, status)
			return
		}
		render(d, w, r, http.StatusOK, web.PageDashboard, pageData{User: profile.User, System: active})
	}
}

func AddSystemPage(d PageDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{}
		if list, err := d.Systems.List(r.Context(), middleware.UserIDFromContext(r.Context())); err == nil {
			data.Systems = list
		} else {
			d.Logger.Warn(r.Context(), "add_system.list_failed")
		}
		render(d, w, r, http.StatusOK, web.PageAddSystem, data)
	}
}

func AddSystemSubmit(d PageDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		var form linkSystemRequest
		err := validators.DecodeForm(r, &form)
		if err == nil {
			_, err = d.Systems.Link(r.Context(), systems.LinkInput{UserID: userID, Code: form.CodigoSistema, Name: form.NombreSistema})
		}
		if err != nil {
			status, msg, _ := describe(err)
			if status >= http.StatusInternalServerError {
				d.Logger.Error(r.Context(), "add_system.failed", err)
			}
			data := pageData{Error: msg, Code: form.CodigoSistema, Name: form.NombreSistema}
			if list, listErr := d.Systems.List(r.Context(), userID); listErr == nil {
				data.Systems = list
			}
			render(d, w, r, status, web.PageAddSystem, data)
			return
		}
		http.Redirect(w, r, auth.RedirectDashboard, http.StatusFound)
	}
}

func Logout(d PageDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Sessions.End(w, r); err != nil {
			d.Logger.Error(r.Context(), "logout.failed", err)
		}
		http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
	}
}
