package controllers

import (
	"net/http"

	"github.com/caec/caec-backend/api/middleware"
	"github.com/caec/caec-backend/pkg/auth/session"
	pkgerrors "github.com/caec/caec-backend/pkg/errors"
)

// sessionStore is the cookie surface controllers use.
type sessionStore interface {
	Start(w http.ResponseWriter, r *http.Request, p session.Principal, remember bool) error
	Current(r *http.Request) (session.Principal, bool)
	End(w http.ResponseWriter, r *http.Request) error
}

// requireUser reads the principal attached by the session middleware.
func requireUser(r *http.Request) (int64, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	return userID, nil
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" unavailable")
}

// credentialError reports malformed login input as invalid credentials.
func credentialError(err error) error {
	if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return err
}
