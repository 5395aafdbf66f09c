package controllers

import (
	"net/http"

	"github.com/caec/caec-backend/api/responses"
	"github.com/caec/caec-backend/api/validators"
	"github.com/caec/caec-backend/internal/systems"
	"github.com/caec/caec-backend/pkg/logger"
)

type validateSystemRequest struct {
	CodigoSistema string `json:"codigo_sistema" validate:"required,max=50"`
}

type linkSystemRequest struct {
	CodigoSistema string `json:"codigo_sistema" form:"codigo_sistema" validate:"required,max=50"`
	NombreSistema string `json:"nombre_sistema,omitempty" form:"nombre_sistema" validate:"omitempty,max=100"`
}

type switchSystemRequest struct {
	SystemID int64 `json:"system_id" validate:"required,gt=0"`
}

func SystemsList(svc systems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("systems service"))
			return
		}
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "", list)
	}
}

// SystemsValidate reports whether a code can still be claimed.
func SystemsValidate(svc systems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("systems service"))
			return
		}
		var body validateSystemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sys, err := svc.ValidateCode(r.Context(), body.CodigoSistema)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "system available", sys)
	}
}

func SystemsLink(svc systems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("systems service"))
			return
		}
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body linkSystemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sys, err := svc.Link(r.Context(), systems.LinkInput{UserID: userID, Code: body.CodigoSistema, Name: body.NombreSistema})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithSystemID(r.Context(), sys.ID)
		logg.Info(ctx, "system.linked")
		responses.WriteSuccessStatus(w, http.StatusCreated, "system linked", sys)
	}
}

func SystemsSwitch(svc systems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("systems service"))
			return
		}
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body switchSystemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sys, err := svc.Switch(r.Context(), userID, body.SystemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "active system changed", sys)
	}
}

func SystemsSync(svc systems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("systems service"))
			return
		}
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		systemID, err := validators.ParsePathID(r, "systemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sys, err := svc.Sync(r.Context(), userID, systemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "sync recorded", sys)
	}
}
