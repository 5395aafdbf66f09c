package contacts

import (
	"context"
	"errors"
	"strings"

	"github.com/caec/caec-backend/internal/users"
	"github.com/caec/caec-backend/pkg/db"
	pkgerrors "github.com/caec/caec-backend/pkg/errors"
	"gorm.io/gorm"
)

// Profile is a user together with their contact sheet.
type Profile struct {
	User    *users.UserDTO `json:"user"`
	Contact *ContactDTO    `json:"contact"`
}

// UpdateProfileInput holds optional profile edits. Names go to usuario, the
// rest to contacto.
type UpdateProfileInput struct {
	Nombre       *string `json:"nombre,omitempty" form:"nombre" validate:"omitempty,max=100"`
	Apellido     *string `json:"apellido,omitempty" form:"apellido" validate:"omitempty,max=100"`
	Telefono     *string `json:"telefono,omitempty" form:"telefono" validate:"omitempty,max=20"`
	Celular      *string `json:"celular,omitempty" form:"celular" validate:"omitempty,max=20"`
	Direccion    *string `json:"direccion,omitempty" form:"direccion" validate:"omitempty,max=200"`
	Ciudad       *string `json:"ciudad,omitempty" form:"ciudad" validate:"omitempty,max=100"`
	Pais         *string `json:"pais,omitempty" form:"pais" validate:"omitempty,max=100"`
	CodigoPostal *string `json:"codigo_postal,omitempty" form:"codigo_postal" validate:"omitempty,max=20"`
}

func (in UpdateProfileInput) contact() UpdateContactDTO {
	return UpdateContactDTO{
		Telefono:     trimmed(in.Telefono),
		Celular:      trimmed(in.Celular),
		Direccion:    trimmed(in.Direccion),
		Ciudad:       trimmed(in.Ciudad),
		Pais:         trimmed(in.Pais),
		CodigoPostal: trimmed(in.CodigoPostal),
	}
}

// Service reads and edits user profiles.
type Service interface {
	Get(ctx context.Context, userID int64) (*Profile, error)
	Update(ctx context.Context, userID int64, in UpdateProfileInput) (*Profile, error)
}

type ServiceParams struct {
	DB *db.Client
}

type service struct {
	db *db.Client
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{db: params.DB}, nil
}

func (s *service) Get(ctx context.Context, userID int64) (*Profile, error) {
	return loadProfile(ctx, s.db.DB(), userID)
}

func (s *service) Update(ctx context.Context, userID int64, in UpdateProfileInput) (*Profile, error) {
	nombre := trimmed(in.Nombre)
	apellido := trimmed(in.Apellido)
	if (nombre != nil && *nombre == "") || (apellido != nil && *apellido == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nombre and apellido cannot be empty").
			WithDetails(map[string]any{"fields": []string{"nombre", "apellido"}})
	}

	var profile *Profile
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		contactRepo := NewRepository(tx)

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return notFoundOr(err, "user not found", "load user")
		}

		if nombre != nil || apellido != nil {
			newNombre, newApellido := user.Nombre, user.Apellido
			if nombre != nil {
				newNombre = *nombre
			}
			if apellido != nil {
				newApellido = *apellido
			}
			if err := userRepo.UpdateNames(ctx, userID, newNombre, newApellido); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update names")
			}
		}

		if _, err := contactRepo.FindByUserID(ctx, userID); errors.Is(err, gorm.ErrRecordNotFound) {
			if _, err := contactRepo.CreateEmpty(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create contact")
			}
		} else if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load contact")
		}

		if err := contactRepo.Update(ctx, userID, in.contact()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update contact")
		}

		profile, err = loadProfile(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func loadProfile(ctx context.Context, conn *gorm.DB, userID int64) (*Profile, error) {
	user, err := users.NewRepository(conn).FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "load user")
	}
	profile := &Profile{User: users.FromModel(user), Contact: &ContactDTO{}}

	contact, err := NewRepository(conn).FindByUserID(ctx, userID)
	switch {
	case err == nil:
		profile.Contact = FromModel(contact)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load contact")
	}
	return profile, nil
}

func notFoundOr(err error, notFoundMsg, step string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, step)
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
