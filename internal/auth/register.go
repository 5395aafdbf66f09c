package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/caec/caec-backend/internal/contacts"
	"github.com/caec/caec-backend/internal/users"
	"github.com/caec/caec-backend/pkg/db"
	pkgerrors "github.com/caec/caec-backend/pkg/errors"
	"gorm.io/gorm"
)

// RegisterService creates an account together with its empty contact row.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB *db.Client
}

type registerService struct {
	db *db.Client
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{db: params.DB}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(req.Nombre) == "" || strings.TrimSpace(req.Apellido) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nombre and apellido are required")
	}
	if len(req.Password) < minPasswordLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 6 characters").
			WithDetails(map[string]any{"field": "password"})
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match").
			WithDetails(map[string]any{"field": "confirm_password"})
	}

	var created *users.UserDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		contactRepo := contacts.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Nombre:   req.Nombre,
			Apellido: req.Apellido,
			Email:    email,
			Password: req.Password,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if _, err := contactRepo.CreateEmpty(ctx, user.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create contact")
		}

		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
