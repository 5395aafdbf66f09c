package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caec/caec-backend/internal/systems"
	"github.com/caec/caec-backend/internal/users"
	"github.com/caec/caec-backend/pkg/db/models"
	pkgerrors "github.com/caec/caec-backend/pkg/errors"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
}

type userRepository interface {
	FindByCredentials(ctx context.Context, email, password string) (*models.User, error)
	UpdateLastAccess(ctx context.Context, id int64, at time.Time) error
}

type activeSystemFinder interface {
	Active(ctx context.Context, userID int64) (*systems.SystemDTO, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo userRepository
	Systems  activeSystemFinder
	Now      func() time.Time
}

type service struct {
	users   userRepository
	systems activeSystemFinder
	now     func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Systems == nil {
		return nil, fmt.Errorf("systems service is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{users: params.UserRepo, systems: params.Systems, now: now}, nil
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByCredentials(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup credentials")
	}
	if !user.Activo {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastAccess(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record last access")
	}
	user.UltimoAcceso = &now

	active, err := s.systems.Active(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         users.FromModel(user),
		ActiveSystem: active,
		HasSystem:    active != nil,
	}, nil
}
