package systems

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/caec/caec-backend/pkg/db"
	pkgerrors "github.com/caec/caec-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service links devices to users and keeps one of them active.
type Service interface {
	ValidateCode(ctx context.Context, code string) (*SystemDTO, error)
	Link(ctx context.Context, in LinkInput) (*SystemDTO, error)
	Switch(ctx context.Context, userID, systemID int64) (*SystemDTO, error)
	Active(ctx context.Context, userID int64) (*SystemDTO, error)
	List(ctx context.Context, userID int64) ([]SystemDTO, error)
	Sync(ctx context.Context, userID, systemID int64) (*SystemDTO, error)
}

type ServiceParams struct {
	DB  *db.Client
	Now func() time.Time
}

type service struct {
	db  *db.Client
	now func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{db: params.DB, now: now}, nil
}

// NormalizeCode trims surrounding whitespace. Codes are matched exactly as
// printed on the device, case included.
func NormalizeCode(code string) string {
	return strings.TrimSpace(code)
}

func (s *service) ValidateCode(ctx context.Context, code string) (*SystemDTO, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "codigo_sistema is required")
	}
	sys, err := NewRepository(s.db.DB()).FindClaimable(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "system code not found or already linked")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate system code")
	}
	return FromModel(sys), nil
}

func (s *service) Link(ctx context.Context, in LinkInput) (*SystemDTO, error) {
	code := NormalizeCode(in.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "codigo_sistema is required")
	}
	if in.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = DefaultName
	}
	at := s.now().UTC()

	var linked *SystemDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		if _, err := repo.DeactivateAllForUser(ctx, in.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate systems")
		}

		ok, err := repo.Claim(ctx, code, in.UserID, name, at)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim system")
		}
		if !ok {
			if _, err := repo.FindByCode(ctx, code); errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "system code not found")
			} else if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load system")
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "system already linked")
		}

		sys, err := repo.FindByCode(ctx, code)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload system")
		}
		linked = FromModel(sys)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return linked, nil
}

func (s *service) Switch(ctx context.Context, userID, systemID int64) (*SystemDTO, error) {
	if systemID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "system_id is required")
	}

	var active *SystemDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		if _, err := s.owned(ctx, repo, userID, systemID); err != nil {
			return err
		}
		if _, err := repo.DeactivateAllForUser(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate systems")
		}
		ok, err := repo.ActivateForUser(ctx, systemID, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate system")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "system not found")
		}
		sys, err := repo.FindByID(ctx, systemID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload system")
		}
		active = FromModel(sys)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return active, nil
}

// Active returns the user's active system, or nil when there is none.
func (s *service) Active(ctx context.Context, userID int64) (*SystemDTO, error) {
	sys, err := NewRepository(s.db.DB()).FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active system")
	}
	return FromModel(sys), nil
}

func (s *service) List(ctx context.Context, userID int64) ([]SystemDTO, error) {
	rows, err := NewRepository(s.db.DB()).ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list systems")
	}
	return FromModels(rows), nil
}

func (s *service) Sync(ctx context.Context, userID, systemID int64) (*SystemDTO, error) {
	repo := NewRepository(s.db.DB())
	sys, err := s.owned(ctx, repo, userID, systemID)
	if err != nil {
		return nil, err
	}
	at := s.now().UTC()
	if err := repo.TouchSync(ctx, sys.ID, at); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "touch sync")
	}
	sys.UltimoSync = &at
	return sys, nil
}

// owned loads systemID and hides systems of other users behind NOT_FOUND.
func (s *service) owned(ctx context.Context, repo *Repository, userID, systemID int64) (*SystemDTO, error) {
	sys, err := repo.FindByID(ctx, systemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "system not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load system")
	}
	if sys.UsuarioID == nil || *sys.UsuarioID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "system not found")
	}
	return FromModel(sys), nil
}
