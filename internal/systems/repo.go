package systems

import (
	"context"
	"time"

	"github.com/caec/caec-backend/pkg/db/models"
	"gorm.io/gorm"
)

const claimableClause = "codigo_sistema = ? AND (usuario_id IS NULL OR estado = ?)"

// Repository persists sistema_caec rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByCode(ctx context.Context, code string) (*models.System, error) {
	var s models.System
	if err := r.db.WithContext(ctx).Where("codigo_sistema = ?", code).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.System, error) {
	var s models.System
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindClaimable returns the system for code only while nobody owns it.
func (r *Repository) FindClaimable(ctx context.Context, code string) (*models.System, error) {
	var s models.System
	err := r.db.WithContext(ctx).
		Where(claimableClause, code, models.SystemAvailable).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Claim assigns code to userID in a single conditional UPDATE. It reports
// false when the code is unknown or already owned.
func (r *Repository) Claim(ctx context.Context, code string, userID int64, name string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.System{}).
		Where(claimableClause, code, models.SystemAvailable).
		UpdateColumns(map[string]any{
			"usuario_id":        userID,
			"nombre_sistema":    name,
			"fecha_vinculacion": at,
			"ultimo_sync":       at,
			"estado":            models.SystemActive,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) FindActiveByUser(ctx context.Context, userID int64) (*models.System, error) {
	var s models.System
	err := r.db.WithContext(ctx).
		Where("usuario_id = ? AND estado = ?", userID, models.SystemActive).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]models.System, error) {
	var rows []models.System
	err := r.db.WithContext(ctx).
		Where("usuario_id = ?", userID).
		Order("fecha_vinculacion DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeactivateAllForUser flips every active system of userID to inactivo.
func (r *Repository) DeactivateAllForUser(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.System{}).
		Where("usuario_id = ? AND estado = ?", userID, models.SystemActive).
		UpdateColumn("estado", models.SystemInactive)
	return res.RowsAffected, res.Error
}

// ActivateForUser marks id active if userID owns it.
func (r *Repository) ActivateForUser(ctx context.Context, id, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.System{}).
		Where("id = ? AND usuario_id = ?", id, userID).
		UpdateColumn("estado", models.SystemActive)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) TouchSync(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.System{}).
		Where("id = ?", id).
		UpdateColumn("ultimo_sync", at).Error
}

func (r *Repository) ListWithOwners(ctx context.Context) ([]SystemWithOwner, error) {
	var rows []SystemWithOwner
	err := r.db.WithContext(ctx).
		Table("sistema_caec AS s").
		Select("s.id, s.codigo_sistema, s.nombre_sistema, s.estado, s.modelo, s.usuario_id, u.email AS owner_email").
		Joins("LEFT JOIN usuario AS u ON u.id = s.usuario_id").
		Order("s.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) CountLinked(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.System{}).Where("usuario_id IS NOT NULL").Count(&n).Error
	return n, err
}

func (r *Repository) CountAvailable(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.System{}).Where("usuario_id IS NULL").Count(&n).Error
	return n, err
}
