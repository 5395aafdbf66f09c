package contacts

import (
	"context"

	"github.com/caec/caec-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists contacto rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateEmpty inserts a contact holding only the owner id.
func (r *Repository) CreateEmpty(ctx context.Context, userID int64) (*models.Contact, error) {
	c := &models.Contact{UsuarioID: userID}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int64) (*models.Contact, error) {
	var c models.Contact
	if err := r.db.WithContext(ctx).Where("usuario_id = ?", userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Update writes only the non-nil fields of dto. It returns
// gorm.ErrRecordNotFound when the user has no contact row.
func (r *Repository) Update(ctx context.Context, userID int64, dto UpdateContactDTO) error {
	cols := dto.columns()
	if len(cols) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("usuario_id = ?", userID).
		UpdateColumns(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) ListWithUsers(ctx context.Context) ([]ContactWithUser, error) {
	var rows []ContactWithUser
	err := r.db.WithContext(ctx).
		Table("contacto AS c").
		Select("c.usuario_id, u.email, c.telefono, c.celular, c.direccion, c.ciudad, c.pais, c.codigo_postal").
		Joins("JOIN usuario AS u ON u.id = c.usuario_id").
		Order("c.usuario_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
