package telemetry

import (
	"context"
	"time"

	"github.com/caec/caec-backend/pkg/db/models"
	"gorm.io/gorm"
)

// SensorRepository reads and prunes sensor_data history.
type SensorRepository struct {
	db *gorm.DB
}

func NewSensorRepository(db *gorm.DB) *SensorRepository {
	return &SensorRepository{db: db}
}

// Latest returns the most recent reading for systemID.
func (r *SensorRepository) Latest(ctx context.Context, systemID int64) (*models.SensorData, error) {
	var row models.SensorData
	err := r.db.WithContext(ctx).
		Where("sistema_id = ?", systemID).
		Order("timestamp DESC, id DESC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *SensorRepository) Insert(ctx context.Context, row *models.SensorData) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// DeleteOlderThan removes readings strictly before cutoff. tx may be nil.
func (r *SensorRepository) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	res := conn.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SensorData{})
	return res.RowsAffected, res.Error
}
