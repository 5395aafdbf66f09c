package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caec/caec-backend/internal/systems"
	"github.com/caec/caec-backend/pkg/db/models"
	pkgerrors "github.com/caec/caec-backend/pkg/errors"
	"gorm.io/gorm"
)

// UpdateSystemMessage is returned when a device update is acknowledged.
const UpdateSystemMessage = "Configuración actualizada"

// Static dashboard values shown while a system has no recorded readings.
const (
	staticWaterLevel    = 75.0
	staticPhLevel       = 6.5
	staticWaterTemp     = 22.0
	staticNutrientLevel = 85.0
)

const (
	phMin       = 5.5
	phMax       = 8.5
	tempMin     = 18.0
	tempMax     = 26.0
	lowLevelPct = 20.0
)

// Service serves the stubbed sensor and irrigation API.
type Service interface {
	Snapshot(ctx context.Context, userID int64) (*SystemData, error)
	UpdateSystem(ctx context.Context, userID int64, req UpdateSystemRequest) (*UpdateSystemResult, error)
	UpdateIrrigationConfig(ctx context.Context, userID int64, req IrrigationConfigRequest) (*IrrigationConfigResult, error)
	IrrigationConfig(ctx context.Context, userID int64) (*IrrigationConfigResult, error)
}

type activeSystemFinder interface {
	Active(ctx context.Context, userID int64) (*systems.SystemDTO, error)
}

type sensorReader interface {
	Latest(ctx context.Context, systemID int64) (*models.SensorData, error)
}

type ServiceParams struct {
	Systems activeSystemFinder
	Sensors sensorReader
	Configs ConfigStore
	Now     func() time.Time
}

type service struct {
	systems activeSystemFinder
	sensors sensorReader
	configs ConfigStore
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Systems == nil {
		return nil, fmt.Errorf("systems service is required")
	}
	if params.Sensors == nil {
		return nil, fmt.Errorf("sensor repository is required")
	}
	if params.Configs == nil {
		return nil, fmt.Errorf("irrigation config store is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{systems: params.Systems, sensors: params.Sensors, configs: params.Configs, now: now}, nil
}

func (s *service) Snapshot(ctx context.Context, userID int64) (*SystemData, error) {
	data := &SystemData{
		WaterLevel:       staticWaterLevel,
		PhLevel:          staticPhLevel,
		WaterTemp:        staticWaterTemp,
		NutrientLevel:    staticNutrientLevel,
		IrrigationActive: true,
		LightActive:      true,
		Timestamp:        s.now().UTC(),
		Source:           SourceStatic,
	}

	active, err := s.systems.Active(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		data.SystemCode = active.CodigoSistema
		data.SystemName = active.NombreSistema

		row, err := s.sensors.Latest(ctx, active.ID)
		switch {
		case err == nil:
			applyReading(data, row)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load latest reading")
		}
	}

	data.Status = classify(data)
	return data, nil
}

func applyReading(data *SystemData, row *models.SensorData) {
	data.Source = SourceSensor
	data.Timestamp = row.Timestamp.UTC()
	if row.NivelAgua != nil {
		data.WaterLevel = *row.NivelAgua
	}
	if row.PH != nil {
		data.PhLevel = *row.PH
	}
	if row.Temperatura != nil {
		data.WaterTemp = *row.Temperatura
	}
	if row.NivelNutrientes != nil {
		data.NutrientLevel = *row.NivelNutrientes
	}
	if row.IrrigacionActiva != nil {
		data.IrrigationActive = *row.IrrigacionActiva
	}
	if row.LuzActiva != nil {
		data.LightActive = *row.LuzActiva
	}
}

func classify(d *SystemData) map[string]string {
	level := func(ok bool) string {
		if ok {
			return MetricOptimal
		}
		return MetricWarning
	}
	return map[string]string{
		"waterLevel":    level(d.WaterLevel >= lowLevelPct),
		"phLevel":       level(d.PhLevel >= phMin && d.PhLevel <= phMax),
		"waterTemp":     level(d.WaterTemp >= tempMin && d.WaterTemp <= tempMax),
		"nutrientLevel": level(d.NutrientLevel >= lowLevelPct),
	}
}

func (s *service) UpdateSystem(ctx context.Context, userID int64, req UpdateSystemRequest) (*UpdateSystemResult, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	received := s.now().UTC()
	cmd := req.Irrigation
	if cmd.Timestamp == nil {
		cmd.Timestamp = &received
	}
	return &UpdateSystemResult{Irrigation: cmd, ReceivedAt: received}, nil
}

func (s *service) UpdateIrrigationConfig(ctx context.Context, userID int64, req IrrigationConfigRequest) (*IrrigationConfigResult, error) {
	if err := req.Config.Validate(); err != nil {
		return nil, err
	}
	updated := s.now().UTC()
	if req.Timestamp != nil {
		updated = req.Timestamp.UTC()
	}
	if err := s.configs.Save(ctx, userID, StoredConfig{Config: req.Config, UpdatedAt: updated}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store irrigation config")
	}
	return &IrrigationConfigResult{Config: req.Config, UpdatedAt: &updated}, nil
}

func (s *service) IrrigationConfig(ctx context.Context, userID int64) (*IrrigationConfigResult, error) {
	stored, err := s.configs.Load(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load irrigation config")
	}
	if stored == nil {
		return &IrrigationConfigResult{Config: DefaultIrrigation(), IsDefault: true}, nil
	}
	at := stored.UpdatedAt
	return &IrrigationConfigResult{Config: stored.Config, UpdatedAt: &at}, nil
}
