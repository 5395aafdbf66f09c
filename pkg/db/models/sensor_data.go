package models

import "time"

// SensorData is one historical reading of a system.
type SensorData struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SistemaID        int64     `gorm:"column:sistema_id;not null;index"`
	Timestamp        time.Time `gorm:"column:timestamp;not null"`
	NivelAgua        *float64  `gorm:"column:nivel_agua"`
	PH               *float64  `gorm:"column:ph"`
	Temperatura      *float64  `gorm:"column:temperatura"`
	NivelNutrientes  *float64  `gorm:"column:nivel_nutrientes"`
	IrrigacionActiva *bool     `gorm:"column:irrigacion_activa"`
	LuzActiva        *bool     `gorm:"column:luz_activa"`
}

func (SensorData) TableName() string { return "sensor_data" }
