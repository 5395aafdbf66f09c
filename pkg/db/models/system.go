package models

import "time"

// SystemState is the lifecycle of a CAEC device record.
type SystemState string

const (
	SystemAvailable SystemState = "disponible"
	SystemActive    SystemState = "activo"
	SystemInactive  SystemState = "inactivo"
)

func (s SystemState) IsValid() bool {
	switch s {
	case SystemAvailable, SystemActive, SystemInactive:
		return true
	}
	return false
}

// System is a physical device identified by its claim code.
type System struct {
	ID               int64       `gorm:"column:id;primaryKey;autoIncrement"`
	CodigoSistema    string      `gorm:"column:codigo_sistema;not null;uniqueIndex"`
	UsuarioID        *int64      `gorm:"column:usuario_id"`
	NombreSistema    *string     `gorm:"column:nombre_sistema"`
	FechaVinculacion *time.Time  `gorm:"column:fecha_vinculacion"`
	UltimoSync       *time.Time  `gorm:"column:ultimo_sync"`
	Estado           SystemState `gorm:"column:estado;not null;default:disponible"`
	Modelo           *string     `gorm:"column:modelo"`
	VersionFirmware  *string     `gorm:"column:version_firmware"`
}

func (System) TableName() string { return "sistema_caec" }
