package systems

import (
	"time"

	"github.com/caec/caec-backend/pkg/db/models"
)

// DefaultName is used when a link request leaves nombre_sistema blank.
const DefaultName = "Mi Sistema CAEC"

// SystemDTO is the transport shape of a sistema_caec row.
type SystemDTO struct {
	ID               int64              `json:"id" yaml:"id"`
	CodigoSistema    string             `json:"codigo_sistema" yaml:"codigo_sistema"`
	NombreSistema    string             `json:"nombre_sistema" yaml:"nombre_sistema"`
	Estado           models.SystemState `json:"estado" yaml:"estado"`
	Modelo           string             `json:"modelo,omitempty" yaml:"modelo,omitempty"`
	VersionFirmware  string             `json:"version_firmware,omitempty" yaml:"version_firmware,omitempty"`
	FechaVinculacion *time.Time         `json:"fecha_vinculacion,omitempty" yaml:"fecha_vinculacion,omitempty"`
	UltimoSync       *time.Time         `json:"ultimo_sync,omitempty" yaml:"ultimo_sync,omitempty"`
}

// SystemWithOwner is a system row LEFT JOINed with its owner, if any.
type SystemWithOwner struct {
	ID            int64              `json:"id" yaml:"id"`
	CodigoSistema string             `json:"codigo_sistema" yaml:"codigo_sistema"`
	NombreSistema *string            `json:"nombre_sistema" yaml:"nombre_sistema"`
	Estado        models.SystemState `json:"estado" yaml:"estado"`
	Modelo        *string            `json:"modelo" yaml:"modelo"`
	UsuarioID     *int64             `json:"usuario_id" yaml:"usuario_id"`
	OwnerEmail    *string            `json:"owner_email" yaml:"owner_email"`
}

// LinkInput is what a user submits to claim a device.
type LinkInput struct {
	UserID int64
	Code   string
	Name   string
}

func FromModel(s *models.System) *SystemDTO {
	if s == nil {
		return nil
	}
	return &SystemDTO{
		ID:               s.ID,
		CodigoSistema:    s.CodigoSistema,
		NombreSistema:    deref(s.NombreSistema),
		Estado:           s.Estado,
		Modelo:           deref(s.Modelo),
		VersionFirmware:  deref(s.VersionFirmware),
		FechaVinculacion: s.FechaVinculacion,
		UltimoSync:       s.UltimoSync,
	}
}

func FromModels(rows []models.System) []SystemDTO {
	out := make([]SystemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
