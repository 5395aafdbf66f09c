package users

import (
	"strings"
	"time"

	"github.com/caec/caec-backend/pkg/db/models"
)

// UserDTO is the transport shape. It never carries the password.
type UserDTO struct {
	ID            int64      `json:"id" yaml:"id"`
	Nombre        string     `json:"nombre" yaml:"nombre"`
	Apellido      string     `json:"apellido" yaml:"apellido"`
	Email         string     `json:"email" yaml:"email"`
	FechaRegistro time.Time  `json:"fecha_registro" yaml:"fecha_registro"`
	UltimoAcceso  *time.Time `json:"ultimo_acceso,omitempty" yaml:"ultimo_acceso,omitempty"`
	Activo        bool       `json:"activo" yaml:"activo"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Nombre   string
	Apellido string
	Email    string
	Password string
	Activo   *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:            u.ID,
		Nombre:        u.Nombre,
		Apellido:      u.Apellido,
		Email:         u.Email,
		FechaRegistro: u.FechaRegistro,
		UltimoAcceso:  u.UltimoAcceso,
		Activo:        u.Activo,
	}
}

// FullName joins nombre and apellido for display.
func (u UserDTO) FullName() string {
	return strings.TrimSpace(u.Nombre + " " + u.Apellido)
}

func (c CreateUserDTO) ToModel(now time.Time) *models.User {
	activo := true
	if c.Activo != nil {
		activo = *c.Activo
	}
	return &models.User{
		Nombre:        strings.TrimSpace(c.Nombre),
		Apellido:      strings.TrimSpace(c.Apellido),
		Email:         c.Email,
		Password:      c.Password,
		FechaRegistro: now,
		Activo:        activo,
	}
}
