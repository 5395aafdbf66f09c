package contacts

import "github.com/caec/caec-backend/pkg/db/models"

// ContactDTO is the transport shape of a contact row.
type ContactDTO struct {
	Telefono     *string `json:"telefono" yaml:"telefono,omitempty"`
	Celular      *string `json:"celular" yaml:"celular,omitempty"`
	Direccion    *string `json:"direccion" yaml:"direccion,omitempty"`
	Ciudad       *string `json:"ciudad" yaml:"ciudad,omitempty"`
	Pais         *string `json:"pais" yaml:"pais,omitempty"`
	CodigoPostal *string `json:"codigo_postal" yaml:"codigo_postal,omitempty"`
}

// UpdateContactDTO carries optional columns; nil leaves the column untouched.
type UpdateContactDTO struct {
	Telefono     *string
	Celular      *string
	Direccion    *string
	Ciudad       *string
	Pais         *string
	CodigoPostal *string
}

// ContactWithUser is a contact joined with its owner's email.
type ContactWithUser struct {
	UsuarioID int64  `json:"usuario_id" yaml:"usuario_id"`
	Email     string `json:"email" yaml:"email"`
	ContactDTO
}

func FromModel(c *models.Contact) *ContactDTO {
	if c == nil {
		return nil
	}
	return &ContactDTO{
		Telefono:     c.Telefono,
		Celular:      c.Celular,
		Direccion:    c.Direccion,
		Ciudad:       c.Ciudad,
		Pais:         c.Pais,
		CodigoPostal: c.CodigoPostal,
	}
}

func (u UpdateContactDTO) columns() map[string]any {
	cols := map[string]any{}
	set := func(name string, v *string) {
		if v != nil {
			cols[name] = *v
		}
	}
	set("telefono", u.Telefono)
	set("celular", u.Celular)
	set("direccion", u.Direccion)
	set("ciudad", u.Ciudad)
	set("pais", u.Pais)
	set("codigo_postal", u.CodigoPostal)
	return cols
}

func (u UpdateContactDTO) IsEmpty() bool {
	return len(u.columns()) == 0
}
