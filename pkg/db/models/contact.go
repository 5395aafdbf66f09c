package models

// Contact is the one-to-one contact sheet of a user.
type Contact struct {
	ID           int64   `gorm:"column:id;primaryKey;autoIncrement"`
	UsuarioID    int64   `gorm:"column:usuario_id;not null;uniqueIndex"`
	Telefono     *string `gorm:"column:telefono"`
	Celular      *string `gorm:"column:celular"`
	Direccion    *string `gorm:"column:direccion"`
	Ciudad       *string `gorm:"column:ciudad"`
	Pais         *string `gorm:"column:pais"`
	CodigoPostal *string `gorm:"column:codigo_postal"`
}

func (Contact) TableName() string { return "contacto" }
