package models

import "time"

// User is an account row in usuario. Password is stored as entered.
type User struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Nombre        string     `gorm:"column:nombre;not null"`
	Apellido      string     `gorm:"column:apellido;not null"`
	Email         string     `gorm:"column:email;not null;uniqueIndex"`
	Password      string     `gorm:"column:password;not null"`
	FechaRegistro time.Time  `gorm:"column:fecha_registro;not null"`
	UltimoAcceso  *time.Time `gorm:"column:ultimo_acceso"`
	Activo        bool       `gorm:"column:activo;not null"`
}

func (User) TableName() string { return "usuario" }
