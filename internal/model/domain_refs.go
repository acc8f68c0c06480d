package model

import (
	"strings"
	"time"
)

type Company struct {
	ID     int64  `gorm:"column:id;primaryKey" json:"id"`
	Nombre string `gorm:"column:nombre;uniqueIndex;not null" json:"nombre"`
}

func (Company) TableName() string {
	return "empresas"
}

type Place struct {
	ID     int64  `gorm:"column:id;primaryKey" json:"id"`
	Nombre string `gorm:"column:nombre;uniqueIndex;not null" json:"nombre"`
}

func (Place) TableName() string {
	return "lugares"
}

// FleetEntry is one plate of the allow-list. Patente is always stored
// normalized, see NormalizePlate.
type FleetEntry struct {
	ID      int64  `gorm:"column:id;primaryKey" json:"id"`
	Patente string `gorm:"column:patente;uniqueIndex;not null" json:"patente"`
	Empresa string `gorm:"column:empresa;not null" json:"empresa"`
	Activa  bool   `gorm:"column:activa;not null" json:"activa"`
}

func (FleetEntry) TableName() string {
	return "buses_permitidos"
}

// NormalizePlate upper-cases, trims and strips hyphens and inner blanks so
// "ab-1234" and "AB 1234" compare equal to "AB1234".
func NormalizePlate(raw string) string {
	p := strings.ToUpper(strings.TrimSpace(raw))
	return strings.NewReplacer("-", "", " ", "").Replace(p)
}

type News struct {
	ID            int64     `gorm:"column:id;primaryKey" json:"id"`
	Contenido     string    `gorm:"column:contenido;not null" json:"contenido"`
	FechaCreacion time.Time `gorm:"column:fecha_creacion;autoCreateTime" json:"fecha_creacion"`
	Activa        bool      `gorm:"column:activa;not null" json:"activa"`
}

func (News) TableName() string {
	return "noticias"
}

type User struct {
	ID           int64     `gorm:"column:id;primaryKey" json:"id"`
	Username     string    `gorm:"column:username;uniqueIndex;not null" json:"username"`
	Rut          string    `gorm:"column:rut" json:"rut"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Rol          UserRole  `gorm:"column:rol;type:varchar(16);not null" json:"rol"`
	Activo       bool      `gorm:"column:activo;not null" json:"activo"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "usuarios"
}
