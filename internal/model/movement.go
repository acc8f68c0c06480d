package model

import (
	"strconv"
	"strings"
)

const (
	MovementStatusScheduled = "Programado"
	MovementStatusAtBay     = "En Andén"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Movement is one row of import_llegadas or import_salidas. Fecha and Hora
// are kept in their civil text form (YYYY-MM-DD, HH:MM:SS); the repository
// formats them on the way out of Postgres.
type Movement struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	Fecha     string    `gorm:"column:fecha" json:"fecha"`
	Hora      string    `gorm:"column:hora" json:"hora"`
	Empresa   string    `gorm:"column:empresa_nombre" json:"empresa"`
	Lugar     string    `gorm:"column:lugar" json:"lugar"`
	Anden     *int      `gorm:"column:anden" json:"anden"`
	Estado    string    `gorm:"column:estado" json:"estado"`
	Direction Direction `gorm:"-" json:"tipo"`
}

// AndenText renders the platform the way operators type it; an unknown
// platform is the empty string.
func (m Movement) AndenText() string {
	if m.Anden == nil {
		return ""
	}
	return strconv.Itoa(*m.Anden)
}

// ShortTime is HH:MM for display.
func (m Movement) ShortTime() string {
	if len(m.Hora) >= 5 {
		return m.Hora[:5]
	}
	return m.Hora
}

// ParseAnden accepts a platform as typed in a form. Blank means unknown.
func ParseAnden(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
