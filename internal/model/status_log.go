package model

import "time"

type VerificationOutcome string

const (
	VerificationAccepted VerificationOutcome = "ACEPTADO"
	VerificationWarning  VerificationOutcome = "ADVERTENCIA"
	VerificationRejected VerificationOutcome = "RECHAZADO"
)

// ClassifyVerification ranks the plate check above the platform check.
func ClassifyVerification(plateValid, platformCorrect bool) VerificationOutcome {
	switch {
	case !plateValid:
		return VerificationRejected
	case !platformCorrect:
		return VerificationWarning
	default:
		return VerificationAccepted
	}
}

// VerificationRecord is append-only. The validity flags are computed once,
// when the operator checks the bus in, and never recomputed.
type VerificationRecord struct {
	ID               int64               `gorm:"column:id;primaryKey" json:"id"`
	RecorridoID      int64               `gorm:"column:recorrido_id;not null" json:"recorrido_id"`
	TipoRecorrido    Direction           `gorm:"column:tipo_recorrido;type:varchar(16);not null" json:"tipo_recorrido"`
	PatenteIngresada string              `gorm:"column:patente_ingresada;not null" json:"patente_ingresada"`
	AndenIngresado   string              `gorm:"column:anden_ingresado" json:"anden_ingresado"`
	AndenProgramado  string              `gorm:"column:anden_programado" json:"anden_programado"`
	EsPatenteValida  bool                `gorm:"column:es_patente_valida;not null" json:"es_patente_valida"`
	EsAndenCorrecto  bool                `gorm:"column:es_anden_correcto;not null" json:"es_anden_correcto"`
	Resultado        VerificationOutcome `gorm:"column:resultado;type:varchar(16);not null" json:"resultado"`
	UsuarioID        int64               `gorm:"column:usuario_id;not null" json:"usuario_id"`
	Observaciones    string              `gorm:"column:observaciones" json:"observaciones"`
	FechaManual      string              `gorm:"column:fecha_manual;not null" json:"fecha_manual"`
	HoraManual       string              `gorm:"column:hora_manual;not null" json:"hora_manual"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (VerificationRecord) TableName() string {
	return "historial_verificaciones"
}

const UnregisteredCompany = "NO REGISTRADA"

// ExtraTripRecord logs an unscheduled bus. It never references a movement.
type ExtraTripRecord struct {
	ID            int64     `gorm:"column:id;primaryKey" json:"id"`
	Fecha         string    `gorm:"column:fecha;not null" json:"fecha"`
	Hora          string    `gorm:"column:hora;not null" json:"hora"`
	Patente       string    `gorm:"column:patente;not null" json:"patente"`
	Empresa       string    `gorm:"column:empresa;not null" json:"empresa"`
	Lugar         string    `gorm:"column:lugar" json:"lugar"`
	TipoRecorrido Direction `gorm:"column:tipo_recorrido;type:varchar(16);not null" json:"tipo_recorrido"`
	Anden         string    `gorm:"column:anden;not null" json:"anden"`
	EsConocido    bool      `gorm:"column:es_conocido;not null" json:"es_conocido"`
	UsuarioID     int64     `gorm:"column:usuario_id;not null" json:"usuario_id"`
	Observacion   string    `gorm:"column:observacion;not null" json:"observacion"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ExtraTripRecord) TableName() string {
	return "historial_extras"
}
