package repository

import (
	"context"

	"gorm.io/gorm"

	"terminal-portal/internal/model"
)

const verificationColumns = "id, recorrido_id, tipo_recorrido, patente_ingresada, " +
	"COALESCE(anden_ingresado, '') AS anden_ingresado, COALESCE(anden_programado, '') AS anden_programado, " +
	"es_patente_valida, es_anden_correcto, resultado, usuario_id, COALESCE(observaciones, '') AS observaciones, " +
	"to_char(fecha_manual, 'YYYY-MM-DD') AS fecha_manual, to_char(hora_manual, 'HH24:MI:SS') AS hora_manual, created_at"

const extraColumns = "id, to_char(fecha, 'YYYY-MM-DD') AS fecha, to_char(hora, 'HH24:MI:SS') AS hora, " +
	"patente, empresa, COALESCE(lugar, '') AS lugar, tipo_recorrido, anden, es_conocido, usuario_id, " +
	"observacion, created_at"

type CheckinRepository struct {
	db *gorm.DB
}

func NewCheckinRepository(db *gorm.DB) *CheckinRepository {
	return &CheckinRepository{db: db}
}

// RecordVerification appends the audit row and, only if that succeeds, marks
// the movement as at the bay. Both writes commit together or not at all; a
// movement that vanished in between rolls the audit row back.
func (r *CheckinRepository) RecordVerification(ctx context.Context, record *model.VerificationRecord, status string) error {
	table, err := record.TipoRecorrido.Table()
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return translate(err)
		}
		return affectedOrNotFound(tx.Table(table).
			Where("id = ?", record.RecorridoID).
			Update("estado", status))
	})
}

func (r *CheckinRepository) CreateExtra(ctx context.Context, record *model.ExtraTripRecord) error {
	return translate(r.db.WithContext(ctx).Create(record).Error)
}

type HistoryFilter struct {
	Fecha     string
	Direction model.Direction
	UsuarioID *int64
	Limit     int
	Offset    int
}

func (r *CheckinRepository) ListVerifications(ctx context.Context, filter HistoryFilter) ([]model.VerificationRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.VerificationRecord{})
	if filter.Fecha != "" {
		query = query.Where("fecha_manual = ?", filter.Fecha)
	}
	if filter.Direction != "" {
		query = query.Where("tipo_recorrido = ?", filter.Direction)
	}
	if filter.UsuarioID != nil {
		query = query.Where("usuario_id = ?", *filter.UsuarioID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	records := make([]model.VerificationRecord, 0)
	if err := paginate(query, filter.Limit, filter.Offset).
		Select(verificationColumns).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *CheckinRepository) ListExtras(ctx context.Context, filter HistoryFilter) ([]model.ExtraTripRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.ExtraTripRecord{})
	if filter.Fecha != "" {
		query = query.Where("fecha = ?", filter.Fecha)
	}
	if filter.Direction != "" {
		query = query.Where("tipo_recorrido = ?", filter.Direction)
	}
	if filter.UsuarioID != nil {
		query = query.Where("usuario_id = ?", *filter.UsuarioID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	records := make([]model.ExtraTripRecord, 0)
	if err := paginate(query, filter.Limit, filter.Offset).
		Select(extraColumns).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func paginate(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = 200
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query.Limit(limit)
}
