package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"terminal-portal/internal/model"
)

// Fecha and hora leave Postgres as civil text so no driver ever shifts them
// through a time zone.
const movementColumns = "id, to_char(fecha, 'YYYY-MM-DD') AS fecha, to_char(hora, 'HH24:MI:SS') AS hora, " +
	"empresa_nombre, lugar, anden, COALESCE(estado, '') AS estado"

type MovementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// WindowFilter selects a civil day plus the early hours of the next one.
type WindowFilter struct {
	Day     string
	NextDay string
	Cutoff  string
}

func (r *MovementRepository) ListWindow(ctx context.Context, direction model.Direction, filter WindowFilter) ([]model.Movement, error) {
	table, err := direction.Table()
	if err != nil {
		return nil, err
	}

	var movements []model.Movement
	if err := r.db.WithContext(ctx).
		Table(table).
		Select(movementColumns).
		Where("fecha = ? OR (fecha = ? AND hora <= ?)", filter.Day, filter.NextDay, filter.Cutoff).
		Order("fecha ASC, hora ASC, id ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}

	return tagDirection(movements, direction), nil
}

type MovementFilter struct {
	Fecha      string
	HoraPrefix string
	Empresa    string
	Lugar      string
	Anden      *int
	Limit      int
	Offset     int
}

func (r *MovementRepository) Search(ctx context.Context, direction model.Direction, filter MovementFilter) ([]model.Movement, int64, error) {
	table, err := direction.Table()
	if err != nil {
		return nil, 0, err
	}

	query := applyMovementFilter(r.db.WithContext(ctx).Table(table), filter)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	} else {
		query = query.Limit(200)
	}

	var movements []model.Movement
	if err := query.
		Select(movementColumns).
		Order("fecha ASC, hora ASC, id ASC").
		Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return tagDirection(movements, direction), total, nil
}

func (r *MovementRepository) GetByID(ctx context.Context, direction model.Direction, id int64) (*model.Movement, error) {
	table, err := direction.Table()
	if err != nil {
		return nil, err
	}

	var movement model.Movement
	if err := r.db.WithContext(ctx).
		Table(table).
		Select(movementColumns).
		Where("id = ?", id).
		Take(&movement).Error; err != nil {
		return nil, err
	}
	movement.Direction = direction
	return &movement, nil
}

// Save inserts (ID == 0) or fully updates a movement. The company and place
// are registered in their master tables within the same transaction.
func (r *MovementRepository) Save(ctx context.Context, movement *model.Movement) error {
	table, err := movement.Direction.Table()
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureMasterData(tx, movement.Empresa, movement.Lugar); err != nil {
			return err
		}

		if movement.ID == 0 {
			if movement.Estado == "" {
				movement.Estado = model.MovementStatusScheduled
			}
			return translate(tx.Table(table).Create(movement).Error)
		}

		return affectedOrNotFound(tx.Table(table).
			Where("id = ?", movement.ID).
			Updates(map[string]interface{}{
				"fecha":          movement.Fecha,
				"hora":           movement.Hora,
				"empresa_nombre": movement.Empresa,
				"lugar":          movement.Lugar,
				"anden":          movement.Anden,
			}))
	})
}

func (r *MovementRepository) UpdateStatus(ctx context.Context, direction model.Direction, id int64, status string) error {
	table, err := direction.Table()
	if err != nil {
		return err
	}
	return affectedOrNotFound(r.db.WithContext(ctx).
		Table(table).
		Where("id = ?", id).
		Update("estado", status))
}

func (r *MovementRepository) Delete(ctx context.Context, direction model.Direction, id int64) error {
	table, err := direction.Table()
	if err != nil {
		return err
	}
	return affectedOrNotFound(r.db.WithContext(ctx).
		Table(table).
		Where("id = ?", id).
		Delete(&model.Movement{}))
}

// ImportRows inserts schedule rows, skipping those whose natural key
// (fecha, hora, empresa_nombre, lugar) already exists. It returns how many
// rows were actually inserted.
func (r *MovementRepository) ImportRows(ctx context.Context, direction model.Direction, rows []model.Movement) (int, error) {
	table, err := direction.Table()
	if err != nil {
		return 0, err
	}

	inserted := 0
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			row := rows[i]
			if err := ensureMasterData(tx, row.Empresa, row.Lugar); err != nil {
				return err
			}
			if row.Estado == "" {
				row.Estado = model.MovementStatusScheduled
			}
			res := tx.Table(table).
				Clauses(clause.OnConflict{
					Columns: []clause.Column{
						{Name: "fecha"}, {Name: "hora"}, {Name: "empresa_nombre"}, {Name: "lugar"},
					},
					DoNothing: true,
				}).
				Create(&row)
			if res.Error != nil {
				return translate(res.Error)
			}
			if res.RowsAffected > 0 {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// DistinctNames lists companies and places that actually appear in the
// schedule, across both directions.
func (r *MovementRepository) DistinctNames(ctx context.Context, column string) ([]string, error) {
	if column != "empresa_nombre" && column != "lugar" {
		return nil, gorm.ErrInvalidField
	}
	var names []string
	err := r.db.WithContext(ctx).
		Raw("SELECT DISTINCT " + column + " FROM import_salidas UNION SELECT DISTINCT " + column + " FROM import_llegadas ORDER BY 1").
		Scan(&names).Error
	return names, err
}

func applyMovementFilter(query *gorm.DB, filter MovementFilter) *gorm.DB {
	if filter.Fecha != "" {
		query = query.Where("fecha = ?", filter.Fecha)
	}
	if filter.HoraPrefix != "" {
		query = query.Where("hora::text LIKE ?", filter.HoraPrefix+"%")
	}
	if filter.Empresa != "" {
		query = query.Where("empresa_nombre = ?", filter.Empresa)
	}
	if filter.Lugar != "" {
		query = query.Where("lugar = ?", filter.Lugar)
	}
	if filter.Anden != nil {
		query = query.Where("anden = ?", *filter.Anden)
	}
	return query
}

func ensureMasterData(tx *gorm.DB, company, place string) error {
	if company != "" {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Company{Nombre: company}).Error; err != nil {
			return err
		}
	}
	if place != "" {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Place{Nombre: place}).Error; err != nil {
			return err
		}
	}
	return nil
}

func tagDirection(movements []model.Movement, direction model.Direction) []model.Movement {
	for i := range movements {
		movements[i].Direction = direction
	}
	return movements
}
