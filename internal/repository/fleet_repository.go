package repository

import (
	"context"

	"gorm.io/gorm"

	"terminal-portal/internal/model"
)

type FleetRepository struct {
	db *gorm.DB
}

func NewFleetRepository(db *gorm.DB) *FleetRepository {
	return &FleetRepository{db: db}
}

// FindActive looks up an already normalized plate among active entries.
func (r *FleetRepository) FindActive(ctx context.Context, plate string) (*model.FleetEntry, error) {
	var entry model.FleetEntry
	if err := r.db.WithContext(ctx).
		Where("patente = ? AND activa = ?", plate, true).
		Take(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *FleetRepository) List(ctx context.Context) ([]model.FleetEntry, error) {
	entries := make([]model.FleetEntry, 0)
	if err := r.db.WithContext(ctx).Order("empresa ASC, patente ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *FleetRepository) Create(ctx context.Context, entry *model.FleetEntry) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *FleetRepository) Update(ctx context.Context, entry *model.FleetEntry) error {
	return affectedOrNotFound(r.db.WithContext(ctx).
		Model(&model.FleetEntry{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"patente": entry.Patente,
			"empresa": entry.Empresa,
			"activa":  entry.Activa,
		}))
}

func (r *FleetRepository) Delete(ctx context.Context, id int64) error {
	return affectedOrNotFound(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.FleetEntry{}))
}
