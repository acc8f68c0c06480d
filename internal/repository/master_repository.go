package repository

import (
	"context"

	"gorm.io/gorm"

	"terminal-portal/internal/model"
)

// MasterRepository owns the company and place catalogs.
type MasterRepository struct {
	db *gorm.DB
}

func NewMasterRepository(db *gorm.DB) *MasterRepository {
	return &MasterRepository{db: db}
}

func (r *MasterRepository) ListCompanies(ctx context.Context) ([]model.Company, error) {
	companies := make([]model.Company, 0)
	if err := r.db.WithContext(ctx).Order("nombre ASC").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *MasterRepository) CreateCompany(ctx context.Context, company *model.Company) error {
	return translate(r.db.WithContext(ctx).Create(company).Error)
}

// RenameCompany also rewrites the denormalized name on both schedule tables.
func (r *MasterRepository) RenameCompany(ctx context.Context, id int64, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Company
		if err := tx.Where("id = ?", id).Take(&current).Error; err != nil {
			return err
		}
		if err := affectedOrNotFound(tx.Model(&model.Company{}).Where("id = ?", id).Update("nombre", name)); err != nil {
			return err
		}
		for _, d := range model.Directions() {
			table, _ := d.Table()
			if err := translate(tx.Table(table).
				Where("empresa_nombre = ?", current.Nombre).
				Update("empresa_nombre", name).Error); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *MasterRepository) DeleteCompany(ctx context.Context, id int64) error {
	return affectedOrNotFound(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Company{}))
}

func (r *MasterRepository) ListPlaces(ctx context.Context) ([]model.Place, error) {
	places := make([]model.Place, 0)
	if err := r.db.WithContext(ctx).Order("nombre ASC").Find(&places).Error; err != nil {
		return nil, err
	}
	return places, nil
}

func (r *MasterRepository) CreatePlace(ctx context.Context, place *model.Place) error {
	return translate(r.db.WithContext(ctx).Create(place).Error)
}

func (r *MasterRepository) RenamePlace(ctx context.Context, id int64, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Place
		if err := tx.Where("id = ?", id).Take(&current).Error; err != nil {
			return err
		}
		if err := affectedOrNotFound(tx.Model(&model.Place{}).Where("id = ?", id).Update("nombre", name)); err != nil {
			return err
		}
		for _, d := range model.Directions() {
			table, _ := d.Table()
			if err := translate(tx.Table(table).
				Where("lugar = ?", current.Nombre).
				Update("lugar", name).Error); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *MasterRepository) DeletePlace(ctx context.Context, id int64) error {
	return affectedOrNotFound(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Place{}))
}
