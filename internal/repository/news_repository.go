package repository

import (
	"context"

	"gorm.io/gorm"

	"terminal-portal/internal/model"
)

type NewsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

// ListActive returns what the public board shows, newest first.
func (r *NewsRepository) ListActive(ctx context.Context) ([]model.News, error) {
	items := make([]model.News, 0)
	if err := r.db.WithContext(ctx).
		Where("activa = ?", true).
		Order("fecha_creacion DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *NewsRepository) List(ctx context.Context) ([]model.News, error) {
	items := make([]model.News, 0)
	if err := r.db.WithContext(ctx).Order("fecha_creacion DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *NewsRepository) Create(ctx context.Context, news *model.News) error {
	return r.db.WithContext(ctx).Create(news).Error
}

func (r *NewsRepository) Update(ctx context.Context, news *model.News) error {
	return affectedOrNotFound(r.db.WithContext(ctx).
		Model(&model.News{}).
		Where("id = ?", news.ID).
		Updates(map[string]interface{}{
			"contenido": news.Contenido,
			"activa":    news.Activa,
		}))
}

func (r *NewsRepository) Delete(ctx context.Context, id int64) error {
	return affectedOrNotFound(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.News{}))
}
