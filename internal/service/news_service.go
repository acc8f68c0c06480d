package service

import (
	"context"
	"strings"

	"terminal-portal/internal/model"
)

type newsStore interface {
	List(ctx context.Context) ([]model.News, error)
	Create(ctx context.Context, news *model.News) error
	Update(ctx context.Context, news *model.News) error
	Delete(ctx context.Context, id int64) error
}

type NewsService struct {
	news newsStore
}

func NewNewsService(news newsStore) *NewsService {
	return &NewsService{news: news}
}

func (s *NewsService) List(ctx context.Context, principal model.Principal) ([]model.News, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	items, err := s.news.List(ctx)
	if err != nil {
		return nil, storeError("list news", "noticia", "", err)
	}
	return items, nil
}

type NewsInput struct {
	ID        int64
	Contenido string
	Activa    bool
}

func (s *NewsService) Save(ctx context.Context, principal model.Principal, input NewsInput) (*model.News, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	content := strings.TrimSpace(input.Contenido)
	if content == "" {
		return nil, missing("contenido")
	}
	news := &model.News{ID: input.ID, Contenido: content, Activa: input.Activa}
	var err error
	if news.ID == 0 {
		err = s.news.Create(ctx, news)
	} else {
		err = s.news.Update(ctx, news)
	}
	if err != nil {
		return nil, storeError("save news", "noticia", "", err)
	}
	return news, nil
}

func (s *NewsService) Delete(ctx context.Context, principal model.Principal, id int64) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	return storeError("delete news", "noticia", "", s.news.Delete(ctx, id))
}
