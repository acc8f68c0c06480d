package service

import (
	"context"
	"strings"

	"terminal-portal/internal/model"
)

type masterStore interface {
	ListCompanies(ctx context.Context) ([]model.Company, error)
	CreateCompany(ctx context.Context, company *model.Company) error
	RenameCompany(ctx context.Context, id int64, name string) error
	DeleteCompany(ctx context.Context, id int64) error
	ListPlaces(ctx context.Context) ([]model.Place, error)
	CreatePlace(ctx context.Context, place *model.Place) error
	RenamePlace(ctx context.Context, id int64, name string) error
	DeletePlace(ctx context.Context, id int64) error
}

// MasterDataService manages the company and place catalogs. Reads are
// public since the consultation page uses them for its selects.
type MasterDataService struct {
	store masterStore
}

func NewMasterDataService(store masterStore) *MasterDataService {
	return &MasterDataService{store: store}
}

func (s *MasterDataService) Companies(ctx context.Context) ([]model.Company, error) {
	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return nil, storeError("list companies", "empresa", "", err)
	}
	return companies, nil
}

func (s *MasterDataService) SaveCompany(ctx context.Context, principal model.Principal, id int64, name string) (*model.Company, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, missing("nombre")
	}
	company := &model.Company{ID: id, Nombre: name}
	var err error
	if id == 0 {
		err = s.store.CreateCompany(ctx, company)
	} else {
		err = s.store.RenameCompany(ctx, id, name)
	}
	if err != nil {
		return nil, storeError("save company", "empresa", name, err)
	}
	return company, nil
}

func (s *MasterDataService) DeleteCompany(ctx context.Context, principal model.Principal, id int64) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	return storeError("delete company", "empresa", "", s.store.DeleteCompany(ctx, id))
}

func (s *MasterDataService) Places(ctx context.Context) ([]model.Place, error) {
	places, err := s.store.ListPlaces(ctx)
	if err != nil {
		return nil, storeError("list places", "lugar", "", err)
	}
	return places, nil
}

func (s *MasterDataService) SavePlace(ctx context.Context, principal model.Principal, id int64, name string) (*model.Place, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, missing("nombre")
	}
	place := &model.Place{ID: id, Nombre: name}
	var err error
	if id == 0 {
		err = s.store.CreatePlace(ctx, place)
	} else {
		err = s.store.RenamePlace(ctx, id, name)
	}
	if err != nil {
		return nil, storeError("save place", "lugar", name, err)
	}
	return place, nil
}

func (s *MasterDataService) DeletePlace(ctx context.Context, principal model.Principal, id int64) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	return storeError("delete place", "lugar", "", s.store.DeletePlace(ctx, id))
}
