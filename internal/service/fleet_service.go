package service

import (
	"context"
	"strings"

	"terminal-portal/internal/model"
)

type fleetStore interface {
	List(ctx context.Context) ([]model.FleetEntry, error)
	Create(ctx context.Context, entry *model.FleetEntry) error
	Update(ctx context.Context, entry *model.FleetEntry) error
	Delete(ctx context.Context, id int64) error
}

type FleetService struct {
	fleet fleetStore
}

func NewFleetService(fleet fleetStore) *FleetService {
	return &FleetService{fleet: fleet}
}

func (s *FleetService) List(ctx context.Context, principal model.Principal) ([]model.FleetEntry, error) {
	if !principal.IsStaff() {
		return nil, ErrPermissionDenied
	}
	entries, err := s.fleet.List(ctx)
	if err != nil {
		return nil, storeError("list fleet", "bus", "", err)
	}
	return entries, nil
}

type FleetInput struct {
	ID      int64
	Patente string
	Empresa string
	Activa  bool
}

// Save registers (ID == 0) or updates an allow-listed plate. Plates are
// stored normalized.
func (s *FleetService) Save(ctx context.Context, principal model.Principal, input FleetInput) (*model.FleetEntry, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	plate := model.NormalizePlate(input.Patente)
	if plate == "" {
		return nil, missing("patente")
	}
	company := strings.TrimSpace(input.Empresa)
	if company == "" {
		return nil, missing("empresa")
	}

	entry := &model.FleetEntry{ID: input.ID, Patente: plate, Empresa: company, Activa: input.Activa}
	var err error
	if entry.ID == 0 {
		err = s.fleet.Create(ctx, entry)
	} else {
		err = s.fleet.Update(ctx, entry)
	}
	if err != nil {
		return nil, storeError("save fleet entry", "patente", plate, err)
	}
	return entry, nil
}

func (s *FleetService) Delete(ctx context.Context, principal model.Principal, id int64) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if id <= 0 {
		return missing("id")
	}
	return storeError("delete fleet entry", "bus", "", s.fleet.Delete(ctx, id))
}
