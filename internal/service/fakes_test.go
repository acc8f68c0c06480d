package service

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"terminal-portal/internal/events"
	"terminal-portal/internal/model"
	"terminal-portal/internal/repository"
)

var (
	adminPrincipal    = model.Principal{UserID: 1, Username: "admin", Role: model.UserRoleAdmin}
	operatorPrincipal = model.Principal{UserID: 2, Username: "operador1", Role: model.UserRoleOperator}
	publicPrincipal   = model.Principal{Role: model.UserRolePublic}
)

func intPtr(v int) *int { return &v }

type fakeMovements struct {
	byDirection map[model.Direction][]model.Movement
	err         error

	windowFilters []repository.WindowFilter
	searchFilters []repository.MovementFilter
	saved         []model.Movement
	statuses      map[int64]string
	deleted       []int64
	imported      []model.Movement
	importResult  int
	names         map[string][]string
}

func newFakeMovements() *fakeMovements {
	return &fakeMovements{
		byDirection: map[model.Direction][]model.Movement{},
		statuses:    map[int64]string{},
		names:       map[string][]string{},
	}
}

func (f *fakeMovements) ListWindow(_ context.Context, direction model.Direction, filter repository.WindowFilter) ([]model.Movement, error) {
	f.windowFilters = append(f.windowFilters, filter)
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Movement
	for _, m := range f.byDirection[direction] {
		if m.Fecha == filter.Day || (m.Fecha == filter.NextDay && normalizeClock(m.Hora) <= filter.Cutoff) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMovements) Search(_ context.Context, direction model.Direction, filter repository.MovementFilter) ([]model.Movement, int64, error) {
	f.searchFilters = append(f.searchFilters, filter)
	if f.err != nil {
		return nil, 0, f.err
	}
	rows := f.byDirection[direction]
	return rows, int64(len(rows)), nil
}

func (f *fakeMovements) GetByID(_ context.Context, direction model.Direction, id int64) (*model.Movement, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.byDirection[direction] {
		if m.ID == id {
			m.Direction = direction
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMovements) Save(_ context.Context, movement *model.Movement) error {
	if f.err != nil {
		return f.err
	}
	if movement.ID == 0 {
		movement.ID = int64(len(f.saved) + 100)
	}
	f.saved = append(f.saved, *movement)
	return nil
}

func (f *fakeMovements) UpdateStatus(_ context.Context, _ model.Direction, id int64, status string) error {
	if f.err != nil {
		return f.err
	}
	f.statuses[id] = status
	return nil
}

func (f *fakeMovements) Delete(_ context.Context, _ model.Direction, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeMovements) ImportRows(_ context.Context, _ model.Direction, rows []model.Movement) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.imported = append(f.imported, rows...)
	return f.importResult, nil
}

func (f *fakeMovements) DistinctNames(_ context.Context, column string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.names[column], nil
}

type fakeNews struct {
	items []model.News
	err   error
}

func (f *fakeNews) ListActive(context.Context) ([]model.News, error) {
	var out []model.News
	for _, n := range f.items {
		if n.Activa {
			out = append(out, n)
		}
	}
	return out, f.err
}

func (f *fakeNews) List(context.Context) ([]model.News, error) { return f.items, f.err }

func (f *fakeNews) Create(_ context.Context, n *model.News) error {
	if f.err != nil {
		return f.err
	}
	n.ID = int64(len(f.items) + 1)
	f.items = append(f.items, *n)
	return nil
}

func (f *fakeNews) Update(_ context.Context, n *model.News) error {
	if f.err != nil {
		return f.err
	}
	for i := range f.items {
		if f.items[i].ID == n.ID {
			f.items[i] = *n
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeNews) Delete(context.Context, int64) error { return f.err }

// fakeCheckins applies the audit row and the status change together, or
// neither, like the transactional repository does.
type fakeCheckins struct {
	movements     *fakeMovements
	verifications []model.VerificationRecord
	extras        []model.ExtraTripRecord
	filters       []repository.HistoryFilter
	err           error
}

func (f *fakeCheckins) RecordVerification(_ context.Context, record *model.VerificationRecord, status string) error {
	if f.err != nil {
		return f.err
	}
	record.ID = int64(len(f.verifications) + 1)
	f.verifications = append(f.verifications, *record)
	if f.movements != nil {
		f.movements.statuses[record.RecorridoID] = status
	}
	return nil
}

func (f *fakeCheckins) CreateExtra(_ context.Context, record *model.ExtraTripRecord) error {
	if f.err != nil {
		return f.err
	}
	record.ID = int64(len(f.extras) + 1)
	f.extras = append(f.extras, *record)
	return nil
}

func (f *fakeCheckins) ListVerifications(_ context.Context, filter repository.HistoryFilter) ([]model.VerificationRecord, int64, error) {
	f.filters = append(f.filters, filter)
	return f.verifications, int64(len(f.verifications)), f.err
}

func (f *fakeCheckins) ListExtras(_ context.Context, filter repository.HistoryFilter) ([]model.ExtraTripRecord, int64, error) {
	f.filters = append(f.filters, filter)
	return f.extras, int64(len(f.extras)), f.err
}

type fakeFleet struct {
	entries []model.FleetEntry
	err     error
	created []model.FleetEntry
	updated []model.FleetEntry
}

func (f *fakeFleet) FindActive(_ context.Context, plate string) (*model.FleetEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.entries {
		if e.Patente == plate && e.Activa {
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeFleet) List(context.Context) ([]model.FleetEntry, error) { return f.entries, f.err }

func (f *fakeFleet) Create(_ context.Context, e *model.FleetEntry) error {
	if f.err != nil {
		return f.err
	}
	e.ID = int64(len(f.entries) + 1)
	f.created = append(f.created, *e)
	return nil
}

func (f *fakeFleet) Update(_ context.Context, e *model.FleetEntry) error {
	if f.err != nil {
		return f.err
	}
	f.updated = append(f.updated, *e)
	return nil
}

func (f *fakeFleet) Delete(context.Context, int64) error { return f.err }

type fakeUsers struct {
	users   []model.User
	err     error
	created []model.User
	updated []model.User
	deleted []int64
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) List(context.Context) ([]model.User, error) { return f.users, f.err }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.err != nil {
		return f.err
	}
	u.ID = int64(len(f.users) + len(f.created) + 1)
	f.created = append(f.created, *u)
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *model.User) error {
	if f.err != nil {
		return f.err
	}
	f.updated = append(f.updated, *u)
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeMaster struct {
	companies []model.Company
	places    []model.Place
	err       error
	renamed   map[int64]string
}

func (f *fakeMaster) ListCompanies(context.Context) ([]model.Company, error) { return f.companies, f.err }

func (f *fakeMaster) CreateCompany(_ context.Context, c *model.Company) error {
	if f.err != nil {
		return f.err
	}
	c.ID = int64(len(f.companies) + 1)
	f.companies = append(f.companies, *c)
	return nil
}

func (f *fakeMaster) RenameCompany(_ context.Context, id int64, name string) error {
	if f.err != nil {
		return f.err
	}
	if f.renamed == nil {
		f.renamed = map[int64]string{}
	}
	f.renamed[id] = name
	return nil
}

func (f *fakeMaster) DeleteCompany(context.Context, int64) error { return f.err }

func (f *fakeMaster) ListPlaces(context.Context) ([]model.Place, error) { return f.places, f.err }

func (f *fakeMaster) CreatePlace(_ context.Context, p *model.Place) error {
	if f.err != nil {
		return f.err
	}
	p.ID = int64(len(f.places) + 1)
	f.places = append(f.places, *p)
	return nil
}

func (f *fakeMaster) RenamePlace(_ context.Context, id int64, name string) error {
	return f.RenameCompany(context.Background(), id, name)
}

func (f *fakeMaster) DeletePlace(context.Context, int64) error { return f.err }

type fakeMetrics struct {
	outcomes []string
	extras   []bool
	windows  []int
	dbErrors []string
}

func (m *fakeMetrics) VerificationRecorded(outcome string) { m.outcomes = append(m.outcomes, outcome) }

func (m *fakeMetrics) ExtraTripRecorded(known bool) { m.extras = append(m.extras, known) }

func (m *fakeMetrics) WindowServed(entries int) { m.windows = append(m.windows, entries) }

func (m *fakeMetrics) DBError(op string) { m.dbErrors = append(m.dbErrors, op) }

type fakePublisher struct {
	mu     sync.Mutex
	events []events.CheckinEvent
	err    error
}

func (p *fakePublisher) PublishCheckin(_ context.Context, event events.CheckinEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) Close() {}
