package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"terminal-portal/internal/model"
	"terminal-portal/internal/repository"
)

const (
	PublicPageSize = 15
	AdminPageSize  = 50

	boardWarning = "No fue posible cargar los recorridos. Intente nuevamente en unos minutos."
)

type movementStore interface {
	ListWindow(ctx context.Context, direction model.Direction, filter repository.WindowFilter) ([]model.Movement, error)
	Search(ctx context.Context, direction model.Direction, filter repository.MovementFilter) ([]model.Movement, int64, error)
	GetByID(ctx context.Context, direction model.Direction, id int64) (*model.Movement, error)
	Save(ctx context.Context, movement *model.Movement) error
	UpdateStatus(ctx context.Context, direction model.Direction, id int64, status string) error
	Delete(ctx context.Context, direction model.Direction, id int64) error
	ImportRows(ctx context.Context, direction model.Direction, rows []model.Movement) (int, error)
	DistinctNames(ctx context.Context, column string) ([]string, error)
}

type activeNewsStore interface {
	ListActive(ctx context.Context) ([]model.News, error)
}

type windowMetrics interface {
	WindowServed(entries int)
	DBError(op string)
}

type ScheduleService struct {
	movements movementStore
	news      activeNewsStore
	location  *time.Location
	welcome   string
	metrics   windowMetrics
	log       zerolog.Logger
}

func NewScheduleService(
	movements movementStore,
	news activeNewsStore,
	location *time.Location,
	welcome string,
	metrics windowMetrics,
	log zerolog.Logger,
) *ScheduleService {
	if location == nil {
		location = time.UTC
	}
	return &ScheduleService{
		movements: movements,
		news:      news,
		location:  location,
		welcome:   welcome,
		metrics:   metrics,
		log:       log.With().Str("component", "schedule").Logger(),
	}
}

// SelectWindow returns every movement of the selected civil day plus the next
// day's early hours, merged and ordered by (fecha, hora). Only privileged
// principals may pick the day.
func (s *ScheduleService) SelectWindow(ctx context.Context, principal model.Principal, ref time.Time, selectedDate string) (Window, []model.RecorridoEntry, error) {
	window := NewWindow(ref, s.location, selectedDate, principal.CanPickDate())
	filter := repository.WindowFilter{Day: window.Day, NextDay: window.NextDay, Cutoff: window.Cutoff}

	arrivals, err := s.movements.ListWindow(ctx, model.DirectionArrival, filter)
	if err != nil {
		s.dbError("window")
		return window, nil, &TechnicalError{Op: "list arrivals", Err: err}
	}
	departures, err := s.movements.ListWindow(ctx, model.DirectionDeparture, filter)
	if err != nil {
		s.dbError("window")
		return window, nil, &TechnicalError{Op: "list departures", Err: err}
	}

	entries := window.Merge(arrivals, departures)
	if s.metrics != nil {
		s.metrics.WindowServed(len(entries))
	}
	return window, entries, nil
}

type BoardView struct {
	Fecha       string           `json:"fecha"`
	Llegadas    []model.BoardRow `json:"llegadas"`
	Salidas     []model.BoardRow `json:"salidas"`
	Noticias    []string         `json:"noticias"`
	Warning     string           `json:"warning,omitempty"`
	Actualizado time.Time        `json:"actualizado"`
}

// Board is the public display for the civil today. A database failure
// degrades to empty lists plus a warning instead of an error.
func (s *ScheduleService) Board(ctx context.Context, ref time.Time) BoardView {
	view := BoardView{
		Llegadas:    make([]model.BoardRow, 0),
		Salidas:     make([]model.BoardRow, 0),
		Actualizado: ref.In(s.location),
	}

	window, entries, err := s.SelectWindow(ctx, model.Principal{}, ref, "")
	view.Fecha = window.Day
	if err != nil {
		s.log.Error().Err(err).Str("fecha", window.Day).Msg("board window unavailable")
		view.Warning = boardWarning
	}
	for _, e := range entries {
		row := model.NewBoardRow(e)
		if e.Direction == model.DirectionArrival {
			view.Llegadas = append(view.Llegadas, row)
		} else {
			view.Salidas = append(view.Salidas, row)
		}
	}

	view.Noticias = s.boardNews(ctx)
	return view
}

func (s *ScheduleService) boardNews(ctx context.Context) []string {
	if s.news != nil {
		items, err := s.news.ListActive(ctx)
		if err != nil {
			s.dbError("news")
			s.log.Warn().Err(err).Msg("board news unavailable")
		}
		out := make([]string, 0, len(items))
		for _, n := range items {
			if text := strings.TrimSpace(n.Contenido); text != "" {
				out = append(out, text)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return []string{s.welcome}
}

type SearchOptions struct {
	Fecha   string
	Hora    string
	Empresa string
	Lugar   string
	Anden   string
	Page    int
	// Public searches default to the civil today and use the short page.
	Public bool
}

type SearchResult struct {
	Fecha         string           `json:"fecha"`
	Page          int              `json:"page"`
	PageSize      int              `json:"page_size"`
	TotalPages    int              `json:"total_pages"`
	TotalLlegadas int64            `json:"total_llegadas"`
	TotalSalidas  int64            `json:"total_salidas"`
	Llegadas      []model.Movement `json:"llegadas"`
	Salidas       []model.Movement `json:"salidas"`
	Warning       string           `json:"warning,omitempty"`
}

// Search runs the consultation query over both tables with the same filters
// and paging. Failures degrade to an empty result with a warning.
func (s *ScheduleService) Search(ctx context.Context, ref time.Time, opts SearchOptions) SearchResult {
	size := AdminPageSize
	if opts.Public {
		size = PublicPageSize
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}

	filter := repository.MovementFilter{
		Fecha:      strings.TrimSpace(opts.Fecha),
		HoraPrefix: strings.TrimSpace(opts.Hora),
		Empresa:    strings.TrimSpace(opts.Empresa),
		Lugar:      strings.TrimSpace(opts.Lugar),
		Limit:      size,
		Offset:     (page - 1) * size,
	}
	if filter.Fecha != "" {
		if day, ok := parseCivilDate(filter.Fecha); ok {
			filter.Fecha = day.Format(model.DateLayout)
		} else {
			filter.Fecha = ""
		}
	}
	if filter.Fecha == "" && opts.Public {
		filter.Fecha = civilDate(ref, s.location).Format(model.DateLayout)
	}
	if anden := strings.TrimSpace(opts.Anden); isDigits(anden) {
		n, err := strconv.Atoi(anden)
		if err == nil {
			filter.Anden = &n
		}
	}

	result := SearchResult{
		Fecha:      filter.Fecha,
		Page:       page,
		PageSize:   size,
		TotalPages: 1,
		Llegadas:   make([]model.Movement, 0),
		Salidas:    make([]model.Movement, 0),
	}

	arrivals, totalArrivals, err := s.movements.Search(ctx, model.DirectionArrival, filter)
	if err == nil {
		var departures []model.Movement
		var totalDepartures int64
		departures, totalDepartures, err = s.movements.Search(ctx, model.DirectionDeparture, filter)
		if err == nil {
			result.Llegadas = arrivals
			result.Salidas = departures
			result.TotalLlegadas = totalArrivals
			result.TotalSalidas = totalDepartures
			result.TotalPages = totalPages(totalArrivals, totalDepartures, size)
			return result
		}
	}

	s.dbError("search")
	s.log.Error().Err(err).Msg("schedule search failed")
	result.Warning = boardWarning
	return result
}

type FilterOptions struct {
	Empresas []string `json:"empresas"`
	Lugares  []string `json:"lugares"`
}

// FilterOptions lists the companies and places present in either schedule.
func (s *ScheduleService) FilterOptions(ctx context.Context) (FilterOptions, error) {
	companies, err := s.movements.DistinctNames(ctx, "empresa_nombre")
	if err != nil {
		s.dbError("filters")
		return FilterOptions{}, &TechnicalError{Op: "list companies", Err: err}
	}
	places, err := s.movements.DistinctNames(ctx, "lugar")
	if err != nil {
		s.dbError("filters")
		return FilterOptions{}, &TechnicalError{Op: "list places", Err: err}
	}
	return FilterOptions{Empresas: companies, Lugares: places}, nil
}

type MovementInput struct {
	ID        int64
	Direction string
	Fecha     string
	Hora      string
	Empresa   string
	Lugar     string
	Anden     string
}

// SaveMovement creates (ID == 0) or fully replaces a movement.
func (s *ScheduleService) SaveMovement(ctx context.Context, principal model.Principal, input MovementInput) (*model.Movement, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	if strings.TrimSpace(input.Direction) == "" {
		return nil, missing("tipo")
	}
	direction, err := model.ParseDirection(input.Direction)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(input.Fecha) == "" {
		return nil, missing("fecha")
	}
	day, ok := parseCivilDate(input.Fecha)
	if !ok {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(input.Hora) == "" {
		return nil, missing("hora")
	}
	clock, ok := parseClock(input.Hora)
	if !ok {
		return nil, ErrInvalidInput
	}
	company := strings.TrimSpace(input.Empresa)
	if company == "" {
		return nil, missing("empresa")
	}
	anden, err := model.ParseAnden(input.Anden)
	if err != nil {
		return nil, ErrInvalidInput
	}

	movement := &model.Movement{
		ID:        input.ID,
		Fecha:     day.Format(model.DateLayout),
		Hora:      clock,
		Empresa:   company,
		Lugar:     strings.TrimSpace(input.Lugar),
		Anden:     anden,
		Direction: direction,
	}
	if err := s.movements.Save(ctx, movement); err != nil {
		s.countTechnical("save_movement", err)
		return nil, storeError("save movement", "recorrido", movement.Fecha+" "+movement.Hora, err)
	}
	return movement, nil
}

func (s *ScheduleService) GetMovement(ctx context.Context, principal model.Principal, rawDirection string, id int64) (*model.Movement, error) {
	if !principal.IsStaff() {
		return nil, ErrPermissionDenied
	}
	direction, err := requireDirection(rawDirection)
	if err != nil {
		return nil, err
	}
	movement, err := s.movements.GetByID(ctx, direction, id)
	if err != nil {
		s.countTechnical("get_movement", err)
		return nil, storeError("get movement", "recorrido", "", err)
	}
	return movement, nil
}

func (s *ScheduleService) DeleteMovement(ctx context.Context, principal model.Principal, rawDirection string, id int64) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	direction, err := requireDirection(rawDirection)
	if err != nil {
		return err
	}
	if id <= 0 {
		return missing("id")
	}
	if err := s.movements.Delete(ctx, direction, id); err != nil {
		s.countTechnical("delete_movement", err)
		return storeError("delete movement", "recorrido", "", err)
	}
	return nil
}

// UpdateStatus writes a free-text status, as operators do from the console.
func (s *ScheduleService) UpdateStatus(ctx context.Context, principal model.Principal, rawDirection string, id int64, status string) error {
	if !principal.IsStaff() {
		return ErrPermissionDenied
	}
	if id <= 0 {
		return missing("id")
	}
	direction, err := requireDirection(rawDirection)
	if err != nil {
		return err
	}
	if err := s.movements.UpdateStatus(ctx, direction, id, strings.TrimSpace(status)); err != nil {
		s.countTechnical("update_status", err)
		return storeError("update status", "recorrido", "", err)
	}
	return nil
}

func (s *ScheduleService) dbError(op string) {
	if s.metrics != nil {
		s.metrics.DBError(op)
	}
}

func (s *ScheduleService) countTechnical(op string, err error) {
	if _, ok := storeError(op, "", "", err).(*TechnicalError); ok {
		s.dbError(op)
	}
}

func requireDirection(raw string) (model.Direction, error) {
	if strings.TrimSpace(raw) == "" {
		return "", missing("tipo")
	}
	direction, err := model.ParseDirection(raw)
	if err != nil {
		return "", ErrInvalidInput
	}
	return direction, nil
}

func totalPages(arrivals, departures int64, size int) int {
	largest := arrivals
	if departures > largest {
		largest = departures
	}
	pages := int((largest + int64(size) - 1) / int64(size))
	if pages < 1 {
		return 1
	}
	return pages
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
