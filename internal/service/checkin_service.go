package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"terminal-portal/internal/events"
	"terminal-portal/internal/model"
	"terminal-portal/internal/repository"
)

const defaultHistoryLimit = 200

type checkinStore interface {
	RecordVerification(ctx context.Context, record *model.VerificationRecord, status string) error
	CreateExtra(ctx context.Context, record *model.ExtraTripRecord) error
	ListVerifications(ctx context.Context, filter repository.HistoryFilter) ([]model.VerificationRecord, int64, error)
	ListExtras(ctx context.Context, filter repository.HistoryFilter) ([]model.ExtraTripRecord, int64, error)
}

type movementLookup interface {
	GetByID(ctx context.Context, direction model.Direction, id int64) (*model.Movement, error)
}

type fleetLookup interface {
	FindActive(ctx context.Context, plate string) (*model.FleetEntry, error)
}

type checkinMetrics interface {
	VerificationRecorded(outcome string)
	ExtraTripRecorded(known bool)
	DBError(op string)
}

type CheckinService struct {
	checkins  checkinStore
	movements movementLookup
	fleet     fleetLookup
	publisher events.Publisher
	metrics   checkinMetrics
	log       zerolog.Logger
	now       func() time.Time
}

func NewCheckinService(
	checkins checkinStore,
	movements movementLookup,
	fleet fleetLookup,
	publisher events.Publisher,
	metrics checkinMetrics,
	log zerolog.Logger,
) *CheckinService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &CheckinService{
		checkins:  checkins,
		movements: movements,
		fleet:     fleet,
		publisher: publisher,
		metrics:   metrics,
		log:       log.With().Str("component", "checkin").Logger(),
		now:       time.Now,
	}
}

type VerifyInput struct {
	RecorridoID   int64
	Direction     string
	Plate         string
	Platform      string
	Observaciones string
	Fecha         string
	Hora          string
}

// VerificationResult is what the console shows after a check-in.
type VerificationResult struct {
	Record   model.VerificationRecord  `json:"registro"`
	Outcome  model.VerificationOutcome `json:"resultado"`
	Severity model.MessageSeverity     `json:"-"`
	Status   string                    `json:"status"`
	Title    string                    `json:"title"`
	Message  string                    `json:"message"`
}

// Verify checks a bus in against its scheduled movement. The audit row and
// the "En Andén" status are written together whatever the outcome.
func (s *CheckinService) Verify(ctx context.Context, principal model.Principal, input VerifyInput) (*VerificationResult, error) {
	if !principal.IsStaff() {
		return nil, ErrPermissionDenied
	}

	if input.RecorridoID <= 0 {
		return nil, missing("recorrido_id")
	}
	direction, err := requireDirection(input.Direction)
	if err != nil {
		return nil, err
	}
	plate := model.NormalizePlate(input.Plate)
	if plate == "" {
		return nil, missing("patente")
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

	movement, err := s.movements.GetByID(ctx, direction, input.RecorridoID)
	if err != nil {
		return nil, s.classify("verify_lookup", "recorrido", err)
	}

	plateValid, err := s.plateInFleet(ctx, plate)
	if err != nil {
		return nil, s.classify("verify_fleet", "bus", err)
	}

	submitted := strings.TrimSpace(input.Platform)
	scheduled := movement.AndenText()
	platformCorrect := submitted == scheduled
	outcome := model.ClassifyVerification(plateValid, platformCorrect)

	record := &model.VerificationRecord{
		RecorridoID:      movement.ID,
		TipoRecorrido:    direction,
		PatenteIngresada: plate,
		AndenIngresado:   submitted,
		AndenProgramado:  scheduled,
		EsPatenteValida:  plateValid,
		EsAndenCorrecto:  platformCorrect,
		Resultado:        outcome,
		UsuarioID:        principal.UserID,
		Observaciones:    input.Observaciones,
		FechaManual:      day.Format(model.DateLayout),
		HoraManual:       clock,
	}
	if err := s.checkins.RecordVerification(ctx, record, model.MovementStatusAtBay); err != nil {
		return nil, s.classify("verify", "recorrido", err)
	}

	if s.metrics != nil {
		s.metrics.VerificationRecorded(string(outcome))
	}
	s.publish(ctx, events.CheckinEvent{
		Kind:        events.KindVerification,
		RecordID:    record.ID,
		RecorridoID: record.RecorridoID,
		Direction:   string(direction),
		Plate:       plate,
		Platform:    submitted,
		Outcome:     string(outcome),
		OperatorID:  principal.UserID,
		Timestamp:   s.now().UTC(),
	})

	result := &VerificationResult{Record: *record, Outcome: outcome}
	switch outcome {
	case model.VerificationRejected:
		result.Severity = model.SeverityDanger
		result.Status = "error"
		result.Title = "Patente no autorizada"
		result.Message = "La patente " + plate + " no está registrada como bus autorizado."
	case model.VerificationWarning:
		result.Severity = model.SeverityWarning
		result.Status = "warning"
		result.Title = "Andén incorrecto"
		result.Message = "El bus se registró en el andén " + displayPlatform(submitted) +
			", pero estaba programado en el andén " + displayPlatform(scheduled) + "."
	default:
		result.Severity = model.SeveritySuccess
		result.Status = "success"
		result.Title = "Bus verificado"
		result.Message = "Patente " + plate + " verificada en el andén " + displayPlatform(submitted) + "."
	}
	return result, nil
}

type ExtraInput struct {
	Plate       string
	Direction   string
	Platform    string
	Fecha       string
	Hora        string
	Empresa     string
	Lugar       string
	Observacion string
}

type ExtraResult struct {
	Record   model.ExtraTripRecord `json:"registro"`
	Known    bool                  `json:"conocido"`
	Severity model.MessageSeverity `json:"-"`
	Status   string                `json:"status"`
	Title    string                `json:"title"`
	Message  string                `json:"message"`
}

// RecordExtra logs a bus that arrived or left without a scheduled movement.
func (s *CheckinService) RecordExtra(ctx context.Context, principal model.Principal, input ExtraInput) (*ExtraResult, error) {
	if !principal.IsStaff() {
		return nil, ErrPermissionDenied
	}

	plate := model.NormalizePlate(input.Plate)
	if plate == "" {
		return nil, missing("patente")
	}
	direction, err := requireDirection(input.Direction)
	if err != nil {
		return nil, err
	}
	platform := strings.TrimSpace(input.Platform)
	if platform == "" {
		return nil, missing("anden")
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
	known := false
	entry, err := s.fleet.FindActive(ctx, plate)
	switch {
	case err == nil:
		company = entry.Empresa
		known = true
	case errors.Is(err, gorm.ErrRecordNotFound):
		if company == "" {
			company = model.UnregisteredCompany
		}
	default:
		return nil, s.classify("extra_fleet", "bus", err)
	}

	record := &model.ExtraTripRecord{
		Fecha:         day.Format(model.DateLayout),
		Hora:          clock,
		Patente:       plate,
		Empresa:       company,
		Lugar:         strings.TrimSpace(input.Lugar),
		TipoRecorrido: direction,
		Anden:         platform,
		EsConocido:    known,
		UsuarioID:     principal.UserID,
		Observacion:   input.Observacion,
	}
	if err := s.checkins.CreateExtra(ctx, record); err != nil {
		return nil, s.classify("extra", "recorrido extra", err)
	}

	if s.metrics != nil {
		s.metrics.ExtraTripRecorded(known)
	}
	s.publish(ctx, events.CheckinEvent{
		Kind:       events.KindExtra,
		RecordID:   record.ID,
		Direction:  string(direction),
		Plate:      plate,
		Platform:   platform,
		Outcome:    extraOutcome(known),
		OperatorID: principal.UserID,
		Timestamp:  s.now().UTC(),
	})

	result := &ExtraResult{Record: *record, Known: known, Severity: severityFor(known)}
	if known {
		result.Status = "success"
		result.Title = "Recorrido extra registrado"
		result.Message = "Bus " + plate + " de " + company + " registrado en el andén " + platform + "."
	} else {
		result.Status = "warning"
		result.Title = "Bus no registrado"
		result.Message = "La patente " + plate + " no está en la flota autorizada, pero el recorrido quedó registrado."
	}
	return result, nil
}

type HistoryOptions struct {
	Fecha     string
	Direction string
	Limit     int
	Offset    int
}

type VerificationPage struct {
	Items []model.VerificationRecord `json:"items"`
	Total int64                      `json:"total"`
}

type ExtraPage struct {
	Items []model.ExtraTripRecord `json:"items"`
	Total int64                   `json:"total"`
}

func (s *CheckinService) ListVerifications(ctx context.Context, principal model.Principal, opts HistoryOptions) (VerificationPage, error) {
	filter, err := s.historyFilter(principal, opts)
	if err != nil {
		return VerificationPage{}, err
	}
	items, total, err := s.checkins.ListVerifications(ctx, filter)
	if err != nil {
		return VerificationPage{}, s.classify("history_verifications", "historial", err)
	}
	return VerificationPage{Items: items, Total: total}, nil
}

func (s *CheckinService) ListExtras(ctx context.Context, principal model.Principal, opts HistoryOptions) (ExtraPage, error) {
	filter, err := s.historyFilter(principal, opts)
	if err != nil {
		return ExtraPage{}, err
	}
	items, total, err := s.checkins.ListExtras(ctx, filter)
	if err != nil {
		return ExtraPage{}, s.classify("history_extras", "historial", err)
	}
	return ExtraPage{Items: items, Total: total}, nil
}

func (s *CheckinService) historyFilter(principal model.Principal, opts HistoryOptions) (repository.HistoryFilter, error) {
	if !principal.IsStaff() {
		return repository.HistoryFilter{}, ErrPermissionDenied
	}
	filter := repository.HistoryFilter{Limit: opts.Limit, Offset: opts.Offset}
	if filter.Limit <= 0 || filter.Limit > defaultHistoryLimit {
		filter.Limit = defaultHistoryLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if strings.TrimSpace(opts.Fecha) != "" {
		day, ok := parseCivilDate(opts.Fecha)
		if !ok {
			return repository.HistoryFilter{}, ErrInvalidInput
		}
		filter.Fecha = day.Format(model.DateLayout)
	}
	if strings.TrimSpace(opts.Direction) != "" {
		direction, err := model.ParseDirection(opts.Direction)
		if err != nil {
			return repository.HistoryFilter{}, ErrInvalidInput
		}
		filter.Direction = direction
	}
	// operators only see their own entries
	if principal.IsOperator() {
		id := principal.UserID
		filter.UsuarioID = &id
	}
	return filter, nil
}

func (s *CheckinService) plateInFleet(ctx context.Context, plate string) (bool, error) {
	_, err := s.fleet.FindActive(ctx, plate)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *CheckinService) classify(op, resource string, err error) error {
	classified := storeError(op, resource, "", err)
	var techErr *TechnicalError
	if errors.As(classified, &techErr) {
		if s.metrics != nil {
			s.metrics.DBError(op)
		}
		s.log.Error().Err(err).Str("op", op).Msg("check-in storage failure")
	}
	return classified
}

func (s *CheckinService) publish(ctx context.Context, event events.CheckinEvent) {
	if err := s.publisher.PublishCheckin(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("kind", event.Kind).Int64("record_id", event.RecordID).Msg("check-in event not published")
	}
}

func severityFor(known bool) model.MessageSeverity {
	if known {
		return model.SeveritySuccess
	}
	return model.SeverityWarning
}

func extraOutcome(known bool) string {
	if known {
		return "CONOCIDO"
	}
	return "NO_REGISTRADO"
}

func displayPlatform(p string) string {
	if p == "" {
		return "?"
	}
	return p
}
