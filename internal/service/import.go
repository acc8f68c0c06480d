package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"terminal-portal/internal/model"
)

// importColumns is the layout produced by the spreadsheet cleaning step.
var importColumns = []string{"lugar", "hora", "anden", "empresa", "fecha"}

const maxImportErrors = 20

type ImportSummary struct {
	Tipo     model.Direction `json:"tipo"`
	Total    int             `json:"total"`
	Inserted int             `json:"insertados"`
	Skipped  int             `json:"omitidos"`
	Invalid  int             `json:"invalidos"`
	Errors   []string        `json:"errores,omitempty"`
}

// Import loads a semicolon separated schedule file into one direction.
// Rows that already exist (same fecha, hora, empresa and lugar) are skipped;
// malformed rows are counted and reported, never inserted.
func (s *ScheduleService) Import(ctx context.Context, principal model.Principal, rawDirection string, r io.Reader) (ImportSummary, error) {
	if !principal.IsAdmin() {
		return ImportSummary{}, ErrPermissionDenied
	}
	direction, err := requireDirection(rawDirection)
	if err != nil {
		return ImportSummary{}, err
	}

	rows, summary, err := parseSchedule(r)
	if err != nil {
		return ImportSummary{}, err
	}
	summary.Tipo = direction

	if len(rows) > 0 {
		inserted, err := s.movements.ImportRows(ctx, direction, rows)
		if err != nil {
			s.countTechnical("import", err)
			return ImportSummary{}, storeError("import schedule", "recorrido", "", err)
		}
		summary.Inserted = inserted
		summary.Skipped = len(rows) - inserted
	}

	s.log.Info().
		Str("tipo", string(direction)).
		Int("total", summary.Total).
		Int("inserted", summary.Inserted).
		Int("skipped", summary.Skipped).
		Int("invalid", summary.Invalid).
		Int64("user_id", principal.UserID).
		Msg("schedule imported")
	return summary, nil
}

func parseSchedule(r io.Reader) ([]model.Movement, ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	summary := ImportSummary{}
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, summary, missing("file")
		}
		return nil, summary, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, summary, err
	}

	var rows []model.Movement
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			summary.Total++
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				summary.reject(parseErr.Line, parseErr.Err.Error())
				continue
			}
			return nil, summary, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if blankRecord(record) {
			continue
		}
		summary.Total++

		line, _ := reader.FieldPos(0)
		movement, reason := scheduleRow(record, index)
		if reason != "" {
			summary.reject(line, reason)
			continue
		}
		rows = append(rows, movement)
	}
	return rows, summary, nil
}

func (s *ImportSummary) reject(line int, reason string) {
	s.Invalid++
	if len(s.Errors) < maxImportErrors {
		s.Errors = append(s.Errors, fmt.Sprintf("línea %d: %s", line, reason))
	}
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(importColumns))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		index[name] = i
	}
	for _, col := range importColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: column %q missing from header", ErrInvalidInput, col)
		}
	}
	return index, nil
}

func scheduleRow(record []string, index map[string]int) (model.Movement, string) {
	field := func(name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	company := field("empresa")
	if company == "" {
		return model.Movement{}, "empresa vacía"
	}
	day, ok := parseCivilDate(field("fecha"))
	if !ok {
		return model.Movement{}, fmt.Sprintf("fecha inválida %q", field("fecha"))
	}
	clock, ok := parseClock(field("hora"))
	if !ok {
		return model.Movement{}, fmt.Sprintf("hora inválida %q", field("hora"))
	}
	// spreadsheet exports write integer columns with blanks as floats
	anden, err := model.ParseAnden(strings.TrimSuffix(field("anden"), ".0"))
	if err != nil {
		return model.Movement{}, fmt.Sprintf("andén inválido %q", field("anden"))
	}

	return model.Movement{
		Fecha:   day.Format(model.DateLayout),
		Hora:    clock,
		Empresa: company,
		Lugar:   field("lugar"),
		Anden:   anden,
		Estado:  model.MovementStatusScheduled,
	}, ""
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
