package service

import (
	"sort"
	"strings"
	"time"

	"terminal-portal/internal/model"
)

// RolloverCutoff is the last time of the following day that still belongs to
// the selected evening.
const RolloverCutoff = "04:00:00"

// Window is a civil day plus the early hours of the next one, both expressed
// as YYYY-MM-DD in the terminal's time zone.
type Window struct {
	Day     string `json:"fecha"`
	NextDay string `json:"fecha_siguiente"`
	Cutoff  string `json:"corte"`
}

// NewWindow resolves the day to display. selected is honoured only when
// allowOverride is set and it parses as a date; otherwise the civil date of
// ref in loc is used.
func NewWindow(ref time.Time, loc *time.Location, selected string, allowOverride bool) Window {
	day := civilDate(ref, loc)
	if allowOverride {
		if picked, ok := parseCivilDate(selected); ok {
			day = picked
		}
	}
	return Window{
		Day:     day.Format(model.DateLayout),
		NextDay: day.AddDate(0, 0, 1).Format(model.DateLayout),
		Cutoff:  RolloverCutoff,
	}
}

func (w Window) Contains(m model.Movement) bool {
	return m.Fecha == w.Day || w.IsRollover(m)
}

func (w Window) IsRollover(m model.Movement) bool {
	return m.Fecha == w.NextDay && normalizeClock(m.Hora) <= w.Cutoff
}

// Merge tags both directions, drops anything outside the window and orders
// the result by (fecha, hora). Arrivals go before departures at the same
// minute, then lower ids first.
func (w Window) Merge(arrivals, departures []model.Movement) []model.RecorridoEntry {
	entries := make([]model.RecorridoEntry, 0, len(arrivals)+len(departures))
	add := func(rows []model.Movement, direction model.Direction) {
		for _, m := range rows {
			if !w.Contains(m) {
				continue
			}
			m.Direction = direction
			entries = append(entries, model.RecorridoEntry{Movement: m, IsRollover: w.IsRollover(m)})
		}
	}
	add(arrivals, model.DirectionArrival)
	add(departures, model.DirectionDeparture)

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Fecha != b.Fecha {
			return a.Fecha < b.Fecha
		}
		if ha, hb := normalizeClock(a.Hora), normalizeClock(b.Hora); ha != hb {
			return ha < hb
		}
		if a.Direction != b.Direction {
			return a.Direction == model.DirectionArrival
		}
		return a.ID < b.ID
	})
	return entries
}

// civilDate returns noon UTC of the calendar day ref falls on in loc, so that
// date arithmetic never crosses a DST edge.
func civilDate(ref time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := ref.In(loc).Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func parseCivilDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{model.DateLayout, "02/01/2006", "02-01-2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Add(12 * time.Hour), true
		}
	}
	return time.Time{}, false
}

// normalizeClock turns HH:MM into HH:MM:SS so clock strings compare
// lexically.
func normalizeClock(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) == 5 {
		return raw + ":00"
	}
	return raw
}

func parseClock(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{model.TimeLayout, "15:04", "15.04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(model.TimeLayout), true
		}
	}
	return "", false
}
