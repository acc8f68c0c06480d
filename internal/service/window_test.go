package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terminal-portal/internal/model"
)

func santiago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)
	return loc
}

// 2024-06-11 02:00 UTC is still the evening of 2024-06-10 in Santiago.
var lateEvening = time.Date(2024, 6, 11, 2, 0, 0, 0, time.UTC)

func TestNewWindowUsesCivilDateOfTimezone(t *testing.T) {
	w := NewWindow(lateEvening, santiago(t), "", true)
	assert.Equal(t, "2024-06-10", w.Day)
	assert.Equal(t, "2024-06-11", w.NextDay)
	assert.Equal(t, RolloverCutoff, w.Cutoff)
}

func TestNewWindowOverride(t *testing.T) {
	loc := santiago(t)

	cases := []struct {
		name     string
		selected string
		allow    bool
		want     string
	}{
		{"iso date", "2024-12-31", true, "2024-12-31"},
		{"slashed date", "01/03/2024", true, "2024-03-01"},
		{"garbage falls back to today", "mañana", true, "2024-06-10"},
		{"blank falls back to today", "  ", true, "2024-06-10"},
		{"public cannot override", "2024-12-31", false, "2024-06-10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWindow(lateEvening, loc, tc.selected, tc.allow)
			assert.Equal(t, tc.want, w.Day)
		})
	}
}

func TestNewWindowCrossesMonthAndYear(t *testing.T) {
	w := NewWindow(lateEvening, time.UTC, "2024-12-31", true)
	assert.Equal(t, "2025-01-01", w.NextDay)

	w = NewWindow(lateEvening, time.UTC, "2024-02-28", true)
	assert.Equal(t, "2024-02-29", w.NextDay)
}

func TestWindowContains(t *testing.T) {
	w := Window{Day: "2024-06-10", NextDay: "2024-06-11", Cutoff: RolloverCutoff}

	assert.True(t, w.Contains(model.Movement{Fecha: "2024-06-10", Hora: "00:00:00"}))
	assert.True(t, w.Contains(model.Movement{Fecha: "2024-06-10", Hora: "23:59:00"}))
	assert.True(t, w.Contains(model.Movement{Fecha: "2024-06-11", Hora: "04:00:00"}))
	assert.True(t, w.Contains(model.Movement{Fecha: "2024-06-11", Hora: "03:30"}))
	assert.False(t, w.Contains(model.Movement{Fecha: "2024-06-11", Hora: "04:00:01"}))
	assert.False(t, w.Contains(model.Movement{Fecha: "2024-06-09", Hora: "23:00:00"}))
	assert.False(t, w.Contains(model.Movement{Fecha: "2024-06-12", Hora: "01:00:00"}))
}

func TestMergeOrdersByDateThenTime(t *testing.T) {
	w := Window{Day: "2024-06-10", NextDay: "2024-06-11", Cutoff: RolloverCutoff}
	arrivals := []model.Movement{
		{ID: 1, Fecha: "2024-06-11", Hora: "02:30:00"},
		{ID: 2, Fecha: "2024-06-10", Hora: "23:45:00"},
		{ID: 3, Fecha: "2024-06-11", Hora: "06:00:00"},
	}
	departures := []model.Movement{
		{ID: 4, Fecha: "2024-06-10", Hora: "08:15:00"},
		{ID: 5, Fecha: "2024-06-10", Hora: "23:45"},
		{ID: 6, Fecha: "2024-06-11", Hora: "00:10:00"},
	}

	entries := w.Merge(arrivals, departures)
	require.Len(t, entries, 5)

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int64{4, 2, 5, 6, 1}, ids)

	assert.Equal(t, model.DirectionDeparture, entries[0].Direction)
	assert.Equal(t, model.DirectionArrival, entries[1].Direction)
	assert.False(t, entries[2].IsRollover)
	assert.True(t, entries[3].IsRollover)
	assert.True(t, entries[4].IsRollover)
}

func TestSelectWindowRolloverEntrySortsLast(t *testing.T) {
	movements := newFakeMovements()
	movements.byDirection[model.DirectionDeparture] = []model.Movement{
		{ID: 10, Fecha: "2024-06-11", Hora: "02:30:00", Empresa: "Buses Sur"},
		{ID: 11, Fecha: "2024-06-10", Hora: "21:00:00", Empresa: "Buses Sur"},
		{ID: 12, Fecha: "2024-06-11", Hora: "07:00:00", Empresa: "Buses Sur"},
	}
	movements.byDirection[model.DirectionArrival] = []model.Movement{
		{ID: 20, Fecha: "2024-06-10", Hora: "23:55:00", Empresa: "Queilen"},
		{ID: 21, Fecha: "2024-06-09", Hora: "23:55:00", Empresa: "Queilen"},
	}
	m := &fakeMetrics{}
	svc := NewScheduleService(movements, nil, santiago(t), "hola", m, zerolog.Nop())

	window, entries, err := svc.SelectWindow(context.Background(), operatorPrincipal, lateEvening, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", window.Day)

	require.Len(t, entries, 3)
	assert.Equal(t, int64(11), entries[0].ID)
	assert.Equal(t, int64(20), entries[1].ID)
	assert.Equal(t, int64(10), entries[2].ID)
	assert.True(t, entries[2].IsRollover)

	require.Len(t, movements.windowFilters, 2)
	assert.Equal(t, "2024-06-11", movements.windowFilters[0].NextDay)
	assert.Equal(t, []int{3}, m.windows)
}

func TestSelectWindowPublicIgnoresSelectedDate(t *testing.T) {
	movements := newFakeMovements()
	svc := NewScheduleService(movements, nil, santiago(t), "hola", nil, zerolog.Nop())

	window, _, err := svc.SelectWindow(context.Background(), publicPrincipal, lateEvening, "2020-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", window.Day)

	window, _, err = svc.SelectWindow(context.Background(), adminPrincipal, lateEvening, "2020-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2020-01-01", window.Day)
}

func TestSelectWindowReportsTechnicalError(t *testing.T) {
	movements := newFakeMovements()
	movements.err = errors.New("connection refused")
	m := &fakeMetrics{}
	svc := NewScheduleService(movements, nil, time.UTC, "hola", m, zerolog.Nop())

	window, entries, err := svc.SelectWindow(context.Background(), operatorPrincipal, lateEvening, "")
	require.ErrorIs(t, err, ErrTechnical)
	assert.Nil(t, entries)
	assert.Equal(t, "2024-06-11", window.Day)
	assert.Equal(t, []string{"window"}, m.dbErrors)
}

func TestParseClockAndDate(t *testing.T) {
	clock, ok := parseClock("7:05")
	require.True(t, ok)
	assert.Equal(t, "07:05:00", clock)

	clock, ok = parseClock("21.30")
	require.True(t, ok)
	assert.Equal(t, "21:30:00", clock)

	_, ok = parseClock("25:00")
	assert.False(t, ok)

	day, ok := parseCivilDate("10-06-2024")
	require.True(t, ok)
	assert.Equal(t, "2024-06-10", day.Format(model.DateLayout))

	_, ok = parseCivilDate("2024/06/10")
	assert.False(t, ok)
}
