package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePlate(t *testing.T) {
	cases := map[string]string{
		"AB-1234":    "AB1234",
		" ab-12-34 ": "AB1234",
		"ab 1234":    "AB1234",
		"AB1234":     "AB1234",
		"":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePlate(in), "input %q", in)
	}
}

func TestParseDirection(t *testing.T) {
	for _, raw := range []string{"llegada", "LLEGADAS", " llegadas "} {
		d, err := ParseDirection(raw)
		require.NoError(t, err)
		assert.Equal(t, DirectionArrival, d)
	}
	for _, raw := range []string{"salida", "Salidas"} {
		d, err := ParseDirection(raw)
		require.NoError(t, err)
		assert.Equal(t, DirectionDeparture, d)
	}

	_, err := ParseDirection("import_llegadas; DROP TABLE usuarios")
	require.Error(t, err)
}

func TestDirectionTable(t *testing.T) {
	table, err := DirectionArrival.Table()
	require.NoError(t, err)
	assert.Equal(t, "import_llegadas", table)

	table, err = DirectionDeparture.Table()
	require.NoError(t, err)
	assert.Equal(t, "import_salidas", table)

	_, err = Direction("usuarios").Table()
	require.Error(t, err)
}

func TestClassifyVerificationPlateFirst(t *testing.T) {
	assert.Equal(t, VerificationAccepted, ClassifyVerification(true, true))
	assert.Equal(t, VerificationWarning, ClassifyVerification(true, false))
	assert.Equal(t, VerificationRejected, ClassifyVerification(false, true))
	assert.Equal(t, VerificationRejected, ClassifyVerification(false, false))
}

func TestMovementAndenText(t *testing.T) {
	three := 3
	assert.Equal(t, "3", Movement{Anden: &three}.AndenText())
	assert.Equal(t, "", Movement{}.AndenText())
}

func TestNewBoardRowFillsPlaceholders(t *testing.T) {
	row := NewBoardRow(RecorridoEntry{Movement: Movement{ID: 1, Hora: "02:30:00"}, IsRollover: true})
	assert.Equal(t, "02:30", row.Hora)
	assert.Equal(t, "?", row.Anden)
	assert.Equal(t, MovementStatusScheduled, row.Estado)
	assert.True(t, row.Rollover)
}
