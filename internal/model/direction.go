package model

import (
	"fmt"
	"strings"
)

// Direction tells arrivals from departures. It is fixed by the table a
// movement lives in and never changes after creation.
type Direction string

const (
	DirectionArrival   Direction = "llegada"
	DirectionDeparture Direction = "salida"
)

const (
	tableArrivals   = "import_llegadas"
	tableDepartures = "import_salidas"
)

func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "llegada", "llegadas":
		return DirectionArrival, nil
	case "salida", "salidas":
		return DirectionDeparture, nil
	default:
		return "", fmt.Errorf("unknown direction %q", raw)
	}
}

// Table is the only place a movement table name is produced.
func (d Direction) Table() (string, error) {
	switch d {
	case DirectionArrival:
		return tableArrivals, nil
	case DirectionDeparture:
		return tableDepartures, nil
	default:
		return "", fmt.Errorf("unknown direction %q", string(d))
	}
}

func (d Direction) Valid() bool {
	_, err := d.Table()
	return err == nil
}

// Directions lists both variants in display order.
func Directions() []Direction {
	return []Direction{DirectionArrival, DirectionDeparture}
}
