package model

// RecorridoEntry is the merged, read-only projection shown on the boards.
// It is never persisted.
type RecorridoEntry struct {
	Movement
	IsRollover bool `json:"madrugada"`
}

type BoardRow struct {
	ID       int64  `json:"id"`
	Fecha    string `json:"fecha"`
	Hora     string `json:"hora"`
	Empresa  string `json:"empresa"`
	Lugar    string `json:"lugar"`
	Anden    string `json:"anden"`
	Estado   string `json:"estado"`
	Rollover bool   `json:"madrugada"`
}

func NewBoardRow(e RecorridoEntry) BoardRow {
	anden := e.AndenText()
	if anden == "" {
		anden = "?"
	}
	estado := e.Estado
	if estado == "" {
		estado = MovementStatusScheduled
	}
	return BoardRow{
		ID:       e.ID,
		Fecha:    e.Fecha,
		Hora:     e.ShortTime(),
		Empresa:  e.Empresa,
		Lugar:    e.Lugar,
		Anden:    anden,
		Estado:   estado,
		Rollover: e.IsRollover,
	}
}

// MessageSeverity mirrors the flash categories of the portal.
type MessageSeverity string

const (
	SeveritySuccess MessageSeverity = "success"
	SeverityWarning MessageSeverity = "warning"
	SeverityDanger  MessageSeverity = "danger"
	SeverityInfo    MessageSeverity = "info"
)
