package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"terminal-portal/internal/model"
	"terminal-portal/internal/repository"
)

// maxRows bounds one report; a day at the terminal stays well below it.
const maxRows = 2000

var ErrInvalidDate = errors.New("invalid report date")

type historySource interface {
	ListVerifications(ctx context.Context, filter repository.HistoryFilter) ([]model.VerificationRecord, int64, error)
	ListExtras(ctx context.Context, filter repository.HistoryFilter) ([]model.ExtraTripRecord, int64, error)
}

type Service struct {
	history  historySource
	location *time.Location
	now      func() time.Time
}

func NewService(history historySource, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{history: history, location: location, now: time.Now}
}

// VerificationReport renders the check-ins and extra trips of one civil day
// as a PDF. It returns the document and a suggested file name.
func (s *Service) VerificationReport(ctx context.Context, day string) ([]byte, string, error) {
	if day == "" {
		day = s.now().In(s.location).Format(model.DateLayout)
	}
	if _, err := time.Parse(model.DateLayout, day); err != nil {
		return nil, "", ErrInvalidDate
	}

	filter := repository.HistoryFilter{Fecha: day, Limit: maxRows}
	verifications, _, err := s.history.ListVerifications(ctx, filter)
	if err != nil {
		return nil, "", fmt.Errorf("load verifications: %w", err)
	}
	extras, _, err := s.history.ListExtras(ctx, filter)
	if err != nil {
		return nil, "", fmt.Errorf("load extras: %w", err)
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Verificaciones "+day), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Terminal de Buses - Control de andenes"))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Fecha: %s    Generado: %s", day, s.now().In(s.location).Format("2006-01-02 15:04"))))
	pdf.Ln(10)

	writeSummary(pdf, tr, verifications, extras)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr("Verificaciones"))
	pdf.Ln(8)
	verificationTable(pdf, tr, verifications)

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr("Recorridos extra"))
	pdf.Ln(8)
	extraTable(pdf, tr, extras)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("verificaciones_%s.pdf", day), nil
}

func writeSummary(pdf *gofpdf.Fpdf, tr func(string) string, verifications []model.VerificationRecord, extras []model.ExtraTripRecord) {
	counts := map[model.VerificationOutcome]int{}
	for _, v := range verifications {
		counts[v.Resultado]++
	}
	unknown := 0
	for _, e := range extras {
		if !e.EsConocido {
			unknown++
		}
	}

	pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		fmt.Sprintf("Verificaciones: %d (aceptadas %d, advertencias %d, rechazadas %d)",
			len(verifications),
			counts[model.VerificationAccepted],
			counts[model.VerificationWarning],
			counts[model.VerificationRejected]),
		fmt.Sprintf("Recorridos extra: %d (no registrados %d)", len(extras), unknown),
	}
	for _, line := range lines {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(4)
}

func verificationTable(pdf *gofpdf.Fpdf, tr func(string) string, rows []model.VerificationRecord) {
	widths := []float64{18, 22, 20, 28, 22, 22, 30, 20, 95}
	header := []string{"Hora", "Tipo", "Recorrido", "Patente", "Andén", "Programado", "Resultado", "Usuario", "Observaciones"}
	tableHeader(pdf, tr, widths, header)

	pdf.SetFont("Helvetica", "", 9)
	if len(rows) == 0 {
		pdf.CellFormat(sum(widths), 6, tr("Sin verificaciones registradas."), "1", 1, "C", false, 0, "")
		return
	}
	for _, r := range rows {
		cells := []string{
			shortClock(r.HoraManual),
			string(r.TipoRecorrido),
			fmt.Sprintf("%d", r.RecorridoID),
			r.PatenteIngresada,
			dash(r.AndenIngresado),
			dash(r.AndenProgramado),
			string(r.Resultado),
			fmt.Sprintf("%d", r.UsuarioID),
			clip(r.Observaciones, 60),
		}
		tableRow(pdf, tr, widths, cells)
	}
}

func extraTable(pdf *gofpdf.Fpdf, tr func(string) string, rows []model.ExtraTripRecord) {
	widths := []float64{18, 22, 28, 55, 45, 18, 22, 20, 49}
	header := []string{"Hora", "Tipo", "Patente", "Empresa", "Lugar", "Andén", "Flota", "Usuario", "Observación"}
	tableHeader(pdf, tr, widths, header)

	pdf.SetFont("Helvetica", "", 9)
	if len(rows) == 0 {
		pdf.CellFormat(sum(widths), 6, tr("Sin recorridos extra registrados."), "1", 1, "C", false, 0, "")
		return
	}
	for _, r := range rows {
		fleet := "No"
		if r.EsConocido {
			fleet = "Sí"
		}
		cells := []string{
			shortClock(r.Hora),
			string(r.TipoRecorrido),
			r.Patente,
			clip(r.Empresa, 32),
			clip(r.Lugar, 26),
			r.Anden,
			fleet,
			fmt.Sprintf("%d", r.UsuarioID),
			clip(r.Observacion, 30),
		}
		tableRow(pdf, tr, widths, cells)
	}
}

func tableHeader(pdf *gofpdf.Fpdf, tr func(string) string, widths []float64, header []string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(225, 225, 225)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func tableRow(pdf *gofpdf.Fpdf, tr func(string) string, widths []float64, cells []string) {
	for i, v := range cells {
		pdf.CellFormat(widths[i], 6, tr(v), "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func shortClock(clock string) string {
	if len(clock) >= 5 {
		return clock[:5]
	}
	return clock
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
