package report

import (
	"fmt"
	"io"
	"strconv"

	"modpanel/models"

	"github.com/go-pdf/fpdf"
)

const (
	recordsPerPage = 2
	lineHeight     = 6.0
	labelWidth     = 45.0
	dateLayout     = "02/01/2006 15:04"
)

// Render writes the report as a PDF document.
func Render(w io.Writer, r *Report) error {
	pdf := build(r, true)
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func build(r *Report, compress bool) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetModificationDate(r.GeneratedAt)
	pdf.SetAutoPageBreak(true, 15)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Reporte de sanciones - "+r.Username), false)
	pdf.SetCreator("modpanel", false)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("Página %d", pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	writeHeader(pdf, tr, r)
	writeSummary(pdf, tr, r.Summary)

	for i, ban := range r.Entries {
		if i > 0 && i%recordsPerPage == 0 {
			pdf.AddPage()
		}
		writeEntry(pdf, tr, r, i+1, ban)
	}
	return pdf
}

func writeHeader(pdf *fpdf.Fpdf, tr func(string) string, r *Report) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(145, 70, 255)
	pdf.CellFormat(0, 10, tr("Reporte de sanciones"), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, lineHeight, tr("Usuario: "+r.Username), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, tr(fmt.Sprintf("Canal: %s (%s)", r.ChannelName, r.Streamer)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, tr("Generado: "+r.GeneratedAt.Format(dateLayout)), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func writeSummary(pdf *fpdf.Fpdf, tr func(string) string, s Summary) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr("Resumen"), "", 1, "L", false, 0, "")

	rows := [][2]string{
		{"Total de infracciones", strconv.Itoa(s.Total)},
		{"Sanciones activas", strconv.Itoa(s.Active)},
		{"Sanciones cumplidas", strconv.Itoa(s.Completed)},
		{"Reincidente", yesNo(s.RepeatOffender)},
	}

	pdf.SetFillColor(240, 236, 250)
	for i, row := range rows {
		fill := i%2 == 0
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(70, 7, tr(row[0]), "1", 0, "L", fill, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(40, 7, tr(row[1]), "1", 1, "C", fill, 0, "")
	}
	pdf.Ln(6)
}

func writeEntry(pdf *fpdf.Fpdf, tr func(string) string, r *Report, n int, b models.Ban) {
	loc := r.GeneratedAt.Location()
	rows := [][2]string{
		{"Fecha", b.BannedAt.In(loc).Format(dateLayout)},
		{"Estado", statusLabel(b)},
	}
	if b.UnbanAt != nil {
		rows = append(rows, [2]string{"Fecha de desbaneo", b.UnbanAt.In(loc).Format(dateLayout)})
	}
	if b.Moderator != "" {
		rows = append(rows, [2]string{"Moderador", b.Moderator})
	}

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+entryHeight(pdf, tr, b, len(rows)) > pageHeight-bottom {
		pdf.AddPage()
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(145, 70, 255)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Sanción #%d", n)), "", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(labelWidth, lineHeight, tr(row[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, lineHeight, tr(row[1]), "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, lineHeight, tr("Motivo:"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, lineHeight, tr(b.Reason), "", "L", false)

	if b.Notes != "" {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, lineHeight, tr("Notas adicionales:"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, lineHeight, tr(b.Notes), "", "L", false)
	}
	pdf.Ln(6)
}

// entryHeight estimates the vertical space writeEntry needs.
func entryHeight(pdf *fpdf.Fpdf, tr func(string) string, b models.Ban, rows int) float64 {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageWidth - left - right

	pdf.SetFont("Helvetica", "", 10)
	lines := len(pdf.SplitLines([]byte(tr(b.Reason)), width))
	h := 8 + float64(rows+1+lines)*lineHeight + 6
	if b.Notes != "" {
		h += float64(1+len(pdf.SplitLines([]byte(tr(b.Notes)), width))) * lineHeight
	}
	return h
}

func yesNo(v bool) string {
	if v {
		return "Sí"
	}
	return "No"
}
