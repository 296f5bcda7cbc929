package export

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	appErrors "github.com/noah-isme/maktab-bot/pkg/errors"
)

// ReportType selects the column layout of a progress report.
type ReportType string

const (
	ReportWeekly  ReportType = "weekly"
	ReportMonthly ReportType = "monthly"
)

// DateRow is one report row: all stored subjects for a single date.
// Subject keys are normalized (lower-cased, trimmed).
type DateRow struct {
	Date     string
	Subjects map[string]string
}

const fontName = "DejaVu"

// ProgressPDF renders per-student progress tables. Subject names are
// Cyrillic, so the built-in core fonts will not do; a UTF-8 TTF is loaded
// from disk.
type ProgressPDF struct {
	fontPath string
}

// NewProgressPDF constructs a renderer using the given TTF font file.
func NewProgressPDF(fontPath string) *ProgressPDF {
	return &ProgressPDF{fontPath: fontPath}
}

// Render produces the PDF bytes for a student's date-ordered rows. A
// missing font file is a RENDER error: fatal for this request, harmless to
// the rest of the dispatch loop.
func (e *ProgressPDF) Render(studentName string, rows []DateRow, typ ReportType) ([]byte, error) {
	if _, err := os.Stat(e.fontPath); err != nil {
		return nil, appErrors.Wrap(err, appErrors.CodeRender,
			fmt.Sprintf("report font not found: %s", e.fontPath))
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddUTF8Font(fontName, "", e.fontPath)
	pdf.AddUTF8Font(fontName, "B", e.fontPath)
	pdf.AddPage()

	title := "Еженедельный прогресс ученика"
	if typ == ReportMonthly {
		title = "Ежемесячный прогресс ученика"
	}
	pdf.SetFont(fontName, "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 10, "Имя: "+studentName, "", 1, "", false, 0, "")
	pdf.Ln(5)

	if len(rows) == 0 {
		pdf.SetFont(fontName, "", 12)
		pdf.CellFormat(0, 10, "Нет данных для отображения.", "", 1, "", false, 0, "")
	} else {
		e.renderTable(pdf, rows, typ)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, appErrors.Wrap(err, appErrors.CodeRender, "render progress pdf")
	}
	return buf.Bytes(), nil
}

func (e *ProgressPDF) renderTable(pdf *gofpdf.Fpdf, rows []DateRow, typ ReportType) {
	headers := []string{"Дата", "Таджикский язык", "Биология", "Физика", "Химия", "Общий процент"}
	widths := []float64{30, 42, 25, 25, 25, 37}
	if typ == ReportMonthly {
		headers = []string{"Дата", "Таджикский язык", "Биология", "Химия", "Физика", "Общий балл", "Процент"}
		widths = []float64{27, 42, 25, 23, 23, 32, 21}
	}

	pdf.SetFont(fontName, "B", 11)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 10, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontName, "", 11)
	for _, row := range rows {
		cells := rowCells(row, typ)
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 10, cell, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// rowCells maps a date row onto the fixed column set of the report type.
// Missing subjects render as empty cells.
func rowCells(row DateRow, typ ReportType) []string {
	if typ == ReportMonthly {
		return []string{
			displayDate(row.Date),
			row.Subjects["таджикский язык"],
			row.Subjects["биология"],
			row.Subjects["химия"],
			row.Subjects["физика"],
			strings.TrimSpace(row.Subjects["общий балл"]),
			fmtCell(row.Subjects["общий процент"]),
		}
	}
	return []string{
		displayDate(row.Date),
		fmtCell(row.Subjects["таджикский язык"]),
		fmtCell(row.Subjects["биология"]),
		fmtCell(row.Subjects["физика"]),
		fmtCell(row.Subjects["химия"]),
		fmtCell(row.Subjects["общий процент"]),
	}
}

// fmtCell renders percent-like values: fractions (≤1) scale to 0–100,
// larger values round as-is, anything non-numeric passes through trimmed.
func fmtCell(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return trimmed
	}
	if v <= 1 {
		return fmt.Sprintf("%d%%", int(math.Round(v*100)))
	}
	return fmt.Sprintf("%d%%", int(math.Round(v)))
}

func displayDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("02.01.2006")
}

// FileName derives the output file name from the sanitized student name
// plus the report type suffix.
func FileName(studentName string, typ ReportType) string {
	var b strings.Builder
	for _, r := range studentName {
		switch {
		case r >= '0' && r <= '9', r == ' ', r == '_':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= 'а' && r <= 'я' || r >= 'А' && r <= 'Я' || r == 'ё' || r == 'Ё':
			b.WriteRune(r)
		}
	}
	safe := strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
	if safe == "" {
		safe = "student"
	}
	return fmt.Sprintf("%s_progress_%s.pdf", safe, typ)
}
