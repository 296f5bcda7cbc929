package excel

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/maktab-bot/internal/models"
	appErrors "github.com/noah-isme/maktab-bot/pkg/errors"
)

// Column headers the weekly sheet is addressed by.
const (
	weeklyNameHeader  = "Имя ученика"
	weeklyPhoneHeader = "Телефон родителя"
)

// WeeklyLoader parses the admin-uploaded weekly score sheet. Columns are
// located by header, so the sheet may carry any subject set in any order.
type WeeklyLoader struct {
	path string
}

// NewWeeklyLoader returns a loader bound to the well-known weekly file path.
func NewWeeklyLoader(path string) *WeeklyLoader {
	return &WeeklyLoader{path: path}
}

// Load reads the weekly sheet into a table of per-student rows.
//
// A missing file is a MISSING_FILE error: callers must be able to tell
// "admin never uploaded" apart from "student not found". A missing name
// column is a SCHEMA error. A missing phone column is not an error; the
// table is returned with HasPhones=false and phone matching is disabled.
func (l *WeeklyLoader) Load() (*models.WeeklyTable, error) {
	if _, err := os.Stat(l.path); err != nil {
		if os.IsNotExist(err) {
			return nil, appErrors.Wrap(err, appErrors.CodeMissingFile, "weekly sheet not found")
		}
		return nil, fmt.Errorf("stat weekly sheet: %w", err)
	}

	file, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("open weekly sheet: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, appErrors.New(appErrors.CodeSchema, "weekly sheet has no worksheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read weekly sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, appErrors.New(appErrors.CodeSchema, "weekly sheet is empty")
	}

	header := rows[0]
	nameCol, phoneCol := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case weeklyNameHeader:
			nameCol = i
		case weeklyPhoneHeader:
			phoneCol = i
		}
	}
	if nameCol < 0 {
		return nil, appErrors.New(appErrors.CodeSchema,
			fmt.Sprintf("weekly sheet is missing the %q column", weeklyNameHeader))
	}

	table := &models.WeeklyTable{HasPhones: phoneCol >= 0}
	for _, row := range rows[1:] {
		name := strings.TrimSpace(cellAt(row, nameCol))
		if name == "" {
			continue
		}

		wr := models.WeeklyRow{Name: name}
		if phoneCol >= 0 {
			wr.Phone = models.NormalizePhone(cellAt(row, phoneCol))
		}
		for i, col := range header {
			if i == nameCol || i == phoneCol {
				continue
			}
			subject := strings.TrimSpace(col)
			if subject == "" {
				continue
			}
			wr.Cells = append(wr.Cells, models.SubjectCell{
				Subject: subject,
				Mark:    strings.TrimSpace(cellAt(row, i)),
			})
		}
		table.Rows = append(table.Rows, wr)
	}

	return table, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
