package excel

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/maktab-bot/internal/models"
)

// monthlyLayout pins the fixed geometry of the monthly summary sheet.
// Layout changes are a one-place edit here.
type monthlyLayout struct {
	startRow     int // first data row, 0-based
	name         int
	language     int
	biology      int
	chemistry    int
	physics      int
	totalScore   int
	totalPercent int
}

var defaultMonthlyLayout = monthlyLayout{
	startRow:     4,
	name:         1,
	language:     4,
	biology:      7,
	chemistry:    10,
	physics:      13,
	totalScore:   14,
	totalPercent: 15,
}

// MonthlyLoader parses the admin-uploaded monthly summary sheet at fixed
// row/column offsets.
type MonthlyLoader struct {
	path   string
	layout monthlyLayout
}

// NewMonthlyLoader returns a loader bound to the well-known monthly file path.
func NewMonthlyLoader(path string) *MonthlyLoader {
	return &MonthlyLoader{path: path, layout: defaultMonthlyLayout}
}

// Load reads the monthly sheet. A missing file yields an empty result, not
// an error: the monthly summary is optional enrichment, unlike the weekly
// sheet which doubles as the identity source.
func (l *MonthlyLoader) Load() ([]models.MonthlyRow, error) {
	if _, err := os.Stat(l.path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat monthly sheet: %w", err)
	}

	file, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("open monthly sheet: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read monthly sheet: %w", err)
	}

	var result []models.MonthlyRow
	for i := l.layout.startRow; i < len(rows); i++ {
		row := rows[i]
		name := strings.TrimSpace(cellAt(row, l.layout.name))
		if name == "" {
			continue
		}
		result = append(result, models.MonthlyRow{
			Name:         name,
			Language:     strings.TrimSpace(cellAt(row, l.layout.language)),
			Biology:      strings.TrimSpace(cellAt(row, l.layout.biology)),
			Chemistry:    strings.TrimSpace(cellAt(row, l.layout.chemistry)),
			Physics:      strings.TrimSpace(cellAt(row, l.layout.physics)),
			TotalScore:   strings.TrimSpace(cellAt(row, l.layout.totalScore)),
			TotalPercent: strings.TrimSpace(cellAt(row, l.layout.totalPercent)),
		})
	}

	return result, nil
}
