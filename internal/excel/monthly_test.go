package excel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeMonthlySheet(t *testing.T, students []map[int]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	// banner rows above the data block, as in the school's template
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Итоги месяца"))

	for i, cells := range students {
		row := defaultMonthlyLayout.startRow + i + 1 // 1-based sheet row
		for col, val := range cells {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, val))
		}
	}

	path := filepath.Join(t.TempDir(), "monthly.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestMonthlyLoadFixedOffsets(t *testing.T) {
	path := writeMonthlySheet(t, []map[int]interface{}{
		{1: "Ali Karimov", 4: 70, 7: 140, 10: 160, 13: 95, 14: 465, 15: 93},
		{1: "", 4: 10}, // empty name is dropped
		{1: "Zarina Rahimova", 4: 65, 7: 120, 10: 150, 13: 90, 14: 425, 15: 85},
	})

	rows, err := NewMonthlyLoader(path).Load()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	ali := rows[0]
	assert.Equal(t, "Ali Karimov", ali.Name)
	assert.Equal(t, "70", ali.Language)
	assert.Equal(t, "140", ali.Biology)
	assert.Equal(t, "160", ali.Chemistry)
	assert.Equal(t, "95", ali.Physics)
	assert.Equal(t, "465", ali.TotalScore)
	assert.Equal(t, "93", ali.TotalPercent)

	assert.Equal(t, "Zarina Rahimova", rows[1].Name)
}

func TestMonthlyLoadIgnoresBannerRows(t *testing.T) {
	// only banner content above the data block: nothing to load
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "Школа №5"))
	path := filepath.Join(t.TempDir(), "monthly.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := NewMonthlyLoader(path).Load()
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMonthlyLoadMissingFileIsEmpty(t *testing.T) {
	rows, err := NewMonthlyLoader(filepath.Join(t.TempDir(), "absent.xlsx")).Load()
	require.NoError(t, err)
	assert.Empty(t, rows)
}
