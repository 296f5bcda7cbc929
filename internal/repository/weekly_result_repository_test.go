package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/maktab-bot/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func maxDateRows(date interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"MAX(date)"}).AddRow(date)
}

func TestWeeklySaveInsertsNormalized(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWeeklyResultRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(date) FROM weekly_results")).
		WillReturnRows(maxDateRows(nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM weekly_results WHERE student_name = ? AND subject = ? AND date = ?")).
		WithArgs("ali karimov", "химия", "2026-08-16").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weekly_results (student_name, subject, mark, date) VALUES (?, ?, ?, ?)")).
		WithArgs("ali karimov", "химия", "0.92", "2026-08-16").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Save(context.Background(), " Ali Karimov ",
		[]models.SubjectCell{{Subject: " Химия ", Mark: "0.92"}}, "2026-08-16")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklySaveSkipsDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWeeklyResultRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(date) FROM weekly_results")).
		WillReturnRows(maxDateRows("2026-08-16"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("ali karimov", "химия", "2026-08-16").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	// no INSERT expected: the duplicate is a logged no-op

	err := repo.Save(context.Background(), "Ali Karimov",
		[]models.SubjectCell{{Subject: "Химия", Mark: "0.92"}}, "2026-08-16")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklySavePurgesOnMonthRollover(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWeeklyResultRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(date) FROM weekly_results")).
		WillReturnRows(maxDateRows("2026-07-26"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM weekly_results")).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("ali karimov", "химия", "2026-08-02").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weekly_results")).
		WithArgs("ali karimov", "химия", "0.92", "2026-08-02").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Save(context.Background(), "Ali Karimov",
		[]models.SubjectCell{{Subject: "Химия", Mark: "0.92"}}, "2026-08-02")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklySaveSameMonthNoPurge(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWeeklyResultRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(date) FROM weekly_results")).
		WillReturnRows(maxDateRows("2026-08-09"))
	// no DELETE expected
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("ali karimov", "химия", "2026-08-16").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weekly_results")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Save(context.Background(), "Ali Karimov",
		[]models.SubjectCell{{Subject: "Химия", Mark: "0.92"}}, "2026-08-16")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyLatest(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWeeklyResultRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(date) FROM weekly_results WHERE student_name = ?")).
		WithArgs("ali karimov").
		WillReturnRows(maxDateRows("2026-08-16"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT subject, mark, date FROM weekly_results WHERE student_name = ? AND date = ? ORDER BY subject ASC")).
		WithArgs("ali karimov", "2026-08-16").
		WillReturnRows(sqlmock.NewRows([]string{"subject", "mark", "date"}).
			AddRow("физика", "0.8", "2026-08-16").
			AddRow("химия", "0.92", "2026-08-16"))

	rows, err := repo.Latest(context.Background(), "Ali Karimov")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "физика", rows[0].Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyLatestEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWeeklyResultRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(date) FROM weekly_results WHERE student_name = ?")).
		WithArgs("nobody").
		WillReturnRows(maxDateRows(nil))

	rows, err := repo.Latest(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyAll(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWeeklyResultRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT subject, mark, date FROM weekly_results WHERE student_name = ? ORDER BY date ASC")).
		WithArgs("ali karimov").
		WillReturnRows(sqlmock.NewRows([]string{"subject", "mark", "date"}).
			AddRow("химия", "0.8", "2026-08-09").
			AddRow("химия", "0.92", "2026-08-16"))

	rows, err := repo.All(context.Background(), "Ali Karimov")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-08-09", rows[0].Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyCurrentMonth(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWeeklyResultRepository(db, zap.NewNop())

	month := time.Now().Format("2006-01")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT subject, mark, date FROM weekly_results WHERE student_name = ? AND strftime('%Y-%m', date) = ? ORDER BY date ASC")).
		WithArgs("ali karimov", month).
		WillReturnRows(sqlmock.NewRows([]string{"subject", "mark", "date"}).
			AddRow("химия", "0.92", month+"-16"))

	rows, err := repo.CurrentMonth(context.Background(), "Ali Karimov")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "химия", rows[0].Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyCurrentMonthEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWeeklyResultRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta("strftime('%Y-%m', date)")).
		WithArgs("nobody", time.Now().Format("2006-01")).
		WillReturnRows(sqlmock.NewRows([]string{"subject", "mark", "date"}))

	rows, err := repo.CurrentMonth(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
