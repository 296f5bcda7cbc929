package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/maktab-bot/internal/models"
)

// WeeklyResultRepository persists weekly score records.
//
// Retention policy: duplicate (name, subject, date) triples are suppressed,
// and the whole table is purged when an insert's calendar month differs
// from the latest stored month, so the table only ever holds the current
// month's history.
type WeeklyResultRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewWeeklyResultRepository creates a new weekly result repository.
func NewWeeklyResultRepository(db *sqlx.DB, logger *zap.Logger) *WeeklyResultRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeeklyResultRepository{db: db, logger: logger}
}

// Save inserts one record per subject cell for the given date. Names and
// subjects are normalized before writing. Each insert commits
// independently; re-running a partially interrupted save is safe because
// duplicates are skipped.
func (r *WeeklyResultRepository) Save(ctx context.Context, name string, cells []models.SubjectCell, date string) error {
	if len(cells) == 0 {
		return nil
	}
	nameClean := models.NormalizeName(name)

	if err := r.purgeOnMonthRollover(ctx, date); err != nil {
		return err
	}

	for _, cell := range cells {
		subjectClean := models.NormalizeSubject(cell.Subject)

		var count int
		err := r.db.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM weekly_results WHERE student_name = ? AND subject = ? AND date = ?`,
			nameClean, subjectClean, date)
		if err != nil {
			return fmt.Errorf("check weekly duplicate: %w", err)
		}
		if count > 0 {
			r.logger.Debug("weekly record already stored",
				zap.String("student", nameClean),
				zap.String("subject", subjectClean),
				zap.String("date", date))
			continue
		}

		_, err = r.db.ExecContext(ctx,
			`INSERT INTO weekly_results (student_name, subject, mark, date) VALUES (?, ?, ?, ?)`,
			nameClean, subjectClean, cell.Mark, date)
		if err != nil {
			return fmt.Errorf("insert weekly record: %w", err)
		}
	}
	return nil
}

// purgeOnMonthRollover empties the weekly table when the incoming date's
// month differs from the latest stored month. Inserting within the same
// month never purges.
func (r *WeeklyResultRepository) purgeOnMonthRollover(ctx context.Context, date string) error {
	var latest sql.NullString
	err := r.db.GetContext(ctx, &latest, `SELECT MAX(date) FROM weekly_results`)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read latest weekly date: %w", err)
	}
	if !latest.Valid || latest.String == "" {
		return nil
	}
	if monthOf(latest.String) == monthOf(date) {
		return nil
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM weekly_results`)
	if err != nil {
		return fmt.Errorf("purge weekly records: %w", err)
	}
	purged, _ := res.RowsAffected()
	r.logger.Warn("month rollover: purged weekly records",
		zap.String("latest", latest.String),
		zap.String("incoming", date),
		zap.Int64("purged", purged))
	return nil
}

// Latest returns the rows for the single most recent date stored for the
// student, ordered by subject.
func (r *WeeklyResultRepository) Latest(ctx context.Context, name string) ([]models.ResultRow, error) {
	nameClean := models.NormalizeName(name)

	var lastDate sql.NullString
	err := r.db.GetContext(ctx, &lastDate,
		`SELECT MAX(date) FROM weekly_results WHERE student_name = ?`, nameClean)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read latest weekly date: %w", err)
	}
	if !lastDate.Valid || lastDate.String == "" {
		return nil, nil
	}

	var rows []models.ResultRow
	err = r.db.SelectContext(ctx, &rows,
		`SELECT subject, mark, date FROM weekly_results WHERE student_name = ? AND date = ? ORDER BY subject ASC`,
		nameClean, lastDate.String)
	if err != nil {
		return nil, fmt.Errorf("list latest weekly results: %w", err)
	}
	return rows, nil
}

// All returns the student's full weekly history ascending by date.
func (r *WeeklyResultRepository) All(ctx context.Context, name string) ([]models.ResultRow, error) {
	var rows []models.ResultRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT subject, mark, date FROM weekly_results WHERE student_name = ? ORDER BY date ASC`,
		models.NormalizeName(name))
	if err != nil {
		return nil, fmt.Errorf("list weekly results: %w", err)
	}
	return rows, nil
}

// CurrentMonth returns the student's rows dated in the current calendar
// month at query time.
func (r *WeeklyResultRepository) CurrentMonth(ctx context.Context, name string) ([]models.ResultRow, error) {
	month := time.Now().Format("2006-01")
	var rows []models.ResultRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT subject, mark, date FROM weekly_results WHERE student_name = ? AND strftime('%Y-%m', date) = ? ORDER BY date ASC`,
		models.NormalizeName(name), month)
	if err != nil {
		return nil, fmt.Errorf("list current month weekly results: %w", err)
	}
	return rows, nil
}

// monthOf extracts the YYYY-MM prefix of an ISO date string.
func monthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
