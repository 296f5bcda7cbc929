package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/maktab-bot/internal/models"
)

// MonthlyResultRepository persists monthly summary records. Duplicates on
// (name, subject, date) are suppressed; the monthly table never purges.
type MonthlyResultRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewMonthlyResultRepository creates a new monthly result repository.
func NewMonthlyResultRepository(db *sqlx.DB, logger *zap.Logger) *MonthlyResultRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonthlyResultRepository{db: db, logger: logger}
}

// Save inserts one record per subject cell for the given date, skipping
// already-stored triples.
func (r *MonthlyResultRepository) Save(ctx context.Context, name string, cells []models.SubjectCell, date string) error {
	if len(cells) == 0 {
		return nil
	}
	nameClean := models.NormalizeName(name)

	for _, cell := range cells {
		subjectClean := models.NormalizeSubject(cell.Subject)

		var count int
		err := r.db.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM results WHERE name = ? AND subject = ? AND date = ?`,
			nameClean, subjectClean, date)
		if err != nil {
			return fmt.Errorf("check monthly duplicate: %w", err)
		}
		if count > 0 {
			r.logger.Debug("monthly record already stored",
				zap.String("student", nameClean),
				zap.String("subject", subjectClean),
				zap.String("date", date))
			continue
		}

		_, err = r.db.ExecContext(ctx,
			`INSERT INTO results (name, subject, score, date) VALUES (?, ?, ?, ?)`,
			nameClean, subjectClean, cell.Mark, date)
		if err != nil {
			return fmt.Errorf("insert monthly record: %w", err)
		}
	}
	return nil
}

// All returns the student's full monthly history ascending by date.
func (r *MonthlyResultRepository) All(ctx context.Context, name string) ([]models.ResultRow, error) {
	var rows []models.ResultRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT subject, score AS mark, date FROM results WHERE name = ? ORDER BY date ASC`,
		models.NormalizeName(name))
	if err != nil {
		return nil, fmt.Errorf("list monthly results: %w", err)
	}
	return rows, nil
}
