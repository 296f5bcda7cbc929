package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/maktab-bot/internal/metrics"
	"github.com/noah-isme/maktab-bot/internal/models"
	"github.com/noah-isme/maktab-bot/pkg/export"
	appErrors "github.com/noah-isme/maktab-bot/pkg/errors"
)

// ErrNoResults signals that a student has no stored history of the
// requested kind.
var ErrNoResults = appErrors.New(appErrors.CodeNotFound, "no stored results for student")

type progressRenderer interface {
	Render(studentName string, rows []export.DateRow, typ export.ReportType) ([]byte, error)
}

type reportStorage interface {
	Save(filename string, data []byte) (string, error)
	Path(filename string) string
}

// ProgressService turns stored result history into PDF progress reports.
type ProgressService struct {
	weeklyResults  weeklyResultStore
	monthlyResults monthlyResultStore
	pdf            progressRenderer
	files          reportStorage
	logger         *zap.Logger
	metrics        *metrics.Metrics
}

// NewProgressService constructs ProgressService.
func NewProgressService(weeklyResults weeklyResultStore, monthlyResults monthlyResultStore,
	pdf progressRenderer, files reportStorage, logger *zap.Logger, m *metrics.Metrics) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{
		weeklyResults:  weeklyResults,
		monthlyResults: monthlyResults,
		pdf:            pdf,
		files:          files,
		logger:         logger,
		metrics:        m,
	}
}

// WeeklyReport renders the student's weekly history for the current
// calendar month and returns the generated file's path.
func (s *ProgressService) WeeklyReport(ctx context.Context, studentName string) (string, error) {
	rows, err := s.weeklyResults.CurrentMonth(ctx, studentName)
	if err != nil {
		return "", err
	}
	return s.render(studentName, rows, export.ReportWeekly)
}

// MonthlyReport renders the student's full monthly history and returns the
// generated file's path.
func (s *ProgressService) MonthlyReport(ctx context.Context, studentName string) (string, error) {
	rows, err := s.monthlyResults.All(ctx, studentName)
	if err != nil {
		return "", err
	}
	return s.render(studentName, rows, export.ReportMonthly)
}

func (s *ProgressService) render(studentName string, rows []models.ResultRow, typ export.ReportType) (string, error) {
	if len(rows) == 0 {
		return "", ErrNoResults
	}

	data, err := s.pdf.Render(studentName, bucketByDate(rows), typ)
	if err != nil {
		return "", err
	}

	filename := export.FileName(studentName, typ)
	if _, err := s.files.Save(filename, data); err != nil {
		return "", err
	}
	s.metrics.ReportRendered()
	s.logger.Info("progress report rendered",
		zap.String("student", studentName),
		zap.String("type", string(typ)),
		zap.String("file", filename))
	return s.files.Path(filename), nil
}

// bucketByDate collapses (subject, mark, date) triples into one row per
// date, ascending, ready for the tabular renderer.
func bucketByDate(rows []models.ResultRow) []export.DateRow {
	byDate := map[string]map[string]string{}
	for _, row := range rows {
		if byDate[row.Date] == nil {
			byDate[row.Date] = map[string]string{}
		}
		byDate[row.Date][models.NormalizeSubject(row.Subject)] = row.Mark
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	result := make([]export.DateRow, 0, len(dates))
	for _, date := range dates {
		result = append(result, export.DateRow{Date: date, Subjects: byDate[date]})
	}
	return result
}
