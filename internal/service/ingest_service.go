package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/maktab-bot/internal/metrics"
	"github.com/noah-isme/maktab-bot/internal/models"
	appErrors "github.com/noah-isme/maktab-bot/pkg/errors"
)

// UploadKind classifies an admin file upload.
type UploadKind string

const (
	UploadWeekly  UploadKind = "weekly"
	UploadMonthly UploadKind = "monthly"
	UploadUnknown UploadKind = "unknown"
)

// ClassifyUpload routes an uploaded file by filename keyword. The admin
// names files by hand, in either language.
func ClassifyUpload(fileName string) UploadKind {
	name := strings.ToLower(fileName)
	switch {
	case strings.Contains(name, "week") || strings.Contains(name, "неделя"):
		return UploadWeekly
	case strings.Contains(name, "month") || strings.Contains(name, "месяц") || strings.Contains(name, "итог"):
		return UploadMonthly
	default:
		return UploadUnknown
	}
}

// IngestService stores admin-uploaded spreadsheets at their well-known
// paths and persists the parsed rows.
type IngestService struct {
	weeklyPath  string
	monthlyPath string

	files          sheetStorage
	weekly         weeklySource
	monthly        monthlySource
	weeklyResults  weeklyResultStore
	monthlyResults monthlyResultStore

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewIngestService constructs IngestService. Sheet paths must be absolute
// so storage writes land where the loaders read.
func NewIngestService(weeklyPath, monthlyPath string, files sheetStorage,
	weekly weeklySource, monthly monthlySource,
	weeklyResults weeklyResultStore, monthlyResults monthlyResultStore,
	logger *zap.Logger, m *metrics.Metrics) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{
		weeklyPath:     weeklyPath,
		monthlyPath:    monthlyPath,
		files:          files,
		weekly:         weekly,
		monthly:        monthly,
		weeklyResults:  weeklyResults,
		monthlyResults: monthlyResults,
		logger:         logger,
		metrics:        m,
	}
}

// StoreUpload overwrites the spreadsheet for the given kind and ingests its
// rows dated today. Returns the number of students persisted.
//
// Per-row persistence failures are logged and skipped, not propagated: a
// single malformed row must not abort the rest of the sheet, and re-running
// the upload heals any gap via duplicate suppression.
func (s *IngestService) StoreUpload(ctx context.Context, kind UploadKind, src io.Reader) (int, error) {
	var path string
	switch kind {
	case UploadWeekly:
		path = s.weeklyPath
	case UploadMonthly:
		path = s.monthlyPath
	default:
		return 0, appErrors.New(appErrors.CodeValidation, "unknown upload kind")
	}

	if _, err := s.files.SaveStream(path, src); err != nil {
		return 0, fmt.Errorf("store %s sheet: %w", kind, err)
	}
	s.logger.Info("spreadsheet stored", zap.String("kind", string(kind)), zap.String("path", path))

	date := time.Now().Format(models.DateLayout)
	var count int
	var err error
	switch kind {
	case UploadWeekly:
		count, err = s.ingestWeekly(ctx, date)
	case UploadMonthly:
		count, err = s.ingestMonthly(ctx, date)
	}
	if err != nil {
		return 0, err
	}
	s.metrics.UploadIngested(string(kind))
	return count, nil
}

func (s *IngestService) ingestWeekly(ctx context.Context, date string) (int, error) {
	table, err := s.weekly.Load()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, row := range table.Rows {
		if err := s.weeklyResults.Save(ctx, row.Name, row.Cells, date); err != nil {
			s.logger.Warn("weekly row not persisted",
				zap.String("student", row.Name), zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}

func (s *IngestService) ingestMonthly(ctx context.Context, date string) (int, error) {
	rows, err := s.monthly.Load()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, row := range rows {
		if err := s.monthlyResults.Save(ctx, row.Name, row.Cells(), date); err != nil {
			s.logger.Warn("monthly row not persisted",
				zap.String("student", row.Name), zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}
