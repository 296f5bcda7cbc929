package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/maktab-bot/internal/metrics"
	"github.com/noah-isme/maktab-bot/internal/models"
)

// BroadcastService pushes formatted results to every bound chat. Both
// batch paths are best-effort: a per-recipient failure is logged, counted
// as a skip, and the loop moves on so one unreachable parent never aborts
// the rest of the school.
type BroadcastService struct {
	bindings       bindingStore
	weekly         weeklySource
	monthly        monthlySource
	weeklyResults  weeklyResultStore
	sender         MessageSender
	logger         *zap.Logger
	metrics        *metrics.Metrics
}

// NewBroadcastService constructs BroadcastService.
func NewBroadcastService(bindings bindingStore, weekly weeklySource, monthly monthlySource,
	weeklyResults weeklyResultStore, sender MessageSender, logger *zap.Logger, m *metrics.Metrics) *BroadcastService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BroadcastService{
		bindings:      bindings,
		weekly:        weekly,
		monthly:       monthly,
		weeklyResults: weeklyResults,
		sender:        sender,
		logger:        logger,
		metrics:       m,
	}
}

// Weekly re-reads the current weekly sheet, persists each matched
// student's scores dated today, and sends the formatted summary to every
// bound chat. Returns the number of messages delivered.
func (s *BroadcastService) Weekly(ctx context.Context) (int, error) {
	bindings, err := s.bindings.Load()
	if err != nil {
		return 0, err
	}
	table, err := s.weekly.Load()
	if err != nil {
		return 0, err
	}

	date := time.Now().Format(models.DateLayout)
	sent := 0
	for chatID, phone := range bindings {
		rows := matchRows(table, phone)
		if len(rows) == 0 {
			s.logger.Debug("no weekly rows for chat", zap.String("chat_id", chatID))
			s.metrics.BroadcastSkipped()
			continue
		}

		for _, row := range rows {
			if err := s.weeklyResults.Save(ctx, row.Name, row.Cells, date); err != nil {
				s.logger.Warn("broadcast: weekly row not persisted",
					zap.String("student", row.Name), zap.Error(err))
			}

			text := FormatWeekly(row.Name, row.Cells)
			if err := s.sender.SendText(chatID, text); err != nil {
				s.logger.Warn("broadcast: send failed",
					zap.String("chat_id", chatID),
					zap.String("student", row.Name),
					zap.Error(err))
				s.metrics.DeliveryError()
				s.metrics.BroadcastSkipped()
				continue
			}
			sent++
			s.metrics.BroadcastSent()
		}
	}

	s.logger.Info("weekly broadcast finished", zap.Int("sent", sent))
	return sent, nil
}

// MonthlyReport sends the monthly summary to the chat of every student in
// the monthly sheet that resolves to a binding. Returns the delivered count.
func (s *BroadcastService) MonthlyReport(ctx context.Context) (int, error) {
	monthlyRows, err := s.monthly.Load()
	if err != nil {
		return 0, err
	}
	table, err := s.weekly.Load()
	if err != nil {
		return 0, err
	}
	bindings, err := s.bindings.Load()
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, row := range monthlyRows {
		chatID, ok := FindChat(row.Name, bindings, table.Rows)
		if !ok {
			s.logger.Debug("monthly report: no chat for student", zap.String("student", row.Name))
			s.metrics.BroadcastSkipped()
			continue
		}

		if err := s.sender.SendText(chatID, FormatMonthly(row.Name, row)); err != nil {
			s.logger.Warn("monthly report: send failed",
				zap.String("chat_id", chatID),
				zap.String("student", row.Name),
				zap.Error(err))
			s.metrics.DeliveryError()
			s.metrics.BroadcastSkipped()
			continue
		}
		sent++
		s.metrics.BroadcastSent()
	}

	s.logger.Info("monthly report finished", zap.Int("sent", sent))
	return sent, nil
}

func matchRows(table *models.WeeklyTable, phone string) []models.WeeklyRow {
	if table == nil || !table.HasPhones {
		return nil
	}
	phoneClean := models.NormalizePhone(phone)
	var rows []models.WeeklyRow
	for _, row := range table.Rows {
		if row.Phone == phoneClean {
			rows = append(rows, row)
		}
	}
	return rows
}
