package service

import (
	"context"
	"io"

	"github.com/noah-isme/maktab-bot/internal/models"
)

type sheetStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
}

type bindingStore interface {
	Load() (map[string]string, error)
	Bind(chatID, phone string) error
	Phone(chatID string) (string, bool, error)
}

type weeklySource interface {
	Load() (*models.WeeklyTable, error)
}

type monthlySource interface {
	Load() ([]models.MonthlyRow, error)
}

type weeklyResultStore interface {
	Save(ctx context.Context, name string, cells []models.SubjectCell, date string) error
	CurrentMonth(ctx context.Context, name string) ([]models.ResultRow, error)
}

type monthlyResultStore interface {
	Save(ctx context.Context, name string, cells []models.SubjectCell, date string) error
	All(ctx context.Context, name string) ([]models.ResultRow, error)
}

// MessageSender delivers a text message to a chat. Implemented by the
// Telegram transport; faked in tests.
type MessageSender interface {
	SendText(chatID, text string) error
}
