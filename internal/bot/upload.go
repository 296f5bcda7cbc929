package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/maktab-bot/internal/service"
)

var uploadLabels = map[service.UploadKind]string{
	service.UploadWeekly:  "еженедельный",
	service.UploadMonthly: "ежемесячный",
}

// handleDocument ingests an admin spreadsheet upload, routed by filename
// keyword.
func (b *Bot) handleDocument(ctx context.Context, log *zap.Logger, msg *tgbotapi.Message) {
	if !b.isAdmin(msg) {
		b.sendPlain(msg.Chat.ID, "⛔ Только админ может загружать файлы.")
		return
	}

	kind := service.ClassifyUpload(msg.Document.FileName)
	if kind == service.UploadUnknown {
		b.sendPlain(msg.Chat.ID,
			"⚠️ Имя файла должно содержать 'week'/'неделя' или 'month'/'месяц'/'итог'.")
		return
	}

	body, err := b.downloadFile(msg.Document.FileID)
	if err != nil {
		log.Error("upload download failed", zap.String("file", msg.Document.FileName), zap.Error(err))
		b.sendPlain(msg.Chat.ID, "❌ Ошибка при загрузке файла.")
		return
	}
	defer body.Close()

	count, err := b.ingest.StoreUpload(ctx, kind, body)
	if err != nil {
		log.Error("upload ingestion failed", zap.String("file", msg.Document.FileName), zap.Error(err))
		b.sendPlain(msg.Chat.ID, userMessage(err))
		return
	}

	log.Info("spreadsheet ingested",
		zap.String("file", msg.Document.FileName),
		zap.String("kind", string(kind)),
		zap.Int("students", count))
	b.sendPlain(msg.Chat.ID, fmt.Sprintf(
		"✅ Файл сохранён как %s. Учеников обработано: %d.", uploadLabels[kind], count))
}

// downloadFile opens a stream over the uploaded document. The caller owns
// the returned body.
func (b *Bot) downloadFile(fileID string) (io.ReadCloser, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}

	resp, err := http.Get(file.Link(b.api.Token))
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	return resp.Body, nil
}
