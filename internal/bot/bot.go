package bot

import (
	"context"
	"os"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/maktab-bot/internal/service"
	"github.com/noah-isme/maktab-bot/pkg/config"
	appErrors "github.com/noah-isme/maktab-bot/pkg/errors"
)

// reportFiles reads and disposes of generated report files. Generated PDFs
// are deleted once delivered.
type reportFiles interface {
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

// Bot owns the Telegram long-poll loop and routes updates to services.
// Updates are handled one at a time, to completion, on a single goroutine.
type Bot struct {
	api     *tgbotapi.BotAPI
	adminID int64

	weeklyPath  string
	monthlyPath string

	results   *service.ResultsService
	ingest    *service.IngestService
	progress  *service.ProgressService
	broadcast *service.BroadcastService
	files     reportFiles

	logger *zap.Logger

	// chats that were prompted for a phone number and owe us a reply.
	// Only touched from the dispatch goroutine.
	awaitingPhone map[int64]bool
}

// New authenticates against the Bot API and builds the dispatcher.
func New(cfg *config.Config, results *service.ResultsService, ingest *service.IngestService,
	progress *service.ProgressService, files reportFiles, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.CodeDelivery, "telegram authentication failed")
	}

	return &Bot{
		api:           api,
		adminID:       cfg.Telegram.AdminID,
		weeklyPath:    cfg.Files.Weekly,
		monthlyPath:   cfg.Files.Monthly,
		results:       results,
		ingest:        ingest,
		progress:      progress,
		files:         files,
		logger:        logger,
		awaitingPhone: map[int64]bool{},
	}, nil
}

// SetBroadcast wires the broadcast service after construction: the service
// needs the bot as its message sender, so the two are tied together here.
// Must be called before Run.
func (b *Bot) SetBroadcast(broadcast *service.BroadcastService) {
	b.broadcast = broadcast
}

// Run consumes updates until the context is cancelled. A panic while
// handling one update is logged and must not take down the loop.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handle(ctx, update)
		}
	}
}

func (b *Bot) handle(ctx context.Context, update tgbotapi.Update) {
	log := b.logger.With(zap.String("update_id", uuid.NewString()))
	defer func() {
		if r := recover(); r != nil {
			log.Error("update handler panicked", zap.Any("panic", r))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, log, update.CallbackQuery)
	case update.Message != nil && update.Message.Document != nil:
		b.handleDocument(ctx, log, update.Message)
	case update.Message != nil:
		b.handleMessage(ctx, log, update.Message)
	}
}

// SendText implements service.MessageSender for the broadcast paths.
func (b *Bot) SendText(chatID, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return appErrors.Wrap(err, appErrors.CodeDelivery, "malformed chat id")
	}
	return b.sendMarkdown(id, text)
}

func (b *Bot) sendMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		return appErrors.Wrap(err, appErrors.CodeDelivery, "send message")
	}
	return nil
}

func (b *Bot) sendPlain(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) isAdmin(msg *tgbotapi.Message) bool {
	return msg.From != nil && msg.From.ID == b.adminID
}
