package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/maktab-bot/internal/service"
	appErrors "github.com/noah-isme/maktab-bot/pkg/errors"
)

// Reply-keyboard labels. Telegram echoes the pressed button back as a
// plain text message, so dispatch matches on these exact strings.
const (
	btnProgressWeekly  = "📄 Недельный прогресс"
	btnProgressMonthly = "📄 Месячный прогресс"
	btnProgressBoth    = "📄 Оба файла"
	btnExportWeekly    = "📤 Weekly"
	btnExportMonthly   = "📤 Monthly"
)

func (b *Bot) handleMessage(ctx context.Context, log *zap.Logger, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.awaitingPhone[chatID] = false
		switch msg.Command() {
		case "start":
			b.handleStart(chatID)
		case "register":
			b.promptPhone(chatID)
		case "results":
			b.handleResults(log, chatID)
		case "progress":
			b.handleProgressMenu(chatID)
		case "broadcast":
			b.handleBroadcast(ctx, log, msg)
		case "monthly_report":
			b.handleMonthlyReport(ctx, log, msg)
		case "get_excel":
			b.handleGetExcelMenu(msg)
		default:
			b.sendPlain(chatID, "🤔 Неизвестная команда. Начните с /start.")
		}
		return
	}

	switch msg.Text {
	case btnProgressWeekly:
		b.handleProgressChoice(ctx, log, chatID, true, false)
	case btnProgressMonthly:
		b.handleProgressChoice(ctx, log, chatID, false, true)
	case btnProgressBoth:
		b.handleProgressChoice(ctx, log, chatID, true, true)
	case btnExportWeekly:
		b.handleExportChoice(msg, b.weeklyPath, "Weekly")
	case btnExportMonthly:
		b.handleExportChoice(msg, b.monthlyPath, "Monthly")
	default:
		if b.awaitingPhone[chatID] {
			b.awaitingPhone[chatID] = false
			b.handlePhoneReply(log, chatID, msg.Text)
		}
	}
}

func (b *Bot) handleCallback(ctx context.Context, log *zap.Logger, cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log.Debug("callback ack failed", zap.Error(err))
	}
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	switch cq.Data {
	case "register":
		b.promptPhone(chatID)
	case "results":
		b.handleResults(log, chatID)
	case "progress":
		b.handleProgressMenu(chatID)
	}
}

func (b *Bot) handleStart(chatID int64) {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📝 Зарегистрироваться", "register")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📊 Результаты недели", "results")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📈 Прогресс", "progress")),
	)

	msg := tgbotapi.NewMessage(chatID,
		"👋 Добро пожаловать!\n\n"+
			"Я помогу вам получать результаты вашего ребёнка.\n\n"+
			"👇 Выберите действие:")
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) promptPhone(chatID int64) {
	b.awaitingPhone[chatID] = true
	b.sendPlain(chatID, "📱 Введите новый номер телефона (9 цифр):")
}

func (b *Bot) handlePhoneReply(log *zap.Logger, chatID int64, phone string) {
	err := b.results.Register(strconv.FormatInt(chatID, 10), phone)
	if err != nil {
		if appErrors.HasCode(err, appErrors.CodeValidation) {
			b.sendPlain(chatID, "❗️ Неверный номер. Введите ровно 9 цифр. Начните заново с /register.")
			return
		}
		log.Error("registration failed", zap.Error(err))
		b.sendPlain(chatID, "⚠️ Не удалось сохранить номер. Попробуйте позже.")
		return
	}
	b.sendPlain(chatID, "✅ Вы успешно зарегистрированы!")
}

func (b *Bot) handleResults(log *zap.Logger, chatID int64) {
	rows, err := b.results.StudentRows(strconv.FormatInt(chatID, 10))
	if err != nil {
		b.sendPlain(chatID, userMessage(err))
		return
	}
	for _, row := range rows {
		if err := b.sendMarkdown(chatID, service.FormatWeekly(row.Name, row.Cells)); err != nil {
			log.Warn("results send failed", zap.Error(err))
		}
	}
}

func (b *Bot) handleProgressMenu(chatID int64) {
	markup := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnProgressWeekly),
			tgbotapi.NewKeyboardButton(btnProgressMonthly),
			tgbotapi.NewKeyboardButton(btnProgressBoth),
		),
	)
	markup.ResizeKeyboard = true
	markup.OneTimeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, "📊 Какой отчёт хотите получить?")
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) handleProgressChoice(ctx context.Context, log *zap.Logger, chatID int64, weekly, monthly bool) {
	rows, err := b.results.StudentRows(strconv.FormatInt(chatID, 10))
	if err != nil {
		b.sendPlain(chatID, userMessage(err))
		return
	}

	for _, row := range rows {
		sentAny := false
		if weekly {
			if b.sendProgressPDF(ctx, log, chatID, row.Name, false) {
				sentAny = true
			}
		}
		if monthly {
			if b.sendProgressPDF(ctx, log, chatID, row.Name, true) {
				sentAny = true
			}
		}
		if !sentAny {
			b.sendPlain(chatID, fmt.Sprintf("📭 Нет данных для %s.", row.Name))
		}
	}
}

// sendProgressPDF renders and delivers one report; returns true when the
// document reached the chat.
func (b *Bot) sendProgressPDF(ctx context.Context, log *zap.Logger, chatID int64, studentName string, monthly bool) bool {
	var (
		path    string
		err     error
		caption string
	)
	if monthly {
		path, err = b.progress.MonthlyReport(ctx, studentName)
		caption = fmt.Sprintf("📄 Ежемесячный прогресс: %s", studentName)
	} else {
		path, err = b.progress.WeeklyReport(ctx, studentName)
		caption = fmt.Sprintf("📄 Еженедельный прогресс: %s", studentName)
	}
	if err != nil {
		if errors.Is(err, service.ErrNoResults) {
			return false
		}
		log.Warn("progress report failed", zap.String("student", studentName), zap.Error(err))
		b.sendPlain(chatID, userMessage(err))
		return false
	}

	file, err := b.files.Open(path)
	if err != nil {
		log.Warn("report open failed", zap.String("student", studentName), zap.Error(err))
		return false
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{
		Name:   filepath.Base(path),
		Reader: file,
	})
	doc.Caption = caption
	_, sendErr := b.api.Send(doc)
	file.Close()
	if sendErr != nil {
		log.Warn("report send failed", zap.String("student", studentName), zap.Error(sendErr))
		return false
	}
	if err := b.files.Delete(path); err != nil {
		log.Debug("report cleanup failed", zap.String("file", path), zap.Error(err))
	}
	return true
}

func (b *Bot) handleBroadcast(ctx context.Context, log *zap.Logger, msg *tgbotapi.Message) {
	if !b.isAdmin(msg) {
		b.sendPlain(msg.Chat.ID, "⛔ Только админ может.")
		return
	}
	count, err := b.broadcast.Weekly(ctx)
	if err != nil {
		log.Error("broadcast failed", zap.Error(err))
		b.sendPlain(msg.Chat.ID, userMessage(err))
		return
	}
	b.sendPlain(msg.Chat.ID, fmt.Sprintf("✅ Рассылка завершена. Отправлено: %d", count))
}

func (b *Bot) handleMonthlyReport(ctx context.Context, log *zap.Logger, msg *tgbotapi.Message) {
	if !b.isAdmin(msg) {
		b.sendPlain(msg.Chat.ID, "⛔ Только админ может.")
		return
	}
	count, err := b.broadcast.MonthlyReport(ctx)
	if err != nil {
		log.Error("monthly report failed", zap.Error(err))
		b.sendPlain(msg.Chat.ID, userMessage(err))
		return
	}
	b.sendPlain(msg.Chat.ID, fmt.Sprintf("✅ Месячный отчёт отправлен: %d", count))
}

func (b *Bot) handleGetExcelMenu(msg *tgbotapi.Message) {
	if !b.isAdmin(msg) {
		b.sendPlain(msg.Chat.ID, "⛔ Только админ может.")
		return
	}
	markup := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnExportWeekly),
			tgbotapi.NewKeyboardButton(btnExportMonthly),
		),
	)
	markup.ResizeKeyboard = true
	markup.OneTimeKeyboard = true

	out := tgbotapi.NewMessage(msg.Chat.ID, "📁 Какой файл отправить?")
	out.ReplyMarkup = markup
	if _, err := b.api.Send(out); err != nil {
		b.logger.Warn("send failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

func (b *Bot) handleExportChoice(msg *tgbotapi.Message, path, label string) {
	if !b.isAdmin(msg) {
		return
	}
	if _, err := os.Stat(path); err != nil {
		b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Файл %s ещё не загружен.", label))
		return
	}
	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("📄 Excel-файл: %s", label)
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Warn("excel send failed", zap.String("label", label), zap.Error(err))
		b.sendPlain(msg.Chat.ID, "⚠ Ошибка при отправке файла.")
	}
}

// userMessage translates component failures into user-facing text so no
// raw error ever reaches a parent's chat.
func userMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrNotRegistered):
		return "❗️ Сначала зарегистрируйтесь: /register"
	case errors.Is(err, service.ErrStudentNotFound):
		return "😞 Ученик не найден."
	case errors.Is(err, service.ErrNoPhoneColumn):
		return "⚠️ В таблице нет колонки с телефонами. Обратитесь к администратору."
	case appErrors.HasCode(err, appErrors.CodeMissingFile):
		return "⚠️ Данных пока нет. Админ ещё не загрузил файл."
	case appErrors.HasCode(err, appErrors.CodeSchema):
		return "⚠️ Таблица имеет неверный формат: нет нужной колонки. Обратитесь к администратору."
	case appErrors.HasCode(err, appErrors.CodeRender):
		return "⚠ Ошибка при создании PDF. Попробуйте позже."
	default:
		return "⚠️ Что-то пошло не так. Попробуйте позже."
	}
}
