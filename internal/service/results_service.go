package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/maktab-bot/internal/models"
	appErrors "github.com/noah-isme/maktab-bot/pkg/errors"
)

// Sentinel outcomes the bot layer turns into user-facing messages.
var (
	ErrNotRegistered   = appErrors.New(appErrors.CodeNotFound, "chat has no registered phone")
	ErrStudentNotFound = appErrors.New(appErrors.CodeNotFound, "no student row matches the registered phone")
	ErrNoPhoneColumn   = appErrors.New(appErrors.CodeSchema, "weekly sheet has no parent phone column")
)

// ResultsService handles parent registration and weekly result lookups.
type ResultsService struct {
	bindings bindingStore
	weekly   weeklySource
	validate *validator.Validate
	logger   *zap.Logger
}

// NewResultsService constructs ResultsService.
func NewResultsService(bindings bindingStore, weekly weeklySource, validate *validator.Validate, logger *zap.Logger) *ResultsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultsService{bindings: bindings, weekly: weekly, validate: validate, logger: logger}
}

// Register binds a chat to a parent phone number, overwriting any previous
// binding for that chat. The school hands out bare 9-digit local numbers.
func (s *ResultsService) Register(chatID, phone string) error {
	phone = models.NormalizePhone(phone)
	if err := s.validate.Var(phone, "required,len=9,numeric"); err != nil {
		return appErrors.Wrap(err, appErrors.CodeValidation, "phone must be exactly 9 digits")
	}
	if err := s.bindings.Bind(chatID, phone); err != nil {
		return err
	}
	s.logger.Info("chat registered", zap.String("chat_id", chatID))
	return nil
}

// StudentRows returns the weekly sheet rows belonging to the chat's
// registered phone. One phone may cover several children.
func (s *ResultsService) StudentRows(chatID string) ([]models.WeeklyRow, error) {
	phone, ok, err := s.bindings.Phone(chatID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotRegistered
	}

	table, err := s.weekly.Load()
	if err != nil {
		return nil, err
	}
	if !table.HasPhones {
		return nil, ErrNoPhoneColumn
	}

	phoneClean := models.NormalizePhone(phone)
	var matched []models.WeeklyRow
	for _, row := range table.Rows {
		if row.Phone == phoneClean {
			matched = append(matched, row)
		}
	}
	if len(matched) == 0 {
		return nil, ErrStudentNotFound
	}
	return matched, nil
}
