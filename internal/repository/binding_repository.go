package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// BindingRepository stores chat-to-phone bindings as a flat JSON object,
// loaded and saved wholesale. The file stays hand-editable: removing a
// parent is a manual edit, the bot never deletes bindings itself.
type BindingRepository struct {
	path   string
	logger *zap.Logger
}

// NewBindingRepository returns a repository over the given bindings file.
func NewBindingRepository(path string, logger *zap.Logger) *BindingRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BindingRepository{path: path, logger: logger}
}

// Load reads all bindings. A missing or unreadable file yields an empty
// map: no registrations yet is a normal state, not an error.
func (r *BindingRepository) Load() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read bindings file: %w", err)
	}

	bindings := map[string]string{}
	if err := json.Unmarshal(data, &bindings); err != nil {
		r.logger.Warn("bindings file is corrupt, starting empty", zap.Error(err))
		return map[string]string{}, nil
	}
	return bindings, nil
}

// Save writes all bindings back, replacing the file.
func (r *BindingRepository) Save(bindings map[string]string) error {
	data, err := json.MarshalIndent(bindings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bindings: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write bindings file: %w", err)
	}
	return nil
}

// Bind registers (or re-registers) a chat with a phone number. Explicit
// read-then-write, no caching between requests.
func (r *BindingRepository) Bind(chatID, phone string) error {
	bindings, err := r.Load()
	if err != nil {
		return err
	}
	bindings[chatID] = phone
	return r.Save(bindings)
}

// Phone returns the phone bound to a chat, if any.
func (r *BindingRepository) Phone(chatID string) (string, bool, error) {
	bindings, err := r.Load()
	if err != nil {
		return "", false, err
	}
	phone, ok := bindings[chatID]
	return phone, ok, nil
}
