package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Telegram  TelegramConfig
	Files     FilesConfig
	Log       LogConfig
	Broadcast BroadcastConfig
}

type TelegramConfig struct {
	Token   string
	AdminID int64
}

// FilesConfig enumerates the well-known on-disk locations the bot works
// with. Spreadsheets are overwritten wholesale on each admin upload.
type FilesConfig struct {
	Weekly   string
	Monthly  string
	Bindings string
	Database string
	TempDir  string
	Font     string
}

type LogConfig struct {
	Level  string
	Format string
}

// BroadcastConfig governs the scheduled weekly push and temp-file cleanup.
type BroadcastConfig struct {
	Cron       string
	CleanupTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Telegram = TelegramConfig{
		Token:   v.GetString("BOT_TOKEN"),
		AdminID: v.GetInt64("ADMIN_ID"),
	}
	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	cfg.Files = FilesConfig{
		Weekly:   v.GetString("WEEKLY_FILE"),
		Monthly:  v.GetString("MONTHLY_FILE"),
		Bindings: v.GetString("BINDINGS_FILE"),
		Database: v.GetString("DB_FILE"),
		TempDir:  v.GetString("TEMP_DIR"),
		Font:     v.GetString("FONT_FILE"),
	}

	// Sheet paths are made absolute so every component addresses the same
	// file regardless of its own base directory.
	for _, p := range []*string{&cfg.Files.Weekly, &cfg.Files.Monthly} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return nil, fmt.Errorf("resolve sheet path %q: %w", *p, err)
		}
		*p = abs
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Broadcast = BroadcastConfig{
		Cron:       v.GetString("BROADCAST_CRON"),
		CleanupTTL: parseDuration(v.GetString("TEMP_CLEANUP_TTL"), 7*24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("BOT_TOKEN", "")
	v.SetDefault("ADMIN_ID", 0)

	v.SetDefault("WEEKLY_FILE", "weekly.xlsx")
	v.SetDefault("MONTHLY_FILE", "monthly.xlsx")
	v.SetDefault("BINDINGS_FILE", "bindings.json")
	v.SetDefault("DB_FILE", "weekly_results.db")
	v.SetDefault("TEMP_DIR", "temp")
	v.SetDefault("FONT_FILE", "fonts/DejaVuSans.ttf")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	// Sunday 10:00, matching the school's announcement slot.
	v.SetDefault("BROADCAST_CRON", "0 10 * * 0")
	v.SetDefault("TEMP_CLEANUP_TTL", "168h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
