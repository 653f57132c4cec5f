package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/smith3v/tg-link-curator/pkg/logger"
)

const (
	defaultDatabaseTimeoutSeconds     = 5
	defaultConversationTimeoutMinutes = 30
)

type Config struct {
	Database     DatabaseConfig     `json:"database"`
	Telegram     TelegramConfig     `json:"telegram"`
	Admin        AdminConfig        `json:"admin"`
	Logging      LoggingConfig      `json:"logging"`
	Conversation ConversationConfig `json:"conversation"`
	Metrics      MetricsConfig      `json:"metrics"`
}

type DatabaseConfig struct {
	Driver         string `json:"driver"` // "postgres" (default) or "sqlite"
	Host           string `json:"host"`
	User           string `json:"user"`
	Password       string `json:"password"`
	DBName         string `json:"dbname"`
	Port           int    `json:"port"`
	SSLMode        string `json:"sslmode"`
	Path           string `json:"path"` // sqlite file
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type TelegramConfig struct {
	Token string `json:"token"`
}

type AdminConfig struct {
	UserID int64 `json:"user_id"`
}

type LoggingConfig struct {
	Level     string `json:"level"`
	File      string `json:"file"`
	GormLevel string `json:"gorm_level"`
}

type ConversationConfig struct {
	TimeoutMinutes int `json:"timeout_minutes"`
}

type MetricsConfig struct {
	ListenAddr string `json:"listen_addr"`
}

var AppConfig Config

// LoadConfig decodes filename into AppConfig and then applies overrides from
// a .env file next to the process and from the environment.
func LoadConfig(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		logger.Error("failed to open config file", "error", err)
		return err
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		logger.Error("failed to decode config file", "error", err)
		return err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error("failed to load .env file", "error", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		logger.Error("invalid environment override", "error", err)
		return err
	}

	AppConfig = cfg
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("TELEGRAM_TOKEN"); ok && v != "" {
		c.Telegram.Token = v
	}
	if v, ok := lookup("DATABASE_PASSWORD"); ok && v != "" {
		c.Database.Password = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup("ADMIN_USER_ID"); ok && v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("ADMIN_USER_ID: %w", err)
		}
		c.Admin.UserID = id
	}
	return nil
}

// Validate reports settings the bot cannot start without.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Telegram.Token) == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}
	if c.Admin.UserID == 0 {
		errs = append(errs, errors.New("admin.user_id is required"))
	}
	return errors.Join(errs...)
}

func (d DatabaseConfig) Timeout() time.Duration {
	if d.TimeoutSeconds <= 0 {
		return defaultDatabaseTimeoutSeconds * time.Second
	}
	return time.Duration(d.TimeoutSeconds) * time.Second
}

func (c ConversationConfig) Timeout() time.Duration {
	if c.TimeoutMinutes <= 0 {
		return defaultConversationTimeoutMinutes * time.Minute
	}
	return time.Duration(c.TimeoutMinutes) * time.Minute
}
