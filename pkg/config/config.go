package config

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/ysaito/tg-lingo-circle/pkg/logger"
)

type Config struct {
	Database  DatabaseConfig  `json:"database"`
	Telegram  TelegramConfig  `json:"telegram"`
	Gemini    GeminiConfig    `json:"gemini"`
	Circle    CircleConfig    `json:"circle"`
	Broadcast BroadcastConfig `json:"broadcast"`
	Rewards   RewardsConfig   `json:"rewards"`
	Logging   LoggingConfig   `json:"logging"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	Port     int    `json:"port"`
	SSLMode  string `json:"sslmode"`
}

type TelegramConfig struct {
	Token string `json:"token"`
}

type GeminiConfig struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

// CircleConfig names the public group chat that prompts and anonymized
// responses are posted into.
type CircleConfig struct {
	ChannelChatID int64 `json:"channel_chat_id"`
}

// BroadcastConfig is the prompt broadcast schedule: which weekdays and
// which local hours fire, with a fixed UTC offset for "local".
type BroadcastConfig struct {
	Weekdays            []string `json:"weekdays"`
	Hours               []int    `json:"hours"`
	TimezoneOffsetHours int      `json:"timezone_offset_hours"`
}

// RewardsConfig is the point reward table. Tiers, when non-empty, maps
// the nth accepted submission of a day (1-based, capped at the last
// entry) to its reward instead of the flat Submission amount.
type RewardsConfig struct {
	Submission int   `json:"submission"`
	Kudos      int   `json:"kudos"`
	Tiers      []int `json:"tiers"`
}

type LoggingConfig struct {
	Level     string `json:"level"`
	File      string `json:"file"`
	GormLevel string `json:"gorm_level"`
}

var AppConfig Config

var ErrMissingTelegramToken = errors.New("telegram token is not configured")

func LoadConfig(filename string) error {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, relying on environment variables")
	}

	file, err := os.Open(filename)
	if err != nil {
		logger.Error("failed to open config file", "error", err)
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&AppConfig); err != nil {
		logger.Error("failed to decode config file", "error", err)
		return err
	}

	applyEnvOverrides(&AppConfig)
	applyDefaults(&AppConfig)
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if token, ok := os.LookupEnv("TELEGRAM_TOKEN"); ok && token != "" {
		cfg.Telegram.Token = token
	}
	if key, ok := os.LookupEnv("GEMINI_API_KEY"); ok && key != "" {
		cfg.Gemini.APIKey = key
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Rewards.Submission <= 0 {
		cfg.Rewards.Submission = 1
	}
	if cfg.Rewards.Kudos <= 0 {
		cfg.Rewards.Kudos = 1
	}
	if len(cfg.Broadcast.Weekdays) == 0 {
		cfg.Broadcast.Weekdays = []string{"Monday", "Wednesday", "Friday"}
	}
	if len(cfg.Broadcast.Hours) == 0 {
		cfg.Broadcast.Hours = []int{9, 13, 19}
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-1.5-flash-latest"
	}
}

// Validate reports configuration without which the process cannot serve
// at all. The persistence and AI credentials are deliberately not
// checked here: their absence degrades to memory-only operation and
// canned prompts respectively.
func Validate(cfg Config) error {
	if cfg.Telegram.Token == "" {
		return ErrMissingTelegramToken
	}
	return nil
}

// SubmissionReward resolves the reward for a user's nth accepted
// submission of the day under the configured table.
func (r RewardsConfig) SubmissionReward(acceptedToday int) int {
	if len(r.Tiers) == 0 {
		return r.Submission
	}
	idx := acceptedToday
	if idx < 1 {
		idx = 1
	}
	if idx > len(r.Tiers) {
		idx = len(r.Tiers)
	}
	return r.Tiers[idx-1]
}
